// Package http provides http transport for preferences
package http

import (
	stdhttp "net/http"

	"toxlens/internal/modkit/httpkit"
	"toxlens/internal/services/api/prefs/domain"
)

// Register mounts preference endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/threshold", h.get)
	httpkit.PutJSON[domain.Threshold](r, "/threshold", h.put)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Current verdict threshold
// @Tags Prefs
// @Produce json
// @Success 200 {object} domain.Threshold "ok"
// @Router /prefs/threshold [get]
func (h *handlers) get(_ *stdhttp.Request) (any, error) {
	v := h.svc.Threshold()
	return domain.Threshold{Threshold: &v}, nil
}

// @Summary Change the verdict threshold
// @Description Values are clamped to 0..100 and persisted. Both views re-render.
// @Tags Prefs
// @Accept json
// @Produce json
// @Param payload body domain.Threshold true "Threshold"
// @Success 200 {object} domain.Threshold "ok"
// @Router /prefs/threshold [put]
func (h *handlers) put(r *stdhttp.Request, in domain.Threshold) (any, error) {
	v, err := h.svc.SetThreshold(r.Context(), *in.Threshold)
	if err != nil {
		return nil, err
	}
	return domain.Threshold{Threshold: &v}, nil
}
