// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"toxlens/internal/core/version"
	"toxlens/internal/modkit/httpkit"
	perr "toxlens/internal/platform/errors"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Check is a named dependency probed by /health
type Check struct {
	Name string
	// Target may be nil, the check then reports skipped
	Target Pinger
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	Timeout     time.Duration
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/version", h.version)
}

// HealthCheck describes a single dependency check
type HealthCheck struct {
	Name   string `json:"name"   example:"prefs"`
	Status string `json:"status" example:"ok"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// HealthResponse summarizes liveness and dependency state
type HealthResponse struct {
	Status  string        `json:"status"  example:"ok"` // ok degraded
	Service string        `json:"service" example:"toxlens-ui"`
	Started string        `json:"started" example:"2026-10-16T13:00:00Z"`
	Uptime  int64         `json:"uptime"  example:"300"`
	Checks  []HealthCheck `json:"checks"`
}

// health reports 503 only when every configured dependency fails
func (h *handlers) health(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), h.deps.Timeout)
	defer cancel()

	out := HealthResponse{
		Status:  "ok",
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
		Checks:  make([]HealthCheck, 0, len(h.deps.Checks)),
	}
	probed, failed := 0, 0
	for _, c := range h.deps.Checks {
		hc := HealthCheck{Name: c.Name, Status: "ok"}
		switch {
		case c.Target == nil:
			hc.Status = "skipped"
		default:
			probed++
			if err := c.Target.Ping(ctx); err != nil {
				failed++
				hc.Status, hc.Error = "fail", err.Error()
			}
		}
		out.Checks = append(out.Checks, hc)
	}
	if failed > 0 {
		out.Status = "degraded"
	}
	if probed > 0 && failed == probed {
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "all dependencies down")
	}
	return out, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}
