// Package http provides http transport for the session
package http

import (
	"errors"
	stdhttp "net/http"
	"strings"

	"toxlens/internal/core/markup"
	"toxlens/internal/modkit/httpkit"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/services/api/session/domain"
	"toxlens/internal/services/export"
	"toxlens/internal/services/session"
)

// ChartStore serves rendered chart images by handle
type ChartStore interface {
	SVG(handle string) ([]byte, bool)
}

// Deps are the handler dependencies
type Deps struct {
	Session session.Port
	// Charts may be nil, chart URLs then 404
	Charts ChartStore
	// MaxUploadBytes bounds the multipart body, default 10 MiB
	MaxUploadBytes int64
	// UploadMiddleware wraps the upload route only
	UploadMiddleware []func(stdhttp.Handler) stdhttp.Handler
}

const defaultMaxUpload = 10 << 20

type handlers struct {
	s         session.Port
	charts    ChartStore
	maxUpload int64
}

// Register mounts session endpoints on the given router
func Register(r httpkit.Router, d Deps) {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = defaultMaxUpload
	}
	h := &handlers{s: d.Session, charts: d.Charts, maxUpload: d.MaxUploadBytes}

	httpkit.PostJSON[domain.PredictInput](r, "/predict", h.predict)
	r.Group(func(g httpkit.Router) {
		g.Use(d.UploadMiddleware...)
		g.Use(limitBody(h.maxUpload))
		httpkit.Post(g, "/upload", h.upload)
	})

	httpkit.Get(r, "/single", h.single)
	r.Delete("/single", httpkit.Handle(h.clear))
	httpkit.Get(r, "/batch", h.batch)

	httpkit.Get(r, "/mode", h.mode)
	httpkit.PutJSON[domain.ModeInput](r, "/mode", h.setMode)

	r.Get("/export/csv", httpkit.Handle(h.exportCSV))
	r.Get("/export/docx", httpkit.Handle(h.exportDOCX))
	r.Get("/charts/{handle}", httpkit.Handle(h.chart))
}

// @Summary Classify one text and cache the result
// @Tags session
// @Accept json
// @Produce json
// @Param payload body domain.PredictInput true "Text"
// @Success 200 {object} view.SingleView "ok"
// @Failure 409 "a newer prediction superseded this one"
// @Failure 502 "classifier reported an error"
// @Router /session/predict [post]
func (h *handlers) predict(r *stdhttp.Request, in domain.PredictInput) (any, error) {
	return h.s.Predict(r.Context(), in.Text)
}

// @Summary Classify an uploaded file
// @Tags session
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV, TXT, XLSX, DOCX or PDF"
// @Success 200 {object} view.BatchView "ok"
// @Router /session/upload [post]
func (h *handlers) upload(r *stdhttp.Request) (any, error) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *stdhttp.MaxBytesError
		switch {
		case errors.Is(err, stdhttp.ErrMissingFile):
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "file is required"), "file")
		case errors.As(err, &tooBig):
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "file exceeds %d bytes", tooBig.Limit), "file")
		default:
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "invalid multipart body")
		}
	}
	defer f.Close()
	return h.s.Upload(r.Context(), hdr.Filename, f)
}

// @Summary Last single view
// @Tags session
// @Produce json
// @Success 200 {object} view.SingleView "ok"
// @Failure 404 "nothing classified yet"
// @Router /session/single [get]
func (h *handlers) single(_ *stdhttp.Request) (any, error) {
	v, ok := h.s.Single()
	if !ok {
		return nil, perr.NotFoundf("no single result")
	}
	return v, nil
}

// @Summary Clear the single result
// @Tags session
// @Success 204
// @Router /session/single [delete]
func (h *handlers) clear(_ *stdhttp.Request) httpkit.Response {
	h.s.ClearSingle()
	return httpkit.NoContent()
}

// @Summary Last batch view
// @Tags session
// @Produce json
// @Success 200 {object} view.BatchView "ok"
// @Failure 404 "nothing uploaded yet"
// @Router /session/batch [get]
func (h *handlers) batch(_ *stdhttp.Request) (any, error) {
	v, ok := h.s.Batch()
	if !ok {
		return nil, perr.NotFoundf("no batch result")
	}
	return v, nil
}

func (h *handlers) mode(_ *stdhttp.Request) (any, error) {
	return domain.ModeOutput{Mode: h.s.Mode().String()}, nil
}

// @Summary Switch between highlight and redact
// @Tags session
// @Accept json
// @Produce json
// @Param payload body domain.ModeInput true "Mode"
// @Success 200 {object} domain.ModeOutput "ok"
// @Router /session/mode [put]
func (h *handlers) setMode(_ *stdhttp.Request, in domain.ModeInput) (any, error) {
	m, ok := markup.ParseMode(in.Mode)
	if !ok {
		return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "mode must be highlight or redact"), "mode")
	}
	h.s.SetMode(m)
	return domain.ModeOutput{Mode: m.String()}, nil
}

// @Summary Download the batch as CSV
// @Tags session
// @Produce text/csv
// @Router /session/export/csv [get]
func (h *handlers) exportCSV(r *stdhttp.Request) httpkit.Response {
	a, err := h.s.ExportCSV(r.Context())
	if err != nil {
		return httpkit.Error(err)
	}
	return attachment(a)
}

// @Summary Download the batch as a highlighted DOCX report
// @Tags session
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Router /session/export/docx [get]
func (h *handlers) exportDOCX(r *stdhttp.Request) httpkit.Response {
	a, err := h.s.ExportDOCX(r.Context())
	if err != nil {
		return httpkit.Error(err)
	}
	return attachment(a)
}

// @Summary Chart image
// @Tags session
// @Produce image/svg+xml
// @Param handle path string true "Chart handle"
// @Router /session/charts/{handle} [get]
func (h *handlers) chart(r *stdhttp.Request) httpkit.Response {
	handle := strings.TrimSpace(httpkit.URLParam(r, "handle"))
	if h.charts == nil || handle == "" {
		return httpkit.Error(perr.NotFoundf("chart %q not found", handle))
	}
	svg, ok := h.charts.SVG(handle)
	if !ok {
		return httpkit.Error(perr.NotFoundf("chart %q not found", handle))
	}
	return httpkit.Attachment(httpkit.File{Name: handle + ".svg", ContentType: "image/svg+xml", Body: svg, Inline: true})
}

func limitBody(n int64) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			r.Body = stdhttp.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

func attachment(a export.Artifact) httpkit.Response {
	return httpkit.Attachment(httpkit.File{Name: a.Name, ContentType: a.ContentType, Body: a.Body})
}
