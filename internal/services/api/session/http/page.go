package http

import (
	"bytes"
	"embed"
	"html/template"
	stdhttp "net/http"

	"toxlens/internal/platform/logger"
	"toxlens/internal/services/session"
	"toxlens/internal/services/view"
)

//go:embed assets/index.html
var assets embed.FS

var page = template.Must(template.New("index.html").Funcs(template.FuncMap{
	// markup output escapes the source text before adding its own tags
	"markup": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec
}).ParseFS(assets, "assets/index.html"))

// PageData feeds the index template
type PageData struct {
	Lang      string
	APIBase   string
	StreamURL string
	Threshold int
	Mode      string
	Single    *view.SingleView
	Batch     *view.BatchView
}

// Page serves the single-page UI with the current session state baked in
func Page(s session.Port, apiBase, streamURL string) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		d := PageData{
			Lang:      s.Labels().Tag().String(),
			APIBase:   apiBase,
			StreamURL: streamURL,
			Threshold: s.Threshold(),
			Mode:      s.Mode().String(),
		}
		if v, ok := s.Single(); ok {
			d.Single = &v
		}
		if v, ok := s.Batch(); ok {
			d.Batch = &v
		}

		var buf bytes.Buffer
		if err := page.Execute(&buf, d); err != nil {
			logger.C(r.Context()).Error().Err(err).Msg("render page")
			stdhttp.Error(w, "render failed", stdhttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	}
}
