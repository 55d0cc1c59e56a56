// Package swaggerkit serves the OpenAPI document and Swagger UI
package swaggerkit

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"toxlens/internal/platform/config"
	"toxlens/internal/platform/logger"
	phttp "toxlens/internal/platform/net/http"
)

//go:embed openapi.json
var openapiDoc []byte

// Mount serves /api/docs when enabled
// the document is decorated once, a broken embed answers 500 instead of failing startup
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	doc, err := document(openapiDoc, "/api/v1", config.New().Prefix("CORE_UI_").MayString("DOCS_TITLE_SUFFIX", ""))
	if err != nil {
		logger.Named("swagger").Error().Err(err).Msg("openapi document unusable")
	}

	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		if doc == nil {
			http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(doc)
	})
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("toxlens"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
