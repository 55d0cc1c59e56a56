// Package middleware adapts chi's middleware and adds our own logging and recovery
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"

	pstrings "toxlens/internal/platform/strings"
)

// Middleware is the standard net/http decorator
type Middleware = func(http.Handler) http.Handler

// RequestID stores X-Request-ID (or a fresh one) on the context
func RequestID() Middleware { return chimw.RequestID }

// RealIP trusts X-Forwarded-For and X-Real-IP
func RealIP() Middleware { return chimw.RealIP }

func NoCache() Middleware      { return chimw.NoCache }
func StripSlashes() Middleware { return chimw.StripSlashes }

func Timeout(d time.Duration) Middleware { return chimw.Timeout(d) }

// Heartbeat answers GET path with a bare 200
func Heartbeat(path string) Middleware { return chimw.Heartbeat(path) }

// compressible lists the text bodies this service serves, csv exports included
var compressible = []string{
	"text/html",
	"text/plain",
	"text/csv",
	"text/css",
	"text/javascript",
	"application/json",
	"image/svg+xml",
}

// Compress gzips/deflates text bodies at level, binary downloads pass through
func Compress(level int) Middleware { return chimw.NewCompressor(level, compressible...).Handler }

// AllowContentType rejects bodies with other media types with 415
func AllowContentType(ct ...string) Middleware { return chimw.AllowContentType(ct...) }

// Throttle admits limit concurrent requests, queues backlog more for up to wait, 429s the rest
func Throttle(limit, backlog int, wait time.Duration) Middleware {
	return chimw.ThrottleBacklog(limit, backlog, wait)
}

// CORSOptions fills unset fields with defaults fit for the browser page
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func CORS(o CORSOptions) Middleware {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders:   pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, []string{"Content-Disposition", "X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
