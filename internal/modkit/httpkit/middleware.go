package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"toxlens/internal/platform/net/middleware"
)

// requestTimeout bounds JSON routes, uploads included
const requestTimeout = 60 * time.Second

// base is shared by every stack: correlation, scope, panics
func base() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestScope,
		middleware.RecoverJSON,
	}
}

// CommonStack is for request/response routes
func CommonStack() []func(http.Handler) http.Handler {
	return append(base(),
		middleware.NoCache(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}),
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat(APIV1+"/ping"),
		middleware.StripSlashes(),
		middleware.Timeout(requestTimeout),
	)
}

// StreamStack is for websockets and pages, no timeout and no compression
// since both would break a hijacked connection
func StreamStack() []func(http.Handler) http.Handler {
	return append(base(), middleware.AccessLogZerolog(middleware.AccessLogOptions{}))
}
