package middleware_test

import (
	"compress/flate"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"toxlens/internal/platform/net/middleware"
)

func TestCompress_TextBodiesOnly(t *testing.T) {
	cases := []struct {
		ct   string
		want string
	}{
		{"text/csv; charset=utf-8", "gzip"},
		{"application/json", "gzip"},
		{"image/svg+xml", "gzip"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", ""},
	}
	for _, c := range cases {
		h := middleware.Compress(flate.BestSpeed)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", c.ct)
			_, _ = io.WriteString(w, strings.Repeat("row,", 2048))
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if got := rr.Header().Get("Content-Encoding"); got != c.want {
			t.Fatalf("%s: encoding = %q, want %q", c.ct, got, c.want)
		}
	}
}

func TestCORS_ExposesContentDisposition(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"*"}})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if !strings.Contains(rr.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition") {
		t.Fatalf("expose = %q", rr.Header().Get("Access-Control-Expose-Headers"))
	}
}

func TestAllowContentType_RejectsJSONUpload(t *testing.T) {
	h := middleware.AllowContentType("multipart/form-data")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestThrottle_RejectsPastBacklog(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	h := middleware.Throttle(1, 0, 10*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}()
	<-entered

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	close(release)
	wg.Wait()
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d", rr.Code)
	}
}

func TestRecoverJSON_Envelope(t *testing.T) {
	h := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError || !strings.Contains(rr.Body.String(), `"status_code":500`) {
		t.Fatalf("recover = %d %s", rr.Code, rr.Body.String())
	}
}
