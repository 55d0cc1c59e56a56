package http

import (
	"encoding/json"
	"mime"
	stdhttp "net/http"
	"strconv"

	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/logger"
	pnet "toxlens/internal/platform/net"
)

// Envelope is the body of every JSON response
type Envelope = pnet.Wire

// File is a binary body, served as a download unless Inline
type File struct {
	Name        string
	ContentType string
	Body        []byte
	Inline      bool
}

// Response is what return-style handlers hand back
// Body may be data, an error or a File
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// OK is a 200 carrying data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// NoContent is an empty 204
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error maps err to its status and envelope
func Error(err error) Response { return Response{Body: err} }

// Attachment serves f
func Attachment(f File) Response { return Response{Status: stdhttp.StatusOK, Body: f} }

// Handle adapts a return-style handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	reqID := pnet.RequestID(r.Context())

	switch body := resp.Body.(type) {
	case error:
		if body != nil {
			status, env := pnet.Error(body, reqID)
			if status >= stdhttp.StatusInternalServerError {
				logFailure(r, status, body)
			}
			writeJSON(w)(status, env)
			return
		}
	case File:
		writeFile(w, body)
		return
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w)(pnet.Reply(status, resp.Body, reqID))
}

// logFailure records server-side errors, client errors only reach the access log
func logFailure(r *stdhttp.Request, status int, err error) {
	ev := logger.C(r.Context()).Error().Err(err).Int("status", status)
	if e, ok := perr.As(err); ok && e.Op() != "" {
		ev = ev.Str("op", e.Op())
	}
	ev.Msg("request failed")
}

func writeJSON(w stdhttp.ResponseWriter) func(int, Envelope) {
	return func(status int, env Envelope) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(env)
	}
}

func writeFile(w stdhttp.ResponseWriter, f File) {
	h := w.Header()
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	if f.Name != "" {
		disp := "attachment"
		if f.Inline {
			disp = "inline"
		}
		h.Set("Content-Disposition", mime.FormatMediaType(disp, map[string]string{"filename": f.Name}))
	}
	h.Set("Content-Length", strconv.Itoa(len(f.Body)))
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write(f.Body)
}
