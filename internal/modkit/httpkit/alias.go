// Package httpkit is the handler and routing vocabulary modules use
// modules import this instead of internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "toxlens/internal/platform/net/http"
	"toxlens/internal/platform/net/http/bind"
)

type (
	// Envelope is the JSON body every API response uses
	Envelope = phttp.Envelope
	// File is a binary download body
	File = phttp.File
	// Response is a return-style response value
	Response = phttp.Response
	// Handler is the platform handler type
	Handler = phttp.Handler
	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error maps err to its status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Attachment serves f as a download, or inline when f.Inline is set
func Attachment(f File) Response { return phttp.Attachment(f) }

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Call adapts a handler without a body, a returned Response is written as is
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return result(fn(r)) })
}

// JSON decodes and validates T before calling fn
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return phttp.Error(err)
		}
		return result(fn(r, in))
	})
}

// URLParam returns a path parameter captured by the router
func URLParam(r *http.Request, key string) string { return phttp.URLParam(r, key) }

func result(out any, err error) Response {
	if err != nil {
		return phttp.Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return phttp.OK(out)
}
