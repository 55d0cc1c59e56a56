// Package net holds the envelope shared by http bodies and websocket frames
package net

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	perr "toxlens/internal/platform/errors"
)

// Wire is the envelope of every JSON response and every stream frame
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Event      string         `json:"event,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Reply builds a success envelope
func Reply(status int, data any, reqID string) (int, Wire) {
	return status, Wire{StatusCode: status, Status: http.StatusText(status), RequestID: reqID, Data: data}
}

// Error builds an error envelope, a nil err is a 200
func Error(err error, reqID string) (int, Wire) {
	if err == nil {
		return Reply(http.StatusOK, nil, reqID)
	}
	status := perr.HTTPStatus(err)
	pw := perr.WireFrom(err)
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       pw.Code,
		Error:      pw.Message,
		RequestID:  reqID,
	}
}

// Frame names w for a push channel, status fills in only when w has none
func Frame(event string, status int, w Wire) Wire {
	w.Event = event
	if w.StatusCode == 0 {
		w.StatusCode = status
		w.Status = http.StatusText(status)
	}
	return w
}

// RequestID returns the id chi's RequestID middleware put on ctx
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }
