package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"toxlens/internal/core/markup"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/logger"
	pnet "toxlens/internal/platform/net"
	"toxlens/internal/services/session"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsOutbox    = 32
)

// EventHello is the first frame on a stream, a snapshot of the session
const EventHello = "hello"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*stdhttp.Request) bool { return true },
}

// inbound is a client command on the stream
type inbound struct {
	Type      string `json:"type"`
	Threshold *int   `json:"threshold,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// Stream upgrades to a websocket and pushes session events as Wire frames
// the client may also send threshold and mode commands over the same socket
func Stream(s session.Port) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.C(r.Context()).Debug().Err(err).Msg("ws upgrade failed")
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		log := logger.C(ctx)

		if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
			return
		}
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		out := make(chan pnet.Wire, wsOutbox)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			defer cancel()
			ticker := time.NewTicker(wsPingEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
					return
				case f := <-out:
					if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
						return
					}
					if err := conn.WriteJSON(f); err != nil {
						log.Debug().Err(err).Msg("ws write failed")
						return
					}
				case <-ticker.C:
					if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
						return
					}
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()

		reqID := pnet.RequestID(ctx)
		push := func(f pnet.Wire) {
			f.RequestID = reqID
			select {
			case out <- f:
			case <-ctx.Done():
			}
		}

		events := s.Subscribe(ctx)
		push(pnet.Frame(EventHello, stdhttp.StatusOK, pnet.Wire{Data: snapshot(s)}))

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-events:
					if !ok {
						cancel()
						return
					}
					push(pnet.Frame(ev.Kind, stdhttp.StatusOK, pnet.Wire{Data: ev}))
				}
			}
		}()

		for {
			_, r, err := conn.NextReader()
			if err != nil {
				cancel()
				<-writerDone
				return
			}
			// a malformed command is answered, only transport errors end the stream
			var in inbound
			if err := json.NewDecoder(r).Decode(&in); err != nil {
				push(wsError("malformed command: " + err.Error()))
				continue
			}
			if f, ok := handleInbound(ctx, s, in); ok {
				push(f)
			}
		}
	}
}

// handleInbound applies a client command, state changes come back as events
func handleInbound(ctx context.Context, s session.Port, in inbound) (pnet.Wire, bool) {
	switch strings.ToLower(strings.TrimSpace(in.Type)) {
	case "ping":
		return pnet.Frame("pong", stdhttp.StatusOK, pnet.Wire{}), true
	case "threshold":
		if in.Threshold == nil {
			return wsError("threshold is required"), true
		}
		if _, err := s.SetThreshold(ctx, *in.Threshold); err != nil {
			// the new value is still applied, only persistence failed
			logger.C(ctx).Warn().Err(err).Msg("ws threshold not persisted")
		}
		return pnet.Wire{}, false
	case "mode":
		m, ok := markup.ParseMode(in.Mode)
		if !ok {
			return wsError("mode must be highlight or redact"), true
		}
		s.SetMode(m)
		return pnet.Wire{}, false
	case "":
		return wsError("type is required"), true
	default:
		return wsError("unknown type " + in.Type), true
	}
}

func wsError(msg string) pnet.Wire {
	return pnet.Frame("error", stdhttp.StatusBadRequest, pnet.Wire{Code: perr.ErrorCodeInvalidArgument, Error: msg})
}

func snapshot(s session.Port) session.Event {
	ev := session.Event{Kind: EventHello, Threshold: s.Threshold(), Mode: s.Mode().String()}
	if v, ok := s.Single(); ok {
		ev.Single = &v
	}
	if v, ok := s.Batch(); ok {
		ev.Batch = &v
	}
	return ev
}
