package session

import (
	"context"
	"sync"

	"toxlens/internal/platform/logger"
	"toxlens/internal/services/view"
)

// Event kinds
const (
	EventSingle    = "single"
	EventBatch     = "batch"
	EventCleared   = "cleared"
	EventThreshold = "threshold"
	EventMode      = "mode"
)

// subscriberBuffer is how many events a slow subscriber may lag behind
const subscriberBuffer = 16

// Event is pushed to subscribers after every re-render
type Event struct {
	Kind      string           `json:"kind"`
	Threshold int              `json:"threshold"`
	Mode      string           `json:"mode"`
	Single    *view.SingleView `json:"single,omitempty"`
	Batch     *view.BatchView  `json:"batch,omitempty"`
}

// Subscribe returns a channel of events that closes when ctx ends
// a subscriber that falls behind loses events rather than blocking the session
func (s *Service) Subscribe(ctx context.Context) <-chan Event {
	ch := s.hub.add()
	go func() {
		<-ctx.Done()
		s.hub.remove(ch)
	}()
	return ch
}

type hub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

func newHub() *hub { return &hub{subs: make(map[chan Event]struct{})} }

func (h *hub) add() chan Event {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

func (h *hub) remove(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			logger.Named("session").Debug().Str("event", ev.Kind).Msg("subscriber lagging, event dropped")
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
	h.closed = true
}

// Subscribers reports how many channels are live
func (s *Service) Subscribers() int {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return len(s.hub.subs)
}
