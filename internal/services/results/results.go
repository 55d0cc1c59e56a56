// Package results caches the last classifier payload per surface
//
// Each outgoing request takes a Ticket. Commit writes only when that ticket
// is still the newest issued for its slot, so a slow response can never
// overwrite a newer one. Slots are independent of each other.
package results

import (
	"context"
	"sync"

	"toxlens/internal/adapters/classifier"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/logger"
)

// Surface names used for slots and log fields
const (
	SurfaceSingle = "single"
	SurfaceBatch  = "batch"
)

// Ticket identifies one outgoing request for a slot
type Ticket struct {
	surface string
	seq     uint64
}

// Surface returns the slot the ticket was issued for
func (t Ticket) Surface() string { return t.surface }

// Seq returns the per slot sequence number, starting at 1
func (t Ticket) Seq() uint64 { return t.seq }

// Slot holds one replaceable value guarded by a sequence counter
type Slot[T any] struct {
	surface string

	mu     sync.Mutex
	issued uint64
	val    T
	has    bool
}

// NewSlot returns an empty slot for surface
func NewSlot[T any](surface string) *Slot[T] { return &Slot[T]{surface: surface} }

// Begin issues the next ticket, earlier tickets become stale
func (s *Slot[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return Ticket{surface: s.surface, seq: s.issued}
}

// Commit stores v when t is still the newest ticket
// a stale ticket returns ErrorCodeConflict and leaves the slot untouched
func (s *Slot[T]) Commit(ctx context.Context, t Ticket, v T) error {
	if t.surface != s.surface {
		return perr.InvalidArgf("ticket for %q committed to %q", t.surface, s.surface)
	}
	s.mu.Lock()
	newest := s.issued
	if t.seq == newest {
		s.val, s.has = v, true
	}
	s.mu.Unlock()

	if t.seq != newest {
		logger.C(ctx).Info().
			Str("slot", s.surface).
			Uint64("seq", t.seq).
			Uint64("newest", newest).
			Msg("stale response discarded")
		return perr.Conflictf("%s response %d superseded by %d", s.surface, t.seq, newest)
	}
	return nil
}

// Get returns the cached value
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val, s.has
}

// Clear drops the cached value and invalidates tickets still in flight
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.val, s.has = zero, false
	s.issued++
}

// Cache owns the single and batch slots
// the single slot keeps the submitted text next to its result
type Cache struct {
	Single *Slot[classifier.Item]
	Batch  *Slot[classifier.Batch]
}

// New returns an empty cache
func New() *Cache {
	return &Cache{
		Single: NewSlot[classifier.Item](SurfaceSingle),
		Batch:  NewSlot[classifier.Batch](SurfaceBatch),
	}
}
