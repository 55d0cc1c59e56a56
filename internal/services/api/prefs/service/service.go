// Package service owns the threshold preference
package service

import (
	"context"
	"slices"
	"sync"

	"toxlens/internal/modkit/repokit"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/logger"
	"toxlens/internal/services/api/prefs/domain"
	"toxlens/internal/services/api/prefs/repo"
)

// Service defines the prefs service contract
type Service interface {
	domain.ServicePort
	Load(ctx context.Context) (int, error)
	OnChange(fn func(threshold int))
}

// Svc keeps the threshold in memory and writes every change through
type Svc struct {
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner

	mu        sync.RWMutex
	value     int
	listeners []func(int)
}

// New constructs a prefs service, schema is ensured at the start of every tx
func New(db repokit.TxRunner, binder repo.Binder) *Svc {
	if db == nil {
		panic("prefs.Service requires a non nil TxRunner")
	}
	return &Svc{
		binder: binder,
		db:     repokit.WithBeginHooks(db, binder.Schema()),
		value:  domain.DefaultThreshold,
	}
}

// Load reads the stored threshold once
// read failures keep the default and are returned for the caller to log
func (s *Svc) Load(ctx context.Context) (int, error) {
	var raw string
	var found bool
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		var err error
		raw, found, err = s.binder.Bind(q).Get(ctx, domain.KeyThreshold)
		return err
	})
	if err != nil {
		return s.Threshold(), perr.WithOp(err, "prefs.Load")
	}

	v := domain.DefaultThreshold
	if found {
		v = domain.ParseThreshold(raw)
	}
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()

	logger.C(ctx).Debug().Int("threshold", v).Bool("stored", found).Msg("threshold loaded")
	return v, nil
}

// Threshold returns the active value
func (s *Svc) Threshold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// SetThreshold clamps v, applies it, notifies listeners and persists it
// the new value stays active even when the write fails
func (s *Svc) SetThreshold(ctx context.Context, v int) (int, error) {
	v = domain.Clamp(v)

	s.mu.Lock()
	changed := s.value != v
	s.value = v
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(v)
		}
	}

	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		return s.binder.Bind(q).Put(ctx, domain.KeyThreshold, domain.FormatThreshold(v))
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Int("threshold", v).Msg("threshold not persisted")
		return v, perr.WithOp(err, "prefs.SetThreshold")
	}
	return v, nil
}

// OnChange registers fn to run after every effective threshold change
func (s *Svc) OnChange(fn func(threshold int)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}
