package store

import (
	"context"
	"fmt"

	"toxlens/internal/platform/logger"
	"toxlens/internal/platform/store/pg"
	"toxlens/internal/platform/store/sqlite"
	"toxlens/internal/platform/store/trace"
)

// Option adjusts the Store before backends open
type Option func(*Store) error

// WithLogger is used for query tracing
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

func (s *Store) traceFor(on bool, component string, slowMs int) tracing {
	t := tracing{slowUS: int64(slowMs) * 1000}
	if on {
		t.tracer = trace.Tracer(s.Log, component)
	}
	return t
}

func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	pool, err := pg.Open(ctx, pg.Config{
		URL:         cfg.PG.URL,
		MaxConns:    cfg.PG.MaxConns,
		Attempts:    cfg.PG.ConnectRetries,
		PingTimeout: cfg.PG.PingTimeout,
	})
	if err != nil {
		return nil, err
	}
	return newPGStore(pool, s.traceFor(cfg.PG.LogSQL, "pg", cfg.PG.SlowQueryMs)), nil
}

func openSQLite(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	db, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path, BusyTimeoutMs: cfg.SQLite.BusyTimeoutMs})
	if err != nil {
		return nil, fmt.Errorf("sqlite open %q: %w", cfg.SQLite.Path, err)
	}
	tr := s.traceFor(cfg.SQLite.LogSQL, "sqlite", cfg.SQLite.SlowQueryMs)
	return NewSQLAdapter(db, tr.tracer, cfg.SQLite.SlowQueryMs), nil
}
