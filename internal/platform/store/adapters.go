package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"toxlens/internal/platform/store/trace"
)

// tracing reports every statement to an optional tracer
type tracing struct {
	tracer trace.QueryTracer
	slowUS int64
}

func (t tracing) emit(ctx context.Context, q string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	elapsed := time.Since(start).Microseconds()
	t.tracer.OnQuery(ctx, trace.QueryEvent{
		SQL:       q,
		Args:      args,
		ElapsedUS: elapsed,
		Err:       err,
		Slow:      t.slowUS >= 0 && elapsed >= t.slowUS,
	})
}

// tracedRow reports once Scan has run, a missing row is not a failure
type tracedRow struct {
	Row
	done func(error)
}

func (r tracedRow) Scan(dst ...any) error {
	err := r.Row.Scan(dst...)
	report := err
	if IsNoRows(err) {
		report = nil
	}
	r.done(report)
	return err
}

// postgres

// pgConn is what *pgxpool.Pool and pgx.Tx have in common
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgQuerier struct {
	c pgConn
	tracing
}

func (p pgQuerier) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := p.c.Exec(ctx, q, args...)
	p.emit(ctx, q, args, start, err)
	return ct, err
}

func (p pgQuerier) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := p.c.Query(ctx, q, args...)
	p.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgRows{rs}, nil
}

func (p pgQuerier) QueryRow(ctx context.Context, q string, args ...any) Row {
	start := time.Now()
	return tracedRow{Row: p.c.QueryRow(ctx, q, args...), done: func(err error) { p.emit(ctx, q, args, start, err) }}
}

// pgStore is the pool backed TxRunner
type pgStore struct {
	pool *pgxpool.Pool
	pgQuerier
}

func newPGStore(pool *pgxpool.Pool, tr tracing) *pgStore {
	return &pgStore{pool: pool, pgQuerier: pgQuerier{c: pool, tracing: tr}}
}

func (s *pgStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *pgStore) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(pgQuerier{c: tx, tracing: s.tracing})
	})
}

type pgRows struct{ pgx.Rows }

func (r pgRows) Columns() []string {
	fds := r.FieldDescriptions()
	out := make([]string, len(fds))
	for i, fd := range fds {
		out[i] = fd.Name
	}
	return out
}

// database/sql, used by sqlite

// sqlConn is what *sql.DB and *sql.Tx have in common
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlQuerier struct {
	c sqlConn
	tracing
}

func (s sqlQuerier) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	start := time.Now()
	res, err := s.c.ExecContext(ctx, q, args...)
	s.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	n, _ := res.RowsAffected()
	return sqlTag(n), nil
}

func (s sqlQuerier) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := s.c.QueryContext(ctx, q, args...)
	s.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	return sqlRows{rs}, nil
}

func (s sqlQuerier) QueryRow(ctx context.Context, q string, args ...any) Row {
	start := time.Now()
	return tracedRow{Row: s.c.QueryRowContext(ctx, q, args...), done: func(err error) { s.emit(ctx, q, args, start, err) }}
}

type sqlStore struct {
	db *sql.DB
	sqlQuerier
}

// NewSQLAdapter wraps a database/sql handle, tracer may be nil
func NewSQLAdapter(db *sql.DB, tracer trace.QueryTracer, slowMs int) TxRunner {
	return &sqlStore{db: db, sqlQuerier: sqlQuerier{c: db, tracing: tracing{tracer: tracer, slowUS: int64(slowMs) * 1000}}}
}

func (s *sqlStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("sql: no handle")
	}
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error { return s.db.Close() }

func (s *sqlStore) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlQuerier{c: tx, tracing: s.tracing}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type sqlRows struct{ *sql.Rows }

func (r sqlRows) Close() { _ = r.Rows.Close() }

func (r sqlRows) Columns() []string {
	cols, _ := r.Rows.Columns()
	return cols
}

type sqlTag int64

func (t sqlTag) String() string      { return "ROWS " + strconv.FormatInt(int64(t), 10) }
func (t sqlTag) RowsAffected() int64 { return int64(t) }
