// Package repo persists key value preferences
package repo

import (
	"context"

	"toxlens/internal/modkit/repokit"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/store"
)

// Repo is the persistence surface for preferences
type Repo interface {
	// Get returns the stored value, ok is false when the key was never written
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
}

// dialect carries the statements that differ between backends
type dialect struct {
	name   string
	schema string
	get    string
	put    string
}

var (
	lite = dialect{
		name: store.DialectSQLite,
		schema: `
create table if not exists preferences (
	key        text primary key,
	value      text not null,
	updated_at timestamp not null default current_timestamp
)`,
		get: `select value from preferences where key = ?`,
		put: `
insert into preferences (key, value, updated_at) values (?, ?, current_timestamp)
on conflict (key) do update set value = excluded.value, updated_at = excluded.updated_at`,
	}

	pg = dialect{
		name: store.DialectPostgres,
		schema: `
create table if not exists preferences (
	key        text primary key,
	value      text not null,
	updated_at timestamptz not null default now()
)`,
		get: `select value from preferences where key = $1`,
		put: `
insert into preferences (key, value, updated_at) values ($1, $2, now())
on conflict (key) do update set value = excluded.value, updated_at = excluded.updated_at`,
	}
)

type (
	// Binder binds the repo for one dialect
	Binder struct{ d dialect }
	// queries implements Repo
	queries struct {
		q repokit.Queryer
		d dialect
	}
)

// NewSQLite returns the binder for the embedded database
func NewSQLite() Binder { return Binder{d: lite} }

// NewPG returns the binder for postgres
func NewPG() Binder { return Binder{d: pg} }

// ForDialect picks a binder by store dialect name, sqlite unless postgres is named
func ForDialect(name string) Binder {
	if name == store.DialectPostgres {
		return NewPG()
	}
	return NewSQLite()
}

// Bind wires a Queryer to the repo
func (b Binder) Bind(q repokit.Queryer) Repo { return &queries{q: q, d: b.d} }

// Dialect names the backend this binder targets
func (b Binder) Dialect() string { return b.d.name }

// Schema is a begin hook that creates the preferences table when missing
func (b Binder) Schema() repokit.BeginHook {
	return func(ctx context.Context, q repokit.Queryer) error {
		if _, err := q.Exec(ctx, b.d.schema); err != nil {
			return perr.FromDB(err, "ensure preferences schema")
		}
		return nil
	}
}

func (r *queries) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := store.Scalar[string](ctx, r.q, r.d.get, key)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, perr.FromDB(err, "read preference %q", key)
	}
	return v, true, nil
}

func (r *queries) Put(ctx context.Context, key, value string) error {
	_, err := r.q.Exec(ctx, r.d.put, key, value)
	return perr.FromDB(err, "write preference %q", key)
}
