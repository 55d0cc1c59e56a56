// Package repokit is the seam between services and the SQL store
package repokit

import (
	"context"
	"fmt"
	"time"

	"toxlens/internal/platform/store"
)

type (
	Queryer  = store.RowQuerier
	TxRunner = store.TxRunner
)

// WithTx runs fn in one transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}

// Binder builds a repo on top of whatever Queryer the current tx hands out
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a constructor to Binder
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// BeginHook runs first in every transaction, e.g. to ensure a schema
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks returns inner with hooks run ahead of every Tx body
// plain Exec/Query calls outside a tx skip the hooks
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	return hooked{TxRunner: inner, hooks: hooks}
}

type hooked struct {
	TxRunner
	hooks []BeginHook
}

func (h hooked) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hook := range h.hooks {
			if err := hook(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// MustGuard pings the store at startup and panics when it cannot be reached
// ctx without a deadline gets five seconds
func MustGuard(ctx context.Context, g interface{ Guard(context.Context) error }) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("repokit: store guard: %w", err))
	}
}
