package repokit

import (
	"context"
	"errors"
	"testing"

	"toxlens/internal/platform/store"
	kit "toxlens/internal/platform/testkit"
)

// fakeTx records statements, Tx hands itself to fn
type fakeTx struct {
	txs   int
	stmts []string
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	f.stmts = append(f.stmts, sql)
	return nil, nil
}

func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row        { return nil }

func (f *fakeTx) Tx(_ context.Context, fn func(Queryer) error) error {
	f.txs++
	return fn(f)
}

func TestWithBeginHooks_RunBeforeBody(t *testing.T) {
	ctx := context.Background()
	inner := &fakeTx{}
	schema := func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, "create table preferences")
		return err
	}
	db := WithBeginHooks(inner, schema)

	err := WithTx(ctx, db, func(q Queryer) error {
		_, err := q.Exec(ctx, "insert threshold")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if inner.txs != 1 || len(inner.stmts) != 2 || inner.stmts[0] != "create table preferences" {
		t.Fatalf("hook order wrong: txs=%d stmts=%v", inner.txs, inner.stmts)
	}

	// outside a tx the hook does not run
	_, _ = db.Exec(ctx, "select 1")
	if len(inner.stmts) != 3 {
		t.Fatalf("plain Exec ran hooks: %v", inner.stmts)
	}
}

func TestWithBeginHooks_FailingHookStopsBody(t *testing.T) {
	boom := errors.New("schema failed")
	ran := false
	db := WithBeginHooks(&fakeTx{}, func(context.Context, Queryer) error { return boom })
	err := WithTx(context.Background(), db, func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
}

func TestBindFunc(t *testing.T) {
	tx := &fakeTx{}
	b := BindFunc[int](func(q Queryer) int {
		if q != tx {
			t.Fatalf("bound to the wrong queryer")
		}
		return 7
	})
	var binder Binder[int] = b
	if binder.Bind(tx) != 7 {
		t.Fatalf("Bind did not call through")
	}
}

type guard struct{ err error }

func (g guard) Guard(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	return g.err
}

func TestMustGuard(t *testing.T) {
	MustGuard(context.Background(), guard{})
	kit.MustPanic(t, func() { MustGuard(context.Background(), guard{err: errors.New("db locked")}) })
}
