package results

import (
	"context"
	"sync"
	"testing"

	"toxlens/internal/adapters/classifier"
	perr "toxlens/internal/platform/errors"
)

func prob(p float64) classifier.Item {
	return classifier.Item{Text: "x", Result: classifier.Result{Probability: &p}}
}

func TestSlot_StaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	c := New()

	first := c.Single.Begin()
	second := c.Single.Begin()

	if err := c.Single.Commit(ctx, second, prob(72)); err != nil {
		t.Fatalf("newest commit: %v", err)
	}
	err := c.Single.Commit(ctx, first, prob(10))
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("stale commit err = %v, want conflict", err)
	}
	got, ok := c.Single.Get()
	if !ok || *got.Probability != 72 {
		t.Fatalf("cache = %+v, want the newer result", got)
	}
}

func TestSlot_StaleEvenWhenNewerNeverArrives(t *testing.T) {
	ctx := context.Background()
	c := New()
	old := c.Single.Begin()
	_ = c.Single.Begin()
	if err := c.Single.Commit(ctx, old, prob(5)); err == nil {
		t.Fatalf("older ticket must lose to any newer issued ticket")
	}
	if _, ok := c.Single.Get(); ok {
		t.Fatalf("slot should still be empty")
	}
}

func TestSlots_AreIndependent(t *testing.T) {
	ctx := context.Background()
	c := New()

	tb := c.Batch.Begin()
	ts := c.Single.Begin()
	_ = c.Single.Begin()

	batch := classifier.Batch{Items: []classifier.Item{{Index: 0, Text: "a"}}}
	if err := c.Batch.Commit(ctx, tb, batch); err != nil {
		t.Fatalf("batch commit should not be affected by single tickets: %v", err)
	}
	if err := c.Single.Commit(ctx, ts, prob(1)); err == nil {
		t.Fatalf("single ticket should be stale")
	}

	c.Single.Clear()
	if _, ok := c.Batch.Get(); !ok {
		t.Fatalf("clearing single must not touch batch")
	}
}

func TestCommit_WrongSlot(t *testing.T) {
	c := New()
	tk := c.Batch.Begin()
	err := c.Single.Commit(context.Background(), tk, prob(1))
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
	if tk.Surface() != SurfaceBatch || tk.Seq() != 1 {
		t.Fatalf("ticket = %+v", tk)
	}
}

func TestClear_InvalidatesInFlight(t *testing.T) {
	ctx := context.Background()
	c := New()
	tk := c.Single.Begin()
	c.Single.Clear()
	if err := c.Single.Commit(ctx, tk, prob(90)); err == nil {
		t.Fatalf("response issued before Clear must be discarded")
	}
	if _, ok := c.Single.Get(); ok {
		t.Fatalf("slot should stay empty after Clear")
	}
}

func TestSlot_ConcurrentBeginCommit(t *testing.T) {
	ctx := context.Background()
	s := NewSlot[int]("n")
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_ = s.Commit(ctx, s.Begin(), v)
		}(i)
	}
	wg.Wait()

	last := s.Begin()
	if err := s.Commit(ctx, last, -1); err != nil {
		t.Fatalf("final commit: %v", err)
	}
	if v, ok := s.Get(); !ok || v != -1 {
		t.Fatalf("Get = (%d,%v)", v, ok)
	}
	if last.Seq() != 65 {
		t.Fatalf("seq = %d, want 65", last.Seq())
	}
}
