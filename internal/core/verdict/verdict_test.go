package verdict

import (
	"math"
	"testing"

	"toxlens/internal/core/span"
)

func TestScore_Resolution(t *testing.T) {
	cases := []struct {
		name string
		s    Score
		want float64
	}{
		{"probability", Probability(72), 72},
		{"label true", Label(true), 100},
		{"label false", Label(false), 0},
		{"nan coerces to zero", Probability(math.NaN()), 0},
		{"inf coerces to zero", Probability(math.Inf(1)), 0},
	}
	for _, c := range cases {
		if got := c.s.Value(); got != c.want {
			t.Fatalf("%s: Value = %v, want %v", c.name, got, c.want)
		}
	}
	if _, ok := Label(true).Probability(); ok {
		t.Fatalf("label score should not expose a probability")
	}
	if p, ok := Probability(10.5).Probability(); !ok || p != 10.5 {
		t.Fatalf("Probability() = (%v,%v)", p, ok)
	}
}

func TestEvaluate_ThresholdOnlyIsMonotone(t *testing.T) {
	for _, s := range []float64{0, 0.5, 49.99, 50, 72, 100} {
		prev := true
		for th := 0; th <= 100; th++ {
			got := Evaluate(Probability(s), false, nil, th)
			if got != (s >= float64(th)) {
				t.Fatalf("score %v threshold %d: got %v", s, th, got)
			}
			if got && !prev {
				t.Fatalf("score %v: verdict flipped back on at threshold %d", s, th)
			}
			prev = got
		}
	}
}

func TestEvaluate_SignalsOverrideScore(t *testing.T) {
	spans := []span.Span{{Start: 2, End: 6, Text: "xxxx"}}
	for th := 0; th <= 100; th += 10 {
		for _, s := range []Score{Probability(0), Probability(10), Label(false)} {
			if !Evaluate(s, true, nil, th) {
				t.Fatalf("dictionary match must flag (score %v, threshold %d)", s.Value(), th)
			}
			if !Evaluate(s, false, spans, th) {
				t.Fatalf("spans must flag (score %v, threshold %d)", s.Value(), th)
			}
		}
	}
}

func TestEvaluate_Scenarios(t *testing.T) {
	if !Evaluate(Probability(72), false, nil, 50) {
		t.Fatalf("72 over 50 should be flagged")
	}
	spans := []span.Span{{Start: 2, End: 6, Text: "xxxx"}}
	if !Evaluate(Probability(10), false, spans, 50) {
		t.Fatalf("span override should flag despite low score")
	}
	if Evaluate(Label(false), false, nil, 0) != true {
		t.Fatalf("threshold 0 flags even a clean label (0 >= 0)")
	}
	if Evaluate(Label(true), false, nil, 100) != true {
		t.Fatalf("label true resolves to 100")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-4, 0, 100) != 0 || Clamp(140, 0, 100) != 100 || Clamp(42, 0, 100) != 42 {
		t.Fatalf("Clamp bounds wrong")
	}
	if Clamp(math.NaN(), 0, 100) != 0 {
		t.Fatalf("Clamp NaN should be lo")
	}
}
