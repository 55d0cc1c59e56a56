// Package verdict derives the effective flagged/clean decision from classifier signals
//
// A score is either a probability percentage or a bare predicted label. It is
// resolved once into a canonical percentage so call sites never re-check shapes.
// Dictionary matches and located spans override the numeric threshold.
package verdict

import (
	"math"

	"toxlens/internal/core/span"
)

// Kind tags which signal a Score was built from
type Kind uint8

const (
	// KindLabel is a score derived from a boolean prediction
	KindLabel Kind = iota
	// KindProbability is a score carried as a percentage
	KindProbability
)

// Score is a tagged union of Probability(float64) | Label(bool)
type Score struct {
	kind  Kind
	prob  float64
	label bool
}

// Probability builds a score from a percentage in [0,100]
func Probability(p float64) Score { return Score{kind: KindProbability, prob: p} }

// Label builds a score from a predicted label, true counts as 100
func Label(flagged bool) Score { return Score{kind: KindLabel, label: flagged} }

// Kind reports which variant s holds
func (s Score) Kind() Kind { return s.kind }

// Probability returns the raw percentage when s carries one
func (s Score) Probability() (float64, bool) {
	if s.kind != KindProbability {
		return 0, false
	}
	return finite(s.prob), true
}

// Value is the canonical percentage used for comparison and display
func (s Score) Value() float64 {
	if s.kind == KindProbability {
		return finite(s.prob)
	}
	if s.label {
		return 100
	}
	return 0
}

// Evaluate returns the effective verdict
// score >= threshold, a dictionary hit, or any located span flags the text
func Evaluate(score Score, dictionaryMatch bool, spans []span.Span, threshold int) bool {
	return score.Value() >= float64(threshold) || dictionaryMatch || len(spans) > 0
}

// Clamp bounds v into [lo,hi], non-finite values become lo
func Clamp(v, lo, hi float64) float64 {
	v = finite(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
