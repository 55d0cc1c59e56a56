package classifier

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"toxlens/internal/core/span"
	"toxlens/internal/core/verdict"
)

// Result is one classification as the session needs it
type Result struct {
	// Probability is nil when the classifier sent null or nothing
	Probability     *float64
	Prediction      bool
	DictionaryMatch bool
	Spans           []span.Span
	Highlighted     string
}

// Score resolves the probability or label into the canonical score
func (r Result) Score() verdict.Score {
	if r.Probability != nil {
		return verdict.Probability(*r.Probability)
	}
	return verdict.Label(r.Prediction)
}

// Item is a batch entry, Raw keeps the untouched wire object for the docx export
type Item struct {
	Index int
	Text  string
	Result
	Raw json.RawMessage
}

// Batch is the parsed upload response
type Batch struct {
	Items []Item
}

// wireResult mirrors the classifier payload, shared by predict and batch items
type wireResult struct {
	Index       int         `json:"index"`
	Text        string      `json:"text"`
	Probability flexNumber  `json:"probability_profane"`
	Prediction  flexBool    `json:"prediction"`
	ByList      flexBool    `json:"is_profane_by_list"`
	Spans       []span.Span `json:"spans"`
	Highlighted string      `json:"highlighted_html"`
	Error       string      `json:"error"`
}

func (w wireResult) result() Result {
	r := Result{
		Prediction:      bool(w.Prediction),
		DictionaryMatch: bool(w.ByList),
		Spans:           w.Spans,
		Highlighted:     w.Highlighted,
	}
	if w.Probability.set {
		p := w.Probability.v
		r.Probability = &p
	}
	return r
}

type wireBatch struct {
	Items []json.RawMessage `json:"items"`
	Error string            `json:"error"`
}

type wireError struct {
	Error string `json:"error"`
}

// flexNumber accepts null, a number, or a numeric string
// anything else counts as present with value 0
type flexNumber struct {
	v   float64
	set bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flexNumber{}
		return nil
	}
	*f = flexNumber{set: true}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.v = finite(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			f.v = finite(n)
		}
	}
	return nil
}

// flexBool accepts booleans, 0/1 numbers and their string forms
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var v bool
	switch {
	case json.Unmarshal(b, &v) == nil:
	default:
		var n float64
		if json.Unmarshal(b, &n) == nil {
			v = n != 0
			break
		}
		var s string
		if json.Unmarshal(b, &s) == nil {
			s = strings.TrimSpace(s)
			if p, err := strconv.ParseBool(s); err == nil {
				v = p
			} else if n, err := strconv.ParseFloat(s, 64); err == nil {
				v = n != 0
			}
		}
	}
	*f = flexBool(v)
	return nil
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
