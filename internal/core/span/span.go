// Package span models the flagged character ranges reported by the classifier
package span

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Span is a half open [Start,End) range over the code points of the original text
type Span struct {
	Start   int      `json:"start"`
	End     int      `json:"end"`
	Text    string   `json:"text"`
	Sources []string `json:"source"`
}

// UnmarshalJSON accepts both "source" (classifier wire) and "sources"
func (s *Span) UnmarshalJSON(b []byte) error {
	var w struct {
		Start   int      `json:"start"`
		End     int      `json:"end"`
		Text    string   `json:"text"`
		Source  []string `json:"source"`
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = Span{Start: w.Start, End: w.End, Text: w.Text, Sources: w.Source}
	if len(s.Sources) == 0 {
		s.Sources = w.Sources
	}
	return nil
}

// Sorted returns a copy ordered by Start, ties keep their original order
func Sorted(in []Span) []Span {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Span) int { return a.Start - b.Start })
	return out
}

// Bounds clamps s into [0,n] and reports whether anything is left
func Bounds(s Span, n int) (start, end int, ok bool) {
	start, end = s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	return start, end, start < end
}

// Interval formats the range for listings, e.g. "[2, 6)"
func (s Span) Interval() string {
	return "[" + strconv.Itoa(s.Start) + ", " + strconv.Itoa(s.End) + ")"
}

// Position formats the range compactly for exports, e.g. "[2,6)"
func (s Span) Position() string {
	return "[" + strconv.Itoa(s.Start) + "," + strconv.Itoa(s.End) + ")"
}

// SourceList joins source tags for display
func (s Span) SourceList() string { return strings.Join(s.Sources, ", ") }
