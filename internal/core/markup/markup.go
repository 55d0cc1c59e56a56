// Package markup turns classified text into safe display markup
//
// Two modes exist. Highlight keeps the classifier's prebuilt markup and restyles
// every <mark> with an intensity taken from the score. Redact rebuilds the output
// from the raw text and spans, replacing each flagged region with a fixed token.
// Offsets are code points, never bytes.
package markup

import (
	"strings"

	"toxlens/internal/core/span"
)

// Mode selects how flagged spans are displayed
type Mode uint8

const (
	// Highlight shows flagged terms with an intensity backdrop
	Highlight Mode = iota
	// Redact replaces flagged terms with Token
	Redact
)

// Token replaces every redacted region
const Token = "***"

// String implements fmt.Stringer
func (m Mode) String() string {
	if m == Redact {
		return "redact"
	}
	return "highlight"
}

// ParseMode maps a wire name to a Mode, unknown names fall back to Highlight
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "highlight", "":
		return Highlight, true
	case "redact":
		return Redact, true
	}
	return Highlight, false
}

// Source is everything the renderer needs for one text
type Source struct {
	Text        string
	Spans       []span.Span
	Highlighted string // prebuilt markup from the classifier, may be empty
}

// Render produces display markup for src in the given mode
func Render(src Source, mode Mode, score float64) string {
	if mode == Redact {
		return RedactText(src.Text, src.Spans)
	}
	if src.Highlighted == "" {
		return Escape(src.Text)
	}
	return StyleMarks(src.Highlighted, score)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape entity-escapes the five markup-significant characters
func Escape(s string) string { return escaper.Replace(s) }

// RedactText rebuilds text with every span region replaced by Token
//
// The cursor never moves backward: a span overlapping the previous region only
// extends it, a span fully inside it is dropped.
func RedactText(text string, spans []span.Span) string {
	if len(spans) == 0 {
		return Escape(text)
	}
	runes := []rune(text)
	n := len(runes)

	var b strings.Builder
	b.Grow(len(text) + len(spans)*len(Token))

	last := 0
	for _, s := range span.Sorted(spans) {
		start, end, ok := span.Bounds(s, n)
		if !ok || end <= last {
			continue
		}
		if start < last {
			// overlaps the region already behind a token
			last = end
			continue
		}
		b.WriteString(Escape(string(runes[last:start])))
		b.WriteString(Token)
		last = end
	}
	b.WriteString(Escape(string(runes[last:])))
	return b.String()
}
