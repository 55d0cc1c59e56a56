// Package normalize prepares user input before it is sent for classification
//
// The classifier reports span offsets against the exact text it received, so the
// text kept for rendering must be the prepared text, never the raw submission.
// Pipeline order
// 1 drop invalid UTF-8 and control characters except tab and line breaks
// 2 Unicode NFC composition (Vietnamese diacritics become single code points)
// 3 remove format characters such as ZWJ, ZWNJ and BOM
// 4 trim surrounding whitespace
//
// Case, width and punctuation are left alone: the user sees their own text back.
package normalize

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Preparer is safe for concurrent use
type Preparer struct{}

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFC,
			runes.Remove(runes.In(unicode.Cf)),
		)
	},
}

// New constructs a Preparer
func New() *Preparer { return &Preparer{} }

// Prepare returns s ready for classification and display
func (p *Preparer) Prepare(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(out)
}

// Sanitize drops invalid UTF-8, NUL, DEL, C0 controls other than \t \n \r, and C1 controls
func Sanitize(s string) string {
	clean := true
	for _, r := range s {
		if dropRune(r) {
			clean = false
			break
		}
	}
	if clean && utf8.ValidString(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !(r == utf8.RuneError && size == 1) && !dropRune(r) {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func dropRune(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20, r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	}
	return false
}
