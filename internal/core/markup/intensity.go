package markup

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"toxlens/internal/core/verdict"
)

// Base tint for highlighted terms, #f36f21
const markRGB = "243,111,33"

// Alpha maps a score onto the 0.3..0.9 opacity ramp
func Alpha(score float64) float64 {
	p := verdict.Clamp(score, 0, 100)
	a := 0.3 + 0.6*p/100
	return math.Round(a*1000) / 1000
}

// MarkStyle is the inline style applied to every <mark> for score
func MarkStyle(score float64) string {
	return "background-color: rgba(" + markRGB + "," + strconv.FormatFloat(Alpha(score), 'f', -1, 64) + "); color: #000"
}

// StyleMarks sets the intensity style on every <mark> start tag in markup
// Everything else is copied through byte for byte.
func StyleMarks(markup string, score float64) string {
	style := MarkStyle(score)
	z := html.NewTokenizer(strings.NewReader(markup))

	var b strings.Builder
	b.Grow(len(markup) + 64)
	consumed := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF on a well formed stream, otherwise a truncated tail kept as is
			b.WriteString(markup[min(consumed, len(markup)):])
			return b.String()
		}
		// Token lowercases names inside the tokenizer buffer, keep the raw bytes first
		raw := string(z.Raw())
		consumed += len(raw)
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			if tok := z.Token(); tok.DataAtom == atom.Mark {
				tok.Attr = withStyle(tok.Attr, style)
				b.WriteString(tok.String())
				continue
			}
		}
		b.WriteString(raw)
	}
}

func withStyle(attrs []html.Attribute, style string) []html.Attribute {
	out := make([]html.Attribute, 0, len(attrs)+1)
	for _, a := range attrs {
		if a.Namespace == "" && strings.EqualFold(a.Key, "style") {
			continue
		}
		out = append(out, a)
	}
	return append(out, html.Attribute{Key: "style", Val: style})
}
