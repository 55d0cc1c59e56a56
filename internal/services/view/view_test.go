package view

import (
	"strings"
	"testing"

	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/locale"
	"toxlens/internal/core/markup"
	"toxlens/internal/core/span"
)

func item(p float64, text string, spans ...span.Span) classifier.Item {
	return classifier.Item{Text: text, Result: classifier.Result{Probability: &p, Spans: spans}}
}

func TestRenderSingle_FlaggedByScore(t *testing.T) {
	v := RenderSingle(item(72, "hello"), Options{Threshold: 50})
	if !v.Flagged {
		t.Fatalf("72 over 50 should flag")
	}
	want := "Có dấu hiệu độc hại/tiêu cực (xác suất: 72.00%, ngưỡng: 50%)"
	if v.VerdictLine != want {
		t.Fatalf("VerdictLine = %q, want %q", v.VerdictLine, want)
	}
	if v.Chart.Score != 72 || v.Chart.Remainder != 28 {
		t.Fatalf("chart = %+v", v.Chart)
	}
	if v.Spans != nil {
		t.Fatalf("span listing should be absent without spans")
	}
	if v.Mode != "highlight" || v.Rendered != "hello" {
		t.Fatalf("mode/rendered = %q/%q", v.Mode, v.Rendered)
	}
}

func TestRenderSingle_SpanOverride(t *testing.T) {
	it := item(10, "a xxxx b", span.Span{Start: 2, End: 6, Text: "xxxx", Sources: []string{"lexicon", "ml"}})
	v := RenderSingle(it, Options{Threshold: 50, Mode: markup.Redact})
	if !v.Flagged {
		t.Fatalf("span must flag despite low score")
	}
	if v.Rendered != "a *** b" {
		t.Fatalf("Rendered = %q", v.Rendered)
	}
	if len(v.Spans) != 1 || v.Spans[0].Interval != "[2, 6)" || v.Spans[0].Sources != "lexicon, ml" {
		t.Fatalf("spans = %+v", v.Spans)
	}
}

func TestRenderSingle_LabelAndDictionary(t *testing.T) {
	it := classifier.Item{Text: "x", Result: classifier.Result{Prediction: false, DictionaryMatch: true}}
	v := RenderSingle(it, Options{Threshold: 90, Labels: locale.New("en")})
	if !v.Flagged || v.Score != 0 {
		t.Fatalf("dictionary should flag a 0 score, got %+v", v)
	}
	if !strings.HasSuffix(v.VerdictLine, " — Dictionary match") {
		t.Fatalf("VerdictLine = %q", v.VerdictLine)
	}
	if v.Chart.Remainder != 100 {
		t.Fatalf("remainder = %v", v.Chart.Remainder)
	}
}

func TestRenderSingle_HighlightUsesPrebuiltMarkup(t *testing.T) {
	p := 100.0
	it := classifier.Item{Text: "a <b>", Result: classifier.Result{Probability: &p, Highlighted: "a <mark>b</mark>"}}
	v := RenderSingle(it, Options{Threshold: 50})
	if !strings.Contains(v.Rendered, "rgba(243,111,33,0.9)") {
		t.Fatalf("Rendered = %q", v.Rendered)
	}
}

func TestRenderSingle_Idempotent(t *testing.T) {
	it := item(55.5, `He said "hi" <x>`, span.Span{Start: 9, End: 11, Text: "hi"})
	for _, m := range []markup.Mode{markup.Highlight, markup.Redact} {
		o := Options{Threshold: 40, Mode: m}
		a, b := RenderSingle(it, o), RenderSingle(it, o)
		if a.Rendered != b.Rendered || a.VerdictLine != b.VerdictLine {
			t.Fatalf("mode %v: renders differ", m)
		}
	}
}

func TestRenderBatch_CountsAndRows(t *testing.T) {
	b := classifier.Batch{Items: []classifier.Item{
		item(80, "one"),
		item(20, "two"),
		item(5, "three xx", span.Span{Start: 6, End: 8, Text: "xx"}),
		{Index: 3, Text: "four", Result: classifier.Result{Prediction: true}},
	}}
	for i := range b.Items {
		b.Items[i].Index = i
	}
	v := RenderBatch(b, Options{Threshold: 50, Mode: markup.Redact})

	if v.Counts.Flagged != 3 || v.Counts.Clean != 1 {
		t.Fatalf("counts = %+v", v.Counts)
	}
	if got := v.ChartValues(); got != [2]float64{3, 1} {
		t.Fatalf("chart values = %v", got)
	}
	if len(v.Rows) != 4 {
		t.Fatalf("rows = %d", len(v.Rows))
	}
	for i, r := range v.Rows {
		if r.Index != i+1 {
			t.Fatalf("row %d index = %d, want 1-based", i, r.Index)
		}
	}
	if v.Rows[1].Label != "Không độc hại" || v.Rows[0].Label != "Độc hại" {
		t.Fatalf("labels = %q %q", v.Rows[0].Label, v.Rows[1].Label)
	}
	if v.Rows[2].Rendered != "three ***" {
		t.Fatalf("rendered = %q", v.Rows[2].Rendered)
	}
	if v.Rows[3].Score != 100 || v.Rows[3].ScoreText != "100" {
		t.Fatalf("label row score = %v %q", v.Rows[3].Score, v.Rows[3].ScoreText)
	}
}

func TestRenderBatch_Empty(t *testing.T) {
	v := RenderBatch(classifier.Batch{}, Options{Threshold: 50})
	if v.Rows == nil || len(v.Rows) != 0 || v.Counts != (Counts{}) {
		t.Fatalf("empty batch = %+v", v)
	}
}
