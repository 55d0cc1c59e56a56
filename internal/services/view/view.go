// Package view turns cached classifier payloads into display models
//
// Both renderers are pure: the same payload, threshold and mode always give
// byte-identical output. Chart images are attached later by the session.
package view

import (
	"strconv"

	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/locale"
	"toxlens/internal/core/markup"
	"toxlens/internal/core/span"
	"toxlens/internal/core/verdict"
)

// Options are the render inputs that are not part of the payload
type Options struct {
	Threshold int
	Mode      markup.Mode
	// Labels defaults to the Vietnamese catalog
	Labels *locale.Labels
}

func (o Options) labels() *locale.Labels {
	if o.Labels == nil {
		return locale.New("")
	}
	return o.Labels
}

// SpanItem is one row of the span listing
type SpanItem struct {
	Text     string `json:"text"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Interval string `json:"interval" example:"[2, 6)"`
	Sources  string `json:"sources" example:"lexicon, ml"`
}

// SingleChart holds the two donut values of the single view
type SingleChart struct {
	Score     float64 `json:"score"`
	Remainder float64 `json:"remainder"`
}

// SingleView is the rendered single-text surface
type SingleView struct {
	Flagged         bool        `json:"flagged"`
	Score           float64     `json:"score"`
	Threshold       int         `json:"threshold"`
	DictionaryMatch bool        `json:"dictionary_match"`
	Mode            string      `json:"mode"`
	Verdict         string      `json:"verdict"`
	VerdictLine     string      `json:"verdict_line"`
	Rendered        string      `json:"rendered"`
	Spans           []SpanItem  `json:"spans,omitempty"`
	Chart           SingleChart `json:"chart"`
	ChartURL        string      `json:"chart_url,omitempty"`
}

// Counts tallies batch verdicts
type Counts struct {
	Flagged int `json:"flagged"`
	Clean   int `json:"clean"`
}

// BatchRow is one rendered batch item
type BatchRow struct {
	// Index is 1-based for display
	Index           int     `json:"index"`
	Score           float64 `json:"score"`
	ScoreText       string  `json:"score_text"`
	Flagged         bool    `json:"flagged"`
	DictionaryMatch bool    `json:"dictionary_match"`
	Label           string  `json:"label"`
	Rendered        string  `json:"rendered"`
}

// BatchView is the rendered batch surface
type BatchView struct {
	Threshold int        `json:"threshold"`
	Mode      string     `json:"mode"`
	Counts    Counts     `json:"counts"`
	Rows      []BatchRow `json:"rows"`
	ChartURL  string     `json:"chart_url,omitempty"`
}

// RenderSingle builds the single view for one cached item
func RenderSingle(it classifier.Item, o Options) SingleView {
	l := o.labels()
	score := it.Score().Value()
	flagged := verdict.Evaluate(it.Score(), it.DictionaryMatch, it.Spans, o.Threshold)

	v := SingleView{
		Flagged:         flagged,
		Score:           score,
		Threshold:       o.Threshold,
		DictionaryMatch: it.DictionaryMatch,
		Mode:            o.Mode.String(),
		Verdict:         l.Verdict(flagged),
		VerdictLine:     l.VerdictLine(flagged, score, o.Threshold, it.DictionaryMatch),
		Rendered:        render(it, o.Mode, score),
		Chart:           SingleChart{Score: score, Remainder: max(0, 100-score)},
	}
	if len(it.Spans) > 0 {
		v.Spans = make([]SpanItem, 0, len(it.Spans))
		for _, s := range it.Spans {
			v.Spans = append(v.Spans, spanItem(s))
		}
	}
	return v
}

// RenderBatch builds the batch view, rows keep payload order
func RenderBatch(b classifier.Batch, o Options) BatchView {
	l := o.labels()
	v := BatchView{
		Threshold: o.Threshold,
		Mode:      o.Mode.String(),
		Rows:      make([]BatchRow, 0, len(b.Items)),
	}
	for _, it := range b.Items {
		score := it.Score().Value()
		flagged := verdict.Evaluate(it.Score(), it.DictionaryMatch, it.Spans, o.Threshold)
		if flagged {
			v.Counts.Flagged++
		} else {
			v.Counts.Clean++
		}
		v.Rows = append(v.Rows, BatchRow{
			Index:           it.Index + 1,
			Score:           score,
			ScoreText:       strconv.FormatFloat(score, 'f', -1, 64),
			Flagged:         flagged,
			DictionaryMatch: it.DictionaryMatch,
			Label:           l.Row(flagged),
			Rendered:        render(it, o.Mode, score),
		})
	}
	return v
}

// ChartValues are the donut values for the batch surface, flagged first
func (v BatchView) ChartValues() [2]float64 {
	return [2]float64{float64(v.Counts.Flagged), float64(v.Counts.Clean)}
}

// ChartValues are the donut values for the single surface, score first
func (v SingleView) ChartValues() [2]float64 {
	return [2]float64{v.Chart.Score, v.Chart.Remainder}
}

func render(it classifier.Item, mode markup.Mode, score float64) string {
	return markup.Render(markup.Source{
		Text:        it.Text,
		Spans:       it.Spans,
		Highlighted: it.Highlighted,
	}, mode, score)
}

func spanItem(s span.Span) SpanItem {
	return SpanItem{
		Text:     s.Text,
		Start:    s.Start,
		End:      s.End,
		Interval: s.Interval(),
		Sources:  s.SourceList(),
	}
}
