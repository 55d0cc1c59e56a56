// Package chart renders the two category donut charts shown next to verdicts
// and keeps the rendered images behind opaque handles
package chart

import (
	"bytes"

	perr "toxlens/internal/platform/errors"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultSize    = 256
	defaultEntries = 64
)

var (
	colorHit  = drawing.ColorFromHex("f36f21")
	colorMiss = drawing.ColorFromHex("2e3192")
)

// Options configures the Renderer
type Options struct {
	// Size is the square edge in pixels
	Size int
	// Entries bounds how many live charts are kept, oldest are evicted
	Entries int
}

// Renderer draws donut SVGs and stores them by handle
type Renderer struct {
	cache *lru.Cache[string, []byte]
	size  int
	newID func() string
}

// New builds a Renderer
func New(o Options) (*Renderer, error) {
	if o.Size <= 0 {
		o.Size = defaultSize
	}
	if o.Entries <= 0 {
		o.Entries = defaultEntries
	}
	c, err := lru.New[string, []byte](o.Entries)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "chart cache init")
	}
	return &Renderer{cache: c, size: o.Size, newID: uuid.NewString}, nil
}

// Donut renders values[0] (flagged share) against values[1] and returns a handle
// an empty handle means there was nothing to draw (both values zero)
func (r *Renderer) Donut(values [2]float64, labels [2]string) (string, error) {
	a, b := nonNeg(values[0]), nonNeg(values[1])
	if a+b == 0 {
		return "", nil
	}
	dc := gochart.DonutChart{
		Width:  r.size,
		Height: r.size,
		Values: []gochart.Value{
			{Value: a, Label: labels[0], Style: gochart.Style{FillColor: colorHit, StrokeColor: drawing.ColorWhite, StrokeWidth: 1}},
			{Value: b, Label: labels[1], Style: gochart.Style{FillColor: colorMiss, StrokeColor: drawing.ColorWhite, StrokeWidth: 1}},
		},
	}
	var buf bytes.Buffer
	if err := dc.Render(gochart.SVG, &buf); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUnknown, "render donut")
	}
	h := r.newID()
	r.cache.Add(h, buf.Bytes())
	return h, nil
}

// SVG returns a rendered chart
func (r *Renderer) SVG(handle string) ([]byte, bool) {
	if handle == "" {
		return nil, false
	}
	return r.cache.Get(handle)
}

// Dispose drops a chart, unknown or empty handles are ignored
func (r *Renderer) Dispose(handle string) {
	if handle != "" {
		r.cache.Remove(handle)
	}
}

// Live reports how many charts are held
func (r *Renderer) Live() int { return r.cache.Len() }

func nonNeg(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
