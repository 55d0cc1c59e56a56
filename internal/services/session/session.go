// Package session owns the state of one user session
//
// The controller keeps the result cache, the display mode and the chart handle
// of each surface. Every change re-renders through the pure view functions
// and is pushed to subscribers as an Event.
package session

import (
	"context"
	"io"
	"sync"

	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/locale"
	"toxlens/internal/core/markup"
	"toxlens/internal/core/normalize"
	"toxlens/internal/platform/logger"
	"toxlens/internal/services/export"
	"toxlens/internal/services/results"
	"toxlens/internal/services/view"
)

// Classifier is the upstream the session queries
type Classifier interface {
	Predict(ctx context.Context, text string) (classifier.Result, error)
	Upload(ctx context.Context, filename string, r io.Reader) (classifier.Batch, error)
}

// Prefs owns the persisted threshold
type Prefs interface {
	Threshold() int
	SetThreshold(ctx context.Context, v int) (int, error)
	OnChange(fn func(threshold int))
}

// Charts renders two category donuts and releases them by handle
type Charts interface {
	Donut(values [2]float64, labels [2]string) (string, error)
	Dispose(handle string)
}

// Options wires a Service
type Options struct {
	Classifier Classifier
	Prefs      Prefs
	// Charts is optional, views carry no chart URL without it
	Charts   Charts
	Exporter *export.Exporter
	Cache    *results.Cache
	Labels   *locale.Labels
	// ChartPath prefixes chart handles in view URLs
	ChartPath string
}

// Service is the session controller
type Service struct {
	cls       Classifier
	prefs     Prefs
	charts    Charts
	exp       *export.Exporter
	cache     *results.Cache
	labels    *locale.Labels
	prep      *normalize.Preparer
	chartPath string

	// mu guards mode, the rendered views and chart handles
	mu          sync.Mutex
	mode        markup.Mode
	single      *view.SingleView
	batch       *view.BatchView
	singleChart string
	batchChart  string

	hub *hub
}

// New constructs the controller and subscribes it to threshold changes
func New(o Options) *Service {
	if o.Classifier == nil || o.Prefs == nil {
		panic("session.New requires a classifier and prefs")
	}
	if o.Cache == nil {
		o.Cache = results.New()
	}
	if o.Labels == nil {
		o.Labels = locale.New("")
	}
	if o.Exporter == nil {
		o.Exporter = export.New(o.Cache, export.Options{Labels: o.Labels})
	}
	if o.ChartPath == "" {
		o.ChartPath = "/api/v1/session/charts/"
	}
	s := &Service{
		cls:       o.Classifier,
		prefs:     o.Prefs,
		charts:    o.Charts,
		exp:       o.Exporter,
		cache:     o.Cache,
		labels:    o.Labels,
		prep:      normalize.New(),
		chartPath: o.ChartPath,
		hub:       newHub(),
	}
	o.Prefs.OnChange(s.onThreshold)
	return s
}

// Threshold returns the active threshold
func (s *Service) Threshold() int { return s.prefs.Threshold() }

// Mode returns the active display mode
func (s *Service) Mode() markup.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Labels returns the language the session renders in
func (s *Service) Labels() *locale.Labels { return s.labels }

// Single returns the last rendered single view
func (s *Service) Single() (view.SingleView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.single == nil {
		return view.SingleView{}, false
	}
	return *s.single, true
}

// Batch returns the last rendered batch view
func (s *Service) Batch() (view.BatchView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return view.BatchView{}, false
	}
	return *s.batch, true
}

// Close releases chart handles and ends every subscription
func (s *Service) Close() {
	s.mu.Lock()
	s.disposeLocked(&s.singleChart)
	s.disposeLocked(&s.batchChart)
	s.mu.Unlock()
	s.hub.close()
}

func (s *Service) options() view.Options {
	return view.Options{Threshold: s.prefs.Threshold(), Mode: s.mode, Labels: s.labels}
}

// renderSingleLocked rebuilds the single view from the cache, s.mu held
func (s *Service) renderSingleLocked(ctx context.Context) *view.SingleView {
	it, ok := s.cache.Single.Get()
	if !ok {
		s.disposeLocked(&s.singleChart)
		s.single = nil
		return nil
	}
	v := view.RenderSingle(it, s.options())
	v.ChartURL = s.chartLocked(ctx, &s.singleChart, v.ChartValues())
	s.single = &v
	return &v
}

// renderBatchLocked rebuilds the batch view from the cache, s.mu held
func (s *Service) renderBatchLocked(ctx context.Context) *view.BatchView {
	b, ok := s.cache.Batch.Get()
	if !ok {
		s.disposeLocked(&s.batchChart)
		s.batch = nil
		return nil
	}
	v := view.RenderBatch(b, s.options())
	v.ChartURL = s.chartLocked(ctx, &s.batchChart, v.ChartValues())
	s.batch = &v
	return &v
}

// chartLocked disposes the surface's previous chart before drawing the next one
func (s *Service) chartLocked(ctx context.Context, handle *string, values [2]float64) string {
	s.disposeLocked(handle)
	if s.charts == nil {
		return ""
	}
	h, err := s.charts.Donut(values, s.labels.ChartLabels())
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("chart render failed")
		return ""
	}
	if h == "" {
		return ""
	}
	*handle = h
	return s.chartPath + h
}

func (s *Service) disposeLocked(handle *string) {
	if *handle == "" {
		return
	}
	if s.charts != nil {
		s.charts.Dispose(*handle)
	}
	*handle = ""
}
