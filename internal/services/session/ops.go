package session

import (
	"context"
	"io"
	"strings"

	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/markup"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/logger"
	"toxlens/internal/services/export"
	"toxlens/internal/services/results"
	"toxlens/internal/services/view"
)

// Predict classifies one text and renders the single view
// upstream failures leave the previous result in place
func (s *Service) Predict(ctx context.Context, text string) (view.SingleView, error) {
	ctx = logger.WithSurface(ctx, results.SurfaceSingle)
	prepared := s.prep.Prepare(text)
	if prepared == "" {
		return view.SingleView{}, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "text must not be empty"), "text")
	}

	t := s.cache.Single.Begin()
	r, err := s.cls.Predict(ctx, prepared)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Uint64("seq", t.Seq()).Msg("predict failed")
		return view.SingleView{}, err
	}
	if err := s.cache.Single.Commit(ctx, t, classifier.Item{Text: prepared, Result: r}); err != nil {
		return view.SingleView{}, err
	}

	s.mu.Lock()
	v := s.renderSingleLocked(ctx)
	s.mu.Unlock()
	if v == nil {
		// cleared between commit and render
		return view.SingleView{}, perr.Conflictf("single result cleared")
	}
	s.hub.publish(Event{Kind: EventSingle, Threshold: v.Threshold, Mode: v.Mode, Single: v})
	return *v, nil
}

// Upload sends a file for batch classification and renders the batch view
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (view.BatchView, error) {
	ctx = logger.WithSurface(ctx, results.SurfaceBatch)
	if r == nil || strings.TrimSpace(filename) == "" {
		return view.BatchView{}, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "file is required"), "file")
	}

	t := s.cache.Batch.Begin()
	b, err := s.cls.Upload(ctx, filename, r)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("file", filename).Uint64("seq", t.Seq()).Msg("upload failed")
		return view.BatchView{}, err
	}
	if err := s.cache.Batch.Commit(ctx, t, b); err != nil {
		return view.BatchView{}, err
	}

	s.mu.Lock()
	v := s.renderBatchLocked(ctx)
	s.mu.Unlock()
	if v == nil {
		return view.BatchView{}, perr.Conflictf("batch result cleared")
	}
	logger.C(ctx).Info().Str("file", filename).Int("items", len(b.Items)).Int("flagged", v.Counts.Flagged).Msg("batch classified")
	s.hub.publish(Event{Kind: EventBatch, Threshold: v.Threshold, Mode: v.Mode, Batch: v})
	return *v, nil
}

// ClearSingle drops the single result, the batch is untouched
func (s *Service) ClearSingle() {
	s.cache.Single.Clear()
	s.mu.Lock()
	s.renderSingleLocked(context.Background())
	mode := s.mode.String()
	s.mu.Unlock()
	s.hub.publish(Event{Kind: EventCleared, Threshold: s.prefs.Threshold(), Mode: mode})
}

// SetThreshold persists v, both surfaces re-render through the change listener
func (s *Service) SetThreshold(ctx context.Context, v int) (int, error) {
	return s.prefs.SetThreshold(ctx, v)
}

// SetMode switches the display mode and re-renders both surfaces
func (s *Service) SetMode(m markup.Mode) {
	s.mu.Lock()
	if s.mode == m {
		s.mu.Unlock()
		return
	}
	s.mode = m
	ev := s.rerenderLocked(context.Background(), EventMode)
	s.mu.Unlock()
	s.hub.publish(ev)
}

// ExportCSV encodes the cached batch
func (s *Service) ExportCSV(ctx context.Context) (export.Artifact, error) {
	return s.exp.CSV(logger.WithSurface(ctx, results.SurfaceBatch))
}

// ExportDOCX renders the cached batch through the document endpoint
func (s *Service) ExportDOCX(ctx context.Context) (export.Artifact, error) {
	return s.exp.DOCX(logger.WithSurface(ctx, results.SurfaceBatch))
}

func (s *Service) onThreshold(threshold int) {
	s.mu.Lock()
	ev := s.rerenderLocked(context.Background(), EventThreshold)
	s.mu.Unlock()
	logger.Named("session").Debug().Int("threshold", threshold).Msg("views re-rendered")
	s.hub.publish(ev)
}

func (s *Service) rerenderLocked(ctx context.Context, kind string) Event {
	return Event{
		Kind:      kind,
		Threshold: s.prefs.Threshold(),
		Mode:      s.mode.String(),
		Single:    s.renderSingleLocked(ctx),
		Batch:     s.renderBatchLocked(ctx),
	}
}
