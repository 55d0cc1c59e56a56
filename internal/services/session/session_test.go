package session

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/markup"
	"toxlens/internal/core/span"
	perr "toxlens/internal/platform/errors"
)

// fakeClassifier answers from a function so tests can block or fail per call
type fakeClassifier struct {
	predict func(ctx context.Context, text string) (classifier.Result, error)
	upload  func(ctx context.Context, filename string) (classifier.Batch, error)
}

func (f *fakeClassifier) Predict(ctx context.Context, text string) (classifier.Result, error) {
	return f.predict(ctx, text)
}

func (f *fakeClassifier) Upload(ctx context.Context, filename string, _ io.Reader) (classifier.Batch, error) {
	return f.upload(ctx, filename)
}

type memPrefs struct {
	mu   sync.Mutex
	v    int
	subs []func(int)
}

func (p *memPrefs) Threshold() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.v
}

func (p *memPrefs) SetThreshold(_ context.Context, v int) (int, error) {
	p.mu.Lock()
	p.v = v
	subs := slices.Clone(p.subs)
	p.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
	return v, nil
}

func (p *memPrefs) OnChange(fn func(int)) { p.subs = append(p.subs, fn) }

type countingCharts struct {
	mu       sync.Mutex
	n        int
	live     map[string]bool
	disposed []string
}

func (c *countingCharts) Donut(values [2]float64, _ [2]string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if values[0]+values[1] == 0 {
		return "", nil
	}
	c.n++
	h := "h" + string(rune('0'+c.n))
	if c.live == nil {
		c.live = map[string]bool{}
	}
	c.live[h] = true
	return h, nil
}

func (c *countingCharts) Dispose(h string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.live, h)
	c.disposed = append(c.disposed, h)
}

func prob(p float64, spans ...span.Span) classifier.Result {
	return classifier.Result{Probability: &p, Spans: spans}
}

func newService(t *testing.T, cls *fakeClassifier) (*Service, *memPrefs, *countingCharts) {
	t.Helper()
	prefs := &memPrefs{v: 50}
	charts := &countingCharts{}
	s := New(Options{Classifier: cls, Prefs: prefs, Charts: charts})
	t.Cleanup(s.Close)
	return s, prefs, charts
}

func TestPredict_RendersAndCaches(t *testing.T) {
	var sent string
	s, _, _ := newService(t, &fakeClassifier{predict: func(_ context.Context, text string) (classifier.Result, error) {
		sent = text
		return prob(72), nil
	}})

	v, err := s.Predict(context.Background(), "  hello\u200b  ")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if sent != "hello" {
		t.Fatalf("classifier got %q, want prepared text", sent)
	}
	if !v.Flagged || !strings.Contains(v.VerdictLine, "72.00%") {
		t.Fatalf("view = %+v", v)
	}
	if v.ChartURL != "/api/v1/session/charts/h1" {
		t.Fatalf("chart url = %q", v.ChartURL)
	}
	if got, ok := s.Single(); !ok || got.VerdictLine != v.VerdictLine {
		t.Fatalf("Single() = %+v, %v", got, ok)
	}
}

func TestPredict_EmptyTextSendsNothing(t *testing.T) {
	called := false
	s, _, _ := newService(t, &fakeClassifier{predict: func(context.Context, string) (classifier.Result, error) {
		called = true
		return classifier.Result{}, nil
	}})
	_, err := s.Predict(context.Background(), " \t\u200b ")
	if !perr.IsCode(err, perr.ErrorCodeValidation) || called {
		t.Fatalf("err = %v called = %v", err, called)
	}
}

func TestPredict_UpstreamErrorKeepsPrevious(t *testing.T) {
	fail := false
	s, _, _ := newService(t, &fakeClassifier{predict: func(context.Context, string) (classifier.Result, error) {
		if fail {
			return classifier.Result{}, perr.Upstreamf("model not loaded")
		}
		return prob(30), nil
	}})
	if _, err := s.Predict(context.Background(), "first"); err != nil {
		t.Fatalf("first: %v", err)
	}
	fail = true
	if _, err := s.Predict(context.Background(), "second"); !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("err = %v", err)
	}
	if v, ok := s.Single(); !ok || v.Score != 30 {
		t.Fatalf("previous result lost: %+v", v)
	}
}

func TestPredict_StaleResponseDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s, _, _ := newService(t, &fakeClassifier{predict: func(_ context.Context, text string) (classifier.Result, error) {
		if text == "slow" {
			// the ticket is already issued when the upstream call starts
			close(entered)
			<-release
			return prob(99), nil
		}
		return prob(5), nil
	}})

	errc := make(chan error, 1)
	go func() {
		_, err := s.Predict(context.Background(), "slow")
		errc <- err
	}()
	<-entered

	if _, err := s.Predict(context.Background(), "fast"); err != nil {
		t.Fatalf("fast: %v", err)
	}
	close(release)
	if err := <-errc; !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("slow err = %v, want conflict", err)
	}
	if v, _ := s.Single(); v.Score != 5 {
		t.Fatalf("stale response overwrote newer state: score %v", v.Score)
	}
}

func TestUpload_ValidationAndRender(t *testing.T) {
	s, _, _ := newService(t, &fakeClassifier{upload: func(_ context.Context, name string) (classifier.Batch, error) {
		return classifier.Batch{Items: []classifier.Item{
			{Index: 0, Text: "a", Result: prob(80)},
			{Index: 1, Text: "b", Result: prob(10)},
		}}, nil
	}})

	if _, err := s.Upload(context.Background(), "", strings.NewReader("x")); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("missing name err = %v", err)
	}
	if _, err := s.Upload(context.Background(), "f.csv", nil); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("missing file err = %v", err)
	}

	v, err := s.Upload(context.Background(), "f.csv", strings.NewReader("a\nb"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if v.Counts.Flagged != 1 || v.Counts.Clean != 1 || v.ChartURL == "" {
		t.Fatalf("view = %+v", v)
	}
	if _, ok := s.Single(); ok {
		t.Fatalf("upload must not touch the single surface")
	}
}

func TestSetThreshold_RerendersBothAndDisposesCharts(t *testing.T) {
	s, prefs, charts := newService(t, &fakeClassifier{
		predict: func(context.Context, string) (classifier.Result, error) { return prob(60), nil },
		upload: func(context.Context, string) (classifier.Batch, error) {
			return classifier.Batch{Items: []classifier.Item{{Text: "a", Result: prob(60)}}}, nil
		},
	})
	ctx := context.Background()
	if _, err := s.Predict(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upload(ctx, "f.txt", strings.NewReader("a")); err != nil {
		t.Fatal(err)
	}

	if _, err := s.SetThreshold(ctx, 70); err != nil {
		t.Fatalf("SetThreshold: %v", err)
	}
	if prefs.Threshold() != 70 || s.Threshold() != 70 {
		t.Fatalf("threshold not applied")
	}
	single, _ := s.Single()
	batch, _ := s.Batch()
	if single.Flagged || single.Threshold != 70 || batch.Counts.Flagged != 0 {
		t.Fatalf("views not re-rendered: %+v %+v", single, batch)
	}
	if len(charts.live) != 2 {
		t.Fatalf("expected one live chart per surface, got %v", charts.live)
	}
	if len(charts.disposed) != 2 {
		t.Fatalf("previous charts not disposed: %v", charts.disposed)
	}
}

func TestSetMode_AndSubscribe(t *testing.T) {
	s, _, _ := newService(t, &fakeClassifier{predict: func(context.Context, string) (classifier.Result, error) {
		return prob(10, span.Span{Start: 2, End: 6, Text: "xxxx"}), nil
	}})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := s.Subscribe(ctx)

	if _, err := s.Predict(ctx, "a xxxx b"); err != nil {
		t.Fatal(err)
	}
	if ev := <-events; ev.Kind != EventSingle || ev.Single == nil || !ev.Single.Flagged {
		t.Fatalf("event = %+v", ev)
	}

	s.SetMode(markup.Redact)
	s.SetMode(markup.Redact) // no-op
	ev := <-events
	if ev.Kind != EventMode || ev.Mode != "redact" || ev.Single.Rendered != "a *** b" || ev.Batch != nil {
		t.Fatalf("mode event = %+v", ev)
	}
	if s.Mode() != markup.Redact {
		t.Fatalf("Mode() = %v", s.Mode())
	}
	select {
	case extra := <-events:
		t.Fatalf("unchanged mode should not publish, got %+v", extra)
	default:
	}
}

func TestClearSingle(t *testing.T) {
	s, _, charts := newService(t, &fakeClassifier{predict: func(context.Context, string) (classifier.Result, error) {
		return prob(40), nil
	}})
	if _, err := s.Predict(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	s.ClearSingle()
	if _, ok := s.Single(); ok {
		t.Fatalf("single view should be gone")
	}
	if len(charts.live) != 0 {
		t.Fatalf("chart leaked: %v", charts.live)
	}
}

func TestSubscribe_ClosesOnCancelAndClose(t *testing.T) {
	s, _, _ := newService(t, &fakeClassifier{})
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("channel should close after cancel")
	}

	ch2 := s.Subscribe(context.Background())
	s.Close()
	if _, ok := <-ch2; ok {
		t.Fatalf("channel should close on Close")
	}
	if s.Subscribers() != 0 {
		t.Fatalf("subscribers = %d", s.Subscribers())
	}
}

func TestExport_ReadsCache(t *testing.T) {
	s, _, _ := newService(t, &fakeClassifier{upload: func(context.Context, string) (classifier.Batch, error) {
		return classifier.Batch{Items: []classifier.Item{{Text: `He said "hi"`}}}, nil
	}})
	if _, err := s.ExportCSV(context.Background()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("export without batch err = %v", err)
	}
	if _, err := s.Upload(context.Background(), "f.txt", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	a, err := s.ExportCSV(context.Background())
	if err != nil || !strings.Contains(string(a.Body), `"He said ""hi"""`) {
		t.Fatalf("csv = %q err = %v", a.Body, err)
	}
	if _, err := s.ExportDOCX(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("docx without renderer err = %v", err)
	}
}
