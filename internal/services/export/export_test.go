package export

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/span"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/services/results"
)

type fakeDocs struct {
	got  []json.RawMessage
	body []byte
	err  error
}

func (f *fakeDocs) ExportDOCX(_ context.Context, items []json.RawMessage) ([]byte, error) {
	f.got = items
	return f.body, f.err
}

type memSink struct {
	names []string
	err   error
}

func (m *memSink) Put(_ context.Context, name, _ string, _ []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.names = append(m.names, name)
	return "mem://" + name, nil
}

func cached(t *testing.T, items ...classifier.Item) *results.Cache {
	t.Helper()
	c := results.New()
	if err := c.Batch.Commit(context.Background(), c.Batch.Begin(), classifier.Batch{Items: items}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return c
}

func TestEncodeCSV_HeaderOnlyForEmpty(t *testing.T) {
	got := string(EncodeCSV(nil))
	want := `"index","probability","prediction","text","spans_text","spans_pos"`
	if got != want {
		t.Fatalf("EncodeCSV(nil) = %q, want %q", got, want)
	}
}

func TestEncodeCSV_QuotesAndSpans(t *testing.T) {
	p := 72.5
	items := []classifier.Item{
		{Index: 0, Text: `He said "hi"`, Result: classifier.Result{Probability: &p, Prediction: true, Spans: []span.Span{
			{Start: 0, End: 2, Text: "He"},
			{Start: 8, End: 10, Text: "hi"},
		}}},
		{Index: 1, Text: "a,b\nc"},
	}
	lines := strings.SplitN(string(EncodeCSV(items)), "\n", 2)
	if len(lines) != 2 {
		t.Fatalf("expected header and body")
	}
	body := lines[1]
	wantFirst := `"1","72.5","1","He said ""hi""","He|hi","[0,2)|[8,10)"`
	if !strings.HasPrefix(body, wantFirst+"\n") {
		t.Fatalf("first row = %q, want prefix %q", body, wantFirst)
	}
	wantSecond := `"2","","0","a,b` + "\n" + `c","",""`
	if !strings.HasSuffix(body, wantSecond) {
		t.Fatalf("second row = %q, want suffix %q", body, wantSecond)
	}
}

func TestCSV_NoBatchIsNotFound(t *testing.T) {
	e := New(results.New(), Options{})
	if _, err := e.CSV(context.Background()); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestCSV_StoresCopyInSink(t *testing.T) {
	sink := &memSink{}
	e := New(cached(t, classifier.Item{Text: "x"}), Options{Sink: sink})
	e.now = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) }

	a, err := e.CSV(context.Background())
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if a.Name != CSVName || a.ContentType != CSVContentType {
		t.Fatalf("artifact = %+v", a)
	}
	if a.Location != "mem://20261016T093000Z_ket_qua_phan_tich.csv" {
		t.Fatalf("location = %q", a.Location)
	}
}

func TestCSV_SinkFailureStillDownloads(t *testing.T) {
	e := New(cached(t), Options{Sink: &memSink{err: errors.New("bucket gone")}})
	a, err := e.CSV(context.Background())
	if err != nil || a.Location != "" || len(a.Body) == 0 {
		t.Fatalf("artifact = %+v err = %v", a, err)
	}
}

func TestDOCX_ForwardsRawItems(t *testing.T) {
	raw := json.RawMessage(`{"index":0,"text":"x","extra":true}`)
	docs := &fakeDocs{body: []byte("PK\x03\x04")}
	e := New(cached(t,
		classifier.Item{Index: 0, Text: "x", Raw: raw},
		classifier.Item{Index: 1, Text: "y", Result: classifier.Result{Prediction: true}},
	), Options{Docs: docs})

	a, err := e.DOCX(context.Background())
	if err != nil {
		t.Fatalf("DOCX: %v", err)
	}
	if a.Name != DOCXName || string(a.Body) != "PK\x03\x04" {
		t.Fatalf("artifact = %+v", a)
	}
	if len(docs.got) != 2 || string(docs.got[0]) != string(raw) {
		t.Fatalf("forwarded = %s", docs.got)
	}
	var rebuilt map[string]any
	if err := json.Unmarshal(docs.got[1], &rebuilt); err != nil || rebuilt["text"] != "y" || rebuilt["prediction"] != true {
		t.Fatalf("rebuilt item = %s (%v)", docs.got[1], err)
	}
}

func TestDOCX_FailureKeepsCache(t *testing.T) {
	c := cached(t, classifier.Item{Text: "x"})
	e := New(c, Options{Docs: &fakeDocs{err: perr.Upstreamf("template missing")}})

	_, err := e.DOCX(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("err = %v, want upstream code kept", err)
	}
	if !strings.Contains(err.Error(), "Xuất DOCX thất bại") {
		t.Fatalf("err should carry the localized message: %v", err)
	}
	if b, ok := c.Batch.Get(); !ok || len(b.Items) != 1 {
		t.Fatalf("cache cleared by a failed export")
	}
}

func TestDOCX_NoRenderer(t *testing.T) {
	e := New(cached(t), Options{})
	if _, err := e.DOCX(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
