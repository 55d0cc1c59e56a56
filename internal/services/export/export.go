// Package export produces the downloadable batch artifacts
//
// Both exports read only from the batch slot of the result cache. A failed
// export never touches the cache.
package export

import (
	"context"
	"encoding/json"
	"time"

	"toxlens/internal/adapters/artifacts"
	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/locale"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/logger"
	"toxlens/internal/services/results"
)

// Artifact names and content types
const (
	CSVName  = "ket_qua_phan_tich.csv"
	DOCXName = "bao_cao_highlight.docx"

	CSVContentType  = "text/csv; charset=utf-8"
	DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Artifact is a finished export
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
	// Location is where a sink stored a copy, empty when none is configured
	Location string
}

// DocumentRenderer builds the docx report from raw batch items
type DocumentRenderer interface {
	ExportDOCX(ctx context.Context, items []json.RawMessage) ([]byte, error)
}

// Options configures an Exporter
type Options struct {
	Docs DocumentRenderer
	// Sink is optional, artifacts are still returned for download without it
	Sink   artifacts.Sink
	Labels *locale.Labels
}

// Exporter builds artifacts from the cached batch
type Exporter struct {
	cache  *results.Cache
	docs   DocumentRenderer
	sink   artifacts.Sink
	labels *locale.Labels
	now    func() time.Time
}

// New constructs an Exporter over cache
func New(cache *results.Cache, o Options) *Exporter {
	if cache == nil {
		panic("export.New requires a result cache")
	}
	if o.Labels == nil {
		o.Labels = locale.New("")
	}
	return &Exporter{cache: cache, docs: o.Docs, sink: o.Sink, labels: o.Labels, now: time.Now}
}

// CSV encodes the cached batch
func (e *Exporter) CSV(ctx context.Context) (Artifact, error) {
	b, err := e.batch()
	if err != nil {
		return Artifact{}, err
	}
	a := Artifact{Name: CSVName, ContentType: CSVContentType, Body: EncodeCSV(b.Items)}
	e.store(ctx, &a)
	return a, nil
}

// DOCX forwards the cached items verbatim to the document endpoint
// the binary is fully buffered before an artifact exists
func (e *Exporter) DOCX(ctx context.Context) (Artifact, error) {
	b, err := e.batch()
	if err != nil {
		return Artifact{}, err
	}
	if e.docs == nil {
		return Artifact{}, perr.Unavailablef("%s: no document endpoint configured", e.labels.ExportFailed())
	}

	raw := make([]json.RawMessage, 0, len(b.Items))
	for _, it := range b.Items {
		r, err := rawItem(it)
		if err != nil {
			return Artifact{}, err
		}
		raw = append(raw, r)
	}

	body, err := e.docs.ExportDOCX(ctx, raw)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Int("items", len(raw)).Msg("docx export failed")
		return Artifact{}, perr.Wrap(err, perr.CodeOf(err), e.labels.ExportFailed())
	}
	a := Artifact{Name: DOCXName, ContentType: DOCXContentType, Body: body}
	e.store(ctx, &a)
	return a, nil
}

func (e *Exporter) batch() (classifier.Batch, error) {
	b, ok := e.cache.Batch.Get()
	if !ok {
		return classifier.Batch{}, perr.NotFoundf("no batch result to export")
	}
	return b, nil
}

// store copies a to the sink under a timestamped name
// a sink failure is logged and the download still goes ahead
func (e *Exporter) store(ctx context.Context, a *Artifact) {
	if e.sink == nil {
		return
	}
	name := e.now().UTC().Format("20060102T150405Z") + "_" + a.Name
	loc, err := e.sink.Put(ctx, name, a.ContentType, a.Body)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("artifact", name).Msg("artifact not stored")
		return
	}
	a.Location = loc
	logger.C(ctx).Info().Str("artifact", name).Str("location", loc).Int("bytes", len(a.Body)).Msg("artifact stored")
}

// rawItem returns the untouched wire object, rebuilding it only when absent
func rawItem(it classifier.Item) (json.RawMessage, error) {
	if len(it.Raw) > 0 {
		return it.Raw, nil
	}
	out, err := json.Marshal(struct {
		Index       int      `json:"index"`
		Text        string   `json:"text"`
		Probability *float64 `json:"probability_profane"`
		Prediction  bool     `json:"prediction"`
		ByList      bool     `json:"is_profane_by_list"`
		Spans       any      `json:"spans"`
		Highlighted string   `json:"highlighted_html,omitempty"`
	}{it.Index, it.Text, it.Probability, it.Prediction, it.DictionaryMatch, it.Spans, it.Highlighted})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "encode batch item %d", it.Index)
	}
	return out, nil
}
