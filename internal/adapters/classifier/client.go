// Package classifier is the http client for the toxicity classification service
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUA        = "toxlens"
	defaultMaxRetry  = 2
	defaultRetryBase = 300 * time.Millisecond
	maxRetryWait     = 5 * time.Second

	pathPredict = "/api/predict"
	pathUpload  = "/api/upload"
	pathDOCX    = "/api/export_docx"
	pathHealth  = "/healthz"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// retries cover transport errors and 502/503/504 only
	MaxRetries int
	RetryBase  time.Duration
}

// Client talks to the classifier endpoints
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(context.Context, time.Duration) error
	newID func() string
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("classifier"),
		sleep: sleepCtx,
		newID: uuid.NewString,
	}
}

// Predict classifies a single text
func (c *Client) Predict(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Result{}, perr.Wrapf(err, perr.ErrorCodeJSON, "encode predict body")
	}
	raw, err := c.call(ctx, pathPredict, "application/json", body)
	if err != nil {
		return Result{}, err
	}
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return Result{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "classifier sent malformed predict response")
	}
	if w.Error != "" {
		return Result{}, perr.Upstreamf("%s", w.Error)
	}
	return w.result(), nil
}

// Upload sends a file as multipart field "file" and parses the batch
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (Batch, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Batch{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "build upload form")
	}
	if _, err := io.Copy(part, r); err != nil {
		return Batch{}, perr.Wrapf(err, perr.ErrorCodeValidation, "read upload %q", filename)
	}
	if err := mw.Close(); err != nil {
		return Batch{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "close upload form")
	}

	raw, err := c.call(ctx, pathUpload, mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		return Batch{}, err
	}
	var wb wireBatch
	if err := json.Unmarshal(raw, &wb); err != nil {
		return Batch{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "classifier sent malformed upload response")
	}
	if wb.Error != "" {
		return Batch{}, perr.Upstreamf("%s", wb.Error)
	}

	out := Batch{Items: make([]Item, 0, len(wb.Items))}
	for i, rawItem := range wb.Items {
		w := wireResult{Index: i}
		if err := json.Unmarshal(rawItem, &w); err != nil {
			return Batch{}, perr.Wrapf(err, perr.ErrorCodeUpstream, "classifier sent malformed item %d", i)
		}
		out.Items = append(out.Items, Item{Index: w.Index, Text: w.Text, Result: w.result(), Raw: rawItem})
	}
	return out, nil
}

// ExportDOCX forwards items verbatim and returns the full document bytes
func (c *Client) ExportDOCX(ctx context.Context, items []json.RawMessage) ([]byte, error) {
	if items == nil {
		items = []json.RawMessage{}
	}
	body, err := json.Marshal(struct {
		Items []json.RawMessage `json:"items"`
	}{items})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "encode docx body")
	}
	return c.call(ctx, pathDOCX, "application/json", body)
}

// Ping checks the classifier health endpoint
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+pathHealth, nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "classifier new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "classifier unreachable")
	}
	_ = drainAndClose(resp.Body)
	if resp.StatusCode/100 != 2 {
		return perr.Newf(perr.ErrorCodeUnavailable, "classifier health status %d", resp.StatusCode)
	}
	return nil
}

// call posts body to path with retries and returns the fully read 2xx body
func (c *Client) call(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	url := c.opts.BaseURL + path
	reqID := c.newID()
	log := logger.C(ctx).With().Str("component", "classifier").Str("path", path).Str("upstream_id", reqID).Logger()

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "classifier call cancelled")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "classifier new request failed")
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("X-Request-ID", reqID)

		start := time.Now()
		resp, err := c.http.Do(req)
		lat := time.Since(start)

		if err != nil {
			if attempt >= c.opts.MaxRetries || ctx.Err() != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "classifier %s failed", path)
			}
			if err := c.retry(ctx, log, attempt, "transport error"); err != nil {
				return nil, err
			}
			continue
		}

		log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Dur("latency", lat).Msg("classifier http response")

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			data, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "classifier %s body read failed", path)
			}
			return data, nil
		}

		// error bodies carry {"error": "..."} when the service produced them,
		// that answer is final whatever the status
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = drainAndClose(resp.Body)
		var we wireError
		if json.Unmarshal(tail, &we) == nil && we.Error != "" {
			return nil, perr.Upstreamf("%s", we.Error)
		}
		if !transient(resp.StatusCode) {
			return nil, perr.Upstreamf("classifier %s status %d", path, resp.StatusCode)
		}
		if attempt >= c.opts.MaxRetries {
			return nil, perr.Newf(perr.ErrorCodeUnavailable, "classifier %s status %d", path, resp.StatusCode)
		}
		if err := c.retry(ctx, log, attempt, "transient status"); err != nil {
			return nil, err
		}
	}
}

func (c *Client) retry(ctx context.Context, log logger.Logger, attempt int, why string) error {
	back := backoff(c.opts.RetryBase, attempt)
	log.Warn().Dur("retry_in", back).Int("attempt", attempt).Msg("classifier " + why + " retrying")
	if err := c.sleep(ctx, back); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "classifier retry cancelled")
	}
	return nil
}
