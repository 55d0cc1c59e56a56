package session

import (
	"context"
	"io"

	"toxlens/internal/core/locale"
	"toxlens/internal/core/markup"
	"toxlens/internal/services/export"
	"toxlens/internal/services/view"
)

// Port is the controller surface used by transports
type Port interface {
	Predict(ctx context.Context, text string) (view.SingleView, error)
	Upload(ctx context.Context, filename string, r io.Reader) (view.BatchView, error)
	Single() (view.SingleView, bool)
	Batch() (view.BatchView, bool)
	ClearSingle()

	Threshold() int
	SetThreshold(ctx context.Context, v int) (int, error)
	Mode() markup.Mode
	SetMode(m markup.Mode)
	Labels() *locale.Labels

	ExportCSV(ctx context.Context) (export.Artifact, error)
	ExportDOCX(ctx context.Context) (export.Artifact, error)

	Subscribe(ctx context.Context) <-chan Event
}

var _ Port = (*Service)(nil)
