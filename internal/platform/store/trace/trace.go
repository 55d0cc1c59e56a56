// Package trace logs statements issued through the store
package trace

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"toxlens/internal/platform/logger"
)

// QueryEvent is one finished statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs through root at debug or above regardless of the root level,
// turning it on is the opt-in
func Tracer(root logger.Logger, component string) QueryTracer {
	return zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", component).Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	lvl := zerolog.DebugLevel
	switch {
	case ev.Err != nil:
		lvl = zerolog.ErrorLevel
	case ev.Slow:
		lvl = zerolog.WarnLevel
	}
	z.log.WithLevel(lvl).
		Str("sql", strings.Join(strings.Fields(ev.SQL), " ")).
		Interface("args", ev.Args).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Err(ev.Err).
		Msg("query")
}
