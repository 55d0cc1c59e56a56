// Package logger owns the process zerolog root and the request scoped children hung off context
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"toxlens/internal/platform/config/raw"
)

// Logger is zerolog's logger under our name
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level     string
	Format    string // console or json
	Service   string
	Component string
	Writer    io.Writer
	Caller    bool
	// SampleEvery keeps one event in N when N > 1
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_* through the raw view, config itself logs so it cannot be used here
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:       rc.Get("LEVEL", "debug"),
		Format:      strings.ToLower(rc.Get("FORMAT", "console")),
		Service:     rc.Get("SERVICE", "toxlens"),
		Component:   rc.Get("COMPONENT", ""),
		Caller:      rc.GetBool("CALLER", false),
		SampleEvery: rc.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	initOnce sync.Once
	root     *Logger
)

// Init builds the root logger, only the first call counts
func Init(opt Options) {
	initOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var out io.Writer = os.Stdout
		if opt.Writer != nil {
			out = opt.Writer
		}
		if opt.Format == "console" {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		fields := map[string]any{}
		if bi, ok := debug.ReadBuildInfo(); ok {
			fields["go_version"] = bi.GoVersion
		}
		if opt.Service != "" {
			fields["service"] = opt.Service
		}
		if opt.Component != "" {
			fields["component"] = opt.Component
		}
		for k, v := range opt.StaticFields {
			fields[k] = v
		}

		b := zerolog.New(out).Level(level(opt.Level)).With().Timestamp().Fields(fields)
		if opt.Caller {
			b = b.Caller()
		}
		l := b.Logger()
		if opt.SampleEvery > 1 {
			l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
		}
		root = &l
		// zerolog.Ctx falls back to the root for contexts we never touched
		zerolog.DefaultContextLogger = root
	})
}

// level parses s, unknown or empty means debug
func level(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

// Get returns the root, initialising it from the environment on first use
func Get() *Logger {
	Init(FromEnv())
	return root
}

// Named is a root child tagged with component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

// C returns the logger carried by ctx, or the root
func C(ctx context.Context) *Logger {
	Get()
	return zerolog.Ctx(ctx)
}

// WithRequest hangs a child carrying request_id and surface on ctx
// surface names the result slot the request works on, single or batch
func WithRequest(ctx context.Context, reqID, surface string) context.Context {
	if reqID == "" && surface == "" {
		return ctx
	}
	b := C(ctx).With()
	if reqID != "" {
		b = b.Str("request_id", reqID)
	}
	if surface != "" {
		b = b.Str("surface", surface)
	}
	return b.Logger().WithContext(ctx)
}

// WithSurface adds only the surface field
func WithSurface(ctx context.Context, surface string) context.Context {
	return WithRequest(ctx, "", surface)
}
