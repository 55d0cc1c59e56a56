package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"

	kit "toxlens/internal/platform/testkit"
)

func TestLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"INFO":     zerolog.InfoLevel,
		" warning": zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.DebugLevel,
		"loud":     zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := level(in); got != want {
			t.Fatalf("level(%q) = %v, want %v", in, got, want)
		}
	}
}

// Init runs once per process so everything that depends on the writer lives here
func TestInit_ScopedChildren(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "info",
		Format:       "json",
		Service:      "toxlens-test",
		Writer:       &buf,
		StaticFields: map[string]string{"build": "test"},
	})

	Named("session").Info().Msg("named")
	ctx := WithRequest(context.Background(), "req-7", "")
	ctx = WithSurface(ctx, "batch")
	C(ctx).Info().Msg("scoped")
	C(context.Background()).Debug().Msg("below level")

	out := buf.String()
	for _, want := range []string{
		`"component":"session"`,
		`"request_id":"req-7"`,
		`"surface":"batch"`,
		`"service":"toxlens-test"`,
		`"build":"test"`,
	} {
		kit.MustContain(t, out, want)
	}
	if bytes.Contains(buf.Bytes(), []byte("below level")) {
		t.Fatalf("debug line written at info level")
	}
}

func TestWithRequest_EmptyKeepsContext(t *testing.T) {
	ctx := context.Background()
	if WithRequest(ctx, "", "") != ctx {
		t.Fatalf("empty WithRequest should return ctx unchanged")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")
	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || !opt.Caller || opt.SampleEvery != 5 || opt.Service != "toxlens" {
		t.Fatalf("FromEnv = %+v", opt)
	}
}
