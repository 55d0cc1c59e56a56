// Command toxlens classifies text or a file from the terminal
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"toxlens/internal/adapters/artifacts"
	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/locale"
	"toxlens/internal/core/markup"
	"toxlens/internal/platform/config"
	perr "toxlens/internal/platform/errors"
	"toxlens/internal/platform/logger"
	"toxlens/internal/platform/store"
	prefsrepo "toxlens/internal/services/api/prefs/repo"
	prefssvc "toxlens/internal/services/api/prefs/service"
	"toxlens/internal/services/export"
	"toxlens/internal/services/results"
	"toxlens/internal/services/session"
	"toxlens/internal/services/view"
)

type options struct {
	text      string
	file      string
	threshold int
	redact    bool
	export    string
	out       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("toxlens", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var o options
	fs.StringVar(&o.text, "text", "", "text to classify")
	fs.StringVar(&o.file, "file", "", "csv, txt, xlsx, docx or pdf to classify as a batch")
	fs.IntVar(&o.threshold, "threshold", -1, "set and persist the threshold (0-100) before classifying")
	fs.BoolVar(&o.redact, "redact", false, "mask flagged spans instead of highlighting them")
	fs.StringVar(&o.export, "export", "", "after -file, export the batch as csv or docx")
	fs.StringVar(&o.out, "out", ".", "directory for exported files")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.text == "" && o.file == "" && o.threshold < 0 {
		return o, errors.New("one of -text, -file or -threshold is required")
	}
	switch o.export {
	case "", "csv", "docx":
	default:
		return o, fmt.Errorf("-export must be csv or docx, got %q", o.export)
	}
	if o.export != "" && o.file == "" {
		return o, errors.New("-export needs -file")
	}
	return o, nil
}

func main() {
	if err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	core := root.Prefix("CORE_")
	l := logger.Get()
	labels := locale.New(core.MayString("UI_LANG", "vi"))

	st, err := store.Open(ctx, store.FromConfig(root), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() { _ = st.Close(context.Background()) }()

	prefs := prefssvc.New(st.SQL(), prefsrepo.ForDialect(st.Dialect()))
	if _, err := prefs.Load(ctx); err != nil {
		l.Warn().Err(err).Msg("stored threshold unreadable, using default")
	}

	client := classifier.NewClient(classifier.FromConfig(core))
	sink, err := artifacts.FromConfig(core)
	if err != nil {
		l.Warn().Err(err).Msg("export sink disabled")
	}
	cache := results.New()
	sess := session.New(session.Options{
		Classifier: client,
		Prefs:      prefs,
		Exporter:   export.New(cache, export.Options{Docs: client, Sink: sink, Labels: labels}),
		Cache:      cache,
		Labels:     labels,
	})
	defer sess.Close()

	if err := run(ctx, o, sess, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, labels.Error(err.Error()))
		os.Exit(1)
	}
}

// run drives one invocation against the controller
func run(ctx context.Context, o options, s session.Port, out io.Writer) error {
	if o.threshold >= 0 {
		v, err := s.SetThreshold(ctx, o.threshold)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "threshold: %d\n", v)
	}
	if o.redact {
		s.SetMode(markup.Redact)
	}

	if o.text != "" {
		v, err := s.Predict(ctx, o.text)
		if err != nil {
			return err
		}
		printSingle(out, v)
	}

	if o.file != "" {
		f, err := os.Open(o.file)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeValidation, "open %s", o.file)
		}
		defer f.Close()
		v, err := s.Upload(ctx, filepath.Base(o.file), f)
		if err != nil {
			return err
		}
		printBatch(out, v)
	}

	if o.export != "" {
		return exportTo(ctx, o, s, out)
	}
	return nil
}

func exportTo(ctx context.Context, o options, s session.Port, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var (
		a   export.Artifact
		err error
	)
	if o.export == "docx" {
		a, err = s.ExportDOCX(ctx)
	} else {
		a, err = s.ExportCSV(ctx)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "create %s", o.out)
	}
	path := filepath.Join(o.out, a.Name)
	if err := os.WriteFile(path, a.Body, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "write %s", path)
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	if a.Location != "" {
		fmt.Fprintf(out, "stored %s\n", a.Location)
	}
	return nil
}

func printSingle(out io.Writer, v view.SingleView) {
	fmt.Fprintln(out, v.VerdictLine)
	fmt.Fprintln(out, v.Rendered)
	for _, sp := range v.Spans {
		fmt.Fprintf(out, "  %s %s %s\n", sp.Interval, sp.Text, sp.Sources)
	}
}

func printBatch(out io.Writer, v view.BatchView) {
	fmt.Fprintf(out, "flagged: %d clean: %d threshold: %d\n", v.Counts.Flagged, v.Counts.Clean, v.Threshold)
	for _, r := range v.Rows {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", r.Index, r.ScoreText, r.Label, strings.ReplaceAll(r.Rendered, "\n", " "))
	}
}
