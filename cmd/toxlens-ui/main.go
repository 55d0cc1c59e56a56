// @title         toxlens
// @version       1.0.0
// @description   Toxicity verdicts with highlighted or redacted text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"toxlens/internal/modkit/repokit"
	"toxlens/internal/platform/config"
	"toxlens/internal/platform/logger"
	phttp "toxlens/internal/platform/net/http"
	"toxlens/internal/platform/store"

	"toxlens/internal/services/api"
)

func main() {
	// .env is optional, real env wins
	if err := config.Load(); err != nil {
		logger.Get().Panic().Err(err).Msg("load .env")
	}

	root := config.New()
	uiCfg := root.Prefix("CORE_UI_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// preference store, sqlite unless CORE_PREFS_DRIVER=postgres
	st, err := store.Open(ctx, store.FromConfig(root), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	repokit.MustGuard(ctx, st)
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_UI_API_PORT)
	srv := phttp.NewServer(uiCfg)

	release := api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  uiCfg.MayBool("SWAGGER", true),
			EnableProfiler: uiCfg.MayBool("PROFILER", false),
		},
	)
	defer release()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("shutdown complete")
}
