// Package module wires preferences into the API using modkit
package module

import (
	"context"
	"net/http"
	"time"

	modkit "toxlens/internal/modkit"
	"toxlens/internal/modkit/httpkit"
	"toxlens/internal/platform/logger"
	str "toxlens/internal/platform/strings"
	prefshttp "toxlens/internal/services/api/prefs/http"
	prefsrepo "toxlens/internal/services/api/prefs/repo"
	prefssvc "toxlens/internal/services/api/prefs/service"
)

// loadTimeout bounds the startup read of the stored threshold
const loadTimeout = 5 * time.Second

// Module implements the prefs module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)

	svc prefssvc.Service
}

// New constructs the prefs module and reads the stored threshold once
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("prefs"), modkit.WithPrefix("/prefs")}, opts...)...)

	svc := prefssvc.New(deps.SQL, prefsrepo.ForDialect(deps.SQLDialect))

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	if v, err := svc.Load(ctx); err != nil {
		logger.Named("prefs").Warn().Err(err).Int("threshold", v).Msg("stored threshold unreadable, using default")
	}

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
	}

	m.register = func(r httpkit.Router) {
		prefshttp.Register(r, m.svc)
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Ports exposes the prefs service to the session module
func (m *Module) Ports() any { return m.svc }
