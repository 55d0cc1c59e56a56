// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	modkit "toxlens/internal/modkit"
	"toxlens/internal/modkit/httpkit"
	str "toxlens/internal/platform/strings"

	metahttp "toxlens/internal/services/api/meta/http"
)

// Ports lets the composition root hand dependency probes to /health
type Ports struct {
	Checks []metahttp.Check
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	register func(httpkit.Router)

	startedAt time.Time
}

// New constructs a meta module, probes come in through modkit.WithPorts(Ports{...})
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
	}, opts...)...)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		startedAt: time.Now(),
	}

	var checks []metahttp.Check
	if p, ok := b.Ports.(Ports); ok {
		checks = p.Checks
	}
	if p, ok := deps.SQL.(metahttp.Pinger); ok {
		checks = append([]metahttp.Check{{Name: "prefs", Target: p}}, checks...)
	}

	m.register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: deps.Cfg.MayString("SERVICE_NAME", "toxlens-ui"),
			StartedAt:   m.startedAt,
			Checks:      checks,
		})
	}

	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	mount := func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	}
	if m.prefix == "" {
		r.Group(mount)
		return
	}
	r.Route(m.prefix, mount)
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
