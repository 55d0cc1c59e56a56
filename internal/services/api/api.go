// Package api provides the HTTP API for the application
package api

import (
	"toxlens/internal/platform/config"
	"toxlens/internal/platform/logger"
	phttp "toxlens/internal/platform/net/http"
	"toxlens/internal/platform/store"

	"toxlens/internal/modkit"
	"toxlens/internal/modkit/httpkit"
	"toxlens/internal/modkit/module"
	"toxlens/internal/modkit/swaggerkit"

	metahttp "toxlens/internal/services/api/meta/http"
	metamod "toxlens/internal/services/api/meta/module"
	prefsmod "toxlens/internal/services/api/prefs/module"
	prefssvc "toxlens/internal/services/api/prefs/service"
	sessionmod "toxlens/internal/services/api/session/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	// Upstream overrides the classifier client, nil builds one from config
	Upstream sessionmod.Upstream
}

// streamMounter is implemented by modules that serve long lived connections
type streamMounter interface {
	MountStream(r httpkit.Router)
}

// pageMounter is implemented by modules that serve pages at the root
type pageMounter interface {
	MountPage(r httpkit.Router)
}

// Mount mounts the API service onto the given router
// the returned func releases module resources
func Mount(r phttp.Router, opt Options) func() {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil {
		deps.SQL = opt.Store.SQL()
		deps.SQLDialect = opt.Store.Dialect()
	}

	// prefs first, the session subscribes to its threshold
	prefs := prefsmod.New(deps)
	session := sessionmod.New(deps, modkit.WithPorts(sessionmod.Ports{
		Prefs:    module.MustPortsOf[prefssvc.Service](prefs),
		Upstream: opt.Upstream,
	}))
	upstream := module.MustPortsOf[sessionmod.Provides](session).Upstream

	meta := metamod.New(deps, modkit.WithPorts(metamod.Ports{
		Checks: []metahttp.Check{{Name: "classifier", Target: upstream}},
	}))

	mods := []module.Module{meta, prefs, session}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	// versioned API, request/response routes and streams get different stacks
	httpkit.MountAPIV1(r, nil, func(api httpkit.Router) {
		api.Group(func(g httpkit.Router) {
			g.Use(httpkit.CommonStack()...)
			for _, m := range mods {
				// register each module's ports under its own name (for cross-module lookups)
				module.Register(m.Name(), m.Ports())

				// mount module routes under its Prefix()
				m.MountRoutes(g)
			}
		})
		api.Group(func(g httpkit.Router) {
			g.Use(httpkit.StreamStack()...)
			for _, m := range mods {
				if sm, ok := m.(streamMounter); ok {
					sm.MountStream(g)
				}
			}
		})
	})

	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.StreamStack()...)
		for _, m := range mods {
			if pm, ok := m.(pageMounter); ok {
				pm.MountPage(g)
			}
		}
	})

	return func() {
		for _, m := range mods {
			if c, ok := m.(interface{ Close() }); ok {
				c.Close()
			}
		}
	}
}
