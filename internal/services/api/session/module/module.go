// Package module wires the session controller into the API using modkit
package module

import (
	stdctx "context"
	"net/http"
	"time"

	"toxlens/internal/adapters/artifacts"
	"toxlens/internal/adapters/chart"
	"toxlens/internal/adapters/classifier"
	"toxlens/internal/core/locale"
	modkit "toxlens/internal/modkit"
	"toxlens/internal/modkit/httpkit"
	"toxlens/internal/platform/logger"
	"toxlens/internal/platform/net/middleware"
	str "toxlens/internal/platform/strings"
	sessionhttp "toxlens/internal/services/api/session/http"
	"toxlens/internal/services/export"
	"toxlens/internal/services/results"
	"toxlens/internal/services/session"
)

// Ports are what the session needs from other modules
type Ports struct {
	Prefs session.Prefs
	// Upstream overrides the classifier client built from CORE_CLASSIFIER_*
	Upstream Upstream
}

// Provides is what the session exposes to other modules
type Provides struct {
	Session session.Port
	// Upstream probes the classifier for /health
	Upstream interface{ Ping(stdctx.Context) error }
}

// Upstream is the classifier surface the module wires, *classifier.Client in production
type Upstream interface {
	session.Classifier
	export.DocumentRenderer
	Ping(ctx stdctx.Context) error
}

// Module implements the session module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)

	svc    *session.Service
	charts *chart.Renderer
	up     Upstream
}

// New constructs the session module, prefs arrive through modkit.WithPorts(Ports{...})
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("session"), modkit.WithPrefix("/session")}, opts...)...)
	log := logger.Named("session")

	ports, ok := b.Ports.(Ports)
	if !ok || ports.Prefs == nil {
		panic("session module requires Ports{Prefs}")
	}

	cfg := deps.Cfg.Prefix("CORE_")
	labels := locale.New(cfg.MayString("UI_LANG", "vi"))

	up := ports.Upstream
	if up == nil {
		up = classifier.NewClient(classifier.FromConfig(cfg))
	}

	charts, err := chart.New(chart.Options{
		Size:    cfg.MayInt("CHART_SIZE", 0),
		Entries: cfg.MayInt("CHART_ENTRIES", 0),
	})
	if err != nil {
		panic(err)
	}

	sink, err := artifacts.FromConfig(cfg)
	if err != nil {
		// exports still download, only the stored copy is lost
		log.Warn().Err(err).Msg("export sink disabled")
	}

	cache := results.New()
	exp := export.New(cache, export.Options{Docs: up, Sink: sink, Labels: labels})

	prefix := b.Prefix
	svc := session.New(session.Options{
		Classifier: up,
		Prefs:      ports.Prefs,
		Charts:     charts,
		Exporter:   exp,
		Cache:      cache,
		Labels:     labels,
		ChartPath:  httpkit.APIV1 + prefix + "/charts/",
	})

	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: prefix,
		mws:    b.Mw,
		svc:    svc,
		charts: charts,
		up:     up,
	}

	maxUpload := int64(cfg.MayInt("UI_MAX_UPLOAD_MB", 10)) << 20
	m.register = func(r httpkit.Router) {
		sessionhttp.Register(r, sessionhttp.Deps{
			Session:        m.svc,
			Charts:         m.charts,
			MaxUploadBytes: maxUpload,
			UploadMiddleware: []func(http.Handler) http.Handler{
				middleware.AllowContentType("multipart/form-data"),
				middleware.Throttle(cfg.MayInt("UI_UPLOAD_CONCURRENCY", 4), cfg.MayInt("UI_UPLOAD_BACKLOG", 8), 30*time.Second),
			},
		})
	}
	return m
}

// MountRoutes mounts the JSON routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	})
}

// MountStream mounts the websocket under the module prefix
// r must not carry a request timeout
func (m *Module) MountStream(r httpkit.Router) {
	r.Get(m.prefix+"/ws", sessionhttp.Stream(m.svc))
}

// MountPage serves the HTML page at the router root
func (m *Module) MountPage(r httpkit.Router) {
	r.Get("/", sessionhttp.Page(m.svc, httpkit.APIV1+m.prefix, httpkit.APIV1+m.prefix+"/ws"))
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Ports exposes the controller and the classifier probe
func (m *Module) Ports() any { return Provides{Session: m.svc, Upstream: m.up} }

// Close stops pushing events
func (m *Module) Close() { m.svc.Close() }
