package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hongminglow/valide/internal/auth"
	"github.com/hongminglow/valide/internal/catalog"
	"github.com/hongminglow/valide/internal/config"
	"github.com/hongminglow/valide/internal/http/handlers"
	"github.com/hongminglow/valide/internal/identity"
	"github.com/hongminglow/valide/internal/metrics"
	"github.com/hongminglow/valide/internal/middleware"
	"github.com/hongminglow/valide/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner  *http.Server
	store  storage.BucketStore
	logger *zap.Logger
}

// Deps are the collaborators the gateway talks to.
type Deps struct {
	Store    storage.BucketStore
	Identity *identity.Client
	Catalog  handlers.Catalog
	Logger   *zap.Logger
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	metrics.Init()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Identity == nil {
		deps.Identity = identity.NewClient(cfg.IdentityAPIURL, identity.WithHTTPClient(metrics.InstrumentedClient("identity")))
	}
	if deps.Catalog == nil {
		deps.Catalog = catalog.NewClient(cfg.CatalogAPIURL, catalog.WithHTTPClient(metrics.InstrumentedClient("catalog")))
	}

	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL)
	sessions := handlers.NewSessions(deps.Store, deps.Identity, cfg.SessionTTL, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover(logger), middleware.Logging(logger), middleware.HTTPMetrics)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	var pinger handlers.Pinger
	if p, ok := deps.Store.(handlers.Pinger); ok {
		pinger = p
	}
	handlers.NewHealthHandler(time.Now(), pinger).Register(r)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.BrowserSession(tokens, !cfg.IsDev(), logger))
		handlers.NewAuthHandler(deps.Identity, sessions, logger).Register(r)
		handlers.NewCatalogHandler(deps.Catalog, sessions, logger).Register(r)
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, store: deps.Store, logger: logger}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

// RunJanitor purges expired session items every interval until ctx ends.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.store.Purge(ctx, now)
			if err != nil {
				s.logger.Warn("purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				s.logger.Debug("purged expired session items", zap.Int64("count", n))
			}
		}
	}
}
