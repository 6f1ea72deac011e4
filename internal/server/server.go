// Package server hosts the self-hosted tile endpoint: dynamic tiles
// rendered from MBTiles sources, range-served static archives, composed
// style documents, and an HTTP bridge to the dropped-archive registry.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tilebound/tileview/internal/server/tilecache"
	"github.com/tilebound/tileview/pkg/archive/registry"
	"github.com/tilebound/tileview/pkg/mbtiles"
)

// Config holds server configuration.
type Config struct {
	Addr      string        // listen address, e.g. ":8080"
	DataDir   string        // directory of .mbtiles sources
	StaticDir string        // directory of static tile archives ("" disables /static)
	AssetBase string        // remote sprite/glyph base ("" = default)
	CacheTTL  time.Duration // tile cache entry lifetime (0 = no expiry)
	AllowAll  bool          // allow all CORS origins
}

// Server serves tiles, styles, and archive byte ranges.
type Server struct {
	cfg      Config
	catalog  *mbtiles.Catalog
	protocol *registry.Protocol
	cache    tilecache.Cache
	logger   *log.Logger

	router     chi.Router
	httpServer *http.Server
}

// New wires a server from its dependencies. A nil cache disables tile
// caching.
func New(cfg Config, catalog *mbtiles.Catalog, protocol *registry.Protocol, cache tilecache.Cache, logger *log.Logger) *Server {
	if cache == nil {
		cache = tilecache.NewNull()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:      cfg,
		catalog:  catalog,
		protocol: protocol,
		cache:    cache,
		logger:   logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Range"},
		ExposedHeaders: []string{"Content-Range", "Accept-Ranges", "Content-Length"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/health", handleHealth)
	r.Get("/catalog", s.handleCatalog)
	r.Get("/mvt/{source}/{z}/{x}/{y}.mvt", s.handleTile)
	r.Get("/style/{theme}.json", s.handleStyle)
	r.Method("GET", "/archive/{key}", http.HandlerFunc(s.handleArchiveRange))
	r.Method("HEAD", "/archive/{key}", http.HandlerFunc(s.handleArchiveRange))
	if s.cfg.StaticDir != "" {
		r.Get("/static/{name}", s.handleStatic)
		r.Head("/static/{name}", s.handleStatic)
	}

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address until the server is shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("tile endpoint listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and closes the tile cache.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.cache.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// requestLogger logs one line per request at debug level, with status
// and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
		)
	})
}
