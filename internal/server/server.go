// Package server is the upload-and-analyze web front end: an HTML form,
// a JSON API, and the operational endpoints around them.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vrclog/presence-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server wires the presence analyzer into an HTTP front end.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	limiter *limiterStore
	tmpl    *template.Template
	router  chi.Router
	httpSrv *http.Server

	// shuttingDown flips before Shutdown so the readiness probe drains
	// load balancers ahead of connection close.
	shuttingDown atomic.Bool
}

// New builds a Server from validated config.
func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:  cfg,
		log:  log,
		tmpl: tmpl,
	}
	if cfg.Limits.RatePerMinute > 0 {
		s.limiter = newLimiterStore(cfg.Limits.RatePerMinute, cfg.Limits.Burst, 10*time.Minute)
	}
	s.router = s.routes()
	s.httpSrv = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"X-Analysis-ID"},
		MaxAge:         300,
	}))
	r.Use(collectMetrics)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Analysis endpoints do real work per request; they get the per-IP
	// budget.
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/upload", s.handleUpload)
		r.Post("/api/analyze", s.handleAPIAnalyze)
	})

	return r
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server started", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.shuttingDown.Store(true)

	shutCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	err := s.httpSrv.Shutdown(shutCtx)
	s.log.Info("server stopped")
	return err
}
