// Package server provides the HTTP surface of the relay: chat relaying to the
// configured upstream provider, code execution, health and model listing.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	relayllm "github.com/HerbHall/notebookrelay/internal/llm"
	"github.com/HerbHall/notebookrelay/internal/runner"
	"github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Deps are the collaborators the handlers need. Provider may be nil, in
// which case the server runs degraded: chat fails with 500 and model listing
// serves the fallback list.
type Deps struct {
	Provider llm.Provider
	Runner   runner.Runner
	LLM      relayllm.ModuleConfig
}

// Server is the relay HTTP server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *zap.Logger
	cfg        Config
	provider   llm.Provider
	runner     runner.Runner
	llmCfg     relayllm.ModuleConfig
}

// New creates a Server with middleware and routes.
func New(cfg Config, corsCfg CORSConfig, deps Deps, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		cfg:      cfg,
		provider: deps.Provider,
		runner:   deps.Runner,
		llmCfg:   deps.LLM,
	}

	s.registerRoutes()

	// Middleware chain: outermost listed first.
	handler := Chain(s.withNotFound(mux),
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger, []string{"/metrics"}),
		SecurityHeadersMiddleware,
		VersionHeaderMiddleware,
		CORSMiddleware(corsCfg),
	)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// registerRoutes sets up all routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /models", s.handleModels)
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("POST /execute", s.handleExecute)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

// withNotFound answers paths that no route serves under any method with a
// problem response. Paths served under another method still reach the mux so
// it can reply 405.
func (s *Server) withNotFound(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.routable(r) {
			NotFound(w, "no route for "+r.URL.Path, r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) routable(r *http.Request) bool {
	for _, method := range []string{r.Method, http.MethodGet, http.MethodPost} {
		alt := *r
		alt.Method = method
		if _, pattern := s.mux.Handler(&alt); pattern != "" {
			return true
		}
	}
	return false
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
