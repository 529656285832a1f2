package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JPRanx/omni-v4-sub001/internal/storage/postgres"
)

// ServerConfig holds dashboard server configuration.
type ServerConfig struct {
	Port      int
	OutputDir string
	Logger    *zap.Logger
	// Store is an optional readiness dependency; nil reports not_configured.
	Store *postgres.Store
}

// Server serves the batch artifact and dashboard module over HTTP.
type Server struct {
	router    *chi.Mux
	logger    *zap.Logger
	port      int
	outputDir string
	store     *postgres.Store
}

// NewServer creates the HTTP server with configured middleware and routes.
func NewServer(cfg ServerConfig) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	s := &Server{
		router:    r,
		logger:    cfg.Logger,
		port:      cfg.Port,
		outputDir: cfg.OutputDir,
		store:     cfg.Store,
	}

	r.Get("/healthz", healthzHandler)
	r.Get("/readyz", s.readyzHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", http.FileServer(http.Dir(cfg.OutputDir)))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the server until ctx is cancelled, then drains in-flight
// requests with a 10-second grace period.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard server listening",
			zap.Int("port", s.port),
			zap.String("output_dir", s.outputDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// readyzHandler checks the output directory and, when configured, the
// database connection.
func (s *Server) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	allHealthy := true

	if info, err := os.Stat(s.outputDir); err != nil || !info.IsDir() {
		components["output_dir"] = "unhealthy"
		allHealthy = false
	} else {
		components["output_dir"] = "healthy"
	}

	if s.store != nil {
		pgCtx, pgCancel := context.WithTimeout(ctx, 1*time.Second)
		if err := s.store.Ping(pgCtx); err != nil {
			components["postgres"] = "unhealthy"
			allHealthy = false
			s.logger.Debug("postgres readiness check failed", zap.Error(err))
		} else {
			components["postgres"] = "healthy"
		}
		pgCancel()
	} else {
		components["postgres"] = "not_configured"
	}

	response := map[string]interface{}{
		"status":     "ready",
		"components": components,
		"timestamp":  time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if !allHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(response)
}
