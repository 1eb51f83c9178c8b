package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/theater-wx-engine/internal/domain"
	"github.com/couchcryptid/theater-wx-engine/internal/engine"
	"github.com/couchcryptid/theater-wx-engine/internal/storage/sqlite"
)

// Weather is the read side of the engine the query API serves from.
type Weather interface {
	Current() *engine.Snapshot
	Frame() *domain.Frame
	Changed() bool
	Export() ([]byte, error)
}

// PassHistory lists archived decode passes.
type PassHistory interface {
	RecentPasses(ctx context.Context, limit int) ([]sqlite.PassRecord, error)
	ReportsForPass(ctx context.Context, passID string) ([]domain.StationReport, error)
}

// Server exposes the weather query API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	weather    Weather
	history    PassHistory
	units      domain.UnitSystem
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 query routes.
func NewServer(addr string, weather Weather, ready sharedobs.ReadinessChecker, units domain.UnitSystem, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:     mux,
		weather: weather,
		units:   units,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/v1/changed", s.handleChanged)
	mux.HandleFunc("GET /api/v1/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/v1/point", s.handlePoint)
	mux.HandleFunc("GET /api/v1/metar", s.handleMetar)
	mux.HandleFunc("GET /api/v1/winds", s.handleWinds)
	mux.HandleFunc("GET /api/v1/density-altitude", s.handleDensityAltitude)
	mux.HandleFunc("GET /api/v1/export", s.handleExport)

	return s
}

// WithHistory adds the /api/v1/passes routes backed by h.
func (s *Server) WithHistory(h PassHistory) *Server {
	s.history = h
	s.mux.HandleFunc("GET /api/v1/passes", s.handlePasses)
	s.mux.HandleFunc("GET /api/v1/passes/{id}/reports", s.handlePassReports)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
