// Package api wires the HTTP surface: health probes, metrics, the scene
// endpoints, the SSE frame stream, per-session controls, the light-curve
// synthesizer, and the mocked prediction endpoints.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/auth"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/health"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/metrics"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/stream"
	"github.com/namdpran8/SpaceAppCHallange2K25/web"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	store      *scene.Store
	registry   *stream.Registry
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, store *scene.Store, streamCfg stream.Config, logger *slog.Logger, authCfg auth.Config) *Server {
	registry := stream.NewRegistry()
	streamHandler := stream.NewHandler(store, registry, streamCfg, logger)

	s := &Server{
		store:    store,
		registry: registry,
		logger:   logger,
	}

	mux := http.NewServeMux()

	// Register routes.
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(store))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/v1/scene", s.handleGetScene)
	mux.HandleFunc("POST /api/v1/scene", s.handleSetScene)
	mux.HandleFunc("GET /api/v1/stream/frames", streamHandler.HandleFrames)
	mux.HandleFunc("POST /api/v1/session/{id}/seek", s.handleSeek)
	mux.HandleFunc("POST /api/v1/session/{id}/select", s.handleSelect)
	mux.HandleFunc("POST /api/v1/session/{id}/playback", s.handlePlayback)
	mux.HandleFunc("GET /api/v1/lightcurve", s.handleLightcurve)

	mux.HandleFunc("GET /api/v1/models/info", s.handleModelsInfo)
	mux.HandleFunc("POST /api/v1/predict", s.handlePredict)
	mux.HandleFunc("POST /api/v1/predict/batch", s.handlePredictBatch)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/features/importance", s.handleFeatureImportance)
	mux.HandleFunc("GET /api/v1/examples", s.handleExamples)

	mux.Handle("GET /", web.Handler())

	// Build middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush lets the SSE handler stream through the middleware chain.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the wrapped writer so http.ResponseController keeps
// working through the middleware chain.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
