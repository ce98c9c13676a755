// Package metrics exposes Prometheus instrumentation for the simulation
// service: HTTP traffic, session and frame activity, transit events, SSE
// streaming, and light-curve synthesis.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exoviz_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exoviz_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "exoviz_sessions_active",
		Help: "Number of simulation sessions currently running.",
	})

	framesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exoviz_frames_total",
		Help: "Total simulation frames computed.",
	})

	frameDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "exoviz_frame_duration_seconds",
		Help:    "Time spent computing one simulation frame.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})

	transitEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exoviz_transit_events_total",
			Help: "Transit ingress events detected, per planet.",
		},
		[]string{"planet_id"},
	)

	sceneBodies = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "exoviz_scene_bodies",
		Help: "Number of planets in the active scene.",
	})

	streamConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exoviz_stream_connections_total",
			Help: "SSE stream connects and disconnects.",
		},
		[]string{"action"},
	)

	streamsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "exoviz_streams_active",
		Help: "Currently connected SSE streams.",
	})

	streamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exoviz_stream_errors_total",
			Help: "SSE stream errors by kind.",
		},
		[]string{"kind"},
	)

	streamMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exoviz_stream_messages_total",
		Help: "SSE messages sent.",
	})

	streamBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exoviz_stream_bytes_total",
		Help: "SSE payload bytes sent.",
	})

	lightcurveDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "exoviz_lightcurve_duration_seconds",
		Help:    "Time spent synthesizing a light curve.",
		Buckets: prometheus.DefBuckets,
	})

	lightcurveSamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exoviz_lightcurve_samples_total",
		Help: "Light-curve samples computed.",
	})

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exoviz_predictions_total",
			Help: "Mock classifier invocations by model.",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		sessionsActive,
		framesTotal,
		frameDurationSeconds,
		transitEventsTotal,
		sceneBodies,
		streamConnectionsTotal,
		streamsActive,
		streamErrorsTotal,
		streamMessagesTotal,
		streamBytesTotal,
		lightcurveDurationSeconds,
		lightcurveSamplesTotal,
		predictionsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncSessionsActive increments the active-session gauge.
func IncSessionsActive() { sessionsActive.Inc() }

// DecSessionsActive decrements the active-session gauge.
func DecSessionsActive() { sessionsActive.Dec() }

// IncFrames counts one computed frame.
func IncFrames() { framesTotal.Inc() }

// ObserveFrameDuration records the cost of one frame.
func ObserveFrameDuration(d time.Duration) { frameDurationSeconds.Observe(d.Seconds()) }

// IncTransitEvents counts a transit ingress for the planet.
func IncTransitEvents(planetID string) { transitEventsTotal.WithLabelValues(planetID).Inc() }

// SetSceneBodies publishes the active scene's planet count.
func SetSceneBodies(n int) { sceneBodies.Set(float64(n)) }

// IncStreamConnections counts a stream lifecycle event ("connect" or
// "disconnect").
func IncStreamConnections(action string) { streamConnectionsTotal.WithLabelValues(action).Inc() }

// IncStreamsActive increments the connected-streams gauge.
func IncStreamsActive() { streamsActive.Inc() }

// DecStreamsActive decrements the connected-streams gauge.
func DecStreamsActive() { streamsActive.Dec() }

// IncStreamErrors counts a stream error by kind.
func IncStreamErrors(kind string) { streamErrorsTotal.WithLabelValues(kind).Inc() }

// IncStreamMessages counts one SSE message.
func IncStreamMessages() { streamMessagesTotal.Inc() }

// AddStreamBytes counts SSE payload bytes.
func AddStreamBytes(n int64) { streamBytesTotal.Add(float64(n)) }

// RecordLightcurve records one light-curve synthesis.
func RecordLightcurve(d time.Duration, samples int) {
	lightcurveDurationSeconds.Observe(d.Seconds())
	lightcurveSamplesTotal.Add(float64(samples))
}

// IncPredictions counts a mock classifier call.
func IncPredictions(model string) { predictionsTotal.WithLabelValues(model).Inc() }

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush lets SSE responses stream through the middleware.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap keeps http.ResponseController functional through the wrapper.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}
