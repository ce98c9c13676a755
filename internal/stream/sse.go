// Package stream implements Server-Sent Events (SSE) streaming of simulation
// frames. Clients connect via GET /api/v1/stream/frames and receive a
// continuous stream of scaled scene-space positions for every planet, driven
// by a per-connection simulation session.
//
// SSE message format:
//
//	data: {"type":"frame","t":1735689600,"bodies":[...],"any_transit":false}\n\n
//
// First message is always metadata and carries the session id the control
// endpoints address:
//
//	data: {"type":"metadata","session_id":"...","epoch":1735689600,...}\n\n
//
// Transit entries and planet selections are interleaved as their own message
// types. Keep-alive comments (:\n\n) are sent every KeepaliveInterval to
// prevent proxy timeouts.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/bridge"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/metrics"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/session"
)

// Config holds streaming configuration loaded from environment variables.
type Config struct {
	MaxConcurrentPerIP int           // Max concurrent streams per IP (default: 10).
	KeepaliveInterval  time.Duration // Keep-alive ping interval (default: 30s).
	FrameInterval      time.Duration // Frame cadence (default: 33ms, ~30fps).
	TrustProxy         bool          // Trust X-Forwarded-For / X-Real-IP.
}

// Handler manages SSE streaming connections and the sessions behind them.
type Handler struct {
	store    *scene.Store
	registry *Registry
	config   Config
	limiter  *streamLimiter
	logger   *slog.Logger
}

// NewHandler creates a new streaming handler.
func NewHandler(store *scene.Store, registry *Registry, config Config, logger *slog.Logger) *Handler {
	if config.MaxConcurrentPerIP <= 0 {
		config.MaxConcurrentPerIP = 10
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = 30 * time.Second
	}
	if config.FrameInterval <= 0 {
		config.FrameInterval = 33 * time.Millisecond
	}
	return &Handler{
		store:    store,
		registry: registry,
		config:   config,
		limiter:  newStreamLimiter(config.MaxConcurrentPerIP),
		logger:   logger,
	}
}

// HandleFrames serves the SSE frame stream.
// GET /api/v1/stream/frames?trails=1&sync=0&speed=1
func (h *Handler) HandleFrames(w http.ResponseWriter, r *http.Request) {
	sc := h.store.Get()
	if sc == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "no scene loaded"})
		return
	}

	// Parse query parameters.
	trails := true
	if v := r.URL.Query().Get("trails"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid trails parameter, must be boolean"})
			return
		}
		trails = b
	}

	sync := false
	if v := r.URL.Query().Get("sync"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid sync parameter, must be boolean"})
			return
		}
		sync = b
	}

	cfg := session.DefaultConfig()
	cfg.FrameInterval = h.config.FrameInterval
	cfg.Trails = trails
	cfg.Sync = sync
	if v := r.URL.Query().Get("speed"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid speed parameter, must be positive"})
			return
		}
		cfg.Clock.InitialSpeed = f
	}

	// Rate limiting: enforce concurrent stream limit per IP.
	ip := clientIP(r, h.config.TrustProxy)
	if !h.limiter.acquire(ip) {
		metrics.IncStreamErrors("rate_limit")
		h.logger.Warn("stream rate limit exceeded",
			"remote_ip", ip,
			"current_count", h.limiter.count(ip),
		)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "too many concurrent streams"})
		return
	}

	metrics.IncStreamConnections("connect")
	metrics.IncStreamsActive()

	startTime := time.Now()
	h.logger.Info("stream connected",
		"remote_ip", ip,
		"user_agent", r.Header.Get("User-Agent"),
		"trails", trails,
		"sync", sync,
	)

	// Cleanup on disconnect: release rate limit slot and update metrics.
	defer func() {
		h.limiter.release(ip)
		metrics.IncStreamConnections("disconnect")
		metrics.DecStreamsActive()
		h.logger.Info("stream disconnected",
			"remote_ip", ip,
			"duration_seconds", int(time.Since(startTime).Seconds()),
		)
	}()

	// Verify flusher support (required for SSE).
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "streaming not supported"})
		return
	}

	// Set SSE response headers.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Use ResponseController to manage write deadlines for long-lived SSE.
	// Clear the server's default WriteTimeout for this connection.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("could not clear write deadline", "error", err)
	}

	c := &client{
		w:       w,
		flusher: flusher,
		rc:      rc,
		ip:      ip,
		logger:  h.logger,
	}

	// Send jittered retry interval (3-7s) to prevent thundering-herd
	// reconnection storms when the server restarts.
	retryMs := 3000 + rand.Intn(4000)
	fmt.Fprintf(w, "retry: %d\n\n", retryMs)
	flusher.Flush()

	// One session per connection. Registering it makes the control endpoints
	// (seek, select, playback) reachable for this stream's lifetime.
	sess := session.New(sc, cfg, h.logger)
	id := h.registry.Add(sess)
	defer func() {
		h.registry.Remove(id)
		sess.Close()
	}()

	start, end := sc.TimeRange()
	meta := metadataMessage{
		Type:       "metadata",
		SessionID:  id,
		Epoch:      sc.Epoch,
		RangeStart: start,
		RangeEnd:   end,
		Star:       sc.Star.Name,
		StarRadius: sc.Star.Radius,
		Planets:    len(sc.Planets),
	}
	if err := c.sendJSON(meta); err != nil {
		metrics.IncStreamErrors("send_error")
		h.logger.Warn("stream send error (metadata)", "remote_ip", ip, "error", err)
		return
	}

	ctx := r.Context()

	// Frames come from the session loop; bus events are forwarded from
	// subscriber callbacks. Both channels drop rather than block so a slow
	// reader never stalls the simulation tick.
	frames := make(chan session.Frame, 4)
	events := make(chan any, 16)

	unsubTransit := sess.Bus().OnTransitDetected(func(ev bridge.TransitDetected) {
		select {
		case events <- transitMessage{Type: "transit_detected", PlanetID: ev.PlanetID, T: ev.TransitTime}:
		default:
		}
	})
	defer unsubTransit()
	unsubSelected := sess.Bus().OnPlanetSelected(func(ev bridge.PlanetSelected) {
		select {
		case events <- selectedMessage{Type: "planet_selected", PlanetID: ev.PlanetID}:
		default:
		}
	})
	defer unsubSelected()

	sess.Clock().Play()
	go sess.Run(ctx, func(f session.Frame) {
		select {
		case frames <- f:
		default: // drop frame, next tick supersedes it
		}
	})

	keepaliveTicker := time.NewTicker(h.config.KeepaliveInterval)
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case f := <-frames:
			msg := buildFrameMessage(sc, f)
			data, err := json.Marshal(msg)
			if err != nil {
				metrics.IncStreamErrors("marshal_error")
				h.logger.Warn("stream marshal error", "remote_ip", ip, "error", err)
				continue
			}
			if err := c.sendRaw(data); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error", "remote_ip", ip, "error", err)
				return
			}
			keepaliveTicker.Reset(h.config.KeepaliveInterval)

		case ev := <-events:
			if err := c.sendJSON(ev); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream send error (event)", "remote_ip", ip, "error", err)
				return
			}
			keepaliveTicker.Reset(h.config.KeepaliveInterval)

		case <-keepaliveTicker.C:
			if err := c.sendKeepalive(); err != nil {
				metrics.IncStreamErrors("send_error")
				h.logger.Warn("stream keepalive error", "remote_ip", ip, "error", err)
				return
			}
		}
	}
}

// buildFrameMessage formats a session frame into the SSE payload. Bodies
// are emitted in scene order so the client can index them stably.
func buildFrameMessage(sc *scene.Scene, f session.Frame) frameMessage {
	transiting := make(map[string]bool, len(f.Transiting))
	for _, id := range f.Transiting {
		transiting[id] = true
	}

	bodies := make([]bodyPayload, len(sc.Planets))
	for i := range sc.Planets {
		p := &sc.Planets[i]
		pos := f.Positions[p.ID]
		bodies[i] = bodyPayload{
			ID:      p.ID,
			P:       [3]float64{pos.X, pos.Y, pos.Z},
			Transit: transiting[p.ID],
		}
		if tr, ok := f.Trails[p.ID]; ok && len(tr) > 0 {
			pts := make([][3]float64, len(tr))
			for j, v := range tr {
				pts[j] = [3]float64{v.X, v.Y, v.Z}
			}
			bodies[i].Tr = pts
		}
	}

	return frameMessage{
		Type:       "frame",
		T:          f.TimeUnix,
		Bodies:     bodies,
		AnyTransit: f.AnyTransiting,
		Selected:   f.Selected,
		Playing:    f.Playing,
		Speed:      f.Speed,
	}
}

// SSE message payload types.

type metadataMessage struct {
	Type       string  `json:"type"`
	SessionID  string  `json:"session_id"`
	Epoch      int64   `json:"epoch"`
	RangeStart float64 `json:"range_start"`
	RangeEnd   float64 `json:"range_end"`
	Star       string  `json:"star"`
	StarRadius float64 `json:"star_radius"`
	Planets    int     `json:"planets"`
}

type frameMessage struct {
	Type       string        `json:"type"`
	T          float64       `json:"t"`
	Bodies     []bodyPayload `json:"bodies"`
	AnyTransit bool          `json:"any_transit"`
	Selected   string        `json:"selected,omitempty"`
	Playing    bool          `json:"playing"`
	Speed      float64       `json:"speed"`
}

type bodyPayload struct {
	ID      string       `json:"id"`
	P       [3]float64   `json:"p"`
	Transit bool         `json:"transit"`
	Tr      [][3]float64 `json:"tr,omitempty"`
}

type transitMessage struct {
	Type     string  `json:"type"`
	PlanetID string  `json:"planet_id"`
	T        float64 `json:"t"`
}

type selectedMessage struct {
	Type     string `json:"type"`
	PlanetID string `json:"planet_id"`
}
