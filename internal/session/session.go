// Package session composes the simulation core per frame: it advances the
// clock, solves each planet's position, evaluates transits, accumulates
// trails, and exposes the aggregate frame snapshot the rendering surface
// consumes. The session does no drawing.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/bridge"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/metrics"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/orbit"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/simclock"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/trail"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/transit"
)

// Config holds session configuration.
type Config struct {
	FrameInterval time.Duration // tick cadence for Run (default: 33ms)
	Trails        bool          // record motion trails
	Sync          bool          // honor inbound seek-requests from the bus
	Clock         simclock.Config
}

// DefaultConfig returns the web client's defaults: ~30fps, trails on,
// light-curve sync off until the client enables it.
func DefaultConfig() Config {
	return Config{
		FrameInterval: 33 * time.Millisecond,
		Trails:        true,
		Clock:         simclock.DefaultConfig(),
	}
}

// Frame is the per-tick snapshot handed to the rendering surface.
type Frame struct {
	TimeUnix      float64
	Positions     map[string]orbit.Vec3
	Transiting    []string // ids of planets currently in transit, scene order
	AnyTransiting bool
	Trails        map[string][]orbit.Vec3 // only populated while trails are enabled
	Selected      string                  // selected planet id, or ""
	Playing       bool
	Speed         float64
}

// Session owns the mutable simulation state for one visualization instance.
// All derived state (positions, transit flags) is recomputed each tick from
// (scene, current time); only the clock, trails, and selection persist.
type Session struct {
	scene  *scene.Scene
	clock  *simclock.Clock
	bus    *bridge.Bus
	logger *slog.Logger

	mu       sync.Mutex
	trails   *trail.Tracker
	monitor  *transit.Monitor
	selected string
	sync     bool
	closed   bool

	frameInterval time.Duration
	unsubSeek     func()
}

// New creates a session positioned at the scene's epoch, paused. The scene
// must already be validated.
func New(sc *scene.Scene, cfg Config, logger *slog.Logger) *Session {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 33 * time.Millisecond
	}
	if cfg.Clock == (simclock.Config{}) {
		cfg.Clock = simclock.DefaultConfig()
	}

	s := &Session{
		scene:         sc,
		clock:         simclock.New(cfg.Clock, float64(sc.Epoch)),
		bus:           bridge.New(),
		logger:        logger,
		trails:        trail.NewTracker(cfg.Trails),
		monitor:       transit.NewMonitor(),
		sync:          cfg.Sync,
		frameInterval: cfg.FrameInterval,
	}
	s.unsubSeek = s.bus.OnSeekRequest(s.handleSeekRequest)
	return s
}

// Bus returns the session's event bridge.
func (s *Session) Bus() *bridge.Bus { return s.bus }

// Clock returns the session's simulation clock.
func (s *Session) Clock() *simclock.Clock { return s.clock }

// Scene returns the immutable scene the session was built from.
func (s *Session) Scene() *scene.Scene { return s.scene }

// SetSync enables or disables honoring of inbound seek-requests.
func (s *Session) SetSync(enabled bool) {
	s.mu.Lock()
	s.sync = enabled
	s.mu.Unlock()
}

// SetTrails toggles trail recording. Re-enabling starts from empty trails.
func (s *Session) SetTrails(enabled bool) {
	s.mu.Lock()
	s.trails.SetEnabled(enabled)
	s.mu.Unlock()
}

// handleSeekRequest is the inbound seek-request channel. Only honored when
// sync is enabled; an honored seek clamps into the scene's time range, jumps
// the clock, and forces pause so the user can inspect the seeked instant.
func (s *Session) handleSeekRequest(ev bridge.SeekRequest) {
	s.mu.Lock()
	honored := s.sync && !s.closed
	s.mu.Unlock()
	if !honored {
		return
	}

	target := s.scene.ClampTime(ev.TimeUnix)
	s.clock.Seek(target)
	s.clock.Pause()
	s.clearDerivedState()
	s.logger.Debug("seek request honored", "target_time", target)
}

// Seek jumps the clock directly, clamped into the scene's range. Unlike the
// sync-gated inbound channel it preserves the playback state.
func (s *Session) Seek(t float64) {
	s.clock.Seek(s.scene.ClampTime(t))
	s.clearDerivedState()
}

// clearDerivedState drops trails and in-progress transit tracking after a
// discontinuous time jump.
func (s *Session) clearDerivedState() {
	s.mu.Lock()
	s.trails.Clear()
	s.monitor.Reset()
	s.mu.Unlock()
}

// Select marks a planet as selected and emits planet-selected. The selection
// is a lookup key into the scene, never ownership; selecting an unknown id
// returns false without emitting.
func (s *Session) Select(planetID string) bool {
	if s.scene.PlanetByID(planetID) == nil {
		return false
	}
	s.mu.Lock()
	s.selected = planetID
	s.mu.Unlock()
	s.bus.PublishPlanetSelected(bridge.PlanetSelected{PlanetID: planetID})
	return true
}

// Tick advances the simulation by elapsedReal of wall time and produces a
// frame snapshot. Events (time-changed, transit-detected) are published
// before Tick returns, so listeners observe them ahead of the next tick's
// computation.
func (s *Session) Tick(elapsedReal time.Duration) Frame {
	start := time.Now()
	now := s.clock.Advance(elapsedReal.Seconds())

	s.mu.Lock()
	frame := Frame{
		TimeUnix:  now,
		Positions: make(map[string]orbit.Vec3, len(s.scene.Planets)),
		Selected:  s.selected,
		Playing:   s.clock.State() == simclock.Playing,
		Speed:     s.clock.Speed(),
	}

	var edges []bridge.TransitDetected
	epoch := float64(s.scene.Epoch)
	for i := range s.scene.Planets {
		p := &s.scene.Planets[i]
		pos := orbit.Position(p, now, epoch)
		frame.Positions[p.ID] = pos

		transiting := transit.IsTransiting(p, pos, s.scene.Star.Radius)
		if transiting {
			frame.Transiting = append(frame.Transiting, p.ID)
			frame.AnyTransiting = true
		}
		if ev := s.monitor.Observe(p.ID, transiting, now); ev != nil && ev.Entered {
			edges = append(edges, bridge.TransitDetected{PlanetID: p.ID, TransitTime: now})
		}

		s.trails.Append(p.ID, pos)
	}
	if s.trails.Enabled() {
		frame.Trails = s.trails.Snapshot()
	}
	s.mu.Unlock()

	// Publish outside the state lock: subscribers may call back into the
	// session (e.g. a seek) without deadlocking.
	s.bus.PublishTimeChanged(bridge.TimeChanged{TimeUnix: now})
	for _, ev := range edges {
		s.logger.Info("transit detected", "planet_id", ev.PlanetID, "transit_time", ev.TransitTime)
		metrics.IncTransitEvents(ev.PlanetID)
		s.bus.PublishTransitDetected(ev)
	}

	metrics.ObserveFrameDuration(time.Since(start))
	metrics.IncFrames()
	return frame
}

// Run drives the session at the configured frame interval, invoking emit
// for every frame, until ctx is cancelled. Each tick advances the clock by
// the measured wall-clock delta since the previous tick, so a slow consumer
// does not slow simulated time. Teardown is deterministic: once Run
// returns, no further frames are produced for this session.
func (s *Session) Run(ctx context.Context, emit func(Frame)) {
	metrics.IncSessionsActive()
	defer metrics.DecSessionsActive()

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("session loop stopped")
			return
		case now := <-ticker.C:
			frame := s.Tick(now.Sub(last))
			last = now
			if emit != nil {
				emit(frame)
			}
		}
	}
}

// Close detaches the session from its bus subscriptions. Idempotent. A
// closed session ignores further seek-requests; any Run loop must be
// stopped via its context.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.unsubSeek()
}
