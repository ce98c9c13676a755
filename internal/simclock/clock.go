// Package simclock drives the simulation timeline: a logical-time
// accumulator advanced by wall-clock deltas rather than a fixed per-frame
// increment, so simulated speed is independent of the host's display refresh
// rate and tests can inject elapsed time directly.
package simclock

import "sync"

// State is the playback state of the clock.
type State int

const (
	Paused State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

// SimSecondsPerRealSecond is the base advance rate at speed 1: one real
// second moves the simulation one hour.
const SimSecondsPerRealSecond = 3600.0

// Config bounds the speed multiplier.
type Config struct {
	MinSpeed     float64
	MaxSpeed     float64
	InitialSpeed float64
}

// DefaultConfig matches the UI's speed slider.
func DefaultConfig() Config {
	return Config{MinSpeed: 0.1, MaxSpeed: 10, InitialSpeed: 1}
}

// Clock holds the current simulation time (Unix seconds), the playback
// state, and the speed multiplier. Safe for concurrent use.
type Clock struct {
	mu      sync.Mutex
	state   State
	current float64
	speed   float64
	min     float64
	max     float64
}

// New creates a paused clock positioned at start.
func New(cfg Config, start float64) *Clock {
	c := &Clock{
		state:   Paused,
		current: start,
		min:     cfg.MinSpeed,
		max:     cfg.MaxSpeed,
	}
	c.speed = c.clamp(cfg.InitialSpeed)
	return c
}

func (c *Clock) clamp(s float64) float64 {
	if s < c.min {
		return c.min
	}
	if s > c.max {
		return c.max
	}
	return s
}

// Play transitions Paused -> Playing. No-op while already playing.
func (c *Clock) Play() {
	c.mu.Lock()
	c.state = Playing
	c.mu.Unlock()
}

// Pause transitions Playing -> Paused. No-op while already paused.
func (c *Clock) Pause() {
	c.mu.Lock()
	c.state = Paused
	c.mu.Unlock()
}

// State returns the playback state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the simulation time in Unix seconds.
func (c *Clock) Current() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Seek sets the simulation time directly. It does not change the playback
// state; pausing on external seeks is the session's policy, not the
// clock's.
func (c *Clock) Seek(t float64) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// SetSpeed sets the speed multiplier, clamped to the configured range, and
// returns the applied value.
func (c *Clock) SetSpeed(s float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = c.clamp(s)
	return c.speed
}

// Speed returns the current multiplier.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Advance moves the simulation forward by elapsedRealSeconds of wall time
// and returns the new current time. While paused (or with a zero speed) the
// time does not move; the call is still cheap and never blocks, so a
// degenerate speed cannot stall the scheduling loop.
func (c *Clock) Advance(elapsedRealSeconds float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing {
		c.current += elapsedRealSeconds * SimSecondsPerRealSecond * c.speed
	}
	return c.current
}
