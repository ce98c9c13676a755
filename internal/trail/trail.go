// Package trail keeps a bounded history of recent rendered positions per
// body, used to draw motion paths behind the planets.
package trail

import "github.com/namdpran8/SpaceAppCHallange2K25/internal/orbit"

// Capacity is the maximum number of positions retained per body. Appending
// at capacity evicts the oldest entry first.
const Capacity = 50

// Tracker accumulates per-planet trails while trails are enabled. Not safe
// for concurrent use; it is owned by a single session.
type Tracker struct {
	trails  map[string][]orbit.Vec3
	enabled bool
}

// NewTracker creates a tracker. Trails start in the given enabled state.
func NewTracker(enabled bool) *Tracker {
	return &Tracker{
		trails:  make(map[string][]orbit.Vec3),
		enabled: enabled,
	}
}

// Enabled reports whether positions are currently being recorded.
func (t *Tracker) Enabled() bool { return t.enabled }

// SetEnabled toggles recording. Re-enabling clears any existing trails:
// positions accumulated before a disable would imply a false continuous
// path once recording resumes.
func (t *Tracker) SetEnabled(enabled bool) {
	if enabled && !t.enabled {
		t.Clear()
	}
	t.enabled = enabled
}

// Append records a position for the body. No-op while disabled.
func (t *Tracker) Append(planetID string, pos orbit.Vec3) {
	if !t.enabled {
		return
	}
	tr := t.trails[planetID]
	if len(tr) >= Capacity {
		// FIFO eviction; shift in place to keep the backing array.
		copy(tr, tr[1:])
		tr = tr[:Capacity-1]
	}
	t.trails[planetID] = append(tr, pos)
}

// Get returns the trail for a body, oldest first. The returned slice is the
// tracker's own backing storage; callers that retain it must copy.
func (t *Tracker) Get(planetID string) []orbit.Vec3 {
	return t.trails[planetID]
}

// Snapshot returns a copy of all trails, oldest first per body.
func (t *Tracker) Snapshot() map[string][]orbit.Vec3 {
	out := make(map[string][]orbit.Vec3, len(t.trails))
	for id, tr := range t.trails {
		cp := make([]orbit.Vec3, len(tr))
		copy(cp, tr)
		out[id] = cp
	}
	return out
}

// Clear drops all recorded positions. Must be called on any discontinuous
// time jump (seek), otherwise the rendered trail jumps with it.
func (t *Tracker) Clear() {
	clear(t.trails)
}
