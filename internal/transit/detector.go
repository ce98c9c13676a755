// Package transit decides whether a planet currently occults its star from
// the viewer's direction, and converts that level signal into edge-triggered
// enter/exit events for downstream consumers.
package transit

import (
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/orbit"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
)

// Planet radii arrive in Earth radii; the renderer draws them at a fixed
// Jupiter-relative scale. The detector must use the same scale or detection
// would disagree with what is drawn.
const (
	jupiterEarthRadii = 11.0
	visualRadiusScale = 0.3
)

// VisualRadius returns the rendered disk radius for a planet, in the same
// visual units as solver output.
func VisualRadius(p *scene.Planet) float64 {
	return p.Radius / jupiterEarthRadii * visualRadiusScale
}

// IsTransiting reports whether the planet's on-sky disk overlaps the star's
// disk from the front. A transit is only possible when the depth coordinate
// places the body between the viewer and the star (Z > 0); a planet whose
// orbit never leaves the sky plane (inclination 0) never satisfies it.
func IsTransiting(p *scene.Planet, pos orbit.Vec3, starRadius float64) bool {
	if pos.Z <= 0 {
		return false
	}
	return pos.OnSkyDistance() < starRadius+VisualRadius(p)
}

// Event is an edge of a continuous transit.
type Event struct {
	PlanetID string
	TimeUnix float64
	Entered  bool // true at ingress, false at egress
}

// Monitor tracks per-planet transit state across ticks and reports edges:
// one Entered event when a transit begins and one egress event when it ends,
// regardless of how many ticks the transit spans. A discontinuous time jump
// should be preceded by Reset so a seek into mid-transit still registers an
// ingress.
type Monitor struct {
	active map[string]bool
}

// NewMonitor creates a monitor with no transits in progress.
func NewMonitor() *Monitor {
	return &Monitor{active: make(map[string]bool)}
}

// Observe records the detector output for one planet at one tick and returns
// an edge event if the state changed, or nil.
func (m *Monitor) Observe(planetID string, transiting bool, t float64) *Event {
	was := m.active[planetID]
	if transiting == was {
		return nil
	}
	if transiting {
		m.active[planetID] = true
	} else {
		delete(m.active, planetID)
	}
	return &Event{PlanetID: planetID, TimeUnix: t, Entered: transiting}
}

// Active reports whether the planet is currently mid-transit.
func (m *Monitor) Active(planetID string) bool {
	return m.active[planetID]
}

// Reset forgets all transit state. Called after seeks so the first tick at
// the new time re-derives edges from scratch.
func (m *Monitor) Reset() {
	clear(m.active)
}
