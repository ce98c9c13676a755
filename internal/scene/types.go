// Package scene holds the immutable configuration of a star-planet system:
// one star, an ordered set of planets with Keplerian orbital elements, and
// the reference epoch against which mean anomalies are propagated.
//
// A Scene is constructed once (from the demo fixture, a YAML/JSON file, or a
// backend response), validated eagerly, and read-only for the lifetime of a
// visualization session.
package scene

import "time"

// Star describes the central body of a scene.
type Star struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Radius float64 `json:"radius_solar" yaml:"radius_solar"` // solar radii
	Color  string  `json:"color" yaml:"color"`
}

// Planet describes one orbiting body. The six orbital elements plus the
// period fully determine its position at any simulation time.
type Planet struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	SemiMajorAxis float64 `json:"semi_major_axis_AU" yaml:"semi_major_axis_AU"` // AU
	Eccentricity  float64 `json:"eccentricity" yaml:"eccentricity"`             // 0 <= e < 1
	Inclination   float64 `json:"inclination_deg" yaml:"inclination_deg"`       // degrees
	ArgPeriapsis  float64 `json:"argument_of_peri_deg" yaml:"argument_of_peri_deg"`
	AscendingNode float64 `json:"ascending_node_deg" yaml:"ascending_node_deg"`
	MeanAnomaly   float64 `json:"mean_anomaly_deg" yaml:"mean_anomaly_deg"` // at epoch
	Period        float64 `json:"period_days" yaml:"period_days"`           // days
	Radius        float64 `json:"radius_earth" yaml:"radius_earth"`         // Earth radii
	Color         string  `json:"color" yaml:"color"`
	TransitTimes  []int64 `json:"transit_times_unix" yaml:"transit_times_unix"`
	Probability   float64 `json:"detection_probability" yaml:"detection_probability"` // 0-100
}

// Scene is one star plus its planets. Planet order is render/iteration
// order; it carries no priority.
type Scene struct {
	Star    Star     `json:"star" yaml:"star"`
	Planets []Planet `json:"planets" yaml:"planets"`
	Epoch   int64    `json:"epoch_unix" yaml:"epoch_unix"` // seconds since Unix epoch
}

// minRangeDays is the floor on the simulation window: even a scene of
// short-period planets gets at least this many days of timeline.
const minRangeDays = 100.0

// TimeRange returns the simulation window [start, end] in Unix seconds:
// epoch through epoch + 86400 * max(100, longest planet period).
func (s *Scene) TimeRange() (start, end float64) {
	days := minRangeDays
	for _, p := range s.Planets {
		if p.Period > days {
			days = p.Period
		}
	}
	return float64(s.Epoch), float64(s.Epoch) + days*86400
}

// ClampTime clamps t into the scene's simulation window.
func (s *Scene) ClampTime(t float64) float64 {
	start, end := s.TimeRange()
	if t < start {
		return start
	}
	if t > end {
		return end
	}
	return t
}

// PlanetByID returns the planet with the given id, or nil.
func (s *Scene) PlanetByID(id string) *Planet {
	for i := range s.Planets {
		if s.Planets[i].ID == id {
			return &s.Planets[i]
		}
	}
	return nil
}

// EpochTime returns the reference epoch as a time.Time (UTC).
func (s *Scene) EpochTime() time.Time {
	return time.Unix(s.Epoch, 0).UTC()
}
