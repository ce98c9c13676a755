// Package orbit computes 3D positions for planets from Keplerian orbital
// elements using standard two-body propagation.
//
// The viewer convention matches the rendering surface: the camera looks down
// +Z, so Z is depth (positive = between viewer and star) and (X, Y) is the
// on-sky plane. Orbital-plane distances are scaled by a fixed visual
// magnification so close-in planets remain distinguishable from the stellar
// disk; the output is a rendering coordinate, not a physical one.
package orbit

import (
	"math"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
)

// VisualScale magnifies orbital-plane distances (in AU) before emitting the
// final vector. Shared with the renderer; changing it desynchronizes transit
// detection from what is drawn.
const VisualScale = 5.0

// keplerIterations is the fixed iteration count for the eccentric-anomaly
// solve. Not a convergence tolerance: five rounds of fixed-point iteration
// are plenty for visualization at the eccentricities the validator admits.
const keplerIterations = 5

// Vec3 is a position in the viewer reference frame, in visual units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the Euclidean norm.
func (v Vec3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// OnSkyDistance returns the planar distance from the origin after projecting
// onto the viewer-facing (X, Y) plane.
func (v Vec3) OnSkyDistance() float64 {
	return math.Hypot(v.X, v.Y)
}

// Position computes the planet's position at time t (Unix seconds) relative
// to the reference epoch (Unix seconds). Pure and deterministic: the same
// inputs always yield the same output, which trail rendering and time
// scrubbing rely on.
//
// The argument of periapsis is carried in the planet's elements but not
// applied to the transform; the demo fixtures and the known transit times
// were produced against that convention.
func Position(p *scene.Planet, t, epoch float64) Vec3 {
	daysSinceEpoch := (t - epoch) / 86400.0

	// Mean anomaly grows without wrapping; only its sine and cosine are
	// consumed downstream.
	n := 2 * math.Pi / p.Period
	m := p.MeanAnomaly*math.Pi/180 + n*daysSinceEpoch

	// Kepler's equation E = M + e*sin(E), fixed-point from E0 = M.
	e := p.Eccentricity
	ecc := m
	for i := 0; i < keplerIterations; i++ {
		ecc = m + e*math.Sin(ecc)
	}

	// True anomaly via the half-angle form.
	nu := 2 * math.Atan2(
		math.Sqrt(1+e)*math.Sin(ecc/2),
		math.Sqrt(1-e)*math.Cos(ecc/2),
	)

	// Orbital-plane coordinates.
	r := p.SemiMajorAxis * (1 - e*math.Cos(ecc))
	x := r * math.Cos(nu)
	y := r * math.Sin(nu)

	// Rotate into the viewer frame: inclination tilts the orbital plane out
	// of the sky plane, the ascending node rotates it about the viewer's
	// vertical axis.
	sinI, cosI := math.Sincos(p.Inclination * math.Pi / 180)
	sinO, cosO := math.Sincos(p.AscendingNode * math.Pi / 180)

	return Vec3{
		X: (x*cosO + y*sinI*sinO) * VisualScale,
		Y: (y * cosI) * VisualScale,
		Z: (-x*sinO + y*sinI*cosO) * VisualScale,
	}
}
