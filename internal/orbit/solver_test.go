package orbit

import (
	"math"
	"testing"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
)

const tol = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

// TestPositionRegression pins the solver to known-good vectors for the demo
// system so refactors cannot silently change the geometry.
func TestPositionRegression(t *testing.T) {
	sc := scene.Demo()
	epoch := float64(sc.Epoch)
	b := &sc.Planets[0]
	c := &sc.Planets[1]

	tests := []struct {
		name   string
		planet *scene.Planet
		t      float64
		want   Vec3
	}{
		{
			name:   "exo-1b at epoch",
			planet: b,
			t:      epoch,
			want:   Vec3{X: -1.552331265668, Y: 0.036091194445, Z: 2.584673420860},
		},
		{
			name:   "exo-1c at epoch",
			planet: c,
			t:      epoch,
			want:   Vec3{X: -3.838068161181, Y: -0.908220859133, Z: -0.908220859133},
		},
		{
			name:   "exo-1b one day later",
			planet: b,
			t:      epoch + 86400,
			want:   Vec3{X: -2.502359506362, Y: 0.023723998978, Z: 1.698995850297},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Position(tt.planet, tt.t, epoch)
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) || !almostEqual(got.Z, tt.want.Z) {
				t.Errorf("Position = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestPositionDeterministic verifies repeated evaluation yields bit-identical
// results; trails and scrubbing depend on it.
func TestPositionDeterministic(t *testing.T) {
	sc := scene.Demo()
	epoch := float64(sc.Epoch)
	p := &sc.Planets[0]

	for _, offset := range []float64{0, 3600, 86400, 777777.5} {
		a := Position(p, epoch+offset, epoch)
		b := Position(p, epoch+offset, epoch)
		if a != b {
			t.Errorf("offset %v: %+v != %+v", offset, a, b)
		}
	}
}

// TestCircularOrbitRadius: with e=0 the orbital radius must stay constant at
// a*VisualScale for all times.
func TestCircularOrbitRadius(t *testing.T) {
	p := &scene.Planet{
		ID:            "circ",
		SemiMajorAxis: 1.0,
		Eccentricity:  0,
		Inclination:   30,
		Period:        10,
	}

	want := 1.0 * VisualScale
	for d := 0.0; d < 20; d += 0.37 {
		pos := Position(p, d*86400, 0)
		if r := pos.Magnitude(); math.Abs(r-want) > 1e-9 {
			t.Fatalf("day %.2f: |r| = %v, want %v", d, r, want)
		}
	}
}

// TestZeroInclinationStaysInSkyPlane: inclination 0 with node 0 keeps the
// orbit in the on-sky plane, so Z must be identically zero.
func TestZeroInclinationStaysInSkyPlane(t *testing.T) {
	p := &scene.Planet{
		ID:            "flat",
		SemiMajorAxis: 0.5,
		Eccentricity:  0.2,
		Inclination:   0,
		AscendingNode: 0,
		Period:        7,
	}

	for d := 0.0; d < 14; d += 0.5 {
		pos := Position(p, d*86400, 0)
		if pos.Z != 0 {
			t.Fatalf("day %.1f: Z = %v, want 0", d, pos.Z)
		}
	}
}

// TestPeriodicity: after one full period the planet returns to (nearly) the
// same spot. Tolerance is loose because the Kepler solve is fixed-iteration.
func TestPeriodicity(t *testing.T) {
	sc := scene.Demo()
	epoch := float64(sc.Epoch)
	p := &sc.Planets[0]

	start := Position(p, epoch, epoch)
	after := Position(p, epoch+p.Period*86400, epoch)

	if math.Abs(start.X-after.X) > 1e-6 ||
		math.Abs(start.Y-after.Y) > 1e-6 ||
		math.Abs(start.Z-after.Z) > 1e-6 {
		t.Errorf("after one period: %+v, want %+v", after, start)
	}
}

func TestOnSkyDistance(t *testing.T) {
	v := Vec3{X: 3, Y: 4, Z: 100}
	if got := v.OnSkyDistance(); got != 5 {
		t.Errorf("OnSkyDistance = %v, want 5", got)
	}
}
