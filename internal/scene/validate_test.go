package scene

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScene() *Scene {
	s := Demo()
	return s
}

// TestValidateDemo: the built-in fixture must always pass validation.
func TestValidateDemo(t *testing.T) {
	require.NoError(t, Validate(Demo()))
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Scene)
		wantField string
	}{
		{
			name:      "empty star id",
			mutate:    func(s *Scene) { s.Star.ID = "" },
			wantField: "id",
		},
		{
			name:      "zero star radius",
			mutate:    func(s *Scene) { s.Star.Radius = 0 },
			wantField: "radius_solar",
		},
		{
			name:      "negative semi-major axis",
			mutate:    func(s *Scene) { s.Planets[0].SemiMajorAxis = -1 },
			wantField: "semi_major_axis_AU",
		},
		{
			name:      "eccentricity of one",
			mutate:    func(s *Scene) { s.Planets[0].Eccentricity = 1 },
			wantField: "eccentricity",
		},
		{
			name:      "negative eccentricity",
			mutate:    func(s *Scene) { s.Planets[1].Eccentricity = -0.2 },
			wantField: "eccentricity",
		},
		{
			name:      "zero period",
			mutate:    func(s *Scene) { s.Planets[0].Period = 0 },
			wantField: "period_days",
		},
		{
			name:      "zero planet radius",
			mutate:    func(s *Scene) { s.Planets[0].Radius = 0 },
			wantField: "radius_earth",
		},
		{
			name:      "duplicate planet ids",
			mutate:    func(s *Scene) { s.Planets[1].ID = s.Planets[0].ID },
			wantField: "id",
		},
		{
			name:      "probability above 100",
			mutate:    func(s *Scene) { s.Planets[0].Probability = 101 },
			wantField: "detection_probability",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScene()
			tt.mutate(s)

			err := Validate(s)
			require.Error(t, err)

			var fe *FieldError
			require.True(t, errors.As(err, &fe), "error type = %T, want *FieldError", err)
			assert.Equal(t, tt.wantField, fe.Field)
			assert.NotEmpty(t, fe.Body, "field errors must name the offending body")
		})
	}
}

// TestValidateNoPlanets: an empty system is rejected outright, without a
// field error.
func TestValidateNoPlanets(t *testing.T) {
	s := validScene()
	s.Planets = nil
	err := Validate(s)
	require.Error(t, err)

	var fe *FieldError
	assert.False(t, errors.As(err, &fe))
}

// TestFieldErrorMessage: the message carries body, field, and reason so API
// callers can show it verbatim.
func TestFieldErrorMessage(t *testing.T) {
	e := &FieldError{Body: "Exo-1b", Field: "eccentricity", Reason: "must be in [0, 1)"}
	assert.Equal(t, "scene validation: Exo-1b: eccentricity must be in [0, 1)", e.Error())
}
