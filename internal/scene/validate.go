package scene

import (
	"errors"
	"fmt"
	"math"
)

// FieldError reports an invalid value in a scene's configuration, naming the
// offending body and field so the caller can surface a precise diagnostic.
type FieldError struct {
	Body   string // planet name or star name
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("scene validation: %s: %s %s", e.Body, e.Field, e.Reason)
}

// Validate checks a scene's configuration. Malformed orbital elements are a
// configuration error and are rejected here rather than silently producing
// NaN/Inf positions during simulation. Returns the first error found.
func Validate(s *Scene) error {
	if s == nil {
		return errors.New("scene validation: nil scene")
	}
	if s.Star.ID == "" {
		return &FieldError{Body: "star", Field: "id", Reason: "must not be empty"}
	}
	if !(s.Star.Radius > 0) {
		return &FieldError{Body: s.Star.Name, Field: "radius_solar", Reason: "must be positive"}
	}
	if len(s.Planets) == 0 {
		return errors.New("scene validation: scene has no planets")
	}

	seen := make(map[string]bool, len(s.Planets))
	for i := range s.Planets {
		p := &s.Planets[i]
		name := p.Name
		if name == "" {
			name = p.ID
		}
		if p.ID == "" {
			return &FieldError{Body: fmt.Sprintf("planet[%d]", i), Field: "id", Reason: "must not be empty"}
		}
		if seen[p.ID] {
			return &FieldError{Body: name, Field: "id", Reason: "duplicates another planet"}
		}
		seen[p.ID] = true

		if err := validateFinite(name, "semi_major_axis_AU", p.SemiMajorAxis); err != nil {
			return err
		}
		if !(p.SemiMajorAxis > 0) {
			return &FieldError{Body: name, Field: "semi_major_axis_AU", Reason: "must be positive"}
		}
		if p.Eccentricity < 0 || p.Eccentricity >= 1 || math.IsNaN(p.Eccentricity) {
			return &FieldError{Body: name, Field: "eccentricity", Reason: "must be in [0, 1)"}
		}
		if !(p.Period > 0) || math.IsInf(p.Period, 0) || math.IsNaN(p.Period) {
			return &FieldError{Body: name, Field: "period_days", Reason: "must be positive"}
		}
		// A zero radius would make transit detection trivially false with no
		// diagnostic, so it is rejected rather than tolerated.
		if !(p.Radius > 0) {
			return &FieldError{Body: name, Field: "radius_earth", Reason: "must be positive"}
		}
		if p.Probability < 0 || p.Probability > 100 {
			return &FieldError{Body: name, Field: "detection_probability", Reason: "must be in [0, 100]"}
		}
	}
	return nil
}

func validateFinite(body, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &FieldError{Body: body, Field: field, Reason: "must be finite"}
	}
	return nil
}
