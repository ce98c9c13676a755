package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Demo returns the built-in two-planet demo system. The elements are tuned
// so that Exo-1b crosses the stellar disk once per orbit while Exo-1c, at
// 45 degrees inclination, never does.
func Demo() *Scene {
	return &Scene{
		Star: Star{
			ID:     "exo-1",
			Name:   "Exo-1",
			Radius: 1.0,
			Color:  "#FDB813",
		},
		Planets: []Planet{
			{
				ID:            "exo-1b",
				Name:          "Exo-1b",
				SemiMajorAxis: 0.6,
				Eccentricity:  0.01,
				Inclination:   89.2,
				ArgPeriapsis:  64,
				AscendingNode: 0,
				MeanAnomaly:   120,
				Period:        14.3,
				Radius:        12.1,
				Color:         "#4FC3F7",
				TransitTimes:  []int64{1736818205, 1738053725, 1739289245},
				Probability:   96.4,
			},
			{
				ID:            "exo-1c",
				Name:          "Exo-1c",
				SemiMajorAxis: 0.78,
				Eccentricity:  0.04,
				Inclination:   45,
				ArgPeriapsis:  210,
				AscendingNode: 0,
				MeanAnomaly:   200,
				Period:        251,
				Radius:        2.8,
				Color:         "#FF8A65",
				TransitTimes:  nil,
				Probability:   61.2,
			},
		},
		Epoch: 1735689600, // 2025-01-01T00:00:00Z
	}
}

// Load reads a scene from a YAML or JSON file (chosen by extension, YAML by
// default) and validates it.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}

	var s Scene
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse scene %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse scene %s: %w", path, err)
		}
	}

	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Parse decodes a scene from raw JSON (the backend wire shape) and
// validates it.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
