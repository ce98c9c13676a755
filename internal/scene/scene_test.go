package scene

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeRange(t *testing.T) {
	s := Demo()
	start, end := s.TimeRange()

	// Exo-1c's 251-day period exceeds the 100-day floor, so it sets the
	// window length.
	assert.Equal(t, float64(s.Epoch), start)
	assert.Equal(t, float64(s.Epoch)+251*86400, end)
}

func TestTimeRangeFloor(t *testing.T) {
	s := Demo()
	s.Planets = s.Planets[:1] // only Exo-1b, period 14.3 days

	start, end := s.TimeRange()
	assert.Equal(t, float64(s.Epoch), start)
	assert.Equal(t, float64(s.Epoch)+100*86400, end)
}

func TestClampTime(t *testing.T) {
	s := Demo()
	start, end := s.TimeRange()

	assert.Equal(t, start, s.ClampTime(start-1))
	assert.Equal(t, end, s.ClampTime(end+1e9))
	mid := (start + end) / 2
	assert.Equal(t, mid, s.ClampTime(mid))
}

func TestPlanetByID(t *testing.T) {
	s := Demo()

	p := s.PlanetByID("exo-1c")
	require.NotNil(t, p)
	assert.Equal(t, "Exo-1c", p.Name)

	assert.Nil(t, s.PlanetByID("exo-9z"))
}

func TestEpochTime(t *testing.T) {
	s := Demo()
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, s.EpochTime().Equal(want), "epoch = %v", s.EpochTime())
}

func TestParseRoundTrip(t *testing.T) {
	orig := Demo()
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)
}

func TestParseInvalidScene(t *testing.T) {
	s := Demo()
	s.Planets[0].Eccentricity = 1.5
	data, err := json.Marshal(s)
	require.NoError(t, err)

	_, err = Parse(data)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "eccentricity", fe.Field)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	data, err := json.Marshal(Demo())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Demo(), got)
}

func TestLoadYAML(t *testing.T) {
	const doc = `
star:
  id: test-star
  name: Test Star
  radius_solar: 0.9
planets:
  - id: test-b
    name: Test b
    semi_major_axis_AU: 0.3
    eccentricity: 0.02
    inclination_deg: 88.5
    period_days: 7.1
    radius_earth: 4.0
    detection_probability: 80
epoch_unix: 1735689600
`
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-star", got.Star.ID)
	require.Len(t, got.Planets, 1)
	assert.Equal(t, 7.1, got.Planets[0].Period)
	assert.Equal(t, int64(1735689600), got.Epoch)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
