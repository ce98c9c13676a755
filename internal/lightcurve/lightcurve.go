// Package lightcurve synthesizes the relative-flux series the light-curve
// chart displays: flux 1.0 with a dip whenever a planet occults the star,
// the dip depth set by the ratio of the rendered disk areas.
//
// Synthesis over a long window is embarrassingly parallel, so samples are
// computed by a bounded worker pool over chunks of the time range.
package lightcurve

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/namdpran8/SpaceAppCHallange2K25/internal/metrics"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/orbit"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/scene"
	"github.com/namdpran8/SpaceAppCHallange2K25/internal/transit"
)

// Series is a sampled light curve over [Start, End].
type Series struct {
	Start    float64   `json:"start_unix"`
	End      float64   `json:"end_unix"`
	Times    []float64 `json:"times_unix"`
	Flux     []float64 `json:"flux"`
	Transits int       `json:"transit_count"` // dip-ingress count across the window
}

// Stats summarizes a series.
type Stats struct {
	MeanFlux   float64 `json:"mean_flux"`
	StdDevFlux float64 `json:"stddev_flux"`
	MinFlux    float64 `json:"min_flux"`
	MaxDepth   float64 `json:"max_depth"`
	Transits   int     `json:"transit_count"`
}

// Depth returns the fractional flux dip a planet causes while in transit:
// the ratio of rendered disk areas, capped below 1 so stacked transits
// cannot drive flux negative.
func Depth(p *scene.Planet, starRadius float64) float64 {
	ratio := transit.VisualRadius(p) / starRadius
	d := ratio * ratio
	if d > 0.99 {
		d = 0.99
	}
	return d
}

// fluxAt computes the relative flux for the scene at simulation time t.
func fluxAt(sc *scene.Scene, t float64) float64 {
	flux := 1.0
	epoch := float64(sc.Epoch)
	for i := range sc.Planets {
		p := &sc.Planets[i]
		pos := orbit.Position(p, t, epoch)
		if transit.IsTransiting(p, pos, sc.Star.Radius) {
			flux -= Depth(p, sc.Star.Radius)
		}
	}
	if flux < 0 {
		flux = 0
	}
	return flux
}

// Synthesize samples the scene's light curve at the given number of evenly
// spaced points across [start, end]. Deterministic for fixed inputs.
// Workers <= 0 defaults to NumCPU.
func Synthesize(ctx context.Context, sc *scene.Scene, start, end float64, samples, workers int) *Series {
	if samples < 2 {
		samples = 2
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	began := time.Now()
	step := (end - start) / float64(samples-1)
	series := &Series{
		Start: start,
		End:   end,
		Times: make([]float64, samples),
		Flux:  make([]float64, samples),
	}

	// Chunk the index space; each worker owns disjoint slices, so no
	// result channel is needed.
	chunk := (samples + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= samples {
			break
		}
		hi := lo + chunk
		if hi > samples {
			hi = samples
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return
				}
				t := start + float64(i)*step
				series.Times[i] = t
				series.Flux[i] = fluxAt(sc, t)
			}
		}(lo, hi)
	}
	wg.Wait()

	// Count ingress edges sequentially over the sampled series.
	inDip := false
	for _, f := range series.Flux {
		dipping := f < 1.0
		if dipping && !inDip {
			series.Transits++
		}
		inDip = dipping
	}

	metrics.RecordLightcurve(time.Since(began), samples)
	return series
}

// Summarize computes summary statistics for a series.
func Summarize(s *Series) Stats {
	if len(s.Flux) == 0 {
		return Stats{}
	}
	min := math.Inf(1)
	for _, f := range s.Flux {
		if f < min {
			min = f
		}
	}
	return Stats{
		MeanFlux:   stat.Mean(s.Flux, nil),
		StdDevFlux: stat.StdDev(s.Flux, nil),
		MinFlux:    min,
		MaxDepth:   1.0 - min,
		Transits:   s.Transits,
	}
}
