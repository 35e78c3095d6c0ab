package sealevel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulateFloodDepth_Deterministic(t *testing.T) {
	first := SimulateFloodDepth(40.7, -74.01, 3)
	for n := 0; n < 10; n++ {
		assert.Equal(t, first, SimulateFloodDepth(40.7, -74.01, 3))
	}
}

func TestSimulateFloodDepth_ZeroOutsideRegions(t *testing.T) {
	outside := []struct {
		name     string
		lat, lon float64
	}{
		{"denver", 39.74, -104.99},
		{"chicago", 41.88, -87.63},
		{"london", 51.5, -0.12},
		{"just north of nyc box", 40.95, -74.0},
		{"just west of nyc box", 40.7, -74.35},
		{"open atlantic", 35.0, -50.0},
		{"south pole", -90.0, 0.0},
	}

	for _, p := range outside {
		t.Run(p.name, func(t *testing.T) {
			for _, feet := range []float64{0, 1, 3, 10, 100} {
				assert.Zero(t, SimulateFloodDepth(p.lat, p.lon, feet))
			}
		})
	}
}

func TestSimulateFloodDepth_ZeroBeyondFloodBand(t *testing.T) {
	// Inside the NYC rectangle but ~0.25° from the -74.0 reference meridian:
	// distance proxy 0.25/0.3 ≈ 0.83 > 0.1, so no flooding.
	assert.Zero(t, SimulateFloodDepth(40.7, -73.75, 10))
}

func TestSimulateFloodDepth_FloodsNearReferenceMeridian(t *testing.T) {
	// Directly on the NYC reference meridian the taper term is zero; only
	// noise (±0.25 ft) moves the depth off maxFeet.
	depth := SimulateFloodDepth(40.7, -74.0, 3)
	assert.Greater(t, depth, 2.5)
	assert.LessOrEqual(t, depth, 3.0)
}

func TestSimulateFloodDepth_ClampedToRange(t *testing.T) {
	for lat := 40.4; lat <= 40.9; lat += 0.01 {
		for lon := -74.05; lon <= -73.95; lon += 0.005 {
			depth := SimulateFloodDepth(lat, lon, 3)
			assert.GreaterOrEqual(t, depth, 0.0)
			assert.LessOrEqual(t, depth, 3.0)
		}
	}
}

func TestSimulateFloodDepth_AllThreeRegions(t *testing.T) {
	// A point near each region's reference meridian floods.
	assert.Greater(t, SimulateFloodDepth(40.7, -74.0, 3), 0.0, "nyc")
	assert.Greater(t, SimulateFloodDepth(25.75, -80.2, 3), 0.0, "miami")
	assert.Greater(t, SimulateFloodDepth(37.6, -122.4, 3), 0.0, "sf bay")
}

func TestSimulateFloodDepth_DeeperNearCoast(t *testing.T) {
	// Average out the noise along a latitude stripe: cells closer to the
	// reference line should be deeper on average than cells near the band
	// edge. Band half-width in degrees for NYC is 0.1*0.3 = 0.03.
	meanAtOffset := func(offset float64) float64 {
		var sum float64
		var n int
		for lat := 40.5; lat <= 40.8; lat += 0.001 {
			sum += SimulateFloodDepth(lat, -74.0+offset, 5)
			n++
		}
		return sum / float64(n)
	}

	assert.Greater(t, meanAtOffset(0.005), meanAtOffset(0.025))
}

func TestSimulateFloodDepth_ZeroRise(t *testing.T) {
	// With no rise the clamp pins everything to zero even where noise is
	// positive.
	for lat := 40.5; lat <= 40.8; lat += 0.02 {
		assert.Zero(t, SimulateFloodDepth(lat, -74.0, 0))
	}
}
