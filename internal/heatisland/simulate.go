// Package heatisland generates simulated urban-heat-island intensity layers
// on the hex grid. The viewport centroid stands in for the urban core:
// intensity peaks there and decays outward, with coordinate-hashed texture
// standing in for buildings, parks, and water.
package heatisland

import (
	"math"

	"github.com/nassau-gis/hexclimate/internal/noise"
)

const (
	// maxIntensity is the peak urban-core excess in °C.
	maxIntensity = 4.5
	// coreRadius is the urban-core radius in degrees of the flat
	// degree-space distance proxy.
	coreRadius = 0.15
	// decayLength is the e-folding length of the suburban falloff, degrees.
	decayLength = 0.1
	// intensityCap clamps the final value after noise.
	intensityCap = 6.0
)

// Trend returns the noise-free intensity at a degree-space distance from the
// urban core: a power-law falloff inside the core radius, an exponential tail
// outside. The two branches do not meet — the inside branch falls to 0 at the
// core radius while the tail restarts at maxIntensity*0.3, so the field jumps
// by 1.35 °C there. The jump is part of the simulated-data contract.
func Trend(dist float64) float64 {
	if dist < coreRadius {
		return maxIntensity * (1 - math.Pow(dist/coreRadius, 0.7))
	}
	return maxIntensity * 0.3 * math.Exp(-(dist-coreRadius)/decayLength)
}

// SimulateIntensity returns the heat-island intensity in °C at a point, given
// the urban-core location. Degree-space Euclidean distance is deliberate: the
// field is a visualization stand-in, not a metric quantity.
func SimulateIntensity(lat, lon, coreLat, coreLon float64) float64 {
	dist := math.Hypot(lat-coreLat, lon-coreLon)
	intensity := Trend(dist) + noise.Signed(lat, lon, 23.14, 37.19)*0.8
	return math.Max(0, math.Min(intensityCap, intensity))
}

// Classify buckets an intensity into the display level used by the map style.
func Classify(intensity float64) string {
	switch {
	case intensity < 0.5:
		return "none"
	case intensity < 1.5:
		return "low"
	case intensity < 3.0:
		return "moderate"
	case intensity < 4.5:
		return "high"
	default:
		return "extreme"
	}
}
