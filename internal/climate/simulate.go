package climate

import "math"

// SimulateAnomaly returns the simulated temperature anomaly (°C relative to
// BaselineTempC) at a point for a projection year and scenario.
//
// The value is the scenario's interpolated base warming plus layered spatial
// terms: polar amplification, synthetic coastal/continental modulation, three
// band-limited noise sinusoids, and an urban bump. Every term is a pure
// function of the inputs, so identical arguments always produce the
// identical float.
func SimulateAnomaly(lat, lon float64, year int, scenario string) float64 {
	base := LookupScenario(scenario).ProjectedIncrease(year)

	// Polar amplification: higher latitudes warm more, with a steeper slope
	// past 45°.
	absLat := math.Abs(lat)
	var latEffect float64
	if absLat > 45 {
		latEffect = (absLat / 45) * 1.8
	} else {
		latEffect = (absLat / 45) * 0.8
	}

	// Synthetic coastal moderation and continental-interior amplification.
	// Not derived from real coastline data.
	coastal := math.Sin(lon*2.5+lat*1.7) * 0.3
	continental := math.Cos(lat*3.2-lon*2.1) * 0.4

	// Layered sinusoids at increasing frequency and decreasing amplitude
	// approximate band-limited noise.
	noise1 := math.Sin(lat*7.13+lon*5.27) * math.Cos(lat*3.97-lon*8.41) * 0.5
	noise2 := math.Sin(lat*13.71-lon*11.39) * math.Cos(lat*19.13+lon*7.23) * 0.25
	noise3 := math.Sin(lat*23.45+lon*17.83) * 0.15

	urban := math.Abs(math.Sin(lat*43.7)*math.Cos(lon*51.3)) * 0.6

	return base + latEffect + coastal + continental + noise1 + noise2 + noise3 + urban
}
