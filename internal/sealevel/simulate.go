// Package sealevel generates NOAA-style sea-level-rise inundation layers on
// the hex grid. Depth values are simulated: the real NOAA depth-grid raster
// service is not wired up, and the simulation's coverage is limited to three
// hard-coded coastal regions.
package sealevel

import (
	"math"

	"github.com/nassau-gis/hexclimate/internal/noise"
)

// coastalRegion is a rectangular stand-in for a stretch of real coastline.
// refLon is the meridian standing in for the shoreline; scale converts the
// longitude offset from it into the normalized distance proxy.
type coastalRegion struct {
	name           string
	minLat, maxLat float64
	minLon, maxLon float64
	refLon         float64
	scale          float64
}

// The three simulated coastal zones. Points outside all of them never flood,
// whatever the requested rise. These rectangles and thresholds are the
// documented contract of the simulated data source; do not refine them
// against real coastlines.
var coastalRegions = []coastalRegion{
	{name: "nyc", minLat: 40.4, maxLat: 40.9, minLon: -74.3, maxLon: -73.7, refLon: -74.0, scale: 0.3},
	{name: "miami", minLat: 25.6, maxLat: 25.9, minLon: -80.3, maxLon: -80.1, refLon: -80.2, scale: 0.1},
	{name: "sf_bay", minLat: 37.4, maxLat: 37.9, minLon: -122.6, maxLon: -122.2, refLon: -122.4, scale: 0.2},
}

// floodBand is the distance-proxy cutoff: flooding only occurs within ~0.1
// of the reference meridian's normalized axis.
const floodBand = 0.1

func (r coastalRegion) contains(lat, lon float64) bool {
	return r.minLat <= lat && lat <= r.maxLat && r.minLon <= lon && lon <= r.maxLon
}

func (r coastalRegion) distanceProxy(lon float64) float64 {
	return math.Abs(lon-r.refLon) / r.scale
}

// SimulateFloodDepth returns the simulated inundation depth in feet at a
// point for a given sea-level rise. The depth tapers linearly by up to 80%
// across the flood band (closer to the reference meridian means deeper),
// with ±0.25 ft of coordinate-hashed texture, clamped to [0, maxFeet].
// Points outside the three coastal regions return exactly 0.
func SimulateFloodDepth(lat, lon, maxFeet float64) float64 {
	var region *coastalRegion
	for i := range coastalRegions {
		if coastalRegions[i].contains(lat, lon) {
			region = &coastalRegions[i]
			break
		}
	}
	if region == nil {
		return 0
	}

	distance := region.distanceProxy(lon)
	if distance > floodBand {
		return 0
	}

	// 0 at the reference meridian, 1 at the edge of the flood band.
	normalized := distance / floodBand
	depth := maxFeet * (1 - normalized*0.8)

	depth += noise.Centered(lat, lon, 17.23, 41.17) * 0.5

	return math.Max(0, math.Min(maxFeet, depth))
}
