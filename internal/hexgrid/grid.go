package hexgrid

import (
	"sort"

	"github.com/rotisserie/eris"
	h3 "github.com/uber/h3-go/v3"
)

// MaxResolution is the finest H3 resolution the library supports.
const MaxResolution = 15

// LatLon is a WGS84 coordinate pair in degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

// BoundingBox is a WGS84 bounding box in degrees. Wraparound at the
// antimeridian is unsupported: West must be strictly less than East.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Validate checks the box invariants: south < north, west < east, and all
// edges within valid latitude/longitude ranges.
func (b BoundingBox) Validate() error {
	if b.South >= b.North {
		return eris.Wrapf(ErrInvalidParameter, "south (%v) must be less than north (%v)", b.South, b.North)
	}
	if b.West >= b.East {
		return eris.Wrapf(ErrInvalidParameter, "west (%v) must be less than east (%v)", b.West, b.East)
	}
	if b.South < -90 || b.North > 90 {
		return eris.Wrapf(ErrInvalidParameter, "latitude bounds [%v, %v] outside [-90, 90]", b.South, b.North)
	}
	if b.West < -180 || b.East > 180 {
		return eris.Wrapf(ErrInvalidParameter, "longitude bounds [%v, %v] outside [-180, 180]", b.West, b.East)
	}
	return nil
}

// Center returns the centroid of the box.
func (b BoundingBox) Center() LatLon {
	return LatLon{
		Lat: (b.North + b.South) / 2,
		Lon: (b.East + b.West) / 2,
	}
}

// geofence returns the box corners as an H3 geofence, wound the same way as
// the GeoJSON ring the original polyfill call is fed: SW, SE, NE, NW.
func (b BoundingBox) geofence() []h3.GeoCoord {
	return []h3.GeoCoord{
		{Latitude: b.South, Longitude: b.West},
		{Latitude: b.South, Longitude: b.East},
		{Latitude: b.North, Longitude: b.East},
		{Latitude: b.North, Longitude: b.West},
	}
}

// HexCell is a single H3 cell with its center and boundary ring. Boundary
// vertices are in (lat, lon) order as returned by H3; the GeoJSON serializer
// is responsible for flipping them.
type HexCell struct {
	ID       string
	Center   LatLon
	Boundary []LatLon
}

// Grid tessellates bounding boxes with H3 hexagons.
type Grid struct {
	maxCells int
}

// NewGrid creates a grid provider. maxCells caps the number of cells a
// single call may return; zero or negative disables the cap.
func NewGrid(maxCells int) *Grid {
	return &Grid{maxCells: maxCells}
}

// CellsInBounds returns every H3 cell at the given resolution whose center
// falls inside the box, sorted by cell id so the result is stable across
// calls. Border cells may be over-included relative to an exact clip; callers
// must not assume the union of cells matches the box precisely.
func (g *Grid) CellsInBounds(bounds BoundingBox, resolution int) ([]HexCell, error) {
	if resolution < 0 || resolution > MaxResolution {
		return nil, eris.Wrapf(ErrInvalidParameter, "resolution %d outside [0, %d]", resolution, MaxResolution)
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	indexes := h3.Polyfill(h3.GeoPolygon{Geofence: bounds.geofence()}, resolution)

	// A box smaller than one hexagon can contain no cell center. Fall back
	// to the single cell containing the box centroid so small viewports
	// still render.
	if len(indexes) == 0 {
		c := bounds.Center()
		indexes = []h3.H3Index{h3.FromGeo(h3.GeoCoord{Latitude: c.Lat, Longitude: c.Lon}, resolution)}
	}

	if g.maxCells > 0 && len(indexes) > g.maxCells {
		return nil, eris.Wrapf(ErrTooManyCells, "resolution %d produced %d cells (cap %d)", resolution, len(indexes), g.maxCells)
	}

	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	cells := make([]HexCell, 0, len(indexes))
	for _, idx := range indexes {
		center := h3.ToGeo(idx)
		boundary := h3.ToGeoBoundary(idx)

		ring := make([]LatLon, 0, len(boundary))
		for _, v := range boundary {
			ring = append(ring, LatLon{Lat: v.Latitude, Lon: v.Longitude})
		}

		cells = append(cells, HexCell{
			ID:       h3.ToString(idx),
			Center:   LatLon{Lat: center.Latitude, Lon: center.Longitude},
			Boundary: ring,
		})
	}

	return cells, nil
}
