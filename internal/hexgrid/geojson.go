package hexgrid

import (
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// CellValue pairs a hex cell with the per-cell property fields computed by a
// field generator.
type CellValue struct {
	Cell       HexCell
	Properties map[string]any
}

// FeatureCollection is a GeoJSON FeatureCollection with a top-level metadata
// block describing the request that produced it.
type FeatureCollection struct {
	Type     string             `json:"type"`
	Features []*geojson.Feature `json:"features"`
	Metadata map[string]any     `json:"metadata"`
}

// NewFeatureCollection serializes hex cells into GeoJSON polygon features.
//
// H3 boundaries arrive in (lat, lon) vertex order; GeoJSON positions are
// (lon, lat), so each vertex is flipped and the first vertex is appended
// again to close the linear ring. Property maps are copied verbatim, plus
// "hexId" and "center" ([lon, lat]). The metadata map is attached unmodified.
func NewFeatureCollection(cells []CellValue, metadata map[string]any) (*FeatureCollection, error) {
	features := make([]*geojson.Feature, 0, len(cells))

	for _, cv := range cells {
		polygon, err := ringPolygon(cv.Cell)
		if err != nil {
			return nil, err
		}

		props := make(map[string]any, len(cv.Properties)+2)
		for k, v := range cv.Properties {
			props[k] = v
		}
		props["hexId"] = cv.Cell.ID
		props["center"] = []float64{cv.Cell.Center.Lon, cv.Cell.Center.Lat}

		features = append(features, &geojson.Feature{
			Geometry:   polygon,
			Properties: props,
		})
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
		Metadata: metadata,
	}, nil
}

// ringPolygon converts a cell boundary to a closed (lon, lat) polygon ring.
func ringPolygon(cell HexCell) (*geom.Polygon, error) {
	if countDistinct(cell.Boundary) < 3 {
		return nil, eris.Wrapf(ErrDegenerateGeometry, "cell %s has %d distinct boundary points", cell.ID, countDistinct(cell.Boundary))
	}

	flat := make([]float64, 0, (len(cell.Boundary)+1)*2)
	for _, v := range cell.Boundary {
		flat = append(flat, v.Lon, v.Lat)
	}
	// Close the ring: first position repeated last.
	flat = append(flat, cell.Boundary[0].Lon, cell.Boundary[0].Lat)

	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}), nil
}

func countDistinct(ring []LatLon) int {
	seen := make(map[LatLon]struct{}, len(ring))
	for _, v := range ring {
		seen[v] = struct{}{}
	}
	return len(seen)
}
