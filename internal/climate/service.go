// Package climate generates NASA NEX-GDDP-CMIP6 temperature projections as
// hexagonal GeoJSON layers, from either the public archive or a simulated
// field.
package climate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nassau-gis/hexclimate/internal/hexgrid"
)

// DataOrigin tags which code path produced a projection.
type DataOrigin string

const (
	// OriginSimulated marks output of the deterministic simulated field.
	OriginSimulated DataOrigin = "simulated"
	// OriginReal marks output sampled from a retrieved NEX-GDDP chunk.
	OriginReal DataOrigin = "real"
)

// Projection is a generated layer tagged with its data origin. Callers that
// requested real data must check Origin (or the metadata's using_real_data
// flag): retrieval failures silently degrade to simulation by design.
type Projection struct {
	Collection *hexgrid.FeatureCollection
	Origin     DataOrigin
}

// Service composes the hex grid, the temperature field, and the GeoJSON
// serializer into the temperature-projection layer.
type Service struct {
	grid    *hexgrid.Grid
	fetcher Fetcher
	clock   clockwork.Clock
	workers int
}

// NewService creates a temperature projection service. fetcher may be nil to
// disable the real-data path entirely. workers bounds concurrent per-cell
// evaluation.
func NewService(grid *hexgrid.Grid, fetcher Fetcher, workers int, clock clockwork.Clock) *Service {
	if workers <= 0 {
		workers = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{grid: grid, fetcher: fetcher, clock: clock, workers: workers}
}

// TemperatureProjection generates the hexagonal anomaly layer for a bounding
// box. With useSimulated false it first attempts real-data retrieval; any
// retrieval or decode failure is logged and the simulated field is used
// instead, reflected in the result's Origin.
func (s *Service) TemperatureProjection(ctx context.Context, bounds hexgrid.BoundingBox, year int, scenario string, resolution int, useSimulated bool) (*Projection, error) {
	cells, err := s.grid.CellsInBounds(bounds, resolution)
	if err != nil {
		return nil, err
	}

	sc := LookupScenario(scenario)

	origin := OriginSimulated
	var sampler Sampler
	if !useSimulated && s.fetcher != nil {
		smp, fetchErr := s.fetcher.Fetch(ctx, bounds, year, scenario)
		if fetchErr != nil {
			zap.L().Warn("climate: real-data retrieval failed, falling back to simulation",
				zap.Int("year", year),
				zap.String("scenario", scenario),
				zap.Error(fetchErr),
			)
		} else {
			sampler = smp
			origin = OriginReal
		}
	}

	featureSource := fmt.Sprintf("NASA NEX-GDDP-CMIP6 (%s)", DefaultModel)

	values := make([]hexgrid.CellValue, len(cells))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, cell := range cells {
		i, cell := i, cell
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var anomaly float64
			if sampler != nil {
				anomaly = sampler.AnomalyAt(cell.Center.Lat, cell.Center.Lon)
			} else {
				anomaly = SimulateAnomaly(cell.Center.Lat, cell.Center.Lon, year, scenario)
			}

			// Each field rounds the unrounded anomaly independently, so the
			// Fahrenheit value does not inherit Celsius rounding error.
			values[i] = hexgrid.CellValue{
				Cell: cell,
				Properties: map[string]any{
					"tempAnomaly":  round2(anomaly),
					"tempAnomalyF": round2(anomaly * 1.8),
					"baseline":     BaselineTempC,
					"projected":    round2(BaselineTempC + anomaly),
					"source":       featureSource,
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "climate: evaluate cells")
	}

	metadata := map[string]any{
		"source":          "NASA NEX-GDDP-CMIP6",
		"model":           DefaultModel,
		"scenario":        scenario,
		"ssp_scenario":    sc.SSP,
		"year":            year,
		"resolution":      resolution,
		"baselinePeriod":  "1986-2005",
		"using_real_data": origin == OriginReal,
		"timestamp":       s.clock.Now().UTC().Format(time.RFC3339),
	}

	fc, err := hexgrid.NewFeatureCollection(values, metadata)
	if err != nil {
		return nil, err
	}

	return &Projection{Collection: fc, Origin: origin}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
