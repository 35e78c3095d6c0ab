package heatisland

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nassau-gis/hexclimate/internal/hexgrid"
)

// Service composes the hex grid and the intensity field into the
// urban-heat-island layer.
type Service struct {
	grid    *hexgrid.Grid
	clock   clockwork.Clock
	workers int
}

// NewService creates a heat-island service. workers bounds concurrent
// per-cell evaluation.
func NewService(grid *hexgrid.Grid, workers int, clock clockwork.Clock) *Service {
	if workers <= 0 {
		workers = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{grid: grid, clock: clock, workers: workers}
}

// HeatIslandHexagons generates the heat-island layer for a bounding box. The
// viewport centroid is treated as the urban core. date is a display label
// (YYYY-MM-DD); empty means today. It does not change the field.
func (s *Service) HeatIslandHexagons(ctx context.Context, bounds hexgrid.BoundingBox, date string, resolution int) (*hexgrid.FeatureCollection, error) {
	cells, err := s.grid.CellsInBounds(bounds, resolution)
	if err != nil {
		return nil, err
	}

	core := bounds.Center()

	intensities := make([]float64, len(cells))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, cell := range cells {
		i, cell := i, cell
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			intensities[i] = SimulateIntensity(cell.Center.Lat, cell.Center.Lon, core.Lat, core.Lon)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "heatisland: evaluate cells")
	}

	values := make([]hexgrid.CellValue, len(cells))
	for i, cell := range cells {
		values[i] = hexgrid.CellValue{
			Cell: cell,
			Properties: map[string]any{
				"heatIslandIntensity": round2(intensities[i]),
				"level":               Classify(intensities[i]),
				"resolution":          resolution,
			},
		}
	}

	if date == "" {
		date = s.clock.Now().UTC().Format("2006-01-02")
	}

	zap.L().Debug("heatisland: layer generated",
		zap.Int("cells", len(cells)),
		zap.String("date", date),
	)

	metadata := map[string]any{
		"date":        date,
		"resolution":  resolution,
		"count":       len(values),
		"source":      "Simulated Urban Heat Island",
		"description": "Urban heat island intensity showing temperature differences between urban and rural areas",
		"timestamp":   s.clock.Now().UTC().Format(time.RFC3339),
	}

	return hexgrid.NewFeatureCollection(values, metadata)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
