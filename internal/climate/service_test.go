package climate

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nassau-gis/hexclimate/internal/hexgrid"
)

var testBounds = hexgrid.BoundingBox{North: 40.76, South: 40.75, East: -73.64, West: -73.65}

// failingFetcher simulates an unreachable archive.
type failingFetcher struct{ calls int }

func (f *failingFetcher) Fetch(context.Context, hexgrid.BoundingBox, int, string) (Sampler, error) {
	f.calls++
	return nil, eris.New("bucket unreachable")
}

// constantSampler returns a fixed anomaly everywhere.
type constantSampler struct{ anomaly float64 }

func (s constantSampler) AnomalyAt(float64, float64) float64 { return s.anomaly }

type constantFetcher struct{ anomaly float64 }

func (f constantFetcher) Fetch(context.Context, hexgrid.BoundingBox, int, string) (Sampler, error) {
	return constantSampler{anomaly: f.anomaly}, nil
}

func newTestService(fetcher Fetcher) *Service {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	return NewService(hexgrid.NewGrid(0), fetcher, 4, clock)
}

func TestTemperatureProjection_Simulated(t *testing.T) {
	svc := newTestService(nil)

	proj, err := svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp45", 9, true)
	require.NoError(t, err)

	assert.Equal(t, OriginSimulated, proj.Origin)
	fc := proj.Collection
	require.NotEmpty(t, fc.Features)

	assert.Equal(t, "NASA NEX-GDDP-CMIP6", fc.Metadata["source"])
	assert.Equal(t, "ACCESS-CM2", fc.Metadata["model"])
	assert.Equal(t, "rcp45", fc.Metadata["scenario"])
	assert.Equal(t, "ssp245", fc.Metadata["ssp_scenario"])
	assert.Equal(t, 2050, fc.Metadata["year"])
	assert.Equal(t, 9, fc.Metadata["resolution"])
	assert.Equal(t, false, fc.Metadata["using_real_data"])
	assert.Equal(t, "2026-03-14T12:00:00Z", fc.Metadata["timestamp"])

	for _, f := range fc.Features {
		anomaly, ok := f.Properties["tempAnomaly"].(float64)
		require.True(t, ok)
		assert.InDelta(t, anomaly*1.8, f.Properties["tempAnomalyF"].(float64), 0.02)
		assert.Equal(t, BaselineTempC, f.Properties["baseline"])
		assert.InDelta(t, BaselineTempC+anomaly, f.Properties["projected"].(float64), 0.02)
		assert.Equal(t, "NASA NEX-GDDP-CMIP6 (ACCESS-CM2)", f.Properties["source"])
		assert.NotEmpty(t, f.Properties["hexId"])
	}
}

func TestTemperatureProjection_Deterministic(t *testing.T) {
	svc := newTestService(nil)

	first, err := svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp85", 9, true)
	require.NoError(t, err)
	second, err := svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp85", 9, true)
	require.NoError(t, err)

	require.Equal(t, len(first.Collection.Features), len(second.Collection.Features))
	for i := range first.Collection.Features {
		assert.Equal(t,
			first.Collection.Features[i].Properties["hexId"],
			second.Collection.Features[i].Properties["hexId"],
		)
		assert.Equal(t,
			first.Collection.Features[i].Properties["tempAnomaly"],
			second.Collection.Features[i].Properties["tempAnomaly"],
		)
	}
}

func TestTemperatureProjection_FallbackOnFetchFailure(t *testing.T) {
	fetcher := &failingFetcher{}
	svc := newTestService(fetcher)

	proj, err := svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp45", 9, false)
	require.NoError(t, err, "retrieval failure must not surface as an error")

	assert.Equal(t, 1, fetcher.calls, "fallback is one-shot, not a retry loop")
	assert.Equal(t, OriginSimulated, proj.Origin)
	assert.Equal(t, false, proj.Collection.Metadata["using_real_data"])
}

func TestTemperatureProjection_RealDataPath(t *testing.T) {
	svc := newTestService(constantFetcher{anomaly: 2.34})

	proj, err := svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp45", 9, false)
	require.NoError(t, err)

	assert.Equal(t, OriginReal, proj.Origin)
	assert.Equal(t, true, proj.Collection.Metadata["using_real_data"])
	for _, f := range proj.Collection.Features {
		assert.Equal(t, 2.34, f.Properties["tempAnomaly"])
	}
}

func TestTemperatureProjection_RoundsFromUnroundedAnomaly(t *testing.T) {
	// 2.345 °C rounds to 2.34, but 2.345*1.8 = 4.221 rounds to 4.22. Scaling
	// the already-rounded Celsius value would give 2.34*1.8 = 4.21 instead.
	svc := newTestService(constantFetcher{anomaly: 2.345})

	proj, err := svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp45", 9, false)
	require.NoError(t, err)
	require.NotEmpty(t, proj.Collection.Features)

	for _, f := range proj.Collection.Features {
		assert.Equal(t, 2.34, f.Properties["tempAnomaly"])
		assert.Equal(t, 4.22, f.Properties["tempAnomalyF"])
		assert.Equal(t, 16.84, f.Properties["projected"])
	}
}

func TestTemperatureProjection_SimulatedFlagSkipsFetcher(t *testing.T) {
	fetcher := &failingFetcher{}
	svc := newTestService(fetcher)

	_, err := svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp45", 9, true)
	require.NoError(t, err)
	assert.Equal(t, 0, fetcher.calls)
}

func TestTemperatureProjection_ScenarioMeanOrdering(t *testing.T) {
	svc := newTestService(nil)

	meanAnomaly := func(scenario string) float64 {
		proj, err := svc.TemperatureProjection(context.Background(), testBounds, 2100, scenario, 9, true)
		require.NoError(t, err)
		var sum float64
		for _, f := range proj.Collection.Features {
			sum += f.Properties["tempAnomaly"].(float64)
		}
		return sum / float64(len(proj.Collection.Features))
	}

	assert.Greater(t, meanAnomaly("rcp85"), meanAnomaly("rcp26"))
}

func TestTemperatureProjection_GridErrorsPropagate(t *testing.T) {
	svc := NewService(hexgrid.NewGrid(5), nil, 4, nil)

	_, err := svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp45", 10, true)
	assert.True(t, eris.Is(err, hexgrid.ErrTooManyCells))

	_, err = svc.TemperatureProjection(context.Background(), testBounds, 2050, "rcp45", 16, true)
	assert.True(t, eris.Is(err, hexgrid.ErrInvalidParameter))
}

func TestTemperatureProjection_CancelledContext(t *testing.T) {
	svc := newTestService(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.TemperatureProjection(ctx, testBounds, 2050, "rcp45", 9, true)
	assert.Error(t, err)
}
