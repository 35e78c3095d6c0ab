package climate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nassau-gis/hexclimate/internal/hexgrid"
)

// variableTasmax is the NEX-GDDP variable fetched for projections: daily
// maximum near-surface air temperature.
const variableTasmax = "tasmax"

// Sampler yields a temperature anomaly (°C relative to BaselineTempC) at a
// geographic point, typically by nearest-neighbor lookup into a decoded grid.
type Sampler interface {
	AnomalyAt(lat, lon float64) float64
}

// GridDecoder turns a downloaded NetCDF chunk into a Sampler: slice to the
// bounding box, average over time, convert Kelvin to Celsius, and subtract
// the baseline.
type GridDecoder interface {
	Decode(path string, bounds hexgrid.BoundingBox) (Sampler, error)
}

// Fetcher retrieves real projection data for a bounding box. Implementations
// return an error on any failure; the service converts that into a fallback
// to simulation, never into a caller-visible error.
type Fetcher interface {
	Fetch(ctx context.Context, bounds hexgrid.BoundingBox, year int, scenario string) (Sampler, error)
}

// NEXGDDPConfig configures retrieval from the NEX-GDDP-CMIP6 archive.
type NEXGDDPConfig struct {
	Endpoint        string
	Bucket          string
	Model           string
	CacheDir        string
	DownloadsPerMin float64
}

// NEXGDDPClient downloads NetCDF chunks from the public NEX-GDDP-CMIP6
// bucket with anonymous credentials, caches them on disk, and hands them to
// a GridDecoder.
type NEXGDDPClient struct {
	client   *minio.Client
	bucket   string
	model    string
	cacheDir string
	limiter  *rate.Limiter
	decoder  GridDecoder
}

// NewNEXGDDPClient creates a retrieval client. The cache directory is
// created if absent; downloaded chunks are kept there indefinitely (a single
// 20-year chunk covers many requests).
func NewNEXGDDPClient(cfg NEXGDDPConfig, decoder GridDecoder) (*NEXGDDPClient, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("", "", ""),
		Secure: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "climate: init s3 client")
	}

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "climate: create cache dir")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	perMin := cfg.DownloadsPerMin
	if perMin <= 0 {
		perMin = 4
	}

	return &NEXGDDPClient{
		client:   mc,
		bucket:   cfg.Bucket,
		model:    model,
		cacheDir: cfg.CacheDir,
		limiter:  rate.NewLimiter(rate.Limit(perMin/60.0), 1),
		decoder:  decoder,
	}, nil
}

// objectKey builds the archive path for a variable/scenario/model/time-range
// combination, e.g.
// tasmax/ssp245/ACCESS-CM2/tasmax_day_ACCESS-CM2_ssp245_r1i1p1f1_gn_2040-2059.nc.
func objectKey(variable, ssp, model, timeRange string) string {
	filename := fmt.Sprintf("%s_day_%s_%s_r1i1p1f1_gn_%s.nc", variable, model, ssp, timeRange)
	return fmt.Sprintf("%s/%s/%s/%s", variable, ssp, model, filename)
}

// Fetch downloads (or reuses from the cache directory) the 20-year chunk
// covering the year and decodes it for the bounding box.
func (c *NEXGDDPClient) Fetch(ctx context.Context, bounds hexgrid.BoundingBox, year int, scenario string) (Sampler, error) {
	sc := LookupScenario(scenario)
	key := objectKey(variableTasmax, sc.SSP, c.model, TimeRange(year))
	local := filepath.Join(c.cacheDir, filepath.Base(key))

	if _, err := os.Stat(local); err != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "climate: rate limit wait")
		}
		zap.L().Info("downloading NEX-GDDP chunk",
			zap.String("bucket", c.bucket),
			zap.String("key", key),
		)
		if err := c.client.FGetObject(ctx, c.bucket, key, local, minio.GetObjectOptions{}); err != nil {
			return nil, eris.Wrapf(err, "climate: download %s", key)
		}
	}

	sampler, err := c.decoder.Decode(local, bounds)
	if err != nil {
		return nil, eris.Wrapf(err, "climate: decode %s", filepath.Base(local))
	}
	return sampler, nil
}

// NoDecoder is the default GridDecoder: it always fails, which routes every
// real-data request through the simulation fallback. A working NetCDF codec
// can be plugged in without touching the service or the client.
type NoDecoder struct{}

// Decode always returns an error.
func (NoDecoder) Decode(path string, _ hexgrid.BoundingBox) (Sampler, error) {
	return nil, eris.Errorf("climate: no NetCDF decoder available for %s", filepath.Base(path))
}
