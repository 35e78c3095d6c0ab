package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nassau-gis/hexclimate/internal/climate"
	"github.com/nassau-gis/hexclimate/internal/hexgrid"
)

type envelope struct {
	Success  bool                       `json:"success"`
	Data     *hexgrid.FeatureCollection `json:"data"`
	Metadata map[string]any             `json:"metadata"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "hexclimate",
		"timestamp": s.clock.Now().UTC().Format(time.RFC3339),
	})
}

// GET /api/climate/temperature-projection
func (s *Server) handleTemperatureProjection(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bounds, err := parseBounds(q)
	if err != nil {
		s.badRequest(w, "temperature", err.Error())
		return
	}
	year, err := intQuery(q, "year", 2050)
	if err != nil {
		s.badRequest(w, "temperature", err.Error())
		return
	}
	if year < 2020 || year > 2100 {
		s.badRequest(w, "temperature", "Year must be between 2020 and 2100")
		return
	}
	scenario := q.Get("scenario")
	if scenario == "" {
		scenario = climate.DefaultScenario
	}
	if !climate.KnownScenario(scenario) {
		s.badRequest(w, "temperature", "Scenario must be one of: rcp26, rcp45, rcp85")
		return
	}
	resolution, err := intQuery(q, "resolution", 7)
	if err != nil {
		s.badRequest(w, "temperature", err.Error())
		return
	}
	if resolution < 4 || resolution > 10 {
		s.badRequest(w, "temperature", "Resolution must be between 4 and 10")
		return
	}
	useReal := strings.EqualFold(q.Get("use_real_data"), "true")

	key := fmt.Sprintf("temperature|%s|%d|%s|%d|%t", boundsKey(bounds), year, scenario, resolution, useReal)
	s.respondLayer(w, r, "temperature", key, func(ctx context.Context) (*hexgrid.FeatureCollection, map[string]any, error) {
		proj, err := s.climate.TemperatureProjection(ctx, bounds, year, scenario, resolution, !useReal)
		if err != nil {
			return nil, nil, err
		}
		if useReal && proj.Origin == climate.OriginSimulated {
			s.metrics.RealDataFallbacks.Inc()
		}
		return proj.Collection, map[string]any{
			"bounds":          boundsMeta(bounds),
			"year":            year,
			"scenario":        scenario,
			"resolution":      resolution,
			"using_real_data": proj.Origin == climate.OriginReal,
		}, nil
	})
}

// GET /api/climate/sea-level-rise
func (s *Server) handleSeaLevelRise(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bounds, err := parseBounds(q)
	if err != nil {
		s.badRequest(w, "sea_level", err.Error())
		return
	}
	feet, err := intQuery(q, "feet", 3)
	if err != nil {
		s.badRequest(w, "sea_level", err.Error())
		return
	}
	if feet < 0 || feet > 10 {
		s.badRequest(w, "sea_level", "Feet must be between 0 and 10")
		return
	}
	resolution, err := intQuery(q, "resolution", 9)
	if err != nil {
		s.badRequest(w, "sea_level", err.Error())
		return
	}
	if resolution < 6 || resolution > 10 {
		s.badRequest(w, "sea_level", "Resolution must be between 6 and 10")
		return
	}

	key := fmt.Sprintf("sea_level|%s|%d|%d", boundsKey(bounds), feet, resolution)
	s.respondLayer(w, r, "sea_level", key, func(ctx context.Context) (*hexgrid.FeatureCollection, map[string]any, error) {
		fc, err := s.sealevel.SeaLevelHexagons(ctx, bounds, feet, resolution)
		if err != nil {
			return nil, nil, err
		}
		return fc, map[string]any{
			"bounds":     boundsMeta(bounds),
			"feet":       feet,
			"resolution": resolution,
		}, nil
	})
}

// GET /api/climate/urban-heat-island
func (s *Server) handleUrbanHeatIsland(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	bounds, err := parseBounds(q)
	if err != nil {
		s.badRequest(w, "heat_island", err.Error())
		return
	}
	date := q.Get("date")
	resolution, err := intQuery(q, "resolution", 8)
	if err != nil {
		s.badRequest(w, "heat_island", err.Error())
		return
	}
	if resolution < 4 || resolution > 10 {
		s.badRequest(w, "heat_island", "Resolution must be between 4 and 10")
		return
	}

	key := fmt.Sprintf("heat_island|%s|%s|%d", boundsKey(bounds), date, resolution)
	s.respondLayer(w, r, "heat_island", key, func(ctx context.Context) (*hexgrid.FeatureCollection, map[string]any, error) {
		fc, err := s.heatisland.HeatIslandHexagons(ctx, bounds, date, resolution)
		if err != nil {
			return nil, nil, err
		}
		return fc, map[string]any{
			"bounds":     boundsMeta(bounds),
			"date":       fc.Metadata["date"],
			"resolution": resolution,
		}, nil
	})
}

// GET /api/climate/info describes the available scenarios and parameter
// ranges so map clients can build their controls without hard-coding them.
func (s *Server) handleClimateInfo(w http.ResponseWriter, _ *http.Request) {
	scenarioInfo := func(name, label, description string) map[string]any {
		sc := climate.LookupScenario(name)
		return map[string]any{
			"name":               label,
			"description":        description,
			"temp_increase_2050": sc.Increase2050,
			"temp_increase_2100": sc.Increase2100,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"scenarios": map[string]any{
				"rcp26": scenarioInfo("rcp26", "RCP 2.6 (SSP1-2.6)", "Low emissions scenario"),
				"rcp45": scenarioInfo("rcp45", "RCP 4.5 (SSP2-4.5)", "Moderate emissions scenario"),
				"rcp85": scenarioInfo("rcp85", "RCP 8.5 (SSP5-8.5)", "High emissions scenario"),
			},
			"models":     []string{climate.DefaultModel},
			"year_range": map[string]int{"min": 2020, "max": 2100},
			"resolution_range": map[string]any{
				"min":         4,
				"max":         10,
				"recommended": 7,
				"description": "H3 hexagon resolution (7 = ~5km diameter)",
			},
			"data_source": map[string]string{
				"name":      "NASA NEX-GDDP-CMIP6",
				"url":       "https://www.nccs.nasa.gov/services/data-collections/land-based-products/nex-gddp-cmip6",
				"s3_bucket": "s3://nasa-nex-gddp-cmip6",
			},
			"baseline_period": "1986-2005",
		},
	})
}

// GET /api/cache/stats
func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	if s.cache == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"enabled": false},
		})
		return
	}
	stats := s.cache.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"enabled":     true,
			"entries":     stats.Entries,
			"max_entries": stats.MaxEntries,
			"hits":        stats.Hits,
			"misses":      stats.Misses,
			"hit_rate":    stats.HitRate,
		},
	})
}

// respondLayer runs the cache-or-generate path shared by the three layer
// endpoints. generate returns the layer plus the request-level metadata for
// the response envelope; feature_count is appended here. The cached value is
// the full marshaled envelope, so a hit skips serialization too.
func (s *Server) respondLayer(w http.ResponseWriter, r *http.Request, layer, key string, generate func(context.Context) (*hexgrid.FeatureCollection, map[string]any, error)) {
	start := s.clock.Now()

	if s.cache != nil {
		if cached := s.cache.Get(key); cached != nil {
			s.metrics.CacheLookups.WithLabelValues("hit").Inc()
			s.metrics.LayerRequests.WithLabelValues(layer, "success").Inc()
			s.metrics.RequestDuration.WithLabelValues(layer).Observe(s.clock.Since(start).Seconds())
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			_, _ = w.Write(cached)
			return
		}
		s.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	fc, meta, err := generate(r.Context())
	if err != nil {
		if eris.Is(err, hexgrid.ErrInvalidParameter) || eris.Is(err, hexgrid.ErrTooManyCells) {
			s.badRequest(w, layer, err.Error())
			return
		}
		zap.L().Error("server: layer generation failed",
			zap.String("layer", layer),
			zap.Error(err),
		)
		s.metrics.LayerRequests.WithLabelValues(layer, "error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}

	meta["feature_count"] = len(fc.Features)
	body, err := json.Marshal(envelope{Success: true, Data: fc, Metadata: meta})
	if err != nil {
		s.metrics.LayerRequests.WithLabelValues(layer, "error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}

	if s.cache != nil {
		s.cache.Put(key, body)
	}
	s.metrics.LayerRequests.WithLabelValues(layer, "success").Inc()
	s.metrics.CellsGenerated.WithLabelValues(layer).Observe(float64(len(fc.Features)))
	s.metrics.RequestDuration.WithLabelValues(layer).Observe(s.clock.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(body)
}

func (s *Server) badRequest(w http.ResponseWriter, layer, msg string) {
	s.metrics.LayerRequests.WithLabelValues(layer, "invalid").Inc()
	writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

// parseBounds reads and validates the four required viewport parameters. The
// antimeridian is not supported: west must be strictly less than east.
func parseBounds(q url.Values) (hexgrid.BoundingBox, error) {
	var bb hexgrid.BoundingBox
	fields := []struct {
		name string
		dst  *float64
	}{
		{"north", &bb.North},
		{"south", &bb.South},
		{"east", &bb.East},
		{"west", &bb.West},
	}
	for _, f := range fields {
		raw := q.Get(f.name)
		if raw == "" {
			return bb, eris.New("Missing required parameters: north, south, east, west")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return bb, eris.Errorf("Invalid %s value", f.name)
		}
		*f.dst = v
	}
	if !(-90 <= bb.South && bb.South < bb.North && bb.North <= 90) {
		return bb, eris.New("Invalid latitude bounds")
	}
	if !(-180 <= bb.West && bb.West < bb.East && bb.East <= 180) {
		return bb, eris.New("Invalid longitude bounds")
	}
	return bb, nil
}

func intQuery(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, eris.Errorf("Invalid %s value", name)
	}
	return v, nil
}

func boundsKey(bb hexgrid.BoundingBox) string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", bb.North, bb.South, bb.East, bb.West)
}

func boundsMeta(bb hexgrid.BoundingBox) map[string]float64 {
	return map[string]float64{
		"north": bb.North,
		"south": bb.South,
		"east":  bb.East,
		"west":  bb.West,
	}
}
