// Package server exposes the climate layers over HTTP: three GeoJSON layer
// endpoints plus health, metrics, cache stats, and a capabilities document.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nassau-gis/hexclimate/internal/climate"
	"github.com/nassau-gis/hexclimate/internal/heatisland"
	"github.com/nassau-gis/hexclimate/internal/hexgrid"
	"github.com/nassau-gis/hexclimate/internal/observability"
	"github.com/nassau-gis/hexclimate/internal/sealevel"
)

// Options wires the domain services and supporting infrastructure into a
// Server. Cache, Metrics, and Clock may be nil; CORSOrigins defaults to "*".
type Options struct {
	Climate     *climate.Service
	SeaLevel    *sealevel.Service
	HeatIsland  *heatisland.Service
	Cache       *hexgrid.LayerCache
	Metrics     *observability.Metrics
	Clock       clockwork.Clock
	CORSOrigins []string
}

// Server is the HTTP front of the layer services.
type Server struct {
	climate    *climate.Service
	sealevel   *sealevel.Service
	heatisland *heatisland.Service
	cache      *hexgrid.LayerCache
	metrics    *observability.Metrics
	clock      clockwork.Clock
	router     chi.Router
}

// New assembles the router. The layer endpoints are read-only, so only GET
// and OPTIONS are exposed.
func New(opts Options) *Server {
	s := &Server{
		climate:    opts.Climate,
		sealevel:   opts.SeaLevel,
		heatisland: opts.HeatIsland,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		clock:      opts.Clock,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetricsForTesting()
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Get("/climate/temperature-projection", s.handleTemperatureProjection)
		r.Get("/climate/sea-level-rise", s.handleSeaLevelRise)
		r.Get("/climate/urban-heat-island", s.handleUrbanHeatIsland)
		r.Get("/climate/info", s.handleClimateInfo)
		r.Get("/cache/stats", s.handleCacheStats)
	})
	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestID echoes an inbound X-Request-ID or mints one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", ww.Header().Get("X-Request-ID")),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
