package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nassau-gis/hexclimate/internal/climate"
	"github.com/nassau-gis/hexclimate/internal/heatisland"
	"github.com/nassau-gis/hexclimate/internal/hexgrid"
	"github.com/nassau-gis/hexclimate/internal/observability"
	"github.com/nassau-gis/hexclimate/internal/sealevel"
	"github.com/nassau-gis/hexclimate/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the climate layer HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		grid := hexgrid.NewGrid(cfg.Grid.MaxCells)
		clock := clockwork.NewRealClock()

		fetcher, err := climate.NewNEXGDDPClient(climate.NEXGDDPConfig{
			Endpoint:        cfg.Climate.S3Endpoint,
			Bucket:          cfg.Climate.Bucket,
			Model:           cfg.Climate.Model,
			CacheDir:        cfg.Climate.CacheDir,
			DownloadsPerMin: cfg.Climate.DownloadsPerMin,
		}, climate.NoDecoder{})
		if err != nil {
			return eris.Wrap(err, "serve: init NEX-GDDP client")
		}

		srv := server.New(server.Options{
			Climate:     climate.NewService(grid, fetcher, cfg.Grid.Workers, clock),
			SeaLevel:    sealevel.NewService(grid, cfg.Grid.Workers, clock),
			HeatIsland:  heatisland.NewService(grid, cfg.Grid.Workers, clock),
			Cache:       hexgrid.NewLayerCache(cfg.Cache.MaxEntries, cfg.Cache.TTL),
			Metrics:     observability.NewMetrics(),
			Clock:       clock,
			CORSOrigins: cfg.Server.CORSOrigins,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      srv,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
