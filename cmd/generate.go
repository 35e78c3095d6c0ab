package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nassau-gis/hexclimate/internal/climate"
	"github.com/nassau-gis/hexclimate/internal/heatisland"
	"github.com/nassau-gis/hexclimate/internal/hexgrid"
	"github.com/nassau-gis/hexclimate/internal/sealevel"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one climate layer as GeoJSON without starting the server",
	Long:  "Runs a single layer generation and writes the FeatureCollection to stdout or a file. Useful for scripted exports and smoke checks.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		layer, _ := cmd.Flags().GetString("layer")
		north, _ := cmd.Flags().GetFloat64("north")
		south, _ := cmd.Flags().GetFloat64("south")
		east, _ := cmd.Flags().GetFloat64("east")
		west, _ := cmd.Flags().GetFloat64("west")
		resolution, _ := cmd.Flags().GetInt("resolution")

		bounds := hexgrid.BoundingBox{North: north, South: south, East: east, West: west}
		if err := bounds.Validate(); err != nil {
			return err
		}

		grid := hexgrid.NewGrid(cfg.Grid.MaxCells)
		clock := clockwork.NewRealClock()

		var fc *hexgrid.FeatureCollection
		switch layer {
		case "temperature":
			year, _ := cmd.Flags().GetInt("year")
			scenario, _ := cmd.Flags().GetString("scenario")
			useReal, _ := cmd.Flags().GetBool("use-real-data")
			if !climate.KnownScenario(scenario) {
				return eris.Errorf("generate: unknown scenario %q", scenario)
			}

			var fetcher climate.Fetcher
			if useReal {
				client, err := climate.NewNEXGDDPClient(climate.NEXGDDPConfig{
					Endpoint:        cfg.Climate.S3Endpoint,
					Bucket:          cfg.Climate.Bucket,
					Model:           cfg.Climate.Model,
					CacheDir:        cfg.Climate.CacheDir,
					DownloadsPerMin: cfg.Climate.DownloadsPerMin,
				}, climate.NoDecoder{})
				if err != nil {
					return eris.Wrap(err, "generate: init NEX-GDDP client")
				}
				fetcher = client
			}

			svc := climate.NewService(grid, fetcher, cfg.Grid.Workers, clock)
			proj, err := svc.TemperatureProjection(ctx, bounds, year, scenario, defaultRes(resolution, 7), !useReal)
			if err != nil {
				return err
			}
			fc = proj.Collection

		case "sea-level":
			feet, _ := cmd.Flags().GetInt("feet")
			svc := sealevel.NewService(grid, cfg.Grid.Workers, clock)
			var err error
			fc, err = svc.SeaLevelHexagons(ctx, bounds, feet, defaultRes(resolution, 9))
			if err != nil {
				return err
			}

		case "heat-island":
			date, _ := cmd.Flags().GetString("date")
			svc := heatisland.NewService(grid, cfg.Grid.Workers, clock)
			var err error
			fc, err = svc.HeatIslandHexagons(ctx, bounds, date, defaultRes(resolution, 8))
			if err != nil {
				return err
			}

		default:
			return eris.Errorf("generate: unknown layer %q (temperature, sea-level, heat-island)", layer)
		}

		data, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return eris.Wrap(err, "generate: marshal layer")
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return eris.Wrapf(err, "generate: write %s", output)
		}
		zap.L().Info("layer written",
			zap.String("layer", layer),
			zap.String("output", output),
			zap.Int("features", len(fc.Features)),
		)
		return nil
	},
}

// defaultRes applies the per-layer default when --resolution is unset.
func defaultRes(flag, def int) int {
	if flag == 0 {
		return def
	}
	return flag
}

func init() {
	generateCmd.Flags().String("layer", "temperature", "layer to generate: temperature, sea-level, heat-island")
	generateCmd.Flags().Float64("north", 0, "northern latitude bound")
	generateCmd.Flags().Float64("south", 0, "southern latitude bound")
	generateCmd.Flags().Float64("east", 0, "eastern longitude bound")
	generateCmd.Flags().Float64("west", 0, "western longitude bound")
	generateCmd.Flags().Int("resolution", 0, "H3 resolution (default per layer)")
	generateCmd.Flags().Int("year", 2050, "projection year (temperature)")
	generateCmd.Flags().String("scenario", "rcp45", "emissions scenario (temperature)")
	generateCmd.Flags().Bool("use-real-data", false, "attempt NEX-GDDP retrieval before simulating (temperature)")
	generateCmd.Flags().Int("feet", 3, "sea level rise in feet (sea-level)")
	generateCmd.Flags().String("date", "", "analysis date YYYY-MM-DD (heat-island)")
	generateCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(generateCmd)
}
