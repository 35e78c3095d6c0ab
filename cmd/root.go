package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nassau-gis/hexclimate/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "hexclimate",
	Short: "Hexagonal climate layer server",
	Long:  "Serves NASA NEX-GDDP-CMIP6 temperature projections, sea-level-rise inundation, and urban-heat-island intensity as H3 hexagon GeoJSON layers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
