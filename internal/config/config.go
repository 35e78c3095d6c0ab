package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Grid    GridConfig    `yaml:"grid" mapstructure:"grid"`
	Climate ClimateConfig `yaml:"climate" mapstructure:"climate"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP layer server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// GridConfig configures the hexagonal grid provider.
type GridConfig struct {
	// MaxCells caps the number of hexagons a single request may generate.
	// Cell count grows geometrically with resolution, so this is the main
	// guard against runaway memory use.
	MaxCells int `yaml:"max_cells" mapstructure:"max_cells"`
	// Workers bounds concurrent per-cell field evaluation.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ClimateConfig configures the NASA NEX-GDDP-CMIP6 retrieval path.
type ClimateConfig struct {
	CacheDir        string  `yaml:"cache_dir" mapstructure:"cache_dir"`
	S3Endpoint      string  `yaml:"s3_endpoint" mapstructure:"s3_endpoint"`
	Bucket          string  `yaml:"bucket" mapstructure:"bucket"`
	Model           string  `yaml:"model" mapstructure:"model"`
	DownloadsPerMin float64 `yaml:"downloads_per_min" mapstructure:"downloads_per_min"`
}

// CacheConfig configures the in-memory layer response cache.
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HEXCLIMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("grid.max_cells", 50000)
	v.SetDefault("grid.workers", 8)
	v.SetDefault("climate.cache_dir", "/tmp/climate_cache")
	v.SetDefault("climate.s3_endpoint", "s3.amazonaws.com")
	v.SetDefault("climate.bucket", "nasa-nex-gddp-cmip6")
	v.SetDefault("climate.model", "ACCESS-CM2")
	v.SetDefault("climate.downloads_per_min", 4)
	v.SetDefault("cache.max_entries", 256)
	v.SetDefault("cache.ttl", "15m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
