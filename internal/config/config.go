package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Ingest IngestConfig `yaml:"ingest" mapstructure:"ingest"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the relational store holding the study regions.
type StoreConfig struct {
	Driver           string `yaml:"driver" mapstructure:"driver" validate:"oneof=sqlserver postgres sqlite"`
	DSN              string `yaml:"dsn" mapstructure:"dsn"`
	CatalogDB        string `yaml:"catalog_db" mapstructure:"catalog_db" validate:"required"`
	QueryTimeoutSecs int    `yaml:"query_timeout_secs" mapstructure:"query_timeout_secs" validate:"min=0"`
}

// DataConfig locates files the store does not hold.
type DataConfig struct {
	Root    string `yaml:"root" mapstructure:"root"`       // Hazus regions directory (grids, shapefiles)
	Catalog string `yaml:"catalog" mapstructure:"catalog"` // optional layer catalog override
}

// IngestConfig configures package restores.
type IngestConfig struct {
	TempDir   string `yaml:"temp_dir" mapstructure:"temp_dir" validate:"required"`
	KeepFiles bool   `yaml:"keep_files" mapstructure:"keep_files"`
}

// ExportConfig configures the export serializer.
type ExportConfig struct {
	OutDir            string   `yaml:"out_dir" mapstructure:"out_dir" validate:"required"`
	SourceCRS         string   `yaml:"source_crs" mapstructure:"source_crs" validate:"required"`
	TargetCRS         string   `yaml:"target_crs" mapstructure:"target_crs" validate:"required"`
	SimplifyTolerance float64  `yaml:"simplify_tolerance" mapstructure:"simplify_tolerance" validate:"gt=0"`
	Formats           []string `yaml:"formats" mapstructure:"formats" validate:"dive,oneof=csv xlsx shapefile geojson postgis"`
	PostGISURL        string   `yaml:"postgis_url" mapstructure:"postgis_url"`
}

// BatchConfig configures multi-region runs.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency" validate:"min=1,max=32"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// flagKeys maps the global CLI flags to the keys they override.
var flagKeys = map[string]string{
	"store-driver": "store.driver",
	"dsn":          "store.dsn",
	"catalog-db":   "store.catalog_db",
	"data-root":    "data.root",
	"log-level":    "log.level",
}

// RegisterFlags adds the global flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./config.yaml)")
	fs.String("store-driver", "", "store driver: sqlserver, postgres or sqlite (store.driver)")
	fs.String("dsn", "", "store connection string (store.dsn)")
	fs.String("catalog-db", "", "Hazus system database holding the region catalog (store.catalog_db)")
	fs.String("data-root", "", "Hazus regions directory with grids and shapefiles (data.root)")
	fs.String("log-level", "", "debug, info, warn or error (log.level)")
}

// Load reads configuration from defaults, config.yaml, HAZUS_* environment
// variables and, highest first, any flags set in flags.
func Load(flags ...*pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	for _, fs := range flags {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			v.SetConfigFile(f.Value.String())
		}
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, eris.Wrapf(err, "config: bind flag %s", name)
			}
		}
	}

	// Environment
	v.SetEnvPrefix("HAZUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlserver")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.catalog_db", "syHazus")
	v.SetDefault("store.query_timeout_secs", 300)
	v.SetDefault("data.root", "")
	v.SetDefault("data.catalog", "")
	v.SetDefault("ingest.temp_dir", filepath.Join(os.TempDir(), "hazus-ingest"))
	v.SetDefault("ingest.keep_files", false)
	v.SetDefault("export.out_dir", "./export")
	v.SetDefault("export.source_crs", "EPSG:4326")
	v.SetDefault("export.target_crs", "EPSG:4326")
	v.SetDefault("export.simplify_tolerance", 0.001)
	v.SetDefault("export.formats", []string{"csv", "shapefile", "geojson"})
	v.SetDefault("export.postgis_url", "")
	v.SetDefault("batch.concurrency", 2)
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

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: validate")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes: "query"
// (read a live store), "ingest" (restore packages) and "publish" (PostGIS
// export).
func (c *Config) Validate(mode string) error {
	var missing []string
	switch mode {
	case "query":
		if c.Store.DSN == "" {
			missing = append(missing, "store.dsn is required")
		}
	case "ingest":
		if c.Store.DSN == "" {
			missing = append(missing, "store.dsn is required")
		}
		if c.Store.Driver != "sqlserver" {
			missing = append(missing, fmt.Sprintf("store.driver must be sqlserver to restore packages, got %q", c.Store.Driver))
		}
	case "publish":
		if c.Export.PostGISURL == "" {
			missing = append(missing, "export.postgis_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
	}
	return nil
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
