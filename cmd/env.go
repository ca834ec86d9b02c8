package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/hazard"
	"github.com/sells-group/hazus-cli/internal/model"
	"github.com/sells-group/hazus-cli/internal/region"
)

// openStore builds the connector for the configured store.
func openStore() (db.Connector, error) {
	if err := cfg.Validate("query"); err != nil {
		return nil, err
	}
	return db.Open(cfg.Store.Driver, cfg.Store.DSN, queryTimeout())
}

func queryTimeout() time.Duration {
	return time.Duration(cfg.Store.QueryTimeoutSecs) * time.Second
}

// regionOptions applies the catalog database, data root and layer catalog
// settings to every region a command opens.
func regionOptions() ([]region.Option, error) {
	opts := []region.Option{
		region.WithCatalogDB(cfg.Store.CatalogDB),
		region.WithDataRoot(cfg.Data.Root),
	}
	if cfg.Data.Catalog != "" {
		c, err := hazard.LoadCatalog(cfg.Data.Catalog)
		if err != nil {
			return nil, err
		}
		opts = append(opts, region.WithLayers(c))
	}
	return opts, nil
}

// selectionFlags holds the --hazard, --scenario and --return-period flags.
// Empty values default to the first available option.
type selectionFlags struct {
	hazard       string
	scenario     string
	returnPeriod string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.hazard, "hazard", "", "hazard to select (earthquake, flood, hurricane, tsunami)")
	cmd.Flags().StringVar(&s.scenario, "scenario", "", "scenario name")
	cmd.Flags().StringVar(&s.returnPeriod, "return-period", "", `return period ("0" or "mixed" for deterministic runs)`)
}

func (s *selectionFlags) selection() model.Selection {
	return model.Selection{
		Hazard:       model.Hazard(strings.TrimSpace(s.hazard)),
		Scenario:     strings.TrimSpace(s.scenario),
		ReturnPeriod: strings.TrimSpace(s.returnPeriod),
	}
}

// outputFlags holds the --out and --format overrides of the export config.
type outputFlags struct {
	outDir  string
	formats []string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.outDir, "out", "", "output directory (default from export.out_dir)")
	cmd.Flags().StringSliceVar(&o.formats, "format", nil, "output formats: csv, xlsx, shapefile, geojson, postgis (default from export.formats)")
}

func (o *outputFlags) resolve() (string, []string) {
	dir, formats := cfg.Export.OutDir, cfg.Export.Formats
	if o.outDir != "" {
		dir = o.outDir
	}
	if len(o.formats) > 0 {
		formats = o.formats
	}
	return dir, formats
}
