package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "hazus",
	Short: "Hazus study region data engine",
	Long: `Reads Hazus loss-model results from a study region store, restores packaged
regions, and exports results and hazard surfaces as CSV, XLSX, shapefile,
GeoJSON or PostGIS tables.

Settings come from ./config.yaml (or --config), HAZUS_* environment variables
such as HAZUS_STORE_DSN and HAZUS_EXPORT_OUT_DIR, and the global flags below,
in increasing precedence.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cmd.Flags())
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

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
