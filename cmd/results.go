package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/region"
)

var (
	resultsSel       selectionFlags
	resultsOut       outputFlags
	resultsSummaries bool
	resultsSurface   bool
)

var resultsCmd = &cobra.Command{
	Use:   "results <region>",
	Short: "Export merged results for one region selection",
	Long:  "Resolves the hazard, scenario and return period (defaulting to the first available), then exports the merged per-unit results and, optionally, the summary tables and hazard surface.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context(), args[0], resultsSel, resultsOut, resultsSummaries, resultsSurface)
	},
}

var (
	surfaceSel selectionFlags
	surfaceOut outputFlags
)

var surfaceCmd = &cobra.Command{
	Use:   "surface <region>",
	Short: "Export the hazard intensity surface for one region selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, err := openSelected(ctx, args[0], surfaceSel)
		if err != nil {
			return err
		}
		dir, formats := surfaceOut.resolve()
		pool, closePool, err := publishPool(ctx, formats)
		if err != nil {
			return err
		}
		defer closePool()

		w, err := newWriter(r, dir, formats, pool)
		if err != nil {
			return err
		}
		f, err := r.HazardSurface(ctx)
		if err != nil {
			return err
		}
		sel := r.Selection()
		return w.write(ctx, safeName(r.Name, string(sel.Hazard), sel.Scenario, sel.ReturnPeriod, "hazard"), f)
	},
}

func init() {
	resultsSel.register(resultsCmd)
	resultsOut.register(resultsCmd)
	resultsCmd.Flags().BoolVar(&resultsSummaries, "summaries", false, "also export occupancy, building type, facility, county and travel time tables")
	resultsCmd.Flags().BoolVar(&resultsSurface, "surface", false, "also export the hazard surface")
	surfaceSel.register(surfaceCmd)
	surfaceOut.register(surfaceCmd)
	rootCmd.AddCommand(resultsCmd, surfaceCmd)
}

// openSelected opens a region and resolves the flags' selection.
func openSelected(ctx context.Context, name string, sel selectionFlags) (*region.Region, error) {
	connector, err := openStore()
	if err != nil {
		return nil, err
	}
	opts, err := regionOptions()
	if err != nil {
		return nil, err
	}
	r := region.New(connector, name, opts...)
	if err := r.Select(ctx, sel.selection()); err != nil {
		return nil, err
	}
	return r, nil
}

func runExport(ctx context.Context, name string, sel selectionFlags, out outputFlags, summaries, surface bool) error {
	r, err := openSelected(ctx, name, sel)
	if err != nil {
		return err
	}
	dir, formats := out.resolve()
	pool, closePool, err := publishPool(ctx, formats)
	if err != nil {
		return err
	}
	defer closePool()

	w, err := newWriter(r, dir, formats, pool)
	if err != nil {
		return err
	}
	written, failed := exportSelection(ctx, r, w, summaries, surface)
	zap.L().Info("export complete",
		zap.String("region", r.Name),
		zap.Any("selection", r.Selection()),
		zap.Int("written", written),
		zap.Int("failed", failed),
	)
	if written == 0 && failed > 0 {
		return eris.Errorf("results: every artifact for %s failed", r.Name)
	}
	return nil
}
