package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/hazus-cli/internal/model"
	"github.com/sells-group/hazus-cli/internal/region"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List study regions and the hazards they carry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		connector, err := openStore()
		if err != nil {
			return err
		}
		regions, err := region.ListRegions(ctx, connector, cfg.Store.CatalogDB)
		if err != nil {
			return eris.Wrap(err, "regions")
		}
		if len(regions) == 0 {
			fmt.Fprintln(os.Stderr, "No study regions found.")
			return nil
		}
		formatRegions(os.Stdout, regions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}

func formatRegions(out io.Writer, regions []region.Info) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGION\tHAZARDS")
	_, _ = fmt.Fprintln(w, "------\t-------")
	for _, r := range regions {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", r.Name, joinHazards(r.Hazards))
	}
	_ = w.Flush()
}

func joinHazards(hs []model.Hazard) string {
	if len(hs) == 0 {
		return "-"
	}
	names := make([]string, len(hs))
	for i, h := range hs {
		names[i] = string(h)
	}
	return strings.Join(names, ", ")
}
