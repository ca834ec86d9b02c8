package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/hazus-cli/internal/model"
	"github.com/sells-group/hazus-cli/internal/region"
)

var hazardsHazard string

var hazardsCmd = &cobra.Command{
	Use:   "hazards <region>",
	Short: "Show the hazards, scenarios and return periods a region offers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		connector, err := openStore()
		if err != nil {
			return err
		}
		opts, err := regionOptions()
		if err != nil {
			return err
		}
		r := region.New(connector, args[0], opts...)

		hs, err := r.Hazards(ctx)
		if err != nil {
			return err
		}
		if hazardsHazard != "" {
			hs = []model.Hazard{model.Hazard(hazardsHazard)}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "HAZARD\tSCENARIO\tRETURN PERIODS")
		_, _ = fmt.Fprintln(w, "------\t--------\t--------------")
		for _, h := range hs {
			if err := r.SetHazard(ctx, h); err != nil {
				return err
			}
			scenarios, err := r.Scenarios(ctx)
			if err != nil {
				return err
			}
			for _, s := range scenarios {
				if err := r.SetScenario(ctx, s); err != nil {
					return err
				}
				rps, err := r.ReturnPeriods(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Selection().Hazard, s, strings.Join(rps, ", "))
			}
		}
		return w.Flush()
	},
}

func init() {
	hazardsCmd.Flags().StringVar(&hazardsHazard, "hazard", "", "only show this hazard")
	rootCmd.AddCommand(hazardsCmd)
}
