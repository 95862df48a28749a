package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/subgroup"
)

var subgroupsCmd = &cobra.Command{
	Use:   "subgroups",
	Short: "Stratify the budget impact by patient subgroup",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ps, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		dim, _ := cmd.Flags().GetString("dimension")

		var results []model.SubgroupResult
		if dim != "" {
			results, err = subgroup.AnalyzeDimension(ps, model.SubgroupDimension(dim))
		} else {
			results, err = subgroup.Analyze(ps)
		}
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		formatSubgroups(os.Stdout, ps.Costs.Currency, results)
		return nil
	},
}

// formatSubgroups writes one row per stratum, grouped by dimension.
func formatSubgroups(out io.Writer, currency string, results []model.SubgroupResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DIMENSION\tCATEGORY\tSHARE\tPATIENTS\tTOTAL_IMPACT\tPER_PATIENT")
	_, _ = fmt.Fprintln(w, "---------\t--------\t-----\t--------\t------------\t-----------")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\t%s\t%s\n",
			r.Dimension,
			r.Label,
			r.Proportion*100,
			formatCount(r.Patients),
			formatMoney(currency, r.Result.TotalBudgetImpact),
			formatMoney(currency, r.ImpactPerPatient),
		)
	}
	_ = w.Flush()
}

func init() {
	addAnalysisFlags(subgroupsCmd)
	subgroupsCmd.Flags().String("dimension", "", "restrict to one dimension (age, ckd_stage, prior_cv, diabetes)")
	subgroupsCmd.Flags().Bool("json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(subgroupsCmd)
}
