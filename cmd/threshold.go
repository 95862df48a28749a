package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bim-cli/internal/engine"
)

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Solve for the new-therapy price at a target budget impact",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ps, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		target, _ := cmd.Flags().GetFloat64("target")

		price, err := engine.PriceThreshold(ps, target)
		if err != nil {
			if eris.Is(err, engine.ErrNoThreshold) {
				return eris.Wrapf(err, "no annual price in the search range hits a %s impact",
					formatMoney(ps.Costs.Currency, target))
			}
			return err
		}

		fmt.Fprintf(os.Stdout, "Annual price for %s budget impact: %s\n",
			formatMoney(ps.Costs.Currency, target),
			formatMoney(ps.Costs.Currency, price),
		)
		return nil
	},
}

func init() {
	addAnalysisFlags(thresholdCmd)
	thresholdCmd.Flags().Float64("target", 0, "target total budget impact (0 = budget neutral)")
	rootCmd.AddCommand(thresholdCmd)
}
