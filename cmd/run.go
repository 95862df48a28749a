package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/engine"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the budget impact calculation",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ps, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		calc, err := engine.New(ps)
		if err != nil {
			return err
		}
		res, err := calc.Run()
		if err != nil {
			return eris.Wrap(err, "run")
		}

		zap.L().Info("run complete",
			zap.String("country", res.Country),
			zap.String("scenario", string(res.Scenario)),
			zap.Float64("total_budget_impact", res.TotalBudgetImpact),
		)

		if save, _ := cmd.Flags().GetBool("save"); save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			id, err := saveRun(ctx, st, ps, res)
			if err != nil {
				return eris.Wrap(err, "save run")
			}
			zap.L().Info("run saved", zap.String("analysis_id", id))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	addAnalysisFlags(runCmd)
	runCmd.Flags().Bool("save", false, "persist the run in the analysis archive")
	rootCmd.AddCommand(runCmd)
}
