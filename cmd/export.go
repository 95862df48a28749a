package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/report"
	"github.com/sells-group/bim-cli/internal/sensitivity"
	"github.com/sells-group/bim-cli/internal/subgroup"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full analysis to an xlsx workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ps, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		res, err := baseRun(ps)
		if err != nil {
			return eris.Wrap(err, "base run")
		}
		wb := report.Workbook{Result: res}

		if on, _ := cmd.Flags().GetBool("subgroups"); on {
			wb.Subgroups, err = subgroup.Analyze(ps)
			if err != nil {
				return eris.Wrap(err, "subgroups")
			}
		}
		if on, _ := cmd.Flags().GetBool("tornado"); on {
			wb.Tornado, err = sensitivity.Tornado(ps)
			if err != nil {
				return eris.Wrap(err, "tornado")
			}
		}
		if on, _ := cmd.Flags().GetBool("psa"); on {
			wb.PSA, err = sensitivity.PSA(ctx, ps, sensitivity.PSAOptions{
				Iterations: cfg.PSA.Iterations,
				Seed:       cfg.PSA.Seed,
				Confidence: cfg.PSA.Confidence,
				Workers:    cfg.PSA.Workers,
			})
			if err != nil {
				return eris.Wrap(err, "psa")
			}
		}

		out, _ := cmd.Flags().GetString("out")
		if err := wb.Write(out); err != nil {
			return err
		}

		zap.L().Info("workbook written", zap.String("path", out))
		return nil
	},
}

func init() {
	addAnalysisFlags(exportCmd)
	exportCmd.Flags().String("out", "bim.xlsx", "output workbook path")
	exportCmd.Flags().Bool("subgroups", true, "include the subgroup sheet")
	exportCmd.Flags().Bool("tornado", true, "include the tornado sheet")
	exportCmd.Flags().Bool("psa", true, "include the PSA sheet")
	rootCmd.AddCommand(exportCmd)
}
