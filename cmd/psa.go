package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/sensitivity"
)

var psaCmd = &cobra.Command{
	Use:   "psa",
	Short: "Probabilistic sensitivity analysis (Monte-Carlo)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ps, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		opts := sensitivity.PSAOptions{
			Iterations: cfg.PSA.Iterations,
			Seed:       cfg.PSA.Seed,
			Confidence: cfg.PSA.Confidence,
			Workers:    cfg.PSA.Workers,
		}
		if n, _ := cmd.Flags().GetInt("iterations"); n > 0 {
			opts.Iterations = n
		}
		if cmd.Flags().Changed("seed") {
			opts.Seed, _ = cmd.Flags().GetInt64("seed")
		}
		if c, _ := cmd.Flags().GetFloat64("confidence"); c > 0 {
			opts.Confidence = c
		}
		if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
			opts.Workers = n
		}
		save, _ := cmd.Flags().GetBool("save")
		keep, _ := cmd.Flags().GetBool("samples")
		opts.KeepSamples = keep || save

		summary, err := sensitivity.PSA(ctx, ps, opts)
		if err != nil {
			return eris.Wrap(err, "psa")
		}

		if save {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			// Archive a base run alongside the draws so the samples have
			// an analysis to hang off.
			baseRes, err := baseRun(ps)
			if err != nil {
				return err
			}
			id, err := saveRun(ctx, st, ps, baseRes)
			if err != nil {
				return eris.Wrap(err, "save analysis")
			}
			if err := st.SavePSASamples(ctx, id, summary.Samples); err != nil {
				return eris.Wrap(err, "save psa samples")
			}
			zap.L().Info("psa saved",
				zap.String("analysis_id", id),
				zap.Int("samples", len(summary.Samples)),
			)
			if !keep {
				summary.Samples = nil
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	addAnalysisFlags(psaCmd)
	psaCmd.Flags().Int("iterations", 0, "number of Monte-Carlo draws (default from config)")
	psaCmd.Flags().Int64("seed", 0, "random seed")
	psaCmd.Flags().Float64("confidence", 0, "two-sided interval width, e.g. 0.95")
	psaCmd.Flags().Int("workers", 0, "parallel workers")
	psaCmd.Flags().Bool("samples", false, "include every draw in the output")
	psaCmd.Flags().Bool("save", false, "persist the summary and draws in the archive")
	rootCmd.AddCommand(psaCmd)
}
