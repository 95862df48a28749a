package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the analysis archive",
	Long:  "Commands for listing, viewing, and deleting saved analysis runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		country, _ := cmd.Flags().GetString("country")
		scenario, _ := cmd.Flags().GetString("scenario")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.AnalysisFilter{
			Country:  country,
			Scenario: model.Scenario(scenario),
			Status:   model.AnalysisStatus(status),
			Limit:    limit,
		}

		analyses, err := st.ListAnalyses(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(analyses) == 0 {
			fmt.Fprintln(os.Stderr, "No saved analyses.")
			return nil
		}

		formatAnalysesList(os.Stdout, analyses)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <analysis-id>",
	Short: "Show a saved analysis in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		analysis, err := st.GetAnalysis(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

// -- runs delete --

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <analysis-id>",
	Short: "Delete a saved analysis and its PSA samples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteAnalysis(ctx, args[0]); err != nil {
			return eris.Wrap(err, "runs delete")
		}

		fmt.Fprintf(os.Stdout, "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("country", "", "filter by country code")
	runsListCmd.Flags().String("scenario", "", "filter by scenario")
	runsListCmd.Flags().String("status", "", "filter by status (complete, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of analyses to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatAnalysesList writes a tabular list of saved analyses to w.
func formatAnalysesList(out io.Writer, analyses []model.Analysis) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOUNTRY\tSCENARIO\tSTATUS\tTOTAL_IMPACT\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t------\t------------\t-------")

	for _, a := range analyses {
		impact := ""
		if a.Result != nil {
			impact = formatMoney("", a.Result.TotalBudgetImpact)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(a.ID),
			a.Country,
			a.Scenario,
			a.Status,
			impact,
			a.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
