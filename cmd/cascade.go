package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/bim-cli/internal/engine"
	"github.com/sells-group/bim-cli/internal/model"
)

var cascadeCmd = &cobra.Command{
	Use:   "cascade",
	Short: "Show the population funnel for a country",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ps, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		formatCascade(os.Stdout, engine.CascadeSteps(ps.Population))
		return nil
	},
}

// formatCascade writes the funnel as a table, one filter per row.
func formatCascade(out io.Writer, steps []model.CascadeStep) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STEP\tFRACTION\tPATIENTS")
	_, _ = fmt.Fprintln(w, "----\t--------\t--------")
	for _, s := range steps {
		_, _ = fmt.Fprintf(w, "%s\t%.4f\t%s\n", s.Name, s.Fraction, formatCount(s.Count))
	}
	_ = w.Flush()
}

func init() {
	addAnalysisFlags(cascadeCmd)
	rootCmd.AddCommand(cascadeCmd)
}
