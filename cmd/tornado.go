package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/sensitivity"
)

var tornadoCmd = &cobra.Command{
	Use:   "tornado",
	Short: "One-way sensitivity sweep over the key parameters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ps, err := analysisParams(cmd)
		if err != nil {
			return err
		}

		rows, err := sensitivity.Tornado(ps)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}

		formatTornado(os.Stdout, ps.Costs.Currency, rows)
		return nil
	},
}

// formatTornado writes the sweep sorted widest swing first.
func formatTornado(out io.Writer, currency string, rows []model.TornadoRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PARAMETER\tLOW\tHIGH\tIMPACT_AT_LOW\tIMPACT_AT_HIGH\tSWING")
	_, _ = fmt.Fprintln(w, "---------\t---\t----\t-------------\t--------------\t-----")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%s\t%s\t%s\n",
			r.Label,
			r.LowValue,
			r.HighValue,
			formatMoney(currency, r.ImpactAtLow),
			formatMoney(currency, r.ImpactAtHigh),
			formatMoney(currency, r.Swing),
		)
	}
	_ = w.Flush()
}

func init() {
	addAnalysisFlags(tornadoCmd)
	tornadoCmd.Flags().Bool("json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(tornadoCmd)
}
