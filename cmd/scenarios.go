package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/bim-cli/internal/engine"
	"github.com/sells-group/bim-cli/internal/model"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Run all uptake scenarios side by side",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ps, err := analysisParams(cmd)
		if err != nil {
			return err
		}
		calc, err := engine.New(ps)
		if err != nil {
			return err
		}

		out := make(map[model.Scenario]*model.RunResult, len(model.Scenarios))
		for _, scenario := range model.Scenarios {
			res, err := calc.RunScenario(scenario)
			if err != nil {
				return err
			}
			out[scenario] = res
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	addAnalysisFlags(scenariosCmd)
	rootCmd.AddCommand(scenariosCmd)
}
