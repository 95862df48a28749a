package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/bim-cli/internal/config"
	"github.com/sells-group/bim-cli/internal/engine"
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// addAnalysisFlags registers the input flags shared by every calculation
// command. Unset flags fall back to the loaded config.
func addAnalysisFlags(cmd *cobra.Command) {
	cmd.Flags().String("country", "", "country preset (US, UK, DE, FR, IT, ES)")
	cmd.Flags().String("scenario", "", "uptake scenario (conservative, moderate, optimistic)")
	cmd.Flags().Int("horizon", 0, "analysis horizon in years")
	cmd.Flags().Bool("no-offsets", false, "exclude the blended avoided-event cost offset")
	cmd.Flags().Bool("no-persistence", false, "skip the persistence adjustment")
	cmd.Flags().Bool("no-events", false, "skip the clinical event model")
}

// analysisParams builds the parameter set for a command invocation from the
// country preset, the config defaults, and any flag overrides.
func analysisParams(cmd *cobra.Command) (*params.ParameterSet, error) {
	country, _ := cmd.Flags().GetString("country")
	if country == "" {
		country = cfg.Analysis.Country
	}
	preset, err := config.CountryByCode(country)
	if err != nil {
		return nil, err
	}

	ps := params.ForCountry(preset)

	if cfg.Analysis.Scenario != "" {
		ps.Analysis.Scenario = model.Scenario(cfg.Analysis.Scenario)
	}
	if scenario, _ := cmd.Flags().GetString("scenario"); scenario != "" {
		ps.Analysis.Scenario = model.Scenario(scenario)
	}
	if cfg.Analysis.HorizonYears > 0 {
		ps.Analysis.HorizonYears = cfg.Analysis.HorizonYears
	}
	if horizon, _ := cmd.Flags().GetInt("horizon"); horizon > 0 {
		ps.Analysis.HorizonYears = horizon
	}

	ps.Analysis.IncludeOffsets = cfg.Analysis.IncludeOffsets
	ps.Analysis.IncludePersistence = cfg.Analysis.IncludePersistence
	ps.Analysis.IncludeEvents = cfg.Analysis.IncludeEvents
	if off, _ := cmd.Flags().GetBool("no-offsets"); off {
		ps.Analysis.IncludeOffsets = false
	}
	if off, _ := cmd.Flags().GetBool("no-persistence"); off {
		ps.Analysis.IncludePersistence = false
	}
	if off, _ := cmd.Flags().GetBool("no-events"); off {
		ps.Analysis.IncludeEvents = false
	}

	return ps, nil
}

// baseRun executes the deterministic pipeline for the given inputs.
func baseRun(ps *params.ParameterSet) (*model.RunResult, error) {
	calc, err := engine.New(ps)
	if err != nil {
		return nil, err
	}
	return calc.Run()
}
