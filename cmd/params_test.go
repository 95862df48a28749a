package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bim-cli/internal/config"
	"github.com/sells-group/bim-cli/internal/model"
)

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			Country:            "US",
			Scenario:           "moderate",
			HorizonYears:       5,
			IncludeOffsets:     true,
			IncludePersistence: true,
			IncludeEvents:      true,
		},
		PSA: config.PSAConfig{Iterations: 100, Seed: 42, Confidence: 0.95, Workers: 2},
	}
}

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addAnalysisFlags(cmd)
	return cmd
}

func TestAnalysisParams_Defaults(t *testing.T) {
	cfg = testConfig()

	ps, err := analysisParams(newFlagCommand())
	require.NoError(t, err)

	assert.Equal(t, "US", ps.Country)
	assert.Equal(t, model.ScenarioModerate, ps.Analysis.Scenario)
	assert.Equal(t, 5, ps.Analysis.HorizonYears)
	assert.True(t, ps.Analysis.IncludeOffsets)
	assert.True(t, ps.Analysis.IncludePersistence)
	assert.True(t, ps.Analysis.IncludeEvents)
}

func TestAnalysisParams_FlagOverrides(t *testing.T) {
	cfg = testConfig()

	cmd := newFlagCommand()
	require.NoError(t, cmd.Flags().Set("country", "DE"))
	require.NoError(t, cmd.Flags().Set("scenario", "optimistic"))
	require.NoError(t, cmd.Flags().Set("horizon", "3"))
	require.NoError(t, cmd.Flags().Set("no-offsets", "true"))
	require.NoError(t, cmd.Flags().Set("no-events", "true"))

	ps, err := analysisParams(cmd)
	require.NoError(t, err)

	assert.Equal(t, "DE", ps.Country)
	assert.Equal(t, "EUR", ps.Costs.Currency)
	assert.Equal(t, model.ScenarioOptimistic, ps.Analysis.Scenario)
	assert.Equal(t, 3, ps.Analysis.HorizonYears)
	assert.False(t, ps.Analysis.IncludeOffsets)
	assert.True(t, ps.Analysis.IncludePersistence)
	assert.False(t, ps.Analysis.IncludeEvents)
}

func TestAnalysisParams_UnknownCountry(t *testing.T) {
	cfg = testConfig()

	cmd := newFlagCommand()
	require.NoError(t, cmd.Flags().Set("country", "XX"))

	_, err := analysisParams(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown country")
}

func TestBaseRun(t *testing.T) {
	cfg = testConfig()

	ps, err := analysisParams(newFlagCommand())
	require.NoError(t, err)

	res, err := baseRun(ps)
	require.NoError(t, err)
	assert.Equal(t, "US", res.Country)
	assert.Len(t, res.Years, 5)
	assert.Greater(t, res.TotalBudgetImpact, 0.0)
}
