package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bim-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testAnalysis(country string, scenario model.Scenario) *model.Analysis {
	return &model.Analysis{
		Country:  country,
		Scenario: scenario,
		Status:   model.AnalysisStatusComplete,
		Params:   []byte(`{"country":"` + country + `"}`),
		Result: &model.RunResult{
			Scenario:          scenario,
			Country:           country,
			Horizon:           5,
			Eligible:          11_232,
			TotalBudgetImpact: 1_234_567.89,
		},
	}
}

func TestSQLite_Analysis_CreateAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := testAnalysis("US", model.ScenarioModerate)
	require.NoError(t, st.CreateAnalysis(ctx, a))
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := st.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "US", got.Country)
	assert.Equal(t, model.ScenarioModerate, got.Scenario)
	assert.Equal(t, model.AnalysisStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 11_232, got.Result.Eligible)
	assert.InDelta(t, 1_234_567.89, got.Result.TotalBudgetImpact, 1e-6)
	assert.JSONEq(t, string(a.Params), string(got.Params))
}

func TestSQLite_Analysis_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetAnalysis(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_Analysis_FailedRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := &model.Analysis{
		Country:  "UK",
		Scenario: model.ScenarioConservative,
		Status:   model.AnalysisStatusFailed,
		Params:   []byte(`{}`),
		Error:    "horizon must be positive",
	}
	require.NoError(t, st.CreateAnalysis(ctx, a))

	got, err := st.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisStatusFailed, got.Status)
	assert.Equal(t, "horizon must be positive", got.Error)
	assert.Nil(t, got.Result)
}

func TestSQLite_Analysis_ListFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateAnalysis(ctx, testAnalysis("US", model.ScenarioModerate)))
	require.NoError(t, st.CreateAnalysis(ctx, testAnalysis("US", model.ScenarioOptimistic)))
	require.NoError(t, st.CreateAnalysis(ctx, testAnalysis("DE", model.ScenarioModerate)))

	all, err := st.ListAnalyses(ctx, AnalysisFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	us, err := st.ListAnalyses(ctx, AnalysisFilter{Country: "US"})
	require.NoError(t, err)
	assert.Len(t, us, 2)

	moderate, err := st.ListAnalyses(ctx, AnalysisFilter{Scenario: model.ScenarioModerate})
	require.NoError(t, err)
	assert.Len(t, moderate, 2)

	usModerate, err := st.ListAnalyses(ctx, AnalysisFilter{Country: "US", Scenario: model.ScenarioModerate})
	require.NoError(t, err)
	assert.Len(t, usModerate, 1)

	limited, err := st.ListAnalyses(ctx, AnalysisFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLite_Analysis_Delete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := testAnalysis("FR", model.ScenarioModerate)
	require.NoError(t, st.CreateAnalysis(ctx, a))
	require.NoError(t, st.SavePSASamples(ctx, a.ID, []model.PSASample{
		{Iteration: 0, BudgetImpact: 100},
	}))

	require.NoError(t, st.DeleteAnalysis(ctx, a.ID))

	_, err := st.GetAnalysis(ctx, a.ID)
	assert.Error(t, err)

	samples, err := st.GetPSASamples(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, samples)

	err = st.DeleteAnalysis(ctx, a.ID)
	assert.Error(t, err)
}

func TestSQLite_PSASamples_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := testAnalysis("US", model.ScenarioModerate)
	require.NoError(t, st.CreateAnalysis(ctx, a))

	samples := []model.PSASample{
		{Iteration: 0, BudgetImpact: 1_000_000, PMPM: 0.08},
		{
			Iteration: 1, BudgetImpact: 1_100_000, PMPM: 0.09,
			Clamps: []model.Warning{{Kind: model.WarnDrawClamped, Message: "draw clamped"}},
		},
		{Iteration: 2, BudgetImpact: 950_000, PMPM: 0.07},
	}
	require.NoError(t, st.SavePSASamples(ctx, a.ID, samples))

	got, err := st.GetPSASamples(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, samples[0], got[0])
	assert.Equal(t, samples[1], got[1])
	require.Len(t, got[1].Clamps, 1)
	assert.Equal(t, model.WarnDrawClamped, got[1].Clamps[0].Kind)
}

func TestSQLite_PSASamples_EmptyNoop(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.SavePSASamples(context.Background(), "any", nil))
}

func TestSQLite_Analysis_ParamsSurviveRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	params := map[string]any{
		"country": "ES",
		"population": map[string]any{
			"total_population": 47_000_000,
		},
	}
	raw, err := json.Marshal(params)
	require.NoError(t, err)

	a := &model.Analysis{
		Country:  "ES",
		Scenario: model.ScenarioOptimistic,
		Status:   model.AnalysisStatusComplete,
		Params:   raw,
	}
	require.NoError(t, st.CreateAnalysis(ctx, a))

	got, err := st.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got.Params))
}
