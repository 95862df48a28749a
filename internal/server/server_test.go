package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bim-cli/internal/config"
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	cfg := &config.Config{
		Analysis: config.AnalysisConfig{Country: "US", Scenario: "moderate"},
		PSA:      config.PSAConfig{Iterations: 50, Seed: 42, Confidence: 0.95, Workers: 2},
		Server:   config.ServerConfig{Port: 0},
	}
	return New(cfg, st)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCountries(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodGet, "/api/v1/countries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var countries []config.Country
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &countries))
	assert.Len(t, countries, 6)
	assert.Equal(t, "DE", countries[0].Code)
}

func TestParameters(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodGet, "/api/v1/parameters", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var parameters []struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parameters))
	assert.NotEmpty(t, parameters)
	for _, p := range parameters {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Label)
	}
}

func TestRunAndArchive(t *testing.T) {
	t.Parallel()

	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/run", map[string]any{
		"country":  "UK",
		"scenario": "optimistic",
		"save":     true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var runResp struct {
		AnalysisID string           `json:"analysis_id"`
		Result     *model.RunResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runResp))
	require.NotEmpty(t, runResp.AnalysisID)
	require.NotNil(t, runResp.Result)
	assert.Equal(t, "UK", runResp.Result.Country)
	assert.Equal(t, model.ScenarioOptimistic, runResp.Result.Scenario)
	assert.Greater(t, runResp.Result.TotalBudgetImpact, 0.0)

	// The archive serves the saved run back.
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analyses/"+runResp.AnalysisID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis model.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "UK", analysis.Country)
	require.NotNil(t, analysis.Result)
	assert.InDelta(t, runResp.Result.TotalBudgetImpact, analysis.Result.TotalBudgetImpact, 1e-6)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analyses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var analyses []model.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analyses))
	assert.Len(t, analyses, 1)

	rec = doJSON(t, srv, http.MethodDelete, "/api/v1/analyses/"+runResp.AnalysisID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/analyses/"+runResp.AnalysisID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunUnknownCountry(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodPost, "/api/v1/run", map[string]any{
		"country": "ZZ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown country")
}

func TestRunInvalidHorizon(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodPost, "/api/v1/run", map[string]any{
		"horizon_years": 99,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestScenarios(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodPost, "/api/v1/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[model.Scenario]*model.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Less(t, out[model.ScenarioConservative].TotalBudgetImpact,
		out[model.ScenarioOptimistic].TotalBudgetImpact)
}

func TestSubgroups(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodPost, "/api/v1/subgroups", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []model.SubgroupResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 10)
}

func TestTornado(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodPost, "/api/v1/tornado", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []model.TornadoRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.NotEmpty(t, rows)
}

func TestPSAEndpoint(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodPost, "/api/v1/psa", map[string]any{
		"iterations": 20,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var summary model.PSASummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 20, summary.Iterations)
	assert.Equal(t, int64(42), summary.Seed)
	assert.Greater(t, summary.Mean, 0.0)
}

func TestThresholdEndpoint(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, testServer(t), http.MethodPost, "/api/v1/threshold", map[string]any{
		"target": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Greater(t, out["price"], 0.0)
}

func TestArchiveWithoutStore(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Analysis: config.AnalysisConfig{Country: "US"},
		PSA:      config.PSAConfig{Iterations: 10, Seed: 1, Workers: 1},
	}
	srv := New(cfg, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/analyses", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
