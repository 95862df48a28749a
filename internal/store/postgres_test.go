package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bim-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_CreateAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs(pgxmock.AnyArg(), "US", "moderate", "complete",
			pgxmock.AnyArg(), pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	a := &model.Analysis{
		Country:  "US",
		Scenario: model.ScenarioModerate,
		Status:   model.AnalysisStatusComplete,
		Params:   []byte(`{}`),
		Result:   &model.RunResult{Eligible: 11_232},
	}
	require.NoError(t, s.CreateAnalysis(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Now().UTC()
	result := []byte(`{"eligible_patients":11232,"total_budget_impact":1000000}`)
	rows := pgxmock.NewRows([]string{"id", "country", "scenario", "status", "params", "result", "error", "created_at"}).
		AddRow("abc-123", "US", "moderate", "complete", []byte(`{}`), &result, (*string)(nil), created)

	mock.ExpectQuery(`SELECT id, country, scenario, status, params, result, error, created_at FROM analyses WHERE id = \$1`).
		WithArgs("abc-123").
		WillReturnRows(rows)

	got, err := s.GetAnalysis(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", got.ID)
	assert.Equal(t, model.ScenarioModerate, got.Scenario)
	require.NotNil(t, got.Result)
	assert.Equal(t, 11_232, got.Result.Eligible)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAnalysis_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, country, scenario, status, params, result, error, created_at FROM analyses WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAnalysis(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get analysis")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAnalyses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "country", "scenario", "status", "params", "result", "error", "created_at"}).
		AddRow("a1", "US", "moderate", "complete", []byte(`{}`), (*[]byte)(nil), (*string)(nil), created).
		AddRow("a2", "US", "optimistic", "complete", []byte(`{}`), (*[]byte)(nil), (*string)(nil), created)

	mock.ExpectQuery(`SELECT id, country, scenario, status, params, result, error, created_at FROM analyses WHERE true AND country = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("US", 100).
		WillReturnRows(rows)

	got, err := s.ListAnalyses(context.Background(), AnalysisFilter{Country: "US"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Nil(t, got[0].Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteAnalysis_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM analyses WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteAnalysis(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SavePSASamples_Copy(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"psa_samples"},
		[]string{"analysis_id", "iteration", "budget_impact", "pmpm", "clamps"}).
		WillReturnResult(2)

	samples := []model.PSASample{
		{Iteration: 0, BudgetImpact: 1_000_000, PMPM: 0.08},
		{Iteration: 1, BudgetImpact: 1_050_000, PMPM: 0.085},
	}
	require.NoError(t, s.SavePSASamples(context.Background(), "abc-123", samples))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SavePSASamples_EmptyNoop(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	require.NoError(t, s.SavePSASamples(context.Background(), "abc-123", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
