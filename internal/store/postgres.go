package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/bim-cli/internal/db"
	"github.com/sells-group/bim-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_analysis": `INSERT INTO analyses (id, country, scenario, status, params, result, error, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_analysis":    `SELECT id, country, scenario, status, params, result, error, created_at FROM analyses WHERE id = $1`,
	"delete_analysis": `DELETE FROM analyses WHERE id = $1`,
	"get_psa_samples": `SELECT iteration, budget_impact, pmpm, clamps FROM psa_samples WHERE analysis_id = $1 ORDER BY iteration`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; tests inject pgxmock here.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	country    TEXT NOT NULL,
	scenario   TEXT NOT NULL,
	status     TEXT NOT NULL,
	params     JSONB NOT NULL,
	result     JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS psa_samples (
	analysis_id   TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	iteration     INTEGER NOT NULL,
	budget_impact DOUBLE PRECISION NOT NULL,
	pmpm          DOUBLE PRECISION NOT NULL,
	clamps        JSONB,
	PRIMARY KEY (analysis_id, iteration)
);

CREATE INDEX IF NOT EXISTS idx_analyses_country ON analyses(country);
CREATE INDEX IF NOT EXISTS idx_analyses_scenario ON analyses(scenario);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, analysis *model.Analysis) error {
	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	var resultJSON []byte
	if analysis.Result != nil {
		b, err := json.Marshal(analysis.Result)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal result")
		}
		resultJSON = b
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, country, scenario, status, params, result, error, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		analysis.ID, analysis.Country, string(analysis.Scenario), string(analysis.Status),
		analysis.Params, resultJSON, analysis.Error, analysis.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert analysis")
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	var a model.Analysis
	var scenario, status string
	var paramsJSON []byte
	var resultJSON *[]byte
	var errMsg *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, country, scenario, status, params, result, error, created_at FROM analyses WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Country, &scenario, &status, &paramsJSON, &resultJSON, &errMsg, &a.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}

	a.Scenario = model.Scenario(scenario)
	a.Status = model.AnalysisStatus(status)
	a.Params = paramsJSON
	if errMsg != nil {
		a.Error = *errMsg
	}
	if resultJSON != nil {
		a.Result = &model.RunResult{}
		if err := json.Unmarshal(*resultJSON, a.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &a, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error) {
	query := `SELECT id, country, scenario, status, params, result, error, created_at FROM analyses WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Country != "" {
		query += fmt.Sprintf(` AND country = $%d`, argIdx)
		args = append(args, filter.Country)
		argIdx++
	}
	if filter.Scenario != "" {
		query += fmt.Sprintf(` AND scenario = $%d`, argIdx)
		args = append(args, string(filter.Scenario))
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var a model.Analysis
		var scenario, status string
		var paramsJSON []byte
		var resultJSON *[]byte
		var errMsg *string

		if err := rows.Scan(&a.ID, &a.Country, &scenario, &status, &paramsJSON, &resultJSON, &errMsg, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		a.Scenario = model.Scenario(scenario)
		a.Status = model.AnalysisStatus(status)
		a.Params = paramsJSON
		if errMsg != nil {
			a.Error = *errMsg
		}
		if resultJSON != nil {
			a.Result = &model.RunResult{}
			if err := json.Unmarshal(*resultJSON, a.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) DeleteAnalysis(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete analysis %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("analysis not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SavePSASamples(ctx context.Context, analysisID string, samples []model.PSASample) error {
	if len(samples) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(samples))
	for _, sample := range samples {
		var clampsJSON []byte
		if len(sample.Clamps) > 0 {
			b, err := json.Marshal(sample.Clamps)
			if err != nil {
				return eris.Wrap(err, "postgres: marshal clamps")
			}
			clampsJSON = b
		}
		rows = append(rows, []any{analysisID, sample.Iteration, sample.BudgetImpact, sample.PMPM, clampsJSON})
	}

	_, err := db.CopyFrom(ctx, s.pool, "psa_samples",
		[]string{"analysis_id", "iteration", "budget_impact", "pmpm", "clamps"}, rows)
	return eris.Wrapf(err, "postgres: save psa samples %s", analysisID)
}

func (s *PostgresStore) GetPSASamples(ctx context.Context, analysisID string) ([]model.PSASample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT iteration, budget_impact, pmpm, clamps FROM psa_samples WHERE analysis_id = $1 ORDER BY iteration`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get psa samples")
	}
	defer rows.Close()

	var samples []model.PSASample
	for rows.Next() {
		var sample model.PSASample
		var clampsJSON []byte
		if err := rows.Scan(&sample.Iteration, &sample.BudgetImpact, &sample.PMPM, &clampsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sample")
		}
		if len(clampsJSON) > 0 {
			if err := json.Unmarshal(clampsJSON, &sample.Clamps); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal clamps")
			}
		}
		samples = append(samples, sample)
	}
	return samples, eris.Wrap(rows.Err(), "postgres: get psa samples iterate")
}
