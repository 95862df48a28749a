package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/bim-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	country    TEXT NOT NULL,
	scenario   TEXT NOT NULL,
	status     TEXT NOT NULL,
	params     TEXT NOT NULL,
	result     TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS psa_samples (
	analysis_id   TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	iteration     INTEGER NOT NULL,
	budget_impact REAL NOT NULL,
	pmpm          REAL NOT NULL,
	clamps        TEXT,
	PRIMARY KEY (analysis_id, iteration)
);

CREATE INDEX IF NOT EXISTS idx_analyses_country ON analyses(country);
CREATE INDEX IF NOT EXISTS idx_analyses_scenario ON analyses(scenario);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, analysis *model.Analysis) error {
	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	var resultJSON any
	if analysis.Result != nil {
		b, err := json.Marshal(analysis.Result)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal result")
		}
		resultJSON = string(b)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, country, scenario, status, params, result, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		analysis.ID, analysis.Country, string(analysis.Scenario), string(analysis.Status),
		string(analysis.Params), resultJSON, analysis.Error, analysis.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert analysis")
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, country, scenario, status, params, result, error, created_at
		 FROM analyses WHERE id = ?`,
		id,
	)
	a, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("analysis not found: %s", id)
	}
	return a, err
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error) {
	query := `SELECT id, country, scenario, status, params, result, error, created_at
		 FROM analyses WHERE 1=1`
	var args []any

	if filter.Country != "" {
		query += ` AND country = ?`
		args = append(args, filter.Country)
	}
	if filter.Scenario != "" {
		query += ` AND scenario = ?`
		args = append(args, string(filter.Scenario))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) DeleteAnalysis(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete analysis %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("analysis not found: %s", id)
	}
	// SQLite enforces ON DELETE CASCADE only with foreign keys on; delete
	// the samples explicitly instead of relying on the pragma.
	_, err = s.db.ExecContext(ctx, `DELETE FROM psa_samples WHERE analysis_id = ?`, id)
	return eris.Wrapf(err, "sqlite: delete psa samples %s", id)
}

func (s *SQLiteStore) SavePSASamples(ctx context.Context, analysisID string, samples []model.PSASample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO psa_samples (analysis_id, iteration, budget_impact, pmpm, clamps)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare sample insert")
	}
	defer stmt.Close()

	for _, sample := range samples {
		var clampsJSON any
		if len(sample.Clamps) > 0 {
			b, err := json.Marshal(sample.Clamps)
			if err != nil {
				return eris.Wrap(err, "sqlite: marshal clamps")
			}
			clampsJSON = string(b)
		}
		if _, err := stmt.ExecContext(ctx,
			analysisID, sample.Iteration, sample.BudgetImpact, sample.PMPM, clampsJSON,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert sample %d", sample.Iteration)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit samples")
}

func (s *SQLiteStore) GetPSASamples(ctx context.Context, analysisID string) ([]model.PSASample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT iteration, budget_impact, pmpm, clamps FROM psa_samples
		 WHERE analysis_id = ? ORDER BY iteration`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get psa samples")
	}
	defer rows.Close()

	var samples []model.PSASample
	for rows.Next() {
		var sample model.PSASample
		var clampsJSON sql.NullString
		if err := rows.Scan(&sample.Iteration, &sample.BudgetImpact, &sample.PMPM, &clampsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sample")
		}
		if clampsJSON.Valid {
			if err := json.Unmarshal([]byte(clampsJSON.String), &sample.Clamps); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal clamps")
			}
		}
		samples = append(samples, sample)
	}
	return samples, eris.Wrap(rows.Err(), "sqlite: get psa samples iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scannable) (*model.Analysis, error) {
	var a model.Analysis
	var scenario, status, paramsJSON string
	var resultJSON, errMsg sql.NullString

	err := row.Scan(&a.ID, &a.Country, &scenario, &status, &paramsJSON, &resultJSON, &errMsg, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan analysis")
	}

	a.Scenario = model.Scenario(scenario)
	a.Status = model.AnalysisStatus(status)
	a.Params = []byte(paramsJSON)
	a.Error = errMsg.String
	if resultJSON.Valid {
		a.Result = &model.RunResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), a.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &a, nil
}
