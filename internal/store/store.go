package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bim-cli/internal/config"
	"github.com/sells-group/bim-cli/internal/model"
)

// AnalysisFilter specifies criteria for listing stored analyses.
type AnalysisFilter struct {
	Country  string               `json:"country,omitempty"`
	Scenario model.Scenario       `json:"scenario,omitempty"`
	Status   model.AnalysisStatus `json:"status,omitempty"`
	Limit    int                  `json:"limit,omitempty"`
	Offset   int                  `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis runs.
type Store interface {
	// Analyses
	CreateAnalysis(ctx context.Context, analysis *model.Analysis) error
	GetAnalysis(ctx context.Context, id string) (*model.Analysis, error)
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error)
	DeleteAnalysis(ctx context.Context, id string) error

	// PSA samples
	SavePSASamples(ctx context.Context, analysisID string, samples []model.PSASample) error
	GetPSASamples(ctx context.Context, analysisID string) ([]model.PSASample, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open builds the configured store and runs migrations.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		s, err = NewSQLite(cfg.Path)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
