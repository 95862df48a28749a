package main

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
	"github.com/sells-group/bim-cli/internal/store"
)

// initStore opens the configured store and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}

// saveRun archives a completed run with its input snapshot.
func saveRun(ctx context.Context, st store.Store, ps *params.ParameterSet, res *model.RunResult) (string, error) {
	raw, err := json.Marshal(ps)
	if err != nil {
		return "", eris.Wrap(err, "marshal params")
	}
	analysis := &model.Analysis{
		Country:  ps.Country,
		Scenario: res.Scenario,
		Status:   model.AnalysisStatusComplete,
		Params:   raw,
		Result:   res,
	}
	if err := st.CreateAnalysis(ctx, analysis); err != nil {
		return "", err
	}
	return analysis.ID, nil
}
