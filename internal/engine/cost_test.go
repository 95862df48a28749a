package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

func TestWorldCost(t *testing.T) {
	t.Parallel()

	c := params.Default().Costs
	counts := map[model.Treatment]float64{
		model.TreatmentNew:   100,
		model.TreatmentSpiro: 50,
	}

	// Per-patient net of offset: new 5,380, spiro 220.
	total, byTreatment := WorldCost(counts, c, true)
	assert.InDelta(t, 100*5380+50*220, total, 1e-9)
	assert.InDelta(t, 538_000, byTreatment[model.TreatmentNew], 1e-9)
	assert.InDelta(t, 11_000, byTreatment[model.TreatmentSpiro], 1e-9)
	assert.Zero(t, byTreatment[model.TreatmentNone])

	// Gross: new 6,580, spiro 1,020.
	gross, _ := WorldCost(counts, c, false)
	assert.InDelta(t, 100*6580+50*1020, gross, 1e-9)
}

func TestWeightedBaselineCost(t *testing.T) {
	t.Parallel()

	ps := params.Default()

	// 0.60*220 + 0.15*1,940 + 0.25*420 with offsets netted.
	assert.InDelta(t, 528.0, WeightedBaselineCost(ps.Market, ps.Costs, true), 1e-9)

	// 0.60*1,020 + 0.15*2,540 + 0.25*420 gross.
	assert.InDelta(t, 1098.0, WeightedBaselineCost(ps.Market, ps.Costs, false), 1e-9)
}
