package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

func TestSurvivalFraction(t *testing.T) {
	t.Parallel()

	curve := params.WeibullCurve{Shape: 0.80, Scale: 0.022}

	assert.Equal(t, 1.0, SurvivalFraction(curve, 0))
	assert.Equal(t, 1.0, SurvivalFraction(curve, -3))

	// Strictly decreasing, bounded in (0,1].
	prev := 1.0
	for _, m := range []float64{1, 6, 12, 24, 60, 120} {
		s := SurvivalFraction(curve, m)
		assert.Greater(t, s, 0.0)
		assert.Less(t, s, prev)
		prev = s
	}

	// Calibration check: roughly 15% of a cohort is off therapy at 12
	// months.
	assert.InDelta(t, 0.85, SurvivalFraction(curve, 12), 0.02)
}

func TestEffectiveSeries(t *testing.T) {
	t.Parallel()

	curve := params.WeibullCurve{Shape: 0.80, Scale: 0.022}
	raw := []float64{1_000, 2_000, 3_000, 3_500, 4_000}

	eff := EffectiveSeries(raw, curve)
	require.Len(t, eff, len(raw))

	for y := range eff {
		assert.GreaterOrEqual(t, eff[y], 0.0)
		// Every cohort is at least six months old, so attrition always
		// shows.
		assert.Less(t, eff[y], raw[y])
	}
}

func TestEffectiveSeriesDecliningStock(t *testing.T) {
	t.Parallel()

	// A shrinking raw stock forms no new cohorts; the adjusted count stays
	// capped at the raw stock and never goes negative.
	curve := params.WeibullCurve{Shape: 0.85, Scale: 0.035}
	raw := []float64{1_000, 800, 600, 400, 200}

	eff := EffectiveSeries(raw, curve)
	for y := range eff {
		assert.GreaterOrEqual(t, eff[y], 0.0)
		assert.LessOrEqual(t, eff[y], raw[y])
	}
}

func TestAdjustWorld(t *testing.T) {
	t.Parallel()

	ps := params.Default()
	byYear := []map[model.Treatment]float64{
		{
			model.TreatmentNew:   1_000,
			model.TreatmentSpiro: 5_000,
			model.TreatmentNone:  2_000,
		},
		{
			model.TreatmentNew:   2_000,
			model.TreatmentSpiro: 4_500,
			model.TreatmentNone:  2_000,
		},
	}

	adjusted := AdjustWorld(byYear, ps.Persistence)
	require.Len(t, adjusted, 2)

	for y := range adjusted {
		// Untreated patients have nothing to discontinue.
		assert.Equal(t, byYear[y][model.TreatmentNone], adjusted[y][model.TreatmentNone])

		for _, tr := range model.Treatments {
			assert.GreaterOrEqual(t, adjusted[y][tr], 0.0)
			assert.LessOrEqual(t, adjusted[y][tr], byYear[y][tr])
		}
	}

	// Treated arms lose patients.
	assert.Less(t, adjusted[0][model.TreatmentNew], byYear[0][model.TreatmentNew])
	assert.Less(t, adjusted[1][model.TreatmentSpiro], byYear[1][model.TreatmentSpiro])
}
