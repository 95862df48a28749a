package sensitivity

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/engine"
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// Tornado runs the configured one-way sweeps and returns rows sorted by
// swing, widest first. Each sweep perturbs exactly one parameter on a fresh
// clone; low and high bounds that land outside the parameter's valid range
// are clamped to it.
func Tornado(ps *params.ParameterSet) ([]model.TornadoRow, error) {
	rows := make([]model.TornadoRow, 0, len(ps.Sensitivity.Tornado))

	for _, spec := range ps.Sensitivity.Tornado {
		acc, err := params.Lookup(spec.Parameter)
		if err != nil {
			return nil, eris.Wrap(err, "sensitivity: tornado")
		}

		base := acc.Get(ps)
		low, _ := acc.Clamp(base * spec.LowMul)
		high, _ := acc.Clamp(base * spec.HighMul)

		impactLow, err := impactWith(ps, acc, low)
		if err != nil {
			return nil, eris.Wrapf(err, "sensitivity: tornado %s low", spec.Parameter)
		}
		impactHigh, err := impactWith(ps, acc, high)
		if err != nil {
			return nil, eris.Wrapf(err, "sensitivity: tornado %s high", spec.Parameter)
		}

		swing := impactHigh - impactLow
		if swing < 0 {
			swing = -swing
		}
		rows = append(rows, model.TornadoRow{
			Parameter:    spec.Parameter,
			Label:        acc.Label,
			BaseValue:    base,
			LowValue:     low,
			HighValue:    high,
			ImpactAtLow:  impactLow,
			ImpactAtHigh: impactHigh,
			Swing:        swing,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Swing > rows[j].Swing })

	zap.L().Debug("sensitivity: tornado complete", zap.Int("parameters", len(rows)))
	return rows, nil
}

// impactWith runs the pipeline on a clone with one parameter overridden and
// returns the horizon-total budget impact.
func impactWith(ps *params.ParameterSet, acc params.Accessor, value float64) (float64, error) {
	clone := ps.Clone()
	acc.Set(clone, value)

	calc, err := engine.New(clone)
	if err != nil {
		return 0, err
	}
	res, err := calc.Run()
	if err != nil {
		return 0, err
	}
	return res.TotalBudgetImpact, nil
}
