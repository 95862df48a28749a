package engine

import (
	"fmt"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// ProjectShares computes the new-world treatment mix for one year. The new
// therapy takes exactly the uptake share; each incumbent loses
// uptake x displacement-weight from its baseline. Because the weights
// partition to 1, the incumbents collectively lose exactly the uptake and
// the output partition sums to 1 without any renormalization.
//
// If the uptake pushes an incumbent's share negative, that share is clamped
// to zero and the remaining incumbents are rescaled to (1 - uptake). The
// clamp is surfaced as a warning on the year, never silently absorbed: a
// clamped configuration usually means the displacement weights disagree
// with the baseline mix.
func ProjectShares(m params.Market, uptake float64) (map[model.Treatment]float64, []model.Warning) {
	shares := make(map[model.Treatment]float64, len(model.Treatments))
	shares[model.TreatmentNew] = uptake

	var warnings []model.Warning
	clamped := false
	var positiveSum float64

	for _, t := range model.Incumbents {
		s := m.BaselineShares[t] - uptake*m.DisplacementWeights[t]
		if s < 0 {
			warnings = append(warnings, model.Warning{
				Kind: model.WarnShareClamped,
				Message: fmt.Sprintf("share for %s clamped to 0 (baseline %.4f cannot absorb uptake %.4f at weight %.2f)",
					t, m.BaselineShares[t], uptake, m.DisplacementWeights[t]),
			})
			s = 0
			clamped = true
		}
		shares[t] = s
		positiveSum += s
	}

	// Rescale the surviving incumbents so the partition still sums to 1
	// while the new therapy keeps the uptake share exactly.
	if clamped && positiveSum > 0 {
		factor := (1 - uptake) / positiveSum
		for _, t := range model.Incumbents {
			shares[t] *= factor
		}
	}

	return shares, warnings
}

// BaselineShares returns the current-world mix: the baseline partition with
// a zero new-therapy arm.
func BaselineShares(m params.Market) map[model.Treatment]float64 {
	shares := make(map[model.Treatment]float64, len(model.Treatments))
	shares[model.TreatmentNew] = 0
	for _, t := range model.Incumbents {
		shares[t] = m.BaselineShares[t]
	}
	return shares
}
