package engine

import (
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// WorldCost totals the annual direct cost of a treated population, given
// effective patient counts by treatment. Per-patient cost is drug +
// monitoring + office visits + adverse-event management, net of the blended
// avoided-event offset when offsets are enabled. No discounting is applied;
// budget impact analyses report undiscounted annual flows by convention.
func WorldCost(counts map[model.Treatment]float64, c params.Costs, includeOffsets bool) (float64, map[model.Treatment]float64) {
	byTreatment := make(map[model.Treatment]float64, len(counts))
	var total float64
	for _, t := range model.Treatments {
		cost := counts[t] * c.PerPatient(t, includeOffsets)
		byTreatment[t] = cost
		total += cost
	}
	return total, byTreatment
}

// WeightedBaselineCost returns the share-weighted per-patient annual cost
// of the current-world mix, used to express the new therapy's incremental
// cost per treated patient.
func WeightedBaselineCost(m params.Market, c params.Costs, includeOffsets bool) float64 {
	var weighted float64
	for _, t := range model.Incumbents {
		weighted += m.BaselineShares[t] * c.PerPatient(t, includeOffsets)
	}
	return weighted
}
