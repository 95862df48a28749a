// Package engine implements the budget impact calculation pipeline: the
// population cascade, the year-by-year market displacement projection, cost
// aggregation, the clinical event model, and persistence adjustment.
package engine

import (
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// Eligible runs the prevalence cascade and returns the eligible patient
// count. The running product stays in floating point the whole way down and
// is truncated to an integer exactly once at the end; truncating at each
// step compounds across six factors and understates the pool.
func Eligible(pop params.Population) int {
	product := float64(pop.TotalPopulation) *
		pop.AdultFraction *
		pop.Prevalence *
		pop.ResistantFraction *
		pop.UncontrolledFraction *
		pop.SeekingFraction
	if product < 0 {
		return 0
	}
	return int(product)
}

// CascadeSteps returns the stepwise funnel for display. Each count is the
// untruncated running product floored at that step, so the final row always
// matches Eligible.
func CascadeSteps(pop params.Population) []model.CascadeStep {
	steps := []struct {
		name     string
		fraction float64
	}{
		{"Total plan population", 1.0},
		{"Adults 18+", pop.AdultFraction},
		{"With hypertension", pop.Prevalence},
		{"Resistant hypertension", pop.ResistantFraction},
		{"Uncontrolled on 3+ agents", pop.UncontrolledFraction},
		{"Seeking 4th-line treatment", pop.SeekingFraction},
	}

	out := make([]model.CascadeStep, 0, len(steps))
	running := float64(pop.TotalPopulation)
	for _, s := range steps {
		running *= s.fraction
		out = append(out, model.CascadeStep{
			Name:     s.name,
			Fraction: s.fraction,
			Count:    int(running),
		})
	}
	return out
}
