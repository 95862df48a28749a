package engine

import (
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// ExpectedEvents computes expected clinical events per treatment arm for
// one year: count x base rate x risk multiplier x (1 - RRR). Event types
// are independent; the model carries no competing-risk adjustment, matching
// the published model this implementation reproduces.
//
// riskMultiplier scales the base rate for subgroup analyses; pass 1.0 for
// the overall population.
func ExpectedEvents(
	counts map[model.Treatment]float64,
	ev params.Events,
	riskMultiplier map[model.EventType]float64,
) map[model.EventType]map[model.Treatment]float64 {
	out := make(map[model.EventType]map[model.Treatment]float64, len(model.EventTypes))
	for _, e := range model.EventTypes {
		mult := 1.0
		if riskMultiplier != nil {
			if m, ok := riskMultiplier[e]; ok {
				mult = m
			}
		}
		rate := ev.BaseRates[e] * mult

		row := make(map[model.Treatment]float64, len(model.Treatments))
		for _, t := range model.Treatments {
			row[t] = counts[t] * rate * (1 - ev.RRR[e][t])
		}
		out[e] = row
	}
	return out
}

// EventsAvoided nets current-world events against new-world events per
// event type. Positive values mean the new world sees fewer events.
func EventsAvoided(current, new map[model.EventType]map[model.Treatment]float64) map[model.EventType]float64 {
	out := make(map[model.EventType]float64, len(model.EventTypes))
	for _, e := range model.EventTypes {
		var curSum, newSum float64
		for _, t := range model.Treatments {
			curSum += current[e][t]
			newSum += new[e][t]
		}
		out[e] = curSum - newSum
	}
	return out
}

// EventOffsetSeries converts per-year events-avoided into per-year avoided
// cost. An event avoided in year y saves its acute cost in year y and its
// follow-up annual cost in every later year inside the horizon (the
// multi-year cost tail of a chronic event).
func EventOffsetSeries(avoidedByYear []map[model.EventType]float64, costs params.EventCosts) []float64 {
	horizon := len(avoidedByYear)
	out := make([]float64, horizon)

	for y := 0; y < horizon; y++ {
		for _, e := range model.EventTypes {
			out[y] += avoidedByYear[y][e] * costs.Acute[e]
		}
		// Follow-up tails from events avoided in earlier years.
		for prior := 0; prior < y; prior++ {
			for _, e := range model.EventTypes {
				out[y] += avoidedByYear[prior][e] * costs.FollowupAnnual[e]
			}
		}
	}
	return out
}
