package engine

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// Calculator runs the full pipeline for one ParameterSet. A calculator is
// cheap to build and single-use friendly: every Run is a pure function of
// the snapshot it was constructed with, so concurrent runs over separate
// clones are safe.
type Calculator struct {
	ps *params.ParameterSet

	// riskMultipliers scales event base rates (subgroup analyses); nil
	// means the overall population.
	riskMultipliers map[model.EventType]float64
}

// New validates the snapshot and returns a calculator over it. Validation
// failures are fatal for the run; no partial results are produced.
func New(ps *params.ParameterSet) (*Calculator, error) {
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{ps: ps}, nil
}

// NewForSubgroup returns a calculator whose event rates are scaled by the
// given per-event multipliers. The snapshot must already be validated.
func NewForSubgroup(ps *params.ParameterSet, riskMultipliers map[model.EventType]float64) (*Calculator, error) {
	c, err := New(ps)
	if err != nil {
		return nil, err
	}
	c.riskMultipliers = riskMultipliers
	return c, nil
}

// Run executes the cascade-to-aggregation pipeline for the configured
// scenario and horizon and returns an immutable RunResult.
func (c *Calculator) Run() (*model.RunResult, error) {
	return c.RunScenario(c.ps.Analysis.Scenario)
}

// RunScenario runs the pipeline with an explicit uptake scenario,
// overriding the configured one.
func (c *Calculator) RunScenario(scenario model.Scenario) (*model.RunResult, error) {
	ps := c.ps
	if _, ok := ps.Market.UptakeCurves[scenario]; !ok {
		return nil, eris.Errorf("engine: no uptake curve for scenario %q", scenario)
	}

	horizon := ps.Analysis.HorizonYears
	eligible := Eligible(ps.Population)
	baseline := BaselineShares(ps.Market)

	// Project raw patient stocks for every year up front; persistence
	// needs the whole series to build initiation cohorts.
	newShares := make([]map[model.Treatment]float64, horizon)
	yearWarnings := make([][]model.Warning, horizon)
	rawNew := make([]map[model.Treatment]float64, horizon)
	rawCur := make([]map[model.Treatment]float64, horizon)

	for y := 0; y < horizon; y++ {
		uptake := ps.Market.Uptake(scenario, y+1)
		shares, warns := ProjectShares(ps.Market, uptake)
		newShares[y] = shares
		yearWarnings[y] = warns

		rawNew[y] = make(map[model.Treatment]float64, len(model.Treatments))
		rawCur[y] = make(map[model.Treatment]float64, len(model.Treatments))
		for _, t := range model.Treatments {
			rawNew[y][t] = float64(eligible) * shares[t]
			rawCur[y][t] = float64(eligible) * baseline[t]
		}
	}

	effNew, effCur := rawNew, rawCur
	if ps.Analysis.IncludePersistence {
		effNew = AdjustWorld(rawNew, ps.Persistence)
		effCur = AdjustWorld(rawCur, ps.Persistence)
	}

	// Clinical events per year, both worlds.
	avoidedByYear := make([]map[model.EventType]float64, horizon)
	eventsNew := make([]map[model.EventType]map[model.Treatment]float64, horizon)
	eventsCur := make([]map[model.EventType]map[model.Treatment]float64, horizon)
	if ps.Analysis.IncludeEvents {
		for y := 0; y < horizon; y++ {
			eventsNew[y] = ExpectedEvents(effNew[y], ps.Events, c.riskMultipliers)
			eventsCur[y] = ExpectedEvents(effCur[y], ps.Events, c.riskMultipliers)
			avoidedByYear[y] = EventsAvoided(eventsCur[y], eventsNew[y])
		}
	} else {
		for y := 0; y < horizon; y++ {
			avoidedByYear[y] = make(map[model.EventType]float64)
		}
	}
	offsets := EventOffsetSeries(avoidedByYear, ps.EventCosts)

	result := &model.RunResult{
		Scenario: scenario,
		Country:  ps.Country,
		Horizon:  horizon,
		Eligible: eligible,
		Cascade:  CascadeSteps(ps.Population),
		Years:    make([]model.YearResult, 0, horizon),
	}

	for y := 0; y < horizon; y++ {
		costNew, costByTreatment := WorldCost(effNew[y], ps.Costs, ps.Analysis.IncludeOffsets)
		costCur, _ := WorldCost(effCur[y], ps.Costs, ps.Analysis.IncludeOffsets)

		impact := costNew - costCur
		pmpm := 0.0
		if ps.Population.TotalPopulation > 0 {
			pmpm = impact / float64(ps.Population.TotalPopulation) / 12
		}

		yr := model.YearResult{
			Year:                 y + 1,
			NewWorldShares:       newShares[y],
			NewWorldPatients:     truncateCounts(effNew[y]),
			CurrentWorldPatients: truncateCounts(effCur[y]),
			NewWorldCosts:        costByTreatment,
			CostNewWorld:         costNew,
			CostCurrentWorld:     costCur,
			EventOffset:          offsets[y],
			BudgetImpact:         impact,
			PMPM:                 pmpm,
			Warnings:             yearWarnings[y],
		}
		if ps.Analysis.IncludeEvents {
			yr.NewWorldEvents = eventsNew[y]
			yr.CurrentWorldEvents = eventsCur[y]
			yr.EventsAvoided = avoidedByYear[y]
		}
		result.Years = append(result.Years, yr)
		result.Warnings = append(result.Warnings, yearWarnings[y]...)

		result.TotalBudgetImpact += impact
		result.TotalEventOffset += offsets[y]
		for _, avoided := range avoidedByYear[y] {
			result.TotalEventsAvoided += avoided
		}
	}

	result.AverageAnnualImpact = result.TotalBudgetImpact / float64(horizon)
	result.CostPerNewPatient = ps.Costs.PerPatient(model.TreatmentNew, ps.Analysis.IncludeOffsets)
	result.IncrementalCostPerNewPatient = result.CostPerNewPatient -
		WeightedBaselineCost(ps.Market, ps.Costs, ps.Analysis.IncludeOffsets)

	zap.L().Debug("engine: run complete",
		zap.String("scenario", string(scenario)),
		zap.String("country", ps.Country),
		zap.Int("eligible", eligible),
		zap.Float64("total_impact", result.TotalBudgetImpact),
	)

	return result, nil
}

// truncateCounts converts effective float counts to reported integers,
// truncating and clamping at zero so floating-point drift never reports a
// negative patient.
func truncateCounts(counts map[model.Treatment]float64) map[model.Treatment]int {
	out := make(map[model.Treatment]int, len(counts))
	for t, v := range counts {
		if v < 0 {
			v = 0
		}
		out[t] = int(v)
	}
	return out
}
