package model

// WarningKind classifies a non-fatal annotation attached to a result.
type WarningKind string

const (
	// WarnShareClamped means an incumbent share went negative under
	// displacement and was clamped to zero, with the remaining incumbent
	// shares renormalized.
	WarnShareClamped WarningKind = "share_clamped"
	// WarnDrawClamped means a PSA draw fell outside the parameter's valid
	// range and was clamped to the nearest bound.
	WarnDrawClamped WarningKind = "draw_clamped"
)

// Warning records a non-fatal condition encountered during a calculation.
// Warnings never abort a run; they travel with the result that produced them.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// CascadeStep is one filter in the population funnel.
type CascadeStep struct {
	Name     string  `json:"name"`
	Fraction float64 `json:"fraction"` // filter applied at this step (1.0 for the top row)
	Count    int     `json:"count"`    // patients remaining after the step
}

// YearResult holds everything computed for a single analysis year.
// It is immutable once the calculator returns it.
type YearResult struct {
	Year int `json:"year"`

	// Market shares in the world where the new therapy launched.
	NewWorldShares map[Treatment]float64 `json:"new_world_shares"`

	// Patient counts by treatment, both worlds. Current world has no
	// new-therapy arm; its count is always zero there.
	NewWorldPatients     map[Treatment]int `json:"new_world_patients"`
	CurrentWorldPatients map[Treatment]int `json:"current_world_patients"`

	// Annual direct cost by treatment, new world.
	NewWorldCosts map[Treatment]float64 `json:"new_world_costs"`

	CostNewWorld     float64 `json:"cost_new_world"`
	CostCurrentWorld float64 `json:"cost_current_world"`

	// Expected events by type and treatment, both worlds.
	NewWorldEvents     map[EventType]map[Treatment]float64 `json:"new_world_events,omitempty"`
	CurrentWorldEvents map[EventType]map[Treatment]float64 `json:"current_world_events,omitempty"`

	// EventsAvoided is current-world minus new-world events, per type.
	EventsAvoided map[EventType]float64 `json:"events_avoided,omitempty"`
	// EventOffset is the cost avoided through events this year, including
	// follow-up tails from events avoided in earlier years.
	EventOffset float64 `json:"event_offset"`

	// BudgetImpact is new-world minus current-world cost. The event offset
	// is reported alongside, not netted in, so the blended per-patient
	// offset inside the cost totals is never double-counted.
	BudgetImpact float64 `json:"budget_impact"`
	// PMPM is the year's budget impact per plan member per month.
	PMPM float64 `json:"pmpm"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// RunResult is the outcome of one full pipeline invocation. The YearResults
// slice has exactly the configured horizon length.
type RunResult struct {
	Scenario Scenario      `json:"scenario"`
	Country  string        `json:"country"`
	Horizon  int           `json:"horizon_years"`
	Eligible int           `json:"eligible_patients"`
	Cascade  []CascadeStep `json:"cascade"`

	Years []YearResult `json:"years"`

	TotalBudgetImpact   float64 `json:"total_budget_impact"`
	AverageAnnualImpact float64 `json:"average_annual_impact"`
	TotalEventsAvoided  float64 `json:"total_events_avoided"`
	TotalEventOffset    float64 `json:"total_event_offset"`

	// CostPerNewPatient is the annual per-patient cost of the new therapy;
	// IncrementalCostPerNewPatient nets out the share-weighted cost of the
	// displaced mix.
	CostPerNewPatient            float64 `json:"cost_per_new_patient"`
	IncrementalCostPerNewPatient float64 `json:"incremental_cost_per_new_patient"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// YearlyImpacts returns the per-year budget impact series.
func (r *RunResult) YearlyImpacts() []float64 {
	out := make([]float64, len(r.Years))
	for i, y := range r.Years {
		out[i] = y.BudgetImpact
	}
	return out
}

// CumulativeImpacts returns the running total of budget impact by year.
func (r *RunResult) CumulativeImpacts() []float64 {
	out := make([]float64, len(r.Years))
	var total float64
	for i, y := range r.Years {
		total += y.BudgetImpact
		out[i] = total
	}
	return out
}

// SubgroupResult is a RunResult scoped to one category of a stratification
// dimension.
type SubgroupResult struct {
	Dimension  SubgroupDimension `json:"dimension"`
	Category   string            `json:"category"`
	Label      string            `json:"label"`
	Proportion float64           `json:"proportion"`
	Patients   int               `json:"patients"`

	Result *RunResult `json:"result"`

	ImpactPerPatient float64 `json:"impact_per_patient"`
}

// TornadoRow is one swept parameter in a one-way sensitivity analysis.
type TornadoRow struct {
	Parameter    string  `json:"parameter"`
	Label        string  `json:"label"`
	BaseValue    float64 `json:"base_value"`
	LowValue     float64 `json:"low_value"`
	HighValue    float64 `json:"high_value"`
	ImpactAtLow  float64 `json:"impact_at_low"`
	ImpactAtHigh float64 `json:"impact_at_high"`
	Swing        float64 `json:"swing"` // |ImpactAtHigh - ImpactAtLow|
}

// PSASample is a single Monte-Carlo draw and its scalar outcomes.
type PSASample struct {
	Iteration    int       `json:"iteration"`
	BudgetImpact float64   `json:"budget_impact"`
	PMPM         float64   `json:"pmpm"`
	Clamps       []Warning `json:"clamps,omitempty"`
}

// PSASummary aggregates a PSA run. Percentile bounds use the configured
// two-sided interval (default 2.5/97.5).
type PSASummary struct {
	Iterations int     `json:"iterations"`
	Seed       int64   `json:"seed"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	StdDev     float64 `json:"std_dev"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`

	// ProbIncrease is the fraction of draws with a positive total impact.
	ProbIncrease float64 `json:"prob_increase"`

	MeanPMPM float64 `json:"mean_pmpm"`

	Samples []PSASample `json:"samples,omitempty"`
}
