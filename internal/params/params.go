// Package params defines the parameter snapshot consumed by the calculation
// engine: population cascade fractions, market dynamics, cost tables, event
// rates, persistence curves, subgroup definitions, and sensitivity ranges.
//
// A ParameterSet is owned by exactly one run and treated as immutable once
// the run starts. Anything that needs to vary inputs (tornado sweeps, PSA
// resampling, subgroup re-runs) works on a Clone, never the original.
package params

import (
	"github.com/sells-group/bim-cli/internal/model"
)

// Population holds the prevalence-cascade inputs that size the eligible
// patient pool.
type Population struct {
	TotalPopulation      int     `json:"total_population"`
	AdultFraction        float64 `json:"adult_fraction"`
	Prevalence           float64 `json:"prevalence"`
	ResistantFraction    float64 `json:"resistant_fraction"`
	UncontrolledFraction float64 `json:"uncontrolled_fraction"`
	SeekingFraction      float64 `json:"seeking_fraction"`
}

// Market holds baseline shares, the per-scenario uptake curves for the new
// therapy, and the displacement weights that say where its patients come from.
type Market struct {
	// BaselineShares partitions the eligible pool across incumbent arms in
	// the world without the new therapy. Must sum to 1.
	BaselineShares map[model.Treatment]float64 `json:"baseline_shares"`

	// UptakeCurves maps each scenario to the new therapy's share by year.
	// Non-decreasing, each value in [0,1].
	UptakeCurves map[model.Scenario][]float64 `json:"uptake_curves"`

	// DisplacementWeights says what fraction of new-therapy uptake comes
	// from each incumbent arm. Must sum to 1.
	DisplacementWeights map[model.Treatment]float64 `json:"displacement_weights"`
}

// Uptake returns the new therapy's share for a scenario and 1-based year.
// Years beyond the curve plateau at the final value.
func (m *Market) Uptake(scenario model.Scenario, year int) float64 {
	curve := m.UptakeCurves[scenario]
	if len(curve) == 0 || year < 1 {
		return 0
	}
	if year > len(curve) {
		return curve[len(curve)-1]
	}
	return curve[year-1]
}

// Costs holds per-treatment annual direct cost components. All figures are
// in the configured country's currency.
type Costs struct {
	Currency string `json:"currency"`

	Drug         map[model.Treatment]float64 `json:"drug"`
	Monitoring   map[model.Treatment]float64 `json:"monitoring"`
	OfficeVisits float64                     `json:"office_visits"`
	AdverseEvent map[model.Treatment]float64 `json:"adverse_event"`

	// Offset is the blended avoided-event cost credited per patient-year,
	// from the companion cost-effectiveness model. Applied only when the
	// run enables offsets.
	Offset map[model.Treatment]float64 `json:"offset"`
}

// PerPatient returns a treatment's total annual cost per patient,
// optionally netting the blended avoided-event offset.
func (c *Costs) PerPatient(t model.Treatment, includeOffset bool) float64 {
	total := c.Drug[t] + c.Monitoring[t] + c.OfficeVisits + c.AdverseEvent[t]
	if includeOffset {
		total -= c.Offset[t]
	}
	return total
}

// Events holds the clinical event assumptions: the untreated baseline rate
// per patient-year for each event type and the relative risk reduction each
// treatment delivers against it.
type Events struct {
	BaseRates map[model.EventType]float64                     `json:"base_rates"`
	RRR       map[model.EventType]map[model.Treatment]float64 `json:"rrr"`
}

// EventCosts holds the acute episode cost and the ongoing annual follow-up
// cost for each event type.
type EventCosts struct {
	Acute          map[model.EventType]float64 `json:"acute"`
	FollowupAnnual map[model.EventType]float64 `json:"followup_annual"`
}

// WeibullCurve parameterizes a persistence survival function
// S(m) = exp(-scale * m^shape) over months on therapy. Both values are
// strictly positive.
type WeibullCurve struct {
	Shape float64 `json:"shape"`
	Scale float64 `json:"scale"`
}

// Persistence holds per-treatment discontinuation curves. The untreated arm
// has no curve; it is never persistence-adjusted.
type Persistence struct {
	Curves map[model.Treatment]WeibullCurve `json:"curves"`
}

// SubgroupCategory is one mutually-exclusive stratum within a dimension.
type SubgroupCategory struct {
	Code       string  `json:"code"`
	Label      string  `json:"label"`
	Proportion float64 `json:"proportion"`

	// RiskMultipliers scale event base rates for this stratum.
	RiskMultipliers map[model.EventType]float64 `json:"risk_multipliers"`

	// EfficacyModifier scales the new therapy's RRR (capped below 1).
	EfficacyModifier float64 `json:"efficacy_modifier"`
}

// Subgroups holds the stratification dimensions. Categories within one
// dimension must sum to 1; dimensions are analyzed independently.
type Subgroups struct {
	Dimensions map[model.SubgroupDimension][]SubgroupCategory `json:"dimensions"`
}

// TornadoSpec is one parameter to sweep in one-way sensitivity analysis.
type TornadoSpec struct {
	Parameter string  `json:"parameter"`
	LowMul    float64 `json:"low_mul"`
	HighMul   float64 `json:"high_mul"`
}

// DistKind names a sampling distribution for PSA.
type DistKind string

const (
	DistNormal    DistKind = "normal"
	DistLognormal DistKind = "lognormal"
	DistBeta      DistKind = "beta"
)

// DistributionSpec declares a stochastic parameter for PSA: the accessor
// name plus the distribution matched to the given mean and standard
// deviation.
type DistributionSpec struct {
	Parameter string   `json:"parameter"`
	Kind      DistKind `json:"kind"`
	Mean      float64  `json:"mean"`
	StdDev    float64  `json:"std_dev"`
}

// Sensitivity holds one-way sweep and PSA configuration.
type Sensitivity struct {
	Tornado       []TornadoSpec      `json:"tornado"`
	Distributions []DistributionSpec `json:"distributions"`
	Iterations    int                `json:"iterations"`
	Confidence    float64            `json:"confidence"`
}

// Analysis holds the run-level switches.
type Analysis struct {
	HorizonYears       int            `json:"horizon_years"`
	Scenario           model.Scenario `json:"scenario"`
	IncludeOffsets     bool           `json:"include_offsets"`
	IncludePersistence bool           `json:"include_persistence"`
	IncludeEvents      bool           `json:"include_events"`
}

// ParameterSet is the complete numeric input snapshot for one run.
type ParameterSet struct {
	Country     string      `json:"country"`
	Population  Population  `json:"population"`
	Market      Market      `json:"market"`
	Costs       Costs       `json:"costs"`
	Events      Events      `json:"events"`
	EventCosts  EventCosts  `json:"event_costs"`
	Persistence Persistence `json:"persistence"`
	Subgroups   Subgroups   `json:"subgroups"`
	Sensitivity Sensitivity `json:"sensitivity"`
	Analysis    Analysis    `json:"analysis"`
}

// Clone returns a deep copy. Sensitivity and subgroup engines mutate the
// clone and re-run the pipeline; the receiver is never touched.
func (p *ParameterSet) Clone() *ParameterSet {
	c := *p

	c.Market.BaselineShares = cloneMap(p.Market.BaselineShares)
	c.Market.DisplacementWeights = cloneMap(p.Market.DisplacementWeights)
	c.Market.UptakeCurves = make(map[model.Scenario][]float64, len(p.Market.UptakeCurves))
	for s, curve := range p.Market.UptakeCurves {
		c.Market.UptakeCurves[s] = append([]float64(nil), curve...)
	}

	c.Costs.Drug = cloneMap(p.Costs.Drug)
	c.Costs.Monitoring = cloneMap(p.Costs.Monitoring)
	c.Costs.AdverseEvent = cloneMap(p.Costs.AdverseEvent)
	c.Costs.Offset = cloneMap(p.Costs.Offset)

	c.Events.BaseRates = cloneMap(p.Events.BaseRates)
	c.Events.RRR = make(map[model.EventType]map[model.Treatment]float64, len(p.Events.RRR))
	for e, byTreatment := range p.Events.RRR {
		c.Events.RRR[e] = cloneMap(byTreatment)
	}

	c.EventCosts.Acute = cloneMap(p.EventCosts.Acute)
	c.EventCosts.FollowupAnnual = cloneMap(p.EventCosts.FollowupAnnual)

	c.Persistence.Curves = cloneMap(p.Persistence.Curves)

	c.Subgroups.Dimensions = make(map[model.SubgroupDimension][]SubgroupCategory, len(p.Subgroups.Dimensions))
	for dim, cats := range p.Subgroups.Dimensions {
		copied := make([]SubgroupCategory, len(cats))
		for i, cat := range cats {
			copied[i] = cat
			copied[i].RiskMultipliers = cloneMap(cat.RiskMultipliers)
		}
		c.Subgroups.Dimensions[dim] = copied
	}

	c.Sensitivity.Tornado = append([]TornadoSpec(nil), p.Sensitivity.Tornado...)
	c.Sensitivity.Distributions = append([]DistributionSpec(nil), p.Sensitivity.Distributions...)

	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
