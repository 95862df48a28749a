package params

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bim-cli/internal/model"
)

// ErrInvalidParameter is the root of every structural validation failure.
// A run that trips it produces no partial results.
var ErrInvalidParameter = eris.New("invalid parameter")

const (
	// MaxHorizonYears caps the analysis horizon.
	MaxHorizonYears = 10

	// partitionTol is the tolerance for share-like partitions summing to 1.
	partitionTol = 1e-6
)

func invalidf(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidParameter, format, args...)
}

// Validate checks every structural invariant. It returns the first
// violation found, wrapped around ErrInvalidParameter with the invariant
// named. A ParameterSet that validates clean can be handed to the engine
// without re-checking.
func (p *ParameterSet) Validate() error {
	if err := p.validatePopulation(); err != nil {
		return err
	}
	if err := p.validateMarket(); err != nil {
		return err
	}
	if err := p.validateCosts(); err != nil {
		return err
	}
	if err := p.validateEvents(); err != nil {
		return err
	}
	if err := p.validatePersistence(); err != nil {
		return err
	}
	if err := p.validateSubgroups(); err != nil {
		return err
	}
	if err := p.validateSensitivity(); err != nil {
		return err
	}
	return p.validateAnalysis()
}

func (p *ParameterSet) validatePopulation() error {
	pop := p.Population
	if pop.TotalPopulation < 0 {
		return invalidf("population: total population %d is negative", pop.TotalPopulation)
	}
	fractions := map[string]float64{
		"adult_fraction":        pop.AdultFraction,
		"prevalence":            pop.Prevalence,
		"resistant_fraction":    pop.ResistantFraction,
		"uncontrolled_fraction": pop.UncontrolledFraction,
		"seeking_fraction":      pop.SeekingFraction,
	}
	for name, f := range fractions {
		if f < 0 || f > 1 {
			return invalidf("population: %s %v outside [0,1]", name, f)
		}
	}
	return nil
}

func (p *ParameterSet) validateMarket() error {
	m := p.Market

	var shareSum float64
	for _, t := range model.Incumbents {
		share, ok := m.BaselineShares[t]
		if !ok {
			return invalidf("market: baseline share missing for %s", t)
		}
		if share < 0 || share > 1 {
			return invalidf("market: baseline share for %s is %v, outside [0,1]", t, share)
		}
		shareSum += share
	}
	if math.Abs(shareSum-1) > partitionTol {
		return invalidf("market: baseline shares sum to %v, want 1.0", shareSum)
	}

	var weightSum float64
	for _, t := range model.Incumbents {
		w, ok := m.DisplacementWeights[t]
		if !ok {
			return invalidf("market: displacement weight missing for %s", t)
		}
		if w < 0 || w > 1 {
			return invalidf("market: displacement weight for %s is %v, outside [0,1]", t, w)
		}
		weightSum += w
	}
	if math.Abs(weightSum-1) > partitionTol {
		return invalidf("market: displacement weights sum to %v, want 1.0", weightSum)
	}

	if len(m.UptakeCurves) == 0 {
		return invalidf("market: no uptake curves configured")
	}
	for scenario, curve := range m.UptakeCurves {
		if len(curve) == 0 {
			return invalidf("market: uptake curve for %s is empty", scenario)
		}
		prev := 0.0
		for i, u := range curve {
			if u < 0 || u > 1 {
				return invalidf("market: uptake %v in year %d of %s outside [0,1]", u, i+1, scenario)
			}
			if u < prev {
				return invalidf("market: uptake curve for %s decreases at year %d", scenario, i+1)
			}
			prev = u
		}
	}
	return nil
}

func (p *ParameterSet) validateCosts() error {
	c := p.Costs
	tables := map[string]map[model.Treatment]float64{
		"drug":          c.Drug,
		"monitoring":    c.Monitoring,
		"adverse_event": c.AdverseEvent,
		"offset":        c.Offset,
	}
	for name, table := range tables {
		for _, t := range model.Treatments {
			v, ok := table[t]
			if !ok {
				return invalidf("costs: %s entry missing for %s", name, t)
			}
			if v < 0 {
				return invalidf("costs: %s for %s is %v, negative", name, t, v)
			}
		}
	}
	if c.OfficeVisits < 0 {
		return invalidf("costs: office visits %v negative", c.OfficeVisits)
	}
	return nil
}

func (p *ParameterSet) validateEvents() error {
	for _, e := range model.EventTypes {
		rate, ok := p.Events.BaseRates[e]
		if !ok {
			return invalidf("events: base rate missing for %s", e)
		}
		if rate < 0 {
			return invalidf("events: base rate for %s is %v, negative", e, rate)
		}

		row, ok := p.Events.RRR[e]
		if !ok {
			return invalidf("events: RRR row missing for %s", e)
		}
		for _, t := range model.Treatments {
			rrr, ok := row[t]
			if !ok {
				return invalidf("events: RRR missing for %s/%s", e, t)
			}
			if rrr < 0 || rrr >= 1 {
				return invalidf("events: RRR for %s/%s is %v, outside [0,1)", e, t, rrr)
			}
		}

		if _, ok := p.EventCosts.Acute[e]; !ok {
			return invalidf("events: acute cost missing for %s", e)
		}
		if _, ok := p.EventCosts.FollowupAnnual[e]; !ok {
			return invalidf("events: follow-up cost missing for %s", e)
		}
		if p.EventCosts.Acute[e] < 0 || p.EventCosts.FollowupAnnual[e] < 0 {
			return invalidf("events: cost for %s is negative", e)
		}
	}
	return nil
}

func (p *ParameterSet) validatePersistence() error {
	for t, curve := range p.Persistence.Curves {
		if t == model.TreatmentNone {
			return invalidf("persistence: untreated arm cannot carry a curve")
		}
		if curve.Shape <= 0 || curve.Scale <= 0 {
			return invalidf("persistence: curve for %s needs positive shape and scale, got shape=%v scale=%v",
				t, curve.Shape, curve.Scale)
		}
	}
	return nil
}

func (p *ParameterSet) validateSubgroups() error {
	for dim, cats := range p.Subgroups.Dimensions {
		if len(cats) == 0 {
			return invalidf("subgroups: dimension %s has no categories", dim)
		}
		var sum float64
		for _, cat := range cats {
			if cat.Proportion < 0 || cat.Proportion > 1 {
				return invalidf("subgroups: %s/%s proportion %v outside [0,1]", dim, cat.Code, cat.Proportion)
			}
			if cat.EfficacyModifier <= 0 {
				return invalidf("subgroups: %s/%s efficacy modifier %v not positive", dim, cat.Code, cat.EfficacyModifier)
			}
			for e, mult := range cat.RiskMultipliers {
				if mult < 0 {
					return invalidf("subgroups: %s/%s risk multiplier for %s is negative", dim, cat.Code, e)
				}
			}
			sum += cat.Proportion
		}
		if math.Abs(sum-1) > partitionTol {
			return invalidf("subgroups: %s proportions sum to %v, want 1.0", dim, sum)
		}
	}
	return nil
}

func (p *ParameterSet) validateSensitivity() error {
	s := p.Sensitivity
	if s.Iterations <= 0 {
		return invalidf("sensitivity: iterations %d not positive", s.Iterations)
	}
	if s.Confidence <= 0 || s.Confidence >= 1 {
		return invalidf("sensitivity: confidence %v outside (0,1)", s.Confidence)
	}
	for _, spec := range s.Tornado {
		if _, err := Lookup(spec.Parameter); err != nil {
			return invalidf("sensitivity: tornado parameter %q not registered", spec.Parameter)
		}
		if spec.LowMul <= 0 || spec.HighMul <= 0 {
			return invalidf("sensitivity: tornado multipliers for %s must be positive", spec.Parameter)
		}
	}
	for _, spec := range s.Distributions {
		if _, err := Lookup(spec.Parameter); err != nil {
			return invalidf("sensitivity: distribution parameter %q not registered", spec.Parameter)
		}
		switch spec.Kind {
		case DistNormal, DistLognormal, DistBeta:
		default:
			return invalidf("sensitivity: unknown distribution kind %q for %s", spec.Kind, spec.Parameter)
		}
		if spec.StdDev < 0 {
			return invalidf("sensitivity: negative std dev for %s", spec.Parameter)
		}
		if spec.Kind == DistLognormal && spec.Mean <= 0 {
			return invalidf("sensitivity: lognormal mean for %s must be positive", spec.Parameter)
		}
		if spec.Kind == DistBeta && (spec.Mean <= 0 || spec.Mean >= 1) {
			return invalidf("sensitivity: beta mean for %s must be inside (0,1)", spec.Parameter)
		}
	}
	return nil
}

func (p *ParameterSet) validateAnalysis() error {
	a := p.Analysis
	if a.HorizonYears < 1 || a.HorizonYears > MaxHorizonYears {
		return invalidf("analysis: horizon %d outside [1,%d]", a.HorizonYears, MaxHorizonYears)
	}
	if _, ok := p.Market.UptakeCurves[a.Scenario]; !ok {
		return invalidf("analysis: no uptake curve for scenario %q", a.Scenario)
	}
	return nil
}
