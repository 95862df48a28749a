package params

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bim-cli/internal/model"
)

// Accessor names. Tornado specs and PSA distributions refer to parameters
// by these identifiers; the registry resolves them to typed getter/setter
// pairs, so sweeps and resampling stay exhaustive and type-checked.
const (
	ParamDrugCostNew        = "costs.drug.new_therapy"
	ParamDrugCostSpiro      = "costs.drug.spironolactone"
	ParamDrugCostEplerenone = "costs.drug.eplerenone"
	ParamOffsetNew          = "costs.offset.new_therapy"
	ParamPrevalence         = "population.prevalence"
	ParamResistantFraction  = "population.resistant_fraction"
	ParamSeekingFraction    = "population.seeking_fraction"
	ParamDisplacementSpiro  = "market.displacement.spironolactone"
	ParamPersistScaleNew    = "persistence.scale.new_therapy"
	ParamBaseRateStroke     = "events.base_rate.stroke"
	ParamBaseRateMI         = "events.base_rate.mi"
	ParamBaseRateHF         = "events.base_rate.hf"
)

// Accessor is a typed handle on one scalar parameter: a display label, the
// physically valid range, and getter/setter closures over a ParameterSet.
type Accessor struct {
	Name  string
	Label string
	// Min and Max bound the valid range; PSA draws outside are clamped.
	Min float64
	Max float64

	Get func(*ParameterSet) float64
	Set func(*ParameterSet, float64)
}

// Clamp returns v forced into the accessor's valid range and whether
// clamping occurred.
func (a Accessor) Clamp(v float64) (float64, bool) {
	if v < a.Min {
		return a.Min, true
	}
	if v > a.Max {
		return a.Max, true
	}
	return v, false
}

var registry = buildRegistry()

func buildRegistry() map[string]Accessor {
	const eps = 1e-9

	accessors := []Accessor{
		{
			Name: ParamDrugCostNew, Label: "New Therapy Annual Drug Cost",
			Min: 0, Max: math.Inf(1),
			Get: func(p *ParameterSet) float64 { return p.Costs.Drug[model.TreatmentNew] },
			Set: func(p *ParameterSet, v float64) { p.Costs.Drug[model.TreatmentNew] = v },
		},
		{
			Name: ParamDrugCostSpiro, Label: "Spironolactone Annual Drug Cost",
			Min: 0, Max: math.Inf(1),
			Get: func(p *ParameterSet) float64 { return p.Costs.Drug[model.TreatmentSpiro] },
			Set: func(p *ParameterSet, v float64) { p.Costs.Drug[model.TreatmentSpiro] = v },
		},
		{
			Name: ParamDrugCostEplerenone, Label: "Eplerenone Annual Drug Cost",
			Min: 0, Max: math.Inf(1),
			Get: func(p *ParameterSet) float64 { return p.Costs.Drug[model.TreatmentEplerenone] },
			Set: func(p *ParameterSet, v float64) { p.Costs.Drug[model.TreatmentEplerenone] = v },
		},
		{
			Name: ParamOffsetNew, Label: "Avoided Event Offset (New Therapy)",
			Min: 0, Max: math.Inf(1),
			Get: func(p *ParameterSet) float64 { return p.Costs.Offset[model.TreatmentNew] },
			Set: func(p *ParameterSet, v float64) { p.Costs.Offset[model.TreatmentNew] = v },
		},
		{
			Name: ParamPrevalence, Label: "Hypertension Prevalence",
			Min: 0, Max: 1,
			Get: func(p *ParameterSet) float64 { return p.Population.Prevalence },
			Set: func(p *ParameterSet, v float64) { p.Population.Prevalence = v },
		},
		{
			Name: ParamResistantFraction, Label: "Resistant HTN Fraction",
			Min: 0, Max: 1,
			Get: func(p *ParameterSet) float64 { return p.Population.ResistantFraction },
			Set: func(p *ParameterSet, v float64) { p.Population.ResistantFraction = v },
		},
		{
			Name: ParamSeekingFraction, Label: "Treatment-Seeking Fraction",
			Min: 0, Max: 1,
			Get: func(p *ParameterSet) float64 { return p.Population.SeekingFraction },
			Set: func(p *ParameterSet, v float64) { p.Population.SeekingFraction = v },
		},
		{
			Name: ParamDisplacementSpiro, Label: "Displacement from Spironolactone",
			Min: 0, Max: 1,
			Get: func(p *ParameterSet) float64 { return p.Market.DisplacementWeights[model.TreatmentSpiro] },
			Set: func(p *ParameterSet, v float64) {
				// Hold the weight partition at 1 by moving the difference
				// onto the untreated weight.
				old := p.Market.DisplacementWeights[model.TreatmentSpiro]
				p.Market.DisplacementWeights[model.TreatmentSpiro] = v
				p.Market.DisplacementWeights[model.TreatmentNone] += old - v
			},
		},
		{
			Name: ParamPersistScaleNew, Label: "New Therapy Discontinuation Scale",
			Min: eps, Max: math.Inf(1),
			Get: func(p *ParameterSet) float64 { return p.Persistence.Curves[model.TreatmentNew].Scale },
			Set: func(p *ParameterSet, v float64) {
				c := p.Persistence.Curves[model.TreatmentNew]
				c.Scale = v
				p.Persistence.Curves[model.TreatmentNew] = c
			},
		},
		{
			Name: ParamBaseRateStroke, Label: "Stroke Base Rate",
			Min: 0, Max: math.Inf(1),
			Get: func(p *ParameterSet) float64 { return p.Events.BaseRates[model.EventStroke] },
			Set: func(p *ParameterSet, v float64) { p.Events.BaseRates[model.EventStroke] = v },
		},
		{
			Name: ParamBaseRateMI, Label: "MI Base Rate",
			Min: 0, Max: math.Inf(1),
			Get: func(p *ParameterSet) float64 { return p.Events.BaseRates[model.EventMI] },
			Set: func(p *ParameterSet, v float64) { p.Events.BaseRates[model.EventMI] = v },
		},
		{
			Name: ParamBaseRateHF, Label: "HF Hospitalization Base Rate",
			Min: 0, Max: math.Inf(1),
			Get: func(p *ParameterSet) float64 { return p.Events.BaseRates[model.EventHF] },
			Set: func(p *ParameterSet, v float64) { p.Events.BaseRates[model.EventHF] = v },
		},
	}

	out := make(map[string]Accessor, len(accessors))
	for _, a := range accessors {
		out[a.Name] = a
	}
	return out
}

// Lookup resolves an accessor by name.
func Lookup(name string) (Accessor, error) {
	a, ok := registry[name]
	if !ok {
		return Accessor{}, eris.Errorf("params: unknown parameter %q", name)
	}
	return a, nil
}

// Names returns every registered parameter name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
