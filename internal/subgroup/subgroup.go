// Package subgroup re-runs the pipeline per stratification category. Each
// dimension partitions the eligible pool independently; a category's run
// scales the plan population by the category proportion, applies its event
// risk multipliers, and adjusts the new therapy's efficacy.
package subgroup

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bim-cli/internal/engine"
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// Analyze runs every category of every configured dimension and returns the
// results grouped by dimension in declaration order, categories in
// configured order.
func Analyze(ps *params.ParameterSet) ([]model.SubgroupResult, error) {
	var out []model.SubgroupResult
	for _, dim := range dimensions(ps) {
		results, err := AnalyzeDimension(ps, dim)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}

// AnalyzeDimension runs every category of one dimension.
func AnalyzeDimension(ps *params.ParameterSet, dim model.SubgroupDimension) ([]model.SubgroupResult, error) {
	categories, ok := ps.Subgroups.Dimensions[dim]
	if !ok {
		return nil, eris.Errorf("subgroup: unknown dimension %q", dim)
	}

	out := make([]model.SubgroupResult, 0, len(categories))
	for _, cat := range categories {
		res, err := runCategory(ps, cat)
		if err != nil {
			return nil, eris.Wrapf(err, "subgroup: category %s", cat.Code)
		}

		sr := model.SubgroupResult{
			Dimension:  dim,
			Category:   cat.Code,
			Label:      cat.Label,
			Proportion: cat.Proportion,
			Patients:   res.Eligible,
			Result:     res,
		}
		if res.Eligible > 0 {
			sr.ImpactPerPatient = res.TotalBudgetImpact / float64(res.Eligible)
		}
		out = append(out, sr)

		zap.L().Debug("subgroup: category complete",
			zap.String("dimension", string(dim)),
			zap.String("category", cat.Code),
			zap.Int("patients", sr.Patients),
			zap.Float64("total_impact", res.TotalBudgetImpact),
		)
	}
	return out, nil
}

// runCategory scopes a clone of the parameter set to one stratum and runs
// the full pipeline over it.
func runCategory(ps *params.ParameterSet, cat params.SubgroupCategory) (*model.RunResult, error) {
	clone := ps.Clone()

	// The stratum's pool is its share of the plan population; the cascade
	// fractions apply unchanged within it.
	clone.Population.TotalPopulation = int(float64(ps.Population.TotalPopulation) * cat.Proportion)

	// Differential efficacy applies to the new therapy only, capped so a
	// modifier can never push a relative risk reduction to or past 1.
	for e := range clone.Events.RRR {
		rrr := clone.Events.RRR[e][model.TreatmentNew] * cat.EfficacyModifier
		if rrr > 0.99 {
			rrr = 0.99
		}
		clone.Events.RRR[e][model.TreatmentNew] = rrr
	}

	calc, err := engine.NewForSubgroup(clone, cat.RiskMultipliers)
	if err != nil {
		return nil, err
	}
	return calc.Run()
}

// dimensions returns the configured dimensions in canonical order, with any
// unknown extras appended alphabetically.
func dimensions(ps *params.ParameterSet) []model.SubgroupDimension {
	var known []model.SubgroupDimension
	seen := make(map[model.SubgroupDimension]bool)
	for _, dim := range model.SubgroupDimensions {
		if _, ok := ps.Subgroups.Dimensions[dim]; ok {
			known = append(known, dim)
			seen[dim] = true
		}
	}

	var extras []model.SubgroupDimension
	for dim := range ps.Subgroups.Dimensions {
		if !seen[dim] {
			extras = append(extras, dim)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return append(known, extras...)
}
