package engine

import (
	"math"

	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// SurvivalFraction returns the share of an initiating cohort still on
// therapy after the given months: S(m) = exp(-scale * m^shape). Strictly
// decreasing in m for positive shape and scale, bounded in (0,1].
func SurvivalFraction(c params.WeibullCurve, months float64) float64 {
	if months <= 0 {
		return 1
	}
	return math.Exp(-c.Scale * math.Pow(months, c.Shape))
}

// EffectiveSeries converts a per-year raw patient stock for one treatment
// into persistence-adjusted effective counts. Year-over-year growth in the
// raw stock forms an initiation cohort; each cohort is discounted by the
// survival fraction at its elapsed time, evaluated at the cohort's
// mid-year. The adjusted count never exceeds the raw stock for the year,
// and never goes negative.
func EffectiveSeries(raw []float64, curve params.WeibullCurve) []float64 {
	n := len(raw)
	out := make([]float64, n)

	cohorts := make([]float64, n)
	for y := 0; y < n; y++ {
		if y == 0 {
			cohorts[y] = raw[y]
			continue
		}
		growth := raw[y] - raw[y-1]
		if growth > 0 {
			cohorts[y] = growth
		}
	}

	for y := 0; y < n; y++ {
		var eff float64
		for c := 0; c <= y; c++ {
			months := float64(12*(y-c)) + 6
			eff += cohorts[c] * SurvivalFraction(curve, months)
		}
		if eff > raw[y] {
			eff = raw[y]
		}
		if eff < 0 {
			eff = 0
		}
		out[y] = eff
	}
	return out
}

// AdjustWorld applies persistence to every treated arm of a per-year count
// series. The untreated arm passes through unchanged: there is no therapy
// to discontinue.
func AdjustWorld(byYear []map[model.Treatment]float64, p params.Persistence) []map[model.Treatment]float64 {
	n := len(byYear)
	out := make([]map[model.Treatment]float64, n)
	for y := range out {
		out[y] = make(map[model.Treatment]float64, len(model.Treatments))
		out[y][model.TreatmentNone] = byYear[y][model.TreatmentNone]
	}

	for _, t := range model.Treatments {
		if t == model.TreatmentNone {
			continue
		}
		curve, ok := p.Curves[t]
		if !ok {
			for y := 0; y < n; y++ {
				out[y][t] = byYear[y][t]
			}
			continue
		}
		raw := make([]float64, n)
		for y := 0; y < n; y++ {
			raw[y] = byYear[y][t]
		}
		eff := EffectiveSeries(raw, curve)
		for y := 0; y < n; y++ {
			out[y][t] = eff[y]
		}
	}
	return out
}
