package engine

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/bim-cli/internal/params"
)

// ErrNoThreshold is returned when no drug price inside the search interval
// brings the total budget impact to the target.
var ErrNoThreshold = eris.New("engine: no neutral price in search interval")

const (
	thresholdPriceMin = 0.0
	thresholdPriceMax = 50_000.0

	// thresholdBracket is the interval width at which bisection stops.
	thresholdBracket = 100.0
)

// PriceThreshold bisects the new therapy's annual drug price until the
// horizon-total budget impact crosses target, and returns the crossing
// price. Total impact is monotone in the drug price, so the bracket is
// halved until it is narrower than $100 and the midpoint is returned.
func PriceThreshold(ps *params.ParameterSet, target float64) (float64, error) {
	acc, err := params.Lookup(params.ParamDrugCostNew)
	if err != nil {
		return 0, err
	}

	impactAt := func(price float64) (float64, error) {
		clone := ps.Clone()
		acc.Set(clone, price)
		calc, err := New(clone)
		if err != nil {
			return 0, err
		}
		res, err := calc.Run()
		if err != nil {
			return 0, err
		}
		return res.TotalBudgetImpact - target, nil
	}

	lo, hi := thresholdPriceMin, thresholdPriceMax
	fLo, err := impactAt(lo)
	if err != nil {
		return 0, err
	}
	fHi, err := impactAt(hi)
	if err != nil {
		return 0, err
	}
	if fLo == 0 {
		return lo, nil
	}
	if fHi == 0 {
		return hi, nil
	}
	if (fLo > 0) == (fHi > 0) {
		return 0, ErrNoThreshold
	}

	for hi-lo > thresholdBracket {
		mid := (lo + hi) / 2
		fMid, err := impactAt(mid)
		if err != nil {
			return 0, err
		}
		if fMid == 0 {
			return mid, nil
		}
		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
