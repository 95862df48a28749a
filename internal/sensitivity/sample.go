// Package sensitivity implements one-way (tornado) and probabilistic
// (Monte-Carlo) sensitivity analysis over the calculation pipeline. Both
// work on parameter-set clones through the typed accessor registry; the
// base inputs are never mutated.
package sensitivity

import (
	"math"
	"math/rand"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bim-cli/internal/params"
)

// sample draws one value from a distribution spec. The normal and lognormal
// kinds are parameterized by the arithmetic mean and standard deviation of
// the target quantity; lognormal and beta convert those moments to their
// native parameters.
func sample(rng *rand.Rand, spec params.DistributionSpec) (float64, error) {
	switch spec.Kind {
	case params.DistNormal:
		return spec.Mean + spec.StdDev*rng.NormFloat64(), nil

	case params.DistLognormal:
		if spec.Mean <= 0 {
			return 0, eris.Errorf("sensitivity: lognormal mean must be positive for %s", spec.Parameter)
		}
		// Match the arithmetic moments: sigma^2 = ln(1 + cv^2),
		// mu = ln(mean) - sigma^2/2.
		cv := spec.StdDev / spec.Mean
		sigma2 := math.Log(1 + cv*cv)
		mu := math.Log(spec.Mean) - sigma2/2
		return math.Exp(mu + math.Sqrt(sigma2)*rng.NormFloat64()), nil

	case params.DistBeta:
		if spec.Mean <= 0 || spec.Mean >= 1 {
			return 0, eris.Errorf("sensitivity: beta mean must be in (0,1) for %s", spec.Parameter)
		}
		// Method of moments. The variance cap keeps both shape parameters
		// positive.
		maxVar := spec.Mean * (1 - spec.Mean)
		v := spec.StdDev * spec.StdDev
		if v >= maxVar {
			return 0, eris.Errorf("sensitivity: beta std dev too large for %s", spec.Parameter)
		}
		nu := maxVar/v - 1
		alpha := spec.Mean * nu
		beta := (1 - spec.Mean) * nu
		return betaSample(rng, alpha, beta), nil

	default:
		return 0, eris.Errorf("sensitivity: unknown distribution %q for %s", spec.Kind, spec.Parameter)
	}
}

// betaSample draws Beta(alpha,beta) via two gamma variates.
func betaSample(rng *rand.Rand, alpha, beta float64) float64 {
	x := gammaSample(rng, alpha)
	y := gammaSample(rng, beta)
	if x+y == 0 {
		return 0
	}
	return x / (x + y)
}

// gammaSample draws Gamma(shape,1) with the Marsaglia-Tsang squeeze; shapes
// below 1 are boosted and corrected with a uniform power.
func gammaSample(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		return gammaSample(rng, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
