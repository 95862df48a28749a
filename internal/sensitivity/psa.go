package sensitivity

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/bim-cli/internal/engine"
	"github.com/sells-group/bim-cli/internal/model"
	"github.com/sells-group/bim-cli/internal/params"
)

// PSAOptions tunes a probabilistic run. Iterations and Confidence default
// to the parameter set's sensitivity block when zero.
type PSAOptions struct {
	Iterations int
	Seed       int64
	Confidence float64
	Workers    int

	// KeepSamples retains every draw on the summary for export; off, only
	// the aggregate statistics are returned.
	KeepSamples bool
}

// PSA runs the Monte-Carlo analysis. Each iteration draws every configured
// distribution, clamps out-of-range draws to the parameter's valid bounds,
// and runs the full pipeline on the perturbed clone.
//
// Results are deterministic for a given seed regardless of worker count:
// every iteration gets its own generator seeded from the base seed and the
// iteration index.
func PSA(ctx context.Context, ps *params.ParameterSet, opts PSAOptions) (*model.PSASummary, error) {
	iterations := opts.Iterations
	if iterations <= 0 {
		iterations = ps.Sensitivity.Iterations
	}
	if iterations <= 0 {
		return nil, eris.New("sensitivity: psa iterations must be positive")
	}
	confidence := opts.Confidence
	if confidence <= 0 {
		confidence = ps.Sensitivity.Confidence
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, eris.Errorf("sensitivity: confidence %v outside (0,1)", confidence)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	samples := make([]model.PSASample, iterations)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < iterations; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(opts.Seed + int64(i)))
			s, err := runIteration(ps, rng, i)
			if err != nil {
				return eris.Wrapf(err, "sensitivity: psa iteration %d", i)
			}
			samples[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := summarize(samples, confidence)
	summary.Seed = opts.Seed
	if opts.KeepSamples {
		summary.Samples = samples
	}

	zap.L().Info("sensitivity: psa complete",
		zap.Int("iterations", iterations),
		zap.Int64("seed", opts.Seed),
		zap.Float64("mean_impact", summary.Mean),
		zap.Float64("prob_increase", summary.ProbIncrease),
	)
	return summary, nil
}

// runIteration perturbs a clone with one draw per distribution and runs the
// pipeline.
func runIteration(ps *params.ParameterSet, rng *rand.Rand, iteration int) (model.PSASample, error) {
	clone := ps.Clone()

	var clamps []model.Warning
	for _, spec := range clone.Sensitivity.Distributions {
		acc, err := params.Lookup(spec.Parameter)
		if err != nil {
			return model.PSASample{}, err
		}
		draw, err := sample(rng, spec)
		if err != nil {
			return model.PSASample{}, err
		}
		v, clamped := acc.Clamp(draw)
		if clamped {
			clamps = append(clamps, model.Warning{
				Kind: model.WarnDrawClamped,
				Message: fmt.Sprintf("%s draw %.6g clamped to [%.6g, %.6g]",
					spec.Parameter, draw, acc.Min, acc.Max),
			})
		}
		acc.Set(clone, v)
	}

	calc, err := engine.New(clone)
	if err != nil {
		return model.PSASample{}, err
	}
	res, err := calc.Run()
	if err != nil {
		return model.PSASample{}, err
	}

	var pmpm float64
	for _, yr := range res.Years {
		pmpm += yr.PMPM
	}
	pmpm /= float64(len(res.Years))

	return model.PSASample{
		Iteration:    iteration,
		BudgetImpact: res.TotalBudgetImpact,
		PMPM:         pmpm,
		Clamps:       clamps,
	}, nil
}

func summarize(samples []model.PSASample, confidence float64) *model.PSASummary {
	n := len(samples)
	impacts := make([]float64, n)

	var sum, pmpmSum float64
	var increases int
	for i, s := range samples {
		impacts[i] = s.BudgetImpact
		sum += s.BudgetImpact
		pmpmSum += s.PMPM
		if s.BudgetImpact > 0 {
			increases++
		}
	}
	mean := sum / float64(n)

	var ss float64
	for _, v := range impacts {
		d := v - mean
		ss += d * d
	}
	stddev := 0.0
	if n > 1 {
		stddev = math.Sqrt(ss / float64(n-1))
	}

	sort.Float64s(impacts)
	tail := (1 - confidence) / 2

	return &model.PSASummary{
		Iterations:   n,
		Mean:         mean,
		Median:       percentile(impacts, 0.5),
		StdDev:       stddev,
		Lower:        percentile(impacts, tail),
		Upper:        percentile(impacts, 1-tail),
		Confidence:   confidence,
		ProbIncrease: float64(increases) / float64(n),
		MeanPMPM:     pmpmSum / float64(n),
	}
}

// percentile interpolates linearly over a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
