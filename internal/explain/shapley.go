package explain

import (
	"fmt"
	"math/rand"

	"github.com/calluna-data/habimap/internal/sdm"
)

// Shapley attributes a single prediction to each predictor by Monte Carlo
// permutation sampling: for each sampled predictor ordering, every
// predictor's marginal contribution is the change in model output when its
// value flips from the baseline to the explained point. The attributions of
// one permutation sum to f(x) - f(baseline) exactly, so their sample mean
// keeps that additivity.
func Shapley(rng *rand.Rand, c sdm.Classifier, baseline, x []float64, samples int) ([]float64, error) {
	if len(baseline) != len(x) {
		return nil, fmt.Errorf("shapley: baseline has %d values, point has %d", len(baseline), len(x))
	}
	if samples < 1 {
		return nil, fmt.Errorf("shapley: need at least 1 sample, got %d", samples)
	}

	d := len(x)
	phi := make([]float64, d)
	z := make([]float64, d)

	for s := 0; s < samples; s++ {
		perm := rng.Perm(d)
		copy(z, baseline)
		prev := c.PredictProb(z)
		for _, v := range perm {
			z[v] = x[v]
			next := c.PredictProb(z)
			phi[v] += next - prev
			prev = next
		}
	}
	for v := range phi {
		phi[v] /= float64(samples)
	}
	return phi, nil
}

// ShapleyExact enumerates all predictor orderings. Only usable for small
// predictor counts; the lecture uses it to verify the sampled estimator.
func ShapleyExact(c sdm.Classifier, baseline, x []float64) ([]float64, error) {
	if len(baseline) != len(x) {
		return nil, fmt.Errorf("shapley: baseline has %d values, point has %d", len(baseline), len(x))
	}
	d := len(x)
	if d > 8 {
		return nil, fmt.Errorf("shapley: exact enumeration limited to 8 predictors, got %d", d)
	}

	phi := make([]float64, d)
	z := make([]float64, d)
	perm := make([]int, d)
	for i := range perm {
		perm[i] = i
	}

	count := 0
	var walk func(k int)
	walk = func(k int) {
		if k == d {
			count++
			copy(z, baseline)
			prev := c.PredictProb(z)
			for _, v := range perm {
				z[v] = x[v]
				next := c.PredictProb(z)
				phi[v] += next - prev
				prev = next
			}
			return
		}
		for i := k; i < d; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			walk(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	walk(0)

	for v := range phi {
		phi[v] /= float64(count)
	}
	return phi, nil
}

// Importance aggregates Shapley attributions over a set of points into a
// per-predictor variable importance: the mean absolute attribution.
func Importance(rng *rand.Rand, c sdm.Classifier, ds *sdm.Dataset, samples, maxPoints int) ([]float64, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("importance: empty dataset")
	}
	baseline := Medians(ds)

	rows := rng.Perm(ds.Len())
	if maxPoints > 0 && maxPoints < len(rows) {
		rows = rows[:maxPoints]
	}

	imp := make([]float64, ds.NumVars())
	for _, r := range rows {
		phi, err := Shapley(rng, c, baseline, ds.X[r], samples)
		if err != nil {
			return nil, err
		}
		for v, p := range phi {
			if p < 0 {
				p = -p
			}
			imp[v] += p
		}
	}
	for v := range imp {
		imp[v] /= float64(len(rows))
	}
	return imp, nil
}
