// Package explain produces the model-explanation artifacts of the lecture:
// partial-response curves and Shapley-value attributions.
package explain

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/calluna-data/habimap/internal/sdm"
)

// Medians returns the per-predictor median of the training data, the
// reference point partial responses and Shapley baselines are evaluated
// against.
func Medians(ds *sdm.Dataset) []float64 {
	med := make([]float64, ds.NumVars())
	col := make([]float64, ds.Len())
	for v := 0; v < ds.NumVars(); v++ {
		for i, row := range ds.X {
			col[i] = row[v]
		}
		sort.Float64s(col)
		med[v] = stat.Quantile(0.5, stat.Empirical, col, nil)
	}
	return med
}

// Curve is a partial-response curve for one predictor.
type Curve struct {
	VarName string
	X       []float64
	Y       []float64
}

// PartialResponse sweeps predictor v over its observed range in the given
// number of steps, holding all other predictors at their training medians.
func PartialResponse(c sdm.Classifier, ds *sdm.Dataset, v, steps int) (*Curve, error) {
	if v < 0 || v >= ds.NumVars() {
		return nil, fmt.Errorf("partial response: predictor %d out of range", v)
	}
	if steps < 2 {
		return nil, fmt.Errorf("partial response: need at least 2 steps, got %d", steps)
	}

	lo, hi := ds.X[0][v], ds.X[0][v]
	for _, row := range ds.X {
		if row[v] < lo {
			lo = row[v]
		}
		if row[v] > hi {
			hi = row[v]
		}
	}

	ref := Medians(ds)
	x := make([]float64, len(ref))

	curve := &Curve{VarName: ds.VarNames[v]}
	for i := 0; i < steps; i++ {
		copy(x, ref)
		xv := lo + (hi-lo)*float64(i)/float64(steps-1)
		x[v] = xv
		curve.X = append(curve.X, xv)
		curve.Y = append(curve.Y, c.PredictProb(x))
	}
	return curve, nil
}
