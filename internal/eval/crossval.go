package eval

import (
	"fmt"
	"math/rand"

	"github.com/calluna-data/habimap/internal/sdm"
)

// Folds assigns instances to k folds, stratified by class: indices are
// shuffled within each class and dealt round-robin, so every fold's class
// ratio is within one instance of the global ratio.
func Folds(rng *rand.Rand, y []bool, k int) ([]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("folds: k must be at least 2, got %d", k)
	}
	if len(y) < k {
		return nil, fmt.Errorf("folds: %d instances for %d folds", len(y), k)
	}

	assignment := make([]int, len(y))
	for _, class := range []bool{false, true} {
		var idx []int
		for i, yi := range y {
			if yi == class {
				idx = append(idx, i)
			}
		}
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for j, i := range idx {
			assignment[i] = j % k
		}
	}
	return assignment, nil
}

// FoldResult holds the held-out scores of one fold.
type FoldResult struct {
	Fold  int
	Probs []float64
	Obs   []bool
}

// CVResult is the outcome of a cross-validation run: per-fold held-out scores
// plus the pooled scores across folds.
type CVResult struct {
	Folds []FoldResult
	Probs []float64 // pooled, in fold order
	Obs   []bool
}

// Confusion pools all folds at a threshold.
func (r *CVResult) Confusion(threshold float64) ConfusionMatrix {
	return Confusion(r.Probs, r.Obs, threshold)
}

// CrossValidate trains a fresh classifier per fold and scores it on the
// held-out instances. The factory must return an unfitted classifier each
// call.
func CrossValidate(rng *rand.Rand, ds *sdm.Dataset, factory func() sdm.Classifier, k int) (*CVResult, error) {
	assignment, err := Folds(rng, ds.Y, k)
	if err != nil {
		return nil, err
	}

	result := &CVResult{}
	for fold := 0; fold < k; fold++ {
		var trainRows, testRows []int
		for i, f := range assignment {
			if f == fold {
				testRows = append(testRows, i)
			} else {
				trainRows = append(trainRows, i)
			}
		}
		if len(testRows) == 0 {
			continue
		}

		c := factory()
		if err := c.Fit(ds.Subset(trainRows)); err != nil {
			return nil, fmt.Errorf("cross-validation fold %d: %w", fold, err)
		}

		fr := FoldResult{Fold: fold}
		for _, i := range testRows {
			fr.Probs = append(fr.Probs, c.PredictProb(ds.X[i]))
			fr.Obs = append(fr.Obs, ds.Y[i])
		}
		result.Folds = append(result.Folds, fr)
		result.Probs = append(result.Probs, fr.Probs...)
		result.Obs = append(result.Obs, fr.Obs...)
	}
	return result, nil
}
