package sdm

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// BaggingParams tune the bagged tree ensemble.
type BaggingParams struct {
	Members     int     // number of trees; 0 means the default
	VarFraction float64 // fraction of predictors offered to each member; 0 means all
	Tree        TreeParams
	Seed        int64
}

func (p BaggingParams) withDefaults() BaggingParams {
	if p.Members <= 0 {
		p.Members = 25
	}
	if p.VarFraction <= 0 || p.VarFraction > 1 {
		p.VarFraction = 1
	}
	return p
}

// Bagging is an ensemble of CART trees, each fitted on a bootstrap resample
// of the training instances with a random subset of predictors. The ensemble
// probability is the member average.
type Bagging struct {
	Params BaggingParams
	Trees  []*Tree
	NVars  int
}

// NewBagging creates an unfitted ensemble.
func NewBagging(params BaggingParams) *Bagging {
	return &Bagging{Params: params.withDefaults()}
}

// Fit trains the ensemble. The resampling is driven by Params.Seed, so a
// fixed seed reproduces the ensemble exactly.
func (b *Bagging) Fit(ds *Dataset) error {
	b.Params = b.Params.withDefaults()
	b.NVars = ds.NumVars()
	b.Trees = b.Trees[:0]

	nVars := int(math.Round(b.Params.VarFraction * float64(ds.NumVars())))
	if nVars < 1 {
		nVars = 1
	}

	rng := rand.New(rand.NewSource(b.Params.Seed))
	for m := 0; m < b.Params.Members; m++ {
		rows := make([]int, ds.Len())
		for i := range rows {
			rows[i] = rng.Intn(ds.Len())
		}

		vars := rng.Perm(ds.NumVars())[:nVars]
		sort.Ints(vars)

		tree := NewTree(b.Params.Tree)
		if err := tree.fit(ds, rows, vars); err != nil {
			return fmt.Errorf("bagging member %d: %w", m, err)
		}
		b.Trees = append(b.Trees, tree)
	}
	return nil
}

// PredictProb averages the member probabilities.
func (b *Bagging) PredictProb(x []float64) float64 {
	if len(b.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range b.Trees {
		sum += t.PredictProb(x)
	}
	return sum / float64(len(b.Trees))
}

// Importance averages the member split importances per predictor.
func (b *Bagging) Importance() []float64 {
	imp := make([]float64, b.NVars)
	if len(b.Trees) == 0 {
		return imp
	}
	for _, t := range b.Trees {
		for v, g := range t.Importance {
			imp[v] += g
		}
	}
	for v := range imp {
		imp[v] /= float64(len(b.Trees))
	}
	return imp
}
