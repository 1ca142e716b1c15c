package sdm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minSigma keeps degenerate (constant-valued) predictors from producing
// infinite densities.
const minSigma = 1e-6

// NaiveBayes is a Gaussian naive Bayes classifier: per-class priors and
// independent per-predictor normal densities.
type NaiveBayes struct {
	Priors [2]float64   // absence, presence
	Mu     [2][]float64 // per class, per predictor
	Sigma  [2][]float64
}

// NewNaiveBayes creates an unfitted classifier.
func NewNaiveBayes() *NaiveBayes { return &NaiveBayes{} }

// Fit estimates priors and per-class normal densities from the dataset.
// Both classes must be represented.
func (nb *NaiveBayes) Fit(ds *Dataset) error {
	var byClass [2][][]float64
	for i, y := range ds.Y {
		c := 0
		if y {
			c = 1
		}
		byClass[c] = append(byClass[c], ds.X[i])
	}
	if len(byClass[0]) == 0 || len(byClass[1]) == 0 {
		return fmt.Errorf("naive bayes fit: both classes must be present (got %d absences, %d presences)",
			len(byClass[0]), len(byClass[1]))
	}

	for c := 0; c < 2; c++ {
		nb.Priors[c] = float64(len(byClass[c])) / float64(ds.Len())
		nb.Mu[c] = make([]float64, ds.NumVars())
		nb.Sigma[c] = make([]float64, ds.NumVars())
		col := make([]float64, len(byClass[c]))
		for v := 0; v < ds.NumVars(); v++ {
			for i, row := range byClass[c] {
				col[i] = row[v]
			}
			mu, sigma := stat.MeanStdDev(col, nil)
			if math.IsNaN(sigma) || sigma < minSigma {
				sigma = minSigma
			}
			nb.Mu[c][v] = mu
			nb.Sigma[c][v] = sigma
		}
	}
	return nil
}

// PredictProb returns the posterior presence probability.
func (nb *NaiveBayes) PredictProb(x []float64) float64 {
	var logLik [2]float64
	for c := 0; c < 2; c++ {
		logLik[c] = math.Log(nb.Priors[c])
		for v, xv := range x {
			n := distuv.Normal{Mu: nb.Mu[c][v], Sigma: nb.Sigma[c][v]}
			logLik[c] += n.LogProb(xv)
		}
	}
	// normalize in log space
	m := math.Max(logLik[0], logLik[1])
	p0 := math.Exp(logLik[0] - m)
	p1 := math.Exp(logLik[1] - m)
	return p1 / (p0 + p1)
}
