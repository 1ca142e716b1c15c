// Package eval evaluates fitted classifiers: k-fold cross-validation,
// confusion-matrix skill metrics, and decision-threshold tuning.
package eval

import (
	"gonum.org/v1/gonum/stat"
)

// ConfusionMatrix counts binary classification outcomes.
type ConfusionMatrix struct {
	TP, FP, TN, FN int
}

// Confusion tallies predictions against observations at a threshold.
func Confusion(probs []float64, obs []bool, threshold float64) ConfusionMatrix {
	var cm ConfusionMatrix
	for i, p := range probs {
		pred := p >= threshold
		switch {
		case pred && obs[i]:
			cm.TP++
		case pred && !obs[i]:
			cm.FP++
		case !pred && obs[i]:
			cm.FN++
		default:
			cm.TN++
		}
	}
	return cm
}

// Total returns the number of scored instances.
func (cm ConfusionMatrix) Total() int { return cm.TP + cm.FP + cm.TN + cm.FN }

// Accuracy is the fraction of correct predictions.
func (cm ConfusionMatrix) Accuracy() float64 {
	n := cm.Total()
	if n == 0 {
		return 0
	}
	return float64(cm.TP+cm.TN) / float64(n)
}

// Sensitivity is the true-positive rate.
func (cm ConfusionMatrix) Sensitivity() float64 {
	if cm.TP+cm.FN == 0 {
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FN)
}

// Specificity is the true-negative rate.
func (cm ConfusionMatrix) Specificity() float64 {
	if cm.TN+cm.FP == 0 {
		return 0
	}
	return float64(cm.TN) / float64(cm.TN+cm.FP)
}

// TSS is the true skill statistic, sensitivity + specificity - 1.
func (cm ConfusionMatrix) TSS() float64 {
	return cm.Sensitivity() + cm.Specificity() - 1
}

// Kappa is Cohen's kappa: agreement corrected for chance.
func (cm ConfusionMatrix) Kappa() float64 {
	n := float64(cm.Total())
	if n == 0 {
		return 0
	}
	po := cm.Accuracy()
	pYes := (float64(cm.TP+cm.FP) / n) * (float64(cm.TP+cm.FN) / n)
	pNo := (float64(cm.TN+cm.FN) / n) * (float64(cm.TN+cm.FP) / n)
	pe := pYes + pNo
	if pe == 1 {
		return 0
	}
	return (po - pe) / (1 - pe)
}

// Correlation is the point-biserial correlation between binary predictions at
// the threshold and the observations. This is the skill score the lecture
// tunes the threshold against.
func Correlation(probs []float64, obs []bool, threshold float64) float64 {
	preds := make([]float64, len(probs))
	ys := make([]float64, len(obs))
	for i := range probs {
		if probs[i] >= threshold {
			preds[i] = 1
		}
		if obs[i] {
			ys[i] = 1
		}
	}
	r := stat.Correlation(preds, ys, nil)
	if r != r { // NaN when either side is constant
		return 0
	}
	return r
}
