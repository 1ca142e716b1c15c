// Package sdm holds the species-distribution classifiers used in the lecture:
// a CART decision tree, a bagged tree ensemble, and Gaussian naive Bayes, all
// behind one Classifier interface.
package sdm

import (
	"fmt"

	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
)

// Dataset is a labelled design matrix: one row of predictor values per point,
// presence/absence labels, and the predictor names in column order.
type Dataset struct {
	VarNames []string
	X        [][]float64
	Y        []bool
}

// Extract builds a dataset by reading the predictor stack at each labelled
// point. Points outside the grid or on nodata cells are dropped.
func Extract(s *raster.Stack, points []sample.Labelled) (*Dataset, error) {
	ds := &Dataset{VarNames: append([]string(nil), s.Names...)}
	for _, p := range points {
		v, ok := s.ExtractAt(p.Lon, p.Lat)
		if !ok {
			continue
		}
		ds.X = append(ds.X, v)
		ds.Y = append(ds.Y, p.Presence)
	}
	if len(ds.X) == 0 {
		return nil, fmt.Errorf("extract: no labelled points fall on data cells")
	}
	return ds, nil
}

// Len returns the number of instances.
func (d *Dataset) Len() int { return len(d.X) }

// NumVars returns the number of predictors.
func (d *Dataset) NumVars() int { return len(d.VarNames) }

// Prevalence returns the presence fraction.
func (d *Dataset) Prevalence() float64 {
	if len(d.Y) == 0 {
		return 0
	}
	n := 0
	for _, y := range d.Y {
		if y {
			n++
		}
	}
	return float64(n) / float64(len(d.Y))
}

// Subset returns a dataset view of the given rows. Rows are shared, not
// copied.
func (d *Dataset) Subset(rows []int) *Dataset {
	out := &Dataset{VarNames: d.VarNames}
	for _, r := range rows {
		out.X = append(out.X, d.X[r])
		out.Y = append(out.Y, d.Y[r])
	}
	return out
}

// Classifier is the common contract of the lecture's models.
type Classifier interface {
	// Fit trains the classifier on the dataset.
	Fit(ds *Dataset) error
	// PredictProb returns the presence probability for one predictor vector.
	PredictProb(x []float64) float64
}

// PredictClass applies a decision threshold to a probability.
func PredictClass(c Classifier, x []float64, threshold float64) bool {
	return c.PredictProb(x) >= threshold
}
