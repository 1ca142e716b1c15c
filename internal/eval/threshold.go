package eval

import "fmt"

// ThresholdPoint is one point of a threshold sweep.
type ThresholdPoint struct {
	Threshold   float64
	Correlation float64
	TSS         float64
	Kappa       float64
	Accuracy    float64
}

// Sweep scores every threshold in the grid against the pooled scores and
// returns the curve plus the best threshold by correlation skill. Ties go to
// the lower threshold.
func Sweep(probs []float64, obs []bool, grid []float64) (best ThresholdPoint, curve []ThresholdPoint, err error) {
	if len(grid) == 0 {
		return best, nil, fmt.Errorf("threshold sweep: empty grid")
	}
	if len(probs) == 0 || len(probs) != len(obs) {
		return best, nil, fmt.Errorf("threshold sweep: %d probs vs %d observations", len(probs), len(obs))
	}

	for i, th := range grid {
		cm := Confusion(probs, obs, th)
		pt := ThresholdPoint{
			Threshold:   th,
			Correlation: Correlation(probs, obs, th),
			TSS:         cm.TSS(),
			Kappa:       cm.Kappa(),
			Accuracy:    cm.Accuracy(),
		}
		curve = append(curve, pt)
		if i == 0 || pt.Correlation > best.Correlation {
			best = pt
		}
	}
	return best, curve, nil
}

// Grid builds an inclusive threshold grid from min to max in the given step.
func Grid(min, max, step float64) []float64 {
	if step <= 0 || min > max {
		return nil
	}
	var grid []float64
	// tolerance absorbs accumulated float error at the top end
	for th := min; th <= max+step/1000; th += step {
		grid = append(grid, th)
	}
	return grid
}
