package main

import (
	"flag"
	"math/rand"
	"path/filepath"

	"github.com/calluna-data/habimap/internal/eval"
	"github.com/calluna-data/habimap/internal/figures"
	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/sdm"
)

// handleCrossval runs stratified k-fold cross-validation, tunes the
// decision threshold on the pooled out-of-fold predictions and writes the
// evaluation summary and figures.
func handleCrossval(args []string) error {
	fs := flag.NewFlagSet("crossval", flag.ExitOnError)
	cfgPath, outputDir := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadRunConfig(*cfgPath)
	if err != nil {
		return err
	}
	dir, err := outDir(*outputDir, cfg)
	if err != nil {
		return err
	}
	defer monitoring.Stage("crossval")()

	ds, _, _, err := loadDataset(dir)
	if err != nil {
		return err
	}

	factory := func() sdm.Classifier {
		c, err := newClassifier(cfg)
		if err != nil {
			// config was validated on load, kinds cannot be unknown here
			panic(err)
		}
		return c
	}

	rng := rand.New(rand.NewSource(cfg.GetSeed()))
	result, err := eval.CrossValidate(rng, ds, factory, cfg.GetFolds())
	if err != nil {
		return err
	}

	grid := eval.Grid(cfg.GetThresholdMin(), cfg.GetThresholdMax(), cfg.GetThresholdStep())
	best, curve, err := eval.Sweep(result.Probs, result.Obs, grid)
	if err != nil {
		return err
	}
	monitoring.Logf("best threshold %.2f: r=%.3f TSS=%.3f kappa=%.3f accuracy=%.3f",
		best.Threshold, best.Correlation, best.TSS, best.Kappa, best.Accuracy)

	summary := Evaluation{
		Classifier: cfg.GetClassifier(),
		Folds:      cfg.GetFolds(),
		Best:       best,
		Curve:      curve,
		Pooled:     result.Confusion(best.Threshold),
	}
	for _, fold := range result.Folds {
		cm := eval.Confusion(fold.Probs, fold.Obs, best.Threshold)
		summary.PerFold = append(summary.PerFold, FoldMetrics{
			Fold:        fold.Fold,
			Accuracy:    cm.Accuracy(),
			Sensitivity: cm.Sensitivity(),
			Specificity: cm.Specificity(),
			TSS:         cm.TSS(),
		})
	}
	if err := writeJSON(dir, evaluationFile, summary); err != nil {
		return err
	}

	if err := figures.ThresholdCurvePNG(curve, best, filepath.Join(dir, "threshold.png")); err != nil {
		return err
	}
	return figures.CVMetricsPNG(result, best.Threshold, filepath.Join(dir, "cv_folds.png"))
}
