package main

import (
	"flag"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/calluna-data/habimap/internal/explain"
	"github.com/calluna-data/habimap/internal/figures"
	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/sdm"
)

// maxShapleyPoints bounds how many training points the importance
// aggregation visits.
const maxShapleyPoints = 100

// handleExplain computes partial-response curves for every predictor and
// Shapley-based variable importance, and writes the figures.
func handleExplain(args []string) error {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
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
	defer monitoring.Stage("explain")()

	ds, _, _, err := loadDataset(dir)
	if err != nil {
		return err
	}
	model, err := sdm.LoadModel(filepath.Join(dir, modelFile))
	if err != nil {
		return fmt.Errorf("load model (run \"habimap train\" first): %w", err)
	}

	out := Explanation{VarNames: ds.VarNames}
	for v := range ds.VarNames {
		curve, err := explain.PartialResponse(model.Classifier, ds, v, cfg.GetResponseSteps())
		if err != nil {
			return fmt.Errorf("partial response for %s: %w", ds.VarNames[v], err)
		}
		out.Responses = append(out.Responses, curve)

		name := fmt.Sprintf("response_%s.png", ds.VarNames[v])
		if err := figures.PartialResponsePNG(curve, filepath.Join(dir, name)); err != nil {
			return err
		}
	}

	rng := rand.New(rand.NewSource(cfg.GetSeed()))
	out.Importance, err = explain.Importance(rng, model.Classifier, ds, cfg.GetShapleySamples(), maxShapleyPoints)
	if err != nil {
		return fmt.Errorf("shapley importance: %w", err)
	}

	if err := writeJSON(dir, explanationFile, out); err != nil {
		return err
	}
	if err := figures.ImportancePNG(ds.VarNames, out.Importance, "Variable importance (mean |Shapley|)", filepath.Join(dir, "importance.png")); err != nil {
		return err
	}
	monitoring.Logf("explained %d predictors", ds.NumVars())
	return nil
}
