package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/calluna-data/habimap/internal/config"
	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
	"github.com/calluna-data/habimap/internal/sdm"
)

// newClassifier builds the configured classifier kind.
func newClassifier(cfg *config.RunConfig) (sdm.Classifier, error) {
	tree := sdm.TreeParams{MaxDepth: cfg.GetMaxDepth(), MinLeaf: cfg.GetMinLeaf()}
	bagging := sdm.BaggingParams{
		Members:     cfg.GetMembers(),
		VarFraction: cfg.GetVarFraction(),
		Tree:        tree,
		Seed:        cfg.GetSeed(),
	}
	return sdm.New(cfg.GetClassifier(), tree, bagging)
}

// loadDataset reads the predictor stack and the labelled coordinates and
// extracts the training matrix.
func loadDataset(dir string) (*sdm.Dataset, *raster.Stack, []sample.Labelled, error) {
	s, err := raster.ReadStack(filepath.Join(dir, predictorsFile))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load predictor stack (run \"habimap stack\" first): %w", err)
	}
	labelled, err := sample.ReadCoordinatesCSV(filepath.Join(dir, samplesFile))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load samples (run \"habimap sample\" first): %w", err)
	}
	ds, err := sdm.Extract(s, labelled)
	if err != nil {
		return nil, nil, nil, err
	}
	return ds, s, labelled, nil
}

// handleTrain fits the configured classifier on the sampled points and
// saves the model.
func handleTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
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
	defer monitoring.Stage("train")()

	ds, _, _, err := loadDataset(dir)
	if err != nil {
		return err
	}
	monitoring.Logf("training %s on %d points (%d predictors, prevalence %.2f)",
		cfg.GetClassifier(), ds.Len(), ds.NumVars(), ds.Prevalence())

	c, err := newClassifier(cfg)
	if err != nil {
		return err
	}
	if err := c.Fit(ds); err != nil {
		return fmt.Errorf("fit %s: %w", cfg.GetClassifier(), err)
	}

	if err := sdm.SaveModel(filepath.Join(dir, modelFile), c, ds.VarNames); err != nil {
		return err
	}
	monitoring.Logf("saved model to %s", filepath.Join(dir, modelFile))
	return nil
}
