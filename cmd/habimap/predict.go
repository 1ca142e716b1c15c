package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/calluna-data/habimap/internal/figures"
	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
	"github.com/calluna-data/habimap/internal/sdm"
)

// handlePredict applies the saved model to every data cell and writes the
// continuous suitability surface, the thresholded range map and the map
// figure.
func handlePredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	cfgPath, outputDir := commonFlags(fs)
	threshold := fs.Float64("threshold", 0, "decision threshold override (0 uses the tuned value)")
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
	defer monitoring.Stage("predict")()

	s, err := raster.ReadStack(filepath.Join(dir, predictorsFile))
	if err != nil {
		return fmt.Errorf("load predictor stack (run \"habimap stack\" first): %w", err)
	}
	model, err := sdm.LoadModel(filepath.Join(dir, modelFile))
	if err != nil {
		return fmt.Errorf("load model (run \"habimap train\" first): %w", err)
	}
	if len(model.VarNames) != s.NumBands() {
		return fmt.Errorf("model expects %d predictors, stack has %d", len(model.VarNames), s.NumBands())
	}

	t := *threshold
	if t == 0 {
		var summary Evaluation
		if err := readJSON(dir, evaluationFile, &summary); err != nil {
			return fmt.Errorf("no tuned threshold (run \"habimap crossval\" or pass --threshold): %w", err)
		}
		t = summary.Best.Threshold
	}

	suitability := raster.NewBand("suitability", s.Def)
	rangeMap := raster.NewBand("range", s.Def)
	for _, i := range s.DataCells() {
		p := model.Classifier.PredictProb(s.ValuesAt(i))
		suitability.Values[i] = p
		if p >= t {
			rangeMap.Values[i] = 1
		} else {
			rangeMap.Values[i] = 0
		}
	}

	if err := suitability.WriteASC(filepath.Join(dir, suitabilityFile)); err != nil {
		return err
	}
	if err := rangeMap.WriteASC(filepath.Join(dir, rangeFile)); err != nil {
		return err
	}

	// overlay the training points when they are around
	var presences, absences []sample.Point
	if labelled, err := sample.ReadCoordinatesCSV(filepath.Join(dir, samplesFile)); err == nil {
		for _, l := range labelled {
			if l.Presence {
				presences = append(presences, l.Point)
			} else {
				absences = append(absences, l.Point)
			}
		}
	}
	title := fmt.Sprintf("Suitability: %s (threshold %.2f)", cfg.GetSpecies(), t)
	if err := figures.MapPNG(suitability, presences, absences, title, filepath.Join(dir, "suitability.png")); err != nil {
		return err
	}

	monitoring.Logf("predicted %d cells at threshold %.2f", len(s.DataCells()), t)
	return nil
}
