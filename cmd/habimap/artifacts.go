package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calluna-data/habimap/internal/eval"
	"github.com/calluna-data/habimap/internal/explain"
)

// File names of the artifacts the stages pass between each other, all
// relative to the output directory.
const (
	predictorsFile  = "predictors.hstk"
	layersFile      = "layers.csv"
	samplesFile     = "coordinates.csv"
	masksFile       = "masks.hstk"
	modelFile       = "model.gob"
	evaluationFile  = "evaluation.json"
	explanationFile = "explanation.json"
	suitabilityFile = "suitability.asc"
	rangeFile       = "range.asc"
	reportFile      = "report.html"
)

// Evaluation is the crossval stage's summary, consumed by predict and
// report.
type Evaluation struct {
	Classifier string                `json:"classifier"`
	Folds      int                   `json:"folds"`
	Best       eval.ThresholdPoint   `json:"best"`
	Curve      []eval.ThresholdPoint `json:"curve"`
	Pooled     eval.ConfusionMatrix  `json:"pooled"`
	PerFold    []FoldMetrics         `json:"per_fold"`
}

// FoldMetrics is one fold's skill at the chosen threshold.
type FoldMetrics struct {
	Fold        int     `json:"fold"`
	Accuracy    float64 `json:"accuracy"`
	Sensitivity float64 `json:"sensitivity"`
	Specificity float64 `json:"specificity"`
	TSS         float64 `json:"tss"`
}

// Explanation is the explain stage's summary, consumed by report.
type Explanation struct {
	VarNames   []string         `json:"var_names"`
	Importance []float64        `json:"importance"`
	Responses  []*explain.Curve `json:"responses"`
}

func writeJSON(dir, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func readJSON(dir, name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
