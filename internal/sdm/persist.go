package sdm

import (
	"encoding/gob"
	"fmt"
	"os"
)

func init() {
	gob.Register(&Tree{})
	gob.Register(&Bagging{})
	gob.Register(&NaiveBayes{})
}

// Model is the on-disk envelope for a fitted classifier, carrying the
// predictor names it was trained on so later stages can check band order.
type Model struct {
	VarNames   []string
	Classifier Classifier
}

// SaveModel writes a fitted classifier to path with encoding/gob.
func SaveModel(path string, c Classifier, varNames []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(&Model{VarNames: varNames, Classifier: c}); err != nil {
		return fmt.Errorf("save model %s: %w", path, err)
	}
	return nil
}

// LoadModel reads a model written by SaveModel.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	defer f.Close()

	var m Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	if m.Classifier == nil {
		return nil, fmt.Errorf("load model %s: no classifier payload", path)
	}
	return &m, nil
}

// New builds an unfitted classifier by kind name: "tree", "bagging", or
// "bayes".
func New(kind string, tree TreeParams, bagging BaggingParams) (Classifier, error) {
	switch kind {
	case "tree":
		return NewTree(tree), nil
	case "bagging":
		bagging.Tree = tree
		return NewBagging(bagging), nil
	case "bayes":
		return NewNaiveBayes(), nil
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", kind)
	}
}
