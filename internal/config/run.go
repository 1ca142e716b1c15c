// Package config loads the pipeline run configuration from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calluna-data/habimap/internal/occurrence"
)

// RunConfig represents the root configuration for a modelling run. Fields
// are pointers so a partial JSON file only overrides what it names; the
// Get* methods supply defaults for everything else.
type RunConfig struct {
	// Study species and area
	Species *string  `json:"species,omitempty"`
	MinLon  *float64 `json:"min_lon,omitempty"`
	MinLat  *float64 `json:"min_lat,omitempty"`
	MaxLon  *float64 `json:"max_lon,omitempty"`
	MaxLat  *float64 `json:"max_lat,omitempty"`

	// Occurrence fetch params
	MaxRecords *int    `json:"max_records,omitempty"`
	CachePath  *string `json:"cache_path,omitempty"`

	// Predictor stack params
	LayersDir *string  `json:"layers_dir,omitempty"`
	Cellsize  *float64 `json:"cellsize,omitempty"`

	// Sampling params
	AbsenceRatio *float64 `json:"absence_ratio,omitempty"`
	ExclusionKm  *float64 `json:"exclusion_km,omitempty"`

	// Model params
	Classifier  *string  `json:"classifier,omitempty"` // "tree", "bagging" or "bayes"
	MaxDepth    *int     `json:"max_depth,omitempty"`
	MinLeaf     *int     `json:"min_leaf,omitempty"`
	Members     *int     `json:"members,omitempty"`
	VarFraction *float64 `json:"var_fraction,omitempty"`

	// Evaluation params
	Folds         *int     `json:"folds,omitempty"`
	ThresholdMin  *float64 `json:"threshold_min,omitempty"`
	ThresholdMax  *float64 `json:"threshold_max,omitempty"`
	ThresholdStep *float64 `json:"threshold_step,omitempty"`

	// Explanation params
	ShapleySamples *int `json:"shapley_samples,omitempty"`
	ResponseSteps  *int `json:"response_steps,omitempty"`

	// Run params
	Seed      *int64  `json:"seed,omitempty"`
	OutputDir *string `json:"output_dir,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Load reads a RunConfig from a JSON file. Fields omitted from the file
// retain their defaults, so partial configs are safe.
func Load(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RunConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.Species != nil && *c.Species == "" {
		return fmt.Errorf("species must not be empty")
	}

	if c.MinLon != nil || c.MaxLon != nil || c.MinLat != nil || c.MaxLat != nil {
		if c.MinLon == nil || c.MaxLon == nil || c.MinLat == nil || c.MaxLat == nil {
			return fmt.Errorf("bounding box needs all of min_lon, min_lat, max_lon, max_lat")
		}
		if err := c.GetBox().Validate(); err != nil {
			return fmt.Errorf("invalid bounding box: %w", err)
		}
	}

	if c.Cellsize != nil && *c.Cellsize <= 0 {
		return fmt.Errorf("cellsize must be positive, got %f", *c.Cellsize)
	}
	if c.AbsenceRatio != nil && *c.AbsenceRatio <= 0 {
		return fmt.Errorf("absence_ratio must be positive, got %f", *c.AbsenceRatio)
	}
	if c.ExclusionKm != nil && *c.ExclusionKm < 0 {
		return fmt.Errorf("exclusion_km must be non-negative, got %f", *c.ExclusionKm)
	}

	if c.Classifier != nil {
		switch *c.Classifier {
		case "tree", "bagging", "bayes":
		default:
			return fmt.Errorf("unknown classifier %q", *c.Classifier)
		}
	}
	if c.VarFraction != nil && (*c.VarFraction <= 0 || *c.VarFraction > 1) {
		return fmt.Errorf("var_fraction must be in (0, 1], got %f", *c.VarFraction)
	}

	if c.Folds != nil && *c.Folds < 2 {
		return fmt.Errorf("folds must be at least 2, got %d", *c.Folds)
	}
	if c.ThresholdStep != nil && *c.ThresholdStep <= 0 {
		return fmt.Errorf("threshold_step must be positive, got %f", *c.ThresholdStep)
	}
	if c.GetThresholdMin() > c.GetThresholdMax() {
		return fmt.Errorf("threshold_min %f exceeds threshold_max %f", c.GetThresholdMin(), c.GetThresholdMax())
	}

	if c.MaxRecords != nil && *c.MaxRecords <= 0 {
		return fmt.Errorf("max_records must be positive, got %d", *c.MaxRecords)
	}

	return nil
}

// GetSpecies returns the species value or the default.
func (c *RunConfig) GetSpecies() string {
	if c.Species == nil {
		return "Carduelis carduelis"
	}
	return *c.Species
}

// GetBox returns the study-area bounding box or the default.
func (c *RunConfig) GetBox() occurrence.BBox {
	if c.MinLon == nil || c.MinLat == nil || c.MaxLon == nil || c.MaxLat == nil {
		// central Europe
		return occurrence.BBox{MinLon: 5, MinLat: 45, MaxLon: 17, MaxLat: 55}
	}
	return occurrence.BBox{MinLon: *c.MinLon, MinLat: *c.MinLat, MaxLon: *c.MaxLon, MaxLat: *c.MaxLat}
}

// GetMaxRecords returns the max_records value or the default.
func (c *RunConfig) GetMaxRecords() int {
	if c.MaxRecords == nil {
		return 5000
	}
	return *c.MaxRecords
}

// GetCachePath returns the cache_path value or the default.
func (c *RunConfig) GetCachePath() string {
	if c.CachePath == nil {
		return "occurrences.db"
	}
	return *c.CachePath
}

// GetLayersDir returns the layers_dir value or the default.
func (c *RunConfig) GetLayersDir() string {
	if c.LayersDir == nil {
		return "layers"
	}
	return *c.LayersDir
}

// GetCellsize returns the cellsize value or the default.
func (c *RunConfig) GetCellsize() float64 {
	if c.Cellsize == nil {
		return 0.1
	}
	return *c.Cellsize
}

// GetAbsenceRatio returns the absence_ratio value or the default.
func (c *RunConfig) GetAbsenceRatio() float64 {
	if c.AbsenceRatio == nil {
		return 2.0
	}
	return *c.AbsenceRatio
}

// GetExclusionKm returns the exclusion_km value or the default.
func (c *RunConfig) GetExclusionKm() float64 {
	if c.ExclusionKm == nil {
		return 10.0
	}
	return *c.ExclusionKm
}

// GetClassifier returns the classifier value or the default.
func (c *RunConfig) GetClassifier() string {
	if c.Classifier == nil {
		return "bagging"
	}
	return *c.Classifier
}

// GetMaxDepth returns the max_depth value or the default.
func (c *RunConfig) GetMaxDepth() int {
	if c.MaxDepth == nil {
		return 6
	}
	return *c.MaxDepth
}

// GetMinLeaf returns the min_leaf value or the default.
func (c *RunConfig) GetMinLeaf() int {
	if c.MinLeaf == nil {
		return 5
	}
	return *c.MinLeaf
}

// GetMembers returns the members value or the default.
func (c *RunConfig) GetMembers() int {
	if c.Members == nil {
		return 25
	}
	return *c.Members
}

// GetVarFraction returns the var_fraction value or the default.
func (c *RunConfig) GetVarFraction() float64 {
	if c.VarFraction == nil {
		return 0.7
	}
	return *c.VarFraction
}

// GetFolds returns the folds value or the default.
func (c *RunConfig) GetFolds() int {
	if c.Folds == nil {
		return 5
	}
	return *c.Folds
}

// GetThresholdMin returns the threshold_min value or the default.
func (c *RunConfig) GetThresholdMin() float64 {
	if c.ThresholdMin == nil {
		return 0.05
	}
	return *c.ThresholdMin
}

// GetThresholdMax returns the threshold_max value or the default.
func (c *RunConfig) GetThresholdMax() float64 {
	if c.ThresholdMax == nil {
		return 0.95
	}
	return *c.ThresholdMax
}

// GetThresholdStep returns the threshold_step value or the default.
func (c *RunConfig) GetThresholdStep() float64 {
	if c.ThresholdStep == nil {
		return 0.05
	}
	return *c.ThresholdStep
}

// GetShapleySamples returns the shapley_samples value or the default.
func (c *RunConfig) GetShapleySamples() int {
	if c.ShapleySamples == nil {
		return 200
	}
	return *c.ShapleySamples
}

// GetResponseSteps returns the response_steps value or the default.
func (c *RunConfig) GetResponseSteps() int {
	if c.ResponseSteps == nil {
		return 25
	}
	return *c.ResponseSteps
}

// GetSeed returns the seed value or the default.
func (c *RunConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 42
	}
	return *c.Seed
}

// GetOutputDir returns the output_dir value or the default.
func (c *RunConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return "output"
	}
	return *c.OutputDir
}
