// Package testutil provides shared fixtures for pipeline tests.
//
// The fixtures build a tiny synthetic study area with a warm south and a
// cold north, so classifiers trained on it have an obvious signal to find.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
)

// StudyDef is the grid every fixture layer uses: a 10x10 degree-ish block
// over central Europe at 0.5 degree resolution.
func StudyDef() raster.Definition {
	return raster.Definition{Ncols: 20, Nrows: 20, Xll: 5, Yll: 45, Cellsize: 0.5, Nodata: -9999}
}

// TempGradientBand returns a band that decreases from south to north,
// mimicking mean temperature.
func TempGradientBand() *raster.Band {
	def := StudyDef()
	b := raster.NewBand("temp", def)
	for r := 0; r < def.Nrows; r++ {
		for c := 0; c < def.Ncols; c++ {
			b.Set(r, c, 15-0.5*float64(def.Nrows-1-r))
		}
	}
	return b
}

// PrecipGradientBand returns a band that increases from west to east.
func PrecipGradientBand() *raster.Band {
	def := StudyDef()
	b := raster.NewBand("precip", def)
	for r := 0; r < def.Nrows; r++ {
		for c := 0; c < def.Ncols; c++ {
			b.Set(r, c, 400+30*float64(c))
		}
	}
	return b
}

// Stack builds the two-band predictor stack from the gradient layers.
func Stack(t *testing.T) *raster.Stack {
	t.Helper()
	s, err := raster.BuildStack([]*raster.Band{TempGradientBand(), PrecipGradientBand()})
	if err != nil {
		t.Fatalf("build fixture stack: %v", err)
	}
	return s
}

// WriteLayersDir writes the gradient layers as .asc files under dir and
// returns their paths.
func WriteLayersDir(t *testing.T, dir string) []string {
	t.Helper()
	paths := make([]string, 0, 2)
	for _, b := range []*raster.Band{TempGradientBand(), PrecipGradientBand()} {
		path := filepath.Join(dir, b.Name+".asc")
		if err := b.WriteASC(path); err != nil {
			t.Fatalf("write fixture layer %s: %v", b.Name, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// Presences samples n points from the warm southern half of the study
// area, one per cell at most after thinning.
func Presences(rng *rand.Rand, n int) []sample.Point {
	def := StudyDef()
	xmin, ymin, xmax, _ := def.Extent()
	pts := make([]sample.Point, n)
	for i := range pts {
		pts[i] = sample.Point{
			Lon: xmin + rng.Float64()*(xmax-xmin),
			Lat: ymin + rng.Float64()*float64(def.Nrows)/2*def.Cellsize,
		}
	}
	return pts
}

// WriteRunConfig writes a run config JSON with the given body fields into
// dir and returns its path. Pass an empty string for an all-defaults file.
func WriteRunConfig(t *testing.T, dir, fields string) string {
	t.Helper()
	path := filepath.Join(dir, "run.json")
	body := fmt.Sprintf("{%s}", fields)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture config: %v", err)
	}
	return path
}
