package figures

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calluna-data/habimap/internal/eval"
	"github.com/calluna-data/habimap/internal/explain"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
)

// assertPNG checks the figure was written and is non-trivial.
func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}

func figureBand() *raster.Band {
	def := raster.Definition{Ncols: 8, Nrows: 6, Xll: 5, Yll: 45, Cellsize: 1, Nodata: -9999}
	b := raster.NewBand("suitability", def)
	for i := range b.Values {
		b.Values[i] = float64(i % 10)
	}
	b.Set(0, 0, def.Nodata) // heatmap must tolerate nodata holes
	return b
}

func TestMapPNG(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "map.png")

	presences := []sample.Point{{Lon: 6.5, Lat: 47.5}}
	absences := []sample.Point{{Lon: 9.5, Lat: 49.5}, {Lon: 11.5, Lat: 46.5}}
	require.NoError(t, MapPNG(figureBand(), presences, absences, "Occurrences", path))
	assertPNG(t, path)
}

func TestThresholdCurvePNG(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "threshold.png")

	probs := []float64{0.9, 0.7, 0.4, 0.2}
	obs := []bool{true, true, false, false}
	best, curve, err := eval.Sweep(probs, obs, eval.Grid(0.1, 0.9, 0.1))
	require.NoError(t, err)

	require.NoError(t, ThresholdCurvePNG(curve, best, path))
	assertPNG(t, path)
}

func TestPartialResponsePNG(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "response.png")

	curve := &explain.Curve{
		VarName: "temp",
		X:       []float64{0, 1, 2, 3},
		Y:       []float64{0.1, 0.4, 0.8, 0.9},
	}
	require.NoError(t, PartialResponsePNG(curve, path))
	assertPNG(t, path)
}

func TestImportancePNG(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := filepath.Join(dir, "importance.png")
	require.NoError(t, ImportancePNG([]string{"temp", "precip"}, []float64{0.8, 0.3}, "Importance", path))
	assertPNG(t, path)

	err := ImportancePNG([]string{"temp"}, []float64{0.8, 0.3}, "Importance", filepath.Join(dir, "bad.png"))
	assert.Error(t, err)
}

func TestCVMetricsPNG(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cv.png")

	result := &eval.CVResult{
		Folds: []eval.FoldResult{
			{Fold: 0, Probs: []float64{0.9, 0.2}, Obs: []bool{true, false}},
			{Fold: 1, Probs: []float64{0.7, 0.4}, Obs: []bool{true, false}},
		},
	}
	require.NoError(t, CVMetricsPNG(result, 0.5, path))
	assertPNG(t, path)

	assert.Error(t, CVMetricsPNG(&eval.CVResult{}, 0.5, filepath.Join(t.TempDir(), "x.png")))
}

func TestRamp(t *testing.T) {
	t.Parallel()

	colors := Ramp{N: 8}.Colors()
	require.Len(t, colors, 8)
	// ramp runs blue to red
	first := colors[0].(color.RGBA)
	last := colors[7].(color.RGBA)
	assert.Greater(t, first.B, first.R)
	assert.Greater(t, last.R, last.B)

	assert.Nil(t, Ramp{}.Colors())
	assert.Len(t, Ramp{N: 1}.Colors(), 1)
	assert.Len(t, LineColors(3), 3)
	assert.Nil(t, LineColors(0))
}
