package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calluna-data/habimap/internal/occdb"
	"github.com/calluna-data/habimap/internal/occurrence"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/testutil"
)

// seedCache inserts a fetched-looking run straight into the cache so the
// pipeline can be driven without the network.
func seedCache(t *testing.T, cachePath, species string) {
	t.Helper()
	db, err := occdb.Open(cachePath)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.MigrateUp("../../migrations"))

	rng := rand.New(rand.NewSource(11))
	var records []occurrence.Record
	for i, p := range testutil.Presences(rng, 80) {
		records = append(records, occurrence.Record{
			Key:     int64(i + 1),
			Species: species,
			Lon:     p.Lon,
			Lat:     p.Lat,
			Year:    2024,
		})
	}
	box := occurrence.BBox{MinLon: 5, MinLat: 45, MaxLon: 15, MaxLat: 55}
	_, err = db.InsertRun(species, box, records)
	require.NoError(t, err)
}

func TestPipeline(t *testing.T) {
	base := t.TempDir()
	out := filepath.Join(base, "out")
	layers := filepath.Join(base, "layers")
	require.NoError(t, os.MkdirAll(layers, 0o755))
	testutil.WriteLayersDir(t, layers)

	cache := filepath.Join(base, "occurrences.db")
	species := "Carduelis carduelis"
	seedCache(t, cache, species)

	cfgPath := testutil.WriteRunConfig(t, base, fmt.Sprintf(`
		"species": %q,
		"min_lon": 5, "min_lat": 45, "max_lon": 15, "max_lat": 55,
		"cellsize": 0.5,
		"cache_path": %q,
		"layers_dir": %q,
		"output_dir": %q,
		"classifier": "tree",
		"exclusion_km": 0,
		"folds": 3,
		"threshold_min": 0.2, "threshold_max": 0.8, "threshold_step": 0.1,
		"shapley_samples": 30,
		"response_steps": 5,
		"seed": 3`, species, cache, layers, out))
	args := []string{"--config", cfgPath}

	require.NoError(t, handleStack(args))
	for _, name := range []string{predictorsFile, layersFile} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	require.NoError(t, handleSample(args))
	assert.FileExists(t, filepath.Join(out, samplesFile))
	assert.FileExists(t, filepath.Join(out, masksFile))
	assert.FileExists(t, filepath.Join(out, "predictor_temp.png"))
	assert.FileExists(t, filepath.Join(out, "predictor_precip.png"))

	require.NoError(t, handleTrain(args))
	assert.FileExists(t, filepath.Join(out, modelFile))

	require.NoError(t, handleCrossval(args))
	var summary Evaluation
	require.NoError(t, readJSON(out, evaluationFile, &summary))
	assert.Equal(t, "tree", summary.Classifier)
	assert.Len(t, summary.PerFold, 3)
	// presences sit in the warm south, so the model should have skill
	assert.Greater(t, summary.Best.Correlation, 0.3)

	require.NoError(t, handlePredict(args))
	suit, err := raster.ReadASC(filepath.Join(out, suitabilityFile))
	require.NoError(t, err)
	rng, err := raster.ReadASC(filepath.Join(out, rangeFile))
	require.NoError(t, err)
	for i, v := range suit.Values {
		if suit.Def.IsNodata(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		assert.Contains(t, []float64{0, 1}, rng.Values[i])
	}

	require.NoError(t, handleExplain(args))
	var expl Explanation
	require.NoError(t, readJSON(out, explanationFile, &expl))
	require.Equal(t, []string{"precip", "temp"}, expl.VarNames)
	require.Len(t, expl.Importance, 2)
	// temperature carries the signal
	tempIdx := 1
	assert.Greater(t, expl.Importance[tempIdx], expl.Importance[1-tempIdx])

	require.NoError(t, handleReport(args))
	html, err := os.ReadFile(filepath.Join(out, reportFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), species)
}

func TestModelGrid(t *testing.T) {
	t.Parallel()
	def := modelGrid(occurrence.BBox{MinLon: 5, MinLat: 45, MaxLon: 15, MaxLat: 55}, 0.5)
	assert.Equal(t, 20, def.Ncols)
	assert.Equal(t, 20, def.Nrows)
	assert.Equal(t, 5.0, def.Xll)
	assert.Equal(t, 45.0, def.Yll)
}

func TestHandleStack_NoLayers(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	cfgPath := testutil.WriteRunConfig(t, base, fmt.Sprintf(
		`"layers_dir": %q, "output_dir": %q`,
		filepath.Join(base, "empty"), filepath.Join(base, "out")))

	err := handleStack([]string{"--config", cfgPath})
	assert.ErrorContains(t, err, "no .asc layers")
}

func TestHandlePredict_MissingModel(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	out := filepath.Join(base, "out")
	layers := filepath.Join(base, "layers")
	require.NoError(t, os.MkdirAll(layers, 0o755))
	testutil.WriteLayersDir(t, layers)

	cfgPath := testutil.WriteRunConfig(t, base, fmt.Sprintf(`
		"min_lon": 5, "min_lat": 45, "max_lon": 15, "max_lat": 55,
		"cellsize": 0.5,
		"layers_dir": %q,
		"output_dir": %q`, layers, out))
	args := []string{"--config", cfgPath}

	require.NoError(t, handleStack(args))
	err := handlePredict(args)
	assert.ErrorContains(t, err, "load model")
}
