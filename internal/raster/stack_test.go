package raster

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testStack(t *testing.T) *Stack {
	t.Helper()
	def := testDef()
	elev := rampBand("elev", def)
	temp := rampBand("temp", def)
	temp.Set(0, 0, def.Nodata) // hole in one band only
	s, err := BuildStack([]*Band{elev, temp})
	require.NoError(t, err)
	return s
}

func TestBuildStack(t *testing.T) {
	t.Parallel()

	t.Run("shared nodata footprint", func(t *testing.T) {
		t.Parallel()
		s := testStack(t)
		// the hole in temp is propagated to elev
		assert.Equal(t, s.Def.Nodata, s.Bands[0][0])
		assert.Equal(t, s.Def.Nodata, s.Bands[1][0])
		assert.False(t, s.IsData(0))
		assert.True(t, s.IsData(1))
	})

	t.Run("misaligned bands error", func(t *testing.T) {
		t.Parallel()
		a := rampBand("a", testDef())
		other := testDef()
		other.Xll += 1
		b := rampBand("b", other)
		_, err := BuildStack([]*Band{a, b})
		assert.ErrorContains(t, err, "different grid")
	})

	t.Run("empty input errors", func(t *testing.T) {
		t.Parallel()
		_, err := BuildStack(nil)
		assert.Error(t, err)
	})

	t.Run("input bands are not mutated", func(t *testing.T) {
		t.Parallel()
		def := testDef()
		a := rampBand("a", def)
		b := rampBand("b", def)
		b.Set(0, 0, def.Nodata)
		_, err := BuildStack([]*Band{a, b})
		require.NoError(t, err)
		assert.Equal(t, 0.0, a.At(0, 0))
	})
}

func TestStack_Accessors(t *testing.T) {
	t.Parallel()
	s := testStack(t)

	assert.Equal(t, 2, s.NumBands())
	assert.Nil(t, s.Band("absent"))
	assert.Equal(t, "temp", s.Band("temp").Name)
	assert.Equal(t, "elev", s.BandAt(0).Name)

	cells := s.DataCells()
	assert.Len(t, cells, s.Def.NumCells()-1)
	assert.NotContains(t, cells, 0)

	v := s.ValuesAt(5)
	assert.Equal(t, []float64{5, 5}, v)

	// cell 0 was masked out
	_, ok := s.ExtractAt(10.1, 51.4)
	assert.False(t, ok)
	v, ok = s.ExtractAt(10.75, 50.75) // row 1, col 1 -> index 5
	require.True(t, ok)
	assert.Equal(t, []float64{5, 5}, v)
}

func TestStack_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "predictors.stack")

	s := testStack(t)
	require.NoError(t, s.WriteStack(path))

	got, err := ReadStack(path)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(s, got))
}

func TestReadStack_BadMagic(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "junk.stack")
	writeFile(t, path, "not a stack")

	_, err := ReadStack(path)
	assert.ErrorContains(t, err, "bad magic")
}

func TestStack_WriteLayersCSV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "layers.csv")

	s := testStack(t)
	require.NoError(t, s.WriteLayersCSV(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	want := [][]string{{"band", "name"}, {"1", "elev"}, {"2", "temp"}}
	assert.Equal(t, want, rows)
}
