package testutil

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradientBands(t *testing.T) {
	t.Parallel()
	def := StudyDef()

	temp := TempGradientBand()
	// south (last row) warmer than north (row 0)
	assert.Greater(t, temp.At(def.Nrows-1, 0), temp.At(0, 0))

	precip := PrecipGradientBand()
	// east wetter than west
	assert.Greater(t, precip.At(0, def.Ncols-1), precip.At(0, 0))
}

func TestStack(t *testing.T) {
	t.Parallel()
	s := Stack(t)
	assert.Equal(t, []string{"temp", "precip"}, s.Names)
	assert.Len(t, s.DataCells(), StudyDef().NumCells())
}

func TestPresences(t *testing.T) {
	t.Parallel()
	def := StudyDef()
	_, ymin, _, ymax := def.Extent()

	pts := Presences(rand.New(rand.NewSource(3)), 50)
	require.Len(t, pts, 50)
	for _, p := range pts {
		// all presences sit in the warm southern half
		assert.GreaterOrEqual(t, p.Lat, ymin)
		assert.Less(t, p.Lat, (ymin+ymax)/2)
	}
}

func TestWriteLayersDir(t *testing.T) {
	t.Parallel()
	paths := WriteLayersDir(t, t.TempDir())
	require.Len(t, paths, 2)
}
