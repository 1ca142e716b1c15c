package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDef() Definition {
	return Definition{Ncols: 4, Nrows: 3, Xll: 10, Yll: 50, Cellsize: 0.5, Nodata: -9999}
}

func TestDefinition_Extent(t *testing.T) {
	t.Parallel()

	xmin, ymin, xmax, ymax := testDef().Extent()
	assert.Equal(t, 10.0, xmin)
	assert.Equal(t, 50.0, ymin)
	assert.Equal(t, 12.0, xmax)
	assert.Equal(t, 51.5, ymax)
}

func TestDefinition_CellIndex(t *testing.T) {
	t.Parallel()
	d := testDef()

	t.Run("lower left corner", func(t *testing.T) {
		t.Parallel()
		row, col, ok := d.CellIndex(10.0, 50.0)
		assert.True(t, ok)
		assert.Equal(t, 2, row) // row 0 is the northern edge
		assert.Equal(t, 0, col)
	})

	t.Run("upper right interior", func(t *testing.T) {
		t.Parallel()
		row, col, ok := d.CellIndex(11.9, 51.4)
		assert.True(t, ok)
		assert.Equal(t, 0, row)
		assert.Equal(t, 3, col)
	})

	t.Run("outside", func(t *testing.T) {
		t.Parallel()
		_, _, ok := d.CellIndex(9.9, 50.2)
		assert.False(t, ok)
		_, _, ok = d.CellIndex(10.2, 51.5) // ymax is exclusive
		assert.False(t, ok)
	})
}

func TestDefinition_CellCenterRoundTrip(t *testing.T) {
	t.Parallel()
	d := testDef()

	for row := 0; row < d.Nrows; row++ {
		for col := 0; col < d.Ncols; col++ {
			lon, lat := d.CellCenter(row, col)
			r2, c2, ok := d.CellIndex(lon, lat)
			assert.True(t, ok)
			assert.Equal(t, row, r2)
			assert.Equal(t, col, c2)
		}
	}
}

func TestDefinition_IsNodata(t *testing.T) {
	t.Parallel()
	d := testDef()

	assert.True(t, d.IsNodata(-9999))
	assert.True(t, d.IsNodata(math.NaN()))
	assert.False(t, d.IsNodata(0))
}

func TestDefinition_AlignedWith(t *testing.T) {
	t.Parallel()
	d := testDef()

	assert.True(t, d.AlignedWith(testDef()))

	shifted := testDef()
	shifted.Xll += 0.25
	assert.False(t, d.AlignedWith(shifted))

	// header rounding within tolerance still aligns
	rounded := testDef()
	rounded.Yll += 1e-12
	assert.True(t, d.AlignedWith(rounded))
}
