package raster

import (
	"fmt"
	"math"
)

// Band is a single predictor layer on a grid.
type Band struct {
	Name   string
	Def    Definition
	Values []float64 // row-major, row 0 at the northern edge
}

// NewBand allocates a band filled with the grid's nodata marker.
func NewBand(name string, def Definition) *Band {
	vals := make([]float64, def.NumCells())
	for i := range vals {
		vals[i] = def.Nodata
	}
	return &Band{Name: name, Def: def, Values: vals}
}

// At returns the value at (row, col).
func (b *Band) At(row, col int) float64 {
	return b.Values[row*b.Def.Ncols+col]
}

// Set assigns the value at (row, col).
func (b *Band) Set(row, col int, v float64) {
	b.Values[row*b.Def.Ncols+col] = v
}

// ValueAt returns the value of the cell containing (lon, lat). ok is false
// outside the grid or on a nodata cell.
func (b *Band) ValueAt(lon, lat float64) (v float64, ok bool) {
	row, col, ok := b.Def.CellIndex(lon, lat)
	if !ok {
		return 0, false
	}
	v = b.At(row, col)
	if b.Def.IsNodata(v) {
		return 0, false
	}
	return v, true
}

// Trim crops the band to the cells whose centers fall inside the bounding
// box. Returns an error when the box misses the grid entirely.
func (b *Band) Trim(xmin, ymin, xmax, ymax float64) (*Band, error) {
	d := b.Def
	c0, c1 := d.Ncols, -1
	r0, r1 := d.Nrows, -1
	for row := 0; row < d.Nrows; row++ {
		for col := 0; col < d.Ncols; col++ {
			lon, lat := d.CellCenter(row, col)
			if lon < xmin || lon > xmax || lat < ymin || lat > ymax {
				continue
			}
			if col < c0 {
				c0 = col
			}
			if col > c1 {
				c1 = col
			}
			if row < r0 {
				r0 = row
			}
			if row > r1 {
				r1 = row
			}
		}
	}
	if c1 < c0 || r1 < r0 {
		return nil, fmt.Errorf("trim: box (%g,%g)-(%g,%g) does not intersect band %q", xmin, ymin, xmax, ymax, b.Name)
	}

	nd := Definition{
		Ncols:    c1 - c0 + 1,
		Nrows:    r1 - r0 + 1,
		Xll:      d.Xll + float64(c0)*d.Cellsize,
		Yll:      d.Yll + float64(d.Nrows-r1-1)*d.Cellsize,
		Cellsize: d.Cellsize,
		Nodata:   d.Nodata,
	}
	out := NewBand(b.Name, nd)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			out.Set(row-r0, col-c0, b.At(row, col))
		}
	}
	return out, nil
}

// Mask sets nodata in the band wherever the mask band holds nodata. The mask
// must share the band's grid definition.
func (b *Band) Mask(mask *Band) error {
	if !b.Def.AlignedWith(mask.Def) {
		return fmt.Errorf("mask: band %q and mask %q are on different grids", b.Name, mask.Name)
	}
	for i, v := range mask.Values {
		if mask.Def.IsNodata(v) {
			b.Values[i] = b.Def.Nodata
		}
	}
	return nil
}

// Resample interpolates the band onto a new grid definition. Interpolation is
// bilinear between cell centers; where any of the four surrounding source
// cells is nodata the nearest cell value is used instead, and cells outside
// the source grid come out as nodata.
func (b *Band) Resample(def Definition) *Band {
	out := NewBand(b.Name, def)
	src := b.Def
	_, _, _, symax := src.Extent()

	for row := 0; row < def.Nrows; row++ {
		for col := 0; col < def.Ncols; col++ {
			lon, lat := def.CellCenter(row, col)

			// fractional position in source cell-center space
			gx := (lon - src.Xll) / src.Cellsize
			gy := (symax - lat) / src.Cellsize
			fx := gx - 0.5
			fy := gy - 0.5

			c0 := int(math.Floor(fx))
			r0 := int(math.Floor(fy))
			c1, r1 := c0+1, r0+1
			if c0 < 0 || r0 < 0 || c1 >= src.Ncols || r1 >= src.Nrows {
				// edge cells fall back to the containing cell
				if sr, sc, ok := src.CellIndex(lon, lat); ok {
					out.Set(row, col, b.At(sr, sc))
				}
				continue
			}

			v00 := b.At(r0, c0)
			v01 := b.At(r0, c1)
			v10 := b.At(r1, c0)
			v11 := b.At(r1, c1)
			if src.IsNodata(v00) || src.IsNodata(v01) || src.IsNodata(v10) || src.IsNodata(v11) {
				if sr, sc, ok := src.CellIndex(lon, lat); ok {
					out.Set(row, col, b.At(sr, sc))
				}
				continue
			}

			tx := fx - float64(c0)
			ty := fy - float64(r0)
			top := v00*(1-tx) + v01*tx
			bot := v10*(1-tx) + v11*tx
			out.Set(row, col, top*(1-ty)+bot*ty)
		}
	}
	return out
}
