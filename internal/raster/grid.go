// Package raster provides the regular lat/lon grids the pipeline models on:
// single predictor bands read from ESRI ASCII grids, and multi-band stacks
// aligned onto one shared grid definition.
package raster

import "math"

// Definition describes a regular geographic grid. Cells are Cellsize degrees
// square; (Xll, Yll) is the outer corner of the lower-left cell. Values are
// stored row-major with row 0 at the northern edge, matching the ESRI ASCII
// grid layout.
type Definition struct {
	Ncols    int     `json:"ncols"`
	Nrows    int     `json:"nrows"`
	Xll      float64 `json:"xll"`
	Yll      float64 `json:"yll"`
	Cellsize float64 `json:"cellsize"`
	Nodata   float64 `json:"nodata"`
}

// NumCells returns the total cell count.
func (d Definition) NumCells() int { return d.Ncols * d.Nrows }

// Extent returns the outer bounds of the grid as xmin, ymin, xmax, ymax.
func (d Definition) Extent() (xmin, ymin, xmax, ymax float64) {
	return d.Xll, d.Yll, d.Xll + float64(d.Ncols)*d.Cellsize, d.Yll + float64(d.Nrows)*d.Cellsize
}

// CellIndex maps a coordinate to its containing cell. ok is false when the
// coordinate falls outside the grid.
func (d Definition) CellIndex(lon, lat float64) (row, col int, ok bool) {
	_, _, xmax, ymax := d.Extent()
	if lon < d.Xll || lon >= xmax || lat < d.Yll || lat >= ymax {
		return 0, 0, false
	}
	col = int((lon - d.Xll) / d.Cellsize)
	row = int((ymax - lat) / d.Cellsize)
	if col >= d.Ncols {
		col = d.Ncols - 1
	}
	if row >= d.Nrows {
		row = d.Nrows - 1
	}
	return row, col, true
}

// CellCenter returns the coordinate at the center of the given cell.
func (d Definition) CellCenter(row, col int) (lon, lat float64) {
	lon = d.Xll + (float64(col)+0.5)*d.Cellsize
	lat = d.Yll + (float64(d.Nrows-row)-0.5)*d.Cellsize
	return lon, lat
}

// IsNodata reports whether v is the nodata marker of this grid. NaN is always
// treated as nodata.
func (d Definition) IsNodata(v float64) bool {
	return math.IsNaN(v) || v == d.Nodata
}

// AlignedWith reports whether two definitions describe the same grid. Origins
// and cell size are compared with a small tolerance to absorb header rounding.
func (d Definition) AlignedWith(o Definition) bool {
	const eps = 1e-9
	return d.Ncols == o.Ncols && d.Nrows == o.Nrows &&
		math.Abs(d.Xll-o.Xll) < eps && math.Abs(d.Yll-o.Yll) < eps &&
		math.Abs(d.Cellsize-o.Cellsize) < eps
}
