package raster

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// defaultNodata is assumed when an ASCII grid omits the NODATA_value header.
const defaultNodata = -9999

// ReadASC reads an ESRI ASCII grid. The band name is the file's base name
// without extension.
func ReadASC(path string) (*Band, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read asc: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	var def Definition
	def.Nodata = defaultNodata
	var haveCols, haveRows, haveX, haveY, haveSize bool
	var xCenter, yCenter bool

	// header: key/value lines until the first line that does not start with
	// a letter
	var firstData string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		if key[0] >= '0' && key[0] <= '9' || key[0] == '-' || key[0] == '.' {
			firstData = line
			break
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("read asc %s: malformed header line %q", path, line)
		}
		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("read asc %s: header %s: %w", path, key, err)
		}
		switch key {
		case "ncols":
			def.Ncols, haveCols = int(val), true
		case "nrows":
			def.Nrows, haveRows = int(val), true
		case "xllcorner":
			def.Xll, haveX = val, true
		case "yllcorner":
			def.Yll, haveY = val, true
		case "xllcenter":
			def.Xll, haveX, xCenter = val, true, true
		case "yllcenter":
			def.Yll, haveY, yCenter = val, true, true
		case "cellsize":
			def.Cellsize, haveSize = val, true
		case "nodata_value":
			def.Nodata = val
		default:
			return nil, fmt.Errorf("read asc %s: unknown header key %q", path, key)
		}
	}
	if !haveCols || !haveRows || !haveX || !haveY || !haveSize {
		return nil, fmt.Errorf("read asc %s: incomplete header", path)
	}
	if def.Ncols <= 0 || def.Nrows <= 0 || def.Cellsize <= 0 {
		return nil, fmt.Errorf("read asc %s: invalid dimensions %dx%d cellsize %g", path, def.Ncols, def.Nrows, def.Cellsize)
	}
	// xllcenter/yllcenter headers give the center of the lower-left cell
	if xCenter {
		def.Xll -= def.Cellsize / 2
	}
	if yCenter {
		def.Yll -= def.Cellsize / 2
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	b := &Band{Name: name, Def: def, Values: make([]float64, 0, def.NumCells())}

	parseLine := func(line string) error {
		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return fmt.Errorf("read asc %s: value %q: %w", path, tok, err)
			}
			b.Values = append(b.Values, v)
		}
		return nil
	}
	if firstData != "" {
		if err := parseLine(firstData); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		if err := parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read asc %s: %w", path, err)
	}
	if len(b.Values) != def.NumCells() {
		return nil, fmt.Errorf("read asc %s: got %d values, want %d", path, len(b.Values), def.NumCells())
	}
	return b, nil
}

// WriteASC writes the band as an ESRI ASCII grid.
func (b *Band) WriteASC(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write asc: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	d := b.Def
	fmt.Fprintf(w, "ncols %d\n", d.Ncols)
	fmt.Fprintf(w, "nrows %d\n", d.Nrows)
	fmt.Fprintf(w, "xllcorner %g\n", d.Xll)
	fmt.Fprintf(w, "yllcorner %g\n", d.Yll)
	fmt.Fprintf(w, "cellsize %g\n", d.Cellsize)
	fmt.Fprintf(w, "NODATA_value %g\n", d.Nodata)
	for row := 0; row < d.Nrows; row++ {
		for col := 0; col < d.Ncols; col++ {
			if col > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, "%g", b.At(row, col))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write asc %s: %w", path, err)
	}
	return nil
}
