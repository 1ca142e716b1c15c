package sample

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/calluna-data/habimap/internal/raster"
)

// Masks builds the two-band presence/pseudo-absence mask raster: each band
// holds 1 on cells containing a point of its class and 0 elsewhere.
func Masks(def raster.Definition, presences, absences []Point) *raster.Stack {
	mark := func(pts []Point) []float64 {
		vals := make([]float64, def.NumCells())
		for _, p := range pts {
			if row, col, ok := def.CellIndex(p.Lon, p.Lat); ok {
				vals[row*def.Ncols+col] = 1
			}
		}
		return vals
	}
	return &raster.Stack{
		Def:   def,
		Names: []string{"presence", "absence"},
		Bands: [][]float64{mark(presences), mark(absences)},
	}
}

// WriteCoordinatesCSV dumps the labelled points as lon, lat, presence rows.
func WriteCoordinatesCSV(path string, points []Labelled) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write coordinates csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"lon", "lat", "presence"}); err != nil {
		return fmt.Errorf("write coordinates csv: %w", err)
	}
	for _, p := range points {
		label := "0"
		if p.Presence {
			label = "1"
		}
		row := []string{
			strconv.FormatFloat(p.Lon, 'g', -1, 64),
			strconv.FormatFloat(p.Lat, 'g', -1, 64),
			label,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write coordinates csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write coordinates csv %s: %w", path, err)
	}
	return nil
}

// ReadCoordinatesCSV loads a file written by WriteCoordinatesCSV.
func ReadCoordinatesCSV(path string) ([]Labelled, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read coordinates csv: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read coordinates csv %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read coordinates csv %s: empty file", path)
	}

	var points []Labelled
	for i, row := range rows[1:] { // skip header
		if len(row) != 3 {
			return nil, fmt.Errorf("read coordinates csv %s: row %d has %d fields", path, i+2, len(row))
		}
		lon, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("read coordinates csv %s: row %d lon: %w", path, i+2, err)
		}
		lat, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("read coordinates csv %s: row %d lat: %w", path, i+2, err)
		}
		points = append(points, Labelled{
			Point:    Point{Lon: lon, Lat: lat},
			Presence: row[2] == "1",
		})
	}
	return points, nil
}
