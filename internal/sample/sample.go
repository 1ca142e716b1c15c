// Package sample builds the labelled point set for model training: presences
// thinned to one per grid cell and pseudo-absences drawn away from them.
package sample

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/calluna-data/habimap/internal/occurrence"
	"github.com/calluna-data/habimap/internal/raster"
)

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lon float64
	Lat float64
}

// Labelled pairs a point with its class: true for presence, false for
// pseudo-absence.
type Labelled struct {
	Point
	Presence bool
}

// FromRecords extracts the coordinates of occurrence records.
func FromRecords(records []occurrence.Record) []Point {
	pts := make([]Point, 0, len(records))
	for _, r := range records {
		pts = append(pts, Point{Lon: r.Lon, Lat: r.Lat})
	}
	return pts
}

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(a, b Point) float64 {
	const degToRad = math.Pi / 180
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad
	lat1 := a.Lat * degToRad
	lat2 := b.Lat * degToRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Thin reduces the point set to at most one point per grid cell, keeping the
// first point seen in each cell. Points outside the grid are dropped.
func Thin(points []Point, def raster.Definition) []Point {
	seen := make(map[int]bool)
	var out []Point
	for _, p := range points {
		row, col, ok := def.CellIndex(p.Lon, p.Lat)
		if !ok {
			continue
		}
		idx := row*def.Ncols + col
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, p)
	}
	return out
}

// AbsenceOptions tunes pseudo-absence generation.
type AbsenceOptions struct {
	// Ratio is the number of absences per presence. The lecture default
	// samples twice as many absences as presences.
	Ratio float64
	// MinDistanceKm excludes candidate cells within this great-circle
	// distance of any presence.
	MinDistanceKm float64
}

// Absences draws pseudo-absence points on the stack's data cells. Candidate
// cells within MinDistanceKm of a presence, or containing one, are excluded;
// the draw is uniform without replacement over the remainder. Errors when
// fewer candidates exist than requested absences.
func Absences(rng *rand.Rand, s *raster.Stack, presences []Point, opts AbsenceOptions) ([]Point, error) {
	if opts.Ratio <= 0 {
		opts.Ratio = 2
	}
	want := int(math.Round(opts.Ratio * float64(len(presences))))
	if want == 0 {
		return nil, fmt.Errorf("pseudo-absences: no presences to sample against")
	}

	presenceCells := make(map[int]bool, len(presences))
	for _, p := range presences {
		if row, col, ok := s.Def.CellIndex(p.Lon, p.Lat); ok {
			presenceCells[row*s.Def.Ncols+col] = true
		}
	}

	var candidates []int
	for _, idx := range s.DataCells() {
		if presenceCells[idx] {
			continue
		}
		lon, lat := s.Def.CellCenter(idx/s.Def.Ncols, idx%s.Def.Ncols)
		c := Point{Lon: lon, Lat: lat}
		tooClose := false
		for _, p := range presences {
			if HaversineKm(c, p) < opts.MinDistanceKm {
				tooClose = true
				break
			}
		}
		if !tooClose {
			candidates = append(candidates, idx)
		}
	}
	if len(candidates) < want {
		return nil, fmt.Errorf("pseudo-absences: %d candidate cells for %d requested absences", len(candidates), want)
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	out := make([]Point, 0, want)
	for _, idx := range candidates[:want] {
		lon, lat := s.Def.CellCenter(idx/s.Def.Ncols, idx%s.Def.Ncols)
		out = append(out, Point{Lon: lon, Lat: lat})
	}
	return out, nil
}

// Label merges presences and absences into one labelled set, presences first.
func Label(presences, absences []Point) []Labelled {
	out := make([]Labelled, 0, len(presences)+len(absences))
	for _, p := range presences {
		out = append(out, Labelled{Point: p, Presence: true})
	}
	for _, p := range absences {
		out = append(out, Labelled{Point: p, Presence: false})
	}
	return out
}
