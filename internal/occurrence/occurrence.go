// Package occurrence downloads species occurrence records from the GBIF
// occurrence API.
package occurrence

import "fmt"

// Record is one occurrence of the study species.
type Record struct {
	Key           int64   `json:"key"`
	Species       string  `json:"species"`
	Lon           float64 `json:"lon"`
	Lat           float64 `json:"lat"`
	Year          int     `json:"year"`
	BasisOfRecord string  `json:"basisOfRecord"`
}

// BBox is a geographic bounding box in decimal degrees.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Contains reports whether the coordinate lies inside the box.
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// Validate checks the box spans a positive area.
func (b BBox) Validate() error {
	if b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat {
		return fmt.Errorf("bounding box (%g,%g)-(%g,%g) has no area", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
	}
	return nil
}

// Query describes one occurrence download.
type Query struct {
	ScientificName string
	Box            BBox
	MaxRecords     int // stop paging after this many records; 0 means the client default
}
