// Package occdb caches downloaded occurrence records in a local SQLite
// database so repeated lecture runs do not hit the occurrence API again.
package occdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/calluna-data/habimap/internal/occurrence"
)

// DB wraps the occurrence cache database.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the cache database at path. Run MigrateUp before
// first use.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open occurrence cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("open occurrence cache %s: %w", path, err)
	}
	return &DB{db}, nil
}

// Run records one completed fetch.
type Run struct {
	ID        string
	Species   string
	Box       occurrence.BBox
	FetchedAt time.Time
	Records   int
}

// InsertRun stores the fetch metadata and its records in one transaction,
// returning the generated run ID.
func (db *DB) InsertRun(species string, box occurrence.BBox, records []occurrence.Record) (string, error) {
	id := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, species, min_lon, min_lat, max_lon, max_lat, fetched_at, record_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, species, box.MinLon, box.MinLat, box.MaxLon, box.MaxLat,
		time.Now().UTC().Format(time.RFC3339), len(records),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO occurrences (run_id, gbif_key, species, lon, lat, year, basis_of_record)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.Exec(id, r.Key, r.Species, r.Lon, r.Lat, r.Year, r.BasisOfRecord); err != nil {
			return "", fmt.Errorf("insert occurrence %d: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recent run for the species, or sql.ErrNoRows
// wrapped if none exists.
func (db *DB) LatestRun(species string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, species, min_lon, min_lat, max_lon, max_lat, fetched_at, record_count
		FROM runs WHERE species = ? ORDER BY fetched_at DESC LIMIT 1`, species)

	var r Run
	var fetchedAt string
	err := row.Scan(&r.ID, &r.Species, &r.Box.MinLon, &r.Box.MinLat, &r.Box.MaxLon, &r.Box.MaxLat, &fetchedAt, &r.Records)
	if err != nil {
		return nil, fmt.Errorf("latest run for %q: %w", species, err)
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		r.FetchedAt = t
	}
	return &r, nil
}

// RecordsForRun loads the cached records of a run in insertion order.
func (db *DB) RecordsForRun(runID string) ([]occurrence.Record, error) {
	rows, err := db.Query(`
		SELECT gbif_key, species, lon, lat, year, basis_of_record
		FROM occurrences WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("records for run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []occurrence.Record
	for rows.Next() {
		var r occurrence.Record
		if err := rows.Scan(&r.Key, &r.Species, &r.Lon, &r.Lat, &r.Year, &r.BasisOfRecord); err != nil {
			return nil, fmt.Errorf("records for run %s: %w", runID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records for run %s: %w", runID, err)
	}
	return records, nil
}
