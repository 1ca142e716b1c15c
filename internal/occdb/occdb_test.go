package occdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calluna-data/habimap/internal/occurrence"
)

const migrationsDir = "../../migrations"

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.MigrateUp(migrationsDir))
	return db
}

func testRecords() []occurrence.Record {
	return []occurrence.Record{
		{Key: 101, Species: "Saxicola rubetra", Lon: 10.2, Lat: 50.4, Year: 2019, BasisOfRecord: "HUMAN_OBSERVATION"},
		{Key: 102, Species: "Saxicola rubetra", Lon: 10.8, Lat: 50.9, Year: 2021, BasisOfRecord: "MACHINE_OBSERVATION"},
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	require.NoError(t, db.MigrateUp(migrationsDir))

	version, dirty, err := db.MigrateVersion(migrationsDir)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestInsertAndLoadRun(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	box := occurrence.BBox{MinLon: 5, MinLat: 45, MaxLon: 15, MaxLat: 55}

	id, err := db.InsertRun("Saxicola rubetra", box, testRecords())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := db.LatestRun("Saxicola rubetra")
	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Equal(t, box, run.Box)
	assert.Equal(t, 2, run.Records)
	assert.False(t, run.FetchedAt.IsZero())

	got, err := db.RecordsForRun(id)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(testRecords(), got))
}

func TestLatestRun_PicksNewest(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	box := occurrence.BBox{MinLon: 5, MinLat: 45, MaxLon: 15, MaxLat: 55}

	_, err := db.InsertRun("Saxicola rubetra", box, testRecords()[:1])
	require.NoError(t, err)
	second, err := db.InsertRun("Saxicola rubetra", box, testRecords())
	require.NoError(t, err)

	// fetched_at has second resolution; force distinct ordering
	_, err = db.Exec(`UPDATE runs SET fetched_at = '2099-01-01T00:00:00Z' WHERE id = ?`, second)
	require.NoError(t, err)

	run, err := db.LatestRun("Saxicola rubetra")
	require.NoError(t, err)
	assert.Equal(t, second, run.ID)
}

func TestLatestRun_Missing(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	_, err := db.LatestRun("Nonexistus species")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRecordsForRun_Empty(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	got, err := db.RecordsForRun("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, got)
}
