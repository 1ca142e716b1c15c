package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/occdb"
	"github.com/calluna-data/habimap/internal/occurrence"
)

// handleFetch downloads occurrence records for the study species and
// caches them in the local database.
func handleFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfgPath, _ := commonFlags(fs)
	migrationsDir := fs.String("migrations", "migrations", "database migrations directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadRunConfig(*cfgPath)
	if err != nil {
		return err
	}
	defer monitoring.Stage("fetch")()

	db, err := occdb.Open(cfg.GetCachePath())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.MigrateUp(*migrationsDir); err != nil {
		return fmt.Errorf("migrate occurrence cache: %w", err)
	}

	client := occurrence.NewClient()
	records, err := client.Fetch(context.Background(), occurrence.Query{
		ScientificName: cfg.GetSpecies(),
		Box:            cfg.GetBox(),
		MaxRecords:     cfg.GetMaxRecords(),
	})
	if err != nil {
		return fmt.Errorf("fetch occurrences: %w", err)
	}

	runID, err := db.InsertRun(cfg.GetSpecies(), cfg.GetBox(), records)
	if err != nil {
		return fmt.Errorf("cache occurrences: %w", err)
	}
	monitoring.Logf("cached %d records for %q as run %s", len(records), cfg.GetSpecies(), runID)
	return nil
}
