package main

import (
	"flag"
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/calluna-data/habimap/internal/figures"
	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/occdb"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/sample"
)

// handleSample thins the cached presences to one per grid cell, draws
// pseudo-absences and writes the labelled coordinates.
func handleSample(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	cfgPath, outputDir := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadRunConfig(*cfgPath)
	if err != nil {
		return err
	}
	dir, err := outDir(*outputDir, cfg)
	if err != nil {
		return err
	}
	defer monitoring.Stage("sample")()

	s, err := raster.ReadStack(filepath.Join(dir, predictorsFile))
	if err != nil {
		return fmt.Errorf("load predictor stack (run \"habimap stack\" first): %w", err)
	}

	db, err := occdb.Open(cfg.GetCachePath())
	if err != nil {
		return err
	}
	defer db.Close()
	run, err := db.LatestRun(cfg.GetSpecies())
	if err != nil {
		return fmt.Errorf("load cached occurrences (run \"habimap fetch\" first): %w", err)
	}
	records, err := db.RecordsForRun(run.ID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", run.ID, err)
	}
	monitoring.Logf("using run %s from %s with %d records", run.ID, run.FetchedAt.Format("2006-01-02"), len(records))

	presences := sample.Thin(sample.FromRecords(records), s.Def)
	if len(presences) == 0 {
		return fmt.Errorf("no presences left after thinning")
	}

	rng := rand.New(rand.NewSource(cfg.GetSeed()))
	absences, err := sample.Absences(rng, s, presences, sample.AbsenceOptions{
		Ratio:         cfg.GetAbsenceRatio(),
		MinDistanceKm: cfg.GetExclusionKm(),
	})
	if err != nil {
		return fmt.Errorf("draw pseudo-absences: %w", err)
	}

	labelled := sample.Label(presences, absences)
	if err := sample.WriteCoordinatesCSV(filepath.Join(dir, samplesFile), labelled); err != nil {
		return err
	}
	if err := sample.Masks(s.Def, presences, absences).WriteStack(filepath.Join(dir, masksFile)); err != nil {
		return err
	}

	// one heatmap per predictor with the sampled points on top
	for i := 0; i < s.NumBands(); i++ {
		b := s.BandAt(i)
		name := fmt.Sprintf("predictor_%s.png", b.Name)
		if err := figures.MapPNG(b, presences, absences, "Predictor: "+b.Name, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	monitoring.Logf("sampled %d presences and %d pseudo-absences", len(presences), len(absences))
	return nil
}
