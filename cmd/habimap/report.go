package main

import (
	"context"
	"flag"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/raster"
	"github.com/calluna-data/habimap/internal/report"
	"github.com/calluna-data/habimap/internal/sample"
)

// handleReport assembles the interactive HTML report from whatever run
// artifacts exist in the output directory.
func handleReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
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
	defer monitoring.Stage("report")()

	data := report.Data{Species: cfg.GetSpecies()}

	// each artifact is optional so a partial run still yields a page
	if b, err := raster.ReadASC(filepath.Join(dir, suitabilityFile)); err == nil {
		data.Suitability = b
	} else {
		monitoring.Logf("no suitability surface, skipping map: %v", err)
	}
	if labelled, err := sample.ReadCoordinatesCSV(filepath.Join(dir, samplesFile)); err == nil {
		for _, l := range labelled {
			if l.Presence {
				data.Presences = append(data.Presences, l.Point)
			} else {
				data.Absences = append(data.Absences, l.Point)
			}
		}
	}
	var summary Evaluation
	if err := readJSON(dir, evaluationFile, &summary); err == nil {
		data.Best = summary.Best
		data.Curve = summary.Curve
	}
	var expl Explanation
	if err := readJSON(dir, explanationFile, &expl); err == nil {
		data.Responses = expl.Responses
		data.VarNames = expl.VarNames
		data.Importance = expl.Importance
	}

	path := filepath.Join(dir, reportFile)
	if err := report.Render(path, data); err != nil {
		return err
	}
	monitoring.Logf("wrote %s", path)
	return nil
}

// handleServe serves the output directory so the report can be opened in
// a browser. It runs until interrupted.
func handleServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath, outputDir := commonFlags(fs)
	listen := fs.String("listen", ":8080", "listen address")
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitoring.Logf("serving %s on %s", dir, *listen)
	return report.Serve(ctx, *listen, dir)
}
