package main

import (
	"flag"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/occurrence"
	"github.com/calluna-data/habimap/internal/raster"
)

// modelGrid derives the common model grid from the study area and the
// requested resolution.
func modelGrid(box occurrence.BBox, cellsize float64) raster.Definition {
	return raster.Definition{
		Ncols:    int(math.Ceil((box.MaxLon - box.MinLon) / cellsize)),
		Nrows:    int(math.Ceil((box.MaxLat - box.MinLat) / cellsize)),
		Xll:      box.MinLon,
		Yll:      box.MinLat,
		Cellsize: cellsize,
		Nodata:   -9999,
	}
}

// handleStack aligns the predictor layers onto the model grid and writes
// the combined predictor stack.
func handleStack(args []string) error {
	fs := flag.NewFlagSet("stack", flag.ExitOnError)
	cfgPath, outputDir := commonFlags(fs)
	layersDir := fs.String("layers", "", "predictor layers directory override")
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
	defer monitoring.Stage("stack")()

	src := cfg.GetLayersDir()
	if *layersDir != "" {
		src = *layersDir
	}
	paths, err := filepath.Glob(filepath.Join(src, "*.asc"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .asc layers in %s", src)
	}
	sort.Strings(paths)

	box := cfg.GetBox()
	def := modelGrid(box, cfg.GetCellsize())

	bands := make([]*raster.Band, 0, len(paths))
	for _, path := range paths {
		b, err := raster.ReadASC(path)
		if err != nil {
			return fmt.Errorf("read layer %s: %w", path, err)
		}

		trimmed, err := b.Trim(box.MinLon, box.MinLat, box.MaxLon, box.MaxLat)
		if err != nil {
			return fmt.Errorf("trim layer %s: %w", b.Name, err)
		}
		bands = append(bands, trimmed.Resample(def))
	}

	s, err := raster.BuildStack(bands)
	if err != nil {
		return fmt.Errorf("build stack: %w", err)
	}
	if err := s.WriteStack(filepath.Join(dir, predictorsFile)); err != nil {
		return err
	}
	if err := s.WriteLayersCSV(filepath.Join(dir, layersFile)); err != nil {
		return err
	}
	monitoring.Logf("stacked %d layers onto %dx%d grid, %d data cells",
		s.NumBands(), def.Ncols, def.Nrows, len(s.DataCells()))
	return nil
}
