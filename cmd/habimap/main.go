// Command habimap runs the species distribution modelling pipeline:
// fetch occurrences, assemble predictors, sample, train, evaluate,
// predict, explain and report.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/calluna-data/habimap/internal/config"
	"github.com/calluna-data/habimap/internal/monitoring"
	"github.com/calluna-data/habimap/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "fetch":
		err = handleFetch(args)
	case "stack":
		err = handleStack(args)
	case "sample":
		err = handleSample(args)
	case "train":
		err = handleTrain(args)
	case "crossval":
		err = handleCrossval(args)
	case "predict":
		err = handlePredict(args)
	case "explain":
		err = handleExplain(args)
	case "report":
		err = handleReport(args)
	case "serve":
		err = handleServe(args)
	case "version":
		fmt.Printf("habimap version %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		monitoring.Logf("%s failed: %v", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`habimap - species distribution modelling pipeline

Usage: habimap <command> [options]

Commands:
  fetch      Download occurrence records and cache them locally
  stack      Align predictor layers into the model grid
  sample     Thin presences and draw pseudo-absences
  train      Fit a classifier on the sampled points
  crossval   Cross-validate and tune the decision threshold
  predict    Map suitability over the whole study area
  explain    Partial responses and Shapley importance
  report     Assemble the HTML report from the run artifacts
  serve      Serve the output directory over HTTP
  version    Show habimap version
  help       Show this help message

Common Flags:
  --config <file>   Run configuration JSON (defaults apply when omitted)
  --output <dir>    Output directory override

Examples:
  # Full run with defaults (European goldfinch over central Europe)
  habimap fetch && habimap stack && habimap sample && habimap train
  habimap crossval && habimap predict && habimap explain && habimap report

  # Custom study
  habimap fetch --config studies/nuthatch.json`)
}

// loadRunConfig returns the parsed config, or an all-defaults config when
// no file was named.
func loadRunConfig(path string) (*config.RunConfig, error) {
	if path == "" {
		return &config.RunConfig{}, nil
	}
	return config.Load(path)
}

// commonFlags registers the flags every stage shares and returns the
// destinations.
func commonFlags(fs *flag.FlagSet) (cfgPath, outputDir *string) {
	cfgPath = fs.String("config", "", "run configuration JSON")
	outputDir = fs.String("output", "", "output directory override")
	return cfgPath, outputDir
}

// outDir resolves the output directory from flag and config and makes
// sure it exists.
func outDir(override string, cfg *config.RunConfig) (string, error) {
	dir := cfg.GetOutputDir()
	if override != "" {
		dir = override
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}
