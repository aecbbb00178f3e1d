// Command fit2csv converts FIT activity files to CSV (plus optional charts,
// parquet and a markdown summary). The input is a single .fit file or a
// directory of them.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"fitexport/config"
	"fitexport/pipeline"
)

func main() {
	cfg := loadConfig()

	var (
		outDir      = flag.String("out", cfg.Export.Dir, "Output directory (defaults to the input file's directory)")
		sport       = flag.String("sport", "", "Override the sport decoded from the file (e.g. running)")
		charts      = flag.Bool("charts", cfg.Charts.Basic, "Render the basic chart set")
		advanced    = flag.Bool("advanced-charts", cfg.Charts.Advanced, "Render advanced charts on top of the basic set")
		parquet     = flag.Bool("parquet", cfg.Export.Parquet, "Also write the record series as parquet")
		summaryOnly = flag.Bool("summary-only", false, "Write only the summary artifacts, no detailed CSV")
		recursive   = flag.Bool("recursive", false, "Recurse into subdirectories when the input is a directory")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <fit-file-or-directory>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	input := flag.Arg(0)
	paths, err := collectFitFiles(input, *recursive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fit2csv failed: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "fit2csv: no .fit files found under %s\n", input)
		os.Exit(1)
	}

	outcomes := pipeline.RunBatch(paths, pipeline.Options{
		OutDir:         *outDir,
		SportOverride:  *sport,
		SummaryOnly:    *summaryOnly,
		BasicCharts:    *charts,
		AdvancedCharts: *advanced,
		Parquet:        *parquet,
		Logger:         log,
	})

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Printf("%s: failed: %v\n", o.FitPath, o.Err)
			continue
		}
		printResult(o)
	}
	if len(paths) > 1 {
		fmt.Printf("\nProcessed %d files, %d failed\n", len(paths), failed)
	}
	if failed == len(paths) {
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrNoConfig) {
			fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
		}
		return config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
		return config.DefaultConfig()
	}
	return *cfg
}

func collectFitFiles(input string, recursive bool) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !isFitFile(input) {
			return nil, fmt.Errorf("input must be a .fit file: %s", input)
		}
		return []string{input}, nil
	}

	var paths []string
	if recursive {
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isFitFile(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && isFitFile(e.Name()) {
				paths = append(paths, filepath.Join(input, e.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func isFitFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".fit")
}

func printResult(o pipeline.FileOutcome) {
	r := o.Result
	fmt.Printf("%s: %s, %d laps, %d data points\n", o.FitPath, r.Sport, r.LapCount, r.RecordCount)
	if r.CSVPath != "" {
		fmt.Printf("  csv:         %s\n", r.CSVPath)
	}
	fmt.Printf("  summary csv: %s\n", r.SummaryCSVPath)
	fmt.Printf("  summary:     %s\n", r.SummaryPath)
	if r.ParquetPath != "" {
		fmt.Printf("  parquet:     %s\n", r.ParquetPath)
	}
	for _, c := range r.Charts {
		fmt.Printf("  chart:       %s\n", c.RelPath)
	}
	for _, w := range r.Warnings {
		fmt.Printf("  warning:     %s\n", w)
	}
}
