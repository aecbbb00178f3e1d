// Command workoutsummary regenerates the markdown summary from a previously
// exported activity CSV, without re-reading the FIT file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fitexport"
	"fitexport/csvtable"
)

func main() {
	var (
		outPath = flag.String("out", "", "Summary file to write (defaults to <csv-base>_summary.md)")
		sport   = flag.String("sport", "", "Override the sport stored in the CSV")
		stdout  = flag.Bool("stdout", false, "Print the summary instead of writing a file")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <activity-csv>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	csvPath := flag.Arg(0)
	table, err := csvtable.LoadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workoutsummary failed: %v\n", err)
		os.Exit(1)
	}

	act, err := fitexport.Aggregate(table, *sport)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workoutsummary failed: %v\n", err)
		os.Exit(1)
	}

	summary := fitexport.Summary(act)
	if *stdout {
		fmt.Print(summary)
		return
	}

	path := *outPath
	if path == "" {
		base := strings.TrimSuffix(csvPath, filepath.Ext(csvPath))
		path = base + "_summary.md"
	}
	if err := os.WriteFile(path, []byte(summary), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "workoutsummary failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Summary written to %s\n", path)
}
