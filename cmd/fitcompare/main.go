// Command fitcompare charts performance trends across the exported activity
// CSVs in a directory: distance, heart rate, running pace and cycling power
// over time.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"fitexport/compare"
)

func main() {
	var (
		sport   = flag.String("sport", "", "Keep only activities of this sport (e.g. running)")
		days    = flag.Int("days", 90, "Number of past days to include (0 for all)")
		outDir  = flag.String("out", "", "Chart output directory (defaults to <dir>/comparison_charts)")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <csv-directory>\n", filepath.Base(os.Args[0]))
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

	var since time.Time
	if *days > 0 {
		since = time.Now().AddDate(0, 0, -*days)
	}

	res, err := compare.Compare(compare.Options{
		Dir:    flag.Arg(0),
		Sport:  *sport,
		Since:  since,
		OutDir: *outDir,
		Logger: log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitcompare failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Compared %d workouts (%s to %s)\n",
		len(res.Workouts),
		res.Workouts[0].Date.Format("2006-01-02"),
		res.Workouts[len(res.Workouts)-1].Date.Format("2006-01-02"))
	for _, c := range res.Charts {
		fmt.Printf("  chart:   %s\n", c)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}
