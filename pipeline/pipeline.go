// Package pipeline orchestrates one activity export end to end: decode,
// flatten, persist, aggregate, chart, summarize. It also drives batches of
// files with per-file isolation so one corrupt activity cannot sink a
// directory run.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"fitexport"
	"fitexport/csvtable"
	"fitexport/fitdecode"
	"fitexport/render"
)

// Options configures one export run.
type Options struct {
	// FitPath is the activity file to process.
	FitPath string
	// OutDir receives every artifact. Created if missing.
	OutDir string
	// SportOverride replaces the sport decoded from the file when non-empty.
	SportOverride string
	// SummaryOnly skips the detailed CSV (and parquet) and writes only the
	// summary artifacts.
	SummaryOnly bool
	// BasicCharts renders the basic chart set.
	BasicCharts bool
	// AdvancedCharts renders the advanced set on top of the basic one.
	AdvancedCharts bool
	// Parquet additionally writes the record series as parquet.
	Parquet bool
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// Result lists the artifacts written for one activity. Warnings carry
// non-fatal problems (failed charts); the primary artifacts were still
// written when a Result comes back with warnings.
type Result struct {
	Sport          string
	RecordCount    int
	LapCount       int
	CSVPath        string
	SummaryCSVPath string
	SummaryPath    string
	ParquetPath    string
	Charts         []fitexport.ChartLink
	Warnings       []string
}

// FileOutcome is one entry of a batch run.
type FileOutcome struct {
	FitPath string
	Result  *Result
	Err     error
}

// Run processes one FIT file. An empty OutDir defaults to the directory the
// input file lives in.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.FitPath) == "" {
		return nil, fmt.Errorf("fit path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		opts.OutDir = filepath.Dir(opts.FitPath)
	}
	msgs, err := fitdecode.File(opts.FitPath)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(opts.FitPath), err)
	}
	return RunMessages(baseName(opts.FitPath), msgs, opts)
}

// RunMessages processes already-decoded messages under the given activity
// base name. Tests and callers with non-file sources enter here.
func RunMessages(base string, msgs []fitexport.Message, opts Options) (*Result, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("activity base name is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	table, err := fitexport.BuildTable(msgs)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	res := &Result{}
	if !opts.SummaryOnly {
		res.CSVPath = filepath.Join(opts.OutDir, base+".csv")
		if err := csvtable.WriteCSV(res.CSVPath, table); err != nil {
			return nil, err
		}
	}
	res.SummaryCSVPath = filepath.Join(opts.OutDir, base+"_summary.csv")
	if err := csvtable.WriteSummaryCSV(res.SummaryCSVPath, table); err != nil {
		return nil, err
	}

	act, err := fitexport.Aggregate(table, opts.SportOverride)
	if err != nil {
		// The CSV artifacts above are already on disk; report them along
		// with the failure so callers can keep partial output.
		return res, fmt.Errorf("aggregate %s: %w", base, err)
	}
	res.Sport = act.Session.Sport
	res.RecordCount = act.RecordCount
	res.LapCount = len(act.Laps)

	if opts.Parquet && !opts.SummaryOnly {
		res.ParquetPath = filepath.Join(opts.OutDir, base+".parquet")
		if err := csvtable.WriteRecordParquet(res.ParquetPath, table); err != nil {
			return res, err
		}
	}

	if opts.BasicCharts || opts.AdvancedCharts {
		chartsDir := filepath.Join(opts.OutDir, "charts")
		for _, spec := range fitexport.SelectCharts(table, act, opts.AdvancedCharts) {
			if _, err := render.Chart(chartsDir, base, table, act, spec); err != nil {
				log.WithError(err).WithField("chart", spec.Key).Warn("chart skipped")
				res.Warnings = append(res.Warnings, err.Error())
				continue
			}
			res.Charts = append(res.Charts, fitexport.ChartLink{
				Title:   spec.Title,
				RelPath: filepath.ToSlash(filepath.Join("charts", render.FileName(base, spec))),
			})
		}
	}

	summary := fitexport.Summary(act) + fitexport.ChartLinksSection(res.Charts)
	res.SummaryPath = filepath.Join(opts.OutDir, base+"_summary.md")
	if err := os.WriteFile(res.SummaryPath, []byte(summary), 0o644); err != nil {
		return res, fmt.Errorf("write summary: %w", err)
	}

	log.WithFields(logrus.Fields{
		"activity":   base,
		"sport":      res.Sport,
		"datapoints": humanize.Comma(int64(res.RecordCount)),
		"laps":       res.LapCount,
		"charts":     len(res.Charts),
	}).Info("activity exported")
	return res, nil
}

// RunBatch processes each file independently: a failure is recorded on that
// file's outcome and the remaining files still run.
func RunBatch(paths []string, opts Options) []FileOutcome {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	outcomes := make([]FileOutcome, 0, len(paths))
	for _, path := range paths {
		fileOpts := opts
		fileOpts.FitPath = path
		res, err := Run(fileOpts)
		if err != nil {
			log.WithError(err).WithField("file", path).Error("activity failed")
		}
		outcomes = append(outcomes, FileOutcome{FitPath: path, Result: res, Err: err})
	}
	return outcomes
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
