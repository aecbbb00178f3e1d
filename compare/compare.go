// Package compare charts performance trends across previously exported
// activity CSVs: distance over time, heart rate over time, running pace
// improvement and cycling power. It consumes the detailed CSVs the export
// pipeline writes, not the FIT files themselves.
package compare

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"fitexport"
	"fitexport/csvtable"
	"fitexport/render"
)

// Workout is the per-activity slice of session metrics the trend charts
// plot. Optional metrics stay nil when the source session lacked them.
type Workout struct {
	Path         string
	Date         time.Time
	Sport        string
	DistanceKm   float64
	DurationMin  float64
	AvgHeartRate *float64
	MaxHeartRate *float64
	PaceMinPerKm *float64
	AvgPowerW    *float64
	Calories     *float64
}

// Options configures one comparison run.
type Options struct {
	// Dir holds the exported activity CSVs.
	Dir string
	// Sport, when non-empty, keeps only activities of that sport.
	Sport string
	// Since, when non-zero, drops activities that started before it.
	Since time.Time
	// OutDir receives the trend charts. Defaults to Dir/comparison_charts.
	OutDir string
	// Logger defaults to the logrus standard logger.
	Logger *logrus.Logger
}

// Result lists the workouts compared (in date order) and the chart files
// written. Warnings carry per-file load problems and skipped charts.
type Result struct {
	Workouts []Workout
	Charts   []string
	Warnings []string
}

// FindWorkoutCSVs lists the detailed activity CSVs in dir, sorted by name.
// Summary CSVs are companions of the detailed files, not activities, and
// are skipped.
func FindWorkoutCSVs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	files := make([]string, 0, len(matches))
	for _, path := range matches {
		if strings.Contains(filepath.Base(path), "_summary") {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// FromCSV loads one exported activity CSV and reduces it to the trend
// metrics.
func FromCSV(path string) (*Workout, error) {
	table, err := csvtable.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	act, err := fitexport.Aggregate(table, "")
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", filepath.Base(path), err)
	}

	s := act.Session
	w := &Workout{
		Path:         path,
		Date:         s.StartTime,
		Sport:        s.Sport,
		AvgHeartRate: s.AvgHeartRate,
		MaxHeartRate: s.MaxHeartRate,
		AvgPowerW:    s.AvgPowerW,
		Calories:     s.Calories,
	}
	if s.TotalDistanceM != nil {
		w.DistanceKm = *s.TotalDistanceM / 1000.0
	}
	if s.TotalElapsedS != nil {
		w.DurationMin = *s.TotalElapsedS / 60.0
	}
	if s.AvgSpeedMps != nil {
		if pace, ok := fitexport.PaceMinPerKm(*s.AvgSpeedMps); ok {
			w.PaceMinPerKm = &pace
		}
	}
	return w, nil
}

// Compare loads the activity CSVs in opts.Dir, filters them by sport and
// start date, and renders the trend charts. Fewer than two comparable
// workouts is an error: a trend needs at least two points.
func Compare(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("comparison directory is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		opts.OutDir = filepath.Join(opts.Dir, "comparison_charts")
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	files, err := FindWorkoutCSVs(opts.Dir)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, path := range files {
		w, err := FromCSV(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("workout skipped")
			res.Warnings = append(res.Warnings, err.Error())
			continue
		}
		if opts.Sport != "" && !strings.EqualFold(w.Sport, opts.Sport) {
			continue
		}
		// Filter on the recorded session start, not file timestamps:
		// re-exporting an old activity must not move it forward in time.
		if w.Date.IsZero() {
			warn := fmt.Sprintf("%s: session has no start time", filepath.Base(path))
			log.WithField("file", path).Warn("workout skipped")
			res.Warnings = append(res.Warnings, warn)
			continue
		}
		if !opts.Since.IsZero() && w.Date.Before(opts.Since) {
			continue
		}
		res.Workouts = append(res.Workouts, *w)
	}
	if len(res.Workouts) < 2 {
		return res, fmt.Errorf("need at least two workouts to compare, have %d", len(res.Workouts))
	}
	sort.Slice(res.Workouts, func(i, j int) bool {
		return res.Workouts[i].Date.Before(res.Workouts[j].Date)
	})

	for _, spec := range trendSpecs(res.Workouts) {
		path := filepath.Join(opts.OutDir, spec.FileName)
		if err := render.Trend(path, spec.Spec); err != nil {
			log.WithError(err).WithField("chart", spec.FileName).Warn("trend chart skipped")
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", spec.FileName, err))
			continue
		}
		res.Charts = append(res.Charts, path)
	}

	log.WithFields(logrus.Fields{
		"workouts": len(res.Workouts),
		"charts":   len(res.Charts),
		"from":     res.Workouts[0].Date.Format("2006-01-02"),
		"to":       res.Workouts[len(res.Workouts)-1].Date.Format("2006-01-02"),
	}).Info("workouts compared")
	return res, nil
}

type namedTrend struct {
	FileName string
	Spec     render.TrendSpec
}

// trendSpecs decides which trend charts the workout set supports. Distance
// is always plottable; the metric trends need at least two workouts
// carrying the metric.
func trendSpecs(workouts []Workout) []namedTrend {
	specs := []namedTrend{{
		FileName: "distance_trend.png",
		Spec: render.TrendSpec{
			Title:  "Workout Distance Over Time",
			YLabel: "Distance (km)",
			Series: []render.TrendSeries{{
				Name:   "Distance",
				Points: points(workouts, func(w Workout) (float64, bool) { return w.DistanceKm, true }),
			}},
		},
	}}

	avgHR := points(workouts, func(w Workout) (float64, bool) {
		if w.AvgHeartRate == nil {
			return 0, false
		}
		return *w.AvgHeartRate, true
	})
	if len(avgHR) >= 2 {
		series := []render.TrendSeries{{Name: "Average HR", Points: avgHR}}
		maxHR := points(workouts, func(w Workout) (float64, bool) {
			if w.MaxHeartRate == nil {
				return 0, false
			}
			return *w.MaxHeartRate, true
		})
		if len(maxHR) >= 2 {
			series = append(series, render.TrendSeries{Name: "Max HR", Points: maxHR})
		}
		specs = append(specs, namedTrend{
			FileName: "heart_rate_trend.png",
			Spec: render.TrendSpec{
				Title:  "Heart Rate Trends Over Time",
				YLabel: "Heart Rate (bpm)",
				Series: series,
			},
		})
	}

	pace := points(workouts, func(w Workout) (float64, bool) {
		if !fitexport.IsRunning(w.Sport) || w.PaceMinPerKm == nil {
			return 0, false
		}
		return *w.PaceMinPerKm, true
	})
	if len(pace) >= 2 {
		specs = append(specs, namedTrend{
			FileName: "pace_improvement.png",
			Spec: render.TrendSpec{
				Title:  "Running Pace Improvement Over Time",
				YLabel: "Pace (min/km)",
				Pace:   true,
				Series: []render.TrendSeries{{Name: "Pace", Points: pace}},
			},
		})
	}

	power := points(workouts, func(w Workout) (float64, bool) {
		if !strings.EqualFold(w.Sport, "cycling") || w.AvgPowerW == nil {
			return 0, false
		}
		return *w.AvgPowerW, true
	})
	if len(power) >= 2 {
		specs = append(specs, namedTrend{
			FileName: "power_trend.png",
			Spec: render.TrendSpec{
				Title:  "Cycling Power Trend Over Time",
				YLabel: "Average Power (watts)",
				Series: []render.TrendSeries{{Name: "Average Power", Points: power}},
			},
		})
	}
	return specs
}

func points(workouts []Workout, value func(Workout) (float64, bool)) []render.TrendPoint {
	var pts []render.TrendPoint
	for _, w := range workouts {
		if v, ok := value(w); ok {
			pts = append(pts, render.TrendPoint{Date: w.Date, Value: v})
		}
	}
	return pts
}
