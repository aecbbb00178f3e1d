package compare

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitexport"
	"fitexport/csvtable"
)

func writeWorkoutCSV(t *testing.T, dir, name string, session map[string]any) string {
	t.Helper()
	msgs := []fitexport.Message{
		{Type: fitexport.TypeSession, Fields: session},
		{Type: fitexport.TypeRecord, Fields: map[string]any{"heart_rate": 140.0, "speed": 2.7}},
		{Type: fitexport.TypeRecord, Fields: map[string]any{"heart_rate": 144.0, "speed": 2.8}},
	}
	table, err := fitexport.BuildTable(msgs)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, csvtable.WriteCSV(path, table))
	return path
}

func runSession(day int, avgSpeed float64) map[string]any {
	return map[string]any{
		"sport":              "running",
		"start_time":         time.Date(2026, 6, day, 7, 0, 0, 0, time.UTC),
		"total_distance":     10000.0,
		"total_elapsed_time": 3000.0,
		"avg_heart_rate":     142.0,
		"max_heart_rate":     168.0,
		"avg_speed":          avgSpeed,
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func TestFindWorkoutCSVsSkipsSummaries(t *testing.T) {
	dir := t.TempDir()
	writeWorkoutCSV(t, dir, "morning_run.csv", runSession(1, 2.5))
	writeWorkoutCSV(t, dir, "evening_run.csv", runSession(2, 2.6))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "morning_run_summary.csv"), []byte("Metric,Value\n"), 0o644))

	files, err := FindWorkoutCSVs(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "evening_run.csv", filepath.Base(files[0]))
	assert.Equal(t, "morning_run.csv", filepath.Base(files[1]))
}

func TestFromCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkoutCSV(t, dir, "run.csv", runSession(14, 2.5))

	w, err := FromCSV(path)
	require.NoError(t, err)

	assert.Equal(t, "running", w.Sport)
	assert.Equal(t, time.Date(2026, 6, 14, 7, 0, 0, 0, time.UTC), w.Date)
	assert.InDelta(t, 10.0, w.DistanceKm, 1e-9)
	assert.InDelta(t, 50.0, w.DurationMin, 1e-9)
	require.NotNil(t, w.AvgHeartRate)
	assert.Equal(t, 142.0, *w.AvgHeartRate)
	require.NotNil(t, w.PaceMinPerKm)
	assert.InDelta(t, 60.0/9.0, *w.PaceMinPerKm, 1e-9)
	assert.Nil(t, w.AvgPowerW)
}

func TestCompareRendersTrendCharts(t *testing.T) {
	dir := t.TempDir()
	writeWorkoutCSV(t, dir, "run_a.csv", runSession(1, 2.5))
	writeWorkoutCSV(t, dir, "run_b.csv", runSession(8, 2.6))
	writeWorkoutCSV(t, dir, "run_c.csv", runSession(15, 2.7))

	res, err := Compare(Options{Dir: dir, Logger: quietLogger()})
	require.NoError(t, err)

	require.Len(t, res.Workouts, 3)
	assert.True(t, res.Workouts[0].Date.Before(res.Workouts[1].Date))
	assert.True(t, res.Workouts[1].Date.Before(res.Workouts[2].Date))
	assert.Empty(t, res.Warnings)

	names := make([]string, 0, len(res.Charts))
	for _, c := range res.Charts {
		names = append(names, filepath.Base(c))
		info, err := os.Stat(c)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Equal(t, []string{"distance_trend.png", "heart_rate_trend.png", "pace_improvement.png"}, names)

	for _, c := range res.Charts {
		assert.Equal(t, "comparison_charts", filepath.Base(filepath.Dir(c)))
	}
}

func TestComparePowerTrendForCycling(t *testing.T) {
	dir := t.TempDir()
	ride := func(day int, power float64) map[string]any {
		return map[string]any{
			"sport":              "cycling",
			"start_time":         time.Date(2026, 6, day, 18, 0, 0, 0, time.UTC),
			"total_distance":     30000.0,
			"total_elapsed_time": 3600.0,
			"avg_power":          power,
		}
	}
	writeWorkoutCSV(t, dir, "ride_a.csv", ride(3, 195.0))
	writeWorkoutCSV(t, dir, "ride_b.csv", ride(10, 205.0))

	res, err := Compare(Options{Dir: dir, Logger: quietLogger()})
	require.NoError(t, err)

	names := make([]string, 0, len(res.Charts))
	for _, c := range res.Charts {
		names = append(names, filepath.Base(c))
	}
	assert.Contains(t, names, "power_trend.png")
	assert.NotContains(t, names, "pace_improvement.png")
}

func TestCompareSportFilter(t *testing.T) {
	dir := t.TempDir()
	writeWorkoutCSV(t, dir, "run_a.csv", runSession(1, 2.5))
	writeWorkoutCSV(t, dir, "run_b.csv", runSession(8, 2.6))
	ride := runSession(5, 7.5)
	ride["sport"] = "cycling"
	writeWorkoutCSV(t, dir, "ride.csv", ride)

	res, err := Compare(Options{Dir: dir, Sport: "running", Logger: quietLogger()})
	require.NoError(t, err)

	require.Len(t, res.Workouts, 2)
	for _, w := range res.Workouts {
		assert.Equal(t, "running", w.Sport)
	}
}

func TestCompareSinceFilter(t *testing.T) {
	dir := t.TempDir()
	writeWorkoutCSV(t, dir, "old.csv", runSession(1, 2.5))
	writeWorkoutCSV(t, dir, "recent_a.csv", runSession(20, 2.6))
	writeWorkoutCSV(t, dir, "recent_b.csv", runSession(25, 2.7))

	since := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	res, err := Compare(Options{Dir: dir, Since: since, Logger: quietLogger()})
	require.NoError(t, err)

	require.Len(t, res.Workouts, 2)
	assert.Equal(t, 20, res.Workouts[0].Date.Day())
}

func TestCompareNeedsTwoWorkouts(t *testing.T) {
	dir := t.TempDir()
	writeWorkoutCSV(t, dir, "only.csv", runSession(1, 2.5))

	res, err := Compare(Options{Dir: dir, Logger: quietLogger()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two workouts")
	require.NotNil(t, res)
	assert.Len(t, res.Workouts, 1)
}

func TestCompareSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeWorkoutCSV(t, dir, "run_a.csv", runSession(1, 2.5))
	writeWorkoutCSV(t, dir, "run_b.csv", runSession(8, 2.6))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "foreign.csv"), []byte("a,b\n1,2\n"), 0o644))

	res, err := Compare(Options{Dir: dir, Logger: quietLogger()})
	require.NoError(t, err)

	require.Len(t, res.Workouts, 2)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "record_type")
}
