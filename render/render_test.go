package render

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitexport"
)

func testActivity(t *testing.T) (*fitexport.Table, *fitexport.Activity) {
	t.Helper()
	start := time.Date(2026, 4, 12, 8, 30, 0, 0, time.UTC)
	msgs := []fitexport.Message{
		{
			Type: fitexport.TypeSession,
			Fields: map[string]any{
				"sport":          "running",
				"start_time":     start,
				"max_heart_rate": 172.0,
			},
		},
		{Type: fitexport.TypeLap, Fields: map[string]any{"avg_speed": 2.5}},
		{Type: fitexport.TypeLap, Fields: map[string]any{"avg_speed": 3.0}},
	}
	for i := 0; i < 60; i++ {
		msgs = append(msgs, fitexport.Message{
			Type: fitexport.TypeRecord,
			Fields: map[string]any{
				"timestamp":  start.Add(time.Duration(i) * 5 * time.Second),
				"heart_rate": 120.0 + float64(i%40),
				"speed":      2.4 + float64(i%5)*0.1,
				"altitude":   50.0 + float64(i),
				"cadence":    84.0,
			},
		})
	}
	table, err := fitexport.BuildTable(msgs)
	require.NoError(t, err)
	act, err := fitexport.Aggregate(table, "")
	require.NoError(t, err)
	return table, act
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestFileName(t *testing.T) {
	spec := fitexport.ChartSpec{Key: "pace"}
	assert.Equal(t, "morning_run_pace.png", FileName("morning_run", spec))
}

func TestChartRendersEverySelectedSpec(t *testing.T) {
	table, act := testActivity(t)
	dir := t.TempDir()

	specs := fitexport.SelectCharts(table, act, true)
	require.NotEmpty(t, specs)

	for _, spec := range specs {
		path, err := Chart(dir, "run", table, act, spec)
		require.NoError(t, err, "chart %s", spec.Key)
		assertPNG(t, path)
	}
}

func TestChartLineWithoutTimestampsUsesSampleIndex(t *testing.T) {
	msgs := []fitexport.Message{
		{Type: fitexport.TypeSession, Fields: map[string]any{"sport": "cycling"}},
		{Type: fitexport.TypeRecord, Fields: map[string]any{"heart_rate": 120.0}},
		{Type: fitexport.TypeRecord, Fields: map[string]any{"heart_rate": 135.0}},
		{Type: fitexport.TypeRecord, Fields: map[string]any{"heart_rate": 150.0}},
	}
	table, err := fitexport.BuildTable(msgs)
	require.NoError(t, err)
	act, err := fitexport.Aggregate(table, "")
	require.NoError(t, err)

	path, err := Chart(t.TempDir(), "ride", table, act, fitexport.ChartSpec{
		Key:    "heart_rate",
		Title:  "Heart Rate During Cycling",
		YLabel: "Heart Rate (bpm)",
		Kind:   fitexport.ChartLine,
		Column: "heart_rate",
	})
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestChartPowerZones(t *testing.T) {
	msgs := []fitexport.Message{
		{
			Type: fitexport.TypeSession,
			Fields: map[string]any{
				"sport":     "cycling",
				"avg_power": 205.0,
				"max_power": 480.0,
			},
		},
	}
	for i := 0; i < 40; i++ {
		msgs = append(msgs, fitexport.Message{
			Type:   fitexport.TypeRecord,
			Fields: map[string]any{"power": 150.0 + float64(i%10)*20},
		})
	}
	table, err := fitexport.BuildTable(msgs)
	require.NoError(t, err)
	act, err := fitexport.Aggregate(table, "")
	require.NoError(t, err)

	path, err := Chart(t.TempDir(), "ride", table, act, fitexport.ChartSpec{
		Key:    "power_zones",
		Title:  "Power Zone Distribution for Cycling",
		YLabel: "Time in Zone (%)",
		Kind:   fitexport.ChartPowerZones,
		Column: "power",
	})
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestChartPaceZonesNeedsMovingSamples(t *testing.T) {
	msgs := []fitexport.Message{
		{Type: fitexport.TypeSession, Fields: map[string]any{"sport": "running"}},
		{Type: fitexport.TypeRecord, Fields: map[string]any{"speed": 0.0}},
		{Type: fitexport.TypeRecord, Fields: map[string]any{"speed": 0.1}},
	}
	table, err := fitexport.BuildTable(msgs)
	require.NoError(t, err)
	act, err := fitexport.Aggregate(table, "")
	require.NoError(t, err)

	_, err = Chart(t.TempDir(), "run", table, act, fitexport.ChartSpec{
		Key:    "pace_zones",
		Kind:   fitexport.ChartPaceZones,
		Column: "speed",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speed")
}

func TestChartFailsWithoutSamples(t *testing.T) {
	table, act := testActivity(t)

	_, err := Chart(t.TempDir(), "run", table, act, fitexport.ChartSpec{
		Key:    "power",
		Kind:   fitexport.ChartLine,
		Column: "power",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "power")
}

func TestChartUnknownKind(t *testing.T) {
	table, act := testActivity(t)
	_, err := Chart(t.TempDir(), "run", table, act, fitexport.ChartSpec{Key: "x", Kind: "pie"})
	require.Error(t, err)
}
