package csvtable

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitexport"
)

func activityTable(t *testing.T) *fitexport.Table {
	t.Helper()
	start := time.Date(2026, 4, 12, 8, 30, 0, 0, time.UTC)
	msgs := []fitexport.Message{
		{
			Type: fitexport.TypeSession,
			Fields: map[string]any{
				"sport":              "running",
				"start_time":         start,
				"total_distance":     10000.0,
				"total_elapsed_time": 3000.0,
				"avg_heart_rate":     140.0,
			},
			Units: map[string]string{"total_distance": "m", "total_elapsed_time": "s", "avg_heart_rate": "bpm"},
		},
		{
			Type:   fitexport.TypeLap,
			Fields: map[string]any{"total_distance": 5000.0, "total_elapsed_time": 1600.0},
			Units:  map[string]string{"total_distance": "m"},
		},
		{
			Type:   fitexport.TypeLap,
			Fields: map[string]any{"total_distance": 5000.0, "total_elapsed_time": 1400.0},
			Units:  map[string]string{"total_distance": "m"},
		},
		{
			Type:   fitexport.TypeRecord,
			Fields: map[string]any{"timestamp": start, "heart_rate": 132.0, "speed": 2.5, "altitude": -3.5},
			Units:  map[string]string{"heart_rate": "bpm", "speed": "m/s", "altitude": "m"},
		},
		{
			Type:   fitexport.TypeRecord,
			Fields: map[string]any{"timestamp": start.Add(time.Second), "heart_rate": 148.0, "speed": 3.0},
			Units:  map[string]string{"heart_rate": "bpm", "speed": "m/s"},
		},
	}
	table, err := fitexport.BuildTable(msgs)
	require.NoError(t, err)
	return table
}

func readAllCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	table := activityTable(t)
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, WriteCSV(path, table))

	rows := readAllCSV(t, path)
	require.Len(t, rows, 6)

	header := rows[0]
	assert.Equal(t, "record_type", header[0])
	assert.Equal(t, append([]string{"record_type"}, table.Columns...), header)

	cell := func(row []string, column string) string {
		for i, name := range header {
			if name == column {
				return row[i]
			}
		}
		t.Fatalf("column %q not in header", column)
		return ""
	}

	session := rows[1]
	assert.Equal(t, "session", session[0])
	assert.Equal(t, "running", cell(session, "sport"))
	assert.Equal(t, "10000", cell(session, "total_distance"))
	assert.Equal(t, "m", cell(session, "total_distance_units"))
	assert.Equal(t, "2026-04-12 08:30:00", cell(session, "start_time"))

	record := rows[4]
	assert.Equal(t, "record", record[0])
	assert.Equal(t, "2.5", cell(record, "speed"))
	assert.Equal(t, "-3.5", cell(record, "altitude"))
	// Session-only columns stay empty on record rows.
	assert.Equal(t, "", cell(record, "sport"))

	// Second record has no altitude sample.
	assert.Equal(t, "", cell(rows[5], "altitude"))
}

func TestLoadCSVRoundTrip(t *testing.T) {
	table := activityTable(t)
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, WriteCSV(path, table))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, loaded.Columns)
	require.Len(t, loaded.Rows, len(table.Rows))

	session := loaded.RowsOfType(fitexport.TypeSession)[0]
	sport, ok := session.String("sport")
	require.True(t, ok)
	assert.Equal(t, "running", sport)
	dist, ok := session.Float("total_distance")
	require.True(t, ok)
	assert.Equal(t, 10000.0, dist)
	start, ok := session.Time("start_time")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 4, 12, 8, 30, 0, 0, time.UTC), start)

	// The reloaded table aggregates the same as the original.
	act, err := fitexport.Aggregate(loaded, "")
	require.NoError(t, err)
	assert.Equal(t, "running", act.Session.Sport)
	assert.Len(t, act.Laps, 2)
	assert.Equal(t, 2, act.RecordCount)
}

func TestLoadCSVRejectsEmptyAndForeignFiles(t *testing.T) {
	dir := t.TempDir()

	headerOnly := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("record_type,speed\n"), 0o644))
	_, err := LoadCSV(headerOnly)
	assert.ErrorIs(t, err, fitexport.ErrNoRecords)

	foreign := filepath.Join(dir, "foreign.csv")
	require.NoError(t, os.WriteFile(foreign, []byte("a,b\n1,2\n"), 0o644))
	_, err = LoadCSV(foreign)
	require.Error(t, err)
	assert.NotErrorIs(t, err, fitexport.ErrNoRecords)
}

func TestWriteSummaryCSV(t *testing.T) {
	table := activityTable(t)
	path := filepath.Join(t.TempDir(), "run_summary.csv")
	require.NoError(t, WriteSummaryCSV(path, table))

	rows := readAllCSV(t, path)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])

	values := make(map[string]string, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows[1:] {
		require.Len(t, row, 2)
		values[row[0]] = row[1]
		order = append(order, row[0])
	}

	assert.Equal(t, "running", values["sport"])
	assert.Equal(t, "10000", values["total_distance"])
	assert.Equal(t, "m", values["total_distance_units"])

	// avg_heart_rate comes from the session, so only max/min are computed
	// from the record series.
	assert.Equal(t, "140", values["avg_heart_rate"])
	assert.Equal(t, "148", values["max_heart_rate"])
	assert.Equal(t, "132", values["min_heart_rate"])
	assert.Equal(t, "2.75", values["avg_speed"])
	assert.Equal(t, "-3.5", values["min_altitude"])
	assert.NotContains(t, values, "min_cadence")
	assert.NotContains(t, values, "avg_power")

	assert.Equal(t, "2", values["number_of_laps"])
	assert.Equal(t, "5000", values["avg_lap_distance"])
	assert.Equal(t, "1500", values["avg_lap_time"])

	assert.Equal(t, "session, lap, record", values["available_data_types"])
	assert.Equal(t, "available_data_types", order[len(order)-1])
	assert.Equal(t, "sport", order[0])
}

func TestWriteRecordParquet(t *testing.T) {
	table := activityTable(t)
	path := filepath.Join(t.TempDir(), "run.parquet")
	require.NoError(t, WriteRecordParquet(path, table))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
