// Package csvtable persists activity tables as CSV artifacts and loads them
// back. The detailed CSV is the canonical on-disk form of a parsed activity;
// the summary CSV is a compact Metric,Value digest of the same data.
package csvtable

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fitexport"
)

// TimeLayout is the cell format for timestamp values in both CSV artifacts.
const TimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes the full table to path, one row per message. The first
// column is always record_type; the remaining columns follow the table's
// column order. Cells for fields absent from a row are left empty.
func WriteCSV(path string, t *fitexport.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"record_type"}, t.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		out := make([]string, 0, len(header))
		out = append(out, row.Type)
		for _, col := range t.Columns {
			out = append(out, formatCell(row.Values[col]))
		}
		if err := w.Write(out); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Session fields carried into the summary, in output order.
var summarySessionFields = []string{
	"sport", "sub_sport", "total_elapsed_time", "total_timer_time",
	"total_distance", "total_calories", "avg_speed", "max_speed",
	"avg_heart_rate", "max_heart_rate", "avg_cadence", "max_cadence",
	"avg_power", "max_power", "total_ascent", "total_descent",
	"start_time", "timestamp",
}

// Record-series metrics that get min/avg/max rows when the session did not
// already report them.
var summaryRecordMetrics = []string{
	"heart_rate", "cadence", "speed", "power", "altitude", "temperature",
}

// WriteSummaryCSV writes a Metric,Value digest of the table: the session's
// headline fields, min/avg/max over the record series for metrics the session
// left out, lap counts, and the list of message types present in the file.
func WriteSummaryCSV(path string, t *fitexport.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}

	emitted := make(map[string]struct{})
	emit := func(metric, value string) error {
		if _, ok := emitted[metric]; ok {
			return nil
		}
		emitted[metric] = struct{}{}
		return w.Write([]string{metric, value})
	}

	if sessions := t.RowsOfType(fitexport.TypeSession); len(sessions) > 0 {
		session := sessions[0]
		for _, field := range summarySessionFields {
			v, ok := session.Values[field]
			if !ok {
				continue
			}
			if err := emit(field, formatCell(v)); err != nil {
				return err
			}
			if unit, ok := session.String(field + fitexport.UnitsSuffix); ok {
				if err := emit(field+fitexport.UnitsSuffix, unit); err != nil {
					return err
				}
			}
		}
	}

	records := t.RowsOfType(fitexport.TypeRecord)
	for _, metric := range summaryRecordMetrics {
		stats, ok := columnStats(records, metric)
		if !ok {
			continue
		}
		if err := emit("avg_"+metric, formatFloat(stats.avg)); err != nil {
			return err
		}
		if err := emit("max_"+metric, formatFloat(stats.max)); err != nil {
			return err
		}
		// Min cadence is usually a zero from coasting; skip it.
		if metric != "cadence" {
			if err := emit("min_"+metric, formatFloat(stats.min)); err != nil {
				return err
			}
		}
	}

	if laps := t.RowsOfType(fitexport.TypeLap); len(laps) > 0 {
		if err := emit("number_of_laps", strconv.Itoa(len(laps))); err != nil {
			return err
		}
		if stats, ok := columnStats(laps, "total_distance"); ok {
			if err := emit("avg_lap_distance", formatFloat(stats.avg)); err != nil {
				return err
			}
		}
		if stats, ok := columnStats(laps, "total_elapsed_time"); ok {
			if err := emit("avg_lap_time", formatFloat(stats.avg)); err != nil {
				return err
			}
		}
	}

	if err := emit("available_data_types", strings.Join(rowTypes(t), ", ")); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// LoadCSV reads a CSV previously written by WriteCSV back into a table.
// Cells are re-typed on the way in: timestamps first, then numbers, then
// plain strings. A file with no data rows is reported as ErrNoRecords.
func LoadCSV(path string) (*fitexport.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fitexport.ErrNoRecords
	}
	header := rows[0]
	if len(header) == 0 || header[0] != "record_type" {
		return nil, fmt.Errorf("not an activity csv: first column is %q, want record_type", firstColumn(header))
	}

	t := &fitexport.Table{Columns: append([]string(nil), header[1:]...)}
	for _, cells := range rows[1:] {
		if len(cells) == 0 {
			continue
		}
		row := fitexport.Row{Type: cells[0], Values: make(map[string]any)}
		for i, col := range t.Columns {
			if i+1 >= len(cells) {
				break
			}
			if v := parseCell(cells[i+1]); v != nil {
				row.Values[col] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func firstColumn(header []string) string {
	if len(header) == 0 {
		return ""
	}
	return header[0]
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.UTC().Format(TimeLayout)
	case float64:
		return formatFloat(x)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseCell(cell string) any {
	if cell == "" {
		return nil
	}
	if ts, err := time.ParseInLocation(TimeLayout, cell, time.UTC); err == nil {
		return ts
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return v
	}
	return cell
}

type stats struct {
	min, max, avg float64
}

func columnStats(rows []fitexport.Row, column string) (stats, bool) {
	var s stats
	n := 0
	for _, row := range rows {
		v, ok := row.Float(column)
		if !ok {
			continue
		}
		if n == 0 {
			s.min, s.max = v, v
		}
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
		s.avg += v
		n++
	}
	if n == 0 {
		return stats{}, false
	}
	s.avg /= float64(n)
	return s, true
}

func rowTypes(t *fitexport.Table) []string {
	seen := make(map[string]struct{})
	var types []string
	for _, row := range t.Rows {
		if _, ok := seen[row.Type]; ok {
			continue
		}
		seen[row.Type] = struct{}{}
		types = append(types, row.Type)
	}
	return types
}
