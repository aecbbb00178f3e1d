package fitexport

import (
	"errors"
	"math"
	"sort"
	"time"
)

// Sentinel outcomes callers must branch on instead of treating them as
// generic failures.
var (
	// ErrNoRecords is returned when an activity yields zero decoded messages.
	ErrNoRecords = errors.New("no messages decoded from activity")

	// ErrNoSession is returned when an activity has no session message.
	ErrNoSession = errors.New("activity has no session message")
)

// Record types recognized by the aggregation step. Other types (event,
// device_info, ...) still flow through the table untouched.
const (
	TypeSession = "session"
	TypeLap     = "lap"
	TypeRecord  = "record"
)

// Message is one decoded activity message handed over by the FIT parser
// boundary: a type tag, a field/value map and a field/unit map.
type Message struct {
	Type   string
	Fields map[string]any
	Units  map[string]string
}

// Row is one flattened message. Values is sparse: only fields present on the
// originating message appear, keyed by column name.
type Row struct {
	Type   string
	Values map[string]any
}

// Table is the row-oriented view of one activity. Columns preserves
// first-seen order across all messages and excludes the record_type column,
// which is always rendered first.
type Table struct {
	Columns []string
	Rows    []Row
}

// UnitsSuffix is appended to a field's column name to form the column that
// carries its unit string.
const UnitsSuffix = "_units"

// BuildTable flattens decoded messages into a sparse table, one row per
// message. Fields carrying a unit additionally populate a parallel
// "<field>_units" column. An empty message sequence is reported as
// ErrNoRecords so callers can distinguish "nothing to process" from a valid
// but empty activity table.
func BuildTable(msgs []Message) (*Table, error) {
	if len(msgs) == 0 {
		return nil, ErrNoRecords
	}

	t := &Table{Rows: make([]Row, 0, len(msgs))}
	seen := make(map[string]struct{})
	addColumn := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		t.Columns = append(t.Columns, name)
	}

	for _, msg := range msgs {
		row := Row{Type: msg.Type, Values: make(map[string]any, len(msg.Fields))}
		names := make([]string, 0, len(msg.Fields))
		for name := range msg.Fields {
			names = append(names, name)
		}
		// Sorted per message so the column union is deterministic.
		sort.Strings(names)
		for _, name := range names {
			value := msg.Fields[name]
			if value == nil {
				continue
			}
			row.Values[name] = value
			addColumn(name)
			if unit, ok := msg.Units[name]; ok && unit != "" {
				row.Values[name+UnitsSuffix] = unit
				addColumn(name + UnitsSuffix)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// RowsOfType returns the rows with the given record type, preserving source
// order.
func (t *Table) RowsOfType(recordType string) []Row {
	var rows []Row
	for _, r := range t.Rows {
		if r.Type == recordType {
			rows = append(rows, r)
		}
	}
	return rows
}

// HasColumn reports whether the column name was seen in any message.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ColumnHasValue reports whether at least one row of the given record type
// carries a usable numeric value in the column.
func (t *Table) ColumnHasValue(recordType, column string) bool {
	for _, r := range t.Rows {
		if r.Type != recordType {
			continue
		}
		if _, ok := r.Float(column); ok {
			return true
		}
	}
	return false
}

// Float returns the column value coerced to float64. Missing values,
// non-numeric values and non-finite floats report ok=false.
func (r Row) Float(column string) (float64, bool) {
	v, ok := r.Values[column]
	if !ok {
		return 0, false
	}
	f, ok := floatValue(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String returns the column value when it is a string.
func (r Row) String(column string) (string, bool) {
	s, ok := r.Values[column].(string)
	return s, ok
}

// Time returns the column value when it is a timestamp.
func (r Row) Time(column string) (time.Time, bool) {
	ts, ok := r.Values[column].(time.Time)
	if !ok || ts.IsZero() {
		return time.Time{}, false
	}
	return ts, true
}

func floatValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
