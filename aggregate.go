package fitexport

import (
	"fmt"
	"time"
)

// Session holds the activity-level aggregates from the (single) session
// message. Optional source fields are pointers so absence stays visible
// downstream instead of turning into zeroes.
type Session struct {
	Sport          string
	SubSport       string
	StartTime      time.Time
	TotalDistanceM *float64
	TotalElapsedS  *float64
	TotalTimerS    *float64
	Calories       *float64
	AvgHeartRate   *float64
	MaxHeartRate   *float64
	AvgSpeedMps    *float64
	MaxSpeedMps    *float64
	AvgCadence     *float64
	MaxCadence     *float64
	AvgPowerW      *float64
	MaxPowerW      *float64
	TotalAscentM   *float64
	TotalDescentM  *float64
}

// Lap is one lap-scoped aggregate. Number is the 1-indexed position in
// source message order.
type Lap struct {
	Number         int
	TotalDistanceM *float64
	TotalElapsedS  *float64
	AvgHeartRate   *float64
	AvgSpeedMps    *float64
	TotalAscentM   *float64
}

// Activity is the aggregated view of one parsed activity table.
type Activity struct {
	Session     Session
	Laps        []Lap
	RecordCount int
}

// Aggregate selects the session row and the ordered lap rows from a table.
// A missing session row is reported as ErrNoSession; zero laps is valid.
// sportOverride, when non-empty, replaces the sport read from the session.
func Aggregate(t *Table, sportOverride string) (*Activity, error) {
	sessions := t.RowsOfType(TypeSession)
	if len(sessions) == 0 {
		return nil, ErrNoSession
	}
	session := sessions[0]

	act := &Activity{
		Session:     sessionFromRow(session),
		RecordCount: len(t.RowsOfType(TypeRecord)),
	}
	if sportOverride != "" {
		act.Session.Sport = sportOverride
	}

	for i, row := range t.RowsOfType(TypeLap) {
		act.Laps = append(act.Laps, Lap{
			Number:         i + 1,
			TotalDistanceM: optionalFloat(row, "total_distance"),
			TotalElapsedS:  optionalFloat(row, "total_elapsed_time"),
			AvgHeartRate:   optionalFloat(row, "avg_heart_rate"),
			AvgSpeedMps:    optionalFloat(row, "avg_speed"),
			TotalAscentM:   optionalFloat(row, "total_ascent"),
		})
	}
	return act, nil
}

func sessionFromRow(row Row) Session {
	s := Session{
		TotalDistanceM: optionalFloat(row, "total_distance"),
		TotalElapsedS:  optionalFloat(row, "total_elapsed_time"),
		TotalTimerS:    optionalFloat(row, "total_timer_time"),
		Calories:       optionalFloat(row, "total_calories"),
		AvgHeartRate:   optionalFloat(row, "avg_heart_rate"),
		MaxHeartRate:   optionalFloat(row, "max_heart_rate"),
		AvgSpeedMps:    optionalFloat(row, "avg_speed"),
		MaxSpeedMps:    optionalFloat(row, "max_speed"),
		AvgCadence:     optionalFloat(row, "avg_cadence"),
		MaxCadence:     optionalFloat(row, "max_cadence"),
		AvgPowerW:      optionalFloat(row, "avg_power"),
		MaxPowerW:      optionalFloat(row, "max_power"),
		TotalAscentM:   optionalFloat(row, "total_ascent"),
		TotalDescentM:  optionalFloat(row, "total_descent"),
	}
	if sport, ok := row.String("sport"); ok {
		s.Sport = sport
	}
	if sub, ok := row.String("sub_sport"); ok {
		s.SubSport = sub
	}
	if ts, ok := row.Time("start_time"); ok {
		s.StartTime = ts
	}
	return s
}

func optionalFloat(row Row, column string) *float64 {
	if v, ok := row.Float(column); ok {
		out := v
		return &out
	}
	return nil
}

// LapRow is one rendered line of the lap table.
type LapRow struct {
	Number      int
	Distance    string
	Time        string
	AvgHR       string
	PaceOrSpeed string
}

// LapTable renders the lap breakdown. Activities with fewer than two laps
// produce no table at all: a single lap repeats the session summary and is
// skipped rather than treated as an error.
func (a *Activity) LapTable() []LapRow {
	if len(a.Laps) < 2 {
		return nil
	}
	rows := make([]LapRow, 0, len(a.Laps))
	for _, lap := range a.Laps {
		row := LapRow{
			Number:      lap.Number,
			Distance:    "—",
			Time:        "—",
			AvgHR:       "—",
			PaceOrSpeed: "—",
		}
		if lap.TotalDistanceM != nil {
			row.Distance = fmt.Sprintf("%.2f", *lap.TotalDistanceM/1000.0)
		}
		if lap.TotalElapsedS != nil {
			row.Time = FormatClock(*lap.TotalElapsedS)
		}
		if lap.AvgHeartRate != nil && *lap.AvgHeartRate > 0 {
			row.AvgHR = fmt.Sprintf("%d", int(*lap.AvgHeartRate))
		}
		if lap.AvgSpeedMps != nil {
			row.PaceOrSpeed = SpeedDisplay(a.Session.Sport, *lap.AvgSpeedMps)
		}
		rows = append(rows, row)
	}
	return rows
}
