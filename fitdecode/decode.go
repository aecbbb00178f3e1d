// Package fitdecode adapts tormoder/fit activity files into the flat
// message form consumed by the conversion pipeline. All FIT invalid-value
// sentinels (0xFF / 0xFFFF / 0x7F families) are dropped here so downstream
// code only ever sees usable values.
package fitdecode

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"fitexport"
)

// File decodes a FIT activity file into messages.
func File(path string) ([]fitexport.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read FIT file: %w", err)
	}
	return Bytes(data)
}

// Bytes decodes an in-memory FIT activity into messages.
func Bytes(data []byte) ([]fitexport.Message, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	return FromActivity(activity), nil
}

// FromActivity flattens the typed activity messages into (type, fields,
// units) triples, preserving the session / laps / records grouping order of
// the decoded file.
func FromActivity(activity *fit.ActivityFile) []fitexport.Message {
	if activity == nil {
		return nil
	}
	msgs := make([]fitexport.Message, 0, len(activity.Sessions)+len(activity.Laps)+len(activity.Records)+len(activity.Events))

	for _, session := range activity.Sessions {
		if session == nil {
			continue
		}
		msgs = append(msgs, sessionMessage(session))
	}
	for _, lap := range activity.Laps {
		if lap == nil {
			continue
		}
		msgs = append(msgs, lapMessage(lap))
	}
	for _, rec := range activity.Records {
		if rec == nil {
			continue
		}
		msgs = append(msgs, recordMessage(rec))
	}
	for _, event := range activity.Events {
		if event == nil {
			continue
		}
		msgs = append(msgs, eventMessage(event))
	}
	return msgs
}

type fieldSet struct {
	fields map[string]any
	units  map[string]string
}

func newFieldSet() *fieldSet {
	return &fieldSet{fields: make(map[string]any), units: make(map[string]string)}
}

func (fs *fieldSet) put(name string, value any, unit string) {
	fs.fields[name] = value
	if unit != "" {
		fs.units[name] = unit
	}
}

func (fs *fieldSet) putFloat(name string, value float64, unit string) {
	if !isFinite(value) || value < 0 {
		return
	}
	fs.put(name, value, unit)
}

// putSignedFloat keeps any finite value; altitude may be below sea level.
func (fs *fieldSet) putSignedFloat(name string, value float64, unit string) {
	if !isFinite(value) {
		return
	}
	fs.put(name, value, unit)
}

func (fs *fieldSet) putTime(name string, ts time.Time) {
	if ts.IsZero() || fit.IsBaseTime(ts) {
		return
	}
	fs.put(name, ts.UTC(), "")
}

func sessionMessage(s *fit.SessionMsg) fitexport.Message {
	fs := newFieldSet()
	if s.Sport != fit.SportInvalid {
		fs.put("sport", sportName(s.Sport), "")
	}
	if s.SubSport != fit.SubSportInvalid {
		fs.put("sub_sport", strings.ToLower(fmt.Sprint(s.SubSport)), "")
	}
	fs.putTime("start_time", s.StartTime)
	fs.putTime("timestamp", s.Timestamp)
	fs.putFloat("total_elapsed_time", s.GetTotalElapsedTimeScaled(), "s")
	fs.putFloat("total_timer_time", s.GetTotalTimerTimeScaled(), "s")
	fs.putFloat("total_distance", s.GetTotalDistanceScaled(), "m")
	if v := validUint16(s.TotalCalories); v > 0 {
		fs.put("total_calories", float64(v), "kcal")
	}
	if v := validUint8(s.AvgHeartRate); v > 0 {
		fs.put("avg_heart_rate", float64(v), "bpm")
	}
	if v := validUint8(s.MaxHeartRate); v > 0 {
		fs.put("max_heart_rate", float64(v), "bpm")
	}
	fs.putFloat("avg_speed", firstSpeed(s.GetEnhancedAvgSpeedScaled(), s.GetAvgSpeedScaled()), "m/s")
	fs.putFloat("max_speed", firstSpeed(s.GetEnhancedMaxSpeedScaled(), s.GetMaxSpeedScaled()), "m/s")
	if v := cadenceValue(s.GetAvgCadence()); v > 0 {
		fs.put("avg_cadence", v, "rpm")
	}
	if v := cadenceValue(s.GetMaxCadence()); v > 0 {
		fs.put("max_cadence", v, "rpm")
	}
	if v := validUint16(s.AvgPower); v > 0 {
		fs.put("avg_power", float64(v), "watts")
	}
	if v := validUint16(s.MaxPower); v > 0 {
		fs.put("max_power", float64(v), "watts")
	}
	if v := validUint16(s.TotalAscent); v > 0 {
		fs.put("total_ascent", float64(v), "m")
	}
	if v := validUint16(s.TotalDescent); v > 0 {
		fs.put("total_descent", float64(v), "m")
	}
	return fitexport.Message{Type: fitexport.TypeSession, Fields: fs.fields, Units: fs.units}
}

func lapMessage(l *fit.LapMsg) fitexport.Message {
	fs := newFieldSet()
	fs.putTime("start_time", l.StartTime)
	fs.putTime("timestamp", l.Timestamp)
	fs.putFloat("total_elapsed_time", l.GetTotalElapsedTimeScaled(), "s")
	fs.putFloat("total_timer_time", l.GetTotalTimerTimeScaled(), "s")
	fs.putFloat("total_distance", l.GetTotalDistanceScaled(), "m")
	if v := validUint8(l.AvgHeartRate); v > 0 {
		fs.put("avg_heart_rate", float64(v), "bpm")
	}
	if v := validUint8(l.MaxHeartRate); v > 0 {
		fs.put("max_heart_rate", float64(v), "bpm")
	}
	fs.putFloat("avg_speed", firstSpeed(l.GetEnhancedAvgSpeedScaled(), l.GetAvgSpeedScaled()), "m/s")
	if v := cadenceValue(l.GetAvgCadence()); v > 0 {
		fs.put("avg_cadence", v, "rpm")
	}
	if v := validUint16(l.TotalAscent); v > 0 {
		fs.put("total_ascent", float64(v), "m")
	}
	if v := validUint16(l.TotalDescent); v > 0 {
		fs.put("total_descent", float64(v), "m")
	}
	return fitexport.Message{Type: fitexport.TypeLap, Fields: fs.fields, Units: fs.units}
}

func recordMessage(r *fit.RecordMsg) fitexport.Message {
	fs := newFieldSet()
	fs.putTime("timestamp", r.Timestamp)
	if v := validUint8(r.HeartRate); v > 0 {
		fs.put("heart_rate", float64(v), "bpm")
	}
	fs.putFloat("speed", firstSpeed(r.GetEnhancedSpeedScaled(), r.GetSpeedScaled()), "m/s")
	fs.putFloat("distance", r.GetDistanceScaled(), "m")
	if v := r.GetEnhancedAltitudeScaled(); isFinite(v) {
		fs.putSignedFloat("altitude", v, "m")
	} else {
		fs.putSignedFloat("altitude", r.GetAltitudeScaled(), "m")
	}
	if r.Cadence != math.MaxUint8 {
		fs.put("cadence", float64(r.Cadence), "rpm")
	}
	if r.Power != math.MaxUint16 {
		fs.put("power", float64(r.Power), "watts")
	}
	if r.Temperature != math.MaxInt8 {
		fs.put("temperature", float64(r.Temperature), "C")
	}
	return fitexport.Message{Type: fitexport.TypeRecord, Fields: fs.fields, Units: fs.units}
}

func eventMessage(e *fit.EventMsg) fitexport.Message {
	fs := newFieldSet()
	fs.putTime("timestamp", e.Timestamp)
	fs.put("event", strings.ToLower(fmt.Sprint(e.Event)), "")
	fs.put("event_type", strings.ToLower(fmt.Sprint(e.EventType)), "")
	return fitexport.Message{Type: "event", Fields: fs.fields, Units: fs.units}
}

func sportName(s fit.Sport) string {
	switch s {
	case fit.SportRunning:
		return "running"
	case fit.SportCycling:
		return "cycling"
	case fit.SportSwimming:
		return "swimming"
	case fit.SportWalking:
		return "walking"
	case fit.SportHiking:
		return "hiking"
	default:
		return strings.ToLower(fmt.Sprint(s))
	}
}

// firstSpeed prefers the enhanced-field value when it is usable. Zero is a
// valid speed sample; invalid sentinels decode to NaN and are skipped.
func firstSpeed(enhanced, plain float64) float64 {
	if isFinite(enhanced) && enhanced >= 0 {
		return enhanced
	}
	if isFinite(plain) && plain >= 0 {
		return plain
	}
	return math.NaN()
}

func cadenceValue(v any) float64 {
	switch x := v.(type) {
	case uint8:
		if x == math.MaxUint8 {
			return 0
		}
		return float64(x)
	case uint16:
		if x == math.MaxUint16 {
			return 0
		}
		return float64(x)
	case float64:
		if !isFinite(x) || x < 0 {
			return 0
		}
		return x
	default:
		return 0
	}
}

func validUint8(v uint8) uint8 {
	if v == math.MaxUint8 {
		return 0
	}
	return v
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
