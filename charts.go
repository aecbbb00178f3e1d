package fitexport

// ChartKind selects how a chart is drawn.
type ChartKind string

const (
	ChartLine       ChartKind = "line"
	ChartBars       ChartKind = "bars"
	ChartHRZones    ChartKind = "hr_zones"
	ChartPaceZones  ChartKind = "pace_zones"
	ChartPowerZones ChartKind = "power_zones"
)

// Transform maps a raw record column onto display values.
type Transform string

const (
	TransformNone  Transform = ""
	TransformKmh   Transform = "kmh"
	TransformPace  Transform = "pace"
	TransformSteps Transform = "steps"
)

// ChartSpec describes one chart to materialize: the output file is named
// "<activity-basename>_<key>.png" and the rendering step consumes Column,
// Kind and Transform to produce it.
type ChartSpec struct {
	Key       string
	Title     string
	YLabel    string
	Kind      ChartKind
	Column    string
	Transform Transform
	Advanced  bool
}

// SelectCharts decides which charts to produce based purely on column
// presence in the record rows (plus lap count for the lap chart). The
// advanced tier is strictly additive: enabling it never removes a basic
// chart. Sport-specific unit choices follow the shared pace-vs-speed rule.
func SelectCharts(t *Table, act *Activity, advanced bool) []ChartSpec {
	sport := act.Session.Sport
	sportTitle := titleSport(sport)

	var specs []ChartSpec
	if t.ColumnHasValue(TypeRecord, "heart_rate") {
		specs = append(specs, ChartSpec{
			Key:    "heart_rate",
			Title:  "Heart Rate During " + sportTitle,
			YLabel: "Heart Rate (bpm)",
			Kind:   ChartLine,
			Column: "heart_rate",
		})
	}
	if t.HasColumn("speed") {
		spec := ChartSpec{
			Key:       "speed",
			Title:     "Speed During " + sportTitle,
			YLabel:    SpeedAxisLabel(sport),
			Kind:      ChartLine,
			Column:    "speed",
			Transform: TransformKmh,
		}
		if IsRunning(sport) {
			spec.Key = "pace"
			spec.Title = "Pace During " + sportTitle
			spec.Transform = TransformPace
		}
		specs = append(specs, spec)
	}
	if t.HasColumn("altitude") {
		specs = append(specs, ChartSpec{
			Key:    "elevation",
			Title:  "Elevation Profile for " + sportTitle,
			YLabel: "Altitude (m)",
			Kind:   ChartLine,
			Column: "altitude",
		})
	}
	if len(act.Laps) >= 2 {
		specs = append(specs, ChartSpec{
			Key:    "lap_analysis",
			Title:  "Lap Analysis for " + sportTitle,
			YLabel: SpeedAxisLabel(sport),
			Kind:   ChartBars,
		})
	}

	if !advanced {
		return specs
	}

	if t.ColumnHasValue(TypeRecord, "heart_rate") && act.Session.MaxHeartRate != nil {
		specs = append(specs, ChartSpec{
			Key:      "hr_zones",
			Title:    "Heart Rate Zones for " + sportTitle,
			YLabel:   "Time in Zone (%)",
			Kind:     ChartHRZones,
			Column:   "heart_rate",
			Advanced: true,
		})
	}
	if IsRunning(sport) && t.ColumnHasValue(TypeRecord, "cadence") {
		specs = append(specs, ChartSpec{
			Key:       "cadence",
			Title:     "Cadence During " + sportTitle,
			YLabel:    "Cadence (spm)",
			Kind:      ChartLine,
			Column:    "cadence",
			Transform: TransformSteps,
			Advanced:  true,
		})
	}
	if IsRunning(sport) && t.ColumnHasValue(TypeRecord, "speed") {
		specs = append(specs, ChartSpec{
			Key:      "pace_zones",
			Title:    "Pace Zones for " + sportTitle,
			YLabel:   "Time in Zone (%)",
			Kind:     ChartPaceZones,
			Column:   "speed",
			Advanced: true,
		})
	}
	if isCycling(sport) && t.ColumnHasValue(TypeRecord, "power") {
		specs = append(specs, ChartSpec{
			Key:      "power",
			Title:    "Power Output During " + sportTitle,
			YLabel:   "Power (watts)",
			Kind:     ChartLine,
			Column:   "power",
			Advanced: true,
		})
		specs = append(specs, ChartSpec{
			Key:      "power_zones",
			Title:    "Power Zone Distribution for " + sportTitle,
			YLabel:   "Time in Zone (%)",
			Kind:     ChartPowerZones,
			Column:   "power",
			Advanced: true,
		})
	}
	return specs
}
