package fitexport

import (
	"fmt"
	"math"
	"strings"
)

const kmhPerMps = 3.6

// Heart-rate intensity banding thresholds in bpm. These are the tool's
// historical literal cutoffs, not derived from athlete data.
const (
	moderateHeartRateBPM = 120
	highHeartRateBPM     = 150
)

// IntensityBand classifies an average heart rate for the narrative summary.
type IntensityBand string

const (
	IntensityLow      IntensityBand = "low"
	IntensityModerate IntensityBand = "moderate"
	IntensityHigh     IntensityBand = "high"
)

// BandForHeartRate maps an average heart rate to its intensity band:
// below 120 bpm is low, 120-149 moderate, 150 and above high.
func BandForHeartRate(avgBPM float64) IntensityBand {
	switch {
	case avgBPM >= highHeartRateBPM:
		return IntensityHigh
	case avgBPM >= moderateHeartRateBPM:
		return IntensityModerate
	default:
		return IntensityLow
	}
}

// MpsToKmh converts a raw sensor speed to display speed.
func MpsToKmh(speedMps float64) float64 {
	return speedMps * kmhPerMps
}

// IsRunning reports whether the sport selects pace display. Comparison is
// case-insensitive.
func IsRunning(sport string) bool {
	return strings.EqualFold(strings.TrimSpace(sport), "running")
}

// PaceMinPerKm derives running pace from a raw speed. Speeds at or below
// zero produce no pace at all rather than a bogus 0:00.
func PaceMinPerKm(speedMps float64) (float64, bool) {
	if speedMps <= 0 || math.IsNaN(speedMps) || math.IsInf(speedMps, 0) {
		return 0, false
	}
	return 60.0 / (speedMps * kmhPerMps), true
}

// FormatPace renders a pace in min/km as "M:SS". The value is first rounded
// to whole seconds so that 5.5555 min/km becomes "5:33" and a remainder of
// 59.6s carries into the next minute.
func FormatPace(minPerKm float64) string {
	total := int(math.Round(minPerKm * 60))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatClock renders a duration in seconds as "M:SS", e.g. 125 -> "2:05".
// Minutes are not wrapped at 60.
func FormatClock(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatLongDuration renders a duration for the key-metrics block,
// e.g. 3000 -> "50 minutes 0 seconds".
func FormatLongDuration(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d minutes %d seconds", total/60, total%60)
}

// SpeedDisplay is the single sport-aware rendering of a raw speed used by
// the lap table, lap chart labeling and the summary. Running gets pace
// ("6:40/km"), everything else speed in km/h; a non-positive speed renders
// as an em-dash.
func SpeedDisplay(sport string, speedMps float64) string {
	if IsRunning(sport) {
		pace, ok := PaceMinPerKm(speedMps)
		if !ok {
			return "—"
		}
		return FormatPace(pace) + "/km"
	}
	if speedMps <= 0 {
		return "—"
	}
	return fmt.Sprintf("%.1f km/h", MpsToKmh(speedMps))
}

// SpeedAxisLabel returns the matching chart axis label for SpeedDisplay.
func SpeedAxisLabel(sport string) string {
	if IsRunning(sport) {
		return "Pace (min/km)"
	}
	return "Speed (km/h)"
}

// RunningCadenceMultiplier doubles one-sided running cadence into steps per
// minute; other sports keep the raw rpm value.
func RunningCadenceMultiplier(sport string) float64 {
	if IsRunning(sport) {
		return 2
	}
	return 1
}
