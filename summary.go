package fitexport

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// reflectionQuestions closes every summary; the list is fixed.
var reflectionQuestions = []string{
	"What aspects of this workout indicate good performance?",
	"How can I improve my training based on these metrics?",
	"What would be good follow-up workouts after this session?",
	"How does this compare to typical metrics for my sport?",
}

// ChartLink references a rendered chart image, relative to the summary file.
type ChartLink struct {
	Title   string
	RelPath string
}

// Summary renders the activity narrative as markdown in fixed section
// order: headline, key metrics, lap table (when two or more laps exist),
// performance assessment, reflection questions. Every caller path goes
// through this one function so numeric formatting cannot diverge.
func Summary(act *Activity) string {
	s := act.Session
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Workout Summary\n\n", titleSport(s.Sport))
	if !s.StartTime.IsZero() {
		fmt.Fprintf(&b, "**Date:** %s\n\n", s.StartTime.Format("2006-01-02 15:04:05"))
	}

	b.WriteString("## Key Metrics\n\n")
	if s.TotalDistanceM != nil {
		fmt.Fprintf(&b, "**Distance:** %.2f km\n", *s.TotalDistanceM/1000.0)
	}
	if s.TotalElapsedS != nil {
		fmt.Fprintf(&b, "**Duration:** %s\n", FormatLongDuration(*s.TotalElapsedS))
	}
	if s.Calories != nil {
		fmt.Fprintf(&b, "**Calories:** %d\n", int(*s.Calories))
	}
	if s.AvgHeartRate != nil {
		if s.MaxHeartRate != nil {
			fmt.Fprintf(&b, "**Heart Rate:** Avg %d bpm, Max %d bpm\n", int(*s.AvgHeartRate), int(*s.MaxHeartRate))
		} else {
			fmt.Fprintf(&b, "**Heart Rate:** Avg %d bpm\n", int(*s.AvgHeartRate))
		}
	}
	if s.AvgSpeedMps != nil {
		if IsRunning(s.Sport) {
			fmt.Fprintf(&b, "**Avg Pace:** %s\n", SpeedDisplay(s.Sport, *s.AvgSpeedMps))
		} else {
			fmt.Fprintf(&b, "**Avg Speed:** %s\n", SpeedDisplay(s.Sport, *s.AvgSpeedMps))
			if s.MaxSpeedMps != nil {
				fmt.Fprintf(&b, "**Max Speed:** %s\n", SpeedDisplay(s.Sport, *s.MaxSpeedMps))
			}
		}
	}
	if s.AvgCadence != nil {
		mult := RunningCadenceMultiplier(s.Sport)
		unit := "rpm"
		if IsRunning(s.Sport) {
			unit = "spm"
		}
		fmt.Fprintf(&b, "**Cadence:** Avg %d %s\n", int(*s.AvgCadence*mult), unit)
	}
	if s.TotalAscentM != nil || s.TotalDescentM != nil {
		var parts []string
		if s.TotalAscentM != nil {
			parts = append(parts, fmt.Sprintf("Gain %dm", int(*s.TotalAscentM)))
		}
		if s.TotalDescentM != nil {
			parts = append(parts, fmt.Sprintf("Loss %dm", int(*s.TotalDescentM)))
		}
		fmt.Fprintf(&b, "**Elevation:** %s\n", strings.Join(parts, ", "))
	}
	b.WriteString("\n")

	if laps := act.LapTable(); laps != nil {
		b.WriteString("## Lap Breakdown\n\n")
		header := "Pace"
		if !IsRunning(s.Sport) {
			header = "Speed"
		}
		fmt.Fprintf(&b, "| Lap | Distance (km) | Time | Avg HR | %s |\n", header)
		b.WriteString("|-----|---------------|------|--------|------|\n")
		for _, lap := range laps {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				lap.Number, lap.Distance, lap.Time, lap.AvgHR, lap.PaceOrSpeed)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Performance Assessment\n\n")
	b.WriteString(assessment(act))
	b.WriteString("\n\n")

	b.WriteString("## Reflection Questions\n\n")
	for i, q := range reflectionQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}

	return b.String()
}

// ChartLinksSection renders the chart references appended after a summary.
func ChartLinksSection(links []ChartLink) string {
	if len(links) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n## Charts\n\n")
	for _, link := range links {
		fmt.Fprintf(&b, "![%s](%s)\n\n", link.Title, link.RelPath)
	}
	return b.String()
}

func assessment(act *Activity) string {
	s := act.Session
	var b strings.Builder

	if s.AvgHeartRate != nil {
		band := BandForHeartRate(*s.AvgHeartRate)
		fmt.Fprintf(&b, "Your average heart rate of %d bpm places this session in the %s intensity range", int(*s.AvgHeartRate), band)
		switch band {
		case IntensityLow:
			b.WriteString(", consistent with recovery or easy aerobic work.")
		case IntensityModerate:
			b.WriteString(", good for building aerobic fitness.")
		case IntensityHigh:
			b.WriteString(", suggesting a hard workout or race effort.")
		}
	} else {
		b.WriteString("No heart-rate data was recorded, so intensity cannot be assessed for this session.")
	}

	if len(act.Laps) >= 2 {
		fmt.Fprintf(&b, " The activity was split into %d laps.", len(act.Laps))
	}
	if act.RecordCount > 0 {
		fmt.Fprintf(&b, " The assessment is based on %s recorded data points.", humanize.Comma(int64(act.RecordCount)))
	}
	return b.String()
}

func titleSport(sport string) string {
	sport = strings.TrimSpace(sport)
	if sport == "" {
		return "Activity"
	}
	return strings.ToUpper(sport[:1]) + strings.ToLower(sport[1:])
}

func isCycling(sport string) bool {
	return strings.EqualFold(sport, "cycling") || strings.EqualFold(sport, "biking")
}
