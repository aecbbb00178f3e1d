// Package render materializes chart specs as PNG files using gonum/plot.
// Each chart draws from the record or lap rows of an activity table; the
// caller decides which charts to produce.
package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"fitexport"
)

var (
	heartRateColor = color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}
	speedColor     = color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}
	elevationColor = color.RGBA{R: 0x43, G: 0xa0, B: 0x47, A: 0xff}
	cadenceColor   = color.RGBA{R: 0x8e, G: 0x24, B: 0xaa, A: 0xff}
	powerColor     = color.RGBA{R: 0xfb, G: 0x8c, B: 0x00, A: 0xff}
	barColor       = color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}
)

// FileName returns the chart's file name for an activity base name:
// "<base>_<key>.png".
func FileName(base string, spec fitexport.ChartSpec) string {
	return base + "_" + spec.Key + ".png"
}

// Chart renders one chart spec into dir and returns the written file path.
// The directory is created if needed.
func Chart(dir, base string, t *fitexport.Table, act *fitexport.Activity, spec fitexport.ChartSpec) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	path := filepath.Join(dir, FileName(base, spec))

	var err error
	switch spec.Kind {
	case fitexport.ChartLine:
		err = renderLine(path, t, act, spec)
	case fitexport.ChartBars:
		err = renderLapBars(path, act, spec)
	case fitexport.ChartHRZones:
		err = renderHRZones(path, t, act, spec)
	case fitexport.ChartPaceZones:
		err = renderPaceZones(path, t, act, spec)
	case fitexport.ChartPowerZones:
		err = renderPowerZones(path, t, act, spec)
	default:
		err = fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("chart %s: %w", spec.Key, err)
	}
	return path, nil
}

func renderLine(path string, t *fitexport.Table, act *fitexport.Activity, spec fitexport.ChartSpec) error {
	pts := seriesPoints(t, act, spec)
	if len(pts) == 0 {
		return fmt.Errorf("no %s samples to plot", spec.Column)
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = "Time (minutes)"
	p.Y.Label.Text = spec.YLabel
	if spec.Transform == fitexport.TransformPace {
		// Lower pace is faster; flip the axis so better efforts plot higher.
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
		p.Y.Tick.Marker = paceTicker{}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = lineColor(spec)
	p.Add(line)
	p.Add(plotter.NewGrid())

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// seriesPoints builds the (minutes, value) series for a line chart. The time
// axis is minutes from the first record timestamp; rows without timestamps
// fall back to their sample index.
func seriesPoints(t *fitexport.Table, act *fitexport.Activity, spec fitexport.ChartSpec) plotter.XYs {
	records := t.RowsOfType(fitexport.TypeRecord)
	start, haveStart := firstTimestamp(records)

	var pts plotter.XYs
	for i, r := range records {
		v, ok := r.Float(spec.Column)
		if !ok {
			continue
		}
		y, ok := transformValue(v, spec.Transform, act.Session.Sport)
		if !ok {
			continue
		}
		x := float64(i)
		if haveStart {
			ts, ok := r.Time("timestamp")
			if !ok {
				continue
			}
			x = ts.Sub(start).Minutes()
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

func firstTimestamp(records []fitexport.Row) (time.Time, bool) {
	for _, r := range records {
		if ts, ok := r.Time("timestamp"); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

func transformValue(v float64, transform fitexport.Transform, sport string) (float64, bool) {
	switch transform {
	case fitexport.TransformKmh:
		return fitexport.MpsToKmh(v), true
	case fitexport.TransformPace:
		return fitexport.PaceMinPerKm(v)
	case fitexport.TransformSteps:
		return v * fitexport.RunningCadenceMultiplier(sport), true
	default:
		return v, true
	}
}

func lineColor(spec fitexport.ChartSpec) color.Color {
	switch spec.Column {
	case "heart_rate":
		return heartRateColor
	case "altitude":
		return elevationColor
	case "cadence":
		return cadenceColor
	case "power":
		return powerColor
	default:
		return speedColor
	}
}

func renderLapBars(path string, act *fitexport.Activity, spec fitexport.ChartSpec) error {
	if len(act.Laps) < 2 {
		return fmt.Errorf("need at least two laps, have %d", len(act.Laps))
	}
	running := fitexport.IsRunning(act.Session.Sport)

	values := make(plotter.Values, 0, len(act.Laps))
	labels := make([]string, 0, len(act.Laps))
	for _, lap := range act.Laps {
		v := 0.0
		if lap.AvgSpeedMps != nil {
			if running {
				if pace, ok := fitexport.PaceMinPerKm(*lap.AvgSpeedMps); ok {
					v = pace
				}
			} else {
				v = fitexport.MpsToKmh(*lap.AvgSpeedMps)
			}
		}
		values = append(values, v)
		labels = append(labels, strconv.Itoa(lap.Number))
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = "Lap Number"
	p.Y.Label.Text = spec.YLabel
	if running {
		p.Y.Tick.Marker = paceTicker{}
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

// hrZones are fractions of session max heart rate, low bound inclusive.
var hrZones = []struct {
	label     string
	low, high float64
}{
	{"Zone 1 (Recovery)", 0.5, 0.6},
	{"Zone 2 (Easy)", 0.6, 0.7},
	{"Zone 3 (Aerobic)", 0.7, 0.8},
	{"Zone 4 (Threshold)", 0.8, 0.9},
	{"Zone 5 (Maximum)", 0.9, 1.0},
}

const defaultMaxHeartRate = 190.0

func renderHRZones(path string, t *fitexport.Table, act *fitexport.Activity, spec fitexport.ChartSpec) error {
	maxHR := defaultMaxHeartRate
	if act.Session.MaxHeartRate != nil && *act.Session.MaxHeartRate > 0 {
		maxHR = *act.Session.MaxHeartRate
	}

	counts := make([]float64, len(hrZones)+1)
	total := 0.0
	for _, r := range t.RowsOfType(fitexport.TypeRecord) {
		hr, ok := r.Float(spec.Column)
		if !ok {
			continue
		}
		total++
		if hr >= maxHR {
			counts[len(hrZones)]++
			continue
		}
		for i, z := range hrZones {
			if hr >= maxHR*z.low && hr < maxHR*z.high {
				counts[i]++
				break
			}
		}
	}
	if total == 0 {
		return fmt.Errorf("no heart rate samples to plot")
	}

	labels := make([]string, len(counts))
	for i := range hrZones {
		labels[i] = hrZones[i].label
	}
	labels[len(hrZones)] = "Above Max"

	return renderZoneBars(path, spec.Title, "Heart Rate Zone", spec.YLabel, labels, counts, total, heartRateColor)
}

// paceZones are fractions of the session's average speed; a higher fraction
// is a faster effort. Low bound inclusive.
var paceZones = []struct {
	label     string
	low, high float64
}{
	{"Zone 1 (Recovery)", 0, 0.70},
	{"Zone 2 (Easy)", 0.70, 0.85},
	{"Zone 3 (Steady)", 0.85, 0.95},
	{"Zone 4 (Threshold)", 0.95, 1.05},
	{"Zone 5 (Fast)", 1.05, math.Inf(1)},
}

// Samples at or below this speed count as stopped, not as a pace zone.
const stoppedSpeedMps = 0.2

func renderPaceZones(path string, t *fitexport.Table, act *fitexport.Activity, spec fitexport.ChartSpec) error {
	records := t.RowsOfType(fitexport.TypeRecord)

	threshold := 0.0
	if act.Session.AvgSpeedMps != nil && *act.Session.AvgSpeedMps > 0 {
		threshold = *act.Session.AvgSpeedMps
	} else {
		sum, n := 0.0, 0
		for _, r := range records {
			if v, ok := r.Float(spec.Column); ok && v > stoppedSpeedMps {
				sum += v
				n++
			}
		}
		if n > 0 {
			threshold = sum / float64(n)
		}
	}
	if threshold <= 0 {
		return fmt.Errorf("no speed samples to plot")
	}

	counts := make([]float64, len(paceZones))
	labels := make([]string, len(paceZones))
	total := 0.0
	for _, r := range records {
		v, ok := r.Float(spec.Column)
		if !ok || v <= stoppedSpeedMps {
			continue
		}
		total++
		frac := v / threshold
		for i, z := range paceZones {
			if frac >= z.low && frac < z.high {
				counts[i]++
				break
			}
		}
	}
	if total == 0 {
		return fmt.Errorf("no speed samples to plot")
	}
	for i, z := range paceZones {
		labels[i] = z.label
	}

	return renderZoneBars(path, spec.Title, "Pace Zone", spec.YLabel, labels, counts, total, speedColor)
}

// powerZones are fractions of estimated FTP, low bound inclusive.
var powerZones = []struct {
	label     string
	low, high float64
}{
	{"Zone 1 (Recovery)", 0, 0.55},
	{"Zone 2 (Endurance)", 0.55, 0.75},
	{"Zone 3 (Tempo)", 0.75, 0.90},
	{"Zone 4 (Threshold)", 0.90, 1.05},
	{"Zone 5 (VO2 Max)", 1.05, 1.20},
	{"Zone 6 (Anaerobic)", 1.20, 1.50},
	{"Zone 7 (Sprint)", 1.50, math.Inf(1)},
}

const defaultFTPWatts = 250.0

func renderPowerZones(path string, t *fitexport.Table, act *fitexport.Activity, spec fitexport.ChartSpec) error {
	records := t.RowsOfType(fitexport.TypeRecord)

	avgPower, maxPower := 0.0, 0.0
	if act.Session.AvgPowerW != nil {
		avgPower = *act.Session.AvgPowerW
	}
	if act.Session.MaxPowerW != nil {
		maxPower = *act.Session.MaxPowerW
	}
	if avgPower == 0 || maxPower == 0 {
		sum, n := 0.0, 0
		for _, r := range records {
			if v, ok := r.Float(spec.Column); ok && v > 0 {
				sum += v
				n++
				if v > maxPower {
					maxPower = v
				}
			}
		}
		if avgPower == 0 && n > 0 {
			avgPower = sum / float64(n)
		}
	}

	// Rough FTP estimate: ~76% of max power, refined upward from a hard
	// workout's average.
	ftp := defaultFTPWatts
	if maxPower > 0 {
		ftp = maxPower * 0.76
	}
	if avgPower > 0 && avgPower*1.07 > ftp {
		ftp = avgPower * 1.07
	}

	counts := make([]float64, len(powerZones))
	labels := make([]string, len(powerZones))
	total := 0.0
	for _, r := range records {
		v, ok := r.Float(spec.Column)
		if !ok || v <= 0 {
			continue
		}
		total++
		frac := v / ftp
		for i, z := range powerZones {
			if frac >= z.low && frac < z.high {
				counts[i]++
				break
			}
		}
	}
	if total == 0 {
		return fmt.Errorf("no power samples to plot")
	}
	for i, z := range powerZones {
		labels[i] = z.label
	}

	title := fmt.Sprintf("%s (FTP Estimate: %d watts)", spec.Title, int(ftp))
	return renderZoneBars(path, title, "Power Zone", spec.YLabel, labels, counts, total, powerColor)
}

// renderZoneBars draws zone counts as percent-of-total bars.
func renderZoneBars(path, title, xLabel, yLabel string, labels []string, counts []float64, total float64, c color.Color) error {
	values := make(plotter.Values, len(counts))
	for i, n := range counts {
		values[i] = n / total * 100
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return err
	}
	bars.Color = c
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// paceTicker relabels default ticks as M:SS pace strings.
type paceTicker struct{}

func (paceTicker) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		ticks[i].Label = fitexport.FormatPace(tk.Value)
	}
	return ticks
}
