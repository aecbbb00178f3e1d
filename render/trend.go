package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// TrendPoint is one dated sample of a trend series.
type TrendPoint struct {
	Date  time.Time
	Value float64
}

// TrendSeries is one named line of a trend chart.
type TrendSeries struct {
	Name   string
	Points []TrendPoint
}

// TrendSpec describes a date-axis chart spanning multiple activities. Pace
// flips the value axis and formats ticks as M:SS, matching the single
// activity pace charts.
type TrendSpec struct {
	Title  string
	YLabel string
	Pace   bool
	Series []TrendSeries
}

var trendColors = []color.Color{speedColor, heartRateColor, elevationColor, cadenceColor, powerColor}

// Trend renders one trend chart into path, creating the directory if
// needed. Every series needs at least two points to show a trend.
func Trend(path string, spec TrendSpec) error {
	if len(spec.Series) == 0 {
		return fmt.Errorf("no series to plot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = spec.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	if spec.Pace {
		p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
		p.Y.Tick.Marker = paceTicker{}
	}

	for i, series := range spec.Series {
		if len(series.Points) < 2 {
			return fmt.Errorf("series %s has %d points, need at least two", series.Name, len(series.Points))
		}
		xys := make(plotter.XYs, len(series.Points))
		for j, pt := range series.Points {
			xys[j] = plotter.XY{X: float64(pt.Date.Unix()), Y: pt.Value}
		}
		line, markers, err := plotter.NewLinePoints(xys)
		if err != nil {
			return err
		}
		c := trendColors[i%len(trendColors)]
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = c
		markers.GlyphStyle.Color = c
		markers.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, markers)
		if len(spec.Series) > 1 {
			p.Legend.Add(series.Name, line, markers)
		}
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
