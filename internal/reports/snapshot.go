package reports

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	covid "covidviz/internal/charts"
	"covidviz/internal/dashboard"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoSeries is returned when there is nothing to plot.
var ErrNoSeries = errors.New("reports: no plottable series")

// SnapshotOptions configures the PNG export of the line chart.
type SnapshotOptions struct {
	Width, Height   int
	Title           string
	Y1Label         string
	Y2Label         string
	ShowSecondYAxis bool
}

// RenderLineSnapshot draws the series as a static PNG. The second measure
// goes on the secondary axis as dashed lines.
func RenderLineSnapshot(w io.Writer, series []covid.Series, o SnapshotOptions) error {
	var plotted []chart.Series
	for _, s := range series {
		color := seriesColor(s.Color)
		if ts, ok := timeSeries(s, func(p covid.SeriesPoint) float64 { return p.Y1 }); ok {
			ts.Name = covid.LegendLabel(s.Key)
			ts.Style = chart.Style{StrokeColor: color, StrokeWidth: 2}
			plotted = append(plotted, ts)
		}
		if !o.ShowSecondYAxis {
			continue
		}
		if ts, ok := timeSeries(s, func(p covid.SeriesPoint) float64 { return p.Y2 }); ok {
			ts.Name = covid.LegendLabel(s.Key) + " (dashed)"
			ts.YAxis = chart.YAxisSecondary
			ts.Style = chart.Style{StrokeColor: color, StrokeWidth: 1.5, StrokeDashArray: []float64{6, 4}}
			plotted = append(plotted, ts)
		}
	}
	if len(plotted) == 0 {
		return ErrNoSeries
	}

	graph := chart.Chart{
		Title: o.Title,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Width:  o.Width,
		Height: o.Height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 2006"),
		},
		YAxis: chart.YAxis{
			Name:           o.Y1Label,
			ValueFormatter: compactValue,
		},
		Series: plotted,
	}
	if o.ShowSecondYAxis {
		graph.YAxisSecondary = chart.YAxis{
			Name:           o.Y2Label,
			ValueFormatter: compactValue,
		}
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render line snapshot: %w", err)
	}
	return nil
}

// RenderHostSnapshot renders the line chart of a drawn host at its current
// size.
func RenderHostSnapshot(w io.Writer, h *dashboard.Host) error {
	line := h.LineChart()
	if line == nil {
		return dashboard.ErrNotReady
	}
	o := line.Options()
	return RenderLineSnapshot(w, line.Series(), SnapshotOptions{
		Width:           int(math.Round(o.Width)),
		Height:          int(math.Round(o.Height + o.LegendHeight)),
		Title:           o.Y1Label,
		Y1Label:         o.Y1Label,
		Y2Label:         o.Y2Label,
		ShowSecondYAxis: o.ShowSecondYAxis,
	})
}

// timeSeries keeps the finite points of one measure.
func timeSeries(s covid.Series, value func(covid.SeriesPoint) float64) (chart.TimeSeries, bool) {
	var ts chart.TimeSeries
	for _, p := range s.Points {
		v := value(p)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ts.XValues = append(ts.XValues, p.Time)
		ts.YValues = append(ts.YValues, v)
	}
	return ts, len(ts.XValues) > 0
}

func seriesColor(hex string) drawing.Color {
	if !strings.HasPrefix(hex, "#") {
		return drawing.ColorBlack
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func compactValue(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return covid.Compact(n)
	case int:
		return covid.Compact(float64(n))
	case time.Time:
		return n.Format("2006-01-02")
	default:
		return fmt.Sprint(v)
	}
}
