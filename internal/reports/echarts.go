package reports

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	covid "covidviz/internal/charts"
	"covidviz/internal/config"
	"covidviz/internal/dashboard"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// InteractiveOptions configures the ECharts export.
type InteractiveOptions struct {
	PageTitle       string
	Width, Height   string
	Y1Label         string
	Y2Label         string
	ShowSecondYAxis bool
	MapLabel        string
	Date            string
}

// missing marks a gap in an ECharts line.
const missing = "-"

// BuildLineChart plots each series against a shared date axis. Dates a
// series has no value for are left as gaps.
func BuildLineChart(series []covid.Series, o InteractiveOptions) *echarts.Line {
	line := echarts.NewLine()
	line.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.PageTitle,
			Width:     o.Width,
			Height:    o.Height,
		}),
		echarts.WithTitleOpts(opts.Title{
			Title:    o.Y1Label,
			Subtitle: o.Y2Label,
		}),
		echarts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		echarts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		echarts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		echarts.WithYAxisOpts(opts.YAxis{Name: o.Y1Label, Type: "value"}),
	)
	if o.ShowSecondYAxis {
		line.ExtendYAxis(opts.YAxis{Name: o.Y2Label, Type: "value"})
	}

	dates := seriesDates(series)
	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = d.Format(config.DateLayout)
	}
	line.SetXAxis(labels)

	for _, s := range series {
		y1, y2 := alignSeries(s, dates)
		line.AddSeries(s.Key, y1,
			echarts.WithLineStyleOpts(opts.LineStyle{Color: s.Color}),
			echarts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		)
		if o.ShowSecondYAxis {
			line.AddSeries(s.Key+" (vacs.)", y2,
				echarts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}),
				echarts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Type: "dashed"}),
				echarts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
			)
		}
	}
	return line
}

func seriesDates(series []covid.Series) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, s := range series {
		for _, p := range s.Points {
			if _, ok := seen[p.Time]; !ok {
				seen[p.Time] = struct{}{}
				dates = append(dates, p.Time)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func alignSeries(s covid.Series, dates []time.Time) (y1, y2 []opts.LineData) {
	byTime := make(map[time.Time]covid.SeriesPoint, len(s.Points))
	for _, p := range s.Points {
		byTime[p.Time] = p
	}
	y1 = make([]opts.LineData, len(dates))
	y2 = make([]opts.LineData, len(dates))
	for i, d := range dates {
		p, ok := byTime[d]
		if !ok {
			p = covid.SeriesPoint{Y1: math.NaN(), Y2: math.NaN()}
		}
		y1[i] = opts.LineData{Value: lineValue(p.Y1)}
		y2[i] = opts.LineData{Value: lineValue(p.Y2)}
	}
	return y1, y2
}

func lineValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	return v
}

// BuildBubbleMap places one scatter point per marker on the world map.
func BuildBubbleMap(markers []covid.Marker, o InteractiveOptions) *echarts.Geo {
	geo := echarts.NewGeo()

	lo, hi := math.Inf(1), math.Inf(-1)
	data := make([]opts.GeoData, 0, len(markers))
	for _, m := range markers {
		if math.IsNaN(m.Value) {
			continue
		}
		lo, hi = math.Min(lo, m.Value), math.Max(hi, m.Value)
		data = append(data, opts.GeoData{Name: m.Key, Value: []float64{m.Location.Lon(), m.Location.Lat(), m.Value}})
	}
	if len(data) == 0 {
		lo, hi = 0, 0
	}

	geo.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.PageTitle,
			Width:     o.Width,
			Height:    o.Height,
		}),
		echarts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: %s", o.MapLabel, covid.Compact(sumMarkers(markers))),
			Subtitle: o.Date,
		}),
		echarts.WithGeoComponentOpts(opts.GeoComponent{Map: "world"}),
		echarts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: []string{"#f28e2c", "#e15759"}},
		}),
	)
	geo.AddSeries(o.MapLabel, types.ChartScatter, data)
	return geo
}

func sumMarkers(markers []covid.Marker) float64 {
	var sum float64
	for _, m := range markers {
		if !math.IsNaN(m.Value) {
			sum += m.Value
		}
	}
	return sum
}

// BuildInteractive assembles both charts of a drawn host into one page.
func BuildInteractive(h *dashboard.Host) (*components.Page, error) {
	line, bubble := h.LineChart(), h.BubbleMap()
	if line == nil || bubble == nil {
		return nil, dashboard.ErrNotReady
	}
	lo, mo := line.Options(), bubble.Options()
	o := InteractiveOptions{
		PageTitle:       "COVID-19 Dashboard",
		Width:           "100%",
		Height:          "480px",
		Y1Label:         lo.Y1Label,
		Y2Label:         lo.Y2Label,
		ShowSecondYAxis: lo.ShowSecondYAxis,
		MapLabel:        mo.ChartLabel,
		Date:            mo.Date,
	}

	page := components.NewPage()
	page.PageTitle = o.PageTitle
	page.Layout = components.PageFlexLayout
	page.AddCharts(BuildLineChart(line.Series(), o), BuildBubbleMap(bubble.Markers(), o))
	return page, nil
}

// RenderInteractive writes the interactive page of a drawn host.
func RenderInteractive(w io.Writer, h *dashboard.Host) error {
	page, err := BuildInteractive(h)
	if err != nil {
		return err
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render interactive page: %w", err)
	}
	return nil
}
