package charts

import (
	"math"
	"strconv"
	"strings"
	"time"

	"covidviz/internal/config"
	"covidviz/internal/models"
	"covidviz/internal/render"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// DateFieldName is the OWID column holding the report day.
const DateFieldName = "date"

// KeyFunc selects the grouping key of a row.
type KeyFunc func(models.Row) string

// ValueFunc selects a numeric value of a row. Missing or non-numeric values
// are NaN.
type ValueFunc func(models.Row) float64

// TimeFunc selects the time of a row. Unparsable values are the zero time.
type TimeFunc func(models.Row) time.Time

// Formatter renders a number for ticks and labels.
type Formatter func(float64) string

// GeoFilter keeps the boundary features it returns true for.
type GeoFilter func(*geojson.Feature) bool

// ScaleKind selects how values map onto pixels.
type ScaleKind int

const (
	ScaleLinear ScaleKind = iota
	ScaleSqrt
)

func (k ScaleKind) build(d render.Domain, r0, r1 float64) *render.LinearScale {
	if k == ScaleSqrt {
		return render.Sqrt(d, r0, r1)
	}
	return render.Linear(d, r0, r1)
}

// Field reads a numeric column.
func Field(name string) ValueFunc {
	return func(r models.Row) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Get(name)), 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// KeyField reads a string column.
func KeyField(name string) KeyFunc {
	return func(r models.Row) string { return r.Get(name) }
}

// DateField reads a YYYY-MM-DD column as a UTC day.
func DateField(name string) TimeFunc {
	return func(r models.Row) time.Time {
		t, err := time.Parse(config.DateLayout, strings.TrimSpace(r.Get(name)))
		if err != nil {
			return time.Time{}
		}
		return t
	}
}

// Options is the effective configuration of a chart. Not every chart reads
// every slot.
type Options struct {
	MarginTop, MarginRight, MarginBottom, MarginLeft float64
	Width, Height                                    float64

	// Line chart legend strip above the plot.
	LegendHeight     float64
	LegendMarginLeft float64
	// Bubble map legend position.
	LegendX, LegendY float64

	Anchor string
	ID     string
	Class  string

	SelectedKeys []string
	Group        KeyFunc
	X            TimeFunc
	Y1           ValueFunc
	Y2           ValueFunc
	Circle       ValueFunc
	Date         string
	FilterGeo    GeoFilter

	Y1Scale     ScaleKind
	Y2Scale     ScaleKind
	CircleScale ScaleKind
	CircleRange [2]float64

	Projection       render.ProjectionKind
	ProjectionCenter orb.Point

	ShowSecondYAxis bool
	Y1Format        Formatter
	Y2Format        Formatter
	LegendFormat    Formatter
	Y1Label         string
	Y2Label         string
	ChartLabel      string
	Palette         []string
	Duration        time.Duration
}

func (o Options) clone() Options {
	o.SelectedKeys = append([]string(nil), o.SelectedKeys...)
	o.Palette = append([]string(nil), o.Palette...)
	return o
}

// Overlay sets one or more option slots. Slots an overlay does not touch
// keep their current value, so zero values can be set deliberately.
type Overlay func(*Options)

// Resolve applies overlays, in order, on top of a copy of defaults.
func Resolve(defaults Options, overlays ...Overlay) Options {
	o := defaults.clone()
	for _, apply := range overlays {
		if apply != nil {
			apply(&o)
		}
	}
	return o
}

// Merge combines overlays into one.
func Merge(overlays ...Overlay) Overlay {
	return func(o *Options) {
		for _, apply := range overlays {
			if apply != nil {
				apply(o)
			}
		}
	}
}

func WithWidth(w float64) Overlay  { return func(o *Options) { o.Width = w } }
func WithHeight(h float64) Overlay { return func(o *Options) { o.Height = h } }

// WithSize sets the outer width and height.
func WithSize(w, h float64) Overlay {
	return func(o *Options) { o.Width, o.Height = w, h }
}

// WithMargins sets the four margins, clockwise from the top.
func WithMargins(top, right, bottom, left float64) Overlay {
	return func(o *Options) {
		o.MarginTop, o.MarginRight, o.MarginBottom, o.MarginLeft = top, right, bottom, left
	}
}

func WithLegendHeight(h float64) Overlay     { return func(o *Options) { o.LegendHeight = h } }
func WithLegendMarginLeft(m float64) Overlay { return func(o *Options) { o.LegendMarginLeft = m } }

// WithLegendPosition places the bubble map legend.
func WithLegendPosition(x, y float64) Overlay {
	return func(o *Options) { o.LegendX, o.LegendY = x, y }
}

func WithAnchor(selector string) Overlay { return func(o *Options) { o.Anchor = selector } }
func WithID(id string) Overlay           { return func(o *Options) { o.ID = id } }
func WithClass(class string) Overlay     { return func(o *Options) { o.Class = class } }

// WithSelectedKeys replaces the allowlist of group keys.
func WithSelectedKeys(keys ...string) Overlay {
	keys = append([]string(nil), keys...)
	return func(o *Options) { o.SelectedKeys = keys }
}

func WithGroup(fn KeyFunc) Overlay       { return func(o *Options) { o.Group = fn } }
func WithX(fn TimeFunc) Overlay          { return func(o *Options) { o.X = fn } }
func WithY1(fn ValueFunc) Overlay        { return func(o *Options) { o.Y1 = fn } }
func WithY2(fn ValueFunc) Overlay        { return func(o *Options) { o.Y2 = fn } }
func WithCircle(fn ValueFunc) Overlay    { return func(o *Options) { o.Circle = fn } }
func WithDate(date string) Overlay       { return func(o *Options) { o.Date = date } }
func WithGeoFilter(fn GeoFilter) Overlay { return func(o *Options) { o.FilterGeo = fn } }

func WithY1Scale(k ScaleKind) Overlay     { return func(o *Options) { o.Y1Scale = k } }
func WithY2Scale(k ScaleKind) Overlay     { return func(o *Options) { o.Y2Scale = k } }
func WithCircleScale(k ScaleKind) Overlay { return func(o *Options) { o.CircleScale = k } }

// WithCircleRange sets the min and max bubble radius.
func WithCircleRange(min, max float64) Overlay {
	return func(o *Options) { o.CircleRange = [2]float64{min, max} }
}

// WithProjection selects the map projection and its center (lon, lat).
func WithProjection(kind render.ProjectionKind, center orb.Point) Overlay {
	return func(o *Options) { o.Projection, o.ProjectionCenter = kind, center }
}

func WithSecondYAxis(show bool) Overlay { return func(o *Options) { o.ShowSecondYAxis = show } }

func WithY1Format(f Formatter) Overlay     { return func(o *Options) { o.Y1Format = f } }
func WithY2Format(f Formatter) Overlay     { return func(o *Options) { o.Y2Format = f } }
func WithLegendFormat(f Formatter) Overlay { return func(o *Options) { o.LegendFormat = f } }

// WithLabels sets the two y-axis labels.
func WithLabels(y1, y2 string) Overlay {
	return func(o *Options) { o.Y1Label, o.Y2Label = y1, y2 }
}

func WithChartLabel(label string) Overlay { return func(o *Options) { o.ChartLabel = label } }

// WithPalette replaces the series colors.
func WithPalette(colors ...string) Overlay {
	colors = append([]string(nil), colors...)
	return func(o *Options) { o.Palette = colors }
}

func WithDuration(d time.Duration) Overlay { return func(o *Options) { o.Duration = d } }

// DefaultLineOptions are the dual-axis line chart defaults.
func DefaultLineOptions() Options {
	return Options{
		MarginTop:    20,
		MarginRight:  20,
		MarginBottom: 20,
		MarginLeft:   50,
		Width:        768,
		Height:       432,
		LegendHeight: 35,

		Anchor: "#line-chart-container",
		ID:     "g7-line-chart",
		Class:  "dual-axis-line-chart",

		SelectedKeys: []string{"USA", "GBR", "JPN", "ITA", "CAN", "DEU", "FRA", "OWID_WRL"},
		Group:        KeyField(models.ISOCodeField),
		X:            DateField(DateFieldName),
		Y1:           Field("total_deaths_per_million"),
		Y2:           Field("new_vaccinations_smoothed_per_million"),

		Y1Format: Compact,
		Y2Format: Compact,
		Y1Label:  "Total Deaths / 1M People",
		Y2Label:  "Daily Vacs. Smoothed / 1M People (Dashed)",
		Palette:  Tableau10(),
		Duration: render.DefaultDuration,
	}
}

// DefaultMapOptions are the bubble map defaults. The id is generated per
// chart when left empty.
func DefaultMapOptions() Options {
	return Options{
		MarginTop:    5,
		MarginRight:  5,
		MarginBottom: 5,
		MarginLeft:   5,
		Width:        768,
		Height:       432,
		LegendX:      20,
		LegendY:      40,

		Anchor: "#bubble-map-container",
		Class:  "bubble-map-chart",

		Group:     KeyField(models.ISOCodeField),
		Circle:    Field("total_cases"),
		Date:      "2023-03-07",
		FilterGeo: func(f *geojson.Feature) bool { return models.FeatureID(f) != "ATA" },

		CircleScale: ScaleSqrt,
		CircleRange: [2]float64{5, 15},

		Projection:       render.Mercator,
		ProjectionCenter: orb.Point{0, 20},

		LegendFormat: Compact,
		ChartLabel:   "Total Cases",
		Duration:     render.DefaultDuration,
	}
}

func generatedID(prefix string) string {
	return prefix + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}
