package charts

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"covidviz/internal/models"
	"covidviz/internal/render"
)

// legend geometry of the line chart
const (
	legendCircleR     = 10
	legendSpace       = 10
	legendWordWidth   = 30
	legendEntryStride = legendCircleR + legendSpace + legendWordWidth + legendSpace + legendCircleR
)

// HighlightClass dims chart elements that are not hovered.
const HighlightClass = "opacity-15"

// LineChart draws one or two measures over time for each selected key.
// The second measure has its own right-hand axis and can be switched off.
type LineChart struct {
	opts    Options
	rows    models.Rows
	surface *render.Surface
	lc      lifecycle

	svg    *render.Node
	groups Groups
	x      *render.TimeScale
	y1, y2 *render.LinearScale
}

// NewLineChart creates a line chart over the store's OWID rows.
func NewLineChart(store *models.Store, env Env, overlays ...Overlay) (*LineChart, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	opts := Resolve(DefaultLineOptions(), overlays...)
	if opts.ID == "" {
		opts.ID = generatedID("line-chart")
	}
	return &LineChart{
		opts:    opts,
		rows:    store.OWID,
		surface: env.Surface,
		lc:      newLifecycle(opts.ID, env),
	}, nil
}

func (c *LineChart) ID() string       { return c.opts.ID }
func (c *LineChart) Anchor() string   { return c.opts.Anchor }
func (c *LineChart) State() State     { return c.lc.state }
func (c *LineChart) Options() Options { return c.opts.clone() }

// SVG returns the chart's root node, nil before the first structured draw.
func (c *LineChart) SVG() *render.Node { return c.svg }

// SetParams overlays options on the current ones. They apply on the next
// Draw or Update.
func (c *LineChart) SetParams(overlays ...Overlay) {
	c.opts = Resolve(c.opts, overlays...)
}

// SetRows replaces the rows the chart plots.
func (c *LineChart) SetRows(rows models.Rows) {
	c.rows = rows
}

// Draw runs a full cycle.
func (c *LineChart) Draw() error {
	return c.lc.run("draw", c, true)
}

// Update reruns the cycle without recreating structure. A chart that was
// never drawn, or failed, gets a full Draw.
func (c *LineChart) Update() error {
	return c.lc.run("update", c, c.lc.needsStructure())
}

func (c *LineChart) setupData() error {
	o := c.opts
	switch {
	case o.Group == nil:
		return errors.New("line chart: no group selector")
	case o.X == nil:
		return errors.New("line chart: no x selector")
	case o.Y1 == nil:
		return errors.New("line chart: no y1 selector")
	case o.ShowSecondYAxis && o.Y2 == nil:
		return errors.New("line chart: second axis enabled without y2 selector")
	}
	c.groups = GroupBy(Filter(c.rows, KeyIn(o.Group, o.SelectedKeys)), o.Group)
	return nil
}

func (c *LineChart) structure() error {
	o := c.opts
	anchor, ok := c.surface.Anchor(o.Anchor)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoAnchor, o.Anchor)
	}
	c.svg = anchor.EnsureChild("svg", o.ID)
	c.svg.SetAttr("id", o.ID).SetClass(o.Class)

	c.svg.EnsureChild("g", "x-axis").SetClass("x-axis")
	c.ensureYAxis(1)
	if o.ShowSecondYAxis {
		c.ensureYAxis(2)
	}
	c.svg.EnsureChild("g", "legend").SetClass("legend")
	return nil
}

func (c *LineChart) ensureYAxis(n int) *render.Node {
	name := fmt.Sprintf("y-axis%d", n)
	g := c.svg.EnsureChild("g", name).SetClass("y-axis " + name)
	label := name + "-label"
	g.EnsureChild("text", label).SetClass(label)
	return g
}

func (c *LineChart) teardown() {
	if c.opts.ShowSecondYAxis || c.svg == nil {
		return
	}
	if g := c.svg.Child("y-axis2"); g != nil {
		g.Transition(c.opts.Duration).Num("opacity", 0)
		g.Remove()
	}
	for _, p := range c.svg.SelectAll("y-axis2-line") {
		p.Transition(c.opts.Duration).Num("opacity", 0)
		p.Remove()
	}
}

func (c *LineChart) scales() error {
	o := c.opts
	if c.svg == nil {
		return errors.New("line chart: not structured")
	}
	total := o.Height + o.LegendHeight
	c.svg.Transition(o.Duration).
		Num("width", o.Width).
		Num("height", total).
		Attr("viewBox", fmt.Sprintf("0,0,%s,%s", render.FormatNumber(o.Width), render.FormatNumber(total)))
	c.svg.SetClass(o.Class)

	rows := c.groups.Flatten()
	t0, t1, _ := TimeExtent(rows, o.X)
	c.x = render.UTC(t0, t1, o.MarginLeft, o.Width-o.MarginRight)
	c.y1 = o.Y1Scale.build(zeroToMax(rows, o.Y1), o.Height-o.MarginBottom, o.MarginTop)
	c.y2 = nil
	if o.ShowSecondYAxis {
		c.y2 = o.Y2Scale.build(zeroToMax(rows, o.Y2), o.Height-o.MarginBottom, o.MarginTop)
	}
	return nil
}

// zeroToMax is the [0, max] domain of a measure, empty when it has no data.
func zeroToMax(rows models.Rows, v ValueFunc) render.Domain {
	hi, ok := MaxOf(rows, v)
	if !ok {
		return render.Domain{}
	}
	return render.NewDomain(0, hi)
}

func (c *LineChart) render() error {
	o := c.opts

	xg := c.svg.Child("x-axis")
	xg.Transition(o.Duration).Attr("transform", translate(0, o.Height-o.MarginBottom+o.LegendHeight))
	render.AxisBottom(c.x).Ticks(o.Width / 80).TickSizeOuter(0).Render(xg)

	c.renderYAxis(c.ensureYAxis(1), c.y1, render.AxisLeft, o.Y1Format, o.MarginLeft, o.Y1Label, -o.MarginLeft)
	c.renderLines(1, c.y1, o.Y1)

	if o.ShowSecondYAxis {
		c.renderYAxis(c.ensureYAxis(2), c.y2, render.AxisRight, o.Y2Format, o.Width-o.MarginRight, o.Y2Label, o.MarginRight)
		c.renderLines(2, c.y2, o.Y2)
	}

	c.renderLegend()
	return nil
}

func (c *LineChart) renderYAxis(g *render.Node, scale *render.LinearScale, axis func(render.Ticker) *render.Axis,
	format Formatter, offsetX float64, label string, labelX float64) {
	o := c.opts
	g.Transition(o.Duration).Attr("transform", translate(offsetX, o.LegendHeight))
	axis(scale).Ticks(o.Height / 60).TickFormat(format).Render(g)

	text := g.Child(g.Name() + "-label")
	text.Transition(o.Duration).Num("x", labelX).Num("y", 10).Text(label)
}

func (c *LineChart) renderLines(n int, y *render.LinearScale, value ValueFunc) {
	o := c.opts
	class := fmt.Sprintf("y-axis%d-line", n)
	line := render.Line[models.Row]{
		X:       func(r models.Row) float64 { return c.x.Map(o.X(r)) },
		Y:       func(r models.Row) float64 { return y.Map(value(r)) },
		Defined: func(r models.Row) bool { return !math.IsNaN(value(r)) && !o.X(r).IsZero() },
	}
	for i, path := range c.svg.Join("path", class, len(c.groups)) {
		grp := c.groups[i]
		path.SetClass(fmt.Sprintf("iso_code iso_code-%s line %s %s%d", grp.Key, class, class, i))
		path.Transition(o.Duration).
			Attr("transform", translate(0, o.LegendHeight)).
			Attr("stroke", colorAt(o.Palette, i)).
			Attr("d", line.Path(grp.Rows))
	}
}

func (c *LineChart) renderLegend() {
	o := c.opts
	legend := c.svg.Child("legend")
	legend.SetAttr("transform", translate(o.LegendMarginLeft, 0))

	circles := legend.Join("circle", "legend-circle", len(c.groups))
	texts := legend.Join("text", "legend-text", len(c.groups))
	for i, grp := range c.groups {
		key := grp.Key
		over := func(render.Event) { c.Highlight(key) }
		leave := func(render.Event) { c.ClearHighlight() }

		stride := float64(i * legendEntryStride)
		circles[i].SetClass(fmt.Sprintf("iso_code iso_code-%s legend-circle", key)).
			On("mouseover", over).
			On("mouseleave", leave)
		circles[i].Transition(o.Duration).
			Num("cy", o.LegendHeight/2).
			Num("cx", legendCircleR+stride).
			Num("r", legendCircleR).
			Attr("fill", colorAt(o.Palette, i))

		texts[i].SetClass(fmt.Sprintf("iso_code iso_code-%s legend-text", key)).
			On("mouseover", over).
			On("mouseleave", leave)
		texts[i].Transition(o.Duration).
			Text(LegendLabel(key)).
			Num("y", o.LegendHeight/2+legendCircleR/2).
			Num("x", 2*legendCircleR+legendSpace+stride)
	}
}

// Highlight dims every keyed element except those of key.
func (c *LineChart) Highlight(key string) {
	if c.svg == nil {
		return
	}
	for _, n := range c.svg.SelectAll("iso_code") {
		n.Classed(HighlightClass, true)
	}
	for _, n := range c.svg.SelectAll("iso_code-" + key) {
		n.Classed(HighlightClass, false)
	}
}

// ClearHighlight restores every keyed element.
func (c *LineChart) ClearHighlight() {
	if c.svg == nil {
		return
	}
	for _, n := range c.svg.SelectAll("iso_code") {
		n.Classed(HighlightClass, false)
	}
}

// LegendLabel shortens aggregate codes such as OWID_WRL to WRL.
func LegendLabel(key string) string {
	if len(key) > 3 {
		return strings.TrimPrefix(key, "OWID_")
	}
	return key
}

// SeriesPoint is one row of a plotted series.
type SeriesPoint struct {
	Time time.Time
	Y1   float64
	Y2   float64
}

// Series is the plotted data of one key.
type Series struct {
	Key    string
	Color  string
	Points []SeriesPoint
}

// Series recomputes the plotted data with the current options. Y2 is NaN
// when the second axis is off.
func (c *LineChart) Series() []Series {
	o := c.opts
	if o.Group == nil || o.X == nil || o.Y1 == nil {
		return nil
	}
	groups := GroupBy(Filter(c.rows, KeyIn(o.Group, o.SelectedKeys)), o.Group)
	out := make([]Series, len(groups))
	for i, grp := range groups {
		s := Series{Key: grp.Key, Color: colorAt(o.Palette, i)}
		for _, r := range grp.Rows {
			t := o.X(r)
			if t.IsZero() {
				continue
			}
			p := SeriesPoint{Time: t, Y1: o.Y1(r), Y2: math.NaN()}
			if o.ShowSecondYAxis && o.Y2 != nil {
				p.Y2 = o.Y2(r)
			}
			s.Points = append(s.Points, p)
		}
		out[i] = s
	}
	return out
}

func translate(x, y float64) string {
	return fmt.Sprintf("translate(%s,%s)", render.FormatNumber(x), render.FormatNumber(y))
}
