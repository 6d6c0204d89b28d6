package charts

import (
	"errors"
	"fmt"
	"math"

	"covidviz/internal/models"
	"covidviz/internal/render"

	"github.com/paulmach/orb"
)

// legend label offset of the bubble map
const bubbleLabelX = 40

// BubbleMap draws world boundaries with one circle per key, sized by a
// measure on a single date.
type BubbleMap struct {
	opts    Options
	store   *models.Store
	world   *models.World
	base    models.Rows
	surface *render.Surface
	lc      lifecycle

	svg        *render.Node
	dated      models.Rows
	groups     Groups
	projection *render.Projection
	radius     *render.LinearScale
}

// NewBubbleMap creates a bubble map. Boundary features are filtered with
// FilterGeo and rows without a centroid are dropped here, once; the store
// itself is not modified.
func NewBubbleMap(store *models.Store, env Env, overlays ...Overlay) (*BubbleMap, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	opts := Resolve(DefaultMapOptions(), overlays...)
	if opts.ID == "" {
		opts.ID = generatedID("bubble-map")
	}
	m := &BubbleMap{
		opts:    opts,
		store:   store,
		world:   store.World.Filter(opts.FilterGeo),
		surface: env.Surface,
		lc:      newLifecycle(opts.ID, env),
	}
	if opts.Group != nil {
		m.base = Filter(store.OWID, HasCentroid(opts.Group, store))
	}
	return m, nil
}

func (m *BubbleMap) ID() string        { return m.opts.ID }
func (m *BubbleMap) Anchor() string    { return m.opts.Anchor }
func (m *BubbleMap) State() State      { return m.lc.state }
func (m *BubbleMap) Options() Options  { return m.opts.clone() }
func (m *BubbleMap) SVG() *render.Node { return m.svg }

// World returns the filtered boundary features.
func (m *BubbleMap) World() *models.World { return m.world }

// SetParams overlays options on the current ones.
func (m *BubbleMap) SetParams(overlays ...Overlay) {
	m.opts = Resolve(m.opts, overlays...)
}

func (m *BubbleMap) Draw() error {
	return m.lc.run("draw", m, true)
}

// Update redraws without recreating structure, falling back to Draw.
func (m *BubbleMap) Update() error {
	return m.lc.run("update", m, m.lc.needsStructure())
}

func (m *BubbleMap) setupData() error {
	if m.opts.Group == nil {
		return errors.New("bubble map: no group selector")
	}
	if m.opts.Circle == nil {
		return errors.New("bubble map: no circle selector")
	}
	m.dated = Filter(m.base, DateEquals(m.opts.Date))
	m.groups = GroupBy(m.dated, m.opts.Group)
	return nil
}

func (m *BubbleMap) structure() error {
	o := m.opts
	anchor, ok := m.surface.Anchor(o.Anchor)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoAnchor, o.Anchor)
	}
	m.svg = anchor.EnsureChild("svg", o.ID)
	m.svg.SetAttr("id", o.ID).SetClass(o.Class)
	m.svg.EnsureChild("g", "map-group").Classed("map-group", true)
	m.svg.EnsureChild("g", "legend").Classed("legend", true)
	return nil
}

func (m *BubbleMap) teardown() {}

func (m *BubbleMap) scales() error {
	o := m.opts
	if m.svg == nil {
		return errors.New("bubble map: not structured")
	}
	m.svg.Transition(o.Duration).
		Num("width", o.Width).
		Num("height", o.Height).
		Attr("viewBox", fmt.Sprintf("0,0,%s,%s", render.FormatNumber(o.Width), render.FormatNumber(o.Height)))
	m.svg.SetClass(o.Class)

	m.projection = render.NewProjection(o.Projection).
		Center(o.ProjectionCenter).
		FitSize(o.MarginLeft+o.Width+o.MarginRight, o.MarginBottom+o.Height+o.MarginTop, m.world.Features)

	m.radius = o.CircleScale.build(DomainOf(m.dated, o.Circle), o.CircleRange[0], o.CircleRange[1])
	return nil
}

func (m *BubbleMap) render() error {
	m.renderMap()
	m.renderChartLabel()
	m.renderCircles()
	m.renderLegend()
	return nil
}

func (m *BubbleMap) renderMap() {
	group := m.svg.Child("map-group")
	features := m.world.Features
	for i, path := range group.Join("path", "map-group-path", len(features)) {
		path.SetAttr("d", m.projection.Path(features[i].Geometry))
	}
}

func (m *BubbleMap) renderChartLabel() {
	o := m.opts
	format := o.LegendFormat
	if format == nil {
		format = Compact
	}
	label := m.svg.EnsureChild("text", "chart-label").SetClass("chart-label")
	label.SetNum("x", 0).SetNum("y", 0)
	label.SetText(fmt.Sprintf("%s: %s / %s", o.ChartLabel, format(SumOf(m.dated, o.Circle)), o.Date))
}

type bubble struct {
	key    string
	x, y   float64
	radius float64
}

// bubbles returns one entry per group that has a projectable centroid.
func (m *BubbleMap) bubbles() []bubble {
	var out []bubble
	for _, grp := range m.groups {
		c, ok := m.store.Centroid(grp.Key)
		if !ok {
			continue
		}
		x, y, ok := m.projection.Point(c)
		if !ok {
			continue
		}
		out = append(out, bubble{key: grp.Key, x: x, y: y, radius: m.radiusOf(m.opts.Circle(grp.Rows[0]))})
	}
	return out
}

// radiusOf maps a value to a radius; without data it is 0.
func (m *BubbleMap) radiusOf(v float64) float64 {
	if !m.radius.Defined() || math.IsNaN(v) {
		return 0
	}
	r := m.radius.Map(v)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

func (m *BubbleMap) renderCircles() {
	o := m.opts
	bubbles := m.bubbles()
	for i, node := range m.svg.Join("circle", "bubble-map-circle", len(bubbles)) {
		b := bubbles[i]
		node.SetClass(fmt.Sprintf("bubble-map-circle iso_code iso_code-%s", b.key))
		node.SetAttr("transform", translate(b.x, b.y))
		node.Transition(o.Duration).Num("r", b.radius)
	}
}

func (m *BubbleMap) renderLegend() {
	o := m.opts
	legend := m.svg.Child("legend")
	legend.SetAttr("transform", translate(o.LegendX, o.LegendY))

	format := o.LegendFormat
	if format == nil {
		format = Compact
	}
	values := m.radius.Domain().Values()
	circleY := o.CircleRange[1]

	circles := legend.Join("circle", "legend-circle", len(values))
	lines := legend.Join("line", "legend-line", len(values))
	texts := legend.Join("text", "legend-text", len(values))
	for i, v := range values {
		r := m.radiusOf(v)
		y := circleY - r

		circles[i].SetClass(fmt.Sprintf("legend-circle legend-circle-%d", i))
		circles[i].Transition(o.Duration).Num("cx", 0).Num("cy", y).Num("r", r)

		lines[i].SetClass(fmt.Sprintf("legend-line legend-line-%d", i))
		lines[i].Transition(o.Duration).Num("x1", 0).Num("y1", y).Num("x2", bubbleLabelX).Num("y2", y)

		texts[i].SetClass(fmt.Sprintf("legend-text legend-text-%d", i))
		texts[i].Transition(o.Duration).Num("x", bubbleLabelX).Num("y", y).Text(format(v))
	}
}

// Marker is one plotted bubble in lon/lat.
type Marker struct {
	Key      string
	Location orb.Point
	Value    float64
}

// Markers recomputes the bubbles for the current date and measure. Keys
// without a centroid are left out.
func (m *BubbleMap) Markers() []Marker {
	o := m.opts
	if o.Group == nil || o.Circle == nil {
		return nil
	}
	var out []Marker
	for _, grp := range GroupBy(Filter(m.base, DateEquals(o.Date)), o.Group) {
		c, ok := m.store.Centroid(grp.Key)
		if !ok {
			continue
		}
		out = append(out, Marker{Key: grp.Key, Location: c, Value: o.Circle(grp.Rows[0])})
	}
	return out
}
