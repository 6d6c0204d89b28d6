package render

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"
)

// ProjectionKind selects the raw projection.
type ProjectionKind int

const (
	Mercator ProjectionKind = iota
	Equirectangular
)

// point radius used when a GeoJSON point is drawn as a path
const pointRadius = 4.5

// Projection maps lon/lat degrees onto screen pixels: raw projected
// coordinates in radians, offset by the projected center, scaled by k and
// translated. The y axis points down.
type Projection struct {
	kind   ProjectionKind
	k      float64
	tx, ty float64
	center orb.Point
}

// NewProjection creates a projection with the conventional 960x500 defaults.
func NewProjection(kind ProjectionKind) *Projection {
	return &Projection{kind: kind, k: 961 / (2 * math.Pi), tx: 480, ty: 250}
}

// Center sets the lon/lat that maps onto the translation point.
func (p *Projection) Center(c orb.Point) *Projection {
	p.center = c
	return p
}

// Scale returns the scale factor.
func (p *Projection) Scale() float64 { return p.k }

// Translate returns the pixel position of the center.
func (p *Projection) Translate() (float64, float64) { return p.tx, p.ty }

// raw projects degrees into unit coordinates. Mercator latitudes are
// clamped at the poles.
func (p *Projection) raw(pt orb.Point) orb.Point {
	if p.kind == Equirectangular {
		return orb.Point{pt[0] * math.Pi / 180, pt[1] * math.Pi / 180}
	}
	m := project.WGS84.ToMercator(pt)
	return orb.Point{m[0] / orb.EarthRadius, m[1] / orb.EarthRadius}
}

func (p *Projection) screen(pt orb.Point) orb.Point {
	r := p.raw(pt)
	c := p.raw(p.center)
	return orb.Point{p.tx + p.k*(r[0]-c[0]), p.ty - p.k*(r[1]-c[1])}
}

// Point projects one lon/lat pair. ok is false when the result is not a
// finite position.
func (p *Projection) Point(pt orb.Point) (x, y float64, ok bool) {
	s := p.screen(pt)
	if !finite(s[0]) || !finite(s[1]) {
		return 0, 0, false
	}
	return s[0], s[1], true
}

// FitSize adjusts scale and translation so the features fill a width x
// height box, centered. Without any coordinates the projection is left
// unchanged.
func (p *Projection) FitSize(width, height float64, features []*geojson.Feature) *Projection {
	p.k, p.tx, p.ty = 1, 0, 0
	var b orb.Bound
	found := false
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		g := project.Geometry(orb.Clone(f.Geometry), p.screen)
		if g == nil {
			continue
		}
		gb := g.Bound()
		if !found {
			b, found = gb, true
		} else {
			b = b.Union(gb)
		}
	}
	if !found {
		*p = *NewProjection(p.kind).Center(p.center)
		return p
	}

	dx, dy := b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]
	var k float64
	switch {
	case dx > 0 && dy > 0:
		k = math.Min(width/dx, height/dy)
	case dx > 0:
		k = width / dx
	case dy > 0:
		k = height / dy
	default:
		k = NewProjection(p.kind).k
	}
	p.k = k
	p.tx = (width - k*(b.Max[0]+b.Min[0])) / 2
	p.ty = (height - k*(b.Max[1]+b.Min[1])) / 2
	return p
}

// Path renders a geometry as SVG path data. Unsupported or empty
// geometries yield "".
func (p *Projection) Path(g orb.Geometry) string {
	if g == nil {
		return ""
	}
	projected := project.Geometry(orb.Clone(g), p.screen)
	var sb strings.Builder
	writeGeometry(&sb, projected)
	return sb.String()
}

func writeGeometry(sb *strings.Builder, g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		writePoint(sb, g)
	case orb.MultiPoint:
		for _, pt := range g {
			writePoint(sb, pt)
		}
	case orb.LineString:
		writeLine(sb, g, false)
	case orb.MultiLineString:
		for _, ls := range g {
			writeLine(sb, ls, false)
		}
	case orb.Ring:
		writeLine(sb, g, true)
	case orb.Polygon:
		for _, r := range g {
			writeLine(sb, r, true)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			for _, r := range poly {
				writeLine(sb, r, true)
			}
		}
	case orb.Collection:
		for _, c := range g {
			writeGeometry(sb, c)
		}
	}
}

func writeLine(sb *strings.Builder, pts []orb.Point, closed bool) {
	if closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) == 0 {
		return
	}
	for i, pt := range pts {
		if i == 0 {
			sb.WriteByte('M')
		} else {
			sb.WriteByte('L')
		}
		sb.WriteString(FormatNumber(pt[0]))
		sb.WriteByte(',')
		sb.WriteString(FormatNumber(pt[1]))
	}
	if closed {
		sb.WriteByte('Z')
	}
}

func writePoint(sb *strings.Builder, pt orb.Point) {
	r := FormatNumber(pointRadius)
	d := FormatNumber(2 * pointRadius)
	sb.WriteString("M" + FormatNumber(pt[0]) + "," + FormatNumber(pt[1]))
	sb.WriteString("m0," + r + "a" + r + "," + r + " 0 1,1 0,-" + d + "a" + r + "," + r + " 0 1,1 0," + d + "z")
}
