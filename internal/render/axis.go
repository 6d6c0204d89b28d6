package render

import "fmt"

// Tick is one labelled axis position.
type Tick struct {
	Position float64
	Label    string
}

// Ticker is a scale that an axis can draw.
type Ticker interface {
	Range() (float64, float64)
	Ticks(count float64, format func(float64) string) []Tick
}

// Orient selects where an axis is drawn relative to its scale.
type Orient int

const (
	Bottom Orient = iota
	Left
	Right
)

// tick offset that keeps 1px strokes on the pixel grid
const crisp = 0.5

// Axis renders a scale as a domain line with tick marks and labels.
type Axis struct {
	orient    Orient
	scale     Ticker
	count     float64
	format    func(float64) string
	sizeInner float64
	sizeOuter float64
	padding   float64
}

// NewAxis creates an axis with ten ticks, 6px tick marks and 3px padding.
func NewAxis(orient Orient, scale Ticker) *Axis {
	return &Axis{orient: orient, scale: scale, count: 10, sizeInner: 6, sizeOuter: 6, padding: 3}
}

// AxisBottom, AxisLeft and AxisRight are shorthands for NewAxis.
func AxisBottom(scale Ticker) *Axis { return NewAxis(Bottom, scale) }
func AxisLeft(scale Ticker) *Axis   { return NewAxis(Left, scale) }
func AxisRight(scale Ticker) *Axis  { return NewAxis(Right, scale) }

// Ticks sets the approximate tick count.
func (a *Axis) Ticks(count float64) *Axis {
	a.count = count
	return a
}

// TickFormat sets the label formatter.
func (a *Axis) TickFormat(format func(float64) string) *Axis {
	a.format = format
	return a
}

// TickSizeOuter sets the length of the domain line end caps.
func (a *Axis) TickSizeOuter(size float64) *Axis {
	a.sizeOuter = size
	return a
}

// TickValues returns the ticks the axis would draw.
func (a *Axis) TickValues() []Tick {
	return a.scale.Ticks(a.count, a.format)
}

// Render draws the axis into g. Only children with the "tick" and "domain"
// classes are touched, so labels appended to g survive redraws.
func (a *Axis) Render(g *Node) {
	k := 1.0
	anchor := "middle"
	switch a.orient {
	case Left:
		k = -1
		anchor = "end"
	case Right:
		anchor = "start"
	}

	g.SetAttr("fill", "none").
		SetAttr("font-size", "10").
		SetAttr("font-family", "sans-serif").
		SetAttr("text-anchor", anchor)

	r0, r1 := a.scale.Range()
	domain := g.EnsureChild("path", "domain").Classed("domain", true)
	domain.SetAttr("stroke", "currentColor").SetAttr("d", a.domainPath(k, r0, r1))

	ticks := a.TickValues()
	spacing := max(a.sizeInner, 0) + a.padding
	for i, node := range g.Join("g", "tick", len(ticks)) {
		t := ticks[i]
		node.SetNum("opacity", 1)

		line := node.EnsureChild("line", "tick-line")
		line.SetAttr("stroke", "currentColor")
		text := node.EnsureChild("text", "tick-label")
		text.SetAttr("fill", "currentColor").SetText(t.Label)

		pos := t.Position + crisp
		if a.orient == Bottom {
			node.SetAttr("transform", fmt.Sprintf("translate(%s,0)", FormatNumber(pos)))
			line.SetNum("y2", k*a.sizeInner)
			text.SetNum("y", k*spacing).SetAttr("dy", "0.71em")
		} else {
			node.SetAttr("transform", fmt.Sprintf("translate(0,%s)", FormatNumber(pos)))
			line.SetNum("x2", k*a.sizeInner)
			text.SetNum("x", k*spacing).SetAttr("dy", "0.32em")
		}
	}
}

func (a *Axis) domainPath(k, r0, r1 float64) string {
	r0 += crisp
	r1 += crisp
	outer := FormatNumber(k * a.sizeOuter)
	if a.orient == Bottom {
		return fmt.Sprintf("M%s,%sV%sH%sV%s", FormatNumber(r0), outer, FormatNumber(crisp), FormatNumber(r1), outer)
	}
	return fmt.Sprintf("M%s,%sH%sV%sH%s", outer, FormatNumber(r0), FormatNumber(crisp), FormatNumber(r1), outer)
}
