package render

import (
	"math"
	"strings"
)

// Line generates SVG path data from a series. Points rejected by Defined
// split the path into separate segments.
type Line[T any] struct {
	X       func(T) float64
	Y       func(T) float64
	Defined func(T) bool
}

// Path returns the path data, or "" when no point is defined.
func (l Line[T]) Path(data []T) string {
	var sb strings.Builder
	open := false
	for _, d := range data {
		if l.Defined != nil && !l.Defined(d) {
			open = false
			continue
		}
		x, y := l.X(d), l.Y(d)
		if math.IsNaN(x) || math.IsNaN(y) {
			open = false
			continue
		}
		if open {
			sb.WriteByte('L')
		} else {
			sb.WriteByte('M')
			open = true
		}
		sb.WriteString(FormatNumber(x))
		sb.WriteByte(',')
		sb.WriteString(FormatNumber(y))
	}
	return sb.String()
}
