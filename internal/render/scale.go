package render

import (
	"math"
	"strconv"
)

// Domain is a numeric extent. The zero Domain is empty.
type Domain struct {
	Min, Max float64
	defined  bool
}

// NewDomain creates a domain. A NaN or infinite bound yields an empty domain.
func NewDomain(lo, hi float64) Domain {
	if !finite(lo) || !finite(hi) {
		return Domain{}
	}
	return Domain{Min: lo, Max: hi, defined: true}
}

// Empty reports whether the domain holds no valid extent.
func (d Domain) Empty() bool { return !d.defined }

// Values returns [Min, Max], or nothing for an empty domain.
func (d Domain) Values() []float64 {
	if !d.defined {
		return nil
	}
	return []float64{d.Min, d.Max}
}

// LinearScale maps a numeric domain onto a pixel range, linearly or through
// a square root.
type LinearScale struct {
	domain Domain
	r0, r1 float64
	sqrt   bool
}

// Linear creates a linear scale.
func Linear(domain Domain, r0, r1 float64) *LinearScale {
	return &LinearScale{domain: domain, r0: r0, r1: r1}
}

// Sqrt creates a square root scale, used for circle areas.
func Sqrt(domain Domain, r0, r1 float64) *LinearScale {
	return &LinearScale{domain: domain, r0: r0, r1: r1, sqrt: true}
}

func (s *LinearScale) Domain() Domain { return s.domain }

func (s *LinearScale) Range() (float64, float64) { return s.r0, s.r1 }

// Defined reports whether the scale has a usable domain.
func (s *LinearScale) Defined() bool { return s.domain.defined }

// Map converts v to the range. An empty domain maps everything to the range
// start, a degenerate domain to the range midpoint and NaN stays NaN.
func (s *LinearScale) Map(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	if !s.domain.defined {
		return s.r0
	}
	t0, t1 := s.transform(s.domain.Min), s.transform(s.domain.Max)
	if t0 == t1 {
		return (s.r0 + s.r1) / 2
	}
	k := (s.transform(v) - t0) / (t1 - t0)
	return s.r0 + k*(s.r1-s.r0)
}

func (s *LinearScale) transform(v float64) float64 {
	if !s.sqrt {
		return v
	}
	if v < 0 {
		return -math.Sqrt(-v)
	}
	return math.Sqrt(v)
}

// TickValues returns about count round values spanning the domain.
func (s *LinearScale) TickValues(count float64) []float64 {
	if !s.domain.defined {
		return nil
	}
	return NiceTicks(s.domain.Min, s.domain.Max, count)
}

// Ticks returns positioned and labelled ticks. A nil format picks a fixed
// precision from the tick step.
func (s *LinearScale) Ticks(count float64, format func(float64) string) []Tick {
	values := s.TickValues(count)
	if format == nil {
		format = fixedFormat(values)
	}
	out := make([]Tick, len(values))
	for i, v := range values {
		out[i] = Tick{Position: s.Map(v), Label: format(v)}
	}
	return out
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && count >= 0.5 && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

// NiceTicks returns values on a 1, 2 or 5 times a power of ten grid between
// start and stop, about count of them.
func NiceTicks(start, stop, count float64) []float64 {
	if !(count > 0) || !finite(start) || !finite(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	i1, i2, inc := tickSpec(start, stop, count)
	if !(i2 >= i1) {
		return nil
	}
	n := int(i2 - i1 + 1)
	ticks := make([]float64, n)
	for i := 0; i < n; i++ {
		var v float64
		if inc < 0 {
			v = (i1 + float64(i)) / -inc
		} else {
			v = (i1 + float64(i)) * inc
		}
		ticks[i] = v
	}
	if reverse {
		for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
			ticks[l], ticks[r] = ticks[r], ticks[l]
		}
	}
	return ticks
}

// TickStep returns the grid spacing NiceTicks would use.
func TickStep(start, stop, count float64) float64 {
	if stop < start {
		start, stop = stop, start
	}
	_, _, inc := tickSpec(start, stop, count)
	if inc < 0 {
		return 1 / -inc
	}
	return inc
}

func fixedFormat(values []float64) func(float64) string {
	prec := 0
	if len(values) > 1 {
		step := math.Abs(values[1] - values[0])
		prec = int(math.Max(0, -math.Floor(math.Log10(step))))
	}
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', prec, 64)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
