package charts

import (
	"math"

	"github.com/dustin/go-humanize"
)

var compactUnits = []struct {
	size   float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Compact formats a number in short English notation, so 1234 reads "1.2K"
// and 45678 reads "46K". Values keep their integer digits and at least two
// significant digits.
func Compact(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		if v < 0 {
			return "-∞"
		}
		return "∞"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	unit := -1
	for i, u := range compactUnits {
		if v >= u.size {
			unit = i
			break
		}
	}

	scaled := v
	if unit >= 0 {
		scaled = v / compactUnits[unit].size
	}
	r, digits := roundCompact(scaled)
	// 999.95K rounds to 1000K and moves up to 1M.
	if r >= 1000 && unit > 0 {
		unit--
		r, digits = roundCompact(v / compactUnits[unit].size)
	} else if r >= 1000 && unit < 0 {
		unit = len(compactUnits) - 1
		r, digits = roundCompact(v / compactUnits[unit].size)
	}

	suffix := ""
	if unit >= 0 {
		suffix = compactUnits[unit].suffix
	}
	if r == 0 {
		sign = ""
	}
	return sign + humanize.FtoaWithDigits(r, digits) + suffix
}

// roundCompact rounds to whole units when there are at least two integer
// digits, otherwise to two significant digits.
func roundCompact(v float64) (float64, int) {
	if v == 0 {
		return 0, 0
	}
	if v >= 10 {
		return math.Round(v), 0
	}
	digits := 1 - int(math.Floor(math.Log10(v)))
	p := math.Pow(10, float64(digits))
	r := math.Round(v*p) / p
	if r >= 10 {
		return math.Round(v), 0
	}
	return r, digits
}
