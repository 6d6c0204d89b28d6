package render

import (
	"math"
	"sort"
	"time"
)

// TimeScale maps UTC instants onto a pixel range.
type TimeScale struct {
	t0, t1  time.Time
	r0, r1  float64
	defined bool
}

// UTC creates a time scale over [t0, t1]. Zero times leave it undefined.
func UTC(t0, t1 time.Time, r0, r1 float64) *TimeScale {
	return &TimeScale{t0: t0.UTC(), t1: t1.UTC(), r0: r0, r1: r1, defined: !t0.IsZero() && !t1.IsZero()}
}

func (s *TimeScale) Range() (float64, float64) { return s.r0, s.r1 }

func (s *TimeScale) Defined() bool { return s.defined }

// Domain returns the scale's extent.
func (s *TimeScale) Domain() (time.Time, time.Time) { return s.t0, s.t1 }

// Map converts t to the range, following the same rules as LinearScale.
func (s *TimeScale) Map(t time.Time) float64 {
	if !s.defined {
		return s.r0
	}
	if t.IsZero() {
		return math.NaN()
	}
	span := s.t1.Sub(s.t0)
	if span == 0 {
		return (s.r0 + s.r1) / 2
	}
	k := float64(t.Sub(s.t0)) / float64(span)
	return s.r0 + k*(s.r1-s.r0)
}

// Ticks returns ticks on calendar boundaries. A nil format labels each tick
// with the coarsest unit it falls on; otherwise format receives Unix
// milliseconds.
func (s *TimeScale) Ticks(count float64, format func(float64) string) []Tick {
	times := s.TickTimes(count)
	out := make([]Tick, len(times))
	for i, t := range times {
		label := MultiFormat(t)
		if format != nil {
			label = format(float64(t.UnixMilli()))
		}
		out[i] = Tick{Position: s.Map(t), Label: label}
	}
	return out
}

// TickTimes picks the calendar interval whose step is closest to
// span/count and returns its boundaries inside the domain.
func (s *TimeScale) TickTimes(count float64) []time.Time {
	if !s.defined || !(count > 0) {
		return nil
	}
	start, stop := s.t0, s.t1
	if stop.Before(start) {
		start, stop = stop, start
	}
	if start.Equal(stop) {
		return []time.Time{start}
	}
	iv := chooseInterval(start, stop, count)
	var out []time.Time
	for t := iv.ceil(start); !t.After(stop); t = iv.next(t) {
		out = append(out, t)
	}
	if s.t1.Before(s.t0) {
		for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
			out[l], out[r] = out[r], out[l]
		}
	}
	return out
}

type unit int

const (
	unitHour unit = iota
	unitDay
	unitWeek
	unitMonth
	unitYear
)

type interval struct {
	unit unit
	step int
	// nominal duration, used to pick the interval
	approx time.Duration
}

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

var tickIntervals = []interval{
	{unitHour, 1, time.Hour},
	{unitHour, 3, 3 * time.Hour},
	{unitHour, 6, 6 * time.Hour},
	{unitHour, 12, 12 * time.Hour},
	{unitDay, 1, day},
	{unitDay, 2, 2 * day},
	{unitWeek, 1, week},
	{unitMonth, 1, month},
	{unitMonth, 3, 3 * month},
	{unitYear, 1, year},
}

func chooseInterval(start, stop time.Time, count float64) interval {
	target := float64(stop.Sub(start)) / count
	i := sort.Search(len(tickIntervals), func(i int) bool {
		return float64(tickIntervals[i].approx) > target
	})
	if i == len(tickIntervals) {
		years := TickStep(yearFraction(start), yearFraction(stop), count)
		return interval{unit: unitYear, step: max(1, int(years)), approx: year}
	}
	if i == 0 {
		return tickIntervals[0]
	}
	lo, hi := tickIntervals[i-1], tickIntervals[i]
	if target/float64(lo.approx) < float64(hi.approx)/target {
		return lo
	}
	return hi
}

func yearFraction(t time.Time) float64 {
	return float64(t.UnixMilli()) / float64(year.Milliseconds())
}

// floor returns the interval boundary at or before t.
func (iv interval) floor(t time.Time) time.Time {
	switch iv.unit {
	case unitHour:
		t = t.Truncate(time.Hour)
		for t.Hour()%iv.step != 0 {
			t = t.Add(-time.Hour)
		}
	case unitDay:
		t = startOfDay(t)
		for (t.Day()-1)%iv.step != 0 {
			t = t.AddDate(0, 0, -1)
		}
	case unitWeek:
		t = startOfDay(t)
		t = t.AddDate(0, 0, -int(t.Weekday()))
	case unitMonth:
		t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		for (int(t.Month())-1)%iv.step != 0 {
			t = t.AddDate(0, -1, 0)
		}
	case unitYear:
		y := t.Year() - t.Year()%iv.step
		t = time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

func (iv interval) ceil(t time.Time) time.Time {
	f := iv.floor(t)
	if f.Before(t) {
		return iv.next(f)
	}
	return f
}

// next returns the boundary following the boundary t.
func (iv interval) next(t time.Time) time.Time {
	switch iv.unit {
	case unitHour:
		return iv.floor(t.Add(time.Duration(iv.step) * time.Hour))
	case unitDay:
		n := t.AddDate(0, 0, iv.step)
		// Day steps restart on the first of every month.
		if n.Month() != t.Month() {
			return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
		return n
	case unitWeek:
		return t.AddDate(0, 0, 7)
	case unitMonth:
		return t.AddDate(0, iv.step, 0)
	default:
		return t.AddDate(iv.step, 0, 0)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MultiFormat labels t with the coarsest calendar unit it starts.
func MultiFormat(t time.Time) string {
	t = t.UTC()
	switch {
	case t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0:
		return t.Format("03:04")
	case t.Hour() != 0:
		return t.Format("03 PM")
	case t.Day() != 1:
		if t.Weekday() != time.Sunday {
			return t.Format("Mon 02")
		}
		return t.Format("Jan 02")
	case t.Month() != time.January:
		return t.Format("January")
	default:
		return t.Format("2006")
	}
}
