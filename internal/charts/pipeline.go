package charts

import (
	"math"
	"time"

	"covidviz/internal/models"
	"covidviz/internal/render"

	"github.com/paulmach/orb"
)

// Predicate accepts or rejects a row.
type Predicate func(models.Row) bool

// Filter returns the rows every predicate accepts, in input order.
func Filter(rows models.Rows, preds ...Predicate) models.Rows {
	out := make(models.Rows, 0, len(rows))
next:
	for _, r := range rows {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// DateEquals accepts rows whose date column equals date exactly.
func DateEquals(date string) Predicate {
	return func(r models.Row) bool { return r.Get(DateFieldName) == date }
}

// KeyIn accepts rows whose key is in allow.
func KeyIn(key KeyFunc, allow []string) Predicate {
	set := make(map[string]struct{}, len(allow))
	for _, k := range allow {
		set[k] = struct{}{}
	}
	return func(r models.Row) bool {
		_, ok := set[key(r)]
		return ok
	}
}

// CentroidIndex looks up the representative point of a key.
type CentroidIndex interface {
	Centroid(code string) (orb.Point, bool)
}

// HasCentroid accepts rows whose key has a centroid.
func HasCentroid(key KeyFunc, index CentroidIndex) Predicate {
	return func(r models.Row) bool {
		_, ok := index.Centroid(key(r))
		return ok
	}
}

// Group is the rows sharing one key.
type Group struct {
	Key  string
	Rows models.Rows
}

// Groups are ordered by the first occurrence of each key.
type Groups []Group

// GroupBy partitions rows by key. Row order inside a group is preserved.
func GroupBy(rows models.Rows, key KeyFunc) Groups {
	var groups Groups
	index := make(map[string]int)
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// Keys returns the group keys in order.
func (g Groups) Keys() []string {
	out := make([]string, len(g))
	for i, grp := range g {
		out[i] = grp.Key
	}
	return out
}

// Flatten concatenates the groups back into rows.
func (g Groups) Flatten() models.Rows {
	var out models.Rows
	for _, grp := range g {
		out = append(out, grp.Rows...)
	}
	return out
}

// DomainOf returns the [min, max] of the finite values. Rows whose value is
// missing or non-numeric are left out; without any finite value the domain
// is empty.
func DomainOf(rows models.Rows, value ValueFunc) render.Domain {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		v := value(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return render.Domain{}
	}
	return render.NewDomain(lo, hi)
}

// MaxOf returns the largest finite value.
func MaxOf(rows models.Rows, value ValueFunc) (float64, bool) {
	d := DomainOf(rows, value)
	if d.Empty() {
		return 0, false
	}
	return d.Max, true
}

// SumOf adds the finite values.
func SumOf(rows models.Rows, value ValueFunc) float64 {
	var sum float64
	for _, r := range rows {
		if v := value(r); !math.IsNaN(v) && !math.IsInf(v, 0) {
			sum += v
		}
	}
	return sum
}

// TimeExtent returns the earliest and latest non-zero times.
func TimeExtent(rows models.Rows, x TimeFunc) (time.Time, time.Time, bool) {
	var lo, hi time.Time
	found := false
	for _, r := range rows {
		t := x(r)
		if t.IsZero() {
			continue
		}
		if !found || t.Before(lo) {
			lo = t
		}
		if !found || t.After(hi) {
			hi = t
		}
		found = true
	}
	return lo, hi, found
}
