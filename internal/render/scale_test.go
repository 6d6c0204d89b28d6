package render

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestNiceTicks(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		count       float64
		want        []float64
	}{
		{"tens", 0, 100, 5, []float64{0, 20, 40, 60, 80, 100}},
		{"fractional count", 0, 4500, 7.2, []float64{0, 500, 1000, 1500, 2000, 2500, 3000, 3500, 4000, 4500}},
		{"sub unit", 0, 1, 5, []float64{0, 0.2, 0.4, 0.6, 0.8, 1}},
		{"reversed", 10, 0, 2, []float64{10, 5, 0}},
		{"single", 3, 3, 10, []float64{3}},
		{"zero count", 0, 10, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NiceTicks(tt.start, tt.stop, tt.count)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NiceTicks(%v, %v, %v) = %v, want %v", tt.start, tt.stop, tt.count, got, tt.want)
			}
		})
	}
}

func TestLinearScale(t *testing.T) {
	s := Linear(NewDomain(0, 100), 400, 20)
	if got := s.Map(50); got != 210 {
		t.Errorf("Map(50) = %v", got)
	}
	if got := s.Map(0); got != 400 {
		t.Errorf("Map(0) = %v", got)
	}
	if !math.IsNaN(s.Map(math.NaN())) {
		t.Error("NaN input should stay NaN")
	}

	degenerate := Linear(NewDomain(7, 7), 0, 10)
	if got := degenerate.Map(7); got != 5 {
		t.Errorf("degenerate domain should map to the midpoint, got %v", got)
	}

	empty := Linear(NewDomain(math.NaN(), 3), 5, 15)
	if empty.Defined() {
		t.Error("NaN bound should give an undefined scale")
	}
	if got := empty.Map(10); got != 5 {
		t.Errorf("empty domain should map to range start, got %v", got)
	}
	if empty.TickValues(10) != nil || empty.Domain().Values() != nil {
		t.Error("empty domain has no ticks and no values")
	}
}

func TestSqrtScale(t *testing.T) {
	s := Sqrt(NewDomain(0, 100), 5, 15)
	if got := s.Map(25); got != 10 {
		t.Errorf("Map(25) = %v, want 10", got)
	}
	if got := s.Map(100); got != 15 {
		t.Errorf("Map(100) = %v, want 15", got)
	}
}

func TestLinearTicksDefaultFormat(t *testing.T) {
	ticks := Linear(NewDomain(0, 1), 0, 100).Ticks(5, nil)
	if len(ticks) != 6 || ticks[1].Label != "0.2" || ticks[5].Position != 100 {
		t.Errorf("unexpected ticks %+v", ticks)
	}
}

func TestTimeScaleTicks(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}

	tests := []struct {
		name   string
		t0, t1 string
		count  float64
		labels []string
	}{
		{"quarters", "2020-01-22", "2021-06-30", 6, []string{"April", "July", "October", "2021", "April"}},
		{"years", "2016-01-01", "2023-03-07", 4, []string{"2016", "2018", "2020", "2022"}},
		{"days", "2023-03-01", "2023-03-04", 3, []string{"March", "Thu 02", "Fri 03", "Sat 04"}},
		{"weeks", "2023-01-01", "2023-02-20", 7, []string{"2023", "Jan 08", "Jan 15", "Jan 22", "Jan 29", "Feb 05", "Feb 12", "Feb 19"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := UTC(day(tt.t0), day(tt.t1), 0, 1000)
			ticks := s.Ticks(tt.count, nil)
			var labels []string
			for _, tk := range ticks {
				labels = append(labels, tk.Label)
			}
			if !reflect.DeepEqual(labels, tt.labels) {
				t.Errorf("labels = %v, want %v", labels, tt.labels)
			}
		})
	}
}

func TestTimeScaleMap(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	s := UTC(t0, t0.AddDate(0, 0, 10), 50, 150)
	if got := s.Map(t0.AddDate(0, 0, 5)); got != 100 {
		t.Errorf("Map = %v", got)
	}
	if got := UTC(t0, t0, 0, 10).Map(t0); got != 5 {
		t.Errorf("degenerate time domain should map to midpoint, got %v", got)
	}
	undefined := UTC(time.Time{}, time.Time{}, 3, 9)
	if undefined.Defined() || undefined.Map(t0) != 3 || undefined.TickTimes(5) != nil {
		t.Error("zero domain should be undefined")
	}
}

func TestEaseCubicInOut(t *testing.T) {
	for _, tt := range []struct{ in, want float64 }{{0, 0}, {0.5, 0.5}, {1, 1}, {0.25, 0.0625}} {
		if got := EaseCubicInOut(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("EaseCubicInOut(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
