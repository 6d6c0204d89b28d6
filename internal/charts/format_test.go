package charts

import (
	"math"
	"testing"
)

func TestCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{2.5, "2.5"},
		{0.5, "0.5"},
		{12.345, "12"},
		{999, "999"},
		{1000, "1K"},
		{1234, "1.2K"},
		{45678, "46K"},
		{999950, "1M"},
		{1500000, "1.5M"},
		{676609955, "677M"},
		{2e9, "2B"},
		{3.4e12, "3.4T"},
		{-1234, "-1.2K"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := Compact(tt.in); got != tt.want {
			t.Errorf("Compact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPalette(t *testing.T) {
	p := Tableau10()
	if len(p) != 10 || p[0] != "#4e79a7" {
		t.Fatalf("unexpected palette %v", p)
	}
	if colorAt(p, 11) != p[1] {
		t.Error("palette should wrap around")
	}
	if colorAt(nil, 3) != "currentColor" {
		t.Error("empty palette should fall back to currentColor")
	}
}
