package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDraw(t *testing.T) {
	r := New()

	r.ObserveDraw("line-chart", "draw", true)
	r.ObserveDraw("line-chart", "update", true)
	r.ObserveDraw("line-chart", "update", false)

	if got := testutil.ToFloat64(r.drawCycles.WithLabelValues("line-chart", "update")); got != 2 {
		t.Errorf("expected 2 update cycles, got %v", got)
	}
	if got := testutil.ToFloat64(r.drawFailures.WithLabelValues("line-chart")); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
}

func TestObserveLoad(t *testing.T) {
	r := New()

	r.ObserveLoad("owid", true, 20*time.Millisecond, 120)
	r.ObserveLoad("geojson", false, time.Second, 0)

	if got := testutil.ToFloat64(r.rowsLoaded.WithLabelValues("owid")); got != 120 {
		t.Errorf("expected 120 records, got %v", got)
	}
	if got := testutil.ToFloat64(r.loadResults.WithLabelValues("geojson", "error")); got != 1 {
		t.Errorf("expected one failed load, got %v", got)
	}
	if n := testutil.CollectAndCount(r.loadDuration); n != 2 {
		t.Errorf("expected 2 histogram series, got %d", n)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveDraw("bubble-map", "draw", false)

	path := filepath.Join(t.TempDir(), "covidviz.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `covidviz_draw_failures_total{chart="bubble-map"} 1`) {
		t.Errorf("textfile missing failure counter:\n%s", data)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveDraw("x", "draw", false)
	r.ObserveLoad("x", true, 0, 1)
	if err := r.WriteTextfile("ignored"); err != nil {
		t.Errorf("nil recorder should not write: %v", err)
	}
	if r.Registry() != nil {
		t.Error("nil recorder has no registry")
	}
}
