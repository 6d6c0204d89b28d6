package charts

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"covidviz/internal/logger"
	"covidviz/internal/models"
	"covidviz/internal/render"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewChartsRequireStore(t *testing.T) {
	env, _ := testEnv()
	if _, err := NewLineChart(nil, env); !errors.Is(err, ErrNoStore) {
		t.Errorf("line chart err = %v", err)
	}
	if _, err := NewBubbleMap(nil, env); !errors.Is(err, ErrNoStore) {
		t.Errorf("bubble map err = %v", err)
	}
}

func TestDrawWithoutAnchorFails(t *testing.T) {
	env, rec := testEnv()
	env.Surface = render.NewSurface()
	c, _ := NewLineChart(testStore(t), env)

	err := c.Draw()
	if !errors.Is(err, ErrNoAnchor) {
		t.Fatalf("err = %v, want ErrNoAnchor", err)
	}
	var de *DrawError
	if !errors.As(err, &de) || de.State != Uninitialized || de.Chart != "g7-line-chart" {
		t.Errorf("unexpected draw error %+v", de)
	}
	if c.State() != Failed {
		t.Errorf("state = %v", c.State())
	}
	if n, _ := testutil.GatherAndCount(rec.Registry(), "covidviz_draw_failures_total"); n != 1 {
		t.Errorf("failure series = %d", n)
	}
}

func TestDrawRecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	env, _ := testEnv()
	env.Logger = logger.New(logger.Config{Level: logger.ERROR, Output: &buf})

	boom := func(models.Row) float64 { panic("bad measure") }
	c, _ := NewLineChart(testStore(t), env, WithY1(boom))

	err := c.Draw()
	var de *DrawError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DrawError", err)
	}
	if de.State != Structured || !strings.Contains(de.Error(), "bad measure") {
		t.Errorf("draw error = %v (state %v)", de, de.State)
	}
	if !strings.Contains(buf.String(), "Draw cycle failed") {
		t.Errorf("failure not logged: %s", buf.String())
	}

	// A later successful cycle recovers the chart.
	c.SetParams(WithY1(Field("total_deaths_per_million")))
	if err := c.Update(); err != nil {
		t.Fatalf("Update after failure: %v", err)
	}
	if c.State() != Rendered {
		t.Errorf("state = %v", c.State())
	}
}

func TestUpdateFallsBackToDraw(t *testing.T) {
	env, rec := testEnv()
	m, _ := NewBubbleMap(testStore(t), env, WithID("map"))
	if err := m.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if m.SVG() == nil || m.State() != Rendered {
		t.Error("Update on a fresh chart should build the structure")
	}
	if n, _ := testutil.GatherAndCount(rec.Registry(), "covidviz_draw_cycles_total"); n != 1 {
		t.Errorf("draw cycle series = %d", n)
	}
}

func TestMissingSelectorIsDrawError(t *testing.T) {
	env, _ := testEnv()
	c, _ := NewLineChart(testStore(t), env, WithSecondYAxis(true), WithY2(nil))
	var de *DrawError
	if err := c.Draw(); !errors.As(err, &de) || de.State != Uninitialized {
		t.Errorf("err = %v", err)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		Uninitialized: "uninitialized",
		Structured:    "structured",
		Scaled:        "scaled",
		Rendered:      "rendered",
		Failed:        "failed",
		State(42):     "unknown",
	} {
		if s.String() != want {
			t.Errorf("State(%d) = %s, want %s", s, s, want)
		}
	}
}
