package dashboard

import (
	"context"
	"errors"
	"fmt"

	"covidviz/internal/charts"
	"covidviz/internal/config"
	"covidviz/internal/logger"
)

// Click targets on the page.
const (
	ClickSwitchCountry = "#click"
	ClickToggleAxis    = "#toggle-second-axis"
)

// ErrNotReady is returned for chart events that arrive before the data.
var ErrNotReady = errors.New("dashboard: charts are not drawn yet")

// ErrUnknownTarget is returned for events aimed at nothing on the page.
var ErrUnknownTarget = errors.New("dashboard: unknown event target")

// EventKind identifies a page event.
type EventKind int

const (
	Resize EventKind = iota
	Click
	Hover
	Leave
	SelectDate
	SelectMetric
)

func (k EventKind) String() string {
	switch k {
	case Resize:
		return "resize"
	case Click:
		return "click"
	case Hover:
		return "hover"
	case Leave:
		return "leave"
	case SelectDate:
		return "select-date"
	case SelectMetric:
		return "select-metric"
	default:
		return "unknown"
	}
}

// Event is one interaction delivered to the host.
type Event struct {
	Kind EventKind
	// WindowWidth is the new window width of a Resize.
	WindowWidth int
	// Target is the element id of a Click.
	Target string
	// Key is the legend key of a Hover.
	Key string
	// Value is the date or column of a SelectDate or SelectMetric.
	Value string
}

// Handle applies one event synchronously.
func (h *Host) Handle(ev Event) error {
	if h.line == nil || h.bubble == nil {
		return ErrNotReady
	}
	switch ev.Kind {
	case Resize:
		return h.resize(ev.WindowWidth)
	case Click:
		return h.click(ev.Target)
	case Hover:
		return h.hover(ev.Key)
	case Leave:
		h.line.ClearHighlight()
		return nil
	case SelectDate:
		h.bubble.SetParams(charts.WithDate(ev.Value))
		return h.cycle(h.bubble, h.bubble.Update)
	case SelectMetric:
		h.bubble.SetParams(charts.WithCircle(charts.Field(ev.Value)), charts.WithChartLabel(metricLabel(ev.Value)))
		return h.cycle(h.bubble, h.bubble.Update)
	default:
		return fmt.Errorf("%w: event %s", ErrUnknownTarget, ev.Kind)
	}
}

func (h *Host) resize(windowWidth int) error {
	width, height := config.SVGDimensions(windowWidth)
	var errs []error
	for _, c := range h.Charts() {
		c.SetParams(charts.WithSize(width, height))
		if err := h.cycle(c, c.Update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Host) click(target string) error {
	switch target {
	case ClickSwitchCountry:
		h.line.SetParams(charts.WithSelectedKeys("GBR"), charts.WithSize(1000, 562.5))
	case ClickToggleAxis:
		h.line.SetParams(charts.WithSecondYAxis(!h.line.Options().ShowSecondYAxis))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	return h.cycle(h.line, h.line.Update)
}

// hover dispatches mouseover on the legend entry of key.
func (h *Host) hover(key string) error {
	svg := h.line.SVG()
	if svg == nil {
		return ErrNotReady
	}
	for _, n := range svg.SelectAll("legend-circle") {
		if n.HasClass("iso_code-" + key) {
			n.Dispatch("mouseover")
			return nil
		}
	}
	return fmt.Errorf("%w: legend key %q", ErrUnknownTarget, key)
}

// Run applies events until the channel closes or ctx is done. Failed events
// are logged and do not stop the loop.
func (h *Host) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := h.Handle(ev); err != nil {
				h.log.Warn("Event failed", logger.Fields{"event": ev.Kind.String(), "error": err.Error()})
			}
		}
	}
}

var metricLabels = map[string]string{
	"total_cases":  "Total Cases",
	"total_deaths": "Total Deaths",
	"new_cases":    "New Cases",
	"new_deaths":   "New Deaths",
}

func metricLabel(column string) string {
	if l, ok := metricLabels[column]; ok {
		return l
	}
	return column
}
