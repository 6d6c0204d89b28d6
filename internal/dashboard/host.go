package dashboard

import (
	"context"
	"errors"
	"fmt"

	"covidviz/internal/charts"
	"covidviz/internal/config"
	"covidviz/internal/fetchers"
	"covidviz/internal/logger"
	"covidviz/internal/metrics"
	"covidviz/internal/models"
	"covidviz/internal/render"
)

// Anchors the dashboard page provides for its charts.
const (
	LineAnchor = "#line-chart-container"
	MapAnchor  = "#bubble-map-container"
)

// errorNode is the per-chart error element placed under an anchor.
const errorNode = "chart-error"

// PageState is which of the three page sections is visible.
type PageState int

const (
	Loading PageState = iota
	Content
	Error
)

func (s PageState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Content:
		return "content"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Host owns the render surface, the page state and the charts. All methods
// must be called from one goroutine; Run serializes events onto it.
type Host struct {
	cfg     *config.Config
	surface *render.Surface
	log     *logger.Logger
	metrics *metrics.Recorder

	state   PageState
	loadErr error
	store   *models.Store

	line   *charts.LineChart
	bubble *charts.BubbleMap
}

// Option configures a Host.
type Option func(*Host)

func WithLogger(log *logger.Logger) Option {
	return func(h *Host) { h.log = log.WithComponent("dashboard") }
}

func WithMetrics(rec *metrics.Recorder) Option {
	return func(h *Host) { h.metrics = rec }
}

// NewHost creates a host in the loading state.
func NewHost(cfg *config.Config, opts ...Option) *Host {
	h := &Host{
		cfg:     cfg,
		surface: render.NewSurface(LineAnchor, MapAnchor),
		log:     logger.Global().WithComponent("dashboard"),
		state:   Loading,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) State() PageState             { return h.state }
func (h *Host) Err() error                   { return h.loadErr }
func (h *Host) Surface() *render.Surface     { return h.surface }
func (h *Host) Store() *models.Store         { return h.store }
func (h *Host) LineChart() *charts.LineChart { return h.line }
func (h *Host) BubbleMap() *charts.BubbleMap { return h.bubble }
func (h *Host) Config() *config.Config       { return h.cfg }
func (h *Host) Metrics() *metrics.Recorder   { return h.metrics }
func (h *Host) Logger() *logger.Logger       { return h.log }

// Charts returns the charts that were created, in page order.
func (h *Host) Charts() []charts.Chart {
	var out []charts.Chart
	if h.line != nil {
		out = append(out, h.line)
	}
	if h.bubble != nil {
		out = append(out, h.bubble)
	}
	return out
}

// Start loads the data and draws the charts once it is ready. The page
// leaves the loading state whatever the outcome.
func (h *Host) Start(ctx context.Context, loader *fetchers.Loader) error {
	ready := fetchers.NewReady()
	ready.Subscribe(h.onDataReady)

	if err := loader.Start(ctx, ready); err != nil {
		h.showError(err)
		return err
	}
	return nil
}

func (h *Host) showError(err error) {
	h.state = Error
	h.loadErr = err
	h.log.Error("Dashboard data could not be loaded", err)
}

// onDataReady builds both charts from the store and draws them. A chart
// that fails shows its own error element; the page still shows content.
func (h *Host) onDataReady(store *models.Store) {
	h.store = store
	env := charts.Env{Surface: h.surface, Logger: h.log, Metrics: h.metrics}
	width, height := config.SVGDimensions(h.cfg.WindowWidth)

	line, err := charts.NewLineChart(store, env,
		charts.WithSize(width, height),
		charts.WithSelectedKeys(h.cfg.SelectedISOCodes...),
		charts.WithSecondYAxis(h.cfg.ShowSecondYAxis),
	)
	if err != nil {
		h.showError(err)
		return
	}
	bubble, err := charts.NewBubbleMap(store, env,
		charts.WithSize(width, height),
		charts.WithDate(h.cfg.ChartEndDate),
	)
	if err != nil {
		h.showError(err)
		return
	}
	h.line, h.bubble = line, bubble

	for _, c := range h.Charts() {
		h.cycle(c, c.Draw)
	}
	h.state = Content
	h.log.Info("Dashboard ready", logger.Fields{
		"rows":     len(store.OWID),
		"features": len(store.World.Features),
	})
}

// cycle runs one draw or update and keeps the chart's error element in sync.
func (h *Host) cycle(c charts.Chart, run func() error) error {
	anchor, ok := h.surface.Anchor(c.Anchor())
	err := run()
	if !ok {
		return err
	}
	if err != nil {
		cause := err
		if inner := errors.Unwrap(err); inner != nil {
			cause = inner
		}
		anchor.EnsureChild("div", errorNode).
			SetClass(errorNode).
			SetText(fmt.Sprintf("Chart could not be drawn: %v", cause))
		return err
	}
	anchor.RemoveIfPresent(errorNode)
	return nil
}

// ChartError returns the text of the error element under an anchor.
func (h *Host) ChartError(anchor string) (string, bool) {
	node, ok := h.surface.Anchor(anchor)
	if !ok {
		return "", false
	}
	if n := node.Child(errorNode); n != nil {
		return n.Text(), true
	}
	return "", false
}
