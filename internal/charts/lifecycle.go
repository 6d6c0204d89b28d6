package charts

import (
	"errors"
	"fmt"
	"time"

	"covidviz/internal/logger"
	"covidviz/internal/metrics"
	"covidviz/internal/render"
)

// ErrNoStore is returned when a chart is constructed without data.
var ErrNoStore = errors.New("charts: no data store")

// ErrNoAnchor is returned when the chart's anchor is not on the surface.
var ErrNoAnchor = errors.New("charts: anchor not found")

// State is the position of a chart in its draw cycle.
type State int

const (
	Uninitialized State = iota
	Structured
	Scaled
	Rendered
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Structured:
		return "structured"
	case Scaled:
		return "scaled"
	case Rendered:
		return "rendered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// DrawError reports a failed draw or update cycle.
type DrawError struct {
	Chart string
	Op    string
	// State is the last state the cycle reached before failing.
	State State
	Err   error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("%s %s failed after %s: %v", e.Chart, e.Op, e.State, e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }

// Chart is a drawable component placed under a surface anchor.
type Chart interface {
	ID() string
	Anchor() string
	State() State
	SetParams(overlays ...Overlay)
	Draw() error
	Update() error
}

// Env carries the collaborators every chart needs.
type Env struct {
	Surface *render.Surface
	Logger  *logger.Logger
	Metrics *metrics.Recorder
}

// stages is implemented by each chart variant and called in order by run.
type stages interface {
	// setupData filters and groups the rows for this cycle.
	setupData() error
	// structure ensures the persistent nodes exist.
	structure() error
	// teardown removes nodes of disabled features.
	teardown()
	// scales builds scales, axes and projections.
	scales() error
	// render writes geometry, labels and the legend.
	render() error
}

type lifecycle struct {
	id      string
	state   State
	log     *logger.Logger
	metrics *metrics.Recorder
	lastErr error
}

func newLifecycle(id string, env Env) lifecycle {
	log := env.Logger
	if log == nil {
		log = logger.Global()
	}
	return lifecycle{id: id, log: log.WithComponent("chart").With(logger.Fields{"chart": id}), metrics: env.Metrics}
}

// run executes one cycle. Errors and panics from any stage are caught here,
// once, and leave the chart Failed.
func (lc *lifecycle) run(op string, s stages, withStructure bool) (err error) {
	start := time.Now()
	reached := Structured
	if withStructure {
		reached = Uninitialized
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			de := &DrawError{Chart: lc.id, Op: op, State: reached, Err: err}
			lc.state = Failed
			lc.lastErr = de
			lc.log.Error("Draw cycle failed", err, logger.Fields{"op": op, "state": reached.String()})
			lc.metrics.ObserveDraw(lc.id, op, false)
			err = de
			return
		}
		lc.state = Rendered
		lc.lastErr = nil
		lc.metrics.ObserveDraw(lc.id, op, true)
		lc.log.Debug("Draw cycle finished", logger.Fields{"op": op, "duration_ms": time.Since(start).Milliseconds()})
	}()

	if err := s.setupData(); err != nil {
		return err
	}
	if withStructure {
		if err := s.structure(); err != nil {
			return err
		}
		reached = Structured
		lc.state = Structured
	}
	s.teardown()
	if err := s.scales(); err != nil {
		return err
	}
	reached = Scaled
	lc.state = Scaled
	return s.render()
}

// needsStructure reports whether an update has to fall back to a full draw.
func (lc *lifecycle) needsStructure() bool {
	return lc.state == Uninitialized || lc.state == Failed
}
