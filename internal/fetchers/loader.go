package fetchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"covidviz/internal/logger"
	"covidviz/internal/metrics"
	"covidviz/internal/models"

	"golang.org/x/sync/errgroup"
)

// ErrEmptySource is returned when a source yields no bytes at all.
var ErrEmptySource = errors.New("data source is empty")

// Loader resolves the OWID, world boundary and centroid sources into a store.
type Loader struct {
	owid      Source
	world     Source
	centroids Source

	timeout time.Duration
	log     *logger.Logger
	metrics *metrics.Recorder
}

// Option configures a Loader.
type Option func(*Loader)

// WithTimeout bounds the whole load. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) { l.timeout = d }
}

// WithLogger sets the loader's logger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Loader) { l.log = log.WithComponent("loader") }
}

// WithMetrics records per-source timings on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(l *Loader) { l.metrics = rec }
}

// NewLoader creates a loader over the three sources.
func NewLoader(owid, world, centroids Source, opts ...Option) *Loader {
	l := &Loader{
		owid:      owid,
		world:     world,
		centroids: centroids,
		log:       logger.Global().WithComponent("loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and parses the three sources concurrently. The first failure
// cancels the remaining fetches and is the only error returned.
func (l *Loader) Load(ctx context.Context) (*models.Store, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	l.log.Info("Starting data load", logger.Fields{
		"owid": l.owid.Name(), "world": l.world.Name(), "centroids": l.centroids.Name(),
	})

	var (
		owid      models.Rows
		world     *models.World
		centroids models.Rows
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := l.loadCSV(gctx, l.owid)
		owid = rows
		return err
	})
	g.Go(func() error {
		w, err := l.loadWorld(gctx, l.world)
		world = w
		return err
	})
	g.Go(func() error {
		rows, err := l.loadCSV(gctx, l.centroids)
		centroids = rows
		return err
	})

	if err := g.Wait(); err != nil {
		l.log.Error("Data load failed", err)
		return nil, err
	}

	store := models.NewStore(owid, world, centroids)
	l.log.Info("Data load completed", logger.Fields{
		"owid_rows":     len(owid),
		"features":      len(world.Features),
		"centroid_rows": len(centroids),
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return store, nil
}

// Start runs Load and fires ready with the outcome.
func (l *Loader) Start(ctx context.Context, ready *Ready) error {
	store, err := l.Load(ctx)
	if err != nil {
		ready.Fail(err)
		return err
	}
	ready.Publish(store)
	return nil
}

func (l *Loader) loadCSV(ctx context.Context, src Source) (models.Rows, error) {
	start := time.Now()
	data, err := fetch(ctx, src)
	if err != nil {
		l.metrics.ObserveLoad(src.Name(), false, time.Since(start), 0)
		return nil, err
	}
	rows, err := models.ParseCSV(data)
	if err != nil {
		l.metrics.ObserveLoad(src.Name(), false, time.Since(start), 0)
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}
	l.metrics.ObserveLoad(src.Name(), true, time.Since(start), len(rows))
	l.log.Debug("Parsed CSV source", logger.Fields{"source": src.Name(), "rows": len(rows)})
	return rows, nil
}

func (l *Loader) loadWorld(ctx context.Context, src Source) (*models.World, error) {
	start := time.Now()
	data, err := fetch(ctx, src)
	if err != nil {
		l.metrics.ObserveLoad(src.Name(), false, time.Since(start), 0)
		return nil, err
	}
	world, err := models.ParseWorld(data)
	if err != nil {
		l.metrics.ObserveLoad(src.Name(), false, time.Since(start), 0)
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}
	l.metrics.ObserveLoad(src.Name(), true, time.Since(start), len(world.Features))
	l.log.Debug("Parsed GeoJSON source", logger.Fields{"source": src.Name(), "features": len(world.Features)})
	return world, nil
}

func fetch(ctx context.Context, src Source) ([]byte, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", src.Name(), ErrEmptySource)
	}
	return data, nil
}
