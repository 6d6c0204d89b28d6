package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"covidviz/internal/config"
	"covidviz/internal/dashboard"
	"covidviz/internal/fetchers"
	"covidviz/internal/logger"
	"covidviz/internal/metrics"
	"covidviz/internal/reports"
	"covidviz/internal/storage"
)

// Builder loads the data, draws the dashboard and writes every artifact to
// the output directory.
type Builder struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Recorder
	store   storage.Client
	now     func() time.Time
}

// NewBuilder creates a builder writing to cfg.OutputDir.
func NewBuilder(cfg *config.Config, log *logger.Logger) (*Builder, error) {
	store, err := storage.NewLocalClient(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open output directory: %w", err)
	}
	return &Builder{
		cfg:     cfg,
		log:     log.WithComponent("builder"),
		metrics: metrics.New(),
		store:   store,
		now:     time.Now,
	}, nil
}

// Close releases the output storage.
func (b *Builder) Close() error {
	return b.store.Close()
}

func (b *Builder) loader() *fetchers.Loader {
	client := fetchers.NewHTTPClient(b.cfg.HTTPRetryCount)
	return fetchers.NewLoader(
		fetchers.NewSource("owid", b.cfg.OWIDSource, client),
		fetchers.NewSource("world", b.cfg.GeoJSONSource, client),
		fetchers.NewSource("centroids", b.cfg.CentroidSource, client),
		fetchers.WithTimeout(b.cfg.LoadTimeout),
		fetchers.WithLogger(b.log),
		fetchers.WithMetrics(b.metrics),
	)
}

// Build runs one dashboard build. The page is written even when the data
// could not be loaded so that it shows the error state; the load error is
// returned afterwards.
func (b *Builder) Build(ctx context.Context) (*dashboard.Host, error) {
	startTime := b.now()
	b.log.Info("Starting dashboard build", logger.Fields{
		"owid":        b.cfg.OWIDSource,
		"world":       b.cfg.GeoJSONSource,
		"centroids":   b.cfg.CentroidSource,
		"output_dir":  b.cfg.OutputDir,
		"environment": b.cfg.Environment,
	})

	if exists, err := b.store.FileExists(ctx, "index.html"); err == nil && exists {
		b.log.Debug("Replacing previous build", logger.Fields{"output_dir": b.cfg.OutputDir})
	}

	host := dashboard.NewHost(b.cfg, dashboard.WithLogger(b.log), dashboard.WithMetrics(b.metrics))
	loadErr := host.Start(ctx, b.loader())

	page, err := reports.NewPageBuilder(config.GetVersion("."), nil)
	if err != nil {
		return host, err
	}
	html, err := page.Build(host, b.now())
	if err != nil {
		return host, fmt.Errorf("failed to build page: %w", err)
	}

	written := []string{}
	save := func(name string, data []byte) error {
		if err := b.store.StoreFile(ctx, name, data); err != nil {
			return err
		}
		written = append(written, name)
		return nil
	}

	if err := save("index.html", html); err != nil {
		return host, err
	}
	if host.State() == dashboard.Content {
		if err := b.writeExports(host, save); err != nil {
			return host, err
		}
	}

	if err := b.writeManifest(ctx); err != nil {
		return host, err
	}
	if err := b.metrics.WriteTextfile(b.cfg.MetricsFile); err != nil {
		b.log.Warn("Failed to write metrics", logger.Fields{"path": b.cfg.MetricsFile, "error": err.Error()})
	}

	b.log.Info("Dashboard build finished", logger.Fields{
		"state":       host.State().String(),
		"duration_ms": time.Since(startTime).Milliseconds(),
		"files":       strings.Join(written, ","),
	})
	return host, loadErr
}

// writeExports saves the standalone chart files. A chart that failed to draw
// is skipped; its card on the page already shows the error.
func (b *Builder) writeExports(host *dashboard.Host, save func(string, []byte) error) error {
	exports := []struct {
		anchor string
		name   string
	}{
		{dashboard.LineAnchor, "line-chart.svg"},
		{dashboard.MapAnchor, "bubble-map.svg"},
	}
	for _, e := range exports {
		svg, ok := reports.SVG(host, e.anchor)
		if !ok {
			b.log.Warn("Skipping chart export", logger.Fields{"anchor": e.anchor})
			continue
		}
		if err := save(e.name, []byte(svg)); err != nil {
			return err
		}
	}

	var interactive bytes.Buffer
	if err := reports.RenderInteractive(&interactive, host); err != nil {
		return fmt.Errorf("failed to render interactive page: %w", err)
	}
	if err := save("interactive.html", interactive.Bytes()); err != nil {
		return err
	}

	var png bytes.Buffer
	switch err := reports.RenderHostSnapshot(&png, host); {
	case errors.Is(err, reports.ErrNoSeries):
		b.log.Warn("Line chart has no data, skipping snapshot")
	case err != nil:
		return fmt.Errorf("failed to render snapshot: %w", err)
	default:
		if err := save("line-chart.png", png.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// ManifestEntry describes one file of the output directory.
type ManifestEntry struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// writeManifest lists everything in the output directory, including files
// left there by earlier builds, as manifest.json.
func (b *Builder) writeManifest(ctx context.Context) error {
	names, err := b.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list output: %w", err)
	}
	entries := make([]ManifestEntry, 0, len(names))
	for _, name := range names {
		if name == manifestName {
			continue
		}
		data, err := b.store.GetFile(ctx, name)
		if err != nil {
			return err
		}
		entries = append(entries, ManifestEntry{
			Name:        name,
			ContentType: storage.GetContentType(name),
			Size:        len(data),
		})
	}
	body, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return b.store.StoreFile(ctx, manifestName, body)
}

const manifestName = "manifest.json"

// applyFlags parses args over the environment configuration. Only flags
// that were given on the command line override cfg.
func applyFlags(cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("covidviz", flag.ContinueOnError)
	fs.SetOutput(stderr)

	owid := fs.String("owid", cfg.OWIDSource, "OWID COVID-19 CSV (path or URL)")
	world := fs.String("world", cfg.GeoJSONSource, "World GeoJSON (path or URL)")
	centroids := fs.String("centroids", cfg.CentroidSource, "Country centroid CSV (path or URL)")
	out := fs.String("out", cfg.OutputDir, "Output directory")
	width := fs.Int("width", cfg.WindowWidth, "Window width used to size the charts")
	date := fs.String("date", cfg.ChartEndDate, "Bubble map date (YYYY-MM-DD)")
	countries := fs.String("countries", strings.Join(cfg.SelectedISOCodes, ","), "Comma separated ISO codes for the line chart")
	secondAxis := fs.Bool("second-axis", cfg.ShowSecondYAxis, "Show the vaccination axis")
	timeout := fs.Duration("timeout", cfg.LoadTimeout, "Load timeout, 0 waits indefinitely")
	metricsFile := fs.String("metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this textfile")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OWIDSource = *owid
	cfg.GeoJSONSource = *world
	cfg.CentroidSource = *centroids
	cfg.OutputDir = *out
	cfg.WindowWidth = *width
	cfg.ChartEndDate = *date
	cfg.SelectedISOCodes = splitCodes(*countries)
	cfg.ShowSecondYAxis = *secondAxis
	cfg.LoadTimeout = *timeout
	cfg.MetricsFile = *metricsFile
	return cfg.Validate()
}

func splitCodes(s string) []string {
	var codes []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// run returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 2
	}
	if err := applyFlags(cfg, args, stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Invalid arguments: %v\n", err)
		return 2
	}

	log := logger.Global()
	logger.Configure(log, cfg.LogLevel, cfg.LogFormat)

	builder, err := NewBuilder(cfg, log)
	if err != nil {
		log.Error("Failed to create builder", err)
		return 1
	}
	defer builder.Close()

	if _, err := builder.Build(ctx); err != nil {
		log.Error("Dashboard build failed", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
