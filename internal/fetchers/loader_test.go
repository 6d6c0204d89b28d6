package fetchers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"covidviz/internal/logger"
	"covidviz/internal/metrics"
	"covidviz/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const (
	owidCSV     = "iso_code,date,total_cases\nFRA,2023-03-07,39000000\nGBR,2023-03-07,24000000\n"
	centroidCSV = "iso_code,long,lat\nFRA,2.2,46.2\nGBR,-3.4,55.3\n"
	worldJSON   = `{"type":"FeatureCollection","features":[{"type":"Feature","id":"FRA","properties":{},"geometry":{"type":"Point","coordinates":[2,46]}}]}`
)

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: &bytes.Buffer{}})
}

func TestLoaderLoadsAllSources(t *testing.T) {
	rec := metrics.New()
	l := NewLoader(
		NewStaticSource("owid", []byte(owidCSV)),
		NewStaticSource("world", []byte(worldJSON)),
		NewStaticSource("centroids", []byte(centroidCSV)),
		WithLogger(quietLogger()),
		WithMetrics(rec),
	)

	store, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(store.OWID) != 2 || len(store.World.Features) != 1 || len(store.Centroids) != 2 {
		t.Errorf("unexpected store sizes: %d rows, %d features, %d centroids",
			len(store.OWID), len(store.World.Features), len(store.Centroids))
	}
	if _, ok := store.Centroid("GBR"); !ok {
		t.Error("expected GBR centroid to be indexed")
	}

	if n, _ := testutil.GatherAndCount(rec.Registry(), "covidviz_source_loads_total"); n != 3 {
		t.Errorf("expected 3 load outcome series, got %d", n)
	}
}

func TestLoaderEmptySources(t *testing.T) {
	l := NewLoader(
		NewStaticSource("owid", nil),
		NewStaticSource("world", nil),
		NewStaticSource("centroids", nil),
		WithLogger(quietLogger()),
	)

	_, err := l.Load(context.Background())
	if !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
}

func TestLoaderFirstFailureCancelsOthers(t *testing.T) {
	var cancelled atomic.Bool
	slow := sourceFunc{name: "world", fetch: func(ctx context.Context) ([]byte, error) {
		select {
		case <-ctx.Done():
			cancelled.Store(true)
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return []byte(worldJSON), nil
		}
	}}
	broken := sourceFunc{name: "owid", fetch: func(context.Context) ([]byte, error) {
		return nil, errors.New("connection reset")
	}}

	l := NewLoader(broken, slow, NewStaticSource("centroids", []byte(centroidCSV)), WithLogger(quietLogger()))
	_, err := l.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("expected the first failure to be returned, got %v", err)
	}
	if !cancelled.Load() {
		t.Error("slow source should observe cancellation")
	}
}

func TestLoaderTimeout(t *testing.T) {
	hang := sourceFunc{name: "owid", fetch: func(ctx context.Context) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	l := NewLoader(hang, NewStaticSource("world", []byte(worldJSON)), NewStaticSource("centroids", []byte(centroidCSV)),
		WithLogger(quietLogger()), WithTimeout(20*time.Millisecond))

	_, err := l.Load(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestLoaderParseError(t *testing.T) {
	l := NewLoader(
		NewStaticSource("owid", []byte(owidCSV)),
		NewStaticSource("world", []byte("{not geojson")),
		NewStaticSource("centroids", []byte(centroidCSV)),
		WithLogger(quietLogger()),
	)
	if _, err := l.Load(context.Background()); err == nil || !strings.Contains(err.Error(), "world") {
		t.Errorf("expected a world parse error, got %v", err)
	}
}

func TestLoaderStartFiresReady(t *testing.T) {
	ready := NewReady()
	var got *models.Store
	ready.Subscribe(func(s *models.Store) { got = s })

	l := NewLoader(
		NewStaticSource("owid", []byte(owidCSV)),
		NewStaticSource("world", []byte(worldJSON)),
		NewStaticSource("centroids", []byte(centroidCSV)),
		WithLogger(quietLogger()),
	)
	if err := l.Start(context.Background(), ready); err != nil {
		t.Fatal(err)
	}
	if got == nil || got != ready.Store() {
		t.Error("subscriber should receive the published store")
	}

	failed := NewReady()
	called := false
	failed.Subscribe(func(*models.Store) { called = true })
	bad := NewLoader(NewStaticSource("owid", nil), NewStaticSource("world", nil), NewStaticSource("centroids", nil),
		WithLogger(quietLogger()))
	if err := bad.Start(context.Background(), failed); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("subscribers must not run on failure")
	}
	if !errors.Is(failed.Err(), ErrEmptySource) {
		t.Errorf("unexpected ready error %v", failed.Err())
	}
}

func TestNewSourceSelectsImplementation(t *testing.T) {
	if _, ok := NewSource("geo", "https://example.com/world.geojson", nil).(*HTTPSource); !ok {
		t.Error("https location should use HTTPSource")
	}
	if _, ok := NewSource("geo", "HTTP://example.com/world.geojson", nil).(*HTTPSource); !ok {
		t.Error("scheme match should ignore case")
	}
	if _, ok := NewSource("owid", "data/owid.csv", nil).(*FileSource); !ok {
		t.Error("plain path should use FileSource")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centroids.csv")
	if err := os.WriteFile(path, []byte(centroidCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := NewFileSource("centroids", path).Fetch(context.Background())
	if err != nil || string(data) != centroidCSV {
		t.Errorf("unexpected read: %q, %v", data, err)
	}

	if _, err := NewFileSource("missing", filepath.Join(t.TempDir(), "nope.csv")).Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHTTPSource(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/world.geojson":
			_, _ = w.Write([]byte(worldJSON))
		case "/flaky":
			if hits.Load() < 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("ok"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	data, err := NewHTTPSource("world", srv.URL+"/world.geojson", nil).Fetch(context.Background())
	if err != nil || string(data) != worldJSON {
		t.Errorf("unexpected body %q, %v", data, err)
	}

	_, err = NewHTTPSource("missing", srv.URL+"/missing", nil).Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}

	hits.Store(0)
	client := NewHTTPClient(2)
	client.SetRetryWaitTime(time.Millisecond)
	client.SetRetryMaxWaitTime(5 * time.Millisecond)
	data, err = NewHTTPSource("flaky", srv.URL+"/flaky", client).Fetch(context.Background())
	if err != nil || string(data) != "ok" {
		t.Errorf("expected retry to succeed, got %q, %v", data, err)
	}
}

func TestHTTPSourceCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHTTPSource("owid", srv.URL, nil).Fetch(ctx); err == nil {
		t.Error("expected error due to cancelled context")
	}
}

type sourceFunc struct {
	name  string
	fetch func(context.Context) ([]byte, error)
}

func (s sourceFunc) Name() string { return s.name }

func (s sourceFunc) Fetch(ctx context.Context) ([]byte, error) { return s.fetch(ctx) }
