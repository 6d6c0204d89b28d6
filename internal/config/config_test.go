package config

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"OWID_DATA_SOURCE", "GEOJSON_SOURCE", "CENTROID_SOURCE", "LOAD_TIMEOUT",
	"HTTP_RETRY_COUNT", "OUTPUT_DIR", "METRICS_FILE", "WINDOW_WIDTH",
	"CHART_END_DATE", "SELECTED_ISO_CODES", "SHOW_SECOND_Y_AXIS",
	"ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every variable the config reads and restores them after
// the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		k := k
		if old, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, old) })
		}
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			validate: func(t *testing.T, cfg *Config) {
				if cfg.OWIDSource != "data/owid-covid-data.csv" {
					t.Errorf("unexpected OWID source %q", cfg.OWIDSource)
				}
				if !strings.HasPrefix(cfg.GeoJSONSource, "https://") {
					t.Errorf("expected remote GeoJSON default, got %q", cfg.GeoJSONSource)
				}
				if cfg.OutputDir != "./dist" {
					t.Errorf("unexpected output dir %q", cfg.OutputDir)
				}
				if cfg.WindowWidth != 1280 {
					t.Errorf("unexpected window width %d", cfg.WindowWidth)
				}
				want := []string{"USA", "GBR", "JPN", "ITA", "CAN", "DEU", "FRA", "OWID_WRL"}
				if !reflect.DeepEqual(cfg.SelectedISOCodes, want) {
					t.Errorf("unexpected ISO codes %v", cfg.SelectedISOCodes)
				}
				if cfg.LoadTimeout != 0 {
					t.Errorf("expected no load timeout by default, got %v", cfg.LoadTimeout)
				}
				if cfg.ShowSecondYAxis {
					t.Error("second y-axis should be off by default")
				}
				if cfg.HTTPRetryCount != 3 {
					t.Errorf("unexpected retry count %d", cfg.HTTPRetryCount)
				}
			},
		},
		{
			name: "custom values",
			envVars: map[string]string{
				"OWID_DATA_SOURCE":   "https://example.org/owid.csv",
				"WINDOW_WIDTH":       "600",
				"CHART_END_DATE":     "2022-01-01",
				"SELECTED_ISO_CODES": "NZL,AUS",
				"SHOW_SECOND_Y_AXIS": "true",
				"LOAD_TIMEOUT":       "45s",
				"METRICS_FILE":       "/tmp/covidviz.prom",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.OWIDSource != "https://example.org/owid.csv" {
					t.Errorf("unexpected OWID source %q", cfg.OWIDSource)
				}
				if cfg.WindowWidth != 600 {
					t.Errorf("unexpected window width %d", cfg.WindowWidth)
				}
				if !reflect.DeepEqual(cfg.SelectedISOCodes, []string{"NZL", "AUS"}) {
					t.Errorf("unexpected ISO codes %v", cfg.SelectedISOCodes)
				}
				if !cfg.ShowSecondYAxis {
					t.Error("expected second y-axis on")
				}
				if cfg.LoadTimeout != 45*time.Second {
					t.Errorf("unexpected timeout %v", cfg.LoadTimeout)
				}
				if cfg.MetricsFile != "/tmp/covidviz.prom" {
					t.Errorf("unexpected metrics file %q", cfg.MetricsFile)
				}
			},
		},
		{
			name:        "invalid end date",
			envVars:     map[string]string{"CHART_END_DATE": "07/03/2023"},
			expectError: "chart end date",
		},
		{
			name:        "invalid window width",
			envVars:     map[string]string{"WINDOW_WIDTH": "0"},
			expectError: "window width",
		},
		{
			name:        "unparsable bool",
			envVars:     map[string]string{"SHOW_SECOND_Y_AXIS": "maybe"},
			expectError: "failed to process config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load(context.Background())
			if tt.expectError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectError) {
					t.Fatalf("expected error containing %q, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
			tt.validate(t, cfg)
		})
	}
}

func TestSVGDimensions(t *testing.T) {
	tests := []struct {
		window        int
		width, height float64
	}{
		{1920, 1000, 562.5},
		{769, 1000, 562.5},
		{768, 750, 421.875},
		{641, 750, 421.875},
		{640, 620, 348.75},
		{426, 620, 348.75},
		{425, 300, 168.75},
		{320, 300, 168.75},
	}
	for _, tt := range tests {
		w, h := SVGDimensions(tt.window)
		if w != tt.width || h != tt.height {
			t.Errorf("SVGDimensions(%d) = %v x %v, want %v x %v", tt.window, w, h, tt.width, tt.height)
		}
	}
}
