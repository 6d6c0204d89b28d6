package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DateLayout is the day format used by the OWID dataset.
const DateLayout = "2006-01-02"

// Config holds all configuration for the dashboard build
type Config struct {
	// Data sources: local paths or http(s) URLs
	OWIDSource     string `env:"OWID_DATA_SOURCE,default=data/owid-covid-data.csv"`
	GeoJSONSource  string `env:"GEOJSON_SOURCE,default=https://raw.githubusercontent.com/holtzy/D3-graph-gallery/master/DATA/world.geojson"`
	CentroidSource string `env:"CENTROID_SOURCE,default=data/country-coord-adapted.csv"`

	// Loader behaviour. A zero timeout means the load may wait indefinitely.
	LoadTimeout    time.Duration `env:"LOAD_TIMEOUT,default=0s"`
	HTTPRetryCount int           `env:"HTTP_RETRY_COUNT,default=3"`

	// Output
	OutputDir   string `env:"OUTPUT_DIR,default=./dist"`
	MetricsFile string `env:"METRICS_FILE"`

	// Initial chart state
	WindowWidth      int      `env:"WINDOW_WIDTH,default=1280"`
	ChartEndDate     string   `env:"CHART_END_DATE,default=2023-03-07"`
	SelectedISOCodes []string `env:"SELECTED_ISO_CODES,default=USA,GBR,JPN,ITA,CAN,DEU,FRA,OWID_WRL"`
	ShowSecondYAxis  bool     `env:"SHOW_SECOND_Y_AXIS,default=false"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=auto"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that the chart components cannot recover from.
func (c *Config) Validate() error {
	if c.OWIDSource == "" || c.GeoJSONSource == "" || c.CentroidSource == "" {
		return fmt.Errorf("invalid config: all three data sources are required")
	}
	if c.WindowWidth <= 0 {
		return fmt.Errorf("invalid config: window width must be positive, got %d", c.WindowWidth)
	}
	if _, err := time.Parse(DateLayout, c.ChartEndDate); err != nil {
		return fmt.Errorf("invalid config: chart end date %q: %w", c.ChartEndDate, err)
	}
	if c.LoadTimeout < 0 {
		return fmt.Errorf("invalid config: load timeout must not be negative")
	}
	return nil
}
