// Package config loads the viewer's YAML configuration. Values missing from the file keep
// their defaults; command-line flags override both.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gopkg.in/yaml.v3"

	"github.com/IzmdI/rawstore-plots/src/locale"
	"github.com/IzmdI/rawstore-plots/src/logger"
	"github.com/IzmdI/rawstore-plots/src/plot"
)

var log = logger.Component("config")

type Config struct {
	Source   string            `yaml:"source"`
	LogLevel string            `yaml:"log_level"`
	Window   WindowConfig      `yaml:"window"`
	Chart    ChartConfig       `yaml:"chart"`
	Colors   map[string]string `yaml:"colors"`
	Locale   LocaleConfig      `yaml:"locale"`
	Metrics  MetricsConfig     `yaml:"metrics"`
	HTTP     HTTPConfig        `yaml:"http"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type ChartConfig struct {
	Height               int           `yaml:"height"`
	Margins              MarginsConfig `yaml:"margins"`
	AnimationMS          int           `yaml:"animation_ms"`
	ResizeDebounceMS     int           `yaml:"resize_debounce_ms"`
	PreserveZoomOnResize bool          `yaml:"preserve_zoom_on_resize"`
}

type MarginsConfig struct {
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
}

type LocaleConfig struct {
	Timezone string `yaml:"timezone"`
}

type MetricsConfig struct {
	// Addr of the /metrics listener; empty disables it.
	Addr string `yaml:"addr"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultSource is the dataset path used when neither file nor flags name one.
const DefaultSource = "data/fio_summary.jsonl"

// Default returns the built-in configuration.
func Default() *Config {
	m := plot.DefaultMargins()
	return &Config{
		Source:   DefaultSource,
		LogLevel: "info",
		Window:   WindowConfig{Width: 1100, Height: 900},
		Chart: ChartConfig{
			Height:               plot.DefaultChartHeight,
			Margins:              MarginsConfig{Top: int(m.Top), Right: int(m.Right), Bottom: int(m.Bottom), Left: int(m.Left)},
			AnimationMS:          int(plot.DefaultZoomDuration / time.Millisecond),
			ResizeDebounceMS:     150,
			PreserveZoomOnResize: true,
		},
		Colors: map[string]string{
			string(plot.FieldReadIOPS):       "#1f77b4",
			string(plot.FieldWriteIOPS):      "#d62728",
			string(plot.FieldReadLatencyNs):  "#2ca02c",
			string(plot.FieldWriteLatencyNs): "#ff7f0e",
		},
		Locale: LocaleConfig{Timezone: "Local"},
		HTTP:   HTTPConfig{Timeout: 30 * time.Second},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	log.Debugf("loaded %s", path)
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = DefaultSource
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Window.Width == 0 {
		c.Window.Width = 1100
	}
	if c.Window.Height == 0 {
		c.Window.Height = 900
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = plot.DefaultChartHeight
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
}

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("window: size must not be negative")
	}
	if c.Chart.Height <= 0 {
		return fmt.Errorf("chart.height must be positive, got %d", c.Chart.Height)
	}
	m := c.Chart.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		return fmt.Errorf("chart.margins must not be negative")
	}
	if m.Top+m.Bottom >= c.Chart.Height {
		return fmt.Errorf("chart.margins: top+bottom (%d) must be smaller than chart.height (%d)", m.Top+m.Bottom, c.Chart.Height)
	}
	if c.Chart.AnimationMS < 0 {
		return fmt.Errorf("chart.animation_ms must not be negative")
	}
	if c.Chart.ResizeDebounceMS < 0 {
		return fmt.Errorf("chart.resize_debounce_ms must not be negative")
	}
	for name, hex := range c.Colors {
		if _, err := plot.ParseField(name); err != nil {
			return fmt.Errorf("colors: %w", err)
		}
		if !hexColor.MatchString(hex) {
			return fmt.Errorf("colors.%s: invalid hex color %q", name, hex)
		}
	}
	if _, err := locale.LoadLocation(c.Locale.Timezone); err != nil {
		return fmt.Errorf("locale.timezone: %w", err)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	return nil
}

// Margins converts the configured margins to plot units.
func (c *Config) Margins() plot.Margins {
	m := c.Chart.Margins
	return plot.Margins{Top: float64(m.Top), Right: float64(m.Right), Bottom: float64(m.Bottom), Left: float64(m.Left)}
}

// ChartColors resolves the configured colors; fields without an entry use the defaults.
func (c *Config) ChartColors() map[plot.Field]drawing.Color {
	out := plot.DefaultColors()
	for name, hex := range c.Colors {
		f, err := plot.ParseField(name)
		if err != nil || !hexColor.MatchString(hex) {
			continue
		}
		out[f] = drawing.ColorFromHex(hex)
	}
	return out
}

// Formatter returns the locale formatter for the configured zone.
func (c *Config) Formatter() (locale.Formatter, error) {
	loc, err := locale.LoadLocation(c.Locale.Timezone)
	if err != nil {
		return locale.Formatter{}, err
	}
	return locale.New(loc), nil
}

func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.Chart.AnimationMS) * time.Millisecond
}

func (c *Config) ResizeDebounce() time.Duration {
	return time.Duration(c.Chart.ResizeDebounceMS) * time.Millisecond
}
