package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scrumtool/internal/board"
	"scrumtool/internal/browser"
	"scrumtool/internal/logging"
	"scrumtool/internal/report"
	"scrumtool/internal/style"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration.
const DefaultPath = ".scrum/config.yaml"

// Config holds all scrumtool configuration.
type Config struct {
	// Board page structure
	Selectors board.Selectors `yaml:"selectors"`

	// Presentation rules
	Style style.Config `yaml:"style"`

	Report  ReportConfig   `yaml:"report"`
	Browser BrowserConfig  `yaml:"browser"`
	Watch   WatchConfig    `yaml:"watch"`
	Archive ArchiveConfig  `yaml:"archive"`
	Logging logging.Config `yaml:"logging"`
}

// ReportConfig configures the report builder.
type ReportConfig struct {
	FirstDoneList string `yaml:"first_done_list"`
	Rounding      string `yaml:"rounding"` // ceil, none
	TrackLists    bool   `yaml:"track_lists"`
	Origin        string `yaml:"origin"`
}

// BrowserConfig configures live board capture.
type BrowserConfig struct {
	DebuggerURL       string `yaml:"debugger_url"`
	Bin               string `yaml:"bin"`
	Headless          bool   `yaml:"headless"`
	ViewportWidth     int    `yaml:"viewport_width"`
	ViewportHeight    int    `yaml:"viewport_height"`
	NavigationTimeout string `yaml:"navigation_timeout"`
	WaitSelector      string `yaml:"wait_selector"`
}

// WatchConfig configures the snapshot watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// ArchiveConfig configures the report history store. An empty path disables it.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Selectors: board.DefaultSelectors(),
		Style:     style.DefaultConfig(),
		Report: ReportConfig{
			Rounding:   string(report.RoundCeil),
			TrackLists: true,
			Origin:     "https://trello.com",
		},
		Browser: BrowserConfig{
			Headless:          true,
			ViewportWidth:     1600,
			ViewportHeight:    1000,
			NavigationTimeout: "30s",
			WaitSelector:      ".list",
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
		Logging: logging.Config{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
// Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// envOverrides lists every variable that may override the file. Fields are
// seeded from the loaded config, so unset variables keep the file's value.
type envOverrides struct {
	FirstDoneList string `env:"SCRUM_FIRST_DONE_LIST"`
	Rounding      string `env:"SCRUM_ROUNDING"`
	Origin        string `env:"SCRUM_ORIGIN"`
	ArchivePath   string `env:"SCRUM_ARCHIVE_PATH"`
	DebuggerURL   string `env:"SCRUM_BROWSER_DEBUGGER_URL"`

	Logging logging.Config
}

func (c *Config) applyEnvOverrides() error {
	o := envOverrides{
		FirstDoneList: c.Report.FirstDoneList,
		Rounding:      c.Report.Rounding,
		Origin:        c.Report.Origin,
		ArchivePath:   c.Archive.Path,
		DebuggerURL:   c.Browser.DebuggerURL,
		Logging:       c.Logging,
	}
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.Report.FirstDoneList = o.FirstDoneList
	c.Report.Rounding = o.Rounding
	c.Report.Origin = o.Origin
	c.Archive.Path = o.ArchivePath
	c.Browser.DebuggerURL = o.DebuggerURL
	c.Logging = o.Logging
	return nil
}

// GetNavigationTimeout returns the browser navigation timeout as a duration.
func (c *Config) GetNavigationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Browser.NavigationTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetDebounce returns the watcher debounce interval as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return 200 * time.Millisecond
	}
	return d
}

// ReportOptions converts the report section into builder options.
func (c *Config) ReportOptions() (report.Options, error) {
	rounding, err := report.ParseRounding(c.Report.Rounding)
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{
		FirstDoneList: c.Report.FirstDoneList,
		Rounding:      rounding,
		TrackLists:    c.Report.TrackLists,
		Origin:        c.Report.Origin,
	}, nil
}

// BrowserOptions converts the browser section into capture settings.
func (c *Config) BrowserOptions() browser.Config {
	return browser.Config{
		DebuggerURL:       c.Browser.DebuggerURL,
		Bin:               c.Browser.Bin,
		Headless:          c.Browser.Headless,
		ViewportWidth:     c.Browser.ViewportWidth,
		ViewportHeight:    c.Browser.ViewportHeight,
		NavigationTimeout: c.GetNavigationTimeout(),
		WaitSelector:      c.Browser.WaitSelector,
	}
}

// Validate compiles every selector and styling rule and checks the scalar
// settings.
func (c *Config) Validate() error {
	if _, err := c.Selectors.Compile(); err != nil {
		return fmt.Errorf("invalid selectors: %w", err)
	}
	if _, err := style.NewApplier(c.Style); err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}
	if _, err := report.ParseRounding(c.Report.Rounding); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}
	if c.Browser.NavigationTimeout != "" {
		if _, err := time.ParseDuration(c.Browser.NavigationTimeout); err != nil {
			return fmt.Errorf("invalid browser navigation_timeout: %w", err)
		}
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch debounce: %w", err)
		}
	}
	return nil
}
