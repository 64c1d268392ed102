// Package config holds the strongly-typed run configuration. The field set
// is closed: an unknown key in the YAML file is a validation error, not
// something to be silently merged over defaults.
package config

import (
	"fmt"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/spf13/viper"
	"github.com/use-agent/harvester/extract"
	"github.com/use-agent/harvester/models"
)

// Config is immutable for a run once Validate has passed.
type Config struct {
	// DelayBetweenRequests is the minimum gap between page visits, seconds.
	DelayBetweenRequests int `mapstructure:"delayBetweenRequests"` // default: 5

	// MaxRequestsPerMinute caps visits in any trailing 60s window.
	MaxRequestsPerMinute int `mapstructure:"maxRequestsPerMinute"` // default: 10

	// Timeout bounds navigation and is subdivided evenly across the
	// primary selectors during extraction, seconds.
	Timeout int `mapstructure:"timeout"` // default: 15

	// Concurrency is the number of in-flight fetches. Network starts are
	// still paced solely by the rate limiter.
	Concurrency int `mapstructure:"concurrency"` // default: 4

	// OutputDir receives links.txt and the enqueue script.
	OutputDir string `mapstructure:"outputDir"` // default: "./out"

	// IDMPath is the IDM executable referenced by the enqueue script.
	IDMPath string `mapstructure:"idmPath"`

	// DownloadDir is where IDM should save downloads.
	DownloadDir string `mapstructure:"downloadDir"`

	Headless  bool `mapstructure:"headless"`  // default: true
	NoSandbox bool `mapstructure:"noSandbox"` // needed in Docker
	Stealth   bool `mapstructure:"stealth"`   // inject anti-detection JS

	// UserAgent is applied to every page.
	UserAgent string `mapstructure:"userAgent"`

	// Headers are extra HTTP headers applied to every page.
	Headers map[string]string `mapstructure:"headers"`

	LogLevel string `mapstructure:"logLevel"` // debug|info|warn|error; default: "info"
	LogFile  string `mapstructure:"logFile"`  // optional rotated log file

	Retry     RetryConfig    `mapstructure:"retry"`
	Selectors SelectorConfig `mapstructure:"selectors"`

	// ValidityMarkers gate candidate URLs; see extract.IsValidDownloadURL.
	ValidityMarkers []string `mapstructure:"validityMarkers"`
}

// RetryConfig controls the navigation retry policy.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"maxRetries"` // default: 2
	BaseDelay  time.Duration `mapstructure:"baseDelay"`  // default: 1s
}

// SelectorConfig holds the extraction selector lists.
type SelectorConfig struct {
	// Primary is the prioritized list for the static selector scan.
	Primary []string `mapstructure:"primary"`

	// Popup is re-scanned after a button click.
	Popup []string `mapstructure:"popup"`
}

// defaultUserAgent matches a desktop Chrome build.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/98.0.4758.102 Safari/537.36"

// Default returns a Config with every field at its default.
func Default() *Config {
	return &Config{
		DelayBetweenRequests: 5,
		MaxRequestsPerMinute: 10,
		Timeout:              15,
		Concurrency:          4,
		OutputDir:            "./out",
		IDMPath:              "C:/Program Files (x86)/Internet Download Manager/IDMan.exe",
		DownloadDir:          "C:/Downloads",
		Headless:             true,
		UserAgent:            defaultUserAgent,
		LogLevel:             "info",
		Retry: RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Second,
		},
		Selectors: SelectorConfig{
			Primary: extract.DefaultPrimarySelectors,
			Popup:   extract.DefaultPopupSelectors,
		},
		ValidityMarkers: extract.DefaultValidityMarkers,
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any.
// Unknown keys and malformed values are configuration errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, models.NewHarvestError(models.ErrCodeConfig,
			fmt.Sprintf("cannot read config file %s", path), err)
	}
	// UnmarshalExact rejects keys that have no corresponding field.
	if err := v.UnmarshalExact(cfg); err != nil {
		return nil, models.NewHarvestError(models.ErrCodeConfig,
			fmt.Sprintf("invalid config file %s", path), err)
	}
	return cfg, nil
}

// Validate surfaces configuration errors before any fetch begins.
func (c *Config) Validate() error {
	if c.DelayBetweenRequests < 0 {
		return configErr("delayBetweenRequests must be >= 0")
	}
	if c.MaxRequestsPerMinute <= 0 {
		return configErr("maxRequestsPerMinute must be > 0")
	}
	if c.Timeout <= 0 {
		return configErr("timeout must be > 0")
	}
	if c.Concurrency <= 0 {
		return configErr("concurrency must be > 0")
	}
	if c.Retry.MaxRetries < 0 {
		return configErr("retry.maxRetries must be >= 0")
	}
	if len(c.Selectors.Primary) == 0 {
		return configErr("selectors.primary must not be empty")
	}
	if len(c.ValidityMarkers) == 0 {
		return configErr("validityMarkers must not be empty")
	}
	for _, sel := range append(append([]string{}, c.Selectors.Primary...), c.Selectors.Popup...) {
		if _, err := cascadia.Parse(sel); err != nil {
			return models.NewHarvestError(models.ErrCodeConfig,
				fmt.Sprintf("invalid CSS selector %q", sel), err)
		}
	}
	return nil
}

// Delay returns the minimum inter-request delay as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelayBetweenRequests) * time.Second
}

// TimeoutDuration returns the fetch timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func configErr(msg string) error {
	return models.NewHarvestError(models.ErrCodeConfig, msg, nil)
}
