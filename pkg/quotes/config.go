package quotes

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"coinfolio-api/pkg/coingecko"
	"coinfolio-api/pkg/confkit"
)

// Config describes the quote source and the cache/refresh tunables.
type Config struct {
	BaseURL    string   `yaml:"base_url"`
	APIKey     string   `yaml:"api_key"`
	Currencies []string `yaml:"currencies"`
	MaxRetries int      `yaml:"max_retries"`

	RefreshIntervalRaw string        `yaml:"refresh_interval"`
	RefreshInterval    time.Duration `yaml:"-"`
	StartupDelayRaw    string        `yaml:"startup_delay"`
	StartupDelay       time.Duration `yaml:"-"`
	SeriesTTLRaw       string        `yaml:"series_ttl"`
	SeriesTTL          time.Duration `yaml:"-"`
	ThrottleWindowRaw  string        `yaml:"throttle_window"`
	ThrottleWindow     time.Duration `yaml:"-"`
	RequestTimeoutRaw  string        `yaml:"request_timeout"`
	RequestTimeout     time.Duration `yaml:"-"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quotes config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// MustLoad reads quotes configuration from the default project location and
// panics on error.
func MustLoad() *Config {
	path := confkit.MustProjectPath("etc/quotes.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// DefaultConfig returns a config with built-in defaults: the public CoinGecko
// API, brl/usd/eur, and the stock refresh/TTL constants.
func DefaultConfig() *Config {
	cfg := &Config{Currencies: []string{"brl", "usd", "eur"}}
	if err := cfg.normalise(); err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read quotes config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal quotes config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.BaseURL = strings.TrimSpace(os.ExpandEnv(c.BaseURL))
	c.APIKey = strings.TrimSpace(os.ExpandEnv(c.APIKey))

	normalized := make([]string, 0, len(c.Currencies))
	for _, currency := range c.Currencies {
		if clean := NormalizeID(currency); clean != "" {
			normalized = append(normalized, clean)
		}
	}
	c.Currencies = normalized

	durations := []struct {
		name     string
		raw      string
		target   *time.Duration
		fallback time.Duration
	}{
		{"refresh_interval", c.RefreshIntervalRaw, &c.RefreshInterval, defaultRefreshInterval},
		{"startup_delay", c.StartupDelayRaw, &c.StartupDelay, defaultStartupDelay},
		{"series_ttl", c.SeriesTTLRaw, &c.SeriesTTL, time.Hour},
		{"throttle_window", c.ThrottleWindowRaw, &c.ThrottleWindow, defaultThrottleWindow},
		{"request_timeout", c.RequestTimeoutRaw, &c.RequestTimeout, defaultRequestTimeout},
	}
	for _, entry := range durations {
		raw := strings.TrimSpace(os.ExpandEnv(entry.raw))
		if raw == "" {
			*entry.target = entry.fallback
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("quotes config: invalid %s %q: %w", entry.name, raw, err)
		}
		if d <= 0 {
			return fmt.Errorf("quotes config: %s must be positive, got %s", entry.name, d)
		}
		*entry.target = d
	}
	return nil
}

// Validate ensures the configuration is structurally sound.
func (c *Config) Validate() error {
	if len(c.Currencies) == 0 {
		return fmt.Errorf("quotes config: currencies cannot be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("quotes config: max_retries cannot be negative")
	}
	return nil
}

// BuildClient constructs the CoinGecko client described by this config.
func (c *Config) BuildClient() *coingecko.Client {
	opts := []coingecko.Option{}
	if c.BaseURL != "" {
		opts = append(opts, coingecko.WithBaseURL(c.BaseURL))
	}
	if c.APIKey != "" {
		opts = append(opts, coingecko.WithAPIKey(c.APIKey))
	}
	if c.MaxRetries > 0 {
		opts = append(opts, coingecko.WithMaxRetries(c.MaxRetries))
	}
	return coingecko.NewClient(opts...)
}

// RefresherConfig derives the refresher tunables.
func (c *Config) RefresherConfig() RefresherConfig {
	return RefresherConfig{
		Currencies:     c.Currencies,
		Interval:       c.RefreshInterval,
		StartupDelay:   c.StartupDelay,
		ThrottleWindow: c.ThrottleWindow,
		RequestTimeout: c.RequestTimeout,
	}
}
