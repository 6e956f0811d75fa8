// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file; command-line flags
// are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/spfc-calendar/internal/logger"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// APIKey protects every /api route. The API refuses requests when unset.
	APIKey string `yaml:"api_key"`

	// FirecrawlAPIKeys is a comma-separated list of credentials tried in order.
	FirecrawlAPIKeys string `yaml:"firecrawl_api_keys"`

	// FirecrawlBaseURL overrides the hosted Firecrawl API, mostly for tests.
	FirecrawlBaseURL string `yaml:"firecrawl_base_url"`

	FirecrawlMaxRetries int `yaml:"firecrawl_max_retries"`

	// FirecrawlRetryDelay is the wait between retries, in seconds.
	FirecrawlRetryDelay int `yaml:"firecrawl_retry_delay"`

	// CalendarURL is the club page the fixtures are extracted from.
	CalendarURL string `yaml:"calendar_url"`

	// DataDir holds cache_jogos.json.
	DataDir string `yaml:"data_dir"`

	// RateLimitRequests per RateLimitWindow seconds per client IP. Zero disables.
	RateLimitRequests int `yaml:"rate_limit_requests"`
	RateLimitWindow   int `yaml:"rate_limit_window"`

	// CORSOrigins and AllowedHosts are comma-separated; "*" allows any.
	CORSOrigins  string `yaml:"cors_origins"`
	AllowedHosts string `yaml:"allowed_hosts"`

	// RefreshCron schedules cache warm-ups while serving. Empty disables.
	RefreshCron string `yaml:"refresh_cron"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:              ":8000",
		FirecrawlMaxRetries: 3,
		FirecrawlRetryDelay: 5,
		CalendarURL:         "https://www.saopaulofc.net/calendario-de-jogos/",
		DataDir:             "./data",
		RateLimitRequests:   30,
		RateLimitWindow:     60,
		CORSOrigins:         "*",
		AllowedHosts:        "*",
		RefreshCron:         "0 */6 * * *",
		LogLevel:            "INFO",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize fills in empty values that have no sensible zero.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8000"
	}
	if c.CalendarURL == "" {
		c.CalendarURL = DefaultConfig().CalendarURL
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("LISTEN", &c.Listen)
	if port, ok := lookup("PORT"); ok && strings.TrimSpace(port) != "" {
		if _, set := lookup("LISTEN"); !set {
			c.Listen = ":" + strings.TrimSpace(port)
		}
	}

	str("API_KEY", &c.APIKey)
	str("FIRECRAWL_API_KEY", &c.FirecrawlAPIKeys)
	if keys, ok := lookup("FIRECRAWL_API_KEYS"); ok && strings.TrimSpace(keys) != "" {
		c.FirecrawlAPIKeys = strings.TrimSpace(keys)
	}
	str("FIRECRAWL_BASE_URL", &c.FirecrawlBaseURL)
	str("SPFC_CALENDARIO_URL", &c.CalendarURL)
	str("DATA_DIR", &c.DataDir)
	str("CORS_ORIGINS", &c.CORSOrigins)
	str("ALLOWED_HOSTS", &c.AllowedHosts)
	str("REFRESH_CRON", &c.RefreshCron)
	str("LOG_LEVEL", &c.LogLevel)

	for key, dst := range map[string]*int{
		"FIRECRAWL_MAX_RETRIES": &c.FirecrawlMaxRetries,
		"FIRECRAWL_RETRY_DELAY": &c.FirecrawlRetryDelay,
		"RATE_LIMIT_REQUESTS":   &c.RateLimitRequests,
		"RATE_LIMIT_WINDOW":     &c.RateLimitWindow,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.FirecrawlMaxRetries < 0 {
		return errors.New("firecrawl_max_retries must not be negative")
	}
	if c.FirecrawlRetryDelay < 0 {
		return errors.New("firecrawl_retry_delay must not be negative")
	}
	if c.RateLimitRequests < 0 {
		return errors.New("rate_limit_requests must not be negative")
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return errors.New("rate_limit_window must be positive when rate limiting is enabled")
	}
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("invalid refresh_cron %q: %w", c.RefreshCron, err)
		}
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// Credentials returns the Firecrawl API keys in configured order.
func (c *Config) Credentials() []string {
	return splitList(c.FirecrawlAPIKeys)
}

// CORSOriginList returns the allowed CORS origins.
func (c *Config) CORSOriginList() []string {
	return splitList(c.CORSOrigins)
}

// AllowedHostList returns the accepted Host header values.
func (c *Config) AllowedHostList() []string {
	return splitList(c.AllowedHosts)
}

// RetryDelay returns FirecrawlRetryDelay as a duration.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.FirecrawlRetryDelay) * time.Second
}

// RateWindow returns RateLimitWindow as a duration.
func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateLimitWindow) * time.Second
}

func splitList(s string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
