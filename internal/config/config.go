package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the full configuration required to initialise the contact
// page detection engine and its collaborators.
type Config struct {
	Transport TransportConfig `yaml:"transport"`
	Rendering RenderingConfig `yaml:"rendering"`
	Detection DetectionConfig `yaml:"detection"`
	Robots    RobotsConfig    `yaml:"robots"`
	Batch     BatchConfig     `yaml:"batch"`
	DB        SQLConfig       `yaml:"db"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sites     []SiteConfig    `yaml:"sites"`
}

// TransportConfig controls plain HTTP fetching and retry behaviour.
type TransportConfig struct {
	UserAgent      string            `yaml:"user_agent"`
	Headers        map[string]string `yaml:"headers"`
	RequestTimeout Duration          `yaml:"request_timeout"`
	MaxRetries     int               `yaml:"max_retries"`
	RetryBackoff   Duration          `yaml:"retry_backoff"`
	MaxBodyBytes   int64             `yaml:"max_body_bytes"`
	ProxyURL       string            `yaml:"proxy_url"`
}

// RenderingConfig controls the headless browser sessions.
type RenderingConfig struct {
	Timeout         Duration `yaml:"timeout"`
	NavigateTimeout Duration `yaml:"navigate_timeout"`
	SettleDelay     Duration `yaml:"settle_delay"`
	DisableHeadless bool     `yaml:"disable_headless"`
}

// DetectionConfig bounds a single site check.
type DetectionConfig struct {
	SiteBudget Duration `yaml:"site_budget"`
}

// RobotsConfig configures robots.txt handling for path probing.
type RobotsConfig struct {
	Respect   bool     `yaml:"respect"`
	UserAgent string   `yaml:"user_agent"`
	CacheTTL  Duration `yaml:"cache_ttl"`
	Overrides []string `yaml:"overrides"`
}

// BatchConfig controls the batch-run controller.
type BatchConfig struct {
	BatchSize       int      `yaml:"batch_size"`
	InterItemDelay  Duration `yaml:"inter_item_delay"`
	InterBatchDelay Duration `yaml:"inter_batch_delay"`
	ItemTimeout     Duration `yaml:"item_timeout"`
}

// SQLConfig describes the relational store for check results and history.
type SQLConfig struct {
	Driver          string   `yaml:"driver"`
	DSN             string   `yaml:"dsn"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool     `yaml:"auto_migrate"`
}

// CacheConfig controls the in-memory result cache used by the API layer.
type CacheConfig struct {
	TTL        Duration `yaml:"ttl"`
	MaxEntries int      `yaml:"max_entries"`
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Structured bool   `yaml:"structured"`
}

// SiteConfig declares one site for batch processing.
type SiteConfig struct {
	URL   string `yaml:"url"`
	Label string `yaml:"label"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		Transport: TransportConfig{
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36",
			Headers:        map[string]string{},
			RequestTimeout: DurationFrom(15 * time.Second),
			MaxRetries:     2,
			RetryBackoff:   DurationFrom(500 * time.Millisecond),
			MaxBodyBytes:   5 * 1024 * 1024,
		},
		Rendering: RenderingConfig{
			Timeout:         DurationFrom(60 * time.Second),
			NavigateTimeout: DurationFrom(30 * time.Second),
			SettleDelay:     DurationFrom(1500 * time.Millisecond),
		},
		Detection: DetectionConfig{
			SiteBudget: DurationFrom(3 * time.Minute),
		},
		Robots: RobotsConfig{
			Respect:   true,
			UserAgent: "contactscout/1.0",
			CacheTTL:  DurationFrom(6 * time.Hour),
		},
		Batch: BatchConfig{
			BatchSize:       10,
			InterItemDelay:  DurationFrom(5 * time.Second),
			InterBatchDelay: DurationFrom(10 * time.Second),
			ItemTimeout:     DurationFrom(3 * time.Minute),
		},
		DB: SQLConfig{
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			TTL:        DurationFrom(10 * time.Minute),
			MaxEntries: 10000,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Structured: true,
		},
	}
}

// Load reads, merges, and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return LoadFromReader(fh)
}

// LoadFromReader decodes configuration from an arbitrary reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces required invariants for the engine configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Transport.UserAgent) == "" {
		return errors.New("transport.user_agent must be set")
	}
	if c.Transport.MaxRetries < 0 {
		return fmt.Errorf("transport.max_retries must be >= 0 (got %d)", c.Transport.MaxRetries)
	}
	if c.Transport.MaxBodyBytes <= 0 {
		return fmt.Errorf("transport.max_body_bytes must be > 0 (got %d)", c.Transport.MaxBodyBytes)
	}
	if c.Batch.BatchSize <= 0 {
		return fmt.Errorf("batch.batch_size must be > 0 (got %d)", c.Batch.BatchSize)
	}
	if c.Batch.ItemTimeout.IsZero() {
		return errors.New("batch.item_timeout must be set")
	}
	if c.Detection.SiteBudget.IsZero() {
		return errors.New("detection.site_budget must be set")
	}
	if c.Robots.Respect && strings.TrimSpace(c.Robots.UserAgent) == "" {
		return errors.New("robots.user_agent must be set when robots.respect is true")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be >= 0 (got %d)", c.Cache.MaxEntries)
	}
	for i := range c.Sites {
		if c.Sites[i].URL == "" {
			return fmt.Errorf("site %d has empty url", i)
		}
	}
	return nil
}

func (c *Config) normalise() {
	c.Transport.UserAgent = strings.TrimSpace(c.Transport.UserAgent)
	c.Robots.UserAgent = strings.TrimSpace(c.Robots.UserAgent)

	for i := range c.Sites {
		c.Sites[i].URL = strings.TrimSpace(c.Sites[i].URL)
		c.Sites[i].Label = strings.TrimSpace(c.Sites[i].Label)
	}

	// Ensure overrides are de-duplicated and normalised to lower case.
	if len(c.Robots.Overrides) > 0 {
		unique := make(map[string]struct{}, len(c.Robots.Overrides))
		cleaned := make([]string, 0, len(c.Robots.Overrides))
		for _, raw := range c.Robots.Overrides {
			host := strings.ToLower(strings.TrimSpace(raw))
			if host == "" {
				continue
			}
			if _, exists := unique[host]; exists {
				continue
			}
			unique[host] = struct{}{}
			cleaned = append(cleaned, host)
		}
		sort.Strings(cleaned)
		c.Robots.Overrides = cleaned
	}
}
