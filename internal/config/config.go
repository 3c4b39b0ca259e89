// Package config loads and validates bulletin-crawler configuration via Viper.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/bulletin-crawler/internal/candidate"
)

var validCollection = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Source    SourceConfig    `mapstructure:"source"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Store     StoreConfig     `mapstructure:"store"`
	Export    ExportConfig    `mapstructure:"export"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SourceConfig names where bulletins are published.
type SourceConfig struct {
	BaseURL   string   `mapstructure:"base_url"`
	Templates []string `mapstructure:"templates"`
}

// HTTPConfig configures the candidate fetcher.
type HTTPConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	UserAgent      string  `mapstructure:"user_agent"`
	RespectRobots  bool    `mapstructure:"respect_robots"`
	HostRPS        float64 `mapstructure:"host_rps"`
	HostBurst      int     `mapstructure:"host_burst"`
}

// RateLimitConfig bounds the jittered pause between dates.
type RateLimitConfig struct {
	MinDelayMs int `mapstructure:"min_delay_ms"`
	MaxDelayMs int `mapstructure:"max_delay_ms"`
}

// StoreConfig selects the store driver and the two collections.
type StoreConfig struct {
	Driver           string `mapstructure:"driver"`
	DSN              string `mapstructure:"dsn"`
	Database         string `mapstructure:"database"`
	InputCollection  string `mapstructure:"input_collection"`
	OutputCollection string `mapstructure:"output_collection"`
}

// ExportConfig enables the text file export when Dir is set.
type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Source string `mapstructure:"source"`
}

// ExtractConfig tunes the extraction pass.
type ExtractConfig struct {
	Workers int `mapstructure:"workers"`
}

// MetricsConfig points at an optional Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BULLETIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.base_url", candidate.DefaultBaseURL)
	v.SetDefault("source.templates", candidate.DefaultTemplates)
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("http.user_agent", "bulletin-crawler/0.1")
	v.SetDefault("http.respect_robots", true)
	v.SetDefault("http.host_rps", 2.0)
	v.SetDefault("http.host_burst", 1)
	v.SetDefault("ratelimit.min_delay_ms", 200)
	v.SetDefault("ratelimit.max_delay_ms", 1000)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.dsn", "postgres://localhost:5432/bulletins?sslmode=disable")
	v.SetDefault("store.database", "bulletins")
	v.SetDefault("store.input_collection", "isw_html")
	v.SetDefault("store.output_collection", "isw_report")
	v.SetDefault("export.dir", "")
	v.SetDefault("export.source", "")
	v.SetDefault("extract.workers", 1)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source.BaseURL) == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if len(c.Source.Templates) == 0 {
		return fmt.Errorf("source.templates must not be empty")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.HostRPS < 0 || c.HTTP.HostBurst < 0 {
		return fmt.Errorf("http.host_rps and http.host_burst must be >= 0")
	}
	if c.RateLimit.MinDelayMs < 0 || c.RateLimit.MaxDelayMs < c.RateLimit.MinDelayMs {
		return fmt.Errorf("ratelimit delays must satisfy 0 <= min_delay_ms <= max_delay_ms")
	}
	switch strings.ToLower(c.Store.Driver) {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("store.driver must be one of postgres, sqlite, memory")
	}
	if strings.EqualFold(c.Store.Driver, "postgres") && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the postgres driver")
	}
	if !validCollection.MatchString(c.Store.InputCollection) {
		return fmt.Errorf("store.input_collection %q is not a valid table name", c.Store.InputCollection)
	}
	if !validCollection.MatchString(c.Store.OutputCollection) {
		return fmt.Errorf("store.output_collection %q is not a valid table name", c.Store.OutputCollection)
	}
	if c.Store.InputCollection == c.Store.OutputCollection {
		return fmt.Errorf("store.input_collection and store.output_collection must differ")
	}
	if c.Extract.Workers <= 0 {
		return fmt.Errorf("extract.workers must be > 0")
	}
	return nil
}

// FetchTimeout is the per-candidate fetch bound.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// JitterWindow returns the pause bounds between dates.
func (c Config) JitterWindow() (time.Duration, time.Duration) {
	return time.Duration(c.RateLimit.MinDelayMs) * time.Millisecond,
		time.Duration(c.RateLimit.MaxDelayMs) * time.Millisecond
}
