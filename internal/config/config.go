// Package config loads and validates watcher configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store provider names.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Publisher provider names.
const (
	PublisherNone   = "none"
	PublisherPubSub = "pubsub"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Detector  DetectorConfig  `mapstructure:"detector"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Listing   ListingConfig   `mapstructure:"listing"`
	Store     StoreConfig     `mapstructure:"store"`
	Publisher PublisherConfig `mapstructure:"publisher"`
	Server    ServerConfig    `mapstructure:"server"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// DetectorConfig governs the detection cycle.
type DetectorConfig struct {
	CooldownMinutes int    `mapstructure:"cooldown_minutes"`
	OutputFile      string `mapstructure:"output_file"`
	IntervalMinutes int    `mapstructure:"interval_minutes"`
}

// BrowserConfig configures the extraction session.
type BrowserConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	Headless       bool `mapstructure:"headless"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
	MinDelayMs     int  `mapstructure:"min_delay_ms"`
	MaxDelayMs     int  `mapstructure:"max_delay_ms"`
}

// ListingConfig configures the build-listing API client.
type ListingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RPS            float64 `mapstructure:"rps"`
	MaxResults     int     `mapstructure:"max_results"`
}

// StoreConfig selects and configures the tracking store backend.
type StoreConfig struct {
	Provider string `mapstructure:"provider"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
}

// PublisherConfig selects the release notification transport.
type PublisherConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ServerConfig controls the HTTP status surface.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RELEASEWATCHER")
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
	v.SetDefault("logging.development", true)
	v.SetDefault("detector.cooldown_minutes", 60)
	v.SetDefault("detector.output_file", "github_output.txt")
	v.SetDefault("detector.interval_minutes", 60)
	v.SetDefault("browser.enabled", true)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout_seconds", 60)
	v.SetDefault("browser.min_delay_ms", 1000)
	v.SetDefault("browser.max_delay_ms", 3000)
	v.SetDefault("listing.enabled", true)
	v.SetDefault("listing.base_url", "https://api.uupdump.net")
	v.SetDefault("listing.timeout_seconds", 30)
	v.SetDefault("listing.rps", 0.5)
	v.SetDefault("listing.max_results", 30)
	v.SetDefault("store.provider", StoreFile)
	v.SetDefault("store.path", "tracked_releases.json")
	v.SetDefault("publisher.provider", PublisherNone)
	v.SetDefault("server.port", 8080)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Detector.CooldownMinutes <= 0 {
		return fmt.Errorf("detector.cooldown_minutes must be > 0")
	}
	if c.Detector.IntervalMinutes <= 0 {
		return fmt.Errorf("detector.interval_minutes must be > 0")
	}
	if c.Browser.Enabled && c.Browser.TimeoutSeconds <= 0 {
		return fmt.Errorf("browser.timeout_seconds must be > 0 when the browser source is enabled")
	}
	if c.Browser.MaxDelayMs < c.Browser.MinDelayMs {
		return fmt.Errorf("browser.max_delay_ms must be >= browser.min_delay_ms")
	}
	switch c.Store.Provider {
	case StoreFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path must be set when store.provider is %q", StoreFile)
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set when store.provider is %q", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown store provider: %s", c.Store.Provider)
	}
	switch c.Publisher.Provider {
	case PublisherNone:
	case PublisherPubSub:
		if c.Publisher.ProjectID == "" || c.Publisher.TopicName == "" {
			return fmt.Errorf("publisher.project_id and publisher.topic_name must be set when publisher.provider is %q", PublisherPubSub)
		}
	default:
		return fmt.Errorf("unknown publisher provider: %s", c.Publisher.Provider)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// Cooldown converts the cooldown config to a duration.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.Detector.CooldownMinutes) * time.Minute
}

// Interval converts the serve-mode cycle interval to a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Detector.IntervalMinutes) * time.Minute
}

// BrowserTimeout converts the browser timeout to a duration.
func (c Config) BrowserTimeout() time.Duration {
	return time.Duration(c.Browser.TimeoutSeconds) * time.Second
}

// ListingTimeout converts the listing timeout to a duration.
func (c Config) ListingTimeout() time.Duration {
	return time.Duration(c.Listing.TimeoutSeconds) * time.Second
}
