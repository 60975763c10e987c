// Package config loads service configuration from an optional YAML file with
// environment overrides. Provider API keys come from the environment only;
// they never live in the config file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration. Loaded once at startup; the
// keyword sets are the only part that hot-reloads.
type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	Providers struct {
		BraveAPIKey   string        `mapstructure:"-"`
		SerpAPIKey    string        `mapstructure:"-"`
		TavilyAPIKey  string        `mapstructure:"-"`
		GroundedURL   string        `mapstructure:"grounded_url"`
		Timeout       time.Duration `mapstructure:"timeout"`
		StrictTimeout time.Duration `mapstructure:"strict_timeout"`
	} `mapstructure:"providers"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"-"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Quota struct {
		DailyCalls int     `mapstructure:"daily_calls"`
		PerSecond  float64 `mapstructure:"per_second"`
		Burst      int     `mapstructure:"burst"`
	} `mapstructure:"quota"`

	WebFetch struct {
		Enabled         bool          `mapstructure:"enabled"`
		Timeout         time.Duration `mapstructure:"timeout"`
		ReaderURL       string        `mapstructure:"reader_url"`
		MaxContentChars int           `mapstructure:"max_content_chars"`
	} `mapstructure:"webfetch"`

	History struct {
		Enabled bool   `mapstructure:"enabled"`
		DSN     string `mapstructure:"dsn"`
	} `mapstructure:"history"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`

	Tracing struct {
		Enabled      bool   `mapstructure:"enabled"`
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`

	KeywordsPath string `mapstructure:"keywords_path"`
}

// Load reads the config file named by SORIVA_CONFIG (default
// ./config/soriva.yaml), applies SORIVA_* environment overrides, and pulls
// secrets straight from the environment. A missing file is fine; defaults
// plus environment carry a full setup.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SORIVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := os.Getenv("SORIVA_CONFIG")
	if path == "" {
		path = "./config/soriva.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Providers.BraveAPIKey = os.Getenv("BRAVE_API_KEY")
	cfg.Providers.SerpAPIKey = os.Getenv("SERPAPI_API_KEY")
	cfg.Providers.TavilyAPIKey = os.Getenv("TAVILY_API_KEY")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("providers.timeout", 8*time.Second)
	v.SetDefault("providers.strict_timeout", 15*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("quota.daily_calls", 2000)
	v.SetDefault("quota.per_second", 5.0)
	v.SetDefault("quota.burst", 10)
	v.SetDefault("webfetch.enabled", true)
	v.SetDefault("webfetch.timeout", 6*time.Second)
	v.SetDefault("webfetch.max_content_chars", 2000)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.dsn", "soriva.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.otlp_endpoint", "localhost:4317")
	v.SetDefault("keywords_path", "")
}

func (c *Config) validate() error {
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("providers.timeout must be positive, got %s", c.Providers.Timeout)
	}
	if c.Providers.StrictTimeout <= 0 {
		return fmt.Errorf("providers.strict_timeout must be positive, got %s", c.Providers.StrictTimeout)
	}
	if c.Quota.DailyCalls < 0 {
		return fmt.Errorf("quota.daily_calls must not be negative, got %d", c.Quota.DailyCalls)
	}
	if c.WebFetch.MaxContentChars <= 0 {
		return fmt.Errorf("webfetch.max_content_chars must be positive, got %d", c.WebFetch.MaxContentChars)
	}
	return nil
}

// ConfiguredProviders lists which web providers have keys present, in no
// particular order. Used by startup logging and the health endpoint.
func (c *Config) ConfiguredProviders() []string {
	var out []string
	if c.Providers.BraveAPIKey != "" {
		out = append(out, "brave")
	}
	if c.Providers.SerpAPIKey != "" {
		out = append(out, "serpapi")
	}
	if c.Providers.TavilyAPIKey != "" {
		out = append(out, "tavily")
	}
	return out
}
