package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

// Config represents the main application configuration
type Config struct {
	// Metadata provider
	TMDb TMDbConfig `yaml:"tmdb"`

	// Fetch cache shared by every front end
	Cache CacheConfig `yaml:"cache"`

	// Frontends
	HTTP     HTTPConfig      `yaml:"http"`
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds TMDb API configuration
type TMDbConfig struct {
	APIKey    string         `yaml:"api_key"`
	BaseURL   string         `yaml:"base_url,omitempty"`
	Timeout   time.Duration  `yaml:"timeout,omitempty"`
	RateLimit float64        `yaml:"rate_limit,omitempty"` // requests per second, 0 disables
	Burst     int            `yaml:"burst,omitempty"`
	Discover  DiscoverConfig `yaml:"discover"`
}

// DiscoverConfig holds the filters applied to genre discovery
type DiscoverConfig struct {
	SortBy         string `yaml:"sort_by,omitempty"`
	Region         string `yaml:"region,omitempty"`
	MinReleaseDate string `yaml:"min_release_date,omitempty"` // YYYY-MM-DD
}

// CacheConfig holds stale-while-revalidate cache settings
type CacheConfig struct {
	Fresh    time.Duration `yaml:"fresh,omitempty"`
	Capacity int           `yaml:"capacity,omitempty"`
}

// HTTPConfig holds the JSON API server settings
type HTTPConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// Defaults applied by Validate.
const (
	DefaultTMDbTimeout    = 10 * time.Second
	DefaultTMDbRateLimit  = 40
	DefaultTMDbBurst      = 10
	DefaultCacheFresh     = 60 * time.Second
	DefaultCacheCapacity  = 256
	DefaultHTTPPort       = 8080
	DefaultSortBy         = "popularity.desc"
	DefaultRegion         = "US"
	DefaultMinReleaseDate = "1980-01-01"
)

// Load loads configuration from a YAML file with environment variable overrides
func Load(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// validateConfigPath checks that path exists and is a regular file
func validateConfigPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() {
	// TMDb
	if v := os.Getenv("MOVIEHUB_TMDB_API_KEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := os.Getenv("MOVIEHUB_TMDB_BASE_URL"); v != "" {
		c.TMDb.BaseURL = v
	}

	// HTTP
	if v := os.Getenv("MOVIEHUB_HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			port = -1 // rejected by Validate
		}
		c.HTTP.Port = port
	}

	// Telegram
	if v := os.Getenv("MOVIEHUB_TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Telegram == nil {
			c.Telegram = &TelegramConfig{}
		}
		c.Telegram.BotToken = v
	}

	// App
	if v := os.Getenv("MOVIEHUB_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.TMDb.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required")
	}
	if c.TMDb.BaseURL != "" {
		if err := validateURL(c.TMDb.BaseURL, "tmdb.base_url"); err != nil {
			return err
		}
	}
	if c.TMDb.Timeout < 0 {
		return fmt.Errorf("tmdb.timeout must not be negative")
	}
	if c.TMDb.RateLimit < 0 {
		return fmt.Errorf("tmdb.rate_limit must not be negative")
	}
	if d := c.TMDb.Discover.MinReleaseDate; d != "" {
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return fmt.Errorf("tmdb.discover.min_release_date must be YYYY-MM-DD: %w", err)
		}
	}

	if c.Cache.Fresh < 0 {
		return fmt.Errorf("cache.fresh must not be negative")
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity must not be negative")
	}

	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535")
	}

	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	switch c.App.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error")
	}

	c.setDefaults()
	return nil
}

// setDefaults fills zero values with defaults
func (c *Config) setDefaults() {
	if c.TMDb.Timeout == 0 {
		c.TMDb.Timeout = DefaultTMDbTimeout
	}
	if c.TMDb.RateLimit == 0 {
		c.TMDb.RateLimit = DefaultTMDbRateLimit
	}
	if c.TMDb.Burst <= 0 {
		c.TMDb.Burst = DefaultTMDbBurst
	}
	if c.TMDb.Discover.SortBy == "" {
		c.TMDb.Discover.SortBy = DefaultSortBy
	}
	if c.TMDb.Discover.Region == "" {
		c.TMDb.Discover.Region = DefaultRegion
	}
	if c.TMDb.Discover.MinReleaseDate == "" {
		c.TMDb.Discover.MinReleaseDate = DefaultMinReleaseDate
	}

	if c.Cache.Fresh == 0 {
		c.Cache.Fresh = DefaultCacheFresh
	}
	if c.Cache.Capacity == 0 {
		c.Cache.Capacity = DefaultCacheCapacity
	}

	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultHTTPPort
	}

	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
}

// Addr returns the listen address of the HTTP API.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// validateURL checks that raw is an absolute http(s) URL
func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing host", field)
	}
	return nil
}
