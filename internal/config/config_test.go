package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type validateCase struct {
	name    string
	modify  func(*Config)
	wantErr string
}

// validConfig returns a minimal Config that passes Validate().
func validConfig() Config {
	return Config{
		TMDb: TMDbConfig{APIKey: "tmdb-key"},
		App:  AppConfig{LogLevel: "info"},
	}
}

func TestValidate_CoreFields(t *testing.T) {
	t.Parallel()

	tests := []validateCase{
		{"valid_minimal", nil, ""},
		{"missing_tmdb_key", func(c *Config) { c.TMDb.APIKey = "" }, "tmdb.api_key is required"},
		{"base_url_valid", func(c *Config) { c.TMDb.BaseURL = "https://api.themoviedb.org/3" }, ""},
		{"base_url_invalid_scheme", func(c *Config) {
			c.TMDb.BaseURL = "ftp://api.themoviedb.org"
		}, "must use http or https"},
		{"base_url_no_host", func(c *Config) { c.TMDb.BaseURL = "http://" }, "missing host"},
		{"negative_timeout", func(c *Config) { c.TMDb.Timeout = -time.Second }, "tmdb.timeout must not be negative"},
		{"negative_rate_limit", func(c *Config) { c.TMDb.RateLimit = -1 }, "tmdb.rate_limit must not be negative"},
		{"bad_release_date", func(c *Config) {
			c.TMDb.Discover.MinReleaseDate = "01/01/1980"
		}, "min_release_date must be YYYY-MM-DD"},
		{"invalid_log_level", func(c *Config) { c.App.LogLevel = "trace" }, "app.log_level must be one of"},
		{"warning_accepted", func(c *Config) { c.App.LogLevel = "warning" }, ""},
	}

	runValidateTests(t, tests)
}

func TestValidate_OptionalServices(t *testing.T) {
	t.Parallel()

	tests := []validateCase{
		{"telegram_missing_token", func(c *Config) {
			c.Telegram = &TelegramConfig{}
		}, "telegram.bot_token is required"},
		{"telegram_valid", func(c *Config) {
			c.Telegram = &TelegramConfig{BotToken: "123:ABC", AllowedUserIDs: []int64{42}}
		}, ""},
		{"http_port_negative", func(c *Config) { c.HTTP.Port = -1 }, "http.port must be between 1 and 65535"},
		{"http_port_too_high", func(c *Config) { c.HTTP.Port = 65536 }, "http.port must be between 1 and 65535"},
		{"http_port_max_valid", func(c *Config) { c.HTTP.Port = 65535 }, ""},
		{"cache_capacity_negative", func(c *Config) { c.Cache.Capacity = -1 }, "cache.capacity must not be negative"},
		{"cache_fresh_negative", func(c *Config) { c.Cache.Fresh = -time.Second }, "cache.fresh must not be negative"},
	}

	runValidateTests(t, tests)
}

func runValidateTests(t *testing.T, tests []validateCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			if tt.modify != nil {
				tt.modify(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"valid_http", "http://localhost:3000", ""},
		{"valid_https", "https://api.themoviedb.org", ""},
		{"valid_with_path", "https://api.themoviedb.org/3", ""},
		{"ftp_scheme", "ftp://localhost", "must use http or https"},
		{"no_scheme", "localhost:3000", "must use http or https"},
		{"empty_string", "", "must use http or https"},
		{"missing_host", "http://", "missing host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateURL(tt.url, "test.url")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	t.Run("zero_config", func(t *testing.T) {
		t.Parallel()
		cfg := Config{}
		cfg.setDefaults()
		if cfg.TMDb.Timeout != DefaultTMDbTimeout {
			t.Errorf("timeout = %v, want %v", cfg.TMDb.Timeout, DefaultTMDbTimeout)
		}
		if cfg.TMDb.RateLimit != DefaultTMDbRateLimit {
			t.Errorf("rate limit = %v, want %v", cfg.TMDb.RateLimit, DefaultTMDbRateLimit)
		}
		if cfg.Cache.Fresh != DefaultCacheFresh || cfg.Cache.Capacity != DefaultCacheCapacity {
			t.Errorf("cache = %+v", cfg.Cache)
		}
		if cfg.HTTP.Port != DefaultHTTPPort {
			t.Errorf("port = %d, want %d", cfg.HTTP.Port, DefaultHTTPPort)
		}
		d := cfg.TMDb.Discover
		if d.SortBy != "popularity.desc" || d.Region != "US" || d.MinReleaseDate != "1980-01-01" {
			t.Errorf("discover = %+v", d)
		}
		if cfg.App.LogLevel != "info" {
			t.Errorf("log level = %q, want info", cfg.App.LogLevel)
		}
	})

	t.Run("values_preserved", func(t *testing.T) {
		t.Parallel()
		cfg := Config{
			TMDb: TMDbConfig{
				Timeout:  3 * time.Second,
				Discover: DiscoverConfig{Region: "GB", MinReleaseDate: "2000-01-01"},
			},
			Cache: CacheConfig{Fresh: 5 * time.Minute},
			HTTP:  HTTPConfig{Port: 9090},
			App:   AppConfig{LogLevel: "debug"},
		}
		cfg.setDefaults()
		if cfg.TMDb.Timeout != 3*time.Second || cfg.Cache.Fresh != 5*time.Minute {
			t.Errorf("durations overwritten: %v %v", cfg.TMDb.Timeout, cfg.Cache.Fresh)
		}
		if cfg.TMDb.Discover.Region != "GB" || cfg.TMDb.Discover.MinReleaseDate != "2000-01-01" {
			t.Errorf("discover overwritten: %+v", cfg.TMDb.Discover)
		}
		if cfg.HTTP.Port != 9090 || cfg.App.LogLevel != "debug" {
			t.Errorf("port=%d level=%q", cfg.HTTP.Port, cfg.App.LogLevel)
		}
	})
}

func TestLoad_ValidMinimal(t *testing.T) {
	t.Parallel()
	path := writeTempYAML(t, minimalYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TMDb.APIKey != "yaml-key" {
		t.Errorf("expected api key yaml-key, got %q", cfg.TMDb.APIKey)
	}
	if cfg.App.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.App.LogLevel)
	}
	if cfg.HTTP.Addr() != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.HTTP.Addr())
	}
}

func TestLoad_Full(t *testing.T) {
	t.Parallel()
	fullYAML := `
tmdb:
  api_key: tmdb-key
  base_url: http://localhost:3000/3
  timeout: 5s
  rate_limit: 10
  discover:
    region: DE
    min_release_date: "1990-01-01"
cache:
  fresh: 2m
  capacity: 64
http:
  host: 127.0.0.1
  port: 9090
telegram:
  bot_token: "123:ABC"
  allowed_user_ids: [1, 2]
app:
  log_level: debug
`
	path := writeTempYAML(t, fullYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TMDb.Timeout != 5*time.Second || cfg.TMDb.RateLimit != 10 {
		t.Errorf("tmdb = %+v", cfg.TMDb)
	}
	if cfg.TMDb.Discover.Region != "DE" || cfg.TMDb.Discover.SortBy != DefaultSortBy {
		t.Errorf("discover = %+v", cfg.TMDb.Discover)
	}
	if cfg.Cache.Fresh != 2*time.Minute || cfg.Cache.Capacity != 64 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.HTTP.Addr() != "127.0.0.1:9090" {
		t.Errorf("addr = %q", cfg.HTTP.Addr())
	}
	if cfg.Telegram == nil || len(cfg.Telegram.AllowedUserIDs) != 2 {
		t.Errorf("telegram = %+v", cfg.Telegram)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid_yaml", func(t *testing.T) {
		t.Parallel()
		path := writeTempYAML(t, "{{invalid yaml}}")
		_, err := Load(path)
		if err == nil {
			t.Fatal("expected error for invalid YAML")
		}
		if !strings.Contains(err.Error(), "failed to parse") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("file_not_found", func(t *testing.T) {
		t.Parallel()
		_, err := Load("/nonexistent/path/config.yaml")
		if err == nil {
			t.Fatal("expected error for missing file")
		}
		if !strings.Contains(err.Error(), "config file not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("path_is_directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		_, err := Load(dir)
		if err == nil {
			t.Fatal("expected error for directory path")
		}
		if !strings.Contains(err.Error(), "directory") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Run("api_key_override", func(t *testing.T) {
		path := writeTempYAML(t, minimalYAML)
		t.Setenv("MOVIEHUB_TMDB_API_KEY", "env-key")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TMDb.APIKey != "env-key" {
			t.Errorf("expected env-key, got %q", cfg.TMDb.APIKey)
		}
	})

	t.Run("base_url_override", func(t *testing.T) {
		path := writeTempYAML(t, minimalYAML)
		t.Setenv("MOVIEHUB_TMDB_BASE_URL", "http://tmdb-mock:3000")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TMDb.BaseURL != "http://tmdb-mock:3000" {
			t.Errorf("expected http://tmdb-mock:3000, got %q", cfg.TMDb.BaseURL)
		}
	})

	t.Run("log_level_override", func(t *testing.T) {
		path := writeTempYAML(t, minimalYAML)
		t.Setenv("MOVIEHUB_LOG_LEVEL", "debug")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.App.LogLevel != "debug" {
			t.Errorf("expected debug, got %q", cfg.App.LogLevel)
		}
	})

	t.Run("telegram_created_from_env", func(t *testing.T) {
		path := writeTempYAML(t, minimalYAML)
		t.Setenv("MOVIEHUB_TELEGRAM_BOT_TOKEN", "123:TOKEN")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Telegram == nil || cfg.Telegram.BotToken != "123:TOKEN" {
			t.Error("expected telegram created from env")
		}
	})
}

func TestEnvOverrides_HTTPPort(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		path := writeTempYAML(t, minimalYAML)
		t.Setenv("MOVIEHUB_HTTP_PORT", "not-a-number")
		_, err := Load(path)
		if err == nil {
			t.Fatal("expected validation error for invalid port")
		}
		if !strings.Contains(err.Error(), "http.port must be between") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		path := writeTempYAML(t, minimalYAML)
		t.Setenv("MOVIEHUB_HTTP_PORT", "9090")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HTTP.Port != 9090 {
			t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing_file_ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("sets_unset_variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("MOVIEHUB_DOTENV_TEST=from-file\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("MOVIEHUB_DOTENV_TEST", "")
		os.Unsetenv("MOVIEHUB_DOTENV_TEST")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("MOVIEHUB_DOTENV_TEST"); got != "from-file" {
			t.Errorf("expected from-file, got %q", got)
		}
	})

	t.Run("existing_variables_win", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("MOVIEHUB_DOTENV_TEST2=from-file\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("MOVIEHUB_DOTENV_TEST2", "from-env")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("MOVIEHUB_DOTENV_TEST2"); got != "from-env" {
			t.Errorf("expected from-env, got %q", got)
		}
	})
}

func TestValidateConfigPath(t *testing.T) {
	t.Parallel()

	t.Run("valid_file", func(t *testing.T) {
		t.Parallel()
		path := writeTempYAML(t, "test")
		if err := validateConfigPath(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()
		err := validateConfigPath("/nonexistent/file.yaml")
		if err == nil || !strings.Contains(err.Error(), "config file not found") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("is_directory", func(t *testing.T) {
		t.Parallel()
		err := validateConfigPath(t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "directory") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerContext(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	LoggerFromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("logger from context did not write: %q", buf.String())
	}
	if LoggerFromContext(context.Background()) == nil {
		t.Error("expected default logger")
	}
}

const minimalYAML = `
tmdb:
  api_key: yaml-key
`

// writeTempYAML creates a temporary YAML file and returns its path.
func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp yaml: %v", err)
	}
	return path
}
