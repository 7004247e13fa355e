package main

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/MovieHub/internal/config"
	"github.com/vadimtrunov/MovieHub/internal/hooks"
	"github.com/vadimtrunov/MovieHub/internal/httpclient"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
	"github.com/vadimtrunov/MovieHub/internal/swr"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	styleRating  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	styleTitle = lipgloss.NewStyle().Bold(true)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// dotEnvPath is loaded before the config file; a missing file is fine.
const dotEnvPath = ".env"

// loadConfig loads .env, then loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		return nil, fmt.Errorf("load %s: %w", dotEnvPath, err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// services bundles the shared catalog stack every front end reads through.
type services struct {
	client *tmdb.Client
	cache  *swr.Cache
	hooks  *hooks.Hooks
}

// initServices creates the TMDb client, the fetch cache and the hooks on top.
func initServices(cfg *config.Config, logger *slog.Logger) *services {
	client := tmdb.New(tmdb.Options{
		APIKey:  cfg.TMDb.APIKey,
		BaseURL: cfg.TMDb.BaseURL,
		Discover: tmdb.DiscoverPolicy{
			SortBy:         cfg.TMDb.Discover.SortBy,
			Region:         cfg.TMDb.Discover.Region,
			MinReleaseDate: cfg.TMDb.Discover.MinReleaseDate,
		},
		HTTP: httpclient.Config{
			Timeout:   cfg.TMDb.Timeout,
			RateLimit: cfg.TMDb.RateLimit,
			Burst:     cfg.TMDb.Burst,
			UserAgent: "moviehub/" + version,
		},
	}, logger)

	cache := swr.New(swr.Options{
		Fresh:    cfg.Cache.Fresh,
		Capacity: cfg.Cache.Capacity,
		Logger:   logger,
	})

	logger.Info("TMDb client initialized",
		slog.String("url", sanitizeURL(baseURLOrDefault(cfg))),
		slog.Duration("cache_fresh", cfg.Cache.Fresh),
	)

	return &services{
		client: client,
		cache:  cache,
		hooks:  hooks.New(client, cache),
	}
}

// Close stops background revalidation.
func (s *services) Close() {
	s.cache.Close()
}

// sanitizeURL strips credentials, query params, and fragment from a URL for safe logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
