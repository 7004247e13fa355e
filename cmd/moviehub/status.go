package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/MovieHub/internal/config"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
)

const statusTimeout = 10 * time.Second

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check TMDb connectivity",
		Long:  "Show the effective configuration and check that the TMDb API answers with the configured key.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := config.SetupLoggerTo(cfg.App.LogLevel, os.Stderr)
	svc := initServices(cfg, logger)
	defer svc.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, statusTimeout)
	defer cancelTimeout()

	fmt.Println(styleHeader.Render("MovieHub status"))
	printSetting("TMDb", sanitizeURL(baseURLOrDefault(cfg)))
	printSetting("Discover", fmt.Sprintf("%s, region %s, since %s",
		cfg.TMDb.Discover.SortBy, cfg.TMDb.Discover.Region, cfg.TMDb.Discover.MinReleaseDate))
	printSetting("Cache", fmt.Sprintf("fresh %s, %d entries", cfg.Cache.Fresh, cfg.Cache.Capacity))
	printSetting("HTTP API", cfg.HTTP.Addr())
	if cfg.Telegram != nil {
		printSetting("Telegram", fmt.Sprintf("configured, %d allowed users", len(cfg.Telegram.AllowedUserIDs)))
	} else {
		printSetting("Telegram", "not configured")
	}
	fmt.Println()

	start := time.Now()
	r, err := svc.hooks.LoadGenres(ctx)
	if err != nil {
		printCheck("TMDb API", false, err.Error())
		return fmt.Errorf("tmdb unreachable: %w", err)
	}
	printCheck("TMDb API", true, fmt.Sprintf("%d genres in %s", len(r.Data), time.Since(start).Round(time.Millisecond)))
	return nil
}

func baseURLOrDefault(cfg *config.Config) string {
	if cfg.TMDb.BaseURL != "" {
		return cfg.TMDb.BaseURL
	}
	return tmdb.DefaultBaseURL
}

func printSetting(label, value string) {
	l := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(10)
	fmt.Printf("%s %s\n", l.Render(label), value)
}

func printCheck(label string, ok bool, detail string) {
	mark := styleSuccess.Render("✓")
	if !ok {
		mark = styleError.Render("✗")
	}
	fmt.Printf("%s %s  %s\n", mark, styleTitle.Render(label), styleDim.Render(detail))
}
