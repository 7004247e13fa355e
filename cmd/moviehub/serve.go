package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vadimtrunov/MovieHub/internal/api"
	"github.com/vadimtrunov/MovieHub/internal/config"
	"github.com/vadimtrunov/MovieHub/internal/core"
)

// newServeCmd returns the "serve" subcommand for the JSON HTTP API.
func newServeCmd() *cobra.Command {
	var withBot bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog as a JSON HTTP API",
		Long: "Start the JSON HTTP API on http.host:http.port.\n" +
			"With --bot the Telegram bot runs in the same process and shares the cache.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(withBot)
		},
	}
	cmd.Flags().BoolVar(&withBot, "bot", false, "also run the Telegram bot")
	return cmd
}

func runServe(withBot bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if withBot && cfg.Telegram == nil {
		return errTelegramNotConfigured
	}

	logger := config.SetupLogger(cfg.App.LogLevel)
	svc := initServices(cfg, logger)
	defer svc.Close()

	frontends := []core.Frontend{api.NewServer(cfg.HTTP.Addr(), svc.hooks, logger)}
	if withBot {
		bot, err := initTelegramBot(cfg, svc, logger)
		if err != nil {
			return err
		}
		frontends = append(frontends, bot)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runFrontends(ctx, frontends, logger)
}

// runFrontends starts every frontend and stops all of them when one fails.
func runFrontends(ctx context.Context, frontends []core.Frontend, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range frontends {
		g.Go(func() error {
			logger.Info("frontend starting", slog.String("frontend", f.Name()))
			if err := f.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("%s: %w", f.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
