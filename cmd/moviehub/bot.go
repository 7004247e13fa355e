package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/MovieHub/internal/config"
	"github.com/vadimtrunov/MovieHub/internal/core"
	"github.com/vadimtrunov/MovieHub/internal/frontend/telegram"
)

var errTelegramNotConfigured = errors.New(
	"telegram configuration is required: set telegram.bot_token in config or MOVIEHUB_TELEGRAM_BOT_TOKEN env var",
)

// newBotCmd returns the "bot" subcommand for running the Telegram bot.
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long:  "Start the MovieHub Telegram bot for browsing movies via Telegram.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBot()
		},
	}
}

// runBot initializes services and starts the Telegram bot.
func runBot() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Telegram == nil {
		return errTelegramNotConfigured
	}

	logger := config.SetupLogger(cfg.App.LogLevel)
	svc := initServices(cfg, logger)
	defer svc.Close()

	bot, err := initTelegramBot(cfg, svc, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runFrontends(ctx, []core.Frontend{bot}, logger)
}

// initTelegramBot creates and returns a Telegram bot instance.
func initTelegramBot(cfg *config.Config, svc *services, logger *slog.Logger) (*telegram.Bot, error) {
	if len(cfg.Telegram.AllowedUserIDs) == 0 {
		logger.Warn("telegram allow-list is empty: every user can use the bot")
	}
	return telegram.New(
		cfg.Telegram.BotToken,
		cfg.Telegram.AllowedUserIDs,
		svc.hooks,
		logger,
	)
}
