package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/MovieHub/internal/config"
	mcpserver "github.com/vadimtrunov/MovieHub/internal/mcp"
)

// newMCPServeCmd returns the "mcp-serve" subcommand.
// It starts an MCP server over stdin/stdout so MCP clients can browse the
// catalog through tools.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Start MCP server over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// stdout carries the protocol.
			logger := config.SetupLoggerTo(cfg.App.LogLevel, os.Stderr)
			svc := initServices(cfg, logger)
			defer svc.Close()

			srv := mcpserver.NewServer(svc.hooks, logger)
			return srv.ServeStdio(cmd.Context())
		},
	}
}
