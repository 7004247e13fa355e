package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moviehub",
		Short: "Browse movies from TMDb",
		Long: "MovieHub browses popular, top rated, upcoming and now playing movies from TMDb.\n" +
			"Use it as a terminal browser, from one-shot commands, or serve the catalog over\n" +
			"HTTP, MCP or Telegram.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/moviehub.yaml", "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newBrowseCmd(),
		newListCmd(),
		newSearchCmd(),
		newGenresCmd(),
		newDiscoverCmd(),
		newMovieCmd(),
		newSimilarCmd(),
		newServeCmd(),
		newBotCmd(),
		newMCPServeCmd(),
		newStatusCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("MovieHub v%s\n", version)
		},
	}
}
