// Command newsagent collects today's news from trusted sources with an LLM
// driven agent and serves the results on a web dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-news-ai-agent/internal/config"
	"github.com/nbenliogludev/go-news-ai-agent/internal/logging"
)

// Set via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newsagent",
	Short: "Daily news browser AI agent",
	Long: `newsagent browses a fixed set of trusted news sources for today's
headlines in up to three categories and summarizes them with a language model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		path, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
			cfg.Agent.Driver = driver
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/newsagent.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("driver", "", "agent driver override (playwright, chromedp, feed, demo)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(categoriesCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsagent %s (commit %s)\n", version, commit)
	},
}
