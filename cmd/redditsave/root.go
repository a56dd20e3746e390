package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"redditsave/pkg/config"
	"redditsave/pkg/logger"
	"redditsave/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	noColor    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "redditsave",
	Short: "Archive your Reddit saved, upvoted and user posts to static HTML",
	Long: `redditsave archives Reddit posts and comments to static, paginated HTML pages
with locally cached media.

Runs are incremental: pages written by earlier runs are read back, and only
posts and comments that are not archived yet are fetched. Posts whose media
cannot be downloaded are remembered in a blacklist and skipped afterwards.

Credentials are read from the configuration file, a .env file or the
REDDIT_USERNAME, REDDIT_PASSWORD, REDDIT_CLIENT_ID and REDDIT_SECRET
environment variables. Missing values are taken from the account stored
with 'redditsave auth login'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
		if noColor {
			ui.SetNoColor(true)
		}

		if cmd.Name() == "archive" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("Error", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	logger.Version = version

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .redditsave.yaml or ~/.config/redditsave/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file, rotated")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`redditsave {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags returns the persistent flags in the form config.Load merges
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if logFile != "" {
		flags["log-file"] = logFile
	}
	if noColor {
		flags["no-color"] = true
	}
	return flags
}

// loadConfig loads configuration with the global flags plus extra
func loadConfig(extra map[string]interface{}) (*config.Config, error) {
	flags := globalFlags()
	for k, v := range extra {
		flags[k] = v
	}
	return config.Load(configFile, flags)
}

// newLogger builds the logger for a command from the loaded configuration
func newLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
