package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"redditsave/pkg/config"
	"redditsave/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage redditsave configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables and .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the default values",
	Long: `Create a configuration file holding every option at its default value.

The file is written to .redditsave.yaml in the current directory unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

Passwords and secrets are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load the configuration from all sources and report every invalid value.

Missing credentials and archive settings are reported as warnings, since they
may still be given on the command line.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = config.SearchPaths()[0]
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file %s already exists, remove it first to start over", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Add your Reddit script app credentials (reddit.client_id, reddit.secret)")
	fmt.Println("2. Run 'redditsave config validate' to check the configuration")
	fmt.Println("3. Archive with 'redditsave archive --mode saved --location DIR'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (REDDIT_*, REDDITSAVE_*, LOG_LEVEL, DOCKER)")
	fmt.Println("3. .env files")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: first found of")
		for _, path := range config.SearchPaths() {
			fmt.Printf("     %s\n", path)
		}
	}
	fmt.Println("5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	if err := cfg.ValidateArchive(); err != nil {
		ui.PrintWarning("Settings still needed before archiving", "")
		fmt.Println(err)
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Location: %s\n", cfg.Archive.Location)
	fmt.Printf("  Mode: %s\n", cfg.Archive.Mode)
	fmt.Printf("  Page size: %d\n", cfg.Archive.PageSize)
	fmt.Printf("  HTTP timeout: %s\n", cfg.HTTP.Timeout)
	fmt.Printf("  Gallery attempts: %d (backoff from %s)\n", cfg.Media.GalleryMaxAttempts, cfg.Media.GalleryBackoffBase)
	fmt.Printf("  Inconclusive media: %s\n", cfg.Media.InconclusivePolicy)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
