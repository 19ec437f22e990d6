package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dadoscraper/pkg/config"
	"dadoscraper/pkg/ui"
)

// configCmd groups configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage configuration",
	Long: `Inspect the effective configuration or write a starter config file.

Configuration is merged from, in increasing precedence: built-in defaults,
a YAML config file, a .env file, DADOSCRAPER_* environment variables, and
command line flags.`,
}

// configShowCmd prints the effective merged configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, nil)
		if err != nil {
			ui.PrintError("Failed to load configuration", err.Error())
			os.Exit(1)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}

		fmt.Print(string(data))
		return nil
	},
}

// configInitCmd writes a default config file
var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write a config file populated with the default settings.

Without an argument the file is written to .dadoscraper.yaml in the
current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ".dadoscraper.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil {
			ui.PrintError("Config file already exists", path)
			os.Exit(1)
		}

		cfg := config.DefaultConfig()
		if err := cfg.Save(path); err != nil {
			ui.PrintError("Failed to write config file", err.Error())
			os.Exit(1)
		}

		ui.PrintSuccess(fmt.Sprintf("Wrote default config to %s", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
