package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"maestro/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or initialize maestro configuration",
	Long: `View or initialize maestro configuration.

Without arguments, displays the effective configuration after merging
defaults, the config file, environment variables, and flags.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/maestro/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "# config file: (none - using defaults)")
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := config.ConfigFile()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	out, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encoding default configuration: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	return nil
}
