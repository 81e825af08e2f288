// Package cmd wires the maestro CLI: artifact selection, pipeline
// construction from configuration, and run reporting.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"maestro/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "maestro",
	Short: "Quality-gated code improvement pipeline",
	Long: `Maestro improves code artifacts through a gated pipeline: dimension
analyzers collect suggestions, a synthesizer resolves them into a
conflict-free plan, an executor applies the plan, and a scorer decides
whether the candidate replaces the original. A failed candidate gets at
most one feedback-driven retry.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/maestro/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/maestro")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MAESTRO")
	// Replace dots with underscores for nested keys in env vars
	// e.g., MAESTRO_SYNTHESIS_MODE for synthesis.mode
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
