package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete maestro configuration
type Config struct {
	Synthesis SynthesisConfig `mapstructure:"synthesis" yaml:"synthesis"`
	Oracle    OracleConfig    `mapstructure:"oracle" yaml:"oracle"`
	Analyzers AnalyzersConfig `mapstructure:"analyzers" yaml:"analyzers"`
	Scoring   ScoringConfig   `mapstructure:"scoring" yaml:"scoring"`
	Executor  ExecutorConfig  `mapstructure:"executor" yaml:"executor"`
	Run       RunConfig       `mapstructure:"run" yaml:"run"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
	TUI       TUIConfig       `mapstructure:"tui" yaml:"tui"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// SynthesisConfig controls how suggestion conflicts are resolved
type SynthesisConfig struct {
	// Mode selects the synthesis strategy: "rule-based" or "reasoning"
	Mode string `mapstructure:"mode" yaml:"mode"`
	// Goal is the synthesis goal tag: "Balance", "Security-Focus", or "Performance-Focus"
	Goal string `mapstructure:"goal" yaml:"goal"`
	// Retrospection enables the single feedback-driven retry after a scoring failure.
	// Has no effect in rule-based mode, which never retries.
	Retrospection bool `mapstructure:"retrospection" yaml:"retrospection"`
}

// OracleConfig controls the reasoning-engine backend
type OracleConfig struct {
	// BaseURL is the OpenAI-compatible API root
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`
	// Model is the completion model name
	Model string `mapstructure:"model" yaml:"model"`
	// Temperature controls sampling (0.0 - 2.0)
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	// MaxTokens caps the completion length (0 = no explicit cap)
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`
	// TimeoutSeconds bounds a single oracle call (default: 180, sized for reasoning models)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// AnalyzersConfig controls which dimension analyzers run
type AnalyzersConfig struct {
	// Dimensions lists the enabled analyzers.
	// Options: "performance", "readability", "security"
	Dimensions []string `mapstructure:"dimensions" yaml:"dimensions"`
}

// ScoringConfig controls the quality scorer
type ScoringConfig struct {
	// StructuralGate enables the syntactic-validity precondition check
	// before metric scoring (default: true)
	StructuralGate bool `mapstructure:"structural_gate" yaml:"structural_gate"`
}

// ExecutorConfig controls how plans are applied
type ExecutorConfig struct {
	// Mode selects the executor: "local" applies line-range edits
	// textually, "oracle" delegates the rewrite to the reasoning engine
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// RunConfig controls run-level behavior
type RunConfig struct {
	// ReportDir is where run reports and final artifacts are written
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`
	// Include are glob patterns selecting artifacts (default: ["**/*.go"])
	Include []string `mapstructure:"include" yaml:"include"`
	// Exclude are glob patterns removing artifacts from the selection
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// MaxParallel is the number of artifacts processed concurrently (default: 4)
	MaxParallel int `mapstructure:"max_parallel" yaml:"max_parallel"`
}

// WatchConfig controls the watch command
type WatchConfig struct {
	// DebounceMs is how long to wait after the last filesystem event
	// before re-running an artifact (default: 500)
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// TUIConfig controls the progress display
type TUIConfig struct {
	// Progress enables the live progress bar during multi-artifact runs
	Progress bool `mapstructure:"progress" yaml:"progress"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
}

// APIKey resolves the oracle API key from the configured environment
// variable.
func (o *OracleConfig) APIKey() string {
	if o.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(o.APIKeyEnv)
}

// Timeout returns the oracle timeout as a time.Duration
func (o *OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Debounce returns the watch debounce as a time.Duration
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Synthesis: SynthesisConfig{
			Mode:          "rule-based",
			Goal:          "Balance",
			Retrospection: true,
		},
		Oracle: OracleConfig{
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "MAESTRO_API_KEY",
			Model:          "gpt-5",
			Temperature:    0.2,
			MaxTokens:      0,
			TimeoutSeconds: 180, // reasoning models can take minutes
		},
		Analyzers: AnalyzersConfig{
			Dimensions: []string{"performance", "readability", "security"},
		},
		Scoring: ScoringConfig{
			StructuralGate: true,
		},
		Executor: ExecutorConfig{
			Mode: "local",
		},
		Run: RunConfig{
			ReportDir:   ".maestro/runs",
			Include:     []string{"**/*.go"},
			Exclude:     []string{},
			MaxParallel: 4,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		TUI: TUIConfig{
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Synthesis defaults
	viper.SetDefault("synthesis.mode", defaults.Synthesis.Mode)
	viper.SetDefault("synthesis.goal", defaults.Synthesis.Goal)
	viper.SetDefault("synthesis.retrospection", defaults.Synthesis.Retrospection)

	// Oracle defaults
	viper.SetDefault("oracle.base_url", defaults.Oracle.BaseURL)
	viper.SetDefault("oracle.api_key_env", defaults.Oracle.APIKeyEnv)
	viper.SetDefault("oracle.model", defaults.Oracle.Model)
	viper.SetDefault("oracle.temperature", defaults.Oracle.Temperature)
	viper.SetDefault("oracle.max_tokens", defaults.Oracle.MaxTokens)
	viper.SetDefault("oracle.timeout_seconds", defaults.Oracle.TimeoutSeconds)

	// Analyzer defaults
	viper.SetDefault("analyzers.dimensions", defaults.Analyzers.Dimensions)

	// Scoring defaults
	viper.SetDefault("scoring.structural_gate", defaults.Scoring.StructuralGate)

	// Executor defaults
	viper.SetDefault("executor.mode", defaults.Executor.Mode)

	// Run defaults
	viper.SetDefault("run.report_dir", defaults.Run.ReportDir)
	viper.SetDefault("run.include", defaults.Run.Include)
	viper.SetDefault("run.exclude", defaults.Run.Exclude)
	viper.SetDefault("run.max_parallel", defaults.Run.MaxParallel)

	// Watch defaults
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	// TUI defaults
	viper.SetDefault("tui.progress", defaults.TUI.Progress)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "maestro")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".maestro"
	}
	return filepath.Join(home, ".config", "maestro")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
