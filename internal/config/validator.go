package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "oracle.timeout_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidSynthesisModes returns the list of valid synthesis mode values
func ValidSynthesisModes() []string {
	return []string{"rule-based", "reasoning"}
}

// ValidGoals returns the list of valid synthesis goal values
func ValidGoals() []string {
	return []string{"Balance", "Security-Focus", "Performance-Focus"}
}

// ValidDimensions returns the list of valid analyzer dimensions
func ValidDimensions() []string {
	return []string{"performance", "readability", "security"}
}

// ValidExecutorModes returns the list of valid executor mode values
func ValidExecutorModes() []string {
	return []string{"local", "oracle"}
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSynthesis()...)
	errors = append(errors, c.validateOracle()...)
	errors = append(errors, c.validateAnalyzers()...)
	errors = append(errors, c.validateExecutor()...)
	errors = append(errors, c.validateRun()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateSynthesis validates the SynthesisConfig
func (c *Config) validateSynthesis() []ValidationError {
	var errors []ValidationError

	if c.Synthesis.Mode != "" && !slices.Contains(ValidSynthesisModes(), c.Synthesis.Mode) {
		errors = append(errors, ValidationError{
			Field:   "synthesis.mode",
			Value:   c.Synthesis.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidSynthesisModes(), ", ")),
		})
	}

	if c.Synthesis.Goal != "" && !slices.Contains(ValidGoals(), c.Synthesis.Goal) {
		errors = append(errors, ValidationError{
			Field:   "synthesis.goal",
			Value:   c.Synthesis.Goal,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidGoals(), ", ")),
		})
	}

	return errors
}

// validateOracle validates the OracleConfig
func (c *Config) validateOracle() []ValidationError {
	var errors []ValidationError

	// The oracle section only matters when something uses it, but bad
	// values are rejected regardless so a later mode switch does not
	// surprise anyone.
	if c.Synthesis.Mode == "reasoning" || c.Executor.Mode == "oracle" {
		if c.Oracle.BaseURL == "" {
			errors = append(errors, ValidationError{
				Field:   "oracle.base_url",
				Value:   c.Oracle.BaseURL,
				Message: "cannot be empty when an oracle-backed mode is selected",
			})
		}
		if c.Oracle.Model == "" {
			errors = append(errors, ValidationError{
				Field:   "oracle.model",
				Value:   c.Oracle.Model,
				Message: "cannot be empty when an oracle-backed mode is selected",
			})
		}
	}

	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "oracle.temperature",
			Value:   c.Oracle.Temperature,
			Message: "must be between 0.0 and 2.0",
		})
	}

	if c.Oracle.MaxTokens < 0 {
		errors = append(errors, ValidationError{
			Field:   "oracle.max_tokens",
			Value:   c.Oracle.MaxTokens,
			Message: "must be non-negative (0 disables the cap)",
		})
	}

	const maxTimeoutSeconds = 3600
	if c.Oracle.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "oracle.timeout_seconds",
			Value:   c.Oracle.TimeoutSeconds,
			Message: "must be positive",
		})
	}
	if c.Oracle.TimeoutSeconds > maxTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "oracle.timeout_seconds",
			Value:   c.Oracle.TimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxTimeoutSeconds),
		})
	}

	return errors
}

// validateAnalyzers validates the AnalyzersConfig
func (c *Config) validateAnalyzers() []ValidationError {
	var errors []ValidationError

	seen := make(map[string]bool)
	for i, dim := range c.Analyzers.Dimensions {
		fieldName := fmt.Sprintf("analyzers.dimensions[%d]", i)

		if !slices.Contains(ValidDimensions(), dim) {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   dim,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDimensions(), ", ")),
			})
			continue
		}
		if seen[dim] {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   dim,
				Message: "duplicate dimension",
			})
		}
		seen[dim] = true
	}

	return errors
}

// validateExecutor validates the ExecutorConfig
func (c *Config) validateExecutor() []ValidationError {
	var errors []ValidationError

	if c.Executor.Mode != "" && !slices.Contains(ValidExecutorModes(), c.Executor.Mode) {
		errors = append(errors, ValidationError{
			Field:   "executor.mode",
			Value:   c.Executor.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidExecutorModes(), ", ")),
		})
	}

	return errors
}

// validateRun validates the RunConfig
func (c *Config) validateRun() []ValidationError {
	var errors []ValidationError

	if c.Run.ReportDir == "" {
		errors = append(errors, ValidationError{
			Field:   "run.report_dir",
			Value:   c.Run.ReportDir,
			Message: "cannot be empty",
		})
	}

	const minMaxParallel = 1
	const maxMaxParallel = 64
	if c.Run.MaxParallel < minMaxParallel {
		errors = append(errors, ValidationError{
			Field:   "run.max_parallel",
			Value:   c.Run.MaxParallel,
			Message: fmt.Sprintf("must be at least %d", minMaxParallel),
		})
	}
	if c.Run.MaxParallel > maxMaxParallel {
		errors = append(errors, ValidationError{
			Field:   "run.max_parallel",
			Value:   c.Run.MaxParallel,
			Message: fmt.Sprintf("exceeds maximum of %d", maxMaxParallel),
		})
	}

	for i, pattern := range c.Run.Include {
		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("run.include[%d]", i),
				Value:   pattern,
				Message: "glob pattern cannot be empty",
			})
		}
	}

	return errors
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	const minDebounceMs = 50
	const maxDebounceMs = 60000
	if c.Watch.DebounceMs < minDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: fmt.Sprintf("must be at least %dms", minDebounceMs),
		})
	}
	if c.Watch.DebounceMs > maxDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxDebounceMs),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
