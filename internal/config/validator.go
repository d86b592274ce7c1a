package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/buildview/internal/links"
	"github.com/Iron-Ham/buildview/internal/logging"
	"github.com/Iron-Ham/buildview/internal/panel"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "panel.max_lines")
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

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, l := range levels {
		levels[i] = strings.ToLower(l)
	}
	return levels
}

// ValidOrientations returns the list of valid panel orientations
func ValidOrientations() []string {
	names := make([]string, 0, len(panel.Placements))
	for _, p := range panel.Placements {
		names = append(names, p.String())
	}
	return names
}

// ValidVisibilities returns the list of valid panel visibility policies
func ValidVisibilities() []string {
	return []string{
		panel.Toggle.String(),
		panel.KeepVisible.String(),
		panel.ShowOnError.String(),
		panel.Hidden.String(),
	}
}

// Validate checks the Config for invalid values and returns all validation errors found.
// Error-match patterns are not validated here: a bad pattern is reported
// and skipped at build time, it does not invalidate the whole config.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateBuild()...)
	errors = append(errors, c.validatePanel()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateTranscript()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// PatternWarnings compiles the error-match patterns and returns one error
// per pattern that cannot be used.
func (c *Config) PatternWarnings() []error {
	_, errs := links.Compile(c.Build.ErrorMatch)
	return errs
}

// validateBuild validates the BuildConfig
func (c *Config) validateBuild() []ValidationError {
	var errors []ValidationError

	if c.Build.PTY {
		if c.Build.Width <= 0 {
			errors = append(errors, ValidationError{
				Field:   "build.width",
				Value:   c.Build.Width,
				Message: "must be positive when pty is enabled",
			})
		}
		if c.Build.Height <= 0 {
			errors = append(errors, ValidationError{
				Field:   "build.height",
				Value:   c.Build.Height,
				Message: "must be positive when pty is enabled",
			})
		}
	}

	if strings.ContainsRune(c.Build.Cwd, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "build.cwd",
			Value:   c.Build.Cwd,
			Message: "path contains invalid null character",
		})
	}

	for k := range c.Build.Env {
		if k == "" || strings.ContainsAny(k, "=\x00") {
			errors = append(errors, ValidationError{
				Field:   "build.env",
				Value:   k,
				Message: "variable names must be non-empty and contain no '='",
			})
		}
	}

	return errors
}

// validatePanel validates the PanelConfig
func (c *Config) validatePanel() []ValidationError {
	var errors []ValidationError

	if _, err := panel.ParsePlacement(c.Panel.Orientation); err != nil {
		errors = append(errors, ValidationError{
			Field:   "panel.orientation",
			Value:   c.Panel.Orientation,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOrientations(), ", ")),
		})
	}

	if _, err := panel.ParseVisibility(c.Panel.Visibility); err != nil {
		errors = append(errors, ValidationError{
			Field:   "panel.visibility",
			Value:   c.Panel.Visibility,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidVisibilities(), ", ")),
		})
	}

	if c.Panel.MaxLines < 0 {
		errors = append(errors, ValidationError{
			Field:   "panel.max_lines",
			Value:   c.Panel.MaxLines,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateWatch validates the WatchConfig
func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}

	const maxDebounceMs = 60000
	if c.Watch.DebounceMs > maxDebounceMs {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: fmt.Sprintf("exceeds maximum of %d", maxDebounceMs),
		})
	}

	errors = append(errors, validateGlobs(c.Watch.Include, "watch.include")...)
	errors = append(errors, validateGlobs(c.Watch.Ignore, "watch.ignore")...)

	return errors
}

// validateGlobs checks that every pattern in a glob list compiles
func validateGlobs(patterns []string, field string) []ValidationError {
	var errors []ValidationError
	for i, p := range patterns {
		if strings.TrimSpace(p) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   p,
				Message: "pattern cannot be empty",
			})
			continue
		}
		if _, err := glob.Compile(p, '/'); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   p,
				Message: fmt.Sprintf("invalid glob: %v", err),
			})
		}
	}
	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Server.Addr) == "" {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "cannot be empty",
		})
	} else if !strings.Contains(c.Server.Addr, ":") {
		errors = append(errors, ValidationError{
			Field:   "server.addr",
			Value:   c.Server.Addr,
			Message: "must be host:port",
		})
	}

	return errors
}

// validateTranscript validates the TranscriptConfig
func (c *Config) validateTranscript() []ValidationError {
	var errors []ValidationError

	// Minimum transcript size to hold a useful amount of output
	const minTranscriptSize = 1024 // 1KB
	if c.Transcript.Size < minTranscriptSize {
		errors = append(errors, ValidationError{
			Field:   "transcript.size",
			Value:   c.Transcript.Size,
			Message: fmt.Sprintf("must be at least %d bytes", minTranscriptSize),
		})
	}

	const maxTranscriptSize = 64 * 1024 * 1024 // 64MB
	if c.Transcript.Size > maxTranscriptSize {
		errors = append(errors, ValidationError{
			Field:   "transcript.size",
			Value:   c.Transcript.Size,
			Message: fmt.Sprintf("exceeds maximum of %d bytes", maxTranscriptSize),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
