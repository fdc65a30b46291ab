package config

import "github.com/AltairaLabs/playht-go/logger"

// LoggingConfigSpec defines the logging configuration parameters.
type LoggingConfigSpec struct {
	// Level is one of: debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is "json" for machine-parseable logs or "text" for humans.
	Format string `yaml:"format,omitempty"`

	// CommonFields are key-value pairs added to every log entry.
	CommonFields map[string]string `yaml:"commonFields,omitempty"`
}

// LogLevel constants for programmatic use.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// DefaultLoggingConfig returns a LoggingConfigSpec with sensible defaults.
func DefaultLoggingConfig() LoggingConfigSpec {
	return LoggingConfigSpec{
		Level:  LogLevelInfo,
		Format: logger.FormatText,
	}
}

// Validate validates the LoggingConfigSpec.
func (c *LoggingConfigSpec) Validate() error {
	if c.Level != "" && !isValidLogLevel(c.Level) {
		return &ValidationError{
			Field:   "logging.level",
			Message: "must be one of: debug, info, warn, error",
			Value:   c.Level,
		}
	}
	if c.Format != "" && c.Format != logger.FormatJSON && c.Format != logger.FormatText {
		return &ValidationError{
			Field:   "logging.format",
			Message: "must be one of: json, text",
			Value:   c.Format,
		}
	}
	return nil
}

// Apply configures the global logger.
func (c *LoggingConfigSpec) Apply() {
	logger.Configure(&logger.LoggingConfigSpec{
		Level:        c.Level,
		Format:       c.Format,
		CommonFields: c.CommonFields,
	})
}

func isValidLogLevel(level string) bool {
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}
