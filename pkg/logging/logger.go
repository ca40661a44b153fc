// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Format selects the output encoding.
type Format string

const (
	// FormatAuto uses console output on a terminal and JSON otherwise.
	FormatAuto Format = "auto"

	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"

	// FormatConsole writes human-readable lines.
	FormatConsole Format = "console"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Format selects JSON or console output (default: auto).
	Format Format

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatAuto,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	tty := isTerminal(cfg.Output)
	var output io.Writer = cfg.Output
	if pretty(cfg.Format, tty) {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05", NoColor: !tty}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// pretty reports whether console output should be used.
func pretty(format Format, tty bool) bool {
	switch Format(strings.ToLower(string(format))) {
	case FormatConsole:
		return true
	case FormatJSON:
		return false
	default:
		return tty
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Individual Jikan requests and page accumulation
//   - Pacer waits
//   - Median fill values, committed insert chunks, SQL statements
//
// Info: Normal operation events
//   - Progress per (year, season)
//   - Stage summaries (rows extracted, transformed, loaded)
//   - Task start and success
//
// Warn: Warning conditions that don't prevent operation
//   - Task retries
//   - Columns without values to impute from
//   - Cancellation
//
// Error: Error conditions requiring attention
//   - Failed requests (NetworkError)
//   - Schema violations (SchemaError)
//   - Sink failures (SinkWriteError)
//   - Tasks failing after all retries
//
// Context Fields:
//   - component: extractor, transformer, loader, jikan-client, orchestrator, sink
//   - task: orchestrator task id
//   - year, season, page: extraction partition
//   - endpoint, status_code, error_class: Jikan requests
//   - rows, chunk, phase: load progress
