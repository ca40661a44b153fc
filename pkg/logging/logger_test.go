package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}

	if cfg.Format != FormatAuto {
		t.Errorf("Expected default format to be auto, got %s", cfg.Format)
	}
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		format   Format
		contains []string
	}{
		{
			name:     "json info",
			level:    LevelInfo,
			format:   FormatJSON,
			contains: []string{`"level":"info"`, `"component":"extractor"`, "test message"},
		},
		{
			name:     "auto on buffer is json",
			level:    LevelWarn,
			format:   FormatAuto,
			contains: []string{`"level":"warn"`, "test message"},
		},
		{
			name:     "console",
			level:    LevelError,
			format:   FormatConsole,
			contains: []string{"ERR", "test message", "component=extractor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			Setup(Config{Level: tt.level, Format: tt.format, Output: buf})

			logger := NewLogger("extractor")
			switch tt.level {
			case LevelInfo:
				logger.Info().Msg("test message")
			case LevelWarn:
				logger.Warn().Msg("test message")
			case LevelError:
				logger.Error().Msg("test message")
			}

			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("Expected output to contain %q, got %q", want, output)
				}
			}
		})
	}
}

func TestSetup_FiltersBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelWarn, Format: FormatJSON, Output: buf})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected info message to be filtered, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"WARNING", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}
