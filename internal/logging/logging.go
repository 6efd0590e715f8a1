// Package logging configures the process-wide slog logger.
//
// Records are rendered by a charmbracelet/log handler and always written to
// stderr by the binary, since stdout carries the MCP stdio transport.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sha1n/mcp-prompts-server-go/internal/config"
)

// Prefix is prepended to every log line
const Prefix = "prompts-mcp"

// NewLogger creates a slog logger that writes to w using the given settings
func NewLogger(w io.Writer, settings config.LogSettings) (*slog.Logger, error) {
	level, err := log.ParseLevel(settings.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", settings.Level, err)
	}

	formatter, err := parseFormatter(settings.Format)
	if err != nil {
		return nil, err
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		Prefix:          Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	return slog.New(handler), nil
}

// Setup creates a logger and installs it as the slog default
func Setup(w io.Writer, settings config.LogSettings) error {
	logger, err := NewLogger(w, settings)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func parseFormatter(format string) (log.Formatter, error) {
	switch format {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("unknown log format: %s", format)
	}
}
