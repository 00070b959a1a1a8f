package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
)

// New builds the root logger from cfg. The returned closer releases the log
// file when output is "file" and is a no-op otherwise.
func New(cfg config.LoggingConfig) (*log.Logger, io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	logger, err := NewWithWriter(out, cfg)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return logger, closer, nil
}

// NewWithWriter builds a logger on an explicit writer, ignoring cfg.Output
func NewWithWriter(w io.Writer, cfg config.LoggingConfig) (*log.Logger, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	opts := log.Options{
		Level:           level,
		ReportTimestamp: true,
		ReportCaller:    cfg.IncludeCaller,
		TimeFormat:      time.RFC3339,
	}
	if cfg.TimeFormat != "" {
		opts.TimeFormat = cfg.TimeFormat
	}
	switch cfg.Format {
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		opts.Formatter = log.TextFormatter
	}

	return log.NewWithOptions(w, opts), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
