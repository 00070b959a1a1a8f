package common

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// Context keys for passing values through context
type contextKey int

const (
	loggerKey contextKey = iota
)

var discard = log.New(io.Discard)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a discarding
// logger if none was set
func LoggerFromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok && logger != nil {
		return logger
	}
	return discard
}
