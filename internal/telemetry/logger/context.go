// Package logger provides structured logging for envlayer.
package logger

import "context"

type contextKey string

const (
	loggerKey      contextKey = "envlayer.logger"
	directoryKey   contextKey = "envlayer.directory"
	environmentKey contextKey = "envlayer.environment"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithScope records the config directory and environment being loaded.
func WithScope(ctx context.Context, directory, environment string) context.Context {
	ctx = context.WithValue(ctx, directoryKey, directory)
	return context.WithValue(ctx, environmentKey, environment)
}

// ScopeFromContext returns the directory and environment set by WithScope.
func ScopeFromContext(ctx context.Context) (directory, environment string) {
	directory, _ = ctx.Value(directoryKey).(string)
	environment, _ = ctx.Value(environmentKey).(string)
	return directory, environment
}

// L is a shorthand for FromContext that also enriches the logger
// with the load scope from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	dir, env := ScopeFromContext(ctx)
	if dir != "" {
		l = l.With("dir", dir)
	}
	if env != "" {
		l = l.With("env", env)
	}

	return l
}
