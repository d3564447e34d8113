package log

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

// Context keys for request-scoped log fields
const (
	TicketIDKey  contextKey = "ticket_id"
	AirlineKey   contextKey = "airline"
	RequestIDKey contextKey = "request_id"
)

var globalLogger *zap.Logger

// Init builds the global JSON logger at the given level. Unknown levels
// fall back to info.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	globalLogger = logger
	return nil
}

// L returns the global logger enriched with any ticket, airline and request
// ids carried by ctx.
func L(ctx context.Context) *zap.Logger {
	if globalLogger == nil {
		globalLogger, _ = zap.NewProduction()
	}

	logger := globalLogger
	for _, key := range []contextKey{TicketIDKey, AirlineKey, RequestIDKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			logger = logger.With(zap.String(string(key), v))
		}
	}

	return logger
}

// WithTicketID adds ticket_id to the context for logging
func WithTicketID(ctx context.Context, ticketID string) context.Context {
	return context.WithValue(ctx, TicketIDKey, ticketID)
}

// WithAirline adds airline to the context for logging
func WithAirline(ctx context.Context, airline string) context.Context {
	return context.WithValue(ctx, AirlineKey, airline)
}

// WithRequestID adds request_id to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// Info logs an info message with context fields
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	L(ctx).Info(msg, fields...)
}

// Warn logs a warning with context fields
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	L(ctx).Warn(msg, fields...)
}

// Error logs an error with context fields
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	L(ctx).Error(msg, fields...)
}

// Debug logs a debug message with context fields
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	L(ctx).Debug(msg, fields...)
}
