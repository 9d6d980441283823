package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log         *zap.Logger
	serviceName = "unknown"

	// used until InitLogger runs; GetLogger never writes package state
	nopLogger = zap.NewNop()
)

func InitLogger(name string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	serviceName = name
	Log = logger.With(zap.String("service", name))
}

// ServiceName is the name passed to InitLogger, used as a metric label.
func ServiceName() string {
	return serviceName
}

// GetLogger is safe for concurrent use. Call InitLogger once at startup
// before serving; until then it logs nowhere.
func GetLogger(ctx context.Context) *zap.Logger {
	logger := Log
	if logger == nil {
		logger = nopLogger
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logger = logger.With(
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}

	return logger
}
