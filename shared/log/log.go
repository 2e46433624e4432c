package log

import (
	"context"
	"os"

	"github.com/hyperdxio/opentelemetry-go/otelzap"
	"github.com/hyperdxio/opentelemetry-logs-go/exporters/otlp/otlplogs"
	sdk "github.com/hyperdxio/opentelemetry-logs-go/sdk/logs"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger writes to the console and, when an OTLP exporter can be built, ships
// the same entries as OpenTelemetry logs.
func InitLogger(ctx context.Context, level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zap.DebugLevel
	}

	consoleDebugging := zapcore.Lock(os.Stdout)
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, consoleDebugging, lvl)}

	if logExporter, err := otlplogs.NewExporter(ctx); err == nil {
		loggerProvider := sdk.NewLoggerProvider(
			sdk.WithBatcher(logExporter),
		)
		cores = append(cores, otelzap.NewOtelCore(loggerProvider))
	}

	return zap.New(zapcore.NewTee(cores...))
}

func LoggerWithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanContext := trace.SpanContextFromContext(ctx)
	if !spanContext.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanContext.TraceID().String()),
		zap.String("span_id", spanContext.SpanID().String()),
	)
}
