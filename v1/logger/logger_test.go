package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(tracing bool) (*LoggerClient, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), tracing), logs
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(Info))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(Warning))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestLoggerWritesFieldsAndError(t *testing.T) {
	log, logs := newObservedLogger(false)

	log.Error("Shard transfer failed", errors.New("peer unreachable"), map[string]interface{}{
		"collection": "products",
		"shard_id":   3,
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Shard transfer failed", entry.Message)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)

	ctxMap := entry.ContextMap()
	assert.Equal(t, "products", ctxMap["collection"])
	assert.Equal(t, "peer unreachable", ctxMap["error"])
}

func TestLaterFieldMapsOverrideEarlierOnes(t *testing.T) {
	log, logs := newObservedLogger(false)

	log.Info("msg", nil, map[string]interface{}{"k": "first"}, map[string]interface{}{"k": "second"})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "second", logs.All()[0].ContextMap()["k"])
	assert.Len(t, logs.All()[0].Context, 1)
}

func TestWithContextAddsTraceFields(t *testing.T) {
	log, logs := newObservedLogger(true)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "drain")
	defer span.End()

	log.InfoWithContext(ctx, "planned", nil, nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestWithContextWithoutTracingOmitsTraceFields(t *testing.T) {
	log, logs := newObservedLogger(false)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "drain")
	defer span.End()

	log.WarnWithContext(ctx, "planned", nil)

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)
}

func TestLoggerClientImplementsLogger(t *testing.T) {
	var _ Logger = (*LoggerClient)(nil)
}
