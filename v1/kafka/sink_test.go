package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed int
	ctxErr error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctxErr = ctx.Err()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed++
	return nil
}

type recordingLogger struct {
	nopLogger
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, _ error, _ ...map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func testResult() cluster.ShardTransferResult {
	return cluster.ShardTransferResult{
		IsSuccess:      true,
		CollectionName: "products",
		ShardID:        3,
		SourcePeerID:   10,
		TargetPeerID:   20,
		Mode:           cluster.TransferModeMove,
	}
}

func TestTransferEventSinkPublishesEvent(t *testing.T) {
	w := &fakeWriter{}
	client := NewClientWithWriter(Config{Topic: "transfers"}, w)
	sink := NewTransferEventSink(client, nil).WithCluster("prod")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sink.now = func() time.Time { return fixed }

	sink.Progress(context.Background(), testResult())

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "products/3", string(msg.Key))
	assert.Equal(t, "application/json", header(msg, "content-type"))
	assert.Equal(t, "shard_move", header(msg, "event-type"))

	var event TransferEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, TransferEvent{
		Collection:   "products",
		ShardID:      3,
		SourcePeerID: 10,
		TargetPeerID: 20,
		Mode:         "move",
		Success:      true,
		Cluster:      "prod",
		Timestamp:    fixed,
	}, event)
}

func TestTransferEventSinkCarriesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "drain_peer")
	defer span.End()

	w := &fakeWriter{}
	NewTransferEventSink(NewClientWithWriter(Config{Topic: "transfers"}, w), nil).Progress(ctx, testResult())

	require.Len(t, w.msgs, 1)
	traceparent := header(w.msgs[0], "traceparent")
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestTransferEventSinkPublishesAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &fakeWriter{}
	NewTransferEventSink(NewClientWithWriter(Config{Topic: "transfers"}, w), nil).Progress(ctx, testResult())

	require.Len(t, w.msgs, 1)
	assert.NoError(t, w.ctxErr)
}

func TestTransferEventSinkLogsPublishFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	log := &recordingLogger{}
	sink := NewTransferEventSink(NewClientWithWriter(Config{Topic: "transfers"}, w), log)

	failed := testResult()
	failed.IsSuccess = false
	failed.ErrorMessage = "transfer failed"
	sink.Progress(context.Background(), failed)

	assert.Equal(t, []string{"failed to publish transfer event"}, log.warns)
}

func TestKafkaClientObservesPublish(t *testing.T) {
	var got []observability.OperationContext
	obs := observability.ObserverFunc(func(op observability.OperationContext) { got = append(got, op) })

	w := &fakeWriter{}
	client := NewClientWithWriter(Config{Topic: "transfers"}, w).WithObserver(obs)
	require.NoError(t, client.Publish(context.Background(), "k", []byte("hello"), map[string]string{"a": "b"}))

	w.err = errors.New("boom")
	err := client.Publish(context.Background(), "k", []byte("x"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfers")

	require.Len(t, got, 2)
	assert.Equal(t, "kafka", got[0].Component)
	assert.Equal(t, "produce", got[0].Operation)
	assert.Equal(t, "transfers", got[0].Resource)
	assert.Equal(t, int64(5), got[0].Size)
	assert.Equal(t, "success", got[0].Status())
	assert.Equal(t, "error", got[1].Status())
	assert.Equal(t, "b", header(w.msgs[0], "a"))
}

func TestKafkaClientClose(t *testing.T) {
	w := &fakeWriter{}
	client := NewClientWithWriter(Config{Topic: "transfers"}, w)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.Equal(t, 1, w.closed)
	assert.ErrorIs(t, client.Publish(context.Background(), "k", nil, nil), ErrClientClosed)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{Topic: "t"})
	assert.Error(t, err)

	_, err = NewClient(Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	_, err = NewClient(Config{
		Brokers: []string{"localhost:9092"},
		Topic:   "t",
		SASL:    SASLConfig{Enabled: true, Mechanism: "GSSAPI"},
	})
	assert.ErrorContains(t, err, "unsupported SASL mechanism")

	_, err = NewClient(Config{
		Brokers: []string{"localhost:9092"},
		Topic:   "t",
		TLS:     TLSConfig{Enabled: true, CACertPath: "/does/not/exist.pem"},
	})
	assert.ErrorContains(t, err, "failed to read CA cert")
}

func TestNewClientBuildsWriter(t *testing.T) {
	client, err := NewClient(Config{
		Brokers:          []string{"localhost:9092"},
		Topic:            "t",
		Async:            true,
		CompressionCodec: "zstd",
		SASL:             SASLConfig{Enabled: true, Mechanism: "SCRAM-SHA-512", Username: "u", Password: "p"},
	})
	require.NoError(t, err)
	defer client.Close()

	w, ok := client.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "t", w.Topic)
	assert.True(t, w.Async)
	assert.Equal(t, DefaultBatchSize, w.BatchSize)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, DefaultMaxAttempts, w.MaxAttempts)
}
