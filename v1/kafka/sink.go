package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// TransferEvent is the message published for every finished shard operation.
type TransferEvent struct {
	Collection   string    `json:"collection"`
	ShardID      uint32    `json:"shard_id"`
	SourcePeerID uint64    `json:"source_peer_id"`
	TargetPeerID uint64    `json:"target_peer_id"`
	Mode         string    `json:"mode"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
	DryRun       bool      `json:"dry_run"`
	Cluster      string    `json:"cluster,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// TransferEventSink publishes shard operation results to Kafka.
// It implements cluster.ProgressSink; publish failures are logged and never
// fail the cluster operation.
type TransferEventSink struct {
	publisher  Publisher
	serializer Serializer
	logger     Logger
	cluster    string
	timeout    time.Duration
	now        func() time.Time
}

var _ cluster.ProgressSink = (*TransferEventSink)(nil)

// NewTransferEventSink creates a sink publishing through p. A nil logger discards publish errors.
func NewTransferEventSink(p Publisher, log Logger) *TransferEventSink {
	if log == nil {
		log = nopLogger{}
	}
	return &TransferEventSink{
		publisher:  p,
		serializer: JSONSerializer{},
		logger:     log,
		timeout:    DefaultWriteTimeout,
		now:        time.Now,
	}
}

// WithCluster labels every event with a cluster name.
func (s *TransferEventSink) WithCluster(name string) *TransferEventSink {
	s.cluster = name
	return s
}

// WithSerializer replaces the JSON serializer.
func (s *TransferEventSink) WithSerializer(ser Serializer) *TransferEventSink {
	s.serializer = ser
	return s
}

// Progress publishes result keyed by "<collection>/<shard>" so that events of one
// shard stay ordered within a partition. The trace context of ctx travels in the headers.
func (s *TransferEventSink) Progress(ctx context.Context, result cluster.ShardTransferResult) {
	event := TransferEvent{
		Collection:   result.CollectionName,
		ShardID:      uint32(result.ShardID),
		SourcePeerID: uint64(result.SourcePeerID),
		TargetPeerID: uint64(result.TargetPeerID),
		Mode:         result.Mode.String(),
		Success:      result.IsSuccess,
		Error:        result.ErrorMessage,
		DryRun:       result.DryRun,
		Cluster:      s.cluster,
		Timestamp:    s.now().UTC(),
	}

	value, err := s.serializer.Serialize(event)
	if err != nil {
		s.logger.Error("failed to encode transfer event", err, map[string]interface{}{
			"collection": event.Collection,
			"shard_id":   event.ShardID,
		})
		return
	}

	headers := propagation.MapCarrier{
		"content-type": "application/json",
		"event-type":   "shard_" + event.Mode,
	}
	otel.GetTextMapPropagator().Inject(ctx, headers)

	// published even when ctx is already cancelled
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	key := fmt.Sprintf("%s/%d", event.Collection, event.ShardID)
	if err := s.publisher.Publish(pubCtx, key, value, headers); err != nil {
		s.logger.Warn("failed to publish transfer event", err, map[string]interface{}{
			"key":     key,
			"success": event.Success,
		})
	}
}
