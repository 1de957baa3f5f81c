package kafka

import (
	"context"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"github.com/Aleph-Alpha/clusterops/v1/logger"
	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"go.uber.org/fx"
)

// FXModule provides *KafkaClient (also as Publisher) and *TransferEventSink.
//
// A kafka.Config must be available in the container. The sink joins the
// "cluster_progress" group, so cluster.FXModule publishes every finished shard
// operation without callers setting OperationOptions.Progress.
var FXModule = fx.Module("kafka",
	fx.Provide(
		fx.Annotate(
			NewClientWithDI,
			fx.As(fx.Self()),
			fx.As(new(Publisher)),
		),
		NewTransferEventSinkWithDI,
		fx.Annotate(
			func(s *TransferEventSink) cluster.ProgressSink { return s },
			fx.ResultTags(`group:"cluster_progress"`),
		),
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies needed to create a Kafka client
type KafkaParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates the producer from injected dependencies.
func NewClientWithDI(p KafkaParams) (*KafkaClient, error) {
	if p.Logger != nil {
		p.Config.Logger = p.Logger
	}
	client, err := NewClient(p.Config)
	if err != nil {
		return nil, err
	}
	return client.WithObserver(p.Observer), nil
}

// SinkParams groups the dependencies of NewTransferEventSinkWithDI.
type SinkParams struct {
	fx.In

	Publisher Publisher
	Logger    logger.Logger `optional:"true"`
}

// NewTransferEventSinkWithDI creates the progress sink from injected dependencies.
func NewTransferEventSinkWithDI(p SinkParams) *TransferEventSink {
	return NewTransferEventSink(p.Publisher, p.Logger)
}

// RegisterKafkaLifecycle flushes and closes the producer when the application stops.
func RegisterKafkaLifecycle(lc fx.Lifecycle, client *KafkaClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
