package cluster

import (
	"context"

	"github.com/Aleph-Alpha/clusterops/v1/logger"
	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

// FXModule provides *Operations.
//
// A cluster.Directory (see qdrant.FXModule) and a logger.Logger must be available
// in the container. *Config, observability.Observer and trace.Tracer are optional.
// Every ProgressSink provided into the "cluster_progress" group receives the
// results of every operation:
//
//	fx.Provide(fx.Annotate(
//	    func(l logger.Logger) cluster.ProgressSink { return cluster.NewLoggerSink(l) },
//	    fx.ResultTags(`group:"cluster_progress"`),
//	))
//
//	app := fx.New(
//	    logger.FXModule,
//	    qdrant.FXModule,
//	    cluster.FXModule,
//	)
var FXModule = fx.Module("cluster",
	fx.Provide(NewOperationsWithParams),
	fx.Invoke(RegisterOperationsLifecycle),
)

// OperationsParams are the dependencies of NewOperationsWithParams.
type OperationsParams struct {
	fx.In
	Directory Directory
	Logger    logger.Logger
	Config    *Config                `optional:"true"`
	Observer  observability.Observer `optional:"true"`
	Tracer    trace.Tracer           `optional:"true"`
	Sinks     []ProgressSink         `group:"cluster_progress"`
}

// NewOperationsWithParams builds the facade from injected dependencies.
func NewOperationsWithParams(p OperationsParams) *Operations {
	ops := NewOperations(p.Directory, p.Config, p.Logger).WithObserver(p.Observer)
	if p.Tracer != nil {
		ops = ops.WithTracer(p.Tracer)
	}
	if len(p.Sinks) > 0 {
		ops = ops.WithProgress(MultiSink(p.Sinks...))
	}
	return ops
}

// RegisterOperationsLifecycle logs the effective execution settings on start.
func RegisterOperationsLifecycle(lc fx.Lifecycle, ops *Operations, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			cfg := ops.cfg.normalized()
			log.Info("cluster operations ready", nil, map[string]interface{}{
				"max_concurrent_transfers": cfg.MaxConcurrentTransfers,
				"transfer_timeout":         cfg.TransferTimeout.String(),
				"await_transfers":          cfg.AwaitTransfers,
				"default_transfer_method":  cfg.DefaultTransferMethod.String(),
			})
			return nil
		},
	})
}
