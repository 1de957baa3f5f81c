package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"github.com/Aleph-Alpha/clusterops/v1/logger"
	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"go.uber.org/fx"
)

// FXModule provides *Metrics, also as MetricsCollector and observability.Observer and
// into the "cluster_progress" group, and runs the /metrics server for the lifetime
// of the application.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    metrics.FXModule,
//	    qdrant.FXModule,
//	    cluster.FXModule, // picks up the observer and the progress sink
//	    fx.Provide(func() metrics.Config {
//	        return metrics.Config{Address: ":9090", ServiceName: "cluster-ops"}
//	    }),
//	)
var FXModule = fx.Module("metrics",
	fx.Provide(
		fx.Annotate(
			NewMetrics,
			fx.As(fx.Self()),
			fx.As(new(MetricsCollector)),
			fx.As(new(observability.Observer)),
		),
		fx.Annotate(
			func(m *Metrics) cluster.ProgressSink { return m },
			fx.ResultTags(`group:"cluster_progress"`),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// RegisterMetricsLifecycle binds the listener on start, so a busy address fails
// startup, and shuts the server down gracefully on stop.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", m.Server.Addr)
			if err != nil {
				return err
			}
			log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
				"address": ln.Addr().String(),
			})
			go func() {
				if err := m.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Error running Prometheus metrics server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Prometheus metrics server", nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
