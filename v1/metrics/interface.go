package metrics

import (
	"context"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector is implemented by *Metrics.
type MetricsCollector interface {
	// ObserveOperation counts and times one remote operation.
	ObserveOperation(op observability.OperationContext)

	// Progress counts a finished shard operation.
	Progress(ctx context.Context, result cluster.ShardTransferResult)

	// CreateCounter creates a new CounterVec metric and registers it.
	CreateCounter(name, help string, labels []string) *prometheus.CounterVec

	// CreateHistogram creates a new HistogramVec metric and registers it.
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec

	// CreateGauge creates a new GaugeVec metric and registers it.
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}
