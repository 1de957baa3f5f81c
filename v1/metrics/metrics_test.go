package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{
		Component: "cluster",
		Operation: "replicate_shard",
		Duration:  250 * time.Millisecond,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "cluster",
		Operation: "replicate_shard",
		Error:     errors.New("boom"),
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "kafka",
		Operation: "produce",
		Size:      128,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("cluster", "replicate_shard", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("cluster", "replicate_shard", "error")))
	assert.Equal(t, 128.0, testutil.ToFloat64(m.operationBytes.WithLabelValues("kafka", "produce")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.operationDuration))
}

func TestProgressCountsShardOperations(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})
	ctx := context.Background()

	m.Progress(ctx, cluster.ShardTransferResult{IsSuccess: true, CollectionName: "docs", Mode: cluster.TransferModeMove})
	m.Progress(ctx, cluster.ShardTransferResult{IsSuccess: true, CollectionName: "docs", Mode: cluster.TransferModeMove})
	m.Progress(ctx, cluster.ShardTransferResult{CollectionName: "docs", Mode: cluster.TransferModeDrop, DryRun: true})

	expected := `
# HELP clusterops_shard_operations_total Finished shard operations by mode and outcome
# TYPE clusterops_shard_operations_total counter
clusterops_shard_operations_total{collection="docs",dry_run="false",mode="move",service="test",status="success"} 2
clusterops_shard_operations_total{collection="docs",dry_run="true",mode="drop",service="test",status="failure"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "clusterops_shard_operations_total"))
}

func TestNamespaceAndCustomMetrics(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "svc", Namespace: "ops"})

	counter := m.CreateCounter("drains_total", "Drains started", []string{"peer"})
	counter.WithLabelValues("10").Inc()
	gauge := m.CreateGauge("peers", "Known peers", nil)
	gauge.WithLabelValues().Set(3)
	hist := m.CreateHistogram("plan_seconds", "Planning time", []string{"operation"}, []float64{0.1, 1})
	hist.WithLabelValues("drain_peer").Observe(0.05)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
		for _, metric := range f.GetMetric() {
			var service string
			for _, l := range metric.GetLabel() {
				if l.GetName() == "service" {
					service = l.GetValue()
				}
			}
			assert.Equal(t, "svc", service, f.GetName())
		}
	}
	assert.True(t, names["drains_total"])
	assert.True(t, names["peers"])
	assert.True(t, names["plan_seconds"])
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test", EnableDefaultCollectors: true})
	m.ObserveOperation(observability.OperationContext{Component: "cluster", Operation: "drop_replica"})

	srv := httptest.NewServer(m.Server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `clusterops_remote_operations_total{component="cluster",operation="drop_replica",service="test",status="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestObserverViaMulti(t *testing.T) {
	m := NewMetrics(Config{})
	obs := observability.Multi(nil, m)
	obs.ObserveOperation(observability.OperationContext{Component: "cluster", Operation: "await_transfer"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("cluster", "await_transfer", "success")))
}
