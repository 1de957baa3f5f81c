// Package metrics exposes Prometheus metrics for the cluster operations.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: the contract implemented by *Metrics
//   - Metrics struct: private registry, operation metrics and the /metrics server
//   - FX module: provides *Metrics, MetricsCollector and observability.Observer
//
// Metrics is both an observability.Observer and a cluster.ProgressSink:
//
//   - as an Observer it counts every remote call reported by the cluster executor
//     (replicate_shard, drop_replica, await_transfer) and the kafka publisher
//     (produce), labelled by component, operation and status, and records their
//     duration in a histogram
//   - as a ProgressSink it counts finished shard operations by collection, mode,
//     outcome and dry-run flag
//
// Exported series (namespace defaults to "clusterops"):
//
//	clusterops_remote_operations_total{component,operation,status}
//	clusterops_remote_operation_duration_seconds{component,operation}
//	clusterops_remote_operation_bytes_total{component,operation}
//	clusterops_shard_operations_total{collection,mode,status,dry_run}
//
// Every series carries a constant service label.
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		ServiceName:             "cluster-ops",
//		EnableDefaultCollectors: true,
//	})
//	go m.Server.ListenAndServe()
//
//	ops := cluster.NewOperations(dir, nil, log).WithObserver(m)
//	res, err := ops.DrainPeer(ctx, peer, cluster.OperationOptions{Progress: m})
//
// # FX Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule,
//		fx.Provide(func() metrics.Config { return metrics.Config{Address: ":9090"} }),
//	)
//
// The server binds its listener in OnStart and is shut down gracefully in OnStop.
package metrics
