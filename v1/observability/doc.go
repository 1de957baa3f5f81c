// Package observability defines the hook through which clients report the remote
// operations they perform.
//
// Clients such as the cluster executor and the kafka publisher accept an optional
// Observer. When one is attached, every remote call is reported as an OperationContext
// after it finishes, which lets the metrics package (or any other collector) count and
// time operations without the clients importing Prometheus or OpenTelemetry directly.
//
// Example:
//
//	ops := cluster.NewOperations(dir, cfg, log).WithObserver(metricsObserver)
//
// A nil Observer is valid everywhere and disables reporting.
package observability
