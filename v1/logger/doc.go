// Package logger provides structured logging for the cluster operations library.
//
// It wraps Uber's zap behind a small interface so that the cluster, qdrant and kafka
// packages can log without depending on zap directly.
//
// # Architecture
//
//   - Logger interface: the contract consumed by the other packages
//   - LoggerClient struct: zap-backed implementation returned by NewLoggerClient
//   - FXModule: provides both *LoggerClient and Logger
//
// # Usage
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Info,
//		ServiceName:   "cluster-ops",
//		EnableTracing: true,
//	})
//
//	log.Info("Drain planned", nil, map[string]interface{}{
//		"peer_id":    uint64(42),
//		"operations": 7,
//	})
//
//	// trace_id and span_id are added when tracing is enabled and ctx carries a span
//	log.ErrorWithContext(ctx, "Shard transfer failed", err, map[string]interface{}{
//		"collection": "products",
//		"shard_id":   3,
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Debug, ServiceName: "cluster-ops"}
//		}),
//	)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_SERVICE_NAME=cluster-ops
//	LOGGER_ENABLE_TRACING=true
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
