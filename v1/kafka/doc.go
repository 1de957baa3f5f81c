// Package kafka publishes the outcome of cluster operations to Apache Kafka.
//
// KafkaClient is a thin producer around segmentio/kafka-go with TLS, SASL
// (PLAIN, SCRAM-SHA-256, SCRAM-SHA-512) and compression support. TransferEventSink
// adapts it to cluster.ProgressSink so that every finished shard operation is
// published as a TransferEvent while the compound operation runs.
//
// Basic Usage:
//
//	client, err := kafka.NewClient(kafka.Config{
//		Brokers: []string{"localhost:9092"},
//		Topic:   "cluster-transfers",
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	sink := kafka.NewTransferEventSink(client, log).WithCluster("prod-eu")
//	res, err := ops.RestoreShardReplicationFactor(ctx, "products", cluster.OperationOptions{
//		Progress: cluster.MultiSink(sink, cluster.NewLoggerSink(log)),
//	})
//
// Messages are keyed by "<collection>/<shard>" and carry the W3C trace context of
// the operation in their headers when a propagator is installed (see the tracer package).
//
// A publish failure is logged and never fails the cluster operation.
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		kafka.FXModule,
//		fx.Provide(func() kafka.Config { return loadKafkaConfig() }),
//	)
package kafka
