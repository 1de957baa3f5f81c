// Package tracer configures OpenTelemetry tracing for the cluster operations.
//
// NewClient builds an SDK TracerProvider with service and environment resource
// attributes, installs it globally together with the W3C trace context and baggage
// propagators, and optionally exports spans to an OTLP HTTP collector.
//
// The facade in the cluster package opens one span per compound operation;
// Tracer() returns the tracer it should use:
//
//	t, err := tracer.NewClient(tracer.Config{ServiceName: "cluster-ops"}, log)
//	if err != nil {
//	    return err
//	}
//	defer t.Shutdown(ctx)
//
//	ops := cluster.NewOperations(dir, nil, log).WithTracer(t.Tracer())
//
// GetCarrier and SetCarrierOnContext move trace context across process
// boundaries; the kafka sink uses the same propagators for record headers.
//
// With FX, tracer.FXModule provides *Tracer and trace.Tracer, which
// cluster.FXModule picks up.
package tracer
