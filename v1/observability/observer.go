package observability

import "time"

// Observer receives a notification for every observed operation.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a single finished operation.
type OperationContext struct {
	// Component is the reporting client, e.g. "cluster" or "kafka".
	Component string

	// Operation is the operation name, e.g. "replicate_shard" or "drop_replica".
	Operation string

	// Resource is the primary resource, e.g. a collection name or topic.
	Resource string

	// SubResource carries additional context such as a shard id or message key.
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the operation's error, nil on success.
	Error error

	// Size is a payload size in bytes where applicable.
	Size int64

	// Metadata holds operation specific key/value pairs.
	Metadata map[string]interface{}
}

// Status returns "success" or "error" depending on Error.
func (o OperationContext) Status() string {
	if o.Error != nil {
		return "error"
	}
	return "success"
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Multi fans a notification out to every non-nil observer.
func Multi(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}
