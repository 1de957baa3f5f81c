package cluster

import "errors"

// Errors reported by the compound operations. Planning errors abort an operation
// before any mutating call; transfer errors are attached to individual results.
var (
	// ErrInvalidArgument is returned for malformed operation input.
	ErrInvalidArgument = errors.New("cluster: invalid argument")

	// ErrInvalidPeerSelector is returned for an empty or self-contradicting peer selector.
	ErrInvalidPeerSelector = errors.New("cluster: invalid peer selector")

	// ErrAmbiguousPeerSelector is returned when a URI substring matches more than one peer.
	ErrAmbiguousPeerSelector = errors.New("cluster: ambiguous peer selector")

	// ErrPeerNotFound is returned when a selector matches no peer of the snapshot.
	ErrPeerNotFound = errors.New("cluster: peer not found")

	// ErrClusterNotFound is returned for an unregistered cluster name.
	ErrClusterNotFound = errors.New("cluster: cluster not found")

	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("cluster: collection not found")

	// ErrInsufficientReplicas is returned when a mutation would leave a shard without an Active replica.
	ErrInsufficientReplicas = errors.New("cluster: insufficient replicas")

	// ErrTargetNotEmpty is returned when the equalization target already hosts shards.
	ErrTargetNotEmpty = errors.New("cluster: target peer is not empty")

	// ErrTooFewShardsToEqualize is returned when the equalization source hosts fewer than two shards.
	ErrTooFewShardsToEqualize = errors.New("cluster: too few shards to equalize")

	// ErrNoEligiblePeer is returned when no peer can receive a shard.
	ErrNoEligiblePeer = errors.New("cluster: no eligible peer")

	// ErrNoActiveReplica is returned when a shard has no Active replica to copy from.
	ErrNoActiveReplica = errors.New("cluster: no active replica")

	// ErrShardNotOnSource is returned when the requested source peer holds no Active replica of a shard.
	ErrShardNotOnSource = errors.New("cluster: shard not on source peer")

	// ErrTransferFailed wraps a failed remote transfer or drop of one shard.
	ErrTransferFailed = errors.New("cluster: shard transfer failed")

	// ErrTransferTimeout is returned when a requested transfer does not complete in time.
	ErrTransferTimeout = errors.New("cluster: shard transfer timed out")

	// ErrReadinessTimeout is returned when a collection does not become ready in time.
	ErrReadinessTimeout = errors.New("cluster: readiness timeout")

	// ErrOperationCancelled is returned for work that was not started because the context ended.
	ErrOperationCancelled = errors.New("cluster: operation cancelled")
)

// IsPeerResolutionError reports whether err comes from resolving a peer selector.
func IsPeerResolutionError(err error) bool {
	return errors.Is(err, ErrPeerNotFound) ||
		errors.Is(err, ErrAmbiguousPeerSelector) ||
		errors.Is(err, ErrInvalidPeerSelector)
}

// IsPreconditionError reports whether err is a planning precondition violation.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrInsufficientReplicas) ||
		errors.Is(err, ErrTargetNotEmpty) ||
		errors.Is(err, ErrTooFewShardsToEqualize) ||
		errors.Is(err, ErrNoEligiblePeer)
}

// IsCancelledError reports whether err is a cancellation.
func IsCancelledError(err error) bool {
	return errors.Is(err, ErrOperationCancelled)
}
