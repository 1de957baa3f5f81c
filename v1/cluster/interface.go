package cluster

import "context"

// Directory is the remote cluster capability the compound operations run against.
// v1/qdrant.QdrantClient implements it.
//
//go:generate mockgen -source=interface.go -destination=mock_interface.go -package=cluster
type Directory interface {
	// GetClusterTopology returns the peers of the cluster and its consensus state.
	GetClusterTopology(ctx context.Context) (*Topology, error)

	// GetCollectionShardLayout returns configuration, replica placement and in-flight
	// transfers of a collection. Missing collections yield ErrCollectionNotFound.
	GetCollectionShardLayout(ctx context.Context, collectionName string) (*ShardLayout, error)

	// ListCollectionNames returns every collection of the cluster.
	ListCollectionNames(ctx context.Context) ([]string, error)

	// RequestShardTransfer asks the cluster to copy a shard replica from one peer to another.
	RequestShardTransfer(ctx context.Context, collectionName string, shardID ShardID, from, to PeerID, method TransferMethod) error

	// DropShardReplica removes the replica of a shard on a peer.
	DropShardReplica(ctx context.Context, collectionName string, shardID ShardID, peerID PeerID) error

	// GetCollectionHealth returns status, optimizer state and ongoing transfers of a collection.
	GetCollectionHealth(ctx context.Context, collectionName string) (*CollectionHealth, error)
}

// Logger is the logging contract of this package; *logger.LoggerClient satisfies it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// ProgressSink receives every finished operation result, in completion order.
// It may be called from several goroutines at once.
type ProgressSink interface {
	Progress(ctx context.Context, result ShardTransferResult)
}
