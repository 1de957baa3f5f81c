package qdrant

import (
	"context"
	"fmt"
	"math"

	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	qdrant "github.com/qdrant/go-client/qdrant"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"
)

// ListCollectionNames returns every collection of the cluster.
func (c *QdrantClient) ListCollectionNames(ctx context.Context) ([]string, error) {
	if !c.started {
		return nil, ErrNotConnected
	}
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	names, err := c.api.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}
	return names, nil
}

// GetCollectionShardLayout combines the collection configuration with its
// cluster info. Replica states are reported as seen by the answering peer.
func (c *QdrantClient) GetCollectionShardLayout(ctx context.Context, collectionName string) (*cluster.ShardLayout, error) {
	info, clusterInfo, err := c.collectionState(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	return toShardLayout(collectionName, info, clusterInfo), nil
}

// GetCollectionHealth reports status, optimizer state and ongoing transfers of a collection.
func (c *QdrantClient) GetCollectionHealth(ctx context.Context, collectionName string) (*cluster.CollectionHealth, error) {
	info, clusterInfo, err := c.collectionState(ctx, collectionName)
	if err != nil {
		return nil, err
	}
	return toCollectionHealth(info, clusterInfo), nil
}

func (c *QdrantClient) collectionState(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, *qdrant.CollectionClusterInfoResponse, error) {
	if !c.started {
		return nil, nil, ErrNotConnected
	}
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var (
		info        *qdrant.CollectionInfo
		clusterInfo *qdrant.CollectionClusterInfoResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = c.api.GetCollectionInfo(gctx, collectionName)
		return mapError(err, "get collection info", collectionName)
	})
	g.Go(func() error {
		var err error
		clusterInfo, err = c.api.GetCollectionClusterInfo(gctx, collectionName)
		return mapError(err, "get collection cluster info", collectionName)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return info, clusterInfo, nil
}

// RequestShardTransfer asks the cluster to replicate a shard from one peer to another.
// The call returns once consensus accepted the transfer, not when it finished.
func (c *QdrantClient) RequestShardTransfer(ctx context.Context, collectionName string, shardID cluster.ShardID, from, to cluster.PeerID, method cluster.TransferMethod) error {
	if !c.started {
		return ErrNotConnected
	}
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	req := qdrant.NewUpdateCollectionClusterReplicateShard(collectionName, &qdrant.ReplicateShard{
		ShardId:    uint32(shardID),
		FromPeerId: uint64(from),
		ToPeerId:   uint64(to),
		Method:     qdrant.PtrOf(toTransferMethod(method)),
	})
	req.Timeout = c.consensusTimeout()

	if err := c.api.UpdateClusterCollectionSetup(ctx, req); err != nil {
		return mapError(err, "replicate shard", collectionName)
	}

	c.logger.Info("[Qdrant] shard transfer requested", nil, map[string]interface{}{
		"collection": collectionName,
		"shard":      shardID,
		"from":       from,
		"to":         to,
		"method":     method.String(),
	})
	return nil
}

// DropShardReplica removes the replica of a shard on a peer.
func (c *QdrantClient) DropShardReplica(ctx context.Context, collectionName string, shardID cluster.ShardID, peerID cluster.PeerID) error {
	if !c.started {
		return ErrNotConnected
	}
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	req := qdrant.NewUpdateCollectionClusterDropReplica(collectionName, &qdrant.Replica{
		ShardId: uint32(shardID),
		PeerId:  uint64(peerID),
	})
	req.Timeout = c.consensusTimeout()

	if err := c.api.UpdateClusterCollectionSetup(ctx, req); err != nil {
		return mapError(err, "drop replica", collectionName)
	}

	c.logger.Info("[Qdrant] shard replica dropped", nil, map[string]interface{}{
		"collection": collectionName,
		"shard":      shardID,
		"peer":       peerID,
	})
	return nil
}

// consensusTimeout is the server-side commit wait in whole seconds, nil for the server default.
func (c *QdrantClient) consensusTimeout() *uint64 {
	if c.cfg.Timeout <= 0 {
		return nil
	}
	return proto.Uint64(uint64(math.Ceil(c.cfg.Timeout.Seconds())))
}
