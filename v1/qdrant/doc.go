// Package qdrant connects the cluster operations to a Qdrant deployment.
//
// QdrantClient wraps the official Go client and implements cluster.Directory:
//
//   - collection layouts and health come from GetCollectionInfo and
//     GetCollectionClusterInfo over gRPC
//   - shard transfers and replica drops go through UpdateClusterCollectionSetup
//   - the peer list and raft state come from the REST endpoint GET /cluster,
//     which has no gRPC equivalent
//
// Server replica states are folded into the five states the planner knows.
// Transitional states (PartialSnapshot, Recovery, Resharding, ActiveRead) map to
// Partial and unknown states map to Dead, so they are never picked as a source.
//
// # Basic Usage
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{
//	    Config: qdrant.FromEndpoint("qdrant-0.qdrant").WithApiKey(key),
//	    Logger: log,
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	ops := cluster.NewOperations(client, nil, log)
//	res, err := ops.DrainPeer(ctx, cluster.PeerByURI("qdrant-2"), cluster.OperationOptions{})
//
// # FX Module Integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    qdrant.FXModule,
//	    cluster.FXModule,
//	    fx.Provide(func() *qdrant.Config { return qdrant.DefaultConfig() }),
//	)
//
// # Configuration
//
// Config can be loaded from YAML or from the QDRANT_* environment variables.
// Port is the gRPC port (6334 by default) and RestPort the HTTP port (6333).
// Timeout bounds every remote call and is also passed to the server as the
// consensus commit timeout of cluster updates.
//
// # Errors
//
// A missing collection surfaces as cluster.ErrCollectionNotFound. A peer running
// without distributed mode yields ErrClusterDisabled from GetClusterTopology.
package qdrant
