// Package cluster implements compound shard placement operations for a Qdrant
// cluster: draining a peer, clearing a peer's replicas, equalizing replication
// between two peers, restoring a collection's replication factor and
// replicating or moving shards onto a peer.
//
// Every operation follows the same pipeline:
//
//  1. The peer selectors are validated. This is the only step that returns an error.
//  2. A Snapshot of peers and shard placement is fetched through a Directory.
//  3. A pure planner turns snapshot and goal into a Plan. Precondition violations
//     abort here, before any mutation.
//  4. An Executor runs the plan, or only reports it in dry-run mode. Failures are
//     recorded per shard and never stop the remaining shards.
//
// Results are returned as an OperationResult; domain failures such as an
// ambiguous selector or a shard that would lose its last Active replica are
// reported in it rather than returned.
//
// Basic usage:
//
//	ops := cluster.NewOperations(qdrantClient, cluster.DefaultConfig(), log)
//
//	res, err := ops.DrainPeer(ctx, cluster.PeerByURI("node-3"), cluster.OperationOptions{})
//	if err != nil {
//	    return err // invalid selector
//	}
//	if !res.IsSuccess {
//	    log.Error("drain failed", res.Err, nil)
//	}
//
// Restoring replication shard by shard, waiting for the collection in between:
//
//	for batch := range ops.RestoreShardReplicationFactorStream(ctx, "docs", cluster.OperationOptions{}) {
//	    if !batch.IsSuccess {
//	        log.Warn("shard not restored", nil, map[string]interface{}{"shard": batch.ShardID})
//	    }
//	    if err := ops.EnsureReady(ctx, "docs", cluster.ReadinessOptions{}, ""); err != nil {
//	        break
//	    }
//	}
//
// Snapshots are never cached; each call observes the cluster as it is. Calls
// share no state, so one Operations value may serve concurrent callers.
package cluster
