package qdrant

import (
	"github.com/Aleph-Alpha/clusterops/v1/cluster"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// toReplicaState folds the server replica states into the states the planner reasons about.
// Transitional states count as Partial: they hold data but must not be used as a source.
func toReplicaState(s qdrant.ReplicaState) cluster.ReplicaState {
	switch s {
	case qdrant.ReplicaState_Active:
		return cluster.ReplicaStateActive
	case qdrant.ReplicaState_Dead:
		return cluster.ReplicaStateDead
	case qdrant.ReplicaState_Partial,
		qdrant.ReplicaState_PartialSnapshot,
		qdrant.ReplicaState_Recovery,
		qdrant.ReplicaState_Resharding,
		qdrant.ReplicaState_ReshardingScaleDown,
		qdrant.ReplicaState_ActiveRead:
		return cluster.ReplicaStatePartial
	case qdrant.ReplicaState_Initializing:
		return cluster.ReplicaStateInitializing
	case qdrant.ReplicaState_Listener:
		return cluster.ReplicaStateListener
	default:
		return cluster.ReplicaStateDead
	}
}

func toCollectionStatus(s qdrant.CollectionStatus) cluster.CollectionStatus {
	switch s {
	case qdrant.CollectionStatus_Green:
		return cluster.CollectionStatusGreen
	case qdrant.CollectionStatus_Yellow:
		return cluster.CollectionStatusYellow
	case qdrant.CollectionStatus_Red:
		return cluster.CollectionStatusRed
	case qdrant.CollectionStatus_Grey:
		return cluster.CollectionStatusGrey
	default:
		return cluster.CollectionStatusUnknown
	}
}

func toTransferMethod(m cluster.TransferMethod) qdrant.ShardTransferMethod {
	switch m {
	case cluster.TransferMethodSnapshot:
		return qdrant.ShardTransferMethod_Snapshot
	case cluster.TransferMethodWalDelta:
		return qdrant.ShardTransferMethod_WalDelta
	default:
		return qdrant.ShardTransferMethod_StreamRecords
	}
}

func toShardLayout(name string, info *qdrant.CollectionInfo, ci *qdrant.CollectionClusterInfoResponse) *cluster.ShardLayout {
	params := info.GetConfig().GetParams()
	rf := params.GetReplicationFactor()
	if rf == 0 {
		rf = 1
	}

	layout := &cluster.ShardLayout{
		Collection: cluster.Collection{
			Name:              name,
			ShardCount:        params.GetShardNumber(),
			ReplicationFactor: rf,
		},
	}

	local := cluster.PeerID(ci.GetPeerId())
	for _, s := range ci.GetLocalShards() {
		layout.Replicas = append(layout.Replicas, cluster.ShardReplica{
			ShardID: cluster.ShardID(s.GetShardId()),
			PeerID:  local,
			State:   toReplicaState(s.GetState()),
		})
	}
	for _, s := range ci.GetRemoteShards() {
		layout.Replicas = append(layout.Replicas, cluster.ShardReplica{
			ShardID: cluster.ShardID(s.GetShardId()),
			PeerID:  cluster.PeerID(s.GetPeerId()),
			State:   toReplicaState(s.GetState()),
		})
	}
	for _, t := range ci.GetShardTransfers() {
		layout.Transfers = append(layout.Transfers, cluster.ShardTransfer{
			ShardID: cluster.ShardID(t.GetShardId()),
			From:    cluster.PeerID(t.GetFrom()),
			To:      cluster.PeerID(t.GetTo()),
		})
	}
	return layout
}

func toCollectionHealth(info *qdrant.CollectionInfo, ci *qdrant.CollectionClusterInfoResponse) *cluster.CollectionHealth {
	opt := info.GetOptimizerStatus()
	return &cluster.CollectionHealth{
		Status: toCollectionStatus(info.GetStatus()),
		// a missing optimizer status means the server reported nothing wrong
		OptimizerOK:      opt == nil || opt.GetOk(),
		OptimizerError:   opt.GetError(),
		OngoingTransfers: len(ci.GetShardTransfers()),
	}
}
