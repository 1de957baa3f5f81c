package cluster

import (
	"fmt"
	"strings"
	"time"
)

// PeerID identifies a cluster node.
type PeerID uint64

// ShardID identifies a shard within a collection.
type ShardID uint32

// Peer is a cluster node as seen in one topology snapshot.
type Peer struct {
	ID  PeerID `json:"id"`
	URI string `json:"uri"`
}

// Collection carries the placement-relevant configuration of a collection.
type Collection struct {
	Name              string `json:"name"`
	ShardCount        uint32 `json:"shardCount"`
	ReplicationFactor uint32 `json:"replicationFactor"`
}

// ReplicaState is the state of one shard replica on one peer.
type ReplicaState int

const (
	ReplicaStateActive ReplicaState = iota
	ReplicaStateDead
	ReplicaStatePartial
	ReplicaStateInitializing
	ReplicaStateListener
)

func (s ReplicaState) String() string {
	switch s {
	case ReplicaStateActive:
		return "Active"
	case ReplicaStateDead:
		return "Dead"
	case ReplicaStatePartial:
		return "Partial"
	case ReplicaStateInitializing:
		return "Initializing"
	case ReplicaStateListener:
		return "Listener"
	default:
		return fmt.Sprintf("ReplicaState(%d)", int(s))
	}
}

// ShardReplica places one replica of a shard on a peer.
type ShardReplica struct {
	ShardID ShardID      `json:"shardId"`
	PeerID  PeerID       `json:"peerId"`
	State   ReplicaState `json:"state"`
}

// ShardTransfer is a transfer currently in flight on the cluster.
type ShardTransfer struct {
	ShardID ShardID `json:"shardId"`
	From    PeerID  `json:"from"`
	To      PeerID  `json:"to"`
}

// TransferMode selects what an operation does to the source replica.
type TransferMode int

const (
	// TransferModeCopy adds a replica on the target and keeps the source.
	TransferModeCopy TransferMode = iota
	// TransferModeMove adds a replica on the target and drops the source afterwards.
	TransferModeMove
	// TransferModeDrop removes the replica on the target peer without transferring data.
	TransferModeDrop
)

func (m TransferMode) String() string {
	switch m {
	case TransferModeCopy:
		return "copy"
	case TransferModeMove:
		return "move"
	case TransferModeDrop:
		return "drop"
	default:
		return fmt.Sprintf("TransferMode(%d)", int(m))
	}
}

// TransferMethod is the data transfer mechanism requested from the cluster.
type TransferMethod int

const (
	TransferMethodStreamRecords TransferMethod = iota
	TransferMethodSnapshot
	TransferMethodWalDelta
)

func (m TransferMethod) String() string {
	switch m {
	case TransferMethodStreamRecords:
		return "stream_records"
	case TransferMethodSnapshot:
		return "snapshot"
	case TransferMethodWalDelta:
		return "wal_delta"
	default:
		return fmt.Sprintf("TransferMethod(%d)", int(m))
	}
}

// ParseTransferMethod parses the names returned by String, case-insensitively.
func ParseTransferMethod(s string) (TransferMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stream_records":
		return TransferMethodStreamRecords, nil
	case "snapshot":
		return TransferMethodSnapshot, nil
	case "wal_delta":
		return TransferMethodWalDelta, nil
	default:
		return 0, fmt.Errorf("%w: unknown transfer method %q", ErrInvalidArgument, s)
	}
}

func (m TransferMethod) MarshalText() ([]byte, error) {
	if m < TransferMethodStreamRecords || m > TransferMethodWalDelta {
		return nil, fmt.Errorf("%w: unknown transfer method %d", ErrInvalidArgument, int(m))
	}
	return []byte(m.String()), nil
}

func (m *TransferMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseTransferMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ShardRef names a shard of a collection.
type ShardRef struct {
	CollectionName string  `json:"collectionName"`
	ShardID        ShardID `json:"shardId"`
}

func (r ShardRef) String() string {
	return fmt.Sprintf("%s/%d", r.CollectionName, r.ShardID)
}

// ShardTransferOperation is one planned step. It is consumed exactly once by the executor.
type ShardTransferOperation struct {
	CollectionName string         `json:"collectionName"`
	ShardID        ShardID        `json:"shardId"`
	SourcePeerID   PeerID         `json:"sourcePeerId"`
	TargetPeerID   PeerID         `json:"targetPeerId"`
	Mode           TransferMode   `json:"mode"`
	Method         TransferMethod `json:"method"`
}

// Ref returns the shard the operation touches.
func (o ShardTransferOperation) Ref() ShardRef {
	return ShardRef{CollectionName: o.CollectionName, ShardID: o.ShardID}
}

// UnplannedShard is a shard the goal covers but for which no safe operation exists.
type UnplannedShard struct {
	ShardRef
	Err error `json:"-"`
}

// Plan is the planner output.
type Plan struct {
	Operations       []ShardTransferOperation `json:"operations"`
	AlreadySatisfied []ShardRef               `json:"alreadySatisfied"`
	Unplanned        []UnplannedShard         `json:"unplanned"`
}

// ShardTransferResult is the outcome of one operation (or of one unplanned shard).
type ShardTransferResult struct {
	IsSuccess      bool         `json:"isSuccess"`
	ErrorMessage   string       `json:"errorMessage,omitempty"`
	Err            error        `json:"-"`
	CollectionName string       `json:"collectionName"`
	ShardID        ShardID      `json:"shardId"`
	SourcePeerID   PeerID       `json:"sourcePeerId"`
	TargetPeerID   PeerID       `json:"targetPeerId"`
	Mode           TransferMode `json:"mode"`
	DryRun         bool         `json:"dryRun"`
}

// Ref returns the shard the result belongs to.
func (r ShardTransferResult) Ref() ShardRef {
	return ShardRef{CollectionName: r.CollectionName, ShardID: r.ShardID}
}

// TransferBatch is one unit of streamed execution: the results of every operation
// planned for a single shard.
type TransferBatch struct {
	ShardRef
	Results      []ShardTransferResult `json:"results"`
	IsSuccess    bool                  `json:"isSuccess"`
	ErrorMessage string                `json:"errorMessage,omitempty"`
}

// OperationResult is what every compound operation returns.
type OperationResult struct {
	Operation             string                `json:"operation"`
	IsSuccess             bool                  `json:"isSuccess"`
	ErrorMessage          string                `json:"errorMessage,omitempty"`
	Err                   error                 `json:"-"`
	DryRun                bool                  `json:"dryRun"`
	AlreadySatisfied      []ShardRef            `json:"alreadySatisfied,omitempty"`
	AlreadySatisfiedCount int                   `json:"alreadySatisfiedCount"`
	Results               []ShardTransferResult `json:"results"`
	Plan                  *Plan                 `json:"plan,omitempty"`
	Duration              time.Duration         `json:"duration"`
}

// FailedCount returns how many results are unsuccessful.
func (r *OperationResult) FailedCount() int {
	n := 0
	for _, res := range r.Results {
		if !res.IsSuccess {
			n++
		}
	}
	return n
}

// ConsensusStatus is the raft view reported together with the peer list.
type ConsensusStatus struct {
	Leader            PeerID `json:"leader"`
	Role              string `json:"role"`
	Term              uint64 `json:"term"`
	Commit            uint64 `json:"commit"`
	PendingOperations uint64 `json:"pendingOperations"`
	ThreadStatus      string `json:"threadStatus"`
}

// Topology is the answer of Directory.GetClusterTopology.
type Topology struct {
	LocalPeerID PeerID          `json:"localPeerId"`
	Peers       []Peer          `json:"peers"`
	Consensus   ConsensusStatus `json:"consensus"`
}

// ShardLayout is the answer of Directory.GetCollectionShardLayout.
type ShardLayout struct {
	Collection Collection      `json:"collection"`
	Replicas   []ShardReplica  `json:"replicas"`
	Transfers  []ShardTransfer `json:"transfers"`
}

// CollectionStatus is the coarse health color of a collection.
type CollectionStatus int

const (
	CollectionStatusUnknown CollectionStatus = iota
	CollectionStatusGreen
	CollectionStatusYellow
	CollectionStatusRed
	CollectionStatusGrey
)

func (s CollectionStatus) String() string {
	switch s {
	case CollectionStatusGreen:
		return "Green"
	case CollectionStatusYellow:
		return "Yellow"
	case CollectionStatusRed:
		return "Red"
	case CollectionStatusGrey:
		return "Grey"
	default:
		return "Unknown"
	}
}

// CollectionHealth is the answer of Directory.GetCollectionHealth.
type CollectionHealth struct {
	Status           CollectionStatus `json:"status"`
	OptimizerOK      bool             `json:"optimizerOk"`
	OptimizerError   string           `json:"optimizerError,omitempty"`
	OngoingTransfers int              `json:"ongoingTransfers"`
}
