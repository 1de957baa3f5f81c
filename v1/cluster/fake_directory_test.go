package cluster

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// fakeDirectory is an in-memory cluster. Transfers complete instantly and
// drops remove the replica, so tests can assert on the resulting placement.
type fakeDirectory struct {
	mu          sync.Mutex
	peers       []Peer
	collections map[string]*fakeCollection

	failTransfer map[ShardRef]error
	failDrop     map[ShardRef]error

	health    []*CollectionHealth
	healthErr []error
	healthIdx int

	transfers []ShardTransferOperation
	drops     []ShardTransferOperation
}

type fakeCollection struct {
	cfg      Collection
	replicas map[ShardID]map[PeerID]ReplicaState
}

func newFakeDirectory(peerCount int) *fakeDirectory {
	f := &fakeDirectory{
		collections:  make(map[string]*fakeCollection),
		failTransfer: make(map[ShardRef]error),
		failDrop:     make(map[ShardRef]error),
	}
	for i := 1; i <= peerCount; i++ {
		f.peers = append(f.peers, Peer{ID: PeerID(i), URI: fmt.Sprintf("http://node-%d.qdrant:6335", i)})
	}
	return f
}

// addCollection places every listed peer as an Active replica of the shard.
func (f *fakeDirectory) addCollection(name string, rf uint32, placement map[ShardID][]PeerID) *fakeDirectory {
	c := &fakeCollection{
		cfg:      Collection{Name: name, ShardCount: uint32(len(placement)), ReplicationFactor: rf},
		replicas: make(map[ShardID]map[PeerID]ReplicaState),
	}
	for shard, peers := range placement {
		c.replicas[shard] = make(map[PeerID]ReplicaState)
		for _, p := range peers {
			c.replicas[shard][p] = ReplicaStateActive
		}
	}
	f.collections[name] = c
	return f
}

func (f *fakeDirectory) setState(collection string, shard ShardID, peer PeerID, state ReplicaState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[collection].replicas[shard][peer] = state
}

func (f *fakeDirectory) GetClusterTopology(ctx context.Context) (*Topology, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &Topology{
		LocalPeerID: f.peers[0].ID,
		Peers:       slices.Clone(f.peers),
		Consensus:   ConsensusStatus{Leader: f.peers[0].ID, Role: "Leader", Term: 1},
	}, nil
}

func (f *fakeDirectory) ListCollectionNames(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for name := range f.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeDirectory) GetCollectionShardLayout(ctx context.Context, collectionName string) (*ShardLayout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collections[collectionName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collectionName)
	}
	layout := &ShardLayout{Collection: c.cfg}
	for shard, peers := range c.replicas {
		for peer, state := range peers {
			layout.Replicas = append(layout.Replicas, ShardReplica{ShardID: shard, PeerID: peer, State: state})
		}
	}
	return layout, nil
}

func (f *fakeDirectory) RequestShardTransfer(ctx context.Context, collectionName string, shardID ShardID, from, to PeerID, method TransferMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := ShardRef{CollectionName: collectionName, ShardID: shardID}
	f.transfers = append(f.transfers, ShardTransferOperation{
		CollectionName: collectionName, ShardID: shardID, SourcePeerID: from, TargetPeerID: to, Method: method,
	})
	if err := f.failTransfer[ref]; err != nil {
		return err
	}
	c, ok := f.collections[collectionName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collectionName)
	}
	replicas := c.replicas[shardID]
	if replicas[from] != ReplicaStateActive {
		return fmt.Errorf("shard %s has no active replica on peer %d", ref, from)
	}
	if state, ok := replicas[to]; ok && state != ReplicaStateDead {
		return fmt.Errorf("shard %s already on peer %d", ref, to)
	}
	replicas[to] = ReplicaStateActive
	return nil
}

func (f *fakeDirectory) DropShardReplica(ctx context.Context, collectionName string, shardID ShardID, peerID PeerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref := ShardRef{CollectionName: collectionName, ShardID: shardID}
	f.drops = append(f.drops, ShardTransferOperation{
		CollectionName: collectionName, ShardID: shardID, SourcePeerID: peerID, TargetPeerID: peerID, Mode: TransferModeDrop,
	})
	if err := f.failDrop[ref]; err != nil {
		return err
	}
	c, ok := f.collections[collectionName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collectionName)
	}
	if _, ok := c.replicas[shardID][peerID]; !ok {
		return fmt.Errorf("shard %s not on peer %d", ref, peerID)
	}
	delete(c.replicas[shardID], peerID)
	return nil
}

// GetCollectionHealth replays the configured responses; the last one repeats.
func (f *fakeDirectory) GetCollectionHealth(ctx context.Context, collectionName string) (*CollectionHealth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.collections[collectionName]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collectionName)
	}
	if len(f.health) == 0 {
		return &CollectionHealth{Status: CollectionStatusGreen, OptimizerOK: true}, nil
	}
	i := min(f.healthIdx, len(f.health)-1)
	f.healthIdx++
	var err error
	if i < len(f.healthErr) {
		err = f.healthErr[i]
	}
	if err != nil {
		return nil, err
	}
	return f.health[i], nil
}

func (f *fakeDirectory) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transfers) + len(f.drops)
}

// shardsOn returns the shards of a collection hosted on a peer, ascending.
func (f *fakeDirectory) shardsOn(collection string, peer PeerID) []ShardID {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ShardID
	for shard, peers := range f.collections[collection].replicas {
		if _, ok := peers[peer]; ok {
			out = append(out, shard)
		}
	}
	slices.Sort(out)
	return out
}

// replicaCount returns the number of replicas of a shard in the given states.
func (f *fakeDirectory) replicaCount(collection string, shard ShardID, states ...ReplicaState) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.collections[collection].replicas[shard] {
		if slices.Contains(states, s) {
			n++
		}
	}
	return n
}

func (f *fakeDirectory) snapshot(collections ...string) *Snapshot {
	snap, err := LoadSnapshot(context.Background(), f, collections)
	if err != nil {
		panic(err)
	}
	return snap
}
