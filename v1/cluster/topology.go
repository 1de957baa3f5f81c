package cluster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"
)

// maxLayoutFetches bounds concurrent layout requests while building a snapshot.
const maxLayoutFetches = 8

// Snapshot is an immutable view of peers and shard placement, built once per
// operation and discarded afterwards. Peers and replicas are kept in flat slices
// sorted by id, indexed by maps.
type Snapshot struct {
	localPeer   PeerID
	consensus   ConsensusStatus
	peers       []Peer
	peerIndex   map[PeerID]int
	collections []string
	layouts     map[string]*collectionLayout
}

type collectionLayout struct {
	collection Collection
	// replicas sorted by (shard, peer)
	replicas  []ShardReplica
	transfers []ShardTransfer
	shardIDs  []ShardID
}

// NewSnapshot builds a snapshot from already fetched topology and layouts.
// Duplicate peers or replicas keep their first occurrence.
func NewSnapshot(topology *Topology, layouts ...*ShardLayout) *Snapshot {
	s := &Snapshot{
		peerIndex: make(map[PeerID]int),
		layouts:   make(map[string]*collectionLayout, len(layouts)),
	}

	if topology != nil {
		s.localPeer = topology.LocalPeerID
		s.consensus = topology.Consensus
		for _, p := range topology.Peers {
			if _, ok := s.peerIndex[p.ID]; ok {
				continue
			}
			s.peerIndex[p.ID] = len(s.peers)
			s.peers = append(s.peers, p)
		}
	}
	sort.Slice(s.peers, func(i, j int) bool { return s.peers[i].ID < s.peers[j].ID })
	for i, p := range s.peers {
		s.peerIndex[p.ID] = i
	}

	for _, l := range layouts {
		if l == nil {
			continue
		}
		name := l.Collection.Name
		if _, ok := s.layouts[name]; ok {
			continue
		}
		s.layouts[name] = newCollectionLayout(l)
		s.collections = append(s.collections, name)
	}
	sort.Strings(s.collections)

	return s
}

func newCollectionLayout(l *ShardLayout) *collectionLayout {
	cl := &collectionLayout{
		collection: l.Collection,
		transfers:  slices.Clone(l.Transfers),
	}

	type key struct {
		shard ShardID
		peer  PeerID
	}
	seen := make(map[key]struct{}, len(l.Replicas))
	for _, r := range l.Replicas {
		k := key{r.ShardID, r.PeerID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		cl.replicas = append(cl.replicas, r)
	}
	sort.Slice(cl.replicas, func(i, j int) bool {
		a, b := cl.replicas[i], cl.replicas[j]
		if a.ShardID != b.ShardID {
			return a.ShardID < b.ShardID
		}
		return a.PeerID < b.PeerID
	})

	for _, r := range cl.replicas {
		if n := len(cl.shardIDs); n == 0 || cl.shardIDs[n-1] != r.ShardID {
			cl.shardIDs = append(cl.shardIDs, r.ShardID)
		}
	}
	return cl
}

// LoadSnapshot fetches the topology and the layout of every collection of the
// cluster, so peer load always covers the whole cluster whatever the planning
// scope is. Each name in required must exist; other collections that vanish
// between listing and fetching are skipped.
func LoadSnapshot(ctx context.Context, dir Directory, required []string) (*Snapshot, error) {
	topology, err := dir.GetClusterTopology(ctx)
	if err != nil {
		return nil, fmt.Errorf("cluster: failed to get cluster topology: %w", err)
	}

	listed, err := dir.ListCollectionNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("cluster: failed to list collections: %w", err)
	}
	names := uniqueSorted(append(slices.Clone(listed), required...))
	mustExist := make(map[string]struct{}, len(required))
	for _, name := range required {
		mustExist[name] = struct{}{}
	}

	layouts := make([]*ShardLayout, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLayoutFetches)
	for i, name := range names {
		g.Go(func() error {
			layout, err := dir.GetCollectionShardLayout(gctx, name)
			if err != nil {
				if _, named := mustExist[name]; !named && errors.Is(err, ErrCollectionNotFound) {
					return nil
				}
				return fmt.Errorf("cluster: failed to get shard layout of %q: %w", name, err)
			}
			if layout.Collection.Name == "" {
				layout.Collection.Name = name
			}
			layouts[i] = layout
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewSnapshot(topology, layouts...), nil
}

func uniqueSorted(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}

// LocalPeerID is the peer that answered the topology request.
func (s *Snapshot) LocalPeerID() PeerID { return s.localPeer }

// Consensus is the raft state observed when the snapshot was taken.
func (s *Snapshot) Consensus() ConsensusStatus { return s.consensus }

// Peers returns the peers sorted by id.
func (s *Snapshot) Peers() []Peer { return slices.Clone(s.peers) }

// Peer looks up a peer by id.
func (s *Snapshot) Peer(id PeerID) (Peer, bool) {
	i, ok := s.peerIndex[id]
	if !ok {
		return Peer{}, false
	}
	return s.peers[i], true
}

// CollectionNames returns the collections of the snapshot sorted by name.
func (s *Snapshot) CollectionNames() []string { return slices.Clone(s.collections) }

// Collection returns the configuration of a collection.
func (s *Snapshot) Collection(name string) (Collection, bool) {
	l, ok := s.layouts[name]
	if !ok {
		return Collection{}, false
	}
	return l.collection, true
}

// Replicas returns every replica of a collection sorted by (shard, peer).
func (s *Snapshot) Replicas(collection string) []ShardReplica {
	l, ok := s.layouts[collection]
	if !ok {
		return nil
	}
	return slices.Clone(l.replicas)
}

// ShardIDs returns the shards of a collection that have at least one replica, ascending.
func (s *Snapshot) ShardIDs(collection string) []ShardID {
	l, ok := s.layouts[collection]
	if !ok {
		return nil
	}
	return slices.Clone(l.shardIDs)
}

// ShardReplicas returns the replicas of one shard sorted by peer id.
func (s *Snapshot) ShardReplicas(collection string, shard ShardID) []ShardReplica {
	l, ok := s.layouts[collection]
	if !ok {
		return nil
	}
	lo := sort.Search(len(l.replicas), func(i int) bool { return l.replicas[i].ShardID >= shard })
	hi := lo
	for hi < len(l.replicas) && l.replicas[hi].ShardID == shard {
		hi++
	}
	return slices.Clone(l.replicas[lo:hi])
}

// Replica returns the replica of a shard hosted on a peer.
func (s *Snapshot) Replica(collection string, shard ShardID, peer PeerID) (ShardReplica, bool) {
	for _, r := range s.ShardReplicas(collection, shard) {
		if r.PeerID == peer {
			return r, true
		}
	}
	return ShardReplica{}, false
}

// PeerReplicas returns the replicas of a collection hosted on a peer, ascending by shard.
func (s *Snapshot) PeerReplicas(collection string, peer PeerID) []ShardReplica {
	l, ok := s.layouts[collection]
	if !ok {
		return nil
	}
	var out []ShardReplica
	for _, r := range l.replicas {
		if r.PeerID == peer {
			out = append(out, r)
		}
	}
	return out
}

// Transfers returns the shard transfers of a collection in flight at snapshot time.
func (s *Snapshot) Transfers(collection string) []ShardTransfer {
	l, ok := s.layouts[collection]
	if !ok {
		return nil
	}
	return slices.Clone(l.transfers)
}

// Load returns the number of replicas a peer hosts across every collection of the snapshot.
func (s *Snapshot) Load(peer PeerID) int {
	n := 0
	for _, l := range s.layouts {
		for _, r := range l.replicas {
			if r.PeerID == peer {
				n++
			}
		}
	}
	return n
}

// ActiveCount returns the number of Active replicas of a shard.
func (s *Snapshot) ActiveCount(collection string, shard ShardID) int {
	n := 0
	for _, r := range s.ShardReplicas(collection, shard) {
		if r.State == ReplicaStateActive {
			n++
		}
	}
	return n
}
