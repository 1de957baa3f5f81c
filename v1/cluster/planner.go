package cluster

import (
	"fmt"
	"slices"
	"strings"
)

// The planner functions are pure: the same snapshot and goal always yield the
// same plan. Collections are visited by ascending name, shards and peers by
// ascending id. Load is the number of replicas a peer hosts across every
// collection of the snapshot, updated as operations are assigned.

// ReplicateGoal describes a ReplicateShards request after peer resolution.
type ReplicateGoal struct {
	// Source is optional; without it every shard is copied from its first Active holder.
	Source *PeerID
	Target PeerID
	// Collections limits the scope; empty means every collection of the snapshot.
	Collections []string
	// ShardIDs limits the scope; empty means every shard on the source (or every shard).
	ShardIDs []ShardID
	Move     bool
}

type loadTable map[PeerID]int

func newLoadTable(snap *Snapshot) loadTable {
	lt := make(loadTable, len(snap.peers))
	for _, p := range snap.peers {
		lt[p.ID] = 0
	}
	for _, l := range snap.layouts {
		for _, r := range l.replicas {
			lt[r.PeerID]++
		}
	}
	return lt
}

// pick returns the candidate with the lowest load, ties broken by ascending id.
// Candidates must be sorted by id.
func (lt loadTable) pick(candidates []PeerID) (PeerID, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if lt[c] < lt[best] {
			best = c
		}
	}
	return best, true
}

// rank returns candidates ordered by (load, id).
func (lt loadTable) rank(candidates []PeerID) []PeerID {
	out := slices.Clone(candidates)
	slices.SortStableFunc(out, func(a, b PeerID) int {
		if lt[a] != lt[b] {
			return lt[a] - lt[b]
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return out
}

// scopedCollections returns the collections a goal covers, sorted by name.
func scopedCollections(snap *Snapshot, scope []string) ([]string, error) {
	if len(scope) == 0 {
		return snap.CollectionNames(), nil
	}
	names := uniqueSorted(scope)
	for _, name := range names {
		if _, ok := snap.layouts[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
		}
	}
	return names, nil
}

// peersWithout returns the snapshot peers, ascending, that hold no replica of the shard
// and are not excluded.
func peersWithout(snap *Snapshot, collection string, shard ShardID, exclude ...PeerID) []PeerID {
	holders := make(map[PeerID]struct{})
	for _, r := range snap.ShardReplicas(collection, shard) {
		holders[r.PeerID] = struct{}{}
	}
	for _, p := range exclude {
		holders[p] = struct{}{}
	}
	var out []PeerID
	for _, p := range snap.peers {
		if _, ok := holders[p.ID]; !ok {
			out = append(out, p.ID)
		}
	}
	return out
}

// firstActive returns the lowest-id peer holding an Active replica of the shard,
// skipping the excluded peers.
func firstActive(snap *Snapshot, collection string, shard ShardID, exclude ...PeerID) (PeerID, bool) {
	for _, r := range snap.ShardReplicas(collection, shard) {
		if r.State == ReplicaStateActive && !slices.Contains(exclude, r.PeerID) {
			return r.PeerID, true
		}
	}
	return 0, false
}

func requirePeer(snap *Snapshot, id PeerID) error {
	if _, ok := snap.Peer(id); !ok {
		return fmt.Errorf("%w: peer %d", ErrPeerNotFound, id)
	}
	return nil
}

// PlanDrain moves every replica hosted on peer to other peers.
//
// An Active replica is moved directly. A replica in any other state cannot serve
// as a source, so the shard is copied from its first Active holder and the local
// replica is dropped afterwards. If any shard has no destination the whole plan
// fails with ErrNoEligiblePeer.
func PlanDrain(snap *Snapshot, peer PeerID, scope []string) (*Plan, error) {
	if err := requirePeer(snap, peer); err != nil {
		return nil, err
	}
	collections, err := scopedCollections(snap, scope)
	if err != nil {
		return nil, err
	}

	load := newLoadTable(snap)
	plan := &Plan{}
	for _, name := range collections {
		for _, r := range snap.PeerReplicas(name, peer) {
			ref := ShardRef{CollectionName: name, ShardID: r.ShardID}
			dest, ok := load.pick(peersWithout(snap, name, r.ShardID))
			if !ok {
				return nil, fmt.Errorf("%w: no peer can take shard %s from peer %d", ErrNoEligiblePeer, ref, peer)
			}

			if r.State == ReplicaStateActive {
				plan.Operations = append(plan.Operations, ShardTransferOperation{
					CollectionName: name,
					ShardID:        r.ShardID,
					SourcePeerID:   peer,
					TargetPeerID:   dest,
					Mode:           TransferModeMove,
				})
			} else {
				src, ok := firstActive(snap, name, r.ShardID, peer)
				if !ok {
					plan.Unplanned = append(plan.Unplanned, UnplannedShard{
						ShardRef: ref,
						Err:      fmt.Errorf("%w: shard %s has no active replica to drain from", ErrNoActiveReplica, ref),
					})
					continue
				}
				plan.Operations = append(plan.Operations,
					ShardTransferOperation{
						CollectionName: name,
						ShardID:        r.ShardID,
						SourcePeerID:   src,
						TargetPeerID:   dest,
						Mode:           TransferModeCopy,
					},
					ShardTransferOperation{
						CollectionName: name,
						ShardID:        r.ShardID,
						SourcePeerID:   peer,
						TargetPeerID:   peer,
						Mode:           TransferModeDrop,
					},
				)
			}
			load[dest]++
			load[peer]--
		}
	}
	return plan, nil
}

// PlanClear drops every replica hosted on peer without relocating it.
//
// Unless force is set, every affected shard must currently have at least two
// Active replicas; otherwise no plan is produced and the error lists every
// offending shard.
func PlanClear(snap *Snapshot, peer PeerID, scope []string, force bool) (*Plan, error) {
	if err := requirePeer(snap, peer); err != nil {
		return nil, err
	}
	collections, err := scopedCollections(snap, scope)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	var unsafe []string
	for _, name := range collections {
		for _, r := range snap.PeerReplicas(name, peer) {
			if !force && snap.ActiveCount(name, r.ShardID) < 2 {
				unsafe = append(unsafe, ShardRef{CollectionName: name, ShardID: r.ShardID}.String())
				continue
			}
			plan.Operations = append(plan.Operations, ShardTransferOperation{
				CollectionName: name,
				ShardID:        r.ShardID,
				SourcePeerID:   peer,
				TargetPeerID:   peer,
				Mode:           TransferModeDrop,
			})
		}
	}
	if len(unsafe) > 0 {
		return nil, fmt.Errorf("%w: clearing peer %d would leave no active replica of %s",
			ErrInsufficientReplicas, peer, strings.Join(unsafe, ", "))
	}
	return plan, nil
}

// PlanEqualize copies half of the source's Active shards of every scoped
// collection to an empty target, choosing shards by ascending id.
func PlanEqualize(snap *Snapshot, scope []string, source, target PeerID) (*Plan, error) {
	if source == target {
		return nil, fmt.Errorf("%w: source and target are both peer %d", ErrInvalidPeerSelector, source)
	}
	if err := requirePeer(snap, source); err != nil {
		return nil, err
	}
	if err := requirePeer(snap, target); err != nil {
		return nil, err
	}
	collections, err := scopedCollections(snap, scope)
	if err != nil {
		return nil, err
	}

	for _, name := range collections {
		if n := len(snap.PeerReplicas(name, target)); n > 0 {
			return nil, fmt.Errorf("%w: peer %d hosts %d shard(s) of %q", ErrTargetNotEmpty, target, n, name)
		}
	}

	perCollection := make(map[string][]ShardID, len(collections))
	enough := false
	for _, name := range collections {
		var shards []ShardID
		for _, r := range snap.PeerReplicas(name, source) {
			if r.State == ReplicaStateActive {
				shards = append(shards, r.ShardID)
			}
		}
		perCollection[name] = shards
		if len(shards) >= 2 {
			enough = true
		}
	}
	if !enough {
		return nil, fmt.Errorf("%w: peer %d hosts fewer than 2 active shards in every scoped collection", ErrTooFewShardsToEqualize, source)
	}

	plan := &Plan{}
	for _, name := range collections {
		shards := perCollection[name]
		for _, shard := range shards[:len(shards)/2] {
			plan.Operations = append(plan.Operations, ShardTransferOperation{
				CollectionName: name,
				ShardID:        shard,
				SourcePeerID:   source,
				TargetPeerID:   target,
				Mode:           TransferModeCopy,
			})
		}
	}
	return plan, nil
}

// PlanRestoreReplicationFactor adds replicas to every shard whose Active plus
// Partial replica count is below the configured replication factor. Shards at or
// above the factor are reported as already satisfied and never shrunk.
func PlanRestoreReplicationFactor(snap *Snapshot, collection string) (*Plan, error) {
	coll, ok := snap.Collection(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, collection)
	}
	rf := int(coll.ReplicationFactor)
	if rf == 0 {
		rf = 1
	}

	load := newLoadTable(snap)
	plan := &Plan{}
	for _, shard := range snap.ShardIDs(collection) {
		ref := ShardRef{CollectionName: collection, ShardID: shard}

		current := 0
		for _, r := range snap.ShardReplicas(collection, shard) {
			if r.State == ReplicaStateActive || r.State == ReplicaStatePartial {
				current++
			}
		}
		if current >= rf {
			plan.AlreadySatisfied = append(plan.AlreadySatisfied, ref)
			continue
		}

		src, ok := firstActive(snap, collection, shard)
		if !ok {
			plan.Unplanned = append(plan.Unplanned, UnplannedShard{
				ShardRef: ref,
				Err:      fmt.Errorf("%w: shard %s", ErrNoActiveReplica, ref),
			})
			continue
		}

		missing := rf - current
		targets := load.rank(peersWithout(snap, collection, shard))
		if len(targets) > missing {
			targets = targets[:missing]
		}
		for _, t := range targets {
			plan.Operations = append(plan.Operations, ShardTransferOperation{
				CollectionName: collection,
				ShardID:        shard,
				SourcePeerID:   src,
				TargetPeerID:   t,
				Mode:           TransferModeCopy,
			})
			load[t]++
		}
		if len(targets) < missing {
			plan.Unplanned = append(plan.Unplanned, UnplannedShard{
				ShardRef: ref,
				Err: fmt.Errorf("%w: shard %s needs %d more replica(s), only %d peer(s) available",
					ErrNoEligiblePeer, ref, missing, len(targets)),
			})
		}
	}
	return plan, nil
}

// PlanReplicate copies (or moves) shards onto a target peer.
//
// A shard already held by the target in a non-Dead state is already satisfied.
// For a move whose target already holds an Active replica while the source still
// holds one, only the source replica is dropped.
func PlanReplicate(snap *Snapshot, goal ReplicateGoal) (*Plan, error) {
	if goal.Source != nil && *goal.Source == goal.Target {
		return nil, fmt.Errorf("%w: source and target are both peer %d", ErrInvalidPeerSelector, goal.Target)
	}
	if err := requirePeer(snap, goal.Target); err != nil {
		return nil, err
	}
	if goal.Source != nil {
		if err := requirePeer(snap, *goal.Source); err != nil {
			return nil, err
		}
	}
	collections, err := scopedCollections(snap, goal.Collections)
	if err != nil {
		return nil, err
	}

	mode := TransferModeCopy
	if goal.Move {
		mode = TransferModeMove
	}

	plan := &Plan{}
	for _, name := range collections {
		for _, shard := range replicateScope(snap, name, goal) {
			ref := ShardRef{CollectionName: name, ShardID: shard}

			if existing, ok := snap.Replica(name, shard, goal.Target); ok && existing.State != ReplicaStateDead {
				if goal.Move && goal.Source != nil && existing.State == ReplicaStateActive {
					if _, onSource := snap.Replica(name, shard, *goal.Source); onSource {
						plan.Operations = append(plan.Operations, ShardTransferOperation{
							CollectionName: name,
							ShardID:        shard,
							SourcePeerID:   *goal.Source,
							TargetPeerID:   *goal.Source,
							Mode:           TransferModeDrop,
						})
						continue
					}
				}
				plan.AlreadySatisfied = append(plan.AlreadySatisfied, ref)
				continue
			}

			var src PeerID
			if goal.Source != nil {
				r, ok := snap.Replica(name, shard, *goal.Source)
				if !ok || r.State != ReplicaStateActive {
					plan.Unplanned = append(plan.Unplanned, UnplannedShard{
						ShardRef: ref,
						Err:      fmt.Errorf("%w: shard %s has no active replica on peer %d", ErrShardNotOnSource, ref, *goal.Source),
					})
					continue
				}
				src = *goal.Source
			} else {
				var ok bool
				src, ok = firstActive(snap, name, shard, goal.Target)
				if !ok {
					plan.Unplanned = append(plan.Unplanned, UnplannedShard{
						ShardRef: ref,
						Err:      fmt.Errorf("%w: shard %s", ErrNoActiveReplica, ref),
					})
					continue
				}
			}

			plan.Operations = append(plan.Operations, ShardTransferOperation{
				CollectionName: name,
				ShardID:        shard,
				SourcePeerID:   src,
				TargetPeerID:   goal.Target,
				Mode:           mode,
			})
		}
	}
	return plan, nil
}

// replicateScope returns the shards of a collection a replicate goal covers, ascending.
func replicateScope(snap *Snapshot, collection string, goal ReplicateGoal) []ShardID {
	var base []ShardID
	if goal.Source != nil {
		for _, r := range snap.PeerReplicas(collection, *goal.Source) {
			base = append(base, r.ShardID)
		}
	} else {
		base = snap.ShardIDs(collection)
	}
	if len(goal.ShardIDs) == 0 {
		return base
	}

	existing := snap.ShardIDs(collection)
	wanted := slices.Clone(goal.ShardIDs)
	slices.Sort(wanted)
	wanted = slices.Compact(wanted)

	var out []ShardID
	for _, s := range wanted {
		if _, found := slices.BinarySearch(existing, s); found {
			out = append(out, s)
		}
	}
	return out
}

// WithMethod returns a copy of the plan with every operation using method.
func (p *Plan) WithMethod(method TransferMethod) *Plan {
	out := &Plan{
		Operations:       slices.Clone(p.Operations),
		AlreadySatisfied: slices.Clone(p.AlreadySatisfied),
		Unplanned:        slices.Clone(p.Unplanned),
	}
	for i := range out.Operations {
		out.Operations[i].Method = method
	}
	return out
}

// IsEmpty reports whether the plan contains neither operations nor unplanned shards.
func (p *Plan) IsEmpty() bool {
	return len(p.Operations) == 0 && len(p.Unplanned) == 0
}
