package cluster

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func fastConfig() *Config {
	return DefaultConfig().
		WithTransferPollInterval(time.Millisecond).
		WithTransferTimeout(time.Second)
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []observability.OperationContext
}

func (r *recordingObserver) ObserveOperation(ctx observability.OperationContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, ctx)
}

func (r *recordingObserver) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ops))
	for i, o := range r.ops {
		out[i] = o.Operation
	}
	return out
}

func TestExecutor_DryRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := NewMockDirectory(ctrl) // any call fails the test
	sink := NewMockProgressSink(ctrl)
	sink.EXPECT().Progress(gomock.Any(), gomock.Any()).Times(3)

	plan := &Plan{
		Operations: []ShardTransferOperation{
			op("a", 0, 1, 2, TransferModeMove),
			op("a", 1, 1, 1, TransferModeDrop),
		},
		Unplanned: []UnplannedShard{{ShardRef: ShardRef{CollectionName: "a", ShardID: 2}, Err: ErrNoActiveReplica}},
	}

	results := NewExecutor(dir, fastConfig(), nil, nil).Execute(context.Background(), plan, ExecuteOptions{DryRun: true, Progress: sink})
	require.Len(t, results, 3)
	for _, r := range results[:2] {
		assert.True(t, r.IsSuccess)
		assert.True(t, r.DryRun)
	}
	assert.False(t, results[2].IsSuccess)
	assert.ErrorIs(t, results[2].Err, ErrNoActiveReplica)
}

func TestExecutor_Move(t *testing.T) {
	ctx := context.Background()
	plan := &Plan{Operations: []ShardTransferOperation{op("a", 0, 1, 2, TransferModeMove)}}

	t.Run("copies, awaits and drops the source", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := NewMockDirectory(ctrl)
		obs := &recordingObserver{}

		gomock.InOrder(
			dir.EXPECT().RequestShardTransfer(gomock.Any(), "a", ShardID(0), PeerID(1), PeerID(2), TransferMethodStreamRecords).Return(nil),
			dir.EXPECT().GetCollectionShardLayout(gomock.Any(), "a").Return(&ShardLayout{
				Replicas:  []ShardReplica{active(0, 1), replica(0, 2, ReplicaStatePartial)},
				Transfers: []ShardTransfer{{ShardID: 0, From: 1, To: 2}},
			}, nil),
			dir.EXPECT().GetCollectionShardLayout(gomock.Any(), "a").Return(&ShardLayout{
				Replicas: []ShardReplica{active(0, 1), active(0, 2)},
			}, nil),
			dir.EXPECT().DropShardReplica(gomock.Any(), "a", ShardID(0), PeerID(1)).Return(nil),
		)

		results := NewExecutor(dir, fastConfig(), nil, obs).Execute(ctx, plan, ExecuteOptions{})
		require.Len(t, results, 1)
		assert.True(t, results[0].IsSuccess)
		assert.Equal(t, TransferModeMove, results[0].Mode)
		assert.Equal(t, []string{"replicate_shard", "await_transfer", "drop_replica"}, obs.names())
	})

	t.Run("failed copy leaves the source", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := NewMockDirectory(ctrl)
		boom := errors.New("peer unreachable")

		dir.EXPECT().RequestShardTransfer(gomock.Any(), "a", ShardID(0), PeerID(1), PeerID(2), gomock.Any()).Return(boom)

		results := NewExecutor(dir, fastConfig(), nil, nil).Execute(ctx, plan, ExecuteOptions{})
		require.Len(t, results, 1)
		assert.False(t, results[0].IsSuccess)
		assert.ErrorIs(t, results[0].Err, ErrTransferFailed)
		assert.ErrorIs(t, results[0].Err, boom)
		assert.Contains(t, results[0].ErrorMessage, "peer unreachable")
	})

	t.Run("dead target leaves the source", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := NewMockDirectory(ctrl)

		dir.EXPECT().RequestShardTransfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		dir.EXPECT().GetCollectionShardLayout(gomock.Any(), "a").Return(&ShardLayout{
			Replicas: []ShardReplica{active(0, 1), replica(0, 2, ReplicaStateDead)},
		}, nil)

		results := NewExecutor(dir, fastConfig(), nil, nil).Execute(ctx, plan, ExecuteOptions{})
		assert.ErrorIs(t, results[0].Err, ErrTransferFailed)
	})

	t.Run("timeout leaves the source", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := NewMockDirectory(ctrl)

		dir.EXPECT().RequestShardTransfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		dir.EXPECT().GetCollectionShardLayout(gomock.Any(), "a").Return(&ShardLayout{
			Replicas: []ShardReplica{active(0, 1), replica(0, 2, ReplicaStatePartial)},
		}, nil).MinTimes(1)

		cfg := fastConfig().WithTransferTimeout(30 * time.Millisecond)
		results := NewExecutor(dir, cfg, nil, nil).Execute(ctx, plan, ExecuteOptions{})
		assert.ErrorIs(t, results[0].Err, ErrTransferTimeout)
	})
}

func TestExecutor_CopyAwaitsOnlyWhenRequired(t *testing.T) {
	ctx := context.Background()
	plan := &Plan{Operations: []ShardTransferOperation{op("a", 0, 1, 2, TransferModeCopy)}}

	t.Run("fire and forget", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := NewMockDirectory(ctrl)
		dir.EXPECT().RequestShardTransfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		results := NewExecutor(dir, fastConfig(), nil, nil).Execute(ctx, plan, ExecuteOptions{})
		assert.True(t, results[0].IsSuccess)
	})

	t.Run("await transfers", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		dir := NewMockDirectory(ctrl)
		dir.EXPECT().RequestShardTransfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		dir.EXPECT().GetCollectionShardLayout(gomock.Any(), "a").Return(&ShardLayout{
			Replicas: []ShardReplica{active(0, 1), active(0, 2)},
		}, nil)

		results := NewExecutor(dir, fastConfig().WithAwaitTransfers(true), nil, nil).Execute(ctx, plan, ExecuteOptions{})
		assert.True(t, results[0].IsSuccess)
	})
}

func TestExecutor_FailureSkipsLaterStepsOfShard(t *testing.T) {
	fake := newFakeDirectory(3).addCollection("a", 2, map[ShardID][]PeerID{0: {1, 2}, 1: {1}})
	fake.failTransfer[ShardRef{CollectionName: "a", ShardID: 0}] = errors.New("disk full")

	plan := &Plan{Operations: []ShardTransferOperation{
		op("a", 0, 2, 3, TransferModeCopy),
		op("a", 0, 1, 1, TransferModeDrop),
		op("a", 1, 1, 2, TransferModeCopy),
	}}

	results := NewExecutor(fake, fastConfig(), nil, nil).Execute(context.Background(), plan, ExecuteOptions{})
	require.Len(t, results, 3)
	assert.False(t, results[0].IsSuccess)
	assert.False(t, results[1].IsSuccess)
	assert.Contains(t, results[1].ErrorMessage, "skipped")
	assert.True(t, results[2].IsSuccess, "other shards continue")

	assert.Empty(t, fake.drops)
	assert.Equal(t, []ShardID{0, 1}, fake.shardsOn("a", 1))
}

func TestExecutor_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := NewMockDirectory(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := &Plan{Operations: []ShardTransferOperation{
		op("a", 0, 1, 2, TransferModeCopy),
		op("a", 1, 1, 2, TransferModeMove),
	}}
	results := NewExecutor(dir, fastConfig(), nil, nil).Execute(ctx, plan, ExecuteOptions{})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.IsSuccess)
		assert.ErrorIs(t, r.Err, ErrOperationCancelled)
		assert.True(t, IsCancelledError(r.Err))
	}
}

func TestExecutor_DryRunIgnoresCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := NewMockDirectory(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := &Plan{Operations: []ShardTransferOperation{
		op("a", 0, 1, 2, TransferModeCopy),
		op("a", 1, 1, 2, TransferModeMove),
	}}
	results := NewExecutor(dir, fastConfig(), nil, nil).Execute(ctx, plan, ExecuteOptions{DryRun: true})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.IsSuccess)
		assert.True(t, r.DryRun)
		assert.NoError(t, r.Err)
	}
}

// slowDirectory delays transfers and tracks how many run at once.
type slowDirectory struct {
	*fakeDirectory
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowDirectory) RequestShardTransfer(ctx context.Context, collectionName string, shardID ShardID, from, to PeerID, method TransferMethod) error {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return s.fakeDirectory.RequestShardTransfer(ctx, collectionName, shardID, from, to, method)
}

func TestExecutor_BoundedFanOut(t *testing.T) {
	placement := make(map[ShardID][]PeerID)
	var ops []ShardTransferOperation
	for s := ShardID(0); s < 8; s++ {
		placement[s] = []PeerID{1}
		ops = append(ops, op("a", s, 1, 2, TransferModeCopy))
	}
	dir := &slowDirectory{fakeDirectory: newFakeDirectory(2).addCollection("a", 2, placement)}

	results := NewExecutor(dir, fastConfig().WithMaxConcurrentTransfers(2), nil, nil).
		Execute(context.Background(), &Plan{Operations: ops}, ExecuteOptions{})

	require.Len(t, results, 8)
	for i, r := range results {
		assert.True(t, r.IsSuccess)
		assert.Equal(t, ShardID(i), r.ShardID, "results keep plan order")
	}
	assert.LessOrEqual(t, dir.peak.Load(), int32(2))
	assert.Len(t, dir.shardsOn("a", 2), 8)
}

func TestExecutor_Stream(t *testing.T) {
	fake := newFakeDirectory(2).addCollection("a", 2, map[ShardID][]PeerID{0: {1}, 1: {1}, 2: {1}})
	plan := &Plan{
		Operations: []ShardTransferOperation{
			op("a", 0, 1, 2, TransferModeCopy),
			op("a", 1, 1, 2, TransferModeCopy),
			op("a", 2, 1, 2, TransferModeCopy),
		},
		Unplanned: []UnplannedShard{{ShardRef: ShardRef{CollectionName: "a", ShardID: 3}, Err: ErrNoActiveReplica}},
	}
	exec := NewExecutor(fake, fastConfig(), nil, nil)

	t.Run("stops when the consumer stops", func(t *testing.T) {
		var batches []TransferBatch
		for b := range exec.Stream(context.Background(), plan, ExecuteOptions{}) {
			batches = append(batches, b)
			break
		}
		require.Len(t, batches, 1)
		assert.True(t, batches[0].IsSuccess)
		assert.Len(t, fake.transfers, 1)
	})

	t.Run("yields every shard then unplanned ones", func(t *testing.T) {
		fake := newFakeDirectory(2).addCollection("a", 2, map[ShardID][]PeerID{0: {1}, 1: {1}, 2: {1}})
		var refs []ShardID
		var last TransferBatch
		for b := range NewExecutor(fake, fastConfig(), nil, nil).Stream(context.Background(), plan, ExecuteOptions{}) {
			refs = append(refs, b.ShardID)
			last = b
		}
		assert.Equal(t, []ShardID{0, 1, 2, 3}, refs)
		assert.False(t, last.IsSuccess)
		assert.NotEmpty(t, last.ErrorMessage)
	})
}

func TestExecutor_LogsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := NewMockDirectory(ctrl)
	log := NewMockLogger(ctrl)

	dir.EXPECT().DropShardReplica(gomock.Any(), "a", ShardID(0), PeerID(1)).Return(errors.New("gone"))
	log.EXPECT().Debug("starting shard operation", nil, gomock.Any()).Times(1)
	log.EXPECT().Error("shard operation failed", gomock.Not(nil), gomock.Any()).Times(1)

	plan := &Plan{Operations: []ShardTransferOperation{op("a", 0, 1, 1, TransferModeDrop)}}
	results := NewExecutor(dir, fastConfig(), log, nil).Execute(context.Background(), plan, ExecuteOptions{})
	assert.ErrorIs(t, results[0].Err, ErrTransferFailed)
}
