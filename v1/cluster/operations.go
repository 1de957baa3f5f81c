package cluster

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Aleph-Alpha/clusterops/v1/cluster"

// Operation names reported in OperationResult.Operation and span names.
const (
	OperationDrainPeer          = "drain_peer"
	OperationClearPeer          = "clear_peer"
	OperationEqualize           = "equalize_shard_replication"
	OperationRestoreReplication = "restore_shard_replication_factor"
	OperationReplicateShards    = "replicate_shards"
)

// OperationOptions are accepted by every compound operation.
type OperationOptions struct {
	// CollectionNames limits the operation; empty means every collection.
	CollectionNames []string

	// DryRun plans and reports without any mutating call.
	DryRun bool

	// TransferMethod overrides Config.DefaultTransferMethod when set.
	TransferMethod *TransferMethod

	// Progress receives every finished shard result, after the sink set with
	// WithProgress. Optional.
	Progress ProgressSink

	// ClusterName selects a cluster registered with WithCluster; empty means the default.
	ClusterName string
}

// ClearOptions extends OperationOptions for ClearPeer.
type ClearOptions struct {
	OperationOptions

	// Force drops replicas even if that leaves a shard without an Active replica.
	Force bool
}

// ReplicateRequest selects what ReplicateShards copies or moves.
type ReplicateRequest struct {
	// Source is optional; without it each shard is copied from its first Active holder.
	Source *PeerSelector
	Target PeerSelector
	// ShardIDs limits the shards; empty means every shard on the source (or every shard).
	ShardIDs []ShardID
	Move     bool
}

// Operations composes snapshot, planner and executor into the compound cluster
// operations. It keeps no per-call state; concurrent calls are independent.
type Operations struct {
	dir      Directory
	clusters map[string]Directory
	cfg      *Config
	logger   Logger
	observer observability.Observer
	tracer   trace.Tracer
	progress ProgressSink
}

// NewOperations creates the facade on top of the default cluster directory.
func NewOperations(dir Directory, cfg *Config, logger Logger) *Operations {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &Operations{
		dir:      dir,
		clusters: make(map[string]Directory),
		cfg:      cfg,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// WithObserver attaches an observer notified for every remote mutation and poll.
func (o *Operations) WithObserver(observer observability.Observer) *Operations {
	o.observer = observer
	return o
}

// WithProgress sets a sink that receives the results of every operation, in
// addition to OperationOptions.Progress.
func (o *Operations) WithProgress(sink ProgressSink) *Operations {
	o.progress = sink
	return o
}

// WithTracer replaces the tracer obtained from the global provider.
func (o *Operations) WithTracer(tracer trace.Tracer) *Operations {
	o.tracer = tracer
	return o
}

// WithCluster registers an additional named cluster. Must be called before the
// facade is used concurrently.
func (o *Operations) WithCluster(name string, dir Directory) *Operations {
	o.clusters[name] = dir
	return o
}

func (o *Operations) directory(name string) (Directory, error) {
	if name == "" {
		if o.dir == nil {
			return nil, fmt.Errorf("%w: no default cluster configured", ErrClusterNotFound)
		}
		return o.dir, nil
	}
	dir, ok := o.clusters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrClusterNotFound, name)
	}
	return dir, nil
}

func (o *Operations) progressSink(opts OperationOptions) ProgressSink {
	switch {
	case o.progress == nil:
		return opts.Progress
	case opts.Progress == nil:
		return o.progress
	default:
		return MultiSink(o.progress, opts.Progress)
	}
}

func (o *Operations) transferMethod(opts OperationOptions) TransferMethod {
	if opts.TransferMethod != nil {
		return *opts.TransferMethod
	}
	return o.cfg.DefaultTransferMethod
}

// DrainPeer moves every replica off the selected peer.
func (o *Operations) DrainPeer(ctx context.Context, peer PeerSelector, opts OperationOptions) (*OperationResult, error) {
	if err := peer.Validate(); err != nil {
		return nil, err
	}
	return o.run(ctx, OperationDrainPeer, opts, func(snap *Snapshot) (*Plan, error) {
		id, err := peer.Resolve(snap)
		if err != nil {
			return nil, err
		}
		return PlanDrain(snap, id, opts.CollectionNames)
	}), nil
}

// ClearPeer drops every replica on the selected peer without relocating it.
func (o *Operations) ClearPeer(ctx context.Context, peer PeerSelector, opts ClearOptions) (*OperationResult, error) {
	if err := peer.Validate(); err != nil {
		return nil, err
	}
	return o.run(ctx, OperationClearPeer, opts.OperationOptions, func(snap *Snapshot) (*Plan, error) {
		id, err := peer.Resolve(snap)
		if err != nil {
			return nil, err
		}
		return PlanClear(snap, id, opts.CollectionNames, opts.Force)
	}), nil
}

// EqualizeShardReplication copies half of the source's shards to an empty target.
func (o *Operations) EqualizeShardReplication(ctx context.Context, source, target PeerSelector, opts OperationOptions) (*OperationResult, error) {
	if err := source.Validate(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	return o.run(ctx, OperationEqualize, opts, func(snap *Snapshot) (*Plan, error) {
		src, err := source.Resolve(snap)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		dst, err := target.Resolve(snap)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		return PlanEqualize(snap, opts.CollectionNames, src, dst)
	}), nil
}

// RestoreShardReplicationFactor brings every shard of a collection back to its
// configured replication factor. opts.CollectionNames is ignored.
func (o *Operations) RestoreShardReplicationFactor(ctx context.Context, collection string, opts OperationOptions) (*OperationResult, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: collection name is required", ErrInvalidArgument)
	}
	opts.CollectionNames = []string{collection}
	return o.run(ctx, OperationRestoreReplication, opts, func(snap *Snapshot) (*Plan, error) {
		return PlanRestoreReplicationFactor(snap, collection)
	}), nil
}

// RestoreShardReplicationFactorStream is the streaming form of
// RestoreShardReplicationFactor: shards are processed one at a time and each
// shard's results are yielded once it completes, so the caller can wait for
// readiness between batches. Stopping the range stops execution. Failures
// before execution are yielded as a single failed batch without results.
func (o *Operations) RestoreShardReplicationFactorStream(ctx context.Context, collection string, opts OperationOptions) iter.Seq[TransferBatch] {
	return func(yield func(TransferBatch) bool) {
		ctx, span := o.tracer.Start(ctx, OperationRestoreReplication+".stream", trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.Bool("dry_run", opts.DryRun),
		))
		defer span.End()

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(TransferBatch{
				ShardRef:     ShardRef{CollectionName: collection},
				ErrorMessage: err.Error(),
			})
		}

		if collection == "" {
			fail(fmt.Errorf("%w: collection name is required", ErrInvalidArgument))
			return
		}
		dir, err := o.directory(opts.ClusterName)
		if err != nil {
			fail(err)
			return
		}
		snap, err := LoadSnapshot(ctx, dir, []string{collection})
		if err != nil {
			fail(err)
			return
		}
		plan, err := PlanRestoreReplicationFactor(snap, collection)
		if err != nil {
			fail(err)
			return
		}
		plan = plan.WithMethod(o.transferMethod(opts))

		o.logger.Info("streaming replication factor restore", nil, map[string]interface{}{
			"collection":        collection,
			"operations":        len(plan.Operations),
			"already_satisfied": len(plan.AlreadySatisfied),
			"unplanned":         len(plan.Unplanned),
			"dry_run":           opts.DryRun,
		})

		exec := NewExecutor(dir, o.cfg, o.logger, o.observer)
		failed := 0
		for batch := range exec.Stream(ctx, plan, ExecuteOptions{DryRun: opts.DryRun, Progress: o.progressSink(opts)}) {
			if !batch.IsSuccess {
				failed++
			}
			if !yield(batch) {
				return
			}
		}
		if failed > 0 {
			span.SetStatus(codes.Error, fmt.Sprintf("%d shard(s) failed", failed))
		}
	}
}

// ReplicateShards copies (or moves) shards onto the target peer.
func (o *Operations) ReplicateShards(ctx context.Context, req ReplicateRequest, opts OperationOptions) (*OperationResult, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if req.Source != nil {
		if err := req.Source.Validate(); err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
	}
	return o.run(ctx, OperationReplicateShards, opts, func(snap *Snapshot) (*Plan, error) {
		goal := ReplicateGoal{
			Collections: opts.CollectionNames,
			ShardIDs:    req.ShardIDs,
			Move:        req.Move,
		}
		var err error
		if goal.Target, err = req.Target.Resolve(snap); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		if req.Source != nil {
			src, err := req.Source.Resolve(snap)
			if err != nil {
				return nil, fmt.Errorf("source: %w", err)
			}
			goal.Source = &src
		}
		return PlanReplicate(snap, goal)
	}), nil
}

// ReplicateShardsToPeer copies every shard missing on the target from its first Active holder.
func (o *Operations) ReplicateShardsToPeer(ctx context.Context, target PeerSelector, opts OperationOptions) (*OperationResult, error) {
	return o.ReplicateShards(ctx, ReplicateRequest{Target: target}, opts)
}

// EnsureReady waits until a collection of the named cluster is healthy.
// Zero option fields fall back to Config.Readiness.
func (o *Operations) EnsureReady(ctx context.Context, collection string, opts ReadinessOptions, clusterName string) error {
	ctx, span := o.tracer.Start(ctx, "ensure_ready", trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	dir, err := o.directory(clusterName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	base := o.cfg.Readiness
	if opts.PollingInterval > 0 {
		base.PollingInterval = opts.PollingInterval
	}
	if opts.Timeout > 0 {
		base.Timeout = opts.Timeout
	}
	if opts.RequiredConsecutiveGreenResponses > 0 {
		base.RequiredConsecutiveGreenResponses = opts.RequiredConsecutiveGreenResponses
	}
	base.CheckTransfersCompleted = base.CheckTransfersCompleted || opts.CheckTransfersCompleted

	if err := EnsureReady(ctx, dir, collection, base); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

type planFunc func(snap *Snapshot) (*Plan, error)

// run is the shared pipeline: snapshot, plan, execute, aggregate. Every failure
// ends up in the returned result.
func (o *Operations) run(ctx context.Context, operation string, opts OperationOptions, plan planFunc) *OperationResult {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, operation, trace.WithAttributes(
		attribute.StringSlice("collections", opts.CollectionNames),
		attribute.Bool("dry_run", opts.DryRun),
		attribute.String("cluster", opts.ClusterName),
	))
	defer span.End()

	result := &OperationResult{Operation: operation, DryRun: opts.DryRun}
	fields := map[string]interface{}{
		"operation": operation,
		"dry_run":   opts.DryRun,
		"cluster":   opts.ClusterName,
	}

	finish := func(err error) *OperationResult {
		result.Duration = time.Since(start)
		fields["duration_ms"] = result.Duration.Milliseconds()
		if err != nil {
			result.IsSuccess = false
			result.Err = err
			result.ErrorMessage = err.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			o.logger.Error("cluster operation failed", err, fields)
			return result
		}
		result.IsSuccess = true
		span.SetStatus(codes.Ok, "")
		o.logger.Info("cluster operation finished", nil, fields)
		return result
	}

	dir, err := o.directory(opts.ClusterName)
	if err != nil {
		return finish(err)
	}

	snap, err := LoadSnapshot(ctx, dir, opts.CollectionNames)
	if err != nil {
		return finish(err)
	}
	consensus := snap.Consensus()
	o.logger.Debug("cluster snapshot loaded", nil, map[string]interface{}{
		"operation":   operation,
		"peers":       len(snap.peers),
		"collections": len(snap.collections),
		"leader":      consensus.Leader,
		"role":        consensus.Role,
		"term":        consensus.Term,
		"pending_ops": consensus.PendingOperations,
	})

	p, err := plan(snap)
	if err != nil {
		return finish(err)
	}
	p = p.WithMethod(o.transferMethod(opts))
	result.Plan = p
	result.AlreadySatisfied = p.AlreadySatisfied
	result.AlreadySatisfiedCount = len(p.AlreadySatisfied)
	fields["operations"] = len(p.Operations)
	fields["already_satisfied"] = len(p.AlreadySatisfied)
	fields["unplanned"] = len(p.Unplanned)
	span.SetAttributes(
		attribute.Int("operations", len(p.Operations)),
		attribute.Int("already_satisfied", len(p.AlreadySatisfied)),
	)

	exec := NewExecutor(dir, o.cfg, o.logger, o.observer)
	result.Results = exec.Execute(ctx, p, ExecuteOptions{DryRun: opts.DryRun, Progress: o.progressSink(opts)})

	return finish(aggregate(result.Results))
}

// aggregate returns nil if every result succeeded, otherwise an error carrying
// the first failure.
func aggregate(results []ShardTransferResult) error {
	var first error
	failed := 0
	for _, r := range results {
		if r.IsSuccess {
			continue
		}
		failed++
		if first == nil {
			first = r.Err
			if first == nil {
				first = errors.New(r.ErrorMessage)
			}
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d shard operation(s) failed, first: %w", failed, len(results), first)
}
