package cluster

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/Aleph-Alpha/clusterops/v1/observability"
	"golang.org/x/sync/errgroup"
)

const component = "cluster"

// ExecuteOptions controls a single plan execution.
type ExecuteOptions struct {
	// DryRun reports every operation as planned without issuing mutating calls.
	DryRun bool

	// Progress receives every finished result. Optional.
	Progress ProgressSink
}

// Executor runs plans against a Directory.
//
// Operations are grouped by shard. Groups run concurrently up to
// Config.MaxConcurrentTransfers; operations of one group run in plan order, so a
// shard never has two transfers in flight.
type Executor struct {
	dir      Directory
	cfg      Config
	logger   Logger
	observer observability.Observer
}

// NewExecutor creates an executor. logger and observer may be nil.
func NewExecutor(dir Directory, cfg *Config, logger Logger, observer observability.Observer) *Executor {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Executor{
		dir:      dir,
		cfg:      cfg.normalized(),
		logger:   logger,
		observer: observer,
	}
}

type transferGroup struct {
	ref ShardRef
	ops []ShardTransferOperation
}

// groupOperations groups operations by shard, keeping the plan order of both
// the groups (by first occurrence) and the operations inside a group.
func groupOperations(ops []ShardTransferOperation) []transferGroup {
	index := make(map[ShardRef]int)
	var groups []transferGroup
	for _, op := range ops {
		ref := op.Ref()
		i, ok := index[ref]
		if !ok {
			i = len(groups)
			index[ref] = i
			groups = append(groups, transferGroup{ref: ref})
		}
		groups[i].ops = append(groups[i].ops, op)
	}
	return groups
}

// Execute runs every operation of the plan and returns one result per operation
// in plan order, followed by one failed result per unplanned shard. Failures are
// never returned as errors.
func (e *Executor) Execute(ctx context.Context, plan *Plan, opts ExecuteOptions) []ShardTransferResult {
	groups := groupOperations(plan.Operations)
	perGroup := make([][]ShardTransferResult, len(groups))

	var g errgroup.Group
	g.SetLimit(e.cfg.MaxConcurrentTransfers)
	for i, grp := range groups {
		if !opts.DryRun && ctx.Err() != nil {
			perGroup[i] = e.cancelGroup(ctx, grp.ops, opts)
			continue
		}
		g.Go(func() error {
			perGroup[i] = e.runGroup(ctx, grp, opts)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]ShardTransferResult, 0, len(plan.Operations)+len(plan.Unplanned))
	for _, rs := range perGroup {
		results = append(results, rs...)
	}
	for _, u := range plan.Unplanned {
		res := unplannedResult(u, opts.DryRun)
		e.report(ctx, opts.Progress, res)
		results = append(results, res)
	}
	return results
}

// Stream runs the plan one shard at a time, yielding each shard's results after
// it completes. Execution stops when the consumer stops ranging. Unplanned
// shards are yielded last.
func (e *Executor) Stream(ctx context.Context, plan *Plan, opts ExecuteOptions) iter.Seq[TransferBatch] {
	return func(yield func(TransferBatch) bool) {
		for _, grp := range groupOperations(plan.Operations) {
			if !yield(newBatch(grp.ref, e.runGroup(ctx, grp, opts))) {
				return
			}
		}
		for _, u := range plan.Unplanned {
			res := unplannedResult(u, opts.DryRun)
			e.report(ctx, opts.Progress, res)
			if !yield(newBatch(u.ShardRef, []ShardTransferResult{res})) {
				return
			}
		}
	}
}

func newBatch(ref ShardRef, results []ShardTransferResult) TransferBatch {
	b := TransferBatch{ShardRef: ref, Results: results, IsSuccess: true}
	for _, r := range results {
		if !r.IsSuccess {
			b.IsSuccess = false
			if b.ErrorMessage == "" {
				b.ErrorMessage = r.ErrorMessage
			}
		}
	}
	return b
}

func (e *Executor) runGroup(ctx context.Context, grp transferGroup, opts ExecuteOptions) []ShardTransferResult {
	results := make([]ShardTransferResult, 0, len(grp.ops))
	for i, op := range grp.ops {
		if opts.DryRun {
			res := newResult(op, nil, true)
			e.report(ctx, opts.Progress, res)
			results = append(results, res)
			continue
		}
		if ctx.Err() != nil {
			return append(results, e.cancelGroup(ctx, grp.ops[i:], opts)...)
		}

		awaitAfter := e.cfg.AwaitTransfers || i < len(grp.ops)-1
		err := e.runOperation(ctx, op, awaitAfter)
		res := newResult(op, err, false)
		e.report(ctx, opts.Progress, res)
		results = append(results, res)

		if err != nil {
			// later steps on this shard depend on this one
			for _, rest := range grp.ops[i+1:] {
				skipped := newResult(rest, fmt.Errorf("%w: skipped after failed %s of shard %s", ErrTransferFailed, op.Mode, grp.ref), false)
				e.report(ctx, opts.Progress, skipped)
				results = append(results, skipped)
			}
			return results
		}
	}
	return results
}

func (e *Executor) cancelGroup(ctx context.Context, ops []ShardTransferOperation, opts ExecuteOptions) []ShardTransferResult {
	out := make([]ShardTransferResult, 0, len(ops))
	for _, op := range ops {
		res := newResult(op, fmt.Errorf("%w: %s of shard %s not started: %w", ErrOperationCancelled, op.Mode, op.Ref(), context.Cause(ctx)), false)
		e.report(ctx, opts.Progress, res)
		out = append(out, res)
	}
	return out
}

func (e *Executor) runOperation(ctx context.Context, op ShardTransferOperation, awaitAfter bool) error {
	fields := map[string]interface{}{
		"collection": op.CollectionName,
		"shard":      op.ShardID,
		"source":     op.SourcePeerID,
		"target":     op.TargetPeerID,
		"mode":       op.Mode.String(),
		"method":     op.Method.String(),
	}
	e.logger.Debug("starting shard operation", nil, fields)

	switch op.Mode {
	case TransferModeCopy:
		if err := e.requestTransfer(ctx, op); err != nil {
			return err
		}
		if awaitAfter {
			return e.awaitTransfer(ctx, op)
		}
		return nil

	case TransferModeMove:
		if err := e.requestTransfer(ctx, op); err != nil {
			return err
		}
		if err := e.awaitTransfer(ctx, op); err != nil {
			e.logger.Warn("move aborted before dropping the source replica", err, fields)
			return err
		}
		return e.dropReplica(ctx, op, op.SourcePeerID)

	case TransferModeDrop:
		return e.dropReplica(ctx, op, op.TargetPeerID)

	default:
		return fmt.Errorf("%w: unknown transfer mode %d", ErrTransferFailed, op.Mode)
	}
}

func (e *Executor) requestTransfer(ctx context.Context, op ShardTransferOperation) error {
	start := time.Now()
	// an issued request is allowed to finish even if ctx is cancelled meanwhile
	err := e.dir.RequestShardTransfer(context.WithoutCancel(ctx), op.CollectionName, op.ShardID, op.SourcePeerID, op.TargetPeerID, op.Method)
	e.observe("replicate_shard", op, start, err)
	if err != nil {
		return fmt.Errorf("%w: replicate shard %s from peer %d to peer %d: %w",
			ErrTransferFailed, op.Ref(), op.SourcePeerID, op.TargetPeerID, err)
	}
	return nil
}

func (e *Executor) dropReplica(ctx context.Context, op ShardTransferOperation, peer PeerID) error {
	start := time.Now()
	err := e.dir.DropShardReplica(context.WithoutCancel(ctx), op.CollectionName, op.ShardID, peer)
	e.observe("drop_replica", op, start, err)
	if err != nil {
		return fmt.Errorf("%w: drop replica of shard %s on peer %d: %w", ErrTransferFailed, op.Ref(), peer, err)
	}
	return nil
}

// awaitTransfer polls the shard layout until the target holds an Active replica
// and no transfer of the shard is in flight.
func (e *Executor) awaitTransfer(ctx context.Context, op ShardTransferOperation) error {
	start := time.Now()
	deadline := time.NewTimer(e.cfg.TransferTimeout)
	defer deadline.Stop()

	var lastErr error
	for {
		done, err := e.transferCompleted(ctx, op)
		if err == nil && done {
			e.observe("await_transfer", op, start, nil)
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrTransferFailed) || errors.Is(err, ErrCollectionNotFound) {
				e.observe("await_transfer", op, start, err)
				return err
			}
			lastErr = err
			e.logger.Warn("failed to poll shard transfer", err, map[string]interface{}{
				"collection": op.CollectionName,
				"shard":      op.ShardID,
			})
		}

		wait := time.NewTimer(e.cfg.TransferPollInterval)
		select {
		case <-ctx.Done():
			wait.Stop()
			err := fmt.Errorf("%w: awaiting transfer of shard %s to peer %d: %w", ErrOperationCancelled, op.Ref(), op.TargetPeerID, context.Cause(ctx))
			e.observe("await_transfer", op, start, err)
			return err
		case <-deadline.C:
			wait.Stop()
			err := fmt.Errorf("%w: shard %s to peer %d after %s", ErrTransferTimeout, op.Ref(), op.TargetPeerID, e.cfg.TransferTimeout)
			if lastErr != nil {
				err = fmt.Errorf("%w (last poll error: %w)", err, lastErr)
			}
			e.observe("await_transfer", op, start, err)
			return err
		case <-wait.C:
		}
	}
}

func (e *Executor) transferCompleted(ctx context.Context, op ShardTransferOperation) (bool, error) {
	layout, err := e.dir.GetCollectionShardLayout(ctx, op.CollectionName)
	if err != nil {
		return false, err
	}

	for _, t := range layout.Transfers {
		if t.ShardID == op.ShardID {
			return false, nil
		}
	}

	for _, r := range layout.Replicas {
		if r.ShardID != op.ShardID || r.PeerID != op.TargetPeerID {
			continue
		}
		switch r.State {
		case ReplicaStateActive:
			return true, nil
		case ReplicaStateDead:
			return false, fmt.Errorf("%w: replica of shard %s on peer %d is dead after transfer", ErrTransferFailed, op.Ref(), op.TargetPeerID)
		default:
			return false, nil
		}
	}
	// the transfer has not registered yet
	return false, nil
}

func (e *Executor) observe(operation string, op ShardTransferOperation, start time.Time, err error) {
	if e.observer == nil {
		return
	}
	e.observer.ObserveOperation(observability.OperationContext{
		Component:   component,
		Operation:   operation,
		Resource:    op.CollectionName,
		SubResource: fmt.Sprintf("%d", op.ShardID),
		Duration:    time.Since(start),
		Error:       err,
		Metadata: map[string]interface{}{
			"source": op.SourcePeerID,
			"target": op.TargetPeerID,
			"mode":   op.Mode.String(),
			"method": op.Method.String(),
		},
	})
}

func (e *Executor) report(ctx context.Context, sink ProgressSink, res ShardTransferResult) {
	if !res.IsSuccess {
		e.logger.Error("shard operation failed", res.Err, resultFields(res))
	}
	if sink != nil {
		sink.Progress(ctx, res)
	}
}

func newResult(op ShardTransferOperation, err error, dryRun bool) ShardTransferResult {
	res := ShardTransferResult{
		IsSuccess:      err == nil,
		Err:            err,
		CollectionName: op.CollectionName,
		ShardID:        op.ShardID,
		SourcePeerID:   op.SourcePeerID,
		TargetPeerID:   op.TargetPeerID,
		Mode:           op.Mode,
		DryRun:         dryRun,
	}
	if err != nil {
		res.ErrorMessage = err.Error()
	}
	return res
}

func unplannedResult(u UnplannedShard, dryRun bool) ShardTransferResult {
	err := u.Err
	if err == nil {
		err = fmt.Errorf("%w: shard %s could not be planned", ErrTransferFailed, u.ShardRef)
	}
	return ShardTransferResult{
		IsSuccess:      false,
		Err:            err,
		ErrorMessage:   err.Error(),
		CollectionName: u.CollectionName,
		ShardID:        u.ShardID,
		DryRun:         dryRun,
	}
}

func resultFields(res ShardTransferResult) map[string]interface{} {
	return map[string]interface{}{
		"collection": res.CollectionName,
		"shard":      res.ShardID,
		"source":     res.SourcePeerID,
		"target":     res.TargetPeerID,
		"mode":       res.Mode.String(),
		"dry_run":    res.DryRun,
	}
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}
