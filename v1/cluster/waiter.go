package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ReadinessOptions controls EnsureReady. Zero fields fall back to DefaultReadinessOptions.
type ReadinessOptions struct {
	// Delay between two health polls.
	PollingInterval time.Duration `yaml:"polling_interval" env:"CLUSTER_READINESS_POLLING_INTERVAL"`

	// Overall deadline, independent of the timeout of each remote call.
	Timeout time.Duration `yaml:"timeout" env:"CLUSTER_READINESS_TIMEOUT"`

	// Number of consecutive healthy polls required.
	RequiredConsecutiveGreenResponses int `yaml:"required_consecutive_green_responses" env:"CLUSTER_READINESS_REQUIRED_GREEN"`

	// Also require zero ongoing shard transfers.
	CheckTransfersCompleted bool `yaml:"check_transfers_completed" env:"CLUSTER_READINESS_CHECK_TRANSFERS"`
}

// DefaultReadinessOptions polls every second for up to 30 seconds and accepts one green response.
func DefaultReadinessOptions() ReadinessOptions {
	return ReadinessOptions{
		PollingInterval:                   time.Second,
		Timeout:                           30 * time.Second,
		RequiredConsecutiveGreenResponses: 1,
		CheckTransfersCompleted:           false,
	}
}

func (o ReadinessOptions) withDefaults() ReadinessOptions {
	def := DefaultReadinessOptions()
	if o.PollingInterval <= 0 {
		o.PollingInterval = def.PollingInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.RequiredConsecutiveGreenResponses <= 0 {
		o.RequiredConsecutiveGreenResponses = def.RequiredConsecutiveGreenResponses
	}
	return o
}

func (o ReadinessOptions) healthy(h *CollectionHealth) bool {
	if h == nil || h.Status != CollectionStatusGreen || !h.OptimizerOK {
		return false
	}
	return !o.CheckTransfersCompleted || h.OngoingTransfers == 0
}

// EnsureReady polls the health of a collection until it reports healthy for the
// required number of consecutive polls. Consecutive polls may be answered by
// different peers. A failed or unhealthy poll resets the streak.
//
// It returns an error wrapping ErrReadinessTimeout when the deadline passes and
// ErrOperationCancelled when ctx ends first. A missing collection fails at once.
func EnsureReady(ctx context.Context, dir Directory, collection string, opts ReadinessOptions) error {
	opts = opts.withDefaults()

	deadlineCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var (
		last    *CollectionHealth
		lastErr error
		streak  int
	)
	for {
		health, err := dir.GetCollectionHealth(deadlineCtx, collection)
		switch {
		case ctx.Err() != nil:
			return fmt.Errorf("%w: waiting for collection %q: %w", ErrOperationCancelled, collection, context.Cause(ctx))
		case deadlineCtx.Err() != nil:
			return readinessTimeout(collection, opts, last, lastErr)
		case errors.Is(err, ErrCollectionNotFound):
			return err
		case err != nil:
			lastErr = err
			streak = 0
		case opts.healthy(health):
			last, lastErr = health, nil
			streak++
			if streak >= opts.RequiredConsecutiveGreenResponses {
				return nil
			}
		default:
			last, lastErr = health, nil
			streak = 0
		}

		wait := time.NewTimer(opts.PollingInterval)
		select {
		case <-deadlineCtx.Done():
			wait.Stop()
			if ctx.Err() != nil {
				return fmt.Errorf("%w: waiting for collection %q: %w", ErrOperationCancelled, collection, context.Cause(ctx))
			}
			return readinessTimeout(collection, opts, last, lastErr)
		case <-wait.C:
		}
	}
}

func readinessTimeout(collection string, opts ReadinessOptions, last *CollectionHealth, lastErr error) error {
	if lastErr != nil {
		return fmt.Errorf("%w: collection %q not ready after %s: last poll failed: %w", ErrReadinessTimeout, collection, opts.Timeout, lastErr)
	}
	if last == nil {
		return fmt.Errorf("%w: collection %q not ready after %s: no health observed", ErrReadinessTimeout, collection, opts.Timeout)
	}
	return fmt.Errorf("%w: collection %q not ready after %s: status=%s optimizer_ok=%t ongoing_transfers=%d",
		ErrReadinessTimeout, collection, opts.Timeout, last.Status, last.OptimizerOK, last.OngoingTransfers)
}
