// Package queue implements the two bounded Redis-list queues the pipeline
// hangs together on: raw webhook batches on the intake side and normalized
// events on the egress side.
package queue

import (
	"context"
	"errors"
	"fmt"

	"sol-dex-hub/internal/kv"
)

const (
	// IntakeKey holds raw webhook request bodies awaiting parsing.
	IntakeKey = "list:qn_requests"

	// EventsKey holds serialized events awaiting delivery downstream.
	EventsKey = "list:dex_events"

	// IntakeBound caps the intake queue. Webhook senders retry, so a
	// small buffer is enough to ride out worker restarts.
	IntakeBound = 50

	// EventsBound caps the events queue.
	EventsBound = 50_000
)

// ErrFull is returned when a push would grow a queue past its bound.
var ErrFull = errors.New("queue full")

// Queue is a bounded FIFO backed by a Redis list. Producers push to the
// tail; consumers read a prefix snapshot and trim it off once handled.
type Queue struct {
	store kv.Store
	key   string
	bound int64
}

// NewIntake returns the queue of raw webhook batches.
func NewIntake(store kv.Store) *Queue {
	return &Queue{store: store, key: IntakeKey, bound: IntakeBound}
}

// NewEvents returns the queue of normalized events.
func NewEvents(store kv.Store) *Queue {
	return &Queue{store: store, key: EventsKey, bound: EventsBound}
}

// Key returns the underlying Redis list key.
func (q *Queue) Key() string { return q.key }

// Len returns the current queue depth.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.store.LLen(ctx, q.key)
}

// Push appends values to the queue. Returns ErrFull without pushing
// anything if the result would exceed the bound. The length check and the
// push are not atomic; the bound is a backpressure limit, not an exact
// capacity guarantee.
func (q *Queue) Push(ctx context.Context, values ...string) error {
	if len(values) == 0 {
		return nil
	}

	n, err := q.store.LLen(ctx, q.key)
	if err != nil {
		return fmt.Errorf("len %s: %w", q.key, err)
	}
	if n+int64(len(values)) > q.bound {
		return fmt.Errorf("%w: %s at %d, refusing %d more", ErrFull, q.key, n, len(values))
	}

	if err := q.store.RPush(ctx, q.key, values...); err != nil {
		return fmt.Errorf("push %s: %w", q.key, err)
	}
	return nil
}

// Snapshot returns up to max elements from the head of the queue without
// removing them.
func (q *Queue) Snapshot(ctx context.Context, max int64) ([]string, error) {
	items, err := q.store.LRange(ctx, q.key, 0, max-1)
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", q.key, err)
	}
	return items, nil
}

// Trim removes the first n elements from the queue.
func (q *Queue) Trim(ctx context.Context, n int64) error {
	if n <= 0 {
		return nil
	}
	if err := q.store.LTrim(ctx, q.key, n, -1); err != nil {
		return fmt.Errorf("trim %s: %w", q.key, err)
	}
	return nil
}
