package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sol-dex-hub/internal/kv"
)

func TestQueue_PushSnapshotTrim(t *testing.T) {
	ctx := context.Background()
	q := NewIntake(kv.NewMemory())

	if err := q.Push(ctx, "one", "two", "three"); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	n, err := q.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Len = %d, want 3", n)
	}

	got, err := q.Snapshot(ctx, 2)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("Snapshot = %v", got)
	}

	// snapshot does not consume
	n, _ = q.Len(ctx)
	if n != 3 {
		t.Errorf("Len after Snapshot = %d, want 3", n)
	}

	if err := q.Trim(ctx, 2); err != nil {
		t.Fatalf("Trim failed: %v", err)
	}
	got, _ = q.Snapshot(ctx, 10)
	if len(got) != 1 || got[0] != "three" {
		t.Errorf("after Trim = %v", got)
	}
}

func TestQueue_PushFull(t *testing.T) {
	ctx := context.Background()
	q := NewIntake(kv.NewMemory())

	for i := 0; i < IntakeBound; i++ {
		if err := q.Push(ctx, fmt.Sprintf("body-%d", i)); err != nil {
			t.Fatalf("Push %d failed: %v", i, err)
		}
	}

	err := q.Push(ctx, "overflow")
	if !errors.Is(err, ErrFull) {
		t.Fatalf("Push over bound = %v, want ErrFull", err)
	}

	// the rejected value must not have been pushed
	n, _ := q.Len(ctx)
	if n != IntakeBound {
		t.Errorf("Len = %d, want %d", n, IntakeBound)
	}
}

func TestQueue_PushBatchOverBound(t *testing.T) {
	ctx := context.Background()
	q := NewIntake(kv.NewMemory())

	for i := 0; i < IntakeBound-1; i++ {
		if err := q.Push(ctx, "x"); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	// a multi-value push that would cross the bound is rejected whole
	if err := q.Push(ctx, "a", "b"); !errors.Is(err, ErrFull) {
		t.Fatalf("batch Push = %v, want ErrFull", err)
	}
	n, _ := q.Len(ctx)
	if n != IntakeBound-1 {
		t.Errorf("Len = %d, want %d", n, IntakeBound-1)
	}

	// a fitting push still succeeds
	if err := q.Push(ctx, "a"); err != nil {
		t.Fatalf("fitting Push failed: %v", err)
	}
}

func TestQueue_TrimZero(t *testing.T) {
	ctx := context.Background()
	q := NewEvents(kv.NewMemory())

	if err := q.Push(ctx, "evt"); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := q.Trim(ctx, 0); err != nil {
		t.Fatalf("Trim(0) failed: %v", err)
	}
	n, _ := q.Len(ctx)
	if n != 1 {
		t.Errorf("Len after Trim(0) = %d, want 1", n)
	}
}
