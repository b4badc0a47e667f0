package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/tourintel/internal/domain/model"
)

func task(key string) Task {
	return model.RefreshTask{Key: key, Query: "bts", EnqueuedAt: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, task("intel:bts:US")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	taskChan := q.Dequeue(ctx)
	got := <-taskChan
	if got.Key != "intel:bts:US" {
		t.Errorf("expected intel:bts:US, got %v", got.Key)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.Enqueue(ctx, task("k1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if err := q.Enqueue(ctx, task("k2")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}

	if err := q.Enqueue(ctx, task("k3")); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull when full, got %v", err)
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if err := q.Enqueue(ctx, task("k1")); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	if err := q.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}

	if err := q.Enqueue(ctx, task("k2")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after close, got %v", err)
	}

	// Queued tasks drain, then the channel closes.
	taskChan := q.Dequeue(ctx)
	got, ok := <-taskChan
	if !ok || got.Key != "k1" {
		t.Errorf("expected drained task k1, got %v ok=%v", got.Key, ok)
	}
	if _, ok := <-taskChan; ok {
		t.Error("expected dequeue channel to close after drain")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()
	numGoroutines := 10
	numTasks := 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numTasks; j++ {
				if err := q.Enqueue(ctx, task(fmt.Sprintf("key-%d-%d", id, j))); err != nil {
					t.Errorf("enqueue failed: %v", err)
				}
			}
		}(i)
	}
	wg.Wait()

	if l := q.Len(ctx); l != numGoroutines*numTasks {
		t.Errorf("expected %d queued, got %d", numGoroutines*numTasks, l)
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	received := 0
	for range q.Dequeue(ctx) {
		received++
	}
	if received != numGoroutines*numTasks {
		t.Errorf("expected %d dequeued, got %d", numGoroutines*numTasks, received)
	}
}
