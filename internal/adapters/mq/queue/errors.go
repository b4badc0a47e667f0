package queue

import "errors"

// Sentinel errors for enqueue outcomes.
var (
	// ErrQueueFull indicates the queue is at capacity and the task was
	// not enqueued.
	ErrQueueFull = errors.New("queue full")

	// ErrClosed indicates the queue no longer accepts tasks.
	ErrClosed = errors.New("queue closed")
)
