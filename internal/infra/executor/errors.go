package executor

import "errors"

var (
	// ErrNotStarted indicates Submit was called before Start.
	ErrNotStarted = errors.New("executor: not started")

	// ErrStopped indicates the pool no longer accepts tasks.
	ErrStopped = errors.New("executor: stopped")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("executor: already started")

	// ErrQueueFull indicates the task queue is at capacity.
	ErrQueueFull = errors.New("executor: queue full")
)
