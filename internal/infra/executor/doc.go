// Package executor provides the fixed-size worker pool that runs
// asynchronous bean invocations.
//
// Submit never blocks: when the bounded queue is full the task is rejected
// with ErrQueueFull. Stop drains queued tasks before returning.
package executor
