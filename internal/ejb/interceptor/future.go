package interceptor

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrCancelled is returned by Get on a cancelled future.
	ErrCancelled = errors.New("interceptor: invocation cancelled")
	// ErrTimeout is returned by GetTimeout when the result is not ready.
	ErrTimeout = errors.New("interceptor: timed out waiting for result")
)

type futureState int

const (
	futurePending futureState = iota
	futureDone
	futureFailed
	futureCancelled
)

// Future is the caller's handle on an asynchronous invocation.
type Future struct {
	flag      *CancellationFlag
	interrupt context.CancelFunc

	mu     sync.Mutex
	state  futureState
	result any
	err    error
	done   chan struct{}
}

func newFuture(flag *CancellationFlag, interrupt context.CancelFunc) *Future {
	return &Future{
		flag:      flag,
		interrupt: interrupt,
		done:      make(chan struct{}),
	}
}

func (f *Future) finish(state futureState, v any, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != futurePending {
		return
	}
	f.state, f.result, f.err = state, v, err
	close(f.done)
}

func (f *Future) complete(v any) { f.finish(futureDone, v, nil) }
func (f *Future) fail(err error) { f.finish(futureFailed, nil, err) }
func (f *Future) cancelled()     { f.finish(futureCancelled, nil, ErrCancelled) }

// Get waits for the result or for ctx to end. A finished future returns
// its result even when ctx has already ended.
func (f *Future) Get(ctx context.Context) (any, error) {
	select {
	case <-f.done:
	default:
		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

// GetTimeout waits at most d, rounded up to a whole millisecond.
func (f *Future) GetTimeout(d time.Duration) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), roundUpMillis(d))
	defer cancel()
	v, err := f.Get(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrTimeout
	}
	return v, err
}

func roundUpMillis(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return ((d + time.Millisecond - 1) / time.Millisecond) * time.Millisecond
}

// Cancel cancels the invocation if it has not started. If it has started
// and mayInterrupt is set, the worker's context is cancelled so the bean can
// stop cooperatively; Cancel still returns false in that case.
func (f *Future) Cancel(mayInterrupt bool) bool {
	if f.flag.Cancel(mayInterrupt) {
		f.cancelled()
		return true
	}
	if mayInterrupt && f.interrupt != nil {
		f.interrupt()
	}
	return false
}

// IsDone reports whether the invocation reached a terminal state.
func (f *Future) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether the invocation was cancelled before running.
func (f *Future) IsCancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == futureCancelled
}

// Done returns a channel closed when the invocation reaches a terminal state.
func (f *Future) Done() <-chan struct{} { return f.done }
