package interceptor

import "sync/atomic"

const (
	stateWaiting uint32 = iota
	stateStarted
	stateStartedFlagSet
	stateCancelled
	stateCancelledFlagSet
)

// CancellationFlag arbitrates between a task starting and someone
// cancelling it. Whichever transition wins the CAS decides the outcome;
// the cancelled states are terminal.
type CancellationFlag struct {
	state atomic.Uint32
}

// NewCancellationFlag returns a flag in the waiting state.
func NewCancellationFlag() *CancellationFlag {
	return &CancellationFlag{}
}

// Cancel attempts to cancel the task. It returns true when the task will
// not run. A waiting task moves to cancelled; a later Cancel(true) raises
// the flag on it. Once the task has started Cancel returns false; with
// setFlag it also raises the flag the running task can observe.
func (f *CancellationFlag) Cancel(setFlag bool) bool {
	for {
		old := f.state.Load()
		var next uint32
		switch old {
		case stateWaiting:
			next = stateCancelled
		case stateCancelled:
			if !setFlag {
				return true
			}
			next = stateCancelledFlagSet
		case stateCancelledFlagSet:
			return true
		case stateStarted:
			if !setFlag {
				return false
			}
			next = stateStartedFlagSet
		default:
			return false
		}
		if f.state.CompareAndSwap(old, next) {
			return next == stateCancelled || next == stateCancelledFlagSet
		}
	}
}

// RunIfNotCancelled moves a waiting task to started. It returns false when
// the task was cancelled first and must not run.
func (f *CancellationFlag) RunIfNotCancelled() bool {
	return f.state.CompareAndSwap(stateWaiting, stateStarted)
}

// IsCancelFlagSet reports whether cancellation with the flag was requested.
func (f *CancellationFlag) IsCancelFlagSet() bool {
	s := f.state.Load()
	return s == stateStartedFlagSet || s == stateCancelledFlagSet
}

// IsCancelled reports whether the task was cancelled before it started.
func (f *CancellationFlag) IsCancelled() bool {
	s := f.state.Load()
	return s == stateCancelled || s == stateCancelledFlagSet
}
