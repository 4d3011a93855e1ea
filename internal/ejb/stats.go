package ejb

import (
	"sync/atomic"
	"time"
)

// Stats tracks invocation statistics of one component.
type Stats struct {
	invocations atomic.Int64
	execNanos   atomic.Int64
	waitNanos   atomic.Int64
	concurrent  atomic.Int64
	peak        atomic.Int64
	failures    atomic.Int64
}

// Enter records the start of an invocation that waited wait before it
// could run.
func (s *Stats) Enter(wait time.Duration) {
	s.waitNanos.Add(int64(wait))
	n := s.concurrent.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// Exit records the end of an invocation.
func (s *Stats) Exit(exec time.Duration, failed bool) {
	s.concurrent.Add(-1)
	s.invocations.Add(1)
	s.execNanos.Add(int64(exec))
	if failed {
		s.failures.Add(1)
	}
}

// Invocations returns the number of completed invocations.
func (s *Stats) Invocations() int64 { return s.invocations.Load() }

// ExecutionTime returns the total execution time.
func (s *Stats) ExecutionTime() time.Duration { return time.Duration(s.execNanos.Load()) }

// WaitTime returns the total time invocations waited before running.
func (s *Stats) WaitTime() time.Duration { return time.Duration(s.waitNanos.Load()) }

// ConcurrentInvocations returns the number of invocations in progress.
func (s *Stats) ConcurrentInvocations() int64 { return s.concurrent.Load() }

// PeakConcurrentUsage returns the highest concurrency observed.
func (s *Stats) PeakConcurrentUsage() int64 { return s.peak.Load() }

// Failures returns the number of invocations that ended with a
// non-application error.
func (s *Stats) Failures() int64 { return s.failures.Load() }
