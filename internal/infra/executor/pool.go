package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// Default sizing.
const (
	DefaultWorkers   = 10
	DefaultQueueSize = 1000
)

// Pool runs submitted tasks on a fixed set of goroutines.
type Pool struct {
	name      string
	workers   int
	queueSize int
	log       logger.Logger

	tasks chan func()
	wg    sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	active    atomic.Int64
	largest   atomic.Int64
	submitted atomic.Int64
	completed atomic.Int64
	rejected  atomic.Int64
	panicked  atomic.Int64
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used to report task panics.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// New creates a pool. Non-positive sizes fall back to the defaults.
func New(name string, workers, queueSize int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	p := &Pool{
		name:      name,
		workers:   workers,
		queueSize: queueSize,
		log:       logger.Default(),
		tasks:     make(chan func(), queueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("executor", name)
	return p
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Start launches the workers.
func (p *Pool) Start() error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.started = true
	return nil
}

// Submit queues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return ErrNotStarted
	}
	if p.stopped {
		return ErrStopped
	}

	select {
	case p.tasks <- task:
		p.submitted.Add(1)
		return nil
	default:
		p.rejected.Add(1)
		return fmt.Errorf("%w: %s", ErrQueueFull, p.name)
	}
}

// Stop stops accepting tasks and waits for queued and running tasks to
// finish, or for ctx to end.
func (p *Pool) Stop(ctx context.Context) error {
	p.lifecycleMu.Lock()
	if !p.started || p.stopped {
		p.lifecycleMu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.tasks)
	p.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("executor %s: %w", p.name, ctx.Err())
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	n := p.active.Add(1)
	for {
		l := p.largest.Load()
		if n <= l || p.largest.CompareAndSwap(l, n) {
			break
		}
	}
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			p.log.Error("task panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
		p.active.Add(-1)
		p.completed.Add(1)
	}()
	task()
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers   int   `json:"workers"`
	QueueSize int   `json:"queue_size"`
	Queued    int   `json:"queued"`
	Active    int64 `json:"active"`
	Largest   int64 `json:"largest"`
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
	Rejected  int64 `json:"rejected"`
	Panicked  int64 `json:"panicked"`
}

// Stats returns the current statistics.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		QueueSize: p.queueSize,
		Queued:    len(p.tasks),
		Active:    p.active.Load(),
		Largest:   p.largest.Load(),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
		Panicked:  p.panicked.Load(),
	}
}
