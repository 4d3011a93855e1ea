package interceptor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

const shuttingDown = uint32(1) << 31

// ShutdownGate counts in-flight invocations and turns new ones away once
// shutdown has begun. The counter and the shutting-down flag share one
// atomic word: the high bit is the flag, the rest is the count.
type ShutdownGate struct {
	state   atomic.Uint32
	once    sync.Once
	drained chan struct{}
}

// NewShutdownGate returns an open gate.
func NewShutdownGate() *ShutdownGate {
	return &ShutdownGate{drained: make(chan struct{})}
}

// Enter admits an invocation. It returns false once shutdown has begun.
func (g *ShutdownGate) Enter() bool {
	for {
		old := g.state.Load()
		if old&shuttingDown != 0 {
			return false
		}
		if g.state.CompareAndSwap(old, old+1) {
			return true
		}
	}
}

// Exit ends an invocation admitted by Enter.
func (g *ShutdownGate) Exit() {
	for {
		old := g.state.Load()
		next := old - 1
		if g.state.CompareAndSwap(old, next) {
			if next == shuttingDown {
				g.signal()
			}
			return
		}
	}
}

func (g *ShutdownGate) signal() {
	g.once.Do(func() { close(g.drained) })
}

// Shutdown closes the gate and waits until every admitted invocation has
// exited or ctx ends. Calling it again only waits.
func (g *ShutdownGate) Shutdown(ctx context.Context) error {
	for {
		old := g.state.Load()
		if old&shuttingDown != 0 {
			break
		}
		if g.state.CompareAndSwap(old, old|shuttingDown) {
			if old == 0 {
				g.signal()
			}
			break
		}
	}

	select {
	case <-g.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InFlight returns the number of admitted invocations.
func (g *ShutdownGate) InFlight() int {
	return int(g.state.Load() &^ shuttingDown)
}

// IsShuttingDown reports whether the gate is closed.
func (g *ShutdownGate) IsShuttingDown() bool {
	return g.state.Load()&shuttingDown != 0
}

// Intercept admits the invocation through the gate.
func (g *ShutdownGate) Intercept(ic *Context, next Next) (any, error) {
	if !g.Enter() {
		return nil, ejb.NewError(ejb.KindComponentUnavailable, "%s is shutting down", ic.Component())
	}
	defer g.Exit()
	return next(ic)
}
