package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// Hook is one cleanup step.
type Hook func(context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Handler coordinates graceful shutdown.
type Handler struct {
	timeout time.Duration
	log     logger.Logger

	mu    sync.Mutex
	hooks []namedHook
	once  sync.Once
	err   error
	done  chan struct{}
}

// NewHandler creates a handler whose hooks share timeout.
func NewHandler(timeout time.Duration, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		timeout: timeout,
		log:     log,
		hooks:   make([]namedHook, 0),
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a hook. Hooks run in reverse order of registration.
func (h *Handler) OnShutdown(name string, hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, namedHook{name: name, fn: hook})
}

// Wait blocks until SIGINT, SIGTERM or ctx is done, then runs the hooks.
func (h *Handler) Wait(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	h.log.Info("shutdown requested", "cause", context.Cause(sigCtx))
	return h.Shutdown()
}

// Shutdown runs every hook once. Later calls return the first result.
// A failing hook does not stop the others.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		defer close(h.done)

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]namedHook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			hk := hooks[i]
			start := time.Now()
			if err := hk.fn(ctx); err != nil {
				h.log.Error("shutdown hook failed", "hook", hk.name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", hk.name, err))
				continue
			}
			h.log.Debug("shutdown hook done", "hook", hk.name, "elapsed", time.Since(start))
		}
		h.err = errors.Join(errs...)
	})
	<-h.done
	return h.err
}

// Done returns a channel closed when shutdown has completed.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
