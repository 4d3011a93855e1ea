// Package msc is a small service container: named services with a start
// mode, observable state and on-demand start.
package msc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// Service is a unit with a lifecycle.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Mode controls when a service is started.
type Mode int

const (
	// ModeOnDemand starts the service the first time it is required.
	ModeOnDemand Mode = iota
	// ModeActive starts the service as soon as it is installed.
	ModeActive
	// ModeNever keeps the service down.
	ModeNever
)

func (m Mode) String() string {
	switch m {
	case ModeOnDemand:
		return "ON_DEMAND"
	case ModeActive:
		return "ACTIVE"
	case ModeNever:
		return "NEVER"
	default:
		return "UNKNOWN"
	}
}

// State is the lifecycle state of an installed service.
type State int

const (
	StateDown State = iota
	StateStarting
	StateUp
	StateStartFailed
	StateStopping
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateDown:
		return "DOWN"
	case StateStarting:
		return "STARTING"
	case StateUp:
		return "UP"
	case StateStartFailed:
		return "START_FAILED"
	case StateStopping:
		return "STOPPING"
	case StateRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrServiceNotFound  = errors.New("msc: service not found")
	ErrDuplicateService = errors.New("msc: service already installed")
	ErrServiceRemoved   = errors.New("msc: service removed")
	ErrModeNever        = errors.New("msc: service mode is NEVER")
)

// Controller manages one installed service.
type Controller struct {
	name string
	svc  Service
	log  logger.Logger

	mu      sync.Mutex
	mode    Mode
	state   State
	err     error
	changed chan struct{}
}

// Name returns the service name.
func (c *Controller) Name() string { return c.name }

// Service returns the managed service.
func (c *Controller) Service() Service { return c.svc }

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Err returns the error of the last failed start.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// setState must be called with c.mu held.
func (c *Controller) setState(s State) {
	c.state = s
	close(c.changed)
	c.changed = make(chan struct{})
}

// SetMode changes the mode. ACTIVE starts a down service, NEVER stops an
// up one.
func (c *Controller) SetMode(mode Mode) {
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()

	switch mode {
	case ModeActive:
		c.start()
	case ModeNever:
		if err := c.stop(context.Background()); err != nil {
			c.log.Warn("service stop failed", "service", c.name, "error", err)
		}
	}
}

// start moves a down or failed service to STARTING and runs Start in the
// background. It is a no-op in any other state.
func (c *Controller) start() {
	c.mu.Lock()
	if c.mode == ModeNever || (c.state != StateDown && c.state != StateStartFailed) {
		c.mu.Unlock()
		return
	}
	c.err = nil
	c.setState(StateStarting)
	c.mu.Unlock()

	go func() {
		err := c.svc.Start(context.Background())

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state != StateStarting {
			return
		}
		if err != nil {
			c.err = err
			c.setState(StateStartFailed)
			c.log.Error("service start failed", "service", c.name, "error", err)
			return
		}
		c.setState(StateUp)
		c.log.Debug("service started", "service", c.name)
	}()
}

func (c *Controller) stop(ctx context.Context) error {
	if err := c.waitSettled(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state != StateUp {
		c.mu.Unlock()
		return nil
	}
	c.setState(StateStopping)
	c.mu.Unlock()

	err := c.svc.Stop(ctx)

	c.mu.Lock()
	c.setState(StateDown)
	c.mu.Unlock()
	return err
}

// waitSettled waits until the service leaves STARTING.
func (c *Controller) waitSettled(ctx context.Context) error {
	for {
		c.mu.Lock()
		state, changed := c.state, c.changed
		c.mu.Unlock()
		if state != StateStarting {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// AwaitUp blocks until the service is up, failed to start, was removed,
// or ctx ends.
func (c *Controller) AwaitUp(ctx context.Context) error {
	for {
		c.mu.Lock()
		state, mode, changed, startErr := c.state, c.mode, c.changed, c.err
		c.mu.Unlock()

		switch state {
		case StateUp:
			return nil
		case StateStartFailed:
			return fmt.Errorf("msc: %s failed to start: %w", c.name, startErr)
		case StateRemoved:
			return fmt.Errorf("%w: %s", ErrServiceRemoved, c.name)
		case StateDown:
			if mode == ModeNever {
				return fmt.Errorf("%w: %s", ErrModeNever, c.name)
			}
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Container holds installed services.
type Container struct {
	log logger.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
	order       []string
}

// NewContainer creates an empty container.
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.Default()
	}
	return &Container{
		log:         log.With("component", "msc"),
		controllers: make(map[string]*Controller),
	}
}

// Install registers svc under name. An ACTIVE service starts right away.
func (c *Container) Install(name string, svc Service, mode Mode) (*Controller, error) {
	c.mu.Lock()
	if _, ok := c.controllers[name]; ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateService, name)
	}
	ctrl := &Controller{
		name:    name,
		svc:     svc,
		log:     c.log,
		mode:    mode,
		state:   StateDown,
		changed: make(chan struct{}),
	}
	c.controllers[name] = ctrl
	c.order = append(c.order, name)
	c.mu.Unlock()

	if mode == ModeActive {
		ctrl.start()
	}
	return ctrl, nil
}

// Controller returns the controller of an installed service.
func (c *Container) Controller(name string) (*Controller, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctrl, ok := c.controllers[name]
	return ctrl, ok
}

// Require makes sure the named service is up, starting it if it is down
// or its previous start failed, and waits for it.
func (c *Container) Require(ctx context.Context, name string) (*Controller, error) {
	ctrl, ok := c.Controller(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	ctrl.start()
	if err := ctrl.AwaitUp(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// Remove stops the named service and uninstalls it.
func (c *Container) Remove(ctx context.Context, name string) error {
	c.mu.Lock()
	ctrl, ok := c.controllers[name]
	if ok {
		delete(c.controllers, name)
		c.order = slices.DeleteFunc(c.order, func(n string) bool { return n == name })
	}
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	err := ctrl.stop(ctx)

	ctrl.mu.Lock()
	ctrl.setState(StateRemoved)
	ctrl.mu.Unlock()
	return err
}

// Names returns installed service names in install order.
func (c *Container) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}

// Shutdown stops every service in reverse install order. All services are
// attempted; errors are joined.
func (c *Container) Shutdown(ctx context.Context) error {
	names := c.Names()
	var errs []error
	for i := len(names) - 1; i >= 0; i-- {
		ctrl, ok := c.Controller(names[i])
		if !ok {
			continue
		}
		if err := ctrl.stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", names[i], err))
		}
	}
	return errors.Join(errs...)
}
