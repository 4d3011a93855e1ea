package container

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/ejb/interceptor"
	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/observability/collector"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

var (
	ErrDuplicateDeployment = errors.New("container: deployment already exists")
	ErrUnknownDeployment   = errors.New("container: unknown deployment")
	ErrInvalidComponent    = errors.New("container: invalid component")
)

// Deployment is a named unit of components.
type Deployment struct {
	Name       string
	Components []*ejb.Component
}

// Request is one call to a deployed component.
type Request struct {
	Deployment string
	Component  string
	Method     string
	// SessionID selects the session of a stateful component.
	SessionID string
	View      interceptor.ViewKind
	Args      []any
}

// Container hosts deployments.
type Container struct {
	model     *management.Model
	collector *collector.Collector
	executor  interceptor.Executor
	sessions  interceptor.SessionStore
	log       logger.Logger

	accessTimeout time.Duration

	mu          sync.RWMutex
	deployments map[string]*deployment
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Container) { c.log = l }
}

// WithAccessTimeout bounds the wait for a busy stateful session.
func WithAccessTimeout(d time.Duration) Option {
	return func(c *Container) { c.accessTimeout = d }
}

// New creates a container. Asynchronous methods run on exec; stateful
// session state is kept in sessions.
func New(model *management.Model, coll *collector.Collector, exec interceptor.Executor, sessions interceptor.SessionStore, opts ...Option) *Container {
	c := &Container{
		model:         model,
		collector:     coll,
		executor:      exec,
		sessions:      sessions,
		log:           logger.Default(),
		accessTimeout: interceptor.DefaultAccessTimeout,
		deployments:   make(map[string]*deployment),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "ejb-container")
	return c
}

type deployment struct {
	name         string
	beans        map[string]*bean
	registration *collector.Registration
}

// bean is a deployed component with its views.
type bean struct {
	comp  *ejb.Component
	gate  *interceptor.ShutdownGate
	stats *ejb.Stats
	views map[interceptor.ViewKind]interceptor.Next
}

func (c *Container) newBean(comp *ejb.Component) *bean {
	b := &bean{
		comp:  comp,
		gate:  interceptor.NewShutdownGate(),
		stats: &ejb.Stats{},
	}

	stateful := interceptor.NewStateful(c.sessions)
	stateful.AccessTimeout = c.accessTimeout

	common := []interceptor.Interceptor{
		interceptor.DiagnosticSnapshot{},
		&interceptor.Async{Executor: c.executor},
		interceptor.DiagnosticRestore{},
		interceptor.Logging{},
		b.gate,
		interceptor.Stats{Stats: b.stats},
		interceptor.Permission{},
		interceptor.Transaction{},
		stateful,
	}
	view := func(transform interceptor.Interceptor) interceptor.Next {
		return interceptor.NewChain(append([]interceptor.Interceptor{transform}, common...)...).Then(interceptor.InvokeBean)
	}

	b.views = map[interceptor.ViewKind]interceptor.Next{
		interceptor.ViewBusiness: interceptor.NewChain(common...).Then(interceptor.InvokeBean),
		interceptor.ViewLocal:    view(interceptor.ExceptionTransform{Family: ejb.FamilyLocal}),
		interceptor.ViewRemote:   view(interceptor.ExceptionTransform{Family: ejb.FamilyRemote}),
	}
	return b
}

func validate(d Deployment) error {
	if d.Name == "" {
		return fmt.Errorf("%w: deployment name is required", ErrInvalidComponent)
	}
	seen := make(map[string]bool, len(d.Components))
	for _, comp := range d.Components {
		switch {
		case comp == nil || comp.Name == "":
			return fmt.Errorf("%w: component name is required", ErrInvalidComponent)
		case seen[comp.Name]:
			return fmt.Errorf("%w: duplicate component %s", ErrInvalidComponent, comp.Name)
		}
		seen[comp.Name] = true
		for name, m := range comp.Methods {
			if m == nil || m.Func == nil {
				return fmt.Errorf("%w: %s.%s has no implementation", ErrInvalidComponent, comp.Name, name)
			}
			if m.Name == "" {
				m.Name = name
			}
		}
	}
	return nil
}

// Deploy installs d: builds component views, registers management
// resources and collects their metrics. The components of d are marked
// with the deployment name only once d is installed.
func (c *Container) Deploy(ctx context.Context, d Deployment) error {
	if err := validate(d); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.deployments[d.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDeployment, d.Name)
	}

	dep := &deployment{name: d.Name, beans: make(map[string]*bean, len(d.Components))}
	for _, comp := range d.Components {
		owned := *comp
		owned.Deployment = d.Name
		dep.beans[comp.Name] = c.newBean(&owned)
	}

	addr := deploymentAddress(d.Name)
	if err := c.registerResources(dep); err != nil {
		return err
	}
	reg, err := c.collector.Collect(ctx, addr)
	if err != nil {
		c.model.Remove(addr)
		return fmt.Errorf("collect metrics of %s: %w", d.Name, err)
	}
	dep.registration = reg
	c.deployments[d.Name] = dep
	for _, comp := range d.Components {
		comp.Deployment = d.Name
	}

	c.log.Info("deployed", "deployment", d.Name, "components", len(d.Components), "metrics", len(reg.IDs()))
	return nil
}

// Undeploy removes a deployment. New calls are rejected at once; calls in
// flight are waited for until ctx ends. Resources and metrics are removed
// even when the wait is cut short.
func (c *Container) Undeploy(ctx context.Context, name string) error {
	c.mu.Lock()
	dep, ok := c.deployments[name]
	delete(c.deployments, name)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDeployment, name)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, b := range dep.beans {
		g.Go(func() error {
			if err := b.gate.Shutdown(gctx); err != nil {
				return fmt.Errorf("%s: %d calls still in flight: %w", b.comp, b.gate.InFlight(), err)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	removed := dep.registration.Unregister()
	c.model.Remove(deploymentAddress(name))

	if waitErr != nil {
		c.log.Warn("undeployed with calls in flight", "deployment", name, "error", waitErr)
		return waitErr
	}
	c.log.Info("undeployed", "deployment", name, "metrics", removed)
	return nil
}

// Shutdown undeploys every deployment.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	for _, name := range c.Deployments() {
		if err := c.Undeploy(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Deployments returns the deployment names in sorted order.
func (c *Container) Deployments() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.deployments))
	for n := range c.deployments {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Component returns a deployed component.
func (c *Container) Component(deploymentName, name string) (*ejb.Component, bool) {
	b, ok := c.lookup(deploymentName, name)
	if !ok {
		return nil, false
	}
	return b.comp, true
}

func (c *Container) lookup(deploymentName, name string) (*bean, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dep, ok := c.deployments[deploymentName]
	if !ok {
		return nil, false
	}
	b, ok := dep.beans[name]
	return b, ok
}

// Invoke calls a business method through the requested view. Futures of
// asynchronous methods are returned as *interceptor.Future.
func (c *Container) Invoke(ctx context.Context, req Request) (any, error) {
	b, ok := c.lookup(req.Deployment, req.Component)
	if !ok {
		return nil, viewError(req.View, ejb.NewError(ejb.KindNoSuchEJB, "no component %s/%s", req.Deployment, req.Component))
	}
	method, err := b.comp.Method(req.Method)
	if err != nil {
		return nil, viewError(req.View, err)
	}

	view, ok := b.views[req.View]
	if !ok {
		return nil, ejb.NewError(ejb.KindEJB, "unknown view %d", int(req.View))
	}

	ic := interceptor.NewContext(ctx, b.comp, method, req.Args)
	interceptor.Put(ic, interceptor.ViewKindKey, req.View)
	if req.SessionID != "" {
		interceptor.Put(ic, interceptor.SessionIDKey, req.SessionID)
	}
	return view(ic)
}

// viewError translates an error raised before the chain runs the way the
// view's exception stage would.
func viewError(view interceptor.ViewKind, err error) error {
	switch view {
	case interceptor.ViewLocal:
		return interceptor.ExceptionTransform{Family: ejb.FamilyLocal}.Transform(err)
	case interceptor.ViewRemote:
		return interceptor.ExceptionTransform{Family: ejb.FamilyRemote}.Transform(err)
	default:
		return err
	}
}

// CreateSession starts a session of a stateful component and returns its ID.
func (c *Container) CreateSession(ctx context.Context, deploymentName, name string) (string, error) {
	b, ok := c.lookup(deploymentName, name)
	if !ok {
		return "", ejb.NewError(ejb.KindNoSuchEJB, "no component %s/%s", deploymentName, name)
	}
	if b.comp.Kind != ejb.Stateful {
		return "", ejb.NewError(ejb.KindEJB, "%s is not a stateful component", b.comp)
	}
	if b.gate.IsShuttingDown() {
		return "", ejb.NewError(ejb.KindComponentUnavailable, "%s is shutting down", b.comp)
	}

	inst := ejb.Instance{}
	if b.comp.Init != nil {
		inst = b.comp.Init()
	}
	id := ulid.Make().String()
	if err := c.sessions.Save(ctx, b.comp.String(), id, inst); err != nil {
		return "", ejb.Wrap(ejb.KindEJB, err, "creating session of %s", b.comp)
	}
	c.log.Debug("session created", "component", b.comp.String(), "session_id", id)
	return id, nil
}
