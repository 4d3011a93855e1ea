package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/infra/executor"
	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/metric"
)

// SubsystemAddress is the address of the ejb3 subsystem.
var SubsystemAddress = management.Address{{Key: "subsystem", Value: "ejb3"}}

func deploymentAddress(name string) management.Address {
	return management.Address{{Key: "deployment", Value: name}}
}

// ComponentAddress returns the management address of a deployed component.
func ComponentAddress(deploymentName string, comp *ejb.Component) management.Address {
	return deploymentAddress(deploymentName).
		Child("subsystem", "ejb3").
		Child(comp.Kind.ResourceType(), comp.Name)
}

// SessionCounter is implemented by session stores that can count the
// sessions of a component.
type SessionCounter interface {
	Count(ctx context.Context, component string) (int, error)
}

// registerResources registers the resources of dep. On failure nothing of
// dep is left in the model; a resource that was already at the deployment
// address is not touched.
func (c *Container) registerResources(dep *deployment) error {
	addr := deploymentAddress(dep.name)
	err := c.model.Register(addr, management.NewResource("Deployment "+dep.name,
		management.AttributeDefinition{
			Name: "name", Description: "Deployment name",
			Type: management.TypeString, Read: management.Constant(dep.name),
		},
	))
	if err != nil {
		return fmt.Errorf("register deployment %s: %w", dep.name, err)
	}
	c.model.Ensure(addr.Child("subsystem", "ejb3"), "ejb3 components of "+dep.name)

	for _, b := range dep.beans {
		if err := c.model.Register(ComponentAddress(dep.name, b.comp), c.beanResource(b)); err != nil {
			c.model.Remove(addr)
			return fmt.Errorf("register component %s: %w", b.comp, err)
		}
	}
	return nil
}

func (c *Container) beanResource(b *bean) *management.Resource {
	stats := b.stats
	attrs := []management.AttributeDefinition{
		{
			Name: "component-kind", Description: "Kind of session bean",
			Type: management.TypeString, Read: management.Constant(b.comp.Kind.String()),
		},
		{
			Name: "methods", Description: "Business method names",
			Type: management.TypeString, Read: management.Constant(b.comp.MethodNames()),
		},
		{
			Name: "invocations", Description: "Number of business method invocations",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: func(oc *management.OperationContext) { oc.SetResult(stats.Invocations()) },
		},
		{
			Name: "execution-time", Description: "Time spent executing business methods",
			Type: management.TypeLong, Metric: true, Counter: true, Unit: metric.UnitMilliseconds,
			Read: func(oc *management.OperationContext) { oc.SetResult(stats.ExecutionTime().Milliseconds()) },
		},
		{
			Name: "wait-time", Description: "Time invocations waited before executing",
			Type: management.TypeLong, Metric: true, Counter: true, Unit: metric.UnitMilliseconds,
			Read: func(oc *management.OperationContext) { oc.SetResult(stats.WaitTime().Milliseconds()) },
		},
		{
			Name: "concurrent-invocations", Description: "Invocations currently executing",
			Type: management.TypeInt, Metric: true,
			Read: func(oc *management.OperationContext) { oc.SetResult(stats.ConcurrentInvocations()) },
		},
		{
			Name: "peak-concurrent-invocations", Description: "Highest number of concurrent invocations",
			Type: management.TypeInt, Metric: true,
			Read: func(oc *management.OperationContext) { oc.SetResult(stats.PeakConcurrentUsage()) },
		},
		{
			Name: "failures", Description: "Invocations that ended in a system error",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: func(oc *management.OperationContext) { oc.SetResult(stats.Failures()) },
		},
	}

	if counter, ok := c.sessions.(SessionCounter); ok && b.comp.Kind == ejb.Stateful {
		comp := b.comp.String()
		attrs = append(attrs, management.AttributeDefinition{
			Name: "cache-size", Description: "Number of live sessions",
			Type: management.TypeInt, Metric: true,
			Read: func(oc *management.OperationContext) {
				n, err := counter.Count(oc.Context(), comp)
				switch {
				case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
					oc.Fail(management.Interrupted(err))
					return
				case err != nil:
					oc.Fail(management.AsFailure(oc.Attribute(), err))
					return
				}
				oc.SetResult(n)
			},
		})
	}

	return management.NewResource(b.comp.Kind.String()+" session bean "+b.comp.Name, attrs...)
}

// RegisterThreadPool registers the async executor under
// /subsystem=ejb3/thread-pool=<name>.
func RegisterThreadPool(model *management.Model, pool *executor.Pool) error {
	model.Ensure(SubsystemAddress, "ejb3 subsystem")
	stat := func(f func(executor.Stats) int64) management.ReadHandler {
		return func(oc *management.OperationContext) { oc.SetResult(f(pool.Stats())) }
	}
	res := management.NewResource("Thread pool for asynchronous invocations",
		management.AttributeDefinition{
			Name: "max-threads", Description: "Number of worker goroutines",
			Type: management.TypeInt, Read: stat(func(s executor.Stats) int64 { return int64(s.Workers) }),
		},
		management.AttributeDefinition{
			Name: "queue-length", Description: "Capacity of the task queue",
			Type: management.TypeInt, Read: stat(func(s executor.Stats) int64 { return int64(s.QueueSize) }),
		},
		management.AttributeDefinition{
			Name: "active-count", Description: "Tasks currently running",
			Type: management.TypeInt, Metric: true,
			Read: stat(func(s executor.Stats) int64 { return s.Active }),
		},
		management.AttributeDefinition{
			Name: "queue-size", Description: "Tasks waiting in the queue",
			Type: management.TypeInt, Metric: true,
			Read: stat(func(s executor.Stats) int64 { return int64(s.Queued) }),
		},
		management.AttributeDefinition{
			Name: "largest-thread-count", Description: "Highest number of tasks running at once",
			Type: management.TypeInt, Metric: true,
			Read: stat(func(s executor.Stats) int64 { return s.Largest }),
		},
		management.AttributeDefinition{
			Name: "task-count", Description: "Tasks accepted",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: stat(func(s executor.Stats) int64 { return s.Submitted }),
		},
		management.AttributeDefinition{
			Name: "completed-task-count", Description: "Tasks finished",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: stat(func(s executor.Stats) int64 { return s.Completed }),
		},
		management.AttributeDefinition{
			Name: "rejected-count", Description: "Tasks rejected because the queue was full",
			Type: management.TypeLong, Metric: true, Counter: true,
			Read: stat(func(s executor.Stats) int64 { return s.Rejected }),
		},
	)
	return model.Register(SubsystemAddress.Child("thread-pool", pool.Name()), res)
}
