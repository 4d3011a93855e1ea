package msc

import (
	"context"
	"errors"
	"fmt"

	"github.com/wildfly/wildfly-sub133/internal/management"
)

// ServiceMetric returns a read handler that requires the named service,
// starting it when needed, and reads a value from it.
//
// A read abandoned because the operation context ended is reported as an
// interrupted failure whose cause is the context error.
func ServiceMetric[S Service](c *Container, name string, read func(context.Context, S) (any, error)) management.ReadHandler {
	return func(oc *management.OperationContext) {
		ctx := oc.Context()
		ctrl, err := c.Require(ctx, name)
		if err != nil {
			if isContextErr(err) {
				oc.Fail(management.Interrupted(err))
				return
			}
			oc.Fail(management.ServiceNotStarted(name, err))
			return
		}

		svc, ok := ctrl.Service().(S)
		if !ok {
			oc.Fail(management.ReadFailed(oc.Attribute(), fmt.Errorf("service %s has type %T", name, ctrl.Service())))
			return
		}

		v, err := read(ctx, svc)
		if err != nil {
			if isContextErr(err) {
				oc.Fail(management.Interrupted(err))
				return
			}
			oc.Fail(management.ReadFailed(oc.Attribute(), err))
			return
		}
		oc.SetResult(v)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
