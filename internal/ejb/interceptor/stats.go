package interceptor

import (
	"time"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

// Stats records invocation statistics. Wait time is measured from the
// creation of the invocation, so it includes time queued for async
// dispatch.
type Stats struct {
	Stats *ejb.Stats
}

// Intercept implements Interceptor. A call unwinding from a panic counts
// as failed.
func (s Stats) Intercept(ic *Context, next Next) (any, error) {
	start := time.Now()
	s.Stats.Enter(start.Sub(ic.Created))
	failed := true
	defer func() { s.Stats.Exit(time.Since(start), failed) }()

	res, err := next(ic)
	failed = err != nil && !ic.Component().IsApplicationError(err)
	return res, err
}
