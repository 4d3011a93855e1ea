package interceptor

import (
	"fmt"
	"runtime/debug"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// Logging logs every error that is not an application error of the
// component, exactly once. Panics in later stages are recovered into
// container errors.
type Logging struct{}

// Intercept implements Interceptor.
func (Logging) Intercept(ic *Context, next Next) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = ejb.Wrap(ejb.KindEJB, fmt.Errorf("panic: %v", r), "invocation of %s failed", describe(ic))
			logger.L(ic.Context()).Error("invocation panicked",
				"component", ic.Component().String(),
				"method", methodName(ic),
				"invocation_id", ic.InvocationID(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	res, err = next(ic)
	if err != nil && !ic.Component().IsApplicationError(err) {
		logger.L(ic.Context()).Error("invocation failed",
			"component", ic.Component().String(),
			"method", methodName(ic),
			"invocation_id", ic.InvocationID(),
			"error", err,
		)
	}
	return res, err
}

func methodName(ic *Context) string {
	if ic.Method == nil {
		return ""
	}
	return ic.Method.Name
}

func describe(ic *Context) string {
	return ic.Component().String() + "." + methodName(ic)
}
