package interceptor

import "github.com/wildfly/wildfly-sub133/internal/telemetry/logger"

// DiagnosticSnapshot records the caller's diagnostic fields so that a
// worker can restore them.
type DiagnosticSnapshot struct{}

// Intercept implements Interceptor.
func (DiagnosticSnapshot) Intercept(ic *Context, next Next) (any, error) {
	Put(ic, DiagnosticContextKey, logger.FieldsFromContext(ic.Context()))
	return next(ic)
}

// DiagnosticRestore reinstates the snapshot taken by DiagnosticSnapshot.
// Fields already present on the worker are cleared first and put back when
// the invocation returns.
type DiagnosticRestore struct{}

// Intercept implements Interceptor.
func (DiagnosticRestore) Intercept(ic *Context, next Next) (any, error) {
	snapshot, ok := Get(ic, DiagnosticContextKey)
	if !ok {
		return next(ic)
	}

	previous := logger.FieldsFromContext(ic.Context())
	ic.SetContext(logger.ReplaceFields(ic.Context(), snapshot))
	defer func() {
		ic.SetContext(logger.ReplaceFields(ic.Context(), previous))
	}()
	return next(ic)
}
