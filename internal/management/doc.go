// Package management implements the kernel's administrative resource model.
//
// Resources form a tree addressed by path elements such as
// /deployment=app.jar/subsystem=ejb3/stateless-session-bean=Calculator.
// Each resource carries attribute definitions; runtime attributes are
// computed on demand by a ReadHandler rather than stored.
//
// Operations are executed against the tree through Model.Execute. Handlers
// never return errors: they record a failure description on the
// OperationContext and the step completes normally, which is how callers
// such as the management HTTP endpoint and the metric collector observe
// unknown attributes, services that are not started and interrupted reads.
package management
