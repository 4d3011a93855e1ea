// Package interceptor implements the invocation chain that wraps every
// business method call.
//
// A chain is an ordered list of Interceptors composed once, when a view of
// a component is built:
//
//	exception transformation (2.x local/remote views only)
//	diagnostic context snapshot
//	asynchronous dispatch
//	diagnostic context restore
//	logging
//	shutdown gate
//	statistics
//	permission check
//	container-managed transaction
//	stateful session
//	bean method
//
// Each stage may proceed by calling next, short-circuit with a result or an
// error, or translate the error returned by next.
package interceptor
