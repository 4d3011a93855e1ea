// Package ejb defines enterprise bean components, their error families and
// the per-call state (identity, transaction) carried in a context.Context.
//
// The invocation chain that runs business methods lives in
// internal/ejb/interceptor; deployment and dispatch live in
// internal/ejb/container.
package ejb
