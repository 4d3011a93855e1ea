// Package container deploys session bean components and dispatches calls
// to them.
//
// Deploying builds one interceptor chain per view (business, local, remote)
// for every component, registers the component's management resource under
// /deployment=<name>/subsystem=ejb3/<kind>-session-bean=<component> and
// collects its runtime metrics into the metric registry. Undeploying closes
// the components' shutdown gates, waits for in-flight calls and removes
// everything again.
package container
