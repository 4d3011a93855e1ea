// Package connection talks to a kernel-server management endpoint: the
// Prometheus exporter, the JSON management operations and the remote
// invocation service.
package connection
