// Package handler provides the HTTP handlers of kernel-server: health and
// readiness probes, and the JSON management endpoint.
package handler
