// Package httpserver serves kernel-server over HTTP: probes, the metrics
// exporter, the JSON management endpoint and remote bean invocation.
//
// Every route runs behind Recover and RequestID. Management and remote
// routes additionally run behind RateLimit, Audit and BasicAuth.
package httpserver
