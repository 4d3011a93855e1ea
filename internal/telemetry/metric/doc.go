// Package metric holds the runtime metric registry of the kernel and its
// Prometheus text exporter.
//
// This package implements metrics registration and exposition:
//
//   - id.go: metric identity (name + sorted tag set)
//   - unit.go: measurement units and base-unit scaling
//   - registry.go: the registry of live metric handles
//   - exporter.go: text exposition format for /metrics
//   - collector.go: bridge to prometheus/client_golang for /metrics/runtime
//
// Handles registered here are not frozen values: every export pass re-reads
// them, and a handle may report that it has no reading at all.
package metric
