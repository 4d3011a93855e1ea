package metric

import (
	"slices"
	"sync"
)

// Kind is the Prometheus type of a metric.
type Kind int

const (
	// Gauge is a value that can go up and down.
	Gauge Kind = iota
	// Counter is a cumulative value that only increases.
	Counter
)

// String returns the exposition-format type name.
func (k Kind) String() string {
	switch k {
	case Counter:
		return "counter"
	case Gauge:
		return "gauge"
	default:
		return "untyped"
	}
}

// Metric is a live handle to a numeric reading.
// Value reports false when no reading is currently available, which is
// distinct from a reading of zero.
type Metric interface {
	Value() (float64, bool)
}

// MetricFunc adapts a function to the Metric interface.
type MetricFunc func() (float64, bool)

// Value implements Metric.
func (f MetricFunc) Value() (float64, bool) { return f() }

// Metadata describes a metric. It is immutable once built.
type Metadata struct {
	Name        string
	Description string
	Unit        Unit
	Kind        Kind
	Tags        []Tag
}

// ID returns the metric identity derived from name and tags.
func (m Metadata) ID() ID {
	return NewID(m.Name, m.Tags...)
}

type entry struct {
	id     ID
	metric Metric
}

// Registry holds metric handles keyed by identity and metadata keyed by name.
//
// A single RWMutex guards both maps. Exporters hold the read lock for a
// whole pass so that many metrics are read from one consistent set.
type Registry struct {
	mu       sync.RWMutex
	metrics  map[string]entry
	metadata map[string]Metadata
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		metrics:  make(map[string]entry),
		metadata: make(map[string]Metadata),
	}
}

// Register adds or replaces the handle for md's identity.
// Metadata is kept per metric name; the first registration of a name wins.
func (r *Registry) Register(m Metric, md Metadata) ID {
	id := md.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.metadata[md.Name]; !ok {
		md.Tags = nil
		r.metadata[md.Name] = md
	}
	r.metrics[id.Key()] = entry{id: id, metric: m}
	return id
}

// Unregister removes the metric with the given identity.
// It reports whether a metric was removed.
func (r *Registry) Unregister(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := id.Key()
	if _, ok := r.metrics[key]; !ok {
		return false
	}
	delete(r.metrics, key)

	// Drop the metadata once the last metric of that name is gone.
	for _, e := range r.metrics {
		if e.id.Name == id.Name {
			return true
		}
	}
	delete(r.metadata, id.Name)
	return true
}

// Metadata returns the metadata registered for a metric name.
func (r *Registry) Metadata(name string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md, ok := r.metadata[name]
	return md, ok
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metrics)
}

// Each calls fn for every registered metric in identity order while holding
// the read lock. fn must not call back into the registry's write methods.
func (r *Registry) Each(fn func(id ID, m Metric, md Metadata)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]entry, 0, len(r.metrics))
	for _, e := range r.metrics {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b entry) int { return Compare(a.id, b.id) })

	for _, e := range entries {
		fn(e.id, e.metric, r.metadata[e.id.Name])
	}
}
