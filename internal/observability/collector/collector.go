// Package collector turns runtime attributes of the management model into
// registered metrics.
package collector

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/metric"
)

// DefaultReadTimeout bounds one attribute read made during an export.
const DefaultReadTimeout = 5 * time.Second

// Collector walks the management model and registers every numeric
// runtime attribute into a metric registry.
type Collector struct {
	model       *management.Model
	registry    *metric.Registry
	naming      Naming
	readTimeout time.Duration
	log         logger.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the global metric name prefix.
func WithPrefix(prefix string) Option {
	return func(c *Collector) { c.naming.Prefix = prefix }
}

// WithReadTimeout bounds each attribute read.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Collector) { c.readTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Collector) { c.log = l }
}

// New creates a collector.
func New(model *management.Model, registry *metric.Registry, opts ...Option) *Collector {
	c := &Collector{
		model:       model,
		registry:    registry,
		readTimeout: DefaultReadTimeout,
		log:         logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "metrics-collector")
	return c
}

// Naming returns the naming rules in use.
func (c *Collector) Naming() Naming { return c.naming }

// Collect registers every numeric runtime attribute found at or below addr.
func (c *Collector) Collect(ctx context.Context, addr management.Address) (*Registration, error) {
	reg := &Registration{registry: c.registry}
	err := c.model.Walk(addr, func(n management.Node) error {
		for _, attr := range n.Attributes {
			if !attr.IsNumericMetric() {
				continue
			}
			name, tags := c.naming.Derive(n.Address, attr.Name, attr.Counter)
			md := metric.Metadata{
				Name:        name,
				Description: attr.Description,
				Unit:        attr.Unit,
				Kind:        attr.Kind(),
				Tags:        tags,
			}
			h := &handle{c: c, addr: n.Address, attr: attr.Name}
			reg.add(c.registry.Register(h, md))
		}
		return ctx.Err()
	})
	if err != nil {
		reg.Unregister()
		return nil, err
	}
	c.log.Debug("collected metrics", "address", addr.String(), "count", len(reg.ids))
	return reg, nil
}

// handle re-reads the attribute on every Value call.
type handle struct {
	c    *Collector
	addr management.Address
	attr string
}

func (h *handle) Value() (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), h.c.readTimeout)
	defer cancel()

	v, err := h.c.model.ReadAttribute(ctx, h.addr, h.attr)
	if err != nil {
		h.c.log.Debug("metric read failed", "address", h.addr.String(), "attribute", h.attr, "error", err)
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Registration is the set of metrics registered by one Collect call.
type Registration struct {
	registry *metric.Registry

	mu  sync.Mutex
	ids []metric.ID
}

func (r *Registration) add(id metric.ID) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

// IDs returns the identities registered.
func (r *Registration) IDs() []metric.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]metric.ID, len(r.ids))
	copy(out, r.ids)
	return out
}

// Unregister removes every metric of the registration and returns how many
// were still present. Calling it twice is harmless.
func (r *Registration) Unregister() int {
	r.mu.Lock()
	ids := r.ids
	r.ids = nil
	r.mu.Unlock()

	n := 0
	for _, id := range ids {
		if r.registry.Unregister(id) {
			n++
		}
	}
	return n
}
