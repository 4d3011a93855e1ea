package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes a Registry through prometheus/client_golang so that the
// kernel metrics can be served next to the Go runtime and process collectors.
//
// It is an unchecked collector: Describe sends nothing because the set of
// metrics changes as deployments come and go.
type Collector struct {
	registry *Registry
}

// NewCollector creates a collector reading from r.
func NewCollector(r *Registry) *Collector {
	return &Collector{registry: r}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector. Like the exporter, names that
// collide after the unit suffix take help and type from the first of them.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	first := make(map[string]Metadata)
	c.registry.Each(func(id ID, m Metric, md Metadata) {
		v, ok := m.Value()
		if !ok {
			return
		}
		name := ExportedName(id.Name, md)
		head, ok := first[name]
		if !ok {
			head = md
			first[name] = md
		}

		labelNames := make([]string, len(id.Tags))
		labelValues := make([]string, len(id.Tags))
		for i, t := range id.Tags {
			labelNames[i] = t.Key
			labelValues[i] = t.Value
		}

		desc := prometheus.NewDesc(name, head.Description, labelNames, nil)
		pm, err := prometheus.NewConstMetric(desc, valueType(head.Kind), md.Unit.ScaleToBase(v), labelValues...)
		if err != nil {
			ch <- prometheus.NewInvalidMetric(desc, err)
			return
		}
		ch <- pm
	})
}

func valueType(k Kind) prometheus.ValueType {
	switch k {
	case Counter:
		return prometheus.CounterValue
	case Gauge:
		return prometheus.GaugeValue
	default:
		return prometheus.UntypedValue
	}
}
