package metric

import (
	"bytes"
	"io"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// ContentType is the content type of the text exposition format.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// Exporter renders a registry in the Prometheus text exposition format.
type Exporter struct{}

// ExportString renders the registry and returns the text.
// An empty registry renders as an empty string.
func (e Exporter) ExportString(r *Registry) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Export renders the registry into w.
//
// Metrics without a current reading are skipped. The HELP/TYPE header of a
// metric name is written once, before the first exported sample of that
// name, so a name whose first instance has no reading still gets its header
// from the next instance that does. Registered names that export under the
// same name (x with unit bytes and x_bytes) share one header, whose help
// and type come from the first of them.
func (e Exporter) Export(w io.Writer, r *Registry) error {
	var families []*dto.MetricFamily
	seen := make(map[string]*dto.MetricFamily)

	r.Each(func(id ID, m Metric, md Metadata) {
		v, ok := m.Value()
		if !ok {
			return
		}

		name := ExportedName(id.Name, md)
		mf, ok := seen[name]
		if !ok {
			mf = &dto.MetricFamily{
				Name: proto.String(name),
				Help: proto.String(md.Description),
				Type: metricType(md.Kind),
			}
			seen[name] = mf
			families = append(families, mf)
		}
		mf.Metric = append(mf.Metric, sample(id, mf.GetType(), md.Unit.ScaleToBase(v)))
	})

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// ExportedName returns the name a metric is exported under: the registered
// name with its base unit appended unless the base unit is none. Counters
// and gauges follow the same rule.
func ExportedName(name string, md Metadata) string {
	if base := md.Unit.BaseUnit(); base != BaseNone {
		return name + "_" + base
	}
	return name
}

func metricType(k Kind) *dto.MetricType {
	switch k {
	case Counter:
		return dto.MetricType_COUNTER.Enum()
	case Gauge:
		return dto.MetricType_GAUGE.Enum()
	default:
		return dto.MetricType_UNTYPED.Enum()
	}
}

func sample(id ID, typ dto.MetricType, v float64) *dto.Metric {
	m := &dto.Metric{}
	for _, t := range id.Tags {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(t.Key),
			Value: proto.String(t.Value),
		})
	}
	switch typ {
	case dto.MetricType_COUNTER:
		m.Counter = &dto.Counter{Value: proto.Float64(v)}
	case dto.MetricType_GAUGE:
		m.Gauge = &dto.Gauge{Value: proto.Float64(v)}
	default:
		m.Untyped = &dto.Untyped{Value: proto.Float64(v)}
	}
	return m
}

// Handler serves the registry on GET /metrics.
// The registry is rendered into a buffer under its read lock before any byte
// is written to the client.
func Handler(r *Registry) http.Handler {
	exporter := Exporter{}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var buf bytes.Buffer
		if err := exporter.Export(&buf, r); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	})
}
