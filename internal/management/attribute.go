package management

import "github.com/wildfly/wildfly-sub133/internal/telemetry/metric"

// Type is the value type of an attribute.
type Type int

const (
	TypeString Type = iota
	TypeBool
	TypeInt
	TypeLong
	TypeDouble
)

// String returns the model type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeBool:
		return "BOOLEAN"
	case TypeInt:
		return "INT"
	case TypeLong:
		return "LONG"
	case TypeDouble:
		return "DOUBLE"
	default:
		return "UNDEFINED"
	}
}

// Numeric reports whether values of the type can be exported as metrics.
func (t Type) Numeric() bool {
	switch t {
	case TypeInt, TypeLong, TypeDouble:
		return true
	default:
		return false
	}
}

// ReadHandler computes an attribute value. It reports the outcome through
// ctx.SetResult or ctx.Fail. Leaving both untouched yields an undefined
// result.
type ReadHandler func(ctx *OperationContext)

// AttributeDefinition describes one attribute of a resource.
type AttributeDefinition struct {
	Name        string
	Description string
	Type        Type
	// Metric marks a runtime-only attribute computed from live state.
	Metric bool
	// Counter marks a metric that only increases.
	Counter bool
	Unit    metric.Unit
	Read    ReadHandler
}

// IsNumericMetric reports whether the attribute can be exported as a metric.
func (a AttributeDefinition) IsNumericMetric() bool {
	return a.Metric && a.Type.Numeric()
}

// Kind returns the metric kind of the attribute.
func (a AttributeDefinition) Kind() metric.Kind {
	if a.Counter {
		return metric.Counter
	}
	return metric.Gauge
}

func (a AttributeDefinition) describe() map[string]any {
	d := map[string]any{
		"description": a.Description,
		"type":        a.Type.String(),
		"storage":     "configuration",
	}
	if a.Metric {
		d["storage"] = "runtime"
		d["metric"] = true
		d["kind"] = a.Kind().String()
	}
	if a.Unit != metric.UnitNone {
		d["unit"] = a.Unit.String()
	}
	return d
}

// Constant returns a ReadHandler that always yields v.
func Constant(v any) ReadHandler {
	return func(ctx *OperationContext) { ctx.SetResult(v) }
}
