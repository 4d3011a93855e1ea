package collector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/metric"
)

func TestNaming_Derive(t *testing.T) {
	n := Naming{Prefix: "kernel"}

	tests := []struct {
		name     string
		addr     string
		attr     string
		counter  bool
		wantName string
		wantTags []metric.Tag
	}{
		{
			name:     "subsystem prefix and counter suffix",
			addr:     "/subsystem=ejb3/thread-pool=default",
			attr:     "completed-task-count",
			counter:  true,
			wantName: "kernel_ejb3_completed_task_count_total",
			wantTags: []metric.Tag{{Key: "thread_pool", Value: "default"}},
		},
		{
			name:     "camel case attribute",
			addr:     "/subsystem=jgroups/channel=ee",
			attr:     "healthScore",
			wantName: "kernel_jgroups_health_score",
			wantTags: []metric.Tag{{Key: "channel", Value: "ee"}},
		},
		{
			name:     "deployment mirrored to subdeployment",
			addr:     "/deployment=app.jar/subsystem=ejb3/stateless-session-bean=Calc",
			attr:     "invocations",
			counter:  true,
			wantName: "kernel_ejb3_invocations_total",
			wantTags: []metric.Tag{
				{Key: "deployment", Value: "app.jar"},
				{Key: "stateless_session_bean", Value: "Calc"},
				{Key: "subdeployment", Value: "app.jar"},
			},
		},
		{
			name:     "explicit subdeployment kept",
			addr:     "/deployment=app.ear/subdeployment=ejb.jar/subsystem=ejb3",
			attr:     "x",
			wantName: "kernel_ejb3_x",
			wantTags: []metric.Tag{
				{Key: "deployment", Value: "app.ear"},
				{Key: "subdeployment", Value: "ejb.jar"},
			},
		},
		{
			name:     "no tags",
			addr:     "/subsystem=cache",
			attr:     "number-of-entries",
			wantName: "kernel_cache_number_of_entries",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, tags := n.Derive(management.MustParseAddress(tt.addr), tt.attr, tt.counter)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantTags, tags)
		})
	}
}

func TestNaming_NoPrefix(t *testing.T) {
	name, _ := Naming{}.Derive(management.MustParseAddress("/subsystem=ejb3"), "peakConcurrentUsage", false)
	assert.Equal(t, "ejb3_peak_concurrent_usage", name)
}

func newModel(t *testing.T, active *atomic.Int64) *management.Model {
	t.Helper()
	m := management.NewModel()
	require.NoError(t, m.Register(management.MustParseAddress("/subsystem=ejb3"), management.NewResource("ejb3")))
	require.NoError(t, m.Register(management.MustParseAddress("/subsystem=ejb3/thread-pool=default"), management.NewResource("pool",
		management.AttributeDefinition{Name: "active-count", Description: "Active threads", Type: management.TypeInt, Metric: true,
			Read: func(oc *management.OperationContext) { oc.SetResult(active.Load()) }},
		management.AttributeDefinition{Name: "name", Type: management.TypeString, Metric: true, Read: management.Constant("default")},
		management.AttributeDefinition{Name: "max-threads", Type: management.TypeInt, Read: management.Constant(10)},
		management.AttributeDefinition{Name: "failing", Type: management.TypeLong, Metric: true,
			Read: func(oc *management.OperationContext) { oc.Fail(errors.New("down")) }},
		management.AttributeDefinition{Name: "undefined", Type: management.TypeLong, Metric: true},
	)))
	return m
}

func TestCollector_CollectRegistersNumericRuntimeAttributes(t *testing.T) {
	var active atomic.Int64
	active.Store(2)
	reg := metric.NewRegistry()
	c := New(newModel(t, &active), reg, WithPrefix("kernel"), WithLogger(logger.Nop()))

	r, err := c.Collect(context.Background(), management.Address{})
	require.NoError(t, err)
	assert.Len(t, r.IDs(), 3, "active-count, failing, undefined")

	out, err := metric.Exporter{}.ExportString(reg)
	require.NoError(t, err)
	assert.Equal(t,
		"# HELP kernel_ejb3_active_count Active threads\n"+
			"# TYPE kernel_ejb3_active_count gauge\n"+
			"kernel_ejb3_active_count{thread_pool=\"default\"} 2\n", out)

	active.Store(5)
	out, err = metric.Exporter{}.ExportString(reg)
	require.NoError(t, err)
	assert.Contains(t, out, "kernel_ejb3_active_count{thread_pool=\"default\"} 5\n")
}

func TestCollector_RegistrationUnregister(t *testing.T) {
	var active atomic.Int64
	reg := metric.NewRegistry()
	c := New(newModel(t, &active), reg, WithLogger(logger.Nop()))

	r, err := c.Collect(context.Background(), management.MustParseAddress("/subsystem=ejb3"))
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())

	assert.Equal(t, 3, r.Unregister())
	assert.Equal(t, 0, r.Unregister())
	assert.Equal(t, 0, reg.Len())
}

func TestCollector_UnknownAddress(t *testing.T) {
	c := New(management.NewModel(), metric.NewRegistry(), WithLogger(logger.Nop()))
	_, err := c.Collect(context.Background(), management.MustParseAddress("/subsystem=nope"))
	assert.ErrorIs(t, err, management.ErrUnknownResource)
}

func TestToFloat(t *testing.T) {
	for _, v := range []any{3, int64(3), uint64(3), float32(3), 3.0, "3"} {
		f, ok := toFloat(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, 3.0, f)
	}
	for _, v := range []any{nil, true, "abc", []int{1}} {
		_, ok := toFloat(v)
		assert.False(t, ok, "%v", v)
	}
}
