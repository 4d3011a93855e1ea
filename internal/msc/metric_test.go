package msc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

func metricModel(t *testing.T, c *Container) (*management.Model, management.Address) {
	t.Helper()
	m := management.NewModel()
	addr := management.MustParseAddress("/subsystem=cache")
	require.NoError(t, m.Register(addr, management.NewResource("cache",
		management.AttributeDefinition{
			Name: "starts", Type: management.TypeLong, Metric: true,
			Read: ServiceMetric(c, "cache", func(_ context.Context, s *fakeService) (any, error) {
				return int64(s.starts.Load()), nil
			}),
		},
	)))
	return m, addr
}

func TestServiceMetric_StartsOnDemandService(t *testing.T) {
	c := NewContainer(logger.Nop())
	svc := &fakeService{}
	_, err := c.Install("cache", svc, ModeOnDemand)
	require.NoError(t, err)

	m, addr := metricModel(t, c)
	v, err := m.ReadAttribute(context.Background(), addr, "starts")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestServiceMetric_StartFailure(t *testing.T) {
	c := NewContainer(logger.Nop())
	_, err := c.Install("cache", &fakeService{startErr: errors.New("disk full")}, ModeOnDemand)
	require.NoError(t, err)

	m, addr := metricModel(t, c)
	_, err = m.ReadAttribute(context.Background(), addr, "starts")
	assert.ErrorIs(t, err, management.ErrServiceNotStarted)
}

func TestServiceMetric_Interrupted(t *testing.T) {
	c := NewContainer(logger.Nop())
	gate := make(chan struct{})
	defer close(gate)
	_, err := c.Install("cache", &fakeService{gate: gate}, ModeOnDemand)
	require.NoError(t, err)

	m, addr := metricModel(t, c)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.ReadAttribute(ctx, addr, "starts")
	assert.ErrorIs(t, err, management.ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestServiceMetric_MissingService(t *testing.T) {
	c := NewContainer(logger.Nop())
	m, addr := metricModel(t, c)
	_, err := m.ReadAttribute(context.Background(), addr, "starts")
	assert.ErrorIs(t, err, management.ErrServiceNotStarted)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
