package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/msc"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

func startedStore(t *testing.T) *Store {
	t.Helper()
	s := New(DefaultConfig("test"), logger.Nop())
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestStore_NotStarted(t *testing.T) {
	s := New(DefaultConfig("test"), logger.Nop())
	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.ErrorIs(t, s.Put(context.Background(), "k", []byte("v")), ErrNotStarted)
}

func TestStore_PutGetDelete(t *testing.T) {
	s := startedStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "session/a", []byte("1")))
	require.NoError(t, s.Put(ctx, "session/b", []byte("2")))
	require.NoError(t, s.Put(ctx, "other/c", []byte("3")))

	v, err := s.Get(ctx, "session/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	_, err = s.Get(ctx, "session/zzz")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Len(ctx, "session/")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	found, err := s.Delete(ctx, "session/a")
	require.NoError(t, err)
	assert.True(t, found)
	found, err = s.Delete(ctx, "session/a")
	require.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, Stats{Hits: 1, Misses: 1, Stores: 3, Removes: 1}, s.Stats())
}

func TestStore_StopIsIdempotent(t *testing.T) {
	s := New(DefaultConfig("test"), logger.Nop())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}

func TestStore_OnDisk(t *testing.T) {
	cfg := DefaultConfig("disk")
	cfg.InMemory = false
	cfg.Dir = t.TempDir()
	cfg.GCInterval = time.Hour

	s := New(cfg, logger.Nop())
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Stop(ctx))

	require.NoError(t, s.Start(ctx))
	defer s.Stop(ctx)
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestStore_OnDiskRequiresDir(t *testing.T) {
	cfg := DefaultConfig("disk")
	cfg.InMemory = false
	assert.Error(t, New(cfg, logger.Nop()).Start(context.Background()))
}

func TestResource_MetricsStartCacheOnDemand(t *testing.T) {
	c := msc.NewContainer(logger.Nop())
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })
	model := management.NewModel()
	s := New(DefaultConfig("sessions"), logger.Nop())
	require.NoError(t, Install(c, model, s))

	ctrl, ok := c.Controller(ServiceName("sessions"))
	require.True(t, ok)
	assert.Equal(t, msc.StateDown, ctrl.State())

	ctx := context.Background()
	v, err := model.ReadAttribute(ctx, Address("sessions"), "stores")
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
	assert.Equal(t, msc.StateUp, ctrl.State())

	require.NoError(t, s.Put(ctx, "a", []byte("x")))
	v, err = model.ReadAttribute(ctx, Address("sessions"), "number-of-entries")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	v, err = model.ReadAttribute(ctx, Address("sessions"), "stores")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestResource_DisabledCacheReportsNotStarted(t *testing.T) {
	c := msc.NewContainer(logger.Nop())
	model := management.NewModel()
	require.NoError(t, Install(c, model, New(DefaultConfig("off"), logger.Nop())))
	ctrl, _ := c.Controller(ServiceName("off"))
	ctrl.SetMode(msc.ModeNever)

	_, err := model.ReadAttribute(context.Background(), Address("off"), "hits")
	assert.ErrorIs(t, err, management.ErrServiceNotStarted)
	assert.ErrorIs(t, err, msc.ErrModeNever)
}
