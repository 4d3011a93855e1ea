package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/ejb/container"
	"github.com/wildfly/wildfly-sub133/internal/infra/shutdown"
	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/server/config"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

func TestParseOverrides(t *testing.T) {
	got, err := parseOverrides([]string{"log.level=debug", " ejb.async_workers = 4 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"log.level": "debug", "ejb.async_workers": "4"}, got)

	_, err = parseOverrides([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseOverrides([]string{"=x"})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log:\n  level: warn\nejb:\n  async_workers: 3\n"), 0o600))

	cfg, err := loadConfig(loaderOptions(file, map[string]any{"ejb.async_queue": "16"}))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3, cfg.EJB.AsyncWorkers)
	assert.Equal(t, 16, cfg.EJB.AsyncQueue)
	assert.Equal(t, config.DefaultHTTPAddr, cfg.Server.HTTP.Addr)

	_, err = loadConfig(loaderOptions("", map[string]any{"ejb.async_workers": "0"}))
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Cache.InMemory = true
	cfg.Server.HTTP.Addr = "127.0.0.1:0"

	k, err := build(ctx, cfg, logger.Nop())
	require.NoError(t, err)

	sd := shutdown.NewHandler(5*time.Second, logger.Nop())
	k.registerShutdown(sd)
	t.Cleanup(func() { _ = sd.Shutdown() })

	assert.Equal(t, []string{container.SampleDeploymentName}, k.container.Deployments())
	assert.Error(t, k.readyCheck(ctx))
	k.ready.Store(true)
	assert.NoError(t, k.readyCheck(ctx))

	res := k.model.Execute(ctx, management.Operation{
		Name:    management.OpReadChildrenNames,
		Address: management.Address{},
		Params:  map[string]any{"child-type": "subsystem"},
	})
	require.False(t, res.Failed(), res.FailureDescription)
	assert.ElementsMatch(t, []string{"cache", "ejb3"}, res.Result)

	workers, err := k.model.ReadAttribute(ctx, container.SubsystemAddress.Child("thread-pool", "default"), "max-threads")
	require.NoError(t, err)
	assert.EqualValues(t, cfg.EJB.AsyncWorkers, workers)

	assert.NotZero(t, k.registry.Len())
}
