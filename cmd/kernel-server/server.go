package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/wildfly/wildfly-sub133/internal/cache"
	"github.com/wildfly/wildfly-sub133/internal/clustering"
	"github.com/wildfly/wildfly-sub133/internal/ejb/container"
	"github.com/wildfly/wildfly-sub133/internal/ejb/remote"
	"github.com/wildfly/wildfly-sub133/internal/infra/buildinfo"
	"github.com/wildfly/wildfly-sub133/internal/infra/confloader"
	"github.com/wildfly/wildfly-sub133/internal/infra/executor"
	"github.com/wildfly/wildfly-sub133/internal/infra/shutdown"
	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/msc"
	"github.com/wildfly/wildfly-sub133/internal/observability/collector"
	"github.com/wildfly/wildfly-sub133/internal/security"
	"github.com/wildfly/wildfly-sub133/internal/server/config"
	"github.com/wildfly/wildfly-sub133/internal/server/httpserver"
	"github.com/wildfly/wildfly-sub133/internal/server/localserver"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/metric"
)

// kernel is the assembled server.
type kernel struct {
	cfg *config.ServerConfig
	log logger.Logger

	model     *management.Model
	registry  *metric.Registry
	collector *collector.Collector
	services  *msc.Container
	pool      *executor.Pool
	container *container.Container
	users     *security.UserStore
	http      *httpserver.Server
	local     *localserver.Server

	ready atomic.Bool
}

func run(ctx context.Context, cfg *config.ServerConfig, opts []confloader.Option) error {
	log, err := logger.New(config.ToLoggerConfig(cfg))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting kernel-server", "version", buildinfo.String(), "config", config.Sanitize(cfg))

	k, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	sd := shutdown.NewHandler(cfg.EJB.ShutdownTimeout+cfg.Server.HTTP.ShutdownTimeout, log)
	k.registerShutdown(sd)

	var listeners sync.WaitGroup
	listeners.Add(1)
	g.Go(func() error {
		defer listeners.Done()
		return k.http.Run(gctx)
	})
	if k.local != nil {
		listeners.Add(1)
		g.Go(func() error {
			defer listeners.Done()
			return k.local.Run(gctx)
		})
	}

	stopped := make(chan struct{})
	go func() {
		listeners.Wait()
		close(stopped)
	}()
	sd.OnShutdown("listeners", func(ctx context.Context) error {
		k.ready.Store(false)
		cancel()
		select {
		case <-stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if w, err := k.watchConfig(opts); err != nil {
		log.Warn("configuration reload disabled", "error", err)
	} else if w != nil {
		g.Go(func() error {
			defer w.Stop()
			w.Run(gctx)
			return nil
		})
	}

	g.Go(func() error { return sd.Wait(gctx) })

	k.ready.Store(true)
	log.Info("kernel-server started", "addr", cfg.Server.HTTP.Addr, "deployments", k.container.Deployments())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("kernel-server stopped with error", "error", err)
		return err
	}
	log.Info("kernel-server stopped")
	return nil
}

// build wires every subsystem. Nothing listens yet when it returns.
func build(ctx context.Context, cfg *config.ServerConfig, log logger.Logger) (*kernel, error) {
	k := &kernel{
		cfg:      cfg,
		log:      log,
		model:    management.NewModel(),
		registry: metric.NewRegistry(),
		services: msc.NewContainer(log),
	}
	k.collector = collector.New(k.model, k.registry,
		collector.WithPrefix(cfg.Metrics.Prefix),
		collector.WithReadTimeout(cfg.Metrics.ReadTimeout),
		collector.WithLogger(log),
	)

	store := cache.New(config.ToCacheConfig(cfg), log)
	if err := cache.Install(k.services, k.model, store); err != nil {
		return nil, fmt.Errorf("install cache: %w", err)
	}
	subsystems := []management.Address{cache.SubsystemAddress}

	if cfg.Clustering.Enabled {
		ch := clustering.New(config.ToChannelConfig(cfg), log)
		if err := clustering.Install(k.services, k.model, ch, msc.ModeActive); err != nil {
			return nil, fmt.Errorf("install channel: %w", err)
		}
		subsystems = append(subsystems, clustering.SubsystemAddress)
	}

	k.pool = executor.New("default", cfg.EJB.AsyncWorkers, cfg.EJB.AsyncQueue, executor.WithLogger(log))
	if err := k.pool.Start(); err != nil {
		return nil, fmt.Errorf("start executor: %w", err)
	}
	if err := container.RegisterThreadPool(k.model, k.pool); err != nil {
		return nil, fmt.Errorf("register thread pool: %w", err)
	}
	subsystems = append(subsystems, container.SubsystemAddress)

	k.container = container.New(k.model, k.collector, k.pool,
		container.NewCacheSessions(k.services, cache.ServiceName(store.Name())),
		container.WithAccessTimeout(cfg.EJB.AccessTimeout),
		container.WithLogger(log),
	)
	if cfg.EJB.SampleDeployment {
		if err := k.container.Deploy(ctx, container.SampleDeployment()); err != nil {
			return nil, fmt.Errorf("deploy sample: %w", err)
		}
	}

	for _, addr := range subsystems {
		reg, err := k.collector.Collect(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", addr, err)
		}
		log.Debug("subsystem metrics collected", "address", addr.String(), "metrics", len(reg.IDs()))
	}

	if path := cfg.Security.UsersFile; path != "" {
		users, err := security.LoadUsers(path)
		if err != nil {
			return nil, err
		}
		k.users = users
		log.Info("users loaded", "file", path, "users", len(users.Names()))
	}

	remotePath, remoteHandler := remote.NewHandler(
		remote.NewService(k.container, log),
		connect.WithInterceptors(remote.NewLoggingInterceptor(log)),
	)

	rc := httpserver.RouterConfig{
		Management:   k.model,
		RemotePath:   remotePath,
		Remote:       remoteHandler,
		Users:        k.users,
		AuthRequired: cfg.Security.AuthRequired,
		RateLimit:    cfg.Server.HTTP.RateLimit,
		RateBurst:    cfg.Server.HTTP.RateBurst,
		Ready:        k.readyCheck,
		Logger:       log,
	}
	if cfg.Metrics.Enabled {
		rc.Registry = k.registry
		rc.RuntimeMetrics = cfg.Metrics.Runtime
		rc.MetricsPrefix = cfg.Metrics.Prefix
	}

	srv, err := httpserver.New(cfg.Server.HTTP, httpserver.NewRouter(rc), log)
	if err != nil {
		return nil, err
	}
	k.http = srv

	if socket := cfg.Server.Local.Socket; socket != "" {
		local := rc
		local.Users = nil
		local.AuthRequired = false
		local.RateLimit = 0
		local.RuntimeMetrics = false
		k.local = localserver.New(socket, httpserver.NewRouter(local), log)
	}
	return k, nil
}

// registerShutdown adds the teardown hooks. They run in reverse order, so
// services stop last.
func (k *kernel) registerShutdown(sd *shutdown.Handler) {
	sd.OnShutdown("services", k.services.Shutdown)
	sd.OnShutdown("executor", k.pool.Stop)
	sd.OnShutdown("deployments", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, k.cfg.EJB.ShutdownTimeout)
		defer cancel()
		return k.container.Shutdown(ctx)
	})
}

func (k *kernel) readyCheck(context.Context) error {
	if !k.ready.Load() {
		return errors.New("server is not started")
	}
	return nil
}

// watchConfig reloads the log level and the users file when they change on
// disk. It returns nil when there is nothing to watch.
func (k *kernel) watchConfig(opts []confloader.Option) (*confloader.Watcher, error) {
	file := confloader.NewLoader(opts...).FilePath()
	usersFile := k.cfg.Security.UsersFile
	if file == "" && usersFile == "" {
		return nil, nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(k.log))
	if err != nil {
		return nil, err
	}
	for _, p := range []string{file, usersFile} {
		if p == "" {
			continue
		}
		if err := w.Watch(p); err != nil {
			w.Stop()
			return nil, err
		}
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(opts)
		if err != nil {
			k.log.Error("configuration reload failed", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			k.log.Info("log level changed", "level", cfg.Log.Level)
		}
		if k.users != nil && cfg.Security.UsersFile != "" {
			if err := k.users.Reload(cfg.Security.UsersFile); err != nil {
				k.log.Error("users reload failed", "error", err)
				return
			}
			k.log.Info("users reloaded", "users", len(k.users.Names()))
		}
	})
	return w, nil
}
