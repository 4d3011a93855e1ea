package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wildfly/wildfly-sub133/internal/infra/tlsroots"
	"github.com/wildfly/wildfly-sub133/internal/server/config"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// Server is the HTTP listener of kernel-server.
type Server struct {
	cfg      config.HTTPConfig
	http     *http.Server
	reloader *tlsroots.CertReloader
	log      logger.Logger
}

// New creates a server. With TLS configured the key pair is loaded now
// and reloaded whenever the files change.
func New(cfg config.HTTPConfig, h http.Handler, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Default()
	}
	s := &Server{
		cfg: cfg,
		log: log.With("listener", "http"),
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Slog(log).Handler(), slog.LevelWarn),
		},
	}
	if cfg.TLSEnabled() {
		r, err := tlsroots.NewCertReloader(cfg.TLSCertFile, cfg.TLSKeyFile, tlsroots.WithLogger(log))
		if err != nil {
			return nil, err
		}
		s.reloader = r
		s.http.TLSConfig = r.ServerConfig()
	}
	return s, nil
}

// Run listens on the configured address until ctx is done, then shuts
// down gracefully within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("httpserver: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("http listener started", "addr", ln.Addr().String(), "tls", s.reloader != nil)
		var err error
		if s.reloader != nil {
			err = s.http.ServeTLS(ln, "", "")
		} else {
			err = s.http.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if s.reloader != nil {
		g.Go(func() error { return s.reloader.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultHTTPShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := s.http.Shutdown(shutdownCtx)
		s.log.Info("http listener stopped")
		return err
	})

	return g.Wait()
}
