package localserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// DefaultShutdownTimeout bounds connection draining on shutdown.
const DefaultShutdownTimeout = 5 * time.Second

// Server is the local management listener.
type Server struct {
	path            string
	http            *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

// New creates a server for socket path. h is wrapped with Handler.
func New(path string, h http.Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		path:            path,
		http:            &http.Server{Handler: Handler(h), ReadHeaderTimeout: 10 * time.Second},
		shutdownTimeout: DefaultShutdownTimeout,
		log:             log.With("component", "localserver"),
	}
}

// Path returns the socket path.
func (s *Server) Path() string { return s.path }

// Run listens until ctx is done, then drains connections and removes the
// socket file. A stale socket left by a previous process is replaced; any
// other file at the path is an error.
func (s *Server) Run(ctx context.Context) error {
	if err := removeStaleSocket(s.path); err != nil {
		return err
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("localserver: listen %s: %w", s.path, err)
	}
	defer os.Remove(s.path)

	if err := os.Chmod(s.path, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("localserver: chmod %s: %w", s.path, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("local management socket started", "path", s.path)
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	err = s.http.Shutdown(shutdownCtx)
	<-errCh
	s.log.Info("local management socket stopped")
	return err
}

func removeStaleSocket(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("localserver: %s exists and is not a socket", path)
	}
	return os.Remove(path)
}
