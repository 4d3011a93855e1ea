package tlsroots

import (
	"context"
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

// CertReloader holds the listener key pair and swaps it when the files
// are rewritten. A failed reload keeps the previous certificate.
type CertReloader struct {
	certFile string
	keyFile  string
	log      logger.Logger
	debounce time.Duration

	mu   sync.RWMutex
	cert *tls.Certificate
}

// ReloaderOption configures a CertReloader.
type ReloaderOption func(*CertReloader)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ReloaderOption {
	return func(r *CertReloader) { r.log = l }
}

// WithDebounce sets how long to wait for a write burst to settle.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *CertReloader) { r.debounce = d }
}

// NewCertReloader loads the key pair once and returns the reloader.
func NewCertReloader(certFile, keyFile string, opts ...ReloaderOption) (*CertReloader, error) {
	r := &CertReloader{
		certFile: certFile,
		keyFile:  keyFile,
		log:      logger.Default(),
		debounce: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}
	return r, nil
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// ServerConfig returns a listener configuration backed by the reloader.
func (r *CertReloader) ServerConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// Run watches the key pair until ctx is done.
func (r *CertReloader) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tlsroots: create watcher: %w", err)
	}
	defer w.Close()

	dirs := map[string]struct{}{
		filepath.Dir(r.certFile): {},
		filepath.Dir(r.keyFile):  {},
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("tlsroots: watch %s: %w", dir, err)
		}
	}

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !r.isKeyPair(ev.Name) || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			trigger = timer.C
		case <-trigger:
			trigger = nil
			if err := r.reload(); err != nil {
				r.log.Error("certificate reload failed", "cert_file", r.certFile, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Error("certificate watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *CertReloader) isKeyPair(name string) bool {
	base := filepath.Base(name)
	return base == filepath.Base(r.certFile) || base == filepath.Base(r.keyFile)
}

func (r *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()
	r.log.Info("certificate loaded", "cert_file", r.certFile)
	return nil
}
