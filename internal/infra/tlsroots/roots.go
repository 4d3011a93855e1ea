package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrNoCertsFound is returned when PEM data holds no certificate.
var ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM data")

// Pool is a set of trusted root certificates.
type Pool struct {
	certs *x509.CertPool
}

// NewPool returns a pool seeded with the system roots, or an empty pool
// where the platform has none.
func NewPool() *Pool {
	certs, err := x509.SystemCertPool()
	if err != nil {
		certs = x509.NewCertPool()
	}
	return &Pool{certs: certs}
}

// NewEmptyPool returns a pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certs: x509.NewCertPool()}
}

// AddCertFile adds every certificate of a PEM file.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read %s: %w", path, err)
	}
	return p.AddCertPEM(data)
}

// AddCertPEM adds every CERTIFICATE block of pemData. Other block types
// are skipped.
func (p *Pool) AddCertPEM(pemData []byte) error {
	added := 0
	for {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		p.certs.AddCert(cert)
		added++
	}
	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// CertPool returns the underlying pool.
func (p *Pool) CertPool() *x509.CertPool { return p.certs }

// ClientConfig returns a client TLS configuration trusting this pool.
func (p *Pool) ClientConfig(insecureSkipVerify bool) *tls.Config {
	return &tls.Config{
		RootCAs:            p.certs,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // opt-in for development servers
	}
}

// ClientConfigFromFile is a convenience for the CLI: system roots plus
// the certificates in caFile, when given.
func ClientConfigFromFile(caFile string, insecureSkipVerify bool) (*tls.Config, error) {
	p := NewPool()
	if caFile != "" {
		if err := p.AddCertFile(caFile); err != nil {
			return nil, err
		}
	}
	return p.ClientConfig(insecureSkipVerify), nil
}
