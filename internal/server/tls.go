package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/climateir/internal/logging"
)

// certReloader serves the certificate at certPath and reloads it when the
// file changes, so a renewed certificate is picked up without a restart.
type certReloader struct {
	certPath string
	keyPath  string

	mu      sync.Mutex
	cert    *tls.Certificate
	modTime time.Time
}

func (r *certReloader) load() error {
	info, err := os.Stat(r.certPath)
	if err != nil {
		return fmt.Errorf("failed to stat TLS certificate: %w", err)
	}
	cert, err := tls.LoadX509KeyPair(r.certPath, r.keyPath)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	r.cert = &cert
	r.modTime = info.ModTime()
	return nil
}

func (r *certReloader) getCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, err := os.Stat(r.certPath); err == nil && !info.ModTime().Equal(r.modTime) {
		// Keep serving the old pair if the new one is half written.
		if err := r.load(); err != nil {
			logging.Warn("TLS certificate reload failed", zap.Error(err))
		} else {
			logging.Info("TLS certificate reloaded", zap.String("cert", r.certPath))
		}
	}
	return r.cert, nil
}

// NewTLSConfig loads a certificate and key from PEM files. Bridges speak
// HTTP/1.1 websockets, so only http/1.1 is offered over ALPN.
func NewTLSConfig(certPath, keyPath string) (*tls.Config, error) {
	r := &certReloader{certPath: certPath, keyPath: keyPath}
	if err := r.load(); err != nil {
		return nil, err
	}

	logging.Info("TLS configuration created from files",
		zap.String("cert", certPath),
		zap.String("key", keyPath),
	)

	return &tls.Config{
		GetCertificate: r.getCertificate,
		MinVersion:     tls.VersionTLS12,
		NextProtos:     []string{"http/1.1"},
	}, nil
}

// GetTLSInfo describes a configuration for logging. The certificate fields
// are only present when one can be obtained from config.
func GetTLSInfo(config *tls.Config) map[string]any {
	info := map[string]any{
		"min_version": tls.VersionName(config.MinVersion),
		"alpn":        config.NextProtos,
	}

	var cert *tls.Certificate
	switch {
	case config.GetCertificate != nil:
		cert, _ = config.GetCertificate(&tls.ClientHelloInfo{})
	case len(config.Certificates) > 0:
		cert = &config.Certificates[0]
	}
	if cert == nil || len(cert.Certificate) == 0 {
		return info
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return info
	}
	info["subject"] = leaf.Subject.CommonName
	info["dns_names"] = leaf.DNSNames
	info["not_after"] = leaf.NotAfter.Format(time.RFC3339)
	return info
}
