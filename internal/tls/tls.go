// Package tls builds the listener TLS configuration for the panel. It can
// load operator-provided certificate files or, for quick local setups,
// generate a self-signed pair under a directory.
package tls

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	certName = "tls.crt"
	keyName  = "tls.key"
)

// Config mirrors the [tls] section of the panel configuration.
type Config struct {
	Enabled      bool   `toml:"enabled" mapstructure:"enabled"`
	CertFile     string `toml:"cert_file" mapstructure:"cert_file"`
	KeyFile      string `toml:"key_file" mapstructure:"key_file"`
	Dir          string `toml:"dir" mapstructure:"dir"`
	AutoGenerate bool   `toml:"auto_generate" mapstructure:"auto_generate"`
}

// Setup returns the listener TLS configuration, or nil when TLS is disabled.
// Explicit cert/key files win over the directory-based layout; with
// AutoGenerate a missing pair under Dir is created self-signed.
func Setup(cfg Config) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	certPath, keyPath := cfg.CertFile, cfg.KeyFile
	if certPath == "" || keyPath == "" {
		if cfg.Dir == "" {
			return nil, errors.New("tls enabled but no certificate configured")
		}
		certPath = filepath.Join(cfg.Dir, certName)
		keyPath = filepath.Join(cfg.Dir, keyName)
		if cfg.AutoGenerate && !pairExists(certPath, keyPath) {
			if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
				return nil, err
			}
			err := GenerateSelfSignedCert(CertConfig{
				CommonName:   "localhost",
				Organization: "nexus",
				DNSNames:     []string{"localhost"},
				IPAddresses:  []string{"127.0.0.1"},
				NotAfter:     time.Now().AddDate(1, 0, 0),
				CertPath:     certPath,
				KeyPath:      keyPath,
			})
			if err != nil {
				return nil, fmt.Errorf("certificate generation: %w", err)
			}
		}
	}

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("load key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func pairExists(certPath, keyPath string) bool {
	_, certErr := os.Stat(certPath)
	_, keyErr := os.Stat(keyPath)
	return certErr == nil && keyErr == nil
}
