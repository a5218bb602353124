package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds the TLS settings for the XML-RPC transport and server.
type TLSConfig struct {
	// SkipVerify disables server certificate verification on the client.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify" json:"skip_verify"`

	// CAFile verifies the peer: the server certificate on the client, client
	// certificates on the server.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file" json:"ca_file"`

	// CertFile and KeyFile are the local certificate: the client certificate
	// for mTLS, or the server certificate.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file" json:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file" json:"key_file"`

	// ServerName overrides the name used for certificate verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name" json:"server_name"`

	// MinVersion is "1.2" or "1.3". Defaults to 1.2.
	MinVersion string `yaml:"min_version" mapstructure:"min_version" json:"min_version"`

	// RootCAs is used instead of CAFile when set. Not loadable from files.
	RootCAs *x509.CertPool `yaml:"-" mapstructure:"-" json:"-"`
}

// ClientConfig builds the *tls.Config for a client connection. A nil
// receiver yields the defaults.
func (c *TLSConfig) ClientConfig() (*tls.Config, error) {
	if c == nil {
		return &tls.Config{MinVersion: tls.VersionTLS12}, nil
	}
	minVersion, err := c.minVersion()
	if err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // opt-in via config
		ServerName:         c.ServerName,
		MinVersion:         minVersion,
		RootCAs:            c.RootCAs,
	}
	if cfg.RootCAs == nil && c.CAFile != "" {
		if cfg.RootCAs, err = loadPool(c.CAFile); err != nil {
			return nil, err
		}
	}
	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("security/tls: failed to load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// ServerConfig builds the *tls.Config for a listener. CertFile and KeyFile
// are required; CAFile turns on client certificate verification.
func (c *TLSConfig) ServerConfig() (*tls.Config, error) {
	if c == nil || c.CertFile == "" || c.KeyFile == "" {
		return nil, fmt.Errorf("security/tls: server requires cert_file and key_file")
	}
	minVersion, err := c.minVersion()
	if err != nil {
		return nil, err
	}
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("security/tls: failed to load server certificate: %w", err)
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minVersion,
	}
	if c.CAFile != "" {
		if cfg.ClientCAs, err = loadPool(c.CAFile); err != nil {
			return nil, err
		}
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("security/tls: both cert_file and key_file must be provided together")
	}
	_, err := c.minVersion()
	return err
}

// IsEnabled reports whether any TLS setting is configured.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != "" || c.RootCAs != nil
}

func (c *TLSConfig) minVersion() (uint16, error) {
	switch c.MinVersion {
	case "", "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	}
	return 0, fmt.Errorf("security/tls: unsupported min_version %q", c.MinVersion)
}

func loadPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("security/tls: failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("security/tls: failed to parse CA certificate")
	}
	return pool, nil
}
