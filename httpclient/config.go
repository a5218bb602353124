package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/xmlrpc/security"
)

const defaultTimeout = 30 * time.Second

// Config configures the transport.
type Config struct {
	// Name identifies the transport in logs and health reports.
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout bounds a whole request, body read included. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// TLS configures the secure transport. Ignored for plaintext.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = "xmlrpc-transport"
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return c.TLS.Validate()
}
