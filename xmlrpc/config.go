package xmlrpc

import (
	"time"

	"github.com/kbukum/xmlrpc/httpclient"
	"github.com/kbukum/xmlrpc/security"
)

// Config is the client section of a service configuration file.
//
//	client:
//	  url: https://rpc.example.com/RPC2
//	  secure: true
//	  digest_auth:
//	    user: bob
//	    pass: secret
type Config struct {
	// URL, when set, supplies host, port and path. Host, Port and Path
	// override its parts.
	URL              string              `yaml:"url" mapstructure:"url"`
	Host             string              `yaml:"host" mapstructure:"host"`
	Port             int                 `yaml:"port" mapstructure:"port"`
	Path             string              `yaml:"path" mapstructure:"path"`
	Secure           bool                `yaml:"secure" mapstructure:"secure"`
	Headers          map[string]string   `yaml:"headers" mapstructure:"headers"`
	BasicAuth        *Credentials        `yaml:"basic_auth" mapstructure:"basic_auth"`
	DigestAuth       *Credentials        `yaml:"digest_auth" mapstructure:"digest_auth"`
	ResponseEncoding string              `yaml:"response_encoding" mapstructure:"response_encoding"`
	Timeout          time.Duration       `yaml:"timeout" mapstructure:"timeout"`
	TLS              *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks that the configuration names a server.
func (c *Config) Validate() error {
	if c.URL == "" && c.Host == "" {
		return configurationError("xmlrpc: url or host is required", nil)
	}
	if c.Secure {
		if err := c.TLS.Validate(); err != nil {
			return configurationError("xmlrpc: invalid tls config", err)
		}
	}
	o, err := c.ToOptions()
	if err != nil {
		return err
	}
	_, err = o.resolve(c.Secure)
	return err
}

// ToOptions converts the configuration to Options.
func (c *Config) ToOptions() (Options, error) {
	var o Options
	if c.URL != "" {
		parsed, err := ParseURI(c.URL)
		if err != nil {
			return Options{}, err
		}
		o = parsed
	}
	if c.Host != "" {
		o.Host = c.Host
	}
	if c.Port != 0 {
		o.Port = c.Port
	}
	if c.Path != "" {
		o.Path = c.Path
	}
	if c.Headers != nil {
		o.Headers = c.Headers
	}
	if c.BasicAuth != nil {
		o.BasicAuth = c.BasicAuth
	}
	o.DigestAuth = c.DigestAuth
	o.ResponseEncoding = c.ResponseEncoding
	return o, nil
}

// HTTPConfig returns the transport configuration.
func (c *Config) HTTPConfig() httpclient.Config {
	return httpclient.Config{Name: "xmlrpc-transport", Timeout: c.Timeout, TLS: c.TLS}
}

// NewFromConfig creates a client from cfg. Options passed in opts are
// applied after the transport configuration derived from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	o, err := cfg.ToOptions()
	if err != nil {
		return nil, err
	}
	return newClient(o, cfg.Secure, append([]Option{WithHTTPConfig(cfg.HTTPConfig())}, opts...))
}
