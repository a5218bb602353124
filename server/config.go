package server

import (
	"fmt"

	"github.com/kbukum/xmlrpc/security"
	"github.com/kbukum/xmlrpc/util"
	"github.com/kbukum/xmlrpc/validation"
)

// Authentication modes.
const (
	AuthNone   = "none"
	AuthBasic  = "basic"
	AuthDigest = "digest"
)

// Config holds XML-RPC server configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host" json:"host"`
	Port         int    `yaml:"port" mapstructure:"port" json:"port" validate:"min=0,max=65535"`
	Path         string `yaml:"path" mapstructure:"path" json:"path" validate:"startswith=/"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout" validate:"min=0"`    // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout" validate:"min=0"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout" validate:"min=0"`    // seconds
	MaxBodySize  string `yaml:"max_body_size" mapstructure:"max_body_size" json:"max_body_size"`                  // e.g. "1MB"

	Auth AuthConfig          `yaml:"auth" mapstructure:"auth" json:"auth"`
	TLS  *security.TLSConfig `yaml:"tls" mapstructure:"tls" json:"-"`
}

// AuthConfig selects HTTP authentication for the RPC path.
type AuthConfig struct {
	Mode  string `yaml:"mode" mapstructure:"mode" json:"mode" validate:"oneof=none basic digest"`
	Realm string `yaml:"realm" mapstructure:"realm" json:"realm"`
	// Users maps usernames to passwords.
	Users map[string]string `yaml:"users" mapstructure:"users" json:"-"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Path == "" {
		c.Path = "/RPC2"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = AuthNone
	}
	if c.Auth.Realm == "" {
		c.Auth.Realm = "xmlrpc"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	_, sizeErr := util.ParseSize(c.MaxBodySize)
	v := validation.New().
		Merge("server", validation.Validate(c)).
		Merge("max_body_size", sizeErr).
		Custom(c.Auth.Mode == AuthNone || len(c.Auth.Users) > 0, "auth.users", "is required for "+c.Auth.Mode+" auth")
	if c.TLS.IsEnabled() {
		v.Merge("tls", c.TLS.Validate())
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
