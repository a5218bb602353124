package config

import (
	"github.com/kbukum/xmlrpc/logger"
	"github.com/kbukum/xmlrpc/validation"
)

// ServiceConfig contains the fields every command needs. Embed it in a
// command-specific config struct:
//
//	type ServeConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig. It is promoted through
// embedding.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs that override it must call it first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "xmlrpc"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	return validation.New().
		Required("config.name", c.Name).
		Required("config.environment", c.Environment).
		OneOf("config.environment", c.Environment, []string{"development", "staging", "production"}).
		Merge("config.logging", c.Logging.Validate()).
		Validate()
}
