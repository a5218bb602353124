// Package config loads service configuration from a YAML file, .env files
// and environment variables.
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Client xmlrpc.Config `yaml:"client" mapstructure:"client"`
//	}
//
//	var cfg Config
//	err := config.LoadConfig("xmlrpc", &cfg, config.WithConfigFile("config.yml"))
//
// Environment variables prefixed with the upper-cased service name override
// file values; nested keys are joined with underscores, e.g.
// XMLRPC_CLIENT_HOST sets client.host.
package config
