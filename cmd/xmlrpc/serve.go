package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/xmlrpc/bootstrap"
	"github.com/kbukum/xmlrpc/config"
	"github.com/kbukum/xmlrpc/server"
)

// ServeConfig configures the serve command.
//
//	server:
//	  port: 8080
//	  auth:
//	    mode: digest
//	    users: {bob: secret}
type ServeConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config   `yaml:"server" mapstructure:"server"`
	Telemetry            TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies defaults to every section.
func (c *ServeConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates every section.
func (c *ServeConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}

var serveFlagKeys = map[string]string{
	"host":          "server.host",
	"port":          "server.port",
	"path":          "server.path",
	"auth":          "server.auth.mode",
	"realm":         "server.auth.realm",
	"users":         "server.auth.users",
	"otlp-endpoint": "telemetry.endpoint",
}

func newServeCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo methods over XML-RPC until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			if err := setFlags(cmd, serveFlagKeys, overrides); err != nil {
				return err
			}
			var cfg ServeConfig
			if err := g.loadConfig(&cfg, overrides); err != nil {
				return err
			}
			app, err := bootstrap.NewApp(&cfg)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg.Server, app.Logger, server.WithHealthChecker(app.Components.HealthAll))
			if err != nil {
				return err
			}
			if err := registerDemoMethods(srv.Methods()); err != nil {
				return err
			}
			if err := app.RegisterComponent(newTelemetry(cfg.Telemetry, cfg.Name, cfg.Environment)); err != nil {
				return err
			}
			if err := app.RegisterComponent(srv); err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.String("host", "", "listen host")
	f.Int("port", 0, "listen port (default 8080)")
	f.String("path", "", "RPC path (default /RPC2)")
	f.String("auth", "", "authentication: none|basic|digest")
	f.String("realm", "", "authentication realm")
	f.StringToString("users", nil, "user=password pairs for basic or digest auth")
	f.String("otlp-endpoint", "", "OTLP/HTTP endpoint for spans and metrics, e.g. localhost:4318")
	return cmd
}
