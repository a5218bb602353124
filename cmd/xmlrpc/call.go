package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/xmlrpc/bootstrap"
	"github.com/kbukum/xmlrpc/codec"
	"github.com/kbukum/xmlrpc/config"
	"github.com/kbukum/xmlrpc/xmlrpc"
)

// CallConfig configures the call command.
//
//	client:
//	  url: https://rpc.example.com/RPC2
//	  secure: true
//	  digest_auth: {user: bob, pass: secret}
type CallConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Client               xmlrpc.Config   `yaml:"client" mapstructure:"client"`
	Telemetry            TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies defaults to every section. Logging stays at warn
// unless asked for so stdout carries only the result.
func (c *CallConfig) ApplyDefaults() {
	if c.Logging.Level == "" && !c.Debug {
		c.Logging.Level = "warn"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Client.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
}

// Validate validates every section.
func (c *CallConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Client.Validate()
}

var callFlagKeys = map[string]string{
	"url":           "client.url",
	"secure":        "client.secure",
	"encoding":      "client.response_encoding",
	"timeout":       "client.timeout",
	"header":        "client.headers",
	"otlp-endpoint": "telemetry.endpoint",
}

func newCallCmd(g *globalFlags) *cobra.Command {
	var user, pass string
	var digest bool

	cmd := &cobra.Command{
		Use:   "call <method> [params...]",
		Short: "Call a remote method and print the result as JSON",
		Long: `Call a remote XML-RPC method.

Each parameter is parsed as JSON; anything that is not valid JSON is sent
as a string. Integers become <int> (or <i8> when they do not fit), other
numbers <double>, objects <struct> and arrays <array>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			overrides := map[string]any{}
			if err := setFlags(cmd, callFlagKeys, overrides); err != nil {
				return err
			}
			if user != "" {
				auth := "client.basic_auth"
				if digest {
					auth = "client.digest_auth"
				}
				overrides[auth+".user"] = user
				overrides[auth+".pass"] = pass
			}

			var cfg CallConfig
			if err := g.loadConfig(&cfg, overrides); err != nil {
				return err
			}
			app, err := bootstrap.NewApp(&cfg)
			if err != nil {
				return err
			}

			client := xmlrpc.NewComponent(cfg.Client, app.Logger)
			if err := app.RegisterComponent(newTelemetry(cfg.Telemetry, cfg.Name, cfg.Environment)); err != nil {
				return err
			}
			if err := app.RegisterComponent(client); err != nil {
				return err
			}

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				result, err := client.Client().MethodCall(ctx, args[0], params...)
				if err != nil {
					return describeCallError(err)
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}

	f := cmd.Flags()
	f.String("url", "", "server URL, e.g. https://host:8443/RPC2")
	f.Bool("secure", false, "use TLS regardless of the URL scheme")
	f.StringVarP(&user, "user", "u", "", "username")
	f.StringVarP(&pass, "pass", "p", "", "password")
	f.BoolVar(&digest, "digest", false, "answer Digest challenges instead of sending Basic credentials")
	f.String("encoding", "", "response character encoding, e.g. iso-8859-1")
	f.Duration("timeout", 0, "request timeout")
	f.StringToString("header", nil, "extra request header (repeatable), e.g. --header X-Trace=1")
	f.String("otlp-endpoint", "", "OTLP/HTTP endpoint for spans and metrics, e.g. localhost:4318")
	return cmd
}

// parseParams decodes each argument as JSON, keeping integers integral.
// null becomes nil, which encodes as <nil/>.
func parseParams(args []string) ([]any, error) {
	params := make([]any, 0, len(args))
	for _, arg := range args {
		dec := json.NewDecoder(strings.NewReader(arg))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil || dec.More() {
			params = append(params, arg)
			continue
		}
		p, err := fromJSON(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", arg, err)
		}
		params = append(params, p)
	}
	return params, nil
}

func fromJSON(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			if n == int64(int32(n)) {
				return int(n), nil
			}
			return n, nil
		}
		return t.Float64()
	case []any:
		for i := range t {
			p, err := fromJSON(t[i])
			if err != nil {
				return nil, err
			}
			t[i] = p
		}
		return t, nil
	case map[string]any:
		for k := range t {
			p, err := fromJSON(t[k])
			if err != nil {
				return nil, err
			}
			t[k] = p
		}
		return t, nil
	default:
		return t, nil
	}
}

func printJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func describeCallError(err error) error {
	var fault *codec.Fault
	switch {
	case errors.As(err, &fault):
		return fmt.Errorf("fault %d: %s", fault.Code, fault.Message)
	case xmlrpc.IsNotFound(err):
		return fmt.Errorf("method endpoint not found: %w", err)
	default:
		return err
	}
}
