package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/xmlrpc/config"
)

const serviceName = "xmlrpc"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	ConfigFile string
	EnvFile    string
	LogLevel   string
	LogFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "xmlrpc",
		Short:         "XML-RPC client and demo server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.ConfigFile, "config", "c", "", "config file (default: ./cmd/xmlrpc/config.yml, ./config/config.yml or ./config.yml)")
	root.PersistentFlags().StringVar(&g.EnvFile, "env-file", "", "env file to load before reading XMLRPC_* variables")
	root.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.LogFormat, "log-format", "", "log format: json|console")

	root.AddCommand(newCallCmd(g), newServeCmd(g), newVersionCmd())
	return root
}

// loadConfig reads cfg from the config file and XMLRPC_* environment, with
// overrides from explicitly set flags on top.
func (g *globalFlags) loadConfig(cfg any, overrides map[string]any) error {
	if g.LogLevel != "" {
		overrides["logging.level"] = g.LogLevel
	}
	if g.LogFormat != "" {
		overrides["logging.format"] = g.LogFormat
	}
	opts := []config.LoaderOption{config.WithOverrides(overrides)}
	if g.ConfigFile != "" {
		opts = append(opts, config.WithConfigFile(g.ConfigFile))
	}
	if g.EnvFile != "" {
		opts = append(opts, config.WithEnvFile(g.EnvFile))
	}
	return config.LoadConfig(serviceName, cfg, opts...)
}

// setFlags copies the flags the user actually set into overrides, keyed by
// the config path in keys.
func setFlags(cmd *cobra.Command, keys map[string]string, overrides map[string]any) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		switch f.Value.Type() {
		case "bool":
			v, err := cmd.Flags().GetBool(flag)
			if err != nil {
				return err
			}
			overrides[key] = v
		case "int":
			v, err := cmd.Flags().GetInt(flag)
			if err != nil {
				return err
			}
			overrides[key] = v
		case "float64":
			v, err := cmd.Flags().GetFloat64(flag)
			if err != nil {
				return err
			}
			overrides[key] = v
		case "stringToString":
			v, err := cmd.Flags().GetStringToString(flag)
			if err != nil {
				return err
			}
			overrides[key] = v
		default:
			overrides[key] = f.Value.String()
		}
	}
	return nil
}
