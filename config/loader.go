package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file lookups (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment without overriding
// variables that are already set.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	// EnvFiles are loaded in order; earlier files win.
	EnvFiles []string
}

// ResolveFiles returns the explicit paths from opts, or searches the standard
// locations for the ones not given.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(
			fmt.Sprintf("./cmd/%s/config.yml", serviceName),
			"./config/config.yml",
			"./config.yml",
		)
	}

	if opts.EnvFile != "" {
		resolved.EnvFiles = []string{opts.EnvFile}
		return resolved
	}
	if env := os.Getenv(strings.ToUpper(serviceName) + "_ENVIRONMENT"); env != "" {
		if p := r.first(".env." + env); p != "" {
			resolved.EnvFiles = append(resolved.EnvFiles, p)
		}
	}
	if p := r.first(".env"); p != "" {
		resolved.EnvFiles = append(resolved.EnvFiles, p)
	}
	return resolved
}

func (r *Resolver) first(paths ...string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	// Overrides are dotted keys that take precedence over the file and the
	// environment. Commands put explicitly set flags here.
	Overrides map[string]any
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithOverrides sets keys such as "client.url" above every other source.
func WithOverrides(overrides map[string]any) LoaderOption {
	return func(lc *LoaderConfig) { lc.Overrides = overrides }
}

type defaulter interface{ ApplyDefaults() }

type validator interface{ Validate() error }

// LoadConfig loads configuration for serviceName into cfg, which must be a
// pointer to a struct with mapstructure tags. After unmarshalling it calls
// cfg.ApplyDefaults and cfg.Validate when cfg implements them.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	// .env files only populate the process environment; they are read
	// before binding so the bound keys see them.
	for _, f := range files.EnvFiles {
		if err := lc.FileSystem.LoadEnv(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
		}
	}
	bindEnv(v, strings.ToUpper(serviceName)+"_", os.Environ())
	for key, value := range lc.Overrides {
		v.Set(key, value)
	}

	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}

	if d, ok := cfg.(defaulter); ok {
		d.ApplyDefaults()
	}
	if val, ok := cfg.(validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("invalid config for service %s: %w", serviceName, err)
		}
	}
	return nil
}

// bindEnv sets every PREFIX_A_B_C variable under each nesting it could
// address: a.b.c, a.b_c and a_b.c. Unmarshal picks up whichever matches a
// field.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, variant := range envKeyVariants(strings.TrimPrefix(key, prefix)) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps CLIENT_DIGEST_AUTH_USER to client.digest.auth.user,
// client.digest_auth_user, client.digest.auth_user, and so on: every way of
// splitting the underscore-separated parts into dotted path segments.
func envKeyVariants(envKey string) []string {
	parts := strings.Split(strings.ToLower(envKey), "_")
	variants := []string{parts[0]}
	for _, p := range parts[1:] {
		next := make([]string, 0, len(variants)*2)
		for _, v := range variants {
			next = append(next, v+"."+p, v+"_"+p)
		}
		variants = next
	}
	return variants
}
