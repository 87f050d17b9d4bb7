package config

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// SourceType identifies where a Provider's data came from, for
// GetSource bookkeeping and precedence debugging.
type SourceType string

const (
	SourceDefault SourceType = "default"
	SourceYAML    SourceType = "yaml"
	SourceCLI     SourceType = "cli"
	SourceEnv     SourceType = "env"
)

// Provider supplies one layer of configuration data. Load returns a
// nested map keyed the same way Config's koanf tags nest; Watch lets a
// provider notify the caller of external changes (a YAML file edit), and
// is a no-op for providers with no notion of change.
type Provider interface {
	Load() (map[string]any, error)
	Type() SourceType
	Watch(ctx context.Context, onChange func()) error
}

// defaultProvider supplies Default()'s values as the base layer.
type defaultProvider struct{}

// NewDefaultProvider returns a Provider that contributes no overrides;
// Service.Load always starts from Default() directly, so this exists to
// let callers list it explicitly in a source chain for symmetry.
func NewDefaultProvider() Provider { return defaultProvider{} }

func (defaultProvider) Load() (map[string]any, error) { return map[string]any{}, nil }
func (defaultProvider) Type() SourceType               { return SourceDefault }
func (defaultProvider) Watch(context.Context, func()) error { return nil }

// yamlProvider loads configuration from a YAML file on disk.
type yamlProvider struct {
	path string
}

// NewYAMLProvider returns a Provider backed by the YAML file at path. A
// missing file loads as empty rather than erroring, so an optional
// config file can simply not exist.
func NewYAMLProvider(path string) Provider {
	return &yamlProvider{path: path}
}

func (p *yamlProvider) Load() (map[string]any, error) {
	raw, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.path, err)
	}
	return data, nil
}

func (p *yamlProvider) Type() SourceType { return SourceYAML }

func (p *yamlProvider) Watch(ctx context.Context, onChange func()) error {
	return watchFile(ctx, p.path, onChange)
}

// cliProvider maps flat CLI flag names to nested configuration keys.
type cliProvider struct {
	flags map[string]any
}

// NewCLIProvider returns a Provider backed by parsed CLI flags, mapping
// the flat flag names a cobra command exposes to Config's nested shape.
func NewCLIProvider(flags map[string]any) Provider {
	return &cliProvider{flags: flags}
}

var cliFlagToKey = map[string]string{
	"host":                "server.host",
	"port":                "server.port",
	"cors":                "server.cors_enabled",
	"store-driver":        "store.driver",
	"postgres-host":       "store.postgres.host",
	"postgres-port":       "store.postgres.port",
	"postgres-user":       "store.postgres.user",
	"postgres-dbname":     "store.postgres.dbname",
	"log-level":           "logger.level",
	"log-json":            "logger.json",
	"environment":         "runtime.environment",
	"max-router-expr-len": "limits.max_router_expr_length",
	"max-payload-bytes":   "limits.max_payload_bytes",
}

func (p *cliProvider) Load() (map[string]any, error) {
	out := map[string]any{}
	for flag, value := range p.flags {
		key, ok := cliFlagToKey[flag]
		if !ok {
			continue
		}
		if err := setNested(out, key, value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *cliProvider) Type() SourceType { return SourceCLI }

func (p *cliProvider) Watch(context.Context, func()) error { return nil }

// envProvider's Load is a no-op: environment variables are read
// natively by koanf's env provider inside Service.Load, always after
// every listed Provider, whatever position an envProvider holds in the
// source chain.
type envProvider struct{}

// NewEnvProvider returns a placeholder Provider that contributes nothing;
// its position in a source chain does not change when environment
// variables take effect.
func NewEnvProvider() Provider { return envProvider{} }

func (envProvider) Load() (map[string]any, error)       { return map[string]any{}, nil }
func (envProvider) Type() SourceType                     { return SourceEnv }
func (envProvider) Watch(context.Context, func()) error { return nil }

// setNested sets value at the dotted path key inside m, creating
// intermediate maps as needed. It errors if an intermediate segment is
// already occupied by a non-map value.
func setNested(m map[string]any, key string, value any) error {
	segments := splitDotted(key)
	cur := m
	for i, seg := range segments {
		if i == len(segments)-1 {
			cur[seg] = value
			return nil
		}
		next, ok := cur[seg]
		if !ok {
			child := map[string]any{}
			cur[seg] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("config: cannot set %q: %q is not a nested map", key, seg)
		}
		cur = child
	}
	return nil
}

func splitDotted(key string) []string {
	var out []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			out = append(out, key[start:i])
			start = i + 1
		}
	}
	out = append(out, key[start:])
	return out
}
