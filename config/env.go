package config

import (
	"context"
	"strings"

	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "YAWL_"

// applyEnv merges environment variables prefixed YAWL_ into k, with a
// double underscore marking nesting (YAWL_STORE__DRIVER -> store.driver).
func applyEnv(_ context.Context, k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, envPrefix)
			key = strings.ToLower(key)
			key = strings.ReplaceAll(key, "__", ".")
			return key, value
		},
	}), nil)
}
