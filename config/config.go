// Package config loads engine configuration from layered sources: a
// struct-literal default, then zero or more Providers (YAML file, CLI
// flags) applied in the order given, then environment variables, each
// layer overriding the fields it sets and leaving the rest untouched.
package config

import "time"

// Config is the engine's top-level configuration tree.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Store   StoreConfig   `koanf:"store"`
	Runtime RuntimeConfig `koanf:"runtime"`
	Limits  LimitsConfig  `koanf:"limits"`
	Logger  LoggerConfig  `koanf:"logger"`
	Router  RouterConfig  `koanf:"router"`
}

// ServerConfig configures the engine's API listener.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	CORSEnabled bool          `koanf:"cors_enabled"`
	Timeout     time.Duration `koanf:"timeout"`
}

// StoreConfig configures the marking/audit persistence backend.
type StoreConfig struct {
	Driver   string         `koanf:"driver"` // "memory" or "postgres"
	Postgres PostgresConfig `koanf:"postgres"`
}

// PostgresConfig configures the Postgres-backed store, used when
// Store.Driver is "postgres".
type PostgresConfig struct {
	Host            string          `koanf:"host"`
	Port            string          `koanf:"port"`
	User            string          `koanf:"user"`
	Password        SensitiveString `koanf:"password"`
	DBName          string          `koanf:"dbname"`
	SSLMode         string          `koanf:"sslmode"`
	MaxConns        int32           `koanf:"max_conns"`
	ConnMaxLifetime time.Duration   `koanf:"conn_max_lifetime"`
}

// RuntimeConfig controls process-wide runtime behavior.
type RuntimeConfig struct {
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`
}

// LimitsConfig bounds resource consumption for untrusted input (router
// expressions, work-item payloads).
type LimitsConfig struct {
	MaxRouterExprLength int `koanf:"max_router_expr_length"`
	MaxPayloadBytes     int `koanf:"max_payload_bytes"`
}

// LoggerConfig configures the ambient structured logger.
type LoggerConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// RouterConfig tunes the CEL router expression environment.
type RouterConfig struct {
	EvalTimeout time.Duration `koanf:"eval_timeout"`
}

// Default returns the configuration used before any Provider is applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        7233,
			CORSEnabled: true,
			Timeout:     30 * time.Second,
		},
		Store: StoreConfig{
			Driver: "memory",
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            "5432",
				User:            "postgres",
				DBName:          "yawlrun",
				SSLMode:         "disable",
				MaxConns:        10,
				ConnMaxLifetime: time.Hour,
			},
		},
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Limits: LimitsConfig{
			MaxRouterExprLength: 2048,
			MaxPayloadBytes:     1 << 20,
		},
		Logger: LoggerConfig{Level: "info"},
		Router: RouterConfig{EvalTimeout: 2 * time.Second},
	}
}
