// Package postgres implements marking.Store on top of Postgres: each
// element table holds its identity/filter columns alongside a JSONB
// snapshot of the net value, so queries in marking.Tx compose squirrel
// predicates over the filter columns, scan the JSONB column with scany,
// and decode it into net types with encoding/json.
package postgres

import (
	"fmt"
	"time"
)

// Config dials a Postgres connection pool.
type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	ConnMaxLifetime time.Duration
}

func dsn(cfg *Config) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)
}
