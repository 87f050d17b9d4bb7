package config

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Service loads a Config from Default() plus zero or more Providers,
// applied left to right so a later Provider's fields override an
// earlier one's; a Provider that doesn't set a field leaves the
// previous value untouched.
type Service struct {
	validate *validator.Validate
	lastSrc  SourceType
}

// NewService returns a ready-to-use Service.
func NewService() *Service {
	return &Service{validate: validator.New()}
}

// Load builds a Config from Default(), then applies sources in order.
// A nil entry in sources is skipped, so callers can pass an optional
// Provider without a conditional.
func (s *Service) Load(ctx context.Context, sources ...Provider) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		data, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load from source %s: %w", src.Type(), err)
		}
		if err := k.Load(confmap.Provider(data, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to merge source %s: %w", src.Type(), err)
		}
		s.lastSrc = src.Type()
	}
	if err := applyEnv(ctx, k); err != nil {
		return nil, fmt.Errorf("failed to load from source %s: %w", SourceEnv, err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := s.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs struct-tag validation plus cross-field invariants that
// a `validate` tag alone can't express.
func (s *Service) Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := s.validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if cfg.Store.Driver != "memory" && cfg.Store.Driver != "postgres" {
		return fmt.Errorf("validation failed: store.driver must be memory or postgres, got %q", cfg.Store.Driver)
	}
	if cfg.Limits.MaxRouterExprLength <= 0 {
		return fmt.Errorf("validation failed: limits.max_router_expr_length must be positive")
	}
	return nil
}

// GetSource returns the SourceType of the last Provider merged by Load,
// or SourceDefault if Load has not merged any Provider yet.
func (s *Service) GetSource() SourceType {
	if s.lastSrc == "" {
		return SourceDefault
	}
	return s.lastSrc
}
