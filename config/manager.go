package config

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Manager holds the currently active Config behind an atomic pointer and
// re-runs Load, debounced, whenever a watched Provider reports a change.
type Manager struct {
	Service *Service

	current atomic.Pointer[Config]
	debounce time.Duration

	mu        sync.Mutex
	callbacks []func(*Config)
	sources   []Provider
	timer     *time.Timer
	closed    bool
}

// NewManager wraps svc (or a fresh Service if svc is nil) with reload
// support.
func NewManager(svc *Service) *Manager {
	if svc == nil {
		svc = NewService()
	}
	return &Manager{Service: svc, debounce: 100 * time.Millisecond}
}

// SetDebounce controls how long Manager waits after a Provider's change
// notification before reloading, coalescing bursts of file events.
func (m *Manager) SetDebounce(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debounce = d
}

// Load builds a Config via Service.Load, stores it, arms Watch on every
// source that supports it, and returns the new Config.
func (m *Manager) Load(ctx context.Context, sources ...Provider) (*Config, error) {
	cfg, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, err
	}
	m.current.Store(cfg)

	m.mu.Lock()
	m.sources = sources
	m.mu.Unlock()

	for _, src := range sources {
		if src == nil {
			continue
		}
		src := src
		_ = src.Watch(ctx, func() { m.scheduleReload(ctx) })
	}
	return cfg, nil
}

// Get returns the most recently loaded Config, or nil if Load has not
// been called yet.
func (m *Manager) Get() *Config {
	return m.current.Load()
}

// OnChange registers fn to run, with the newly loaded Config, after each
// successful reload triggered by a watched source.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

func (m *Manager) scheduleReload(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, func() { m.reload(ctx) })
}

func (m *Manager) reload(ctx context.Context) {
	m.mu.Lock()
	sources := append([]Provider{}, m.sources...)
	callbacks := append([]func(*Config){}, m.callbacks...)
	m.mu.Unlock()

	cfg, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return
	}
	m.current.Store(cfg)
	for _, cb := range callbacks {
		cb(cfg)
	}
}

// Close stops any pending debounce timer. Safe to call more than once.
func (m *Manager) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
	}
	return nil
}
