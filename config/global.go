package config

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	globalOnce    sync.Once
	globalManager atomic.Pointer[Manager]
)

// Initialize loads the process-wide Config exactly once; later calls
// are no-ops even if sources differ. Pass a non-nil Service to control
// validation behavior, or nil for a default Service.
func Initialize(ctx context.Context, svc *Service, sources ...Provider) error {
	var initErr error
	globalOnce.Do(func() {
		m := NewManager(svc)
		if _, err := m.Load(ctx, sources...); err != nil {
			initErr = fmt.Errorf("failed to initialize global config: %w", err)
			return
		}
		globalManager.Store(m)
	})
	return initErr
}

// Get returns the process-wide Config. It panics if Initialize has not
// been called, since any caller reaching this point should already be
// past process startup.
func Get() *Config {
	m := globalManager.Load()
	if m == nil {
		panic("config: Get called before Initialize")
	}
	return m.Get()
}

// OnChange registers fn against the process-wide Manager.
func OnChange(fn func(*Config)) {
	m := globalManager.Load()
	if m == nil {
		panic("config: OnChange called before Initialize")
	}
	m.OnChange(fn)
}

// Reload forces the process-wide Manager to reload from its last-used
// sources immediately, bypassing the debounce timer.
func Reload(ctx context.Context) error {
	m := globalManager.Load()
	if m == nil {
		panic("config: Reload called before Initialize")
	}
	m.mu.Lock()
	sources := append([]Provider{}, m.sources...)
	m.mu.Unlock()
	_, err := m.Load(ctx, sources...)
	return err
}

// resetForTest clears global initialization state so tests can exercise
// Initialize more than once within a process.
func resetForTest() {
	globalOnce = sync.Once{}
	globalManager.Store(nil)
}
