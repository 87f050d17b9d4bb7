package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Creation(t *testing.T) {
	m := NewManager(nil)
	require.NotNil(t, m)
	require.NotNil(t, m.Service)
	assert.Equal(t, 100*time.Millisecond, m.debounce)
	require.NoError(t, m.Close(t.Context()))
}

func TestManager_Load(t *testing.T) {
	m := NewManager(nil)
	defer m.Close(t.Context())

	assert.Nil(t, m.Get())

	cfg, err := m.Load(t.Context(), NewDefaultProvider())
	require.NoError(t, err)
	assert.Equal(t, cfg, m.Get())
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestManager_SetDebounce(t *testing.T) {
	m := NewManager(nil)
	defer m.Close(t.Context())
	m.SetDebounce(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, m.debounce)
}
