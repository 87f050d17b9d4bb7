package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalConfig_PanicsBeforeInitialize(t *testing.T) {
	resetForTest()

	assert.Panics(t, func() { Get() })
	assert.Panics(t, func() { OnChange(func(*Config) {}) })
}

func TestGlobalConfig_Initialize(t *testing.T) {
	resetForTest()

	err := Initialize(t.Context(), nil, NewDefaultProvider())
	require.NoError(t, err)

	cfg := Get()
	require.NotNil(t, cfg)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestGlobalConfig_InitializeOnlyOnce(t *testing.T) {
	resetForTest()

	require.NoError(t, Initialize(t.Context(), nil, NewDefaultProvider()))
	first := Get()

	cliSrc := &mockProvider{kind: SourceCLI, data: map[string]any{"server": map[string]any{"host": "second.example.com"}}}
	require.NoError(t, Initialize(t.Context(), nil, cliSrc))

	assert.Equal(t, first, Get())
}
