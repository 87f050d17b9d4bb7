package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIProvider_Load(t *testing.T) {
	flags := map[string]any{
		"host":         "cli.example.com",
		"port":         9001,
		"cors":         true,
		"store-driver": "postgres",
	}
	provider := NewCLIProvider(flags)

	data, err := provider.Load()
	require.NoError(t, err)

	server := data["server"].(map[string]any)
	assert.Equal(t, "cli.example.com", server["host"])
	assert.Equal(t, 9001, server["port"])
	assert.Equal(t, true, server["cors_enabled"])

	store := data["store"].(map[string]any)
	assert.Equal(t, "postgres", store["driver"])
}

func TestCLIProvider_Type(t *testing.T) {
	assert.Equal(t, SourceCLI, NewCLIProvider(nil).Type())
}

func TestCLIProvider_NilFlags(t *testing.T) {
	data, err := NewCLIProvider(nil).Load()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestYAMLProvider_MissingFileLoadsEmpty(t *testing.T) {
	provider := NewYAMLProvider("/nonexistent/path/config.yaml")
	data, err := provider.Load()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestYAMLProvider_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  host: yaml.example.com\n  port: 9090\n"), 0o600))

	data, err := NewYAMLProvider(path).Load()
	require.NoError(t, err)
	server := data["server"].(map[string]any)
	assert.Equal(t, "yaml.example.com", server["host"])
}

func TestYAMLProvider_Type(t *testing.T) {
	assert.Equal(t, SourceYAML, NewYAMLProvider("x.yaml").Type())
}

func TestEnvProvider_Type(t *testing.T) {
	assert.Equal(t, SourceEnv, NewEnvProvider().Type())
}

func TestSetNested(t *testing.T) {
	m := make(map[string]any)
	require.NoError(t, setNested(m, "server.host", "test.example.com"))
	require.NoError(t, setNested(m, "database.connection.host", "db.example.com"))

	server := m["server"].(map[string]any)
	assert.Equal(t, "test.example.com", server["host"])

	database := m["database"].(map[string]any)
	connection := database["connection"].(map[string]any)
	assert.Equal(t, "db.example.com", connection["host"])
}

func TestSetNested_RejectsStructureConflict(t *testing.T) {
	m := map[string]any{"server": "not-a-map"}
	err := setNested(m, "server.host", "x")
	assert.Error(t, err)
}
