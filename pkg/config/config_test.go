package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_MissingCapacity(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity")
}

func TestValidate_ZeroCapacity(t *testing.T) {
	cfg := Default()
	cfg.Capacity = 0
	require.Error(t, cfg.Validate())
}

func TestValidate_NegativeCapacity(t *testing.T) {
	cfg := Default()
	cfg.Capacity = -5
	require.Error(t, cfg.Validate())
}

func TestValidate_Minimal(t *testing.T) {
	cfg := Default()
	cfg.Capacity = 1000
	require.NoError(t, cfg.Validate())
}

func TestLoadFile_AppliesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
capacity: 500000
backing_path: /tmp/edges.buf
reverse_index: true
compress: true
log_level: debug
`), 0o600))

	cfg := Default()
	require.NoError(t, LoadFile(path, &cfg))
	assert.Equal(t, 500000, cfg.Capacity)
	assert.Equal(t, "/tmp/edges.buf", cfg.BackingPath)
	assert.True(t, cfg.ReverseIndex)
	assert.True(t, cfg.Compress)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep their defaults.
	assert.Equal(t, "-", cfg.Output)
}

func TestLoadFile_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capactiy: 10\n"), 0o600))

	cfg := Default()
	require.Error(t, LoadFile(path, &cfg))
}

func TestLoadFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	cfg := Default()
	require.NoError(t, LoadFile(path, &cfg))
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := Default()
	require.Error(t, LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), &cfg))
}
