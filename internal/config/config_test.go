package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Concurrency)
	assert.Equal(t, time.Duration(0), cfg.Timeout())
	assert.Empty(t, cfg.Tunnel.InstallDir)
}

func TestLoadEmptyPathIsZeroConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
concurrency: 50
timeout_seconds: 3
tunnel:
  install_dir: /opt/tunnels
  config_dir: /etc/reconkit
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Concurrency)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, "/opt/tunnels", cfg.Tunnel.InstallDir)
	assert.Equal(t, "/etc/reconkit", cfg.Tunnel.ConfigDir)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: [not a number"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
