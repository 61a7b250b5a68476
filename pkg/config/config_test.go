package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
node_name: alpha
data_dir: /tmp/photosync-test
listen_addr: ":7601"
sync_interval: 30s
log_level: debug
peers:
  - name: beta
    addr: http://beta:7600
  - name: gamma
    addr: http://gamma:7600
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "alpha", cfg.NodeName)
	assert.Equal(t, "/tmp/photosync-test", cfg.DataDir)
	assert.Equal(t, ":7601", cfg.ListenAddr)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.SyncInterval))
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Peers, 2)
	assert.Equal(t, "beta", cfg.Peers[0].Name)
	assert.Equal(t, "http://beta:7600", cfg.Peers[0].Addr)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `node_name: alpha`)

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.DataDir, cfg.DataDir)
	assert.Equal(t, def.ListenAddr, cfg.ListenAddr)
	assert.Equal(t, def.SyncInterval, cfg.SyncInterval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "peers: [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidDuration(t *testing.T) {
	path := writeConfig(t, "sync_interval: soon")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }},
		{"zero interval", func(c *Config) { c.SyncInterval = 0 }},
		{"peer without name", func(c *Config) { c.Peers = []PeerConfig{{Addr: "http://x"}} }},
		{"peer without addr", func(c *Config) { c.Peers = []PeerConfig{{Name: "x"}} }},
		{"duplicate peer names", func(c *Config) {
			c.Peers = []PeerConfig{{Name: "x", Addr: "http://a"}, {Name: "x", Addr: "http://b"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
