package main

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farcaster-proto/farcaster-go/pkg/seal"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")

	content := `
address: ":9100"
passphrase: "correct horse"
salt: site-a
capture: /tmp/server.fclog
log_level: debug
advertise: true
name: garage
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := Config{Address: "127.0.0.1:7878", LogLevel: "info"}
	require.NoError(t, LoadConfig(path, &cfg))

	assert.Equal(t, ":9100", cfg.Address)
	assert.Equal(t, "correct horse", cfg.Passphrase)
	assert.Equal(t, "site-a", cfg.Salt)
	assert.Equal(t, "/tmp/server.fclog", cfg.Capture)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Advertise)
	assert.Equal(t, "garage", cfg.Name)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: lonely\n"), 0644))

	cfg := Config{Address: "127.0.0.1:7878", LogLevel: "info"}
	require.NoError(t, LoadConfig(path, &cfg))

	assert.Equal(t, "127.0.0.1:7878", cfg.Address)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "lonely", cfg.Name)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := Config{}
	assert.Error(t, LoadConfig("/nonexistent/server.yaml", &cfg))
}

func TestPayloadKeyFromHex(t *testing.T) {
	raw := make([]byte, seal.KeySize)
	for i := range raw {
		raw[i] = byte(i)
	}

	cfg := Config{Key: hex.EncodeToString(raw)}
	key, err := cfg.PayloadKey()
	require.NoError(t, err)
	assert.Equal(t, raw, key)
}

func TestPayloadKeyWrongLength(t *testing.T) {
	cfg := Config{Key: "deadbeef"}
	_, err := cfg.PayloadKey()
	assert.Error(t, err)
}

func TestPayloadKeyFromPassphrase(t *testing.T) {
	cfg := Config{Passphrase: "pp", Salt: "s"}
	key, err := cfg.PayloadKey()
	require.NoError(t, err)
	assert.Len(t, key, seal.KeySize)

	derived, err := seal.DeriveKey("pp", "s")
	require.NoError(t, err)
	assert.Equal(t, derived, key)
}

func TestPayloadKeyPlaintextMode(t *testing.T) {
	cfg := Config{}
	key, err := cfg.PayloadKey()
	require.NoError(t, err)
	assert.Nil(t, key)
}
