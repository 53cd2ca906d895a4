package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/farcaster-proto/farcaster-go/pkg/seal"
)

// Config holds the server configuration. Values come from an optional YAML
// config file; command-line flags override file values.
type Config struct {
	// Address is the listen address (host:port).
	Address string `yaml:"address"`

	// Key is the hex-encoded 32-byte payload key. Empty disables sealing.
	Key string `yaml:"key"`

	// Passphrase derives the payload key via HKDF when Key is empty.
	Passphrase string `yaml:"passphrase"`

	// Salt for passphrase derivation.
	Salt string `yaml:"salt"`

	// Capture is the path of a CBOR protocol capture file (optional).
	Capture string `yaml:"capture"`

	// LogLevel controls operator logging: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Advertise enables mDNS advertising of this endpoint.
	Advertise bool `yaml:"advertise"`

	// Name is the user-friendly endpoint name used in mDNS TXT records.
	Name string `yaml:"name"`
}

// LoadConfig reads a YAML config file into cfg, keeping existing values for
// keys the file does not set.
func LoadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// PayloadKey resolves the configured payload key. Returns nil when neither
// a key nor a passphrase is configured (plaintext mode).
func (c *Config) PayloadKey() ([]byte, error) {
	if c.Key != "" {
		key, err := hex.DecodeString(c.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid key hex: %w", err)
		}
		if len(key) != seal.KeySize {
			return nil, fmt.Errorf("key must be %d bytes, got %d", seal.KeySize, len(key))
		}
		return key, nil
	}
	if c.Passphrase != "" {
		return seal.DeriveKey(c.Passphrase, c.Salt)
	}
	return nil, nil
}
