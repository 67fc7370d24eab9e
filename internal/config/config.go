// Package config loads and saves the node's JSON configuration file
// (spec.md §6): the password used to derive the wallet master key, the
// light-mode flag, the seed host list, the node's own listening host,
// the connection cap, and the data price.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// MinPasswordLength is the shortest password the node accepts.
const MinPasswordLength = 16

// DefaultMaxConns is used when a config omits max_conns or sets it to 0.
const DefaultMaxConns = 8

// DirName is the node's home directory, relative to the user's own home.
const DirName = ".yobicash"

// FileName is the config file's name within DirName.
const FileName = "config.json"

// StoreDirName is the store backend's subdirectory within DirName.
const StoreDirName = "store"

// Config is the on-disk shape of config.json.
type Config struct {
	Password  string       `json:"password"`
	LightMode bool         `json:"light_mode"`
	Seed      []codec.Host `json:"seed"`
	Host      codec.Host   `json:"host"`
	MaxConns  uint16       `json:"max_conns"`
	Price     uint64       `json:"price"`

	// PasswordSalt is hex-encoded and generated once on first run; it
	// backs internal/node's Argon2id auth check (SPEC_FULL.md §4.14),
	// additive to the literal password-hash wallet key derivation.
	PasswordSalt string `json:"password_salt,omitempty"`
}

// Validate checks the invariants spec.md §6 calls out explicitly:
// password length and a non-zero connection cap. Host and Seed are
// validated field-by-field at JSON-decode time by codec.Host itself.
func (c *Config) Validate() error {
	if len(c.Password) < MinPasswordLength {
		return yerrors.New(yerrors.InvalidLength, "Config.Validate", "password must be at least 16 characters")
	}
	if c.MaxConns == 0 {
		c.MaxConns = DefaultMaxConns
	}
	return nil
}

// Dir returns the node's home directory, honoring an explicit override
// (as set by the -C/--config flag) or defaulting to ~/.yobicash.
func Dir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", yerrors.Wrap(yerrors.IO, "config.Dir", err)
	}
	return filepath.Join(home, DirName), nil
}

// Path returns the full path to the config file within dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// StorePath returns the full path to the store backend within dir.
func StorePath(dir string) string {
	return filepath.Join(dir, StoreDirName)
}

// Load reads and parses the config file at path. A malformed JSON
// document, including a host whose address does not parse as IPv4,
// surfaces as ParsingFailure via codec.Host's own UnmarshalJSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.IO, "config.Load", err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, yerrors.Wrap(yerrors.ParsingFailure, "config.Load", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating its parent directory if needed.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return yerrors.Wrap(yerrors.IO, "config.Save", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return yerrors.Wrap(yerrors.JSON, "config.Save", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return yerrors.Wrap(yerrors.IO, "config.Save", err)
	}
	return nil
}

// LoadOrCreate loads the config at dir's config file, creating dir and
// a default config (built from defaultCfg) on first run, mirroring the
// home-directory bootstrap the client and daemon both perform on
// startup.
func LoadOrCreate(dir string, defaultCfg *Config) (*Config, error) {
	path := Path(dir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(path, defaultCfg); err != nil {
			return nil, err
		}
		return defaultCfg, nil
	}
	return Load(path)
}
