package node

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"

	"github.com/yobicash/yobinode/internal/config"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// Argon2id parameters for the auth path only (spec.md §4.14); the
// wallet master key keeps the literal Hash(password)[:32] derivation
// of §4.10 unconditionally.
const (
	argon2Time        = 3
	argon2Memory      = 64 * 1024
	argon2Parallelism = 4
	argon2KeyLen      = 32
	argon2SaltLen     = 32
)

func argon2Hash(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Parallelism, argon2KeyLen)
}

// ensureAuthSalt generates and persists a salt on first run, then caches
// the Argon2id hash of the configured password for CheckPassword.
func (n *Node) ensureAuthSalt() error {
	if n.cfg.PasswordSalt == "" {
		n.passwordSalt = ycrypto.RandomBytes(argon2SaltLen)
		n.cfg.PasswordSalt = hex.EncodeToString(n.passwordSalt)
		if n.dir != "" {
			if err := config.Save(config.Path(n.dir), n.cfg); err != nil {
				return err
			}
		}
	} else {
		salt, err := hex.DecodeString(n.cfg.PasswordSalt)
		if err != nil {
			return yerrors.Wrap(yerrors.ParsingFailure, "node.ensureAuthSalt", err)
		}
		n.passwordSalt = salt
	}
	n.passwordHash = argon2Hash(n.cfg.Password, n.passwordSalt)
	return nil
}

// CheckPassword verifies a candidate password against the one
// configured at open time, in constant time.
func (n *Node) CheckPassword(s string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	candidate := argon2Hash(s, n.passwordSalt)
	if subtle.ConstantTimeCompare(candidate, n.passwordHash) != 1 {
		return yerrors.New(yerrors.InvalidPassword, "Node.CheckPassword", "password does not match")
	}
	return nil
}

// GetKey returns the wallet master key derived from the configured
// password (spec.md §4.10).
func (n *Node) GetKey() []byte {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]byte(nil), n.k...)
}

// CheckKey verifies a candidate key against the derived master key, in
// constant time.
func (n *Node) CheckKey(k []byte) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if subtle.ConstantTimeCompare(k, n.k) != 1 {
		return yerrors.New(yerrors.InvalidKey, "Node.CheckKey", "key does not match")
	}
	return nil
}
