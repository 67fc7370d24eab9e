// Package ycrypto is the node's cryptographic collaborator: hashing,
// randomness, symmetric encryption and keypair generation, the parts of
// the black-box external library spec.md §6 describes that this module
// implements here. Amount arithmetic lives in internal/codec and the
// transaction/coinbase builders in internal/model. Every other package
// in this module only ever calls through here for cryptographic
// operations.
package ycrypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"

	"github.com/yobicash/yobinode/internal/codec"
)

// Hash returns the 64-byte SHA-512 digest of data.
func Hash(data []byte) codec.Digest {
	sum := sha512.Sum512(data)
	return codec.Digest(sum)
}

// MAC returns the 32-byte HMAC-SHA256 tag of data under key.
func MAC(key, data []byte) codec.MAC {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	sum := h.Sum(nil)
	var m codec.MAC
	copy(m[:], sum)
	return m
}

// CheckMAC reports whether tag is the correct MAC of data under key.
func CheckMAC(key, data []byte, tag codec.MAC) bool {
	want := MAC(key, data)
	return hmac.Equal(want[:], tag[:])
}
