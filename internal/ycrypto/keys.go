package ycrypto

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// GenerateKeypair produces a fresh secp256k1 keypair encoded to
// spec.md's fixed 64/64-byte widths (see SPEC_FULL.md §4.3A).
func GenerateKeypair() (codec.SecretKey, codec.PublicKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return codec.SecretKey{}, codec.PublicKey{}, yerrors.Wrap(yerrors.Crypto, "GenerateKeypair", err)
	}
	return encodeKeypair(priv), encodePublicKey(priv.PubKey()), nil
}

func encodeKeypair(priv *btcec.PrivateKey) codec.SecretKey {
	var sk codec.SecretKey
	copy(sk[:32], priv.Serialize())
	return sk
}

func encodePublicKey(pub *btcec.PublicKey) codec.PublicKey {
	var pk codec.PublicKey
	raw := pub.SerializeUncompressed() // 0x04 || X(32) || Y(32)
	copy(pk[:], raw[1:])
	return pk
}

// PublicKeyFromSecret derives the public key for a SecretKey produced
// by GenerateKeypair.
func PublicKeyFromSecret(sk codec.SecretKey) (codec.PublicKey, error) {
	priv := btcec.PrivKeyFromBytes(sk[:32])
	if priv == nil {
		return codec.PublicKey{}, yerrors.New(yerrors.InvalidKey, "PublicKeyFromSecret", "malformed scalar")
	}
	return encodePublicKey(priv.PubKey()), nil
}
