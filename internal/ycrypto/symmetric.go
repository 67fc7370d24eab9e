package ycrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/yobicash/yobinode/internal/yerrors"
)

// SymmetricEncrypt encrypts plaintext with AES-256-GCM under the given
// 32-byte key, returning nonce||ciphertext||tag. This is the general
// AEAD scheme every encrypted artifact in the system uses, except the
// Wallets bucket (see EncryptBlockECB) which needs deterministic
// encryption so a wallet can be looked up by name alone.
func SymmetricEncrypt(key32, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key32)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Crypto, "SymmetricEncrypt", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Crypto, "SymmetricEncrypt", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, yerrors.Wrap(yerrors.Crypto, "SymmetricEncrypt", err)
	}
	out := gcm.Seal(nonce, nonce, plaintext, nil)
	return out, nil
}

// SymmetricDecrypt reverses SymmetricEncrypt.
func SymmetricDecrypt(key32, sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(key32)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Crypto, "SymmetricDecrypt", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Crypto, "SymmetricDecrypt", err)
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, yerrors.New(yerrors.InvalidLength, "SymmetricDecrypt", "ciphertext shorter than nonce")
	}
	nonce, ct := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Crypto, "SymmetricDecrypt", err)
	}
	return plaintext, nil
}

// PadTo16 right-pads b with zero bytes to the next 16-byte boundary,
// per spec.md §4.10's wallet key/value encoding.
func PadTo16(b []byte) []byte {
	rem := len(b) % 16
	if rem == 0 {
		return b
	}
	out := make([]byte, len(b)+(16-rem))
	copy(out, b)
	return out
}

// EncryptBlockECB deterministically encrypts padded (a multiple of 16
// bytes) under a 32-byte key, one AES block at a time, with no nonce.
// Used only for the Wallets bucket, where the encrypted wallet *name*
// must be recoverable purely from (name, K) so a wallet can be looked
// up without a side channel for a stored nonce. See SPEC_FULL.md / §9 Open
// Question 2 for why this is acceptable for this one artifact and
// nowhere else.
func EncryptBlockECB(key32, padded []byte) ([]byte, error) {
	if len(padded)%aes.BlockSize != 0 {
		return nil, yerrors.New(yerrors.InvalidLength, "EncryptBlockECB", "plaintext not block-aligned")
	}
	block, err := aes.NewCipher(key32)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Crypto, "EncryptBlockECB", err)
	}
	out := make([]byte, len(padded))
	for i := 0; i < len(padded); i += aes.BlockSize {
		block.Encrypt(out[i:i+aes.BlockSize], padded[i:i+aes.BlockSize])
	}
	return out, nil
}

// DecryptBlockECB reverses EncryptBlockECB.
func DecryptBlockECB(key32, encrypted []byte) ([]byte, error) {
	if len(encrypted)%aes.BlockSize != 0 {
		return nil, yerrors.New(yerrors.InvalidLength, "DecryptBlockECB", "ciphertext not block-aligned")
	}
	block, err := aes.NewCipher(key32)
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Crypto, "DecryptBlockECB", err)
	}
	out := make([]byte, len(encrypted))
	for i := 0; i < len(encrypted); i += aes.BlockSize {
		block.Decrypt(out[i:i+aes.BlockSize], encrypted[i:i+aes.BlockSize])
	}
	return out, nil
}
