package ycrypto

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/yobicash/yobinode/internal/yerrors"
)

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(yerrors.Wrap(yerrors.Crypto, "RandomBytes", err))
	}
	return b
}

// RandomU32Range returns a uniform random uint32 in [lo, hi).
func RandomU32Range(lo, hi uint32) uint32 {
	if hi <= lo {
		return lo
	}
	span := big.NewInt(int64(hi - lo))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		panic(yerrors.Wrap(yerrors.Crypto, "RandomU32Range", err))
	}
	return lo + uint32(n.Uint64())
}

// RandomU32Sample returns k distinct uniformly sampled values from
// [lo, hi) in sampling order (a partial Fisher-Yates shuffle).
func RandomU32Sample(lo, hi, k uint32) []uint32 {
	span := hi - lo
	if k > span {
		k = span
	}
	pool := make([]uint32, span)
	for i := range pool {
		pool[i] = lo + uint32(i)
	}
	out := make([]uint32, 0, k)
	for i := uint32(0); i < k; i++ {
		j := RandomU32Range(i, span)
		pool[i], pool[j] = pool[j], pool[i]
		out = append(out, pool[i])
	}
	return out
}

// RandomSalt4 returns a 4-byte random salt, used to disambiguate
// entries sharing the same logical key prefix (spec.md's by-last-seen
// peer index). Drawn from a fresh UUIDv4 rather than crypto/rand
// directly, matching the teacher's own reach for google/uuid wherever
// it needs an opaque random identifier.
func RandomSalt4() [4]byte {
	var s [4]byte
	id := uuid.New()
	copy(s[:], id[:4])
	return s
}
