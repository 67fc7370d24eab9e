package codec

import (
	"encoding/binary"
	"encoding/json"
	"math/big"

	"github.com/yobicash/yobinode/internal/yerrors"
)

// Amount is an arbitrary-precision, non-negative integer amount of
// currency. The wire form is a 4-byte big-endian length prefix
// followed by the big-endian magnitude bytes (no sign, amounts are
// never negative).
type Amount struct {
	v *big.Int
}

// ZeroAmount returns the zero amount.
func ZeroAmount() Amount { return Amount{v: big.NewInt(0)} }

// AmountFromUint64 builds an Amount from a uint64.
func AmountFromUint64(n uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(n)}
}

func (a Amount) big() *big.Int {
	if a.v == nil {
		return big.NewInt(0)
	}
	return a.v
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.big(), b.big())}
}

// Sub returns a - b, floored at zero. Callers needing to reject a
// short balance check a.GTE(b) first; Sub itself never errors.
func (a Amount) Sub(b Amount) Amount {
	r := new(big.Int).Sub(a.big(), b.big())
	if r.Sign() < 0 {
		r = big.NewInt(0)
	}
	return Amount{v: r}
}

// GTE reports whether a >= b.
func (a Amount) GTE(b Amount) bool { return a.big().Cmp(b.big()) >= 0 }

// Cmp returns -1, 0, 1 comparing a to b.
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

// Uint64 returns the amount as a uint64, or 0 if it does not fit in
// one (used only for display).
func (a Amount) Uint64() uint64 {
	if !a.big().IsUint64() {
		return 0
	}
	return a.big().Uint64()
}

func (a Amount) MarshalBinary() ([]byte, error) {
	mag := a.big().Bytes()
	if len(mag) > 0xFFFFFFFF {
		return nil, yerrors.New(yerrors.InvalidLength, "Amount.MarshalBinary", "amount too large")
	}
	out := make([]byte, 4+len(mag))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(mag)))
	copy(out[4:], mag)
	return out, nil
}

func (a *Amount) UnmarshalBinary(b []byte) error {
	if len(b) < 4 {
		return yerrors.New(yerrors.InvalidLength, "Amount.UnmarshalBinary", "missing length prefix")
	}
	n := binary.BigEndian.Uint32(b[0:4])
	if uint32(len(b)-4) != n {
		return yerrors.New(yerrors.InvalidLength, "Amount.UnmarshalBinary", "length mismatch")
	}
	a.v = new(big.Int).SetBytes(b[4:])
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.big().String())
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return yerrors.Wrap(yerrors.JSON, "Amount.UnmarshalJSON", err)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return yerrors.New(yerrors.ParsingFailure, "Amount.UnmarshalJSON", "invalid amount")
	}
	a.v = v
	return nil
}

func (a Amount) String() string { return a.big().String() }
