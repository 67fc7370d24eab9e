package codec

import (
	"bytes"
	"testing"

	"github.com/yobicash/yobinode/internal/yerrors"
)

func TestDigestRoundTrip(t *testing.T) {
	var d Digest
	for i := range d {
		d[i] = byte(i)
	}
	b, err := d.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(b) != DigestSize {
		t.Fatalf("expected %d bytes, got %d", DigestSize, len(b))
	}
	var got Digest
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got != d {
		t.Fatalf("round trip mismatch: %v != %v", got, d)
	}

	j, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var got2 Digest
	if err := got2.UnmarshalJSON(j); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got2 != d {
		t.Fatalf("json round trip mismatch")
	}
}

func TestDigestUnmarshalInvalidLength(t *testing.T) {
	var d Digest
	err := d.UnmarshalBinary(make([]byte, 10))
	if yerrors.KindOf(err) != yerrors.InvalidLength {
		t.Fatalf("expected InvalidLength, got %v", err)
	}
}

func TestHostRoundTrip(t *testing.T) {
	h, err := HostFromString("192.168.1.2", 2112)
	if err != nil {
		t.Fatalf("HostFromString: %v", err)
	}
	b, _ := h.MarshalBinary()
	if len(b) != HostSize {
		t.Fatalf("expected %d bytes, got %d", HostSize, len(b))
	}
	var got Host
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: %+v != %+v", got, h)
	}
}

func TestVersionCompare(t *testing.T) {
	v1 := Version{Major: 1, Minor: 0, Patch: 0}
	v2 := Version{Major: 1, Minor: 1, Patch: 0}
	if v1.Compare(v2) >= 0 {
		t.Fatalf("expected v1 < v2")
	}
	if v2.Compare(v1) <= 0 {
		t.Fatalf("expected v2 > v1")
	}
	if v1.Compare(v1) != 0 {
		t.Fatalf("expected v1 == v1")
	}
}

func TestAmountArithmetic(t *testing.T) {
	a := AmountFromUint64(100)
	b := AmountFromUint64(40)
	sum := a.Add(b)
	if sum.Uint64() != 140 {
		t.Fatalf("expected 140, got %d", sum.Uint64())
	}
	if !a.GTE(b) {
		t.Fatalf("expected a >= b")
	}
	if b.GTE(a) {
		t.Fatalf("expected !(b >= a)")
	}
	diff := a.Sub(b)
	if diff.Uint64() != 60 {
		t.Fatalf("expected 60, got %d", diff.Uint64())
	}
	if !ZeroAmount().IsZero() {
		t.Fatalf("expected zero amount to be zero")
	}
}

func TestAmountRoundTrip(t *testing.T) {
	a := AmountFromUint64(123456789)
	bin, err := a.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var got Amount
	if err := got.UnmarshalBinary(bin); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got.Cmp(a) != 0 {
		t.Fatalf("round trip mismatch")
	}

	j, err := a.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var got2 Amount
	if err := got2.UnmarshalJSON(j); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got2.Cmp(a) != 0 {
		t.Fatalf("json round trip mismatch")
	}
}

func TestAmountUnmarshalInvalidLength(t *testing.T) {
	var a Amount
	bad := []byte{0, 0, 0, 5, 1, 2} // claims 5 bytes, only 2 present
	if err := a.UnmarshalBinary(bad); yerrors.KindOf(err) != yerrors.InvalidLength {
		t.Fatalf("expected InvalidLength, got %v", err)
	}
}

func TestDigestZeroAndString(t *testing.T) {
	var d Digest
	if !d.IsZero() {
		t.Fatalf("expected zero digest")
	}
	d[0] = 1
	if d.IsZero() {
		t.Fatalf("expected non-zero digest")
	}
	if bytes.Contains([]byte(d.String()), []byte{0}) {
		t.Fatalf("hex string should not contain raw null bytes")
	}
}
