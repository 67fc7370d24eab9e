// Package codec implements the node's fixed-width binary and JSON
// encodings for every primitive domain type: digests, keys, MAC codes,
// times, versions and hosts. Every type exposes MarshalBinary/
// UnmarshalBinary (encoding.BinaryMarshaler/Unmarshaler). Digests,
// keys, MAC codes and hosts also define MarshalJSON/UnmarshalJSON;
// Time and Version use encoding/json's default form (a number and an
// object with Major/Minor/Patch fields).
package codec

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"net"

	"github.com/yobicash/yobinode/internal/yerrors"
)

// DigestSize is the byte width of a hash digest.
const DigestSize = 64

// Digest is a 64-byte hash output.
type Digest [DigestSize]byte

func (d Digest) MarshalBinary() ([]byte, error) {
	out := make([]byte, DigestSize)
	copy(out, d[:])
	return out, nil
}

func (d *Digest) UnmarshalBinary(b []byte) error {
	if len(b) != DigestSize {
		return yerrors.New(yerrors.InvalidLength, "Digest.UnmarshalBinary", "expected 64 bytes")
	}
	copy(d[:], b)
	return nil
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(d[:]))
}

func (d *Digest) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return yerrors.Wrap(yerrors.JSON, "Digest.UnmarshalJSON", err)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return yerrors.Wrap(yerrors.ParsingFailure, "Digest.UnmarshalJSON", err)
	}
	return d.UnmarshalBinary(raw)
}

func (d Digest) IsZero() bool {
	for _, v := range d {
		if v != 0 {
			return false
		}
	}
	return true
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// KeySize is the byte width of a public or secret key.
const KeySize = 64

// PublicKey is a 64-byte elliptic-curve public key (see ycrypto for the
// secp256k1 derivation convention).
type PublicKey [KeySize]byte

func (k PublicKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, KeySize)
	copy(out, k[:])
	return out, nil
}

func (k *PublicKey) UnmarshalBinary(b []byte) error {
	if len(b) != KeySize {
		return yerrors.New(yerrors.InvalidLength, "PublicKey.UnmarshalBinary", "expected 64 bytes")
	}
	copy(k[:], b)
	return nil
}

func (k PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(k[:]))
}

func (k *PublicKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return yerrors.Wrap(yerrors.JSON, "PublicKey.UnmarshalJSON", err)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return yerrors.Wrap(yerrors.ParsingFailure, "PublicKey.UnmarshalJSON", err)
	}
	return k.UnmarshalBinary(raw)
}

func (k PublicKey) String() string { return hex.EncodeToString(k[:]) }

// SecretKey is a 64-byte secret key (32-byte scalar, 32 reserved bytes).
type SecretKey [KeySize]byte

func (k SecretKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, KeySize)
	copy(out, k[:])
	return out, nil
}

func (k *SecretKey) UnmarshalBinary(b []byte) error {
	if len(b) != KeySize {
		return yerrors.New(yerrors.InvalidLength, "SecretKey.UnmarshalBinary", "expected 64 bytes")
	}
	copy(k[:], b)
	return nil
}

func (k SecretKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(k[:]))
}

func (k *SecretKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return yerrors.Wrap(yerrors.JSON, "SecretKey.UnmarshalJSON", err)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return yerrors.Wrap(yerrors.ParsingFailure, "SecretKey.UnmarshalJSON", err)
	}
	return k.UnmarshalBinary(raw)
}

// MACSize is the byte width of a message authentication code.
const MACSize = 32

// MAC is a 32-byte message authentication tag.
type MAC [MACSize]byte

func (m MAC) MarshalBinary() ([]byte, error) {
	out := make([]byte, MACSize)
	copy(out, m[:])
	return out, nil
}

func (m *MAC) UnmarshalBinary(b []byte) error {
	if len(b) != MACSize {
		return yerrors.New(yerrors.InvalidLength, "MAC.UnmarshalBinary", "expected 32 bytes")
	}
	copy(m[:], b)
	return nil
}

func (m MAC) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(m[:]))
}

func (m *MAC) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return yerrors.Wrap(yerrors.JSON, "MAC.UnmarshalJSON", err)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return yerrors.Wrap(yerrors.ParsingFailure, "MAC.UnmarshalJSON", err)
	}
	return m.UnmarshalBinary(raw)
}

func (m MAC) String() string { return hex.EncodeToString(m[:]) }

// Time is seconds since the Unix epoch, encoded as 8 bytes big-endian.
type Time int64

func (t Time) MarshalBinary() ([]byte, error) {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(t))
	return out, nil
}

func (t *Time) UnmarshalBinary(b []byte) error {
	if len(b) != 8 {
		return yerrors.New(yerrors.InvalidLength, "Time.UnmarshalBinary", "expected 8 bytes")
	}
	*t = Time(binary.BigEndian.Uint64(b))
	return nil
}

// Version is three 32-bit fields, 12 bytes big-endian.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

const VersionSize = 12

func (v Version) MarshalBinary() ([]byte, error) {
	out := make([]byte, VersionSize)
	binary.BigEndian.PutUint32(out[0:4], v.Major)
	binary.BigEndian.PutUint32(out[4:8], v.Minor)
	binary.BigEndian.PutUint32(out[8:12], v.Patch)
	return out, nil
}

func (v *Version) UnmarshalBinary(b []byte) error {
	if len(b) != VersionSize {
		return yerrors.New(yerrors.InvalidLength, "Version.UnmarshalBinary", "expected 12 bytes")
	}
	v.Major = binary.BigEndian.Uint32(b[0:4])
	v.Minor = binary.BigEndian.Uint32(b[4:8])
	v.Patch = binary.BigEndian.Uint32(b[8:12])
	return nil
}

// Compare returns -1, 0 or 1 comparing v to o field by field.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmp32(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmp32(v.Minor, o.Minor)
	default:
		return cmp32(v.Patch, o.Patch)
	}
}

func cmp32(a, b uint32) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// HostSize is the byte width of a Host (4-byte IPv4 + 2-byte port).
const HostSize = 6

// Host is an IPv4 address and port.
type Host struct {
	IP   [4]byte
	Port uint16
}

func (h Host) MarshalBinary() ([]byte, error) {
	out := make([]byte, HostSize)
	copy(out[0:4], h.IP[:])
	binary.BigEndian.PutUint16(out[4:6], h.Port)
	return out, nil
}

func (h *Host) UnmarshalBinary(b []byte) error {
	if len(b) != HostSize {
		return yerrors.New(yerrors.InvalidLength, "Host.UnmarshalBinary", "expected 6 bytes")
	}
	copy(h.IP[:], b[0:4])
	h.Port = binary.BigEndian.Uint16(b[4:6])
	return nil
}

type hostJSON struct {
	Address string `json:"address"`
	Port    uint16 `json:"port"`
}

func (h Host) MarshalJSON() ([]byte, error) {
	return json.Marshal(hostJSON{Address: net.IP(h.IP[:]).String(), Port: h.Port})
}

func (h *Host) UnmarshalJSON(b []byte) error {
	var j hostJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return yerrors.Wrap(yerrors.JSON, "Host.UnmarshalJSON", err)
	}
	ip := net.ParseIP(j.Address)
	if ip == nil {
		return yerrors.New(yerrors.ParsingFailure, "Host.UnmarshalJSON", "invalid ipv4 address")
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return yerrors.New(yerrors.ParsingFailure, "Host.UnmarshalJSON", "not an ipv4 address")
	}
	copy(h.IP[:], ip4)
	h.Port = j.Port
	return nil
}

func (h Host) String() string {
	return net.IP(h.IP[:]).String()
}

// HostFromString parses a dotted-quad IPv4 address and port into a Host.
func HostFromString(addr string, port uint16) (Host, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return Host{}, yerrors.New(yerrors.ParsingFailure, "HostFromString", "invalid ipv4 address")
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return Host{}, yerrors.New(yerrors.ParsingFailure, "HostFromString", "not an ipv4 address")
	}
	var h Host
	copy(h.IP[:], ip4)
	h.Port = port
	return h, nil
}
