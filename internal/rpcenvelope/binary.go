// Package rpcenvelope implements the node's wire protocol: the
// self-identified request/response envelope, its binary and JSON
// codecs, and the validation rules applied on receipt.
package rpcenvelope

import (
	"bytes"
	"encoding/binary"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/yerrors"
)

type writer struct {
	buf bytes.Buffer
}

func (w *writer) bytes(b []byte) { w.buf.Write(b) }

func (w *writer) uint32(n uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	w.buf.Write(b[:])
}

func (w *writer) byte(b byte) { w.buf.WriteByte(b) }

func (w *writer) marshal(m interface{ MarshalBinary() ([]byte, error) }) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

// blob writes a 4-byte length prefix followed by b, for variable-length
// payloads (ciphertext, strings) embedded in an otherwise fixed-width
// message.
func (w *writer) blob(b []byte) {
	w.uint32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *writer) str(s string) { w.blob([]byte(s)) }

func (w *writer) Bytes() []byte { return w.buf.Bytes() }

type reader struct {
	b   []byte
	off int
	op  string
}

func newReader(op string, b []byte) *reader { return &reader{b: b, op: op} }

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.b) {
		return nil, yerrors.New(yerrors.InvalidLength, r.op, "unexpected end of buffer")
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) byte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) blob() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (r *reader) str() (string, error) {
	b, err := r.blob()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) digest() (codec.Digest, error) {
	var d codec.Digest
	b, err := r.take(codec.DigestSize)
	if err != nil {
		return d, err
	}
	return d, d.UnmarshalBinary(b)
}

func (r *reader) publicKey() (codec.PublicKey, error) {
	var k codec.PublicKey
	b, err := r.take(codec.KeySize)
	if err != nil {
		return k, err
	}
	return k, k.UnmarshalBinary(b)
}

func (r *reader) mac() (codec.MAC, error) {
	var m codec.MAC
	b, err := r.take(codec.MACSize)
	if err != nil {
		return m, err
	}
	return m, m.UnmarshalBinary(b)
}

func (r *reader) time() (codec.Time, error) {
	var t codec.Time
	b, err := r.take(8)
	if err != nil {
		return t, err
	}
	return t, t.UnmarshalBinary(b)
}

func (r *reader) version() (codec.Version, error) {
	var v codec.Version
	b, err := r.take(codec.VersionSize)
	if err != nil {
		return v, err
	}
	return v, v.UnmarshalBinary(b)
}

func (r *reader) host() (codec.Host, error) {
	var h codec.Host
	b, err := r.take(codec.HostSize)
	if err != nil {
		return h, err
	}
	return h, h.UnmarshalBinary(b)
}

func (r *reader) done() bool { return r.off == len(r.b) }

func (r *reader) finish() error {
	if !r.done() {
		return yerrors.New(yerrors.InvalidLength, r.op, "trailing bytes")
	}
	return nil
}
