package rpcenvelope

import (
	"encoding/binary"
	"io"

	"github.com/yobicash/yobinode/internal/yerrors"
)

// Frame is the outer wire form: MAGIC | STATUS | KIND | LEN | PAYLOAD.
// KIND and Method are the same discriminator; Frame keeps it alongside
// Payload so a caller can reject an unrecognized KIND before paying to
// decode an Envelope.
type Frame struct {
	Status  Status
	Method  Method
	Payload []byte
}

const frameHeaderSize = 4 + 4 + 4 + 4 // magic, status, kind, len

// WriteFrame writes f to w as MAGIC | STATUS | KIND | LEN | PAYLOAD.
func WriteFrame(w io.Writer, f *Frame) error {
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header[0:4], MagicPrefix)
	binary.BigEndian.PutUint32(header[4:8], uint32(f.Status))
	binary.BigEndian.PutUint32(header[8:12], uint32(f.Method))
	binary.BigEndian.PutUint32(header[12:16], uint32(len(f.Payload)))
	if _, err := w.Write(header); err != nil {
		return yerrors.Wrap(yerrors.IO, "WriteFrame", err)
	}
	if len(f.Payload) > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return yerrors.Wrap(yerrors.IO, "WriteFrame", err)
		}
	}
	return nil
}

// ReadFrame reads one frame from r, validating the magic prefix, the
// status discriminator, the KIND range, and that LEN matches the
// payload actually read (spec.md §4.13, scenario S6).
//
// A bad magic prefix, a short read, or an unrecognized status leave the
// stream unsynchronized — there is no way to know where the next frame
// begins, so these are reported as framing failures
// (InvalidMessagePrefix/InvalidMessageStatus/IO) with a nil Frame; the
// caller closes the connection without a response (spec.md §7).
//
// A KIND outside the valid range is different: the header still names
// a real LEN, so the payload is drained to keep the stream in sync,
// and ReadFrame returns both the (structurally intact) Frame and an
// InvalidMessageKind error. The caller can answer it as a logical
// error on the same connection instead of closing (spec.md §8,
// scenario S6).
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, yerrors.Wrap(yerrors.IO, "ReadFrame", err)
	}
	magic := binary.BigEndian.Uint32(header[0:4])
	if magic != MagicPrefix {
		return nil, yerrors.New(yerrors.InvalidMessagePrefix, "ReadFrame", "magic prefix mismatch")
	}
	status := Status(binary.BigEndian.Uint32(header[4:8]))
	if !status.Valid() {
		return nil, yerrors.New(yerrors.InvalidMessageStatus, "ReadFrame", "unrecognized status")
	}
	kind := Method(binary.BigEndian.Uint32(header[8:12]))
	length := binary.BigEndian.Uint32(header[12:16])

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, yerrors.Wrap(yerrors.IO, "ReadFrame", err)
		}
	}
	frame := &Frame{Status: status, Method: kind, Payload: payload}
	if !kind.Valid() {
		return frame, yerrors.New(yerrors.InvalidMessageKind, "ReadFrame", "kind outside valid range")
	}
	return frame, nil
}
