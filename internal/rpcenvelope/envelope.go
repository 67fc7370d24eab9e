package rpcenvelope

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// MagicPrefix identifies this protocol's wire frames. Not specified by
// the original source (§9 Open Question 3); fixed here as the ASCII
// bytes "YBC1" and documented in DESIGN.md.
const MagicPrefix uint32 = 0x59424331

// Status distinguishes a request frame from a response frame.
type Status uint32

const (
	StatusRequest Status = iota
	StatusResponse
)

func (s Status) Valid() bool { return s == StatusRequest || s == StatusResponse }

func (s Status) String() string {
	if s == StatusResponse {
		return "Response"
	}
	return "Request"
}

// Method discriminates the envelope's payload type. MethodError tags an
// Error payload; MethodUnknown is the pseudo-method used both for
// frames naming no real method and for an Error's own method field when
// the original request's method could not be determined.
type Method uint32

const (
	MethodPing Method = iota
	MethodListPeers
	MethodListData
	MethodGetData
	MethodListTxAncestors
	MethodGetTx
	MethodConfirmTx
	MethodGetCb
	MethodError
	MethodUnknown
)

// methodCount bounds the valid KIND range: [0, methodCount).
const methodCount = MethodUnknown + 1

var methodNames = map[Method]string{
	MethodPing:            "Ping",
	MethodListPeers:       "ListPeers",
	MethodListData:        "ListData",
	MethodGetData:         "GetData",
	MethodListTxAncestors: "ListTxAncestors",
	MethodGetTx:           "GetTx",
	MethodConfirmTx:       "ConfirmTx",
	MethodGetCb:           "GetCb",
	MethodError:           "Error",
	MethodUnknown:         "Unknown",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return "Unknown"
}

func (m Method) Valid() bool { return m < methodCount }

// Envelope is the self-identified message anatomy of spec.md §4.13: a
// hash of its own fields, a version, a timestamp, a nonce, a method tag
// and a method-specific payload.
type Envelope struct {
	ID      codec.Digest
	Version codec.Version
	Time    codec.Time
	Nonce   uint32
	Method  Method
	Payload []byte
}

func (e *Envelope) bytesForID() []byte {
	w := &writer{}
	w.marshal(e.Version)
	w.marshal(e.Time)
	w.uint32(e.Nonce)
	w.uint32(uint32(e.Method))
	w.blob(e.Payload)
	return w.Bytes()
}

// New builds an Envelope and derives its self id.
func New(version codec.Version, t codec.Time, nonce uint32, method Method, payload []byte) *Envelope {
	e := &Envelope{Version: version, Time: t, Nonce: nonce, Method: method, Payload: payload}
	e.ID = ycrypto.Hash(e.bytesForID())
	return e
}

// MarshalBinary returns the envelope's canonical PAYLOAD bytes (the
// bytes carried inside a wire frame, not the frame itself — see
// frame.go for framing).
func (e *Envelope) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.bytes(e.ID[:])
	if err := w.marshal(e.Version); err != nil {
		return nil, err
	}
	if err := w.marshal(e.Time); err != nil {
		return nil, err
	}
	w.uint32(e.Nonce)
	w.uint32(uint32(e.Method))
	w.blob(e.Payload)
	return w.Bytes(), nil
}

func (e *Envelope) UnmarshalBinary(b []byte) error {
	r := newReader("Envelope.UnmarshalBinary", b)
	id, err := r.digest()
	if err != nil {
		return err
	}
	version, err := r.version()
	if err != nil {
		return err
	}
	t, err := r.time()
	if err != nil {
		return err
	}
	nonce, err := r.uint32()
	if err != nil {
		return err
	}
	method, err := r.uint32()
	if err != nil {
		return err
	}
	payload, err := r.blob()
	if err != nil {
		return err
	}
	if err := r.finish(); err != nil {
		return err
	}
	e.ID, e.Version, e.Time, e.Nonce, e.Method, e.Payload = id, version, t, nonce, Method(method), payload
	return nil
}

// Validate applies spec.md §4.13's four receive-time checks against
// currentVersion, now, and the method tag the outer wire frame (KIND)
// declared. Checksum, version and time mismatches all surface as
// InvalidValue: the closed error taxonomy of spec.md §7 has no
// distinct InvalidChecksum/InvalidVersion/InvalidTime kinds despite
// §4.13 naming them, so this implementation folds all three into the
// general-purpose kind (see DESIGN.md).
func (e *Envelope) Validate(currentVersion codec.Version, now codec.Time, frameMethod Method) error {
	wantID := ycrypto.Hash(e.bytesForID())
	if wantID != e.ID {
		return yerrors.New(yerrors.InvalidValue, "Envelope.Validate", "self id does not match hashed fields")
	}
	if e.Version.Major > currentVersion.Major {
		return yerrors.New(yerrors.InvalidValue, "Envelope.Validate", "version major exceeds current")
	}
	if e.Time > now {
		return yerrors.New(yerrors.InvalidValue, "Envelope.Validate", "time is in the future")
	}
	if e.Method != frameMethod {
		return yerrors.New(yerrors.InvalidRPCMethod, "Envelope.Validate", e.Method.String())
	}
	return nil
}
