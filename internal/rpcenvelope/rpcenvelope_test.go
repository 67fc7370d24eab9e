package rpcenvelope

import (
	"bytes"
	"io"
	"testing"

	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/model"
	"github.com/yobicash/yobinode/internal/yerrors"
)

var testVersion = codec.Version{Major: 1, Minor: 0, Patch: 0}

func TestEnvelopeRoundTrip(t *testing.T) {
	payload, err := ListPeersRequest{Skip: 0, Count: 10}.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	e := New(testVersion, codec.Time(100), 7, MethodListPeers, payload)

	b, err := e.MarshalBinary()
	if err != nil {
		t.Fatalf("Envelope.MarshalBinary: %v", err)
	}
	got := &Envelope{}
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("Envelope.UnmarshalBinary: %v", err)
	}
	if got.ID != e.ID || got.Nonce != e.Nonce || got.Method != e.Method {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, e)
	}

	if err := got.Validate(testVersion, codec.Time(200), MethodListPeers); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestEnvelopeValidateRejectsBadChecksum(t *testing.T) {
	e := New(testVersion, codec.Time(100), 1, MethodPing, nil)
	e.Nonce++ // invalidates the self id without touching it directly
	if err := e.Validate(testVersion, codec.Time(200), MethodPing); yerrors.KindOf(err) != yerrors.InvalidValue {
		t.Fatalf("expected InvalidValue for a tampered envelope, got %v", err)
	}
}

func TestEnvelopeValidateRejectsFutureTime(t *testing.T) {
	e := New(testVersion, codec.Time(1000), 1, MethodPing, nil)
	if err := e.Validate(testVersion, codec.Time(1), MethodPing); yerrors.KindOf(err) != yerrors.InvalidValue {
		t.Fatalf("expected InvalidValue for a future-dated envelope, got %v", err)
	}
}

func TestEnvelopeValidateRejectsNewerVersion(t *testing.T) {
	e := New(codec.Version{Major: 2}, codec.Time(100), 1, MethodPing, nil)
	if err := e.Validate(testVersion, codec.Time(200), MethodPing); yerrors.KindOf(err) != yerrors.InvalidValue {
		t.Fatalf("expected InvalidValue for a newer major version, got %v", err)
	}
}

func TestEnvelopeValidateRejectsMismatchedMethod(t *testing.T) {
	e := New(testVersion, codec.Time(100), 1, MethodPing, nil)
	if err := e.Validate(testVersion, codec.Time(200), MethodGetTx); yerrors.KindOf(err) != yerrors.InvalidRPCMethod {
		t.Fatalf("expected InvalidRPCMethod for a mismatched frame kind, got %v", err)
	}
}

// TestFrameRoundTrip mirrors the "LEN must match len(PAYLOAD)" round
// trip: write a frame, read it back, and check every field survives.
func TestFrameRoundTrip(t *testing.T) {
	payload := []byte("hello")
	var buf bytes.Buffer
	if err := WriteFrame(&buf, &Frame{Status: StatusRequest, Method: MethodPing, Payload: payload}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.Status != StatusRequest || got.Method != MethodPing || !bytes.Equal(got.Payload, payload) {
		t.Fatalf("frame round trip mismatch: %+v", got)
	}
}

// TestFrameRejectsBadMagic mirrors scenario S6's first half: an
// envelope with a differing magic prefix is rejected without decoding
// further.
func TestFrameRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, &Frame{Status: StatusRequest, Method: MethodPing}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	corrupt := buf.Bytes()
	corrupt[0] ^= 0xFF
	if _, err := ReadFrame(bytes.NewReader(corrupt)); yerrors.KindOf(err) != yerrors.InvalidMessagePrefix {
		t.Fatalf("expected InvalidMessagePrefix, got %v", err)
	}
}

// TestFrameRejectsKindOutOfRange mirrors scenario S6's second half: a
// bad KIND is structurally intact, not a framing failure, so ReadFrame
// must still return the decoded frame (payload fully drained) alongside
// the error, letting the caller answer on the same connection rather
// than simply closing it.
func TestFrameRejectsKindOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 2, 3, 4}
	if err := WriteFrame(&buf, &Frame{Status: StatusRequest, Method: Method(9999), Payload: payload}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	// Trailing bytes from a frame that would follow, to prove ReadFrame
	// consumed exactly LEN bytes of payload and left the stream synced.
	buf.Write([]byte{0xAA, 0xBB})

	frame, err := ReadFrame(&buf)
	if yerrors.KindOf(err) != yerrors.InvalidMessageKind {
		t.Fatalf("expected InvalidMessageKind, got %v", err)
	}
	if frame == nil {
		t.Fatal("expected a non-nil frame alongside InvalidMessageKind")
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Fatalf("expected the payload to be drained intact, got %v", frame.Payload)
	}
	rest, err := io.ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(rest, []byte{0xAA, 0xBB}) {
		t.Fatalf("expected the stream to remain in sync, got %v", rest)
	}
}

func TestEnvelopeJSONRoundTrip(t *testing.T) {
	e := New(testVersion, codec.Time(42), 3, MethodGetTx, []byte{1, 2, 3})
	b, err := e.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	got := &Envelope{}
	if err := got.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got.ID != e.ID || got.Method != e.Method || got.Nonce != e.Nonce || !bytes.Equal(got.Payload, e.Payload) {
		t.Fatalf("JSON round trip mismatch: got %+v, want %+v", got, e)
	}
}

func TestGetTxResponseRoundTrip(t *testing.T) {
	tx, err := model.NewTransaction(model.CurrentVersion, codec.Time(1), nil,
		[]model.Output{{Height: 1, Recipient: codec.PublicKey{1}, Amount: codec.AmountFromUint64(5)}})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	resp := GetTxResponse{Tx: tx}
	b, err := resp.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got := &GetTxResponse{}
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got.Tx.ID != tx.ID {
		t.Fatalf("round-tripped transaction id mismatch")
	}
}

func TestConfirmTxResponseNotFoundRoundTrip(t *testing.T) {
	resp := ConfirmTxResponse{Found: false}
	b, err := resp.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got := &ConfirmTxResponse{}
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got.Found {
		t.Fatalf("expected Found=false to round trip")
	}
}
