package rpcenvelope

import (
	"encoding/hex"
	"encoding/json"

	"github.com/yobicash/yobinode/internal/codec"
)

// jsonEnvelope is the debug-only JSON form of Envelope (spec.md
// §4.13's "Alternate framing"): binary fields hex-encode, everything
// else round-trips through the types' own JSON codecs.
type jsonEnvelope struct {
	ID      codec.Digest  `json:"id"`
	Version codec.Version `json:"version"`
	Time    codec.Time    `json:"time"`
	Nonce   uint32        `json:"nonce"`
	Method  string        `json:"method"`
	Payload string        `json:"payload"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonEnvelope{
		ID:      e.ID,
		Version: e.Version,
		Time:    e.Time,
		Nonce:   e.Nonce,
		Method:  e.Method.String(),
		Payload: hex.EncodeToString(e.Payload),
	})
}

var methodByName = func() map[string]Method {
	m := make(map[string]Method, len(methodNames))
	for k, v := range methodNames {
		m[v] = k
	}
	return m
}()

func (e *Envelope) UnmarshalJSON(b []byte) error {
	var je jsonEnvelope
	if err := json.Unmarshal(b, &je); err != nil {
		return err
	}
	payload, err := hex.DecodeString(je.Payload)
	if err != nil {
		return err
	}
	method, ok := methodByName[je.Method]
	if !ok {
		method = MethodUnknown
	}
	e.ID, e.Version, e.Time, e.Nonce, e.Method, e.Payload = je.ID, je.Version, je.Time, je.Nonce, method, payload
	return nil
}
