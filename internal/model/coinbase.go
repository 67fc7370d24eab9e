package model

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// Coinbase is a mined object creating new currency: one miner-reward
// output and one fee output, produced by internal/mining.
type Coinbase struct {
	Time    codec.Time
	Outputs []Output
	ID      codec.Digest
}

// NewCoinbase builds a Coinbase and derives its id.
func NewCoinbase(t codec.Time, outputs []Output) (*Coinbase, error) {
	if len(outputs) == 0 {
		return nil, yerrors.New(yerrors.InvalidValue, "NewCoinbase", "coinbase must have at least one output")
	}
	cb := &Coinbase{Time: t, Outputs: outputs}
	id, err := cb.computeID()
	if err != nil {
		return nil, err
	}
	cb.ID = id
	return cb, nil
}

func (cb *Coinbase) bytesWithoutID() ([]byte, error) {
	w := &writer{}
	if err := w.marshal(cb.Time); err != nil {
		return nil, err
	}
	w.uint32(uint32(len(cb.Outputs)))
	for _, o := range cb.Outputs {
		if err := o.marshalInto(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (cb *Coinbase) computeID() (codec.Digest, error) {
	b, err := cb.bytesWithoutID()
	if err != nil {
		return codec.Digest{}, err
	}
	return ycrypto.Hash(b), nil
}

// MarshalBinary returns the canonical stored byte form (body || id).
func (cb *Coinbase) MarshalBinary() ([]byte, error) {
	body, err := cb.bytesWithoutID()
	if err != nil {
		return nil, err
	}
	return append(body, cb.ID[:]...), nil
}

func (cb *Coinbase) UnmarshalBinary(b []byte) error {
	r := newReader("Coinbase.UnmarshalBinary", b)
	t, err := r.time()
	if err != nil {
		return err
	}
	n, err := r.uint32()
	if err != nil {
		return err
	}
	outputs := make([]Output, 0, n)
	for i := uint32(0); i < n; i++ {
		o, err := readOutput(r)
		if err != nil {
			return err
		}
		outputs = append(outputs, o)
	}
	id, err := r.digest()
	if err != nil {
		return err
	}
	if err := r.finish(); err != nil {
		return err
	}
	cb.Time, cb.Outputs, cb.ID = t, outputs, id
	return nil
}

// Validate checks universal invariant 2: cb.id == hash of the rest.
func (cb *Coinbase) Validate() error {
	id, err := cb.computeID()
	if err != nil {
		return err
	}
	if id != cb.ID {
		return yerrors.New(yerrors.InvalidValue, "Coinbase.Validate", "id does not match canonical bytes")
	}
	return nil
}

func CreateCoinbase(s *store.Store, cb *Coinbase) error {
	found, err := s.Lookup(store.Coinbases, cb.ID[:])
	if err != nil {
		return err
	}
	if found {
		return yerrors.New(yerrors.AlreadyFound, "CreateCoinbase", cb.ID.String())
	}
	b, err := cb.MarshalBinary()
	if err != nil {
		return err
	}
	return s.Put(store.Coinbases, cb.ID[:], b)
}

func GetCoinbase(s *store.Store, id codec.Digest) (*Coinbase, error) {
	b, err := s.Get(store.Coinbases, id[:])
	if err != nil {
		return nil, err
	}
	cb := &Coinbase{}
	if err := cb.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return cb, nil
}

func LookupCoinbase(s *store.Store, id codec.Digest) (bool, error) {
	return s.Lookup(store.Coinbases, id[:])
}

func CountCoinbases(s *store.Store) (uint32, error) {
	return s.Count(store.Coinbases)
}

func ListCoinbases(s *store.Store, skip, count uint32) ([]*Coinbase, error) {
	keys, err := s.List(store.Coinbases, skip, count)
	if err != nil {
		return nil, err
	}
	out := make([]*Coinbase, 0, len(keys))
	for _, k := range keys {
		var id codec.Digest
		copy(id[:], k)
		cb, err := GetCoinbase(s, id)
		if err != nil {
			return nil, err
		}
		out = append(out, cb)
	}
	return out, nil
}

func DeleteCoinbase(s *store.Store, id codec.Digest) error {
	return s.Delete(store.Coinbases, id[:])
}
