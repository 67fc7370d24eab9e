package model

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// UTXO records that a transaction or coinbase output at (ID, Idx) has
// not yet been spent.
type UTXO struct {
	ID        codec.Digest
	Idx       uint32
	Height    uint32
	Recipient codec.PublicKey
	Amount    codec.Amount
}

func utxoKey(id codec.Digest, idx uint32) []byte {
	key := make([]byte, codec.DigestSize+4)
	copy(key, id[:])
	key[codec.DigestSize] = byte(idx >> 24)
	key[codec.DigestSize+1] = byte(idx >> 16)
	key[codec.DigestSize+2] = byte(idx >> 8)
	key[codec.DigestSize+3] = byte(idx)
	return key
}

func (u *UTXO) Key() []byte { return utxoKey(u.ID, u.Idx) }

func (u *UTXO) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.uint32(u.Height)
	w.bytes(u.Recipient[:])
	if err := w.marshal(u.Amount); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (u *UTXO) UnmarshalBinary(b []byte) error {
	r := newReader("UTXO.UnmarshalBinary", b)
	height, err := r.uint32()
	if err != nil {
		return err
	}
	recipient, err := r.publicKey()
	if err != nil {
		return err
	}
	amount, err := r.amount()
	if err != nil {
		return err
	}
	if err := r.finish(); err != nil {
		return err
	}
	u.Height, u.Recipient, u.Amount = height, recipient, amount
	return nil
}

func CreateUTXO(s *store.Store, u *UTXO) error {
	key := u.Key()
	found, err := s.Lookup(store.UTXO, key)
	if err != nil {
		return err
	}
	if found {
		return yerrors.New(yerrors.AlreadyFound, "CreateUTXO", u.ID.String())
	}
	b, err := u.MarshalBinary()
	if err != nil {
		return err
	}
	return s.Put(store.UTXO, key, b)
}

func GetUTXO(s *store.Store, id codec.Digest, idx uint32) (*UTXO, error) {
	b, err := s.Get(store.UTXO, utxoKey(id, idx))
	if err != nil {
		return nil, err
	}
	u := &UTXO{ID: id, Idx: idx}
	if err := u.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return u, nil
}

func LookupUTXO(s *store.Store, id codec.Digest, idx uint32) (bool, error) {
	return s.Lookup(store.UTXO, utxoKey(id, idx))
}

func CountUTXO(s *store.Store) (uint32, error) {
	return s.Count(store.UTXO)
}

func ListUTXO(s *store.Store, skip, count uint32) ([]*UTXO, error) {
	keys, err := s.List(store.UTXO, skip, count)
	if err != nil {
		return nil, err
	}
	out := make([]*UTXO, 0, len(keys))
	for _, k := range keys {
		if len(k) != codec.DigestSize+4 {
			return nil, yerrors.New(yerrors.InvalidLength, "ListUTXO", "malformed utxo key")
		}
		var id codec.Digest
		copy(id[:], k[:codec.DigestSize])
		idx := uint32(k[codec.DigestSize])<<24 | uint32(k[codec.DigestSize+1])<<16 | uint32(k[codec.DigestSize+2])<<8 | uint32(k[codec.DigestSize+3])
		u, err := GetUTXO(s, id, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// DeleteUTXO removes the UTXO at (id, idx), failing NotFound if absent
// (consumed by a new transaction input).
func DeleteUTXO(s *store.Store, id codec.Digest, idx uint32) error {
	return s.Delete(store.UTXO, utxoKey(id, idx))
}
