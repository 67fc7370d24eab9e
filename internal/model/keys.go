package model

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// Keys is a locally owned keypair, keyed by its public key.
type Keys struct {
	Secret codec.SecretKey
	Public codec.PublicKey
}

func (k *Keys) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.bytes(k.Secret[:])
	w.bytes(k.Public[:])
	return w.Bytes(), nil
}

func (k *Keys) UnmarshalBinary(b []byte) error {
	r := newReader("Keys.UnmarshalBinary", b)
	sk, err := r.secretKey()
	if err != nil {
		return err
	}
	pk, err := r.publicKey()
	if err != nil {
		return err
	}
	if err := r.finish(); err != nil {
		return err
	}
	k.Secret, k.Public = sk, pk
	return nil
}

func CreateKeys(s *store.Store, k *Keys) error {
	found, err := s.Lookup(store.Keys, k.Public[:])
	if err != nil {
		return err
	}
	if found {
		return yerrors.New(yerrors.AlreadyFound, "CreateKeys", k.Public.String())
	}
	b, err := k.MarshalBinary()
	if err != nil {
		return err
	}
	return s.Put(store.Keys, k.Public[:], b)
}

func GetKeys(s *store.Store, pk codec.PublicKey) (*Keys, error) {
	b, err := s.Get(store.Keys, pk[:])
	if err != nil {
		return nil, err
	}
	k := &Keys{}
	if err := k.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return k, nil
}

func LookupKeys(s *store.Store, pk codec.PublicKey) (bool, error) {
	return s.Lookup(store.Keys, pk[:])
}

func CountKeys(s *store.Store) (uint32, error) {
	return s.Count(store.Keys)
}

func ListKeys(s *store.Store, skip, count uint32) ([]*Keys, error) {
	keys, err := s.List(store.Keys, skip, count)
	if err != nil {
		return nil, err
	}
	out := make([]*Keys, 0, len(keys))
	for _, k := range keys {
		b, err := s.Get(store.Keys, k)
		if err != nil {
			return nil, err
		}
		ks := &Keys{}
		if err := ks.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		out = append(out, ks)
	}
	return out, nil
}

func DeleteKeys(s *store.Store, pk codec.PublicKey) error {
	return s.Delete(store.Keys, pk[:])
}
