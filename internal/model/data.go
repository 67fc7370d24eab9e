package model

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// Data is an opaque ciphertext payload carried by a transaction
// output, content-addressed by (checksum, tag) so the same checksum
// under different recipient tags occupies distinct entries.
type Data struct {
	Checksum   codec.Digest
	Tag        codec.MAC
	Ciphertext []byte
}

func dataKey(checksum codec.Digest, tag codec.MAC) []byte {
	key := make([]byte, 0, codec.DigestSize+codec.MACSize)
	key = append(key, checksum[:]...)
	key = append(key, tag[:]...)
	return key
}

// Key returns this Data's store key.
func (d *Data) Key() []byte { return dataKey(d.Checksum, d.Tag) }

func (d *Data) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.bytes(d.Checksum[:])
	w.bytes(d.Tag[:])
	w.uint32(uint32(len(d.Ciphertext)))
	w.bytes(d.Ciphertext)
	return w.Bytes(), nil
}

func (d *Data) UnmarshalBinary(b []byte) error {
	r := newReader("Data.UnmarshalBinary", b)
	checksum, err := r.digest()
	if err != nil {
		return err
	}
	tag, err := r.mac()
	if err != nil {
		return err
	}
	n, err := r.uint32()
	if err != nil {
		return err
	}
	ct, err := r.take(int(n))
	if err != nil {
		return err
	}
	if err := r.finish(); err != nil {
		return err
	}
	d.Checksum, d.Tag, d.Ciphertext = checksum, tag, append([]byte(nil), ct...)
	return nil
}

func CreateData(s *store.Store, d *Data) error {
	key := d.Key()
	found, err := s.Lookup(store.Data, key)
	if err != nil {
		return err
	}
	if found {
		return yerrors.New(yerrors.AlreadyFound, "CreateData", d.Checksum.String())
	}
	b, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	return s.Put(store.Data, key, b)
}

func GetData(s *store.Store, checksum codec.Digest, tag codec.MAC) (*Data, error) {
	b, err := s.Get(store.Data, dataKey(checksum, tag))
	if err != nil {
		return nil, err
	}
	d := &Data{}
	if err := d.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return d, nil
}

func LookupData(s *store.Store, checksum codec.Digest, tag codec.MAC) (bool, error) {
	return s.Lookup(store.Data, dataKey(checksum, tag))
}

func CountData(s *store.Store) (uint32, error) {
	return s.Count(store.Data)
}

func ListData(s *store.Store, skip, count uint32) ([]*Data, error) {
	keys, err := s.List(store.Data, skip, count)
	if err != nil {
		return nil, err
	}
	out := make([]*Data, 0, len(keys))
	for _, k := range keys {
		b, err := s.Get(store.Data, k)
		if err != nil {
			return nil, err
		}
		d := &Data{}
		if err := d.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func DeleteData(s *store.Store, checksum codec.Digest, tag codec.MAC) error {
	return s.Delete(store.Data, dataKey(checksum, tag))
}
