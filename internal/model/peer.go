package model

import (
	"github.com/yobicash/yobinode/internal/codec"
	"github.com/yobicash/yobinode/internal/store"
	"github.com/yobicash/yobinode/internal/ycrypto"
	"github.com/yobicash/yobinode/internal/yerrors"
)

// Peer is a remote node's directory entry. Identity is its IPv4
// address; FirstSeen/Attempts are additive observational counters
// (SPEC_FULL.md §4.8A) that never affect the by-address/by-last-seen
// invariant.
type Peer struct {
	Host      codec.Host
	FirstSeen codec.Time
	LastSeen  codec.Time
	Attempts  uint32
}

func (p *Peer) MarshalBinary() ([]byte, error) {
	w := &writer{}
	if err := w.marshal(p.Host); err != nil {
		return nil, err
	}
	if err := w.marshal(p.FirstSeen); err != nil {
		return nil, err
	}
	if err := w.marshal(p.LastSeen); err != nil {
		return nil, err
	}
	w.uint32(p.Attempts)
	return w.Bytes(), nil
}

func (p *Peer) UnmarshalBinary(b []byte) error {
	r := newReader("Peer.UnmarshalBinary", b)
	host, err := r.host()
	if err != nil {
		return err
	}
	firstSeen, err := r.time()
	if err != nil {
		return err
	}
	lastSeen, err := r.time()
	if err != nil {
		return err
	}
	attempts, err := r.uint32()
	if err != nil {
		return err
	}
	if err := r.finish(); err != nil {
		return err
	}
	p.Host, p.FirstSeen, p.LastSeen, p.Attempts = host, firstSeen, lastSeen, attempts
	return nil
}

func addressKey(h codec.Host) []byte { return append([]byte(nil), h.IP[:]...) }

func lastSeenKey(t codec.Time, salt [4]byte) []byte {
	tb, _ := t.MarshalBinary()
	return append(tb, salt[:]...)
}

// CreatePeer writes both indexes for p, failing AlreadyFound if the
// by-address entry already exists.
func CreatePeer(s *store.Store, p *Peer) error {
	addr := addressKey(p.Host)
	found, err := s.Lookup(store.PeersByAddress, addr)
	if err != nil {
		return err
	}
	if found {
		return yerrors.New(yerrors.AlreadyFound, "CreatePeer", p.Host.String())
	}
	b, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.Put(store.PeersByAddress, addr, b); err != nil {
		return err
	}
	salt := ycrypto.RandomSalt4()
	return s.Put(store.PeersByLastSeen, lastSeenKey(p.LastSeen, salt), addr)
}

// removeLastSeenEntries deletes every by-last-seen entry whose value
// equals addr (there should be exactly one if the indexes are
// consistent, per universal invariant 5).
func removeLastSeenEntries(s *store.Store, addr []byte) error {
	n, err := s.Count(store.PeersByLastSeen)
	if err != nil {
		return err
	}
	keys, err := s.List(store.PeersByLastSeen, 0, n)
	if err != nil {
		return err
	}
	for _, k := range keys {
		v, err := s.Get(store.PeersByLastSeen, k)
		if err != nil {
			return err
		}
		if string(v) == string(addr) {
			if err := s.Delete(store.PeersByLastSeen, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpsertPeer updates last-seen/attempts if the peer already exists
// (carrying its first-seen time forward), otherwise creates it.
// Equivalent to spec.md's update(peer) = delete + create.
func UpsertPeer(s *store.Store, host codec.Host, now codec.Time) error {
	addr := addressKey(host)
	existing, err := GetPeer(s, host)
	if err != nil && yerrors.KindOf(err) != yerrors.NotFound {
		return err
	}
	p := &Peer{Host: host, FirstSeen: now, LastSeen: now, Attempts: 1}
	if existing != nil {
		p.FirstSeen = existing.FirstSeen
		p.Attempts = existing.Attempts + 1
		if err := removeLastSeenEntries(s, addr); err != nil {
			return err
		}
		if err := s.Delete(store.PeersByAddress, addr); err != nil {
			return err
		}
	}
	return CreatePeer(s, p)
}

func GetPeer(s *store.Store, host codec.Host) (*Peer, error) {
	b, err := s.Get(store.PeersByAddress, addressKey(host))
	if err != nil {
		return nil, err
	}
	p := &Peer{}
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return p, nil
}

func LookupPeer(s *store.Store, host codec.Host) (bool, error) {
	return s.Lookup(store.PeersByAddress, addressKey(host))
}

func CountPeers(s *store.Store) (uint32, error) {
	return s.Count(store.PeersByAddress)
}

// DeletePeer removes both index entries for host, failing NotFound if
// it is not present in the by-address index.
func DeletePeer(s *store.Store, host codec.Host) error {
	addr := addressKey(host)
	found, err := s.Lookup(store.PeersByAddress, addr)
	if err != nil {
		return err
	}
	if !found {
		return yerrors.New(yerrors.NotFound, "DeletePeer", host.String())
	}
	if err := removeLastSeenEntries(s, addr); err != nil {
		return err
	}
	return s.Delete(store.PeersByAddress, addr)
}

// ListPeersByAddress returns up to count peers in ascending address
// order, skipping the first skip.
func ListPeersByAddress(s *store.Store, skip, count uint32) ([]*Peer, error) {
	keys, err := s.List(store.PeersByAddress, skip, count)
	if err != nil {
		return nil, err
	}
	out := make([]*Peer, 0, len(keys))
	for _, k := range keys {
		b, err := s.Get(store.PeersByAddress, k)
		if err != nil {
			return nil, err
		}
		p := &Peer{}
		if err := p.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ListPeersByLastSeen returns up to count by-address keys in
// descending last-seen order (most recent first), skipping the first
// skip.
func ListPeersByLastSeen(s *store.Store, skip, count uint32) ([][]byte, error) {
	return s.ListReverse(store.PeersByLastSeen, skip, count)
}

// CleanupPeers deletes every peer whose last-seen time is older than
// limit.
func CleanupPeers(s *store.Store, limit codec.Time) error {
	n, err := s.Count(store.PeersByLastSeen)
	if err != nil {
		return err
	}
	keys, err := s.List(store.PeersByLastSeen, 0, n)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if len(k) < 8 {
			continue
		}
		var t codec.Time
		if err := t.UnmarshalBinary(k[:8]); err != nil {
			return err
		}
		if t >= limit {
			continue
		}
		addr, err := s.Get(store.PeersByLastSeen, k)
		if err != nil {
			return err
		}
		if err := s.Delete(store.PeersByLastSeen, k); err != nil {
			return err
		}
		if err := s.Delete(store.PeersByAddress, addr); err != nil && yerrors.KindOf(err) != yerrors.NotFound {
			return err
		}
	}
	return nil
}
