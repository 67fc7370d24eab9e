package store

import (
	"testing"

	"github.com/yobicash/yobinode/internal/yerrors"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenTemporary()
	if err != nil {
		t.Fatalf("OpenTemporary: %v", err)
	}
	t.Cleanup(func() { s.Destroy() })
	return s
}

func TestPutGetLookupDelete(t *testing.T) {
	s := tempStore(t)

	found, err := s.Lookup(Transactions, []byte("k1"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found {
		t.Fatalf("expected not found before put")
	}

	if err := s.Put(Transactions, []byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	found, err = s.Lookup(Transactions, []byte("k1"))
	if err != nil || !found {
		t.Fatalf("expected found after put, err=%v found=%v", err, found)
	}

	v, err := s.Get(Transactions, []byte("k1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "v1" {
		t.Fatalf("expected v1, got %s", v)
	}

	if err := s.Delete(Transactions, []byte("k1")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(Transactions, []byte("k1")); yerrors.KindOf(err) != yerrors.NotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if err := s.Delete(Transactions, []byte("k1")); yerrors.KindOf(err) != yerrors.NotFound {
		t.Fatalf("expected NotFound deleting twice, got %v", err)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Get(Transactions, []byte("missing")); yerrors.KindOf(err) != yerrors.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCountAndList(t *testing.T) {
	s := tempStore(t)
	keys := []string{"a", "b", "c", "d"}
	for _, k := range keys {
		if err := s.Put(PeersByAddress, []byte(k), []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	n, err := s.Count(PeersByAddress)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != uint32(len(keys)) {
		t.Fatalf("expected %d, got %d", len(keys), n)
	}

	list, err := s.List(PeersByAddress, 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != len(keys) {
		t.Fatalf("expected %d keys, got %d", len(keys), len(list))
	}
	for i := 1; i < len(list); i++ {
		if string(list[i-1]) >= string(list[i]) {
			t.Fatalf("expected ascending order")
		}
	}

	rev, err := s.ListReverse(PeersByAddress, 0, 10)
	if err != nil {
		t.Fatalf("ListReverse: %v", err)
	}
	for i := 1; i < len(rev); i++ {
		if string(rev[i-1]) <= string(rev[i]) {
			t.Fatalf("expected descending order")
		}
	}

	skipped, err := s.List(PeersByAddress, 2, 10)
	if err != nil {
		t.Fatalf("List with skip: %v", err)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 remaining after skipping 2, got %d", len(skipped))
	}
}

func TestResetClearsData(t *testing.T) {
	s := tempStore(t)
	if err := s.Put(Transactions, []byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s2, err := s.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	defer s2.Destroy()
	if found, _ := s2.Lookup(Transactions, []byte("k")); found {
		t.Fatalf("expected reset store to be empty")
	}
}
