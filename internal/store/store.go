// Package store provides the node's persistent, ordered key-value
// backend: a thin wrapper over go.etcd.io/bbolt exposing spec.md
// §4.1's put/lookup/get/count/list/list_reverse/delete/close/reset/
// destroy contract over named buckets.
package store

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/yobicash/yobinode/internal/yerrors"
)

// Bucket names a logical collection (spec.md §4.2's catalog).
type Bucket string

// Mode records which Open variant produced a Store, for Reset/Destroy.
type Mode int

const (
	ModePersistent Mode = iota
	ModeTemporary
	ModeMemory
)

// Store is an open handle to the backend.
type Store struct {
	db       *bolt.DB
	path     string
	mode     Mode
	readOnly bool
}

const filePerm = 0600
const dirPerm = 0700

// Create creates a new persistent store at path. Fails if one already
// exists there (spec.md: "creation and open are distinct").
func Create(path string) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, yerrors.New(yerrors.AlreadyFound, "store.Create", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, yerrors.Wrap(yerrors.IO, "store.Create", err)
	}
	return open(path, false, ModePersistent)
}

// Open opens an existing persistent store. readOnly opens it without
// allowing writes. Fails NotFound if the file does not exist.
func Open(path string, readOnly bool) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, yerrors.New(yerrors.NotFound, "store.Open", path)
	}
	return open(path, readOnly, ModePersistent)
}

// OpenTemporary opens an anonymous store backed by a file under a
// fresh temp directory, destroyed when Destroy is called.
func OpenTemporary() (*Store, error) {
	dir, err := os.MkdirTemp("", "yobi-store-")
	if err != nil {
		return nil, yerrors.Wrap(yerrors.IO, "store.OpenTemporary", err)
	}
	path := filepath.Join(dir, "store.db")
	s, err := open(path, false, ModeTemporary)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return s, nil
}

// OpenMemory opens an in-memory-mapped store: a temp-file-backed
// handle tuned for speed over durability (bbolt has no true anonymous
// in-memory mode; see DESIGN.md / SPEC_FULL.md §4.1). It is read-through
// scratch space, never the store of record.
func OpenMemory() (*Store, error) {
	dir, err := os.MkdirTemp("", "yobi-mem-")
	if err != nil {
		return nil, yerrors.Wrap(yerrors.IO, "store.OpenMemory", err)
	}
	path := filepath.Join(dir, "mem.db")
	db, err := bolt.Open(path, filePerm, &bolt.Options{
		Timeout:      time.Second,
		NoSync:       true,
		NoGrowSync:   true,
		FreelistType: bolt.FreelistMapType,
	})
	if err != nil {
		os.RemoveAll(dir)
		return nil, yerrors.Wrap(yerrors.Store, "store.OpenMemory", err)
	}
	return &Store{db: db, path: path, mode: ModeMemory}, nil
}

func open(path string, readOnly bool, mode Mode) (*Store, error) {
	db, err := bolt.Open(path, filePerm, &bolt.Options{
		Timeout:  time.Second,
		ReadOnly: readOnly,
	})
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Store, "store.open", err)
	}
	return &Store{db: db, path: path, mode: mode, readOnly: readOnly}, nil
}

// Close closes the underlying file handle without destroying data.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return yerrors.Wrap(yerrors.Store, "Store.Close", err)
	}
	return nil
}

// Destroy closes and deletes the store's backing file(s).
func (s *Store) Destroy() error {
	dir := filepath.Dir(s.path)
	if err := s.db.Close(); err != nil {
		return yerrors.Wrap(yerrors.Store, "Store.Destroy", err)
	}
	switch s.mode {
	case ModeTemporary, ModeMemory:
		return os.RemoveAll(dir)
	default:
		return os.Remove(s.path)
	}
}

// Reset destroys and recreates the store with the same configuration.
func (s *Store) Reset() (*Store, error) {
	path, mode, readOnly := s.path, s.mode, s.readOnly
	if err := s.Destroy(); err != nil {
		return nil, err
	}
	switch mode {
	case ModeTemporary:
		return OpenTemporary()
	case ModeMemory:
		return OpenMemory()
	default:
		if readOnly {
			return nil, yerrors.New(yerrors.IO, "Store.Reset", "read only store")
		}
		return Create(path)
	}
}

func bucketName(b Bucket) []byte { return []byte(b) }

// Put writes value under key in bucket, creating the bucket if needed.
func (s *Store) Put(b Bucket, key, value []byte) error {
	if s.readOnly {
		return yerrors.New(yerrors.IO, "Store.Put", "read only store")
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists(bucketName(b))
		if err != nil {
			return err
		}
		return bk.Put(key, value)
	})
	if err != nil {
		return yerrors.Wrap(yerrors.Store, "Store.Put", err)
	}
	return nil
}

// Lookup reports whether key exists in bucket.
func (s *Store) Lookup(b Bucket, key []byte) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketName(b))
		if bk == nil {
			return nil
		}
		found = bk.Get(key) != nil
		return nil
	})
	if err != nil {
		return false, yerrors.Wrap(yerrors.Store, "Store.Lookup", err)
	}
	return found, nil
}

// Get reads the value stored under key in bucket. Fails NotFound.
func (s *Store) Get(b Bucket, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketName(b))
		if bk == nil {
			return nil
		}
		v := bk.Get(key)
		if v == nil {
			return nil
		}
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Store, "Store.Get", err)
	}
	if value == nil {
		return nil, yerrors.New(yerrors.NotFound, "Store.Get", string(b))
	}
	return value, nil
}

// Delete removes key from bucket. Fails NotFound if absent.
func (s *Store) Delete(b Bucket, key []byte) error {
	if s.readOnly {
		return yerrors.New(yerrors.IO, "Store.Delete", "read only store")
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketName(b))
		if bk == nil || bk.Get(key) == nil {
			return errNotFound
		}
		return bk.Delete(key)
	})
	if err == errNotFound {
		return yerrors.New(yerrors.NotFound, "Store.Delete", string(b))
	}
	if err != nil {
		return yerrors.Wrap(yerrors.Store, "Store.Delete", err)
	}
	return nil
}

var errNotFound = notFoundSentinel{}

type notFoundSentinel struct{}

func (notFoundSentinel) Error() string { return "not found" }

// Count returns the number of entries in bucket.
func (s *Store) Count(b Bucket) (uint32, error) {
	var n uint32
	err := s.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketName(b))
		if bk == nil {
			return nil
		}
		return bk.ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	if err != nil {
		return 0, yerrors.Wrap(yerrors.Store, "Store.Count", err)
	}
	return n, nil
}

// List returns up to count keys in ascending order, skipping the
// first skip entries.
func (s *Store) List(b Bucket, skip, count uint32) ([][]byte, error) {
	return s.list(b, skip, count, false)
}

// ListReverse returns up to count keys in descending order, skipping
// the first skip entries (in descending order).
func (s *Store) ListReverse(b Bucket, skip, count uint32) ([][]byte, error) {
	return s.list(b, skip, count, true)
}

func (s *Store) list(b Bucket, skip, count uint32, reverse bool) ([][]byte, error) {
	var out [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket(bucketName(b))
		if bk == nil {
			return nil
		}
		c := bk.Cursor()
		var k []byte
		if reverse {
			k, _ = c.Last()
		} else {
			k, _ = c.First()
		}
		var skipped uint32
		for ; k != nil; {
			if skipped < skip {
				skipped++
			} else {
				if uint32(len(out)) >= count {
					break
				}
				out = append(out, append([]byte(nil), k...))
			}
			if uint32(len(out)) >= count {
				break
			}
			if reverse {
				k, _ = c.Prev()
			} else {
				k, _ = c.Next()
			}
		}
		return nil
	})
	if err != nil {
		return nil, yerrors.Wrap(yerrors.Store, "Store.list", err)
	}
	return out, nil
}
