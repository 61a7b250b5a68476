package storage

import (
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// BoltStore implements Store using BoltDB. Tables map to top-level buckets,
// created lazily on first write. BoltDB gives us the atomic multi-key commit
// the catalog's checksum maintenance depends on: a crash between an object
// write and the checksum rewrites can never be observed.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the catalog database under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "catalog.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// View runs fn in a read-only BoltDB transaction.
func (s *BoltStore) View(fn func(Tx) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// Update runs fn in a read-write BoltDB transaction. BoltDB serializes
// writers, so concurrent catalog mutations queue here.
func (s *BoltStore) Update(fn func(Tx) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx, writable: true})
	})
}

// boltTx adapts a bolt.Tx to the Tx interface.
type boltTx struct {
	tx       *bolt.Tx
	writable bool
}

func (t *boltTx) Get(table, key []byte) ([]byte, error) {
	b := t.tx.Bucket(table)
	if b == nil {
		return nil, ErrKeyNotFound
	}
	v := b.Get(key)
	if v == nil {
		return nil, ErrKeyNotFound
	}
	// Bolt returns memory that is only valid for the transaction; hand the
	// caller a copy it may keep.
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (t *boltTx) Put(table, key, value []byte) error {
	b, err := t.tx.CreateBucketIfNotExists(table)
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", table, err)
	}
	return b.Put(key, value)
}

func (t *boltTx) Delete(table, key []byte) error {
	b := t.tx.Bucket(table)
	if b == nil {
		return nil
	}
	return b.Delete(key)
}

func (t *boltTx) ScanPrefix(table, prefix []byte, fn func(key, value []byte) error) error {
	b := t.tx.Bucket(table)
	if b == nil {
		return nil
	}
	c := b.Cursor()
	if len(prefix) == 0 {
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if err := fn(k, v); err != nil {
				return err
			}
		}
		return nil
	}
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
