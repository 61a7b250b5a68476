package storage

import (
	"bytes"
	"errors"
	"sort"
	"sync"
)

var errReadOnlyTx = errors.New("write in read-only transaction")

// MemoryStore is an in-memory Store used by tests and ephemeral peers. It
// keeps the same transactional contract as BoltStore: writes made inside an
// Update are staged and either commit together or are discarded.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]map[string][]byte),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// View runs fn against a read-only snapshot of the store.
func (s *MemoryStore) View(fn func(Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{store: s})
}

// Update runs fn with staged writes, committing them only if fn succeeds.
func (s *MemoryStore) Update(fn func(Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:   s,
		writes:  make(map[string]map[string][]byte),
		deletes: make(map[string]map[string]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memTx overlays staged writes and deletes on the base tables so reads in
// the same transaction observe earlier writes.
type memTx struct {
	store   *MemoryStore
	writes  map[string]map[string][]byte
	deletes map[string]map[string]bool
}

func (t *memTx) Get(table, key []byte) ([]byte, error) {
	tn, kn := string(table), string(key)
	if t.deletes[tn][kn] {
		return nil, ErrKeyNotFound
	}
	if v, ok := t.writes[tn][kn]; ok {
		return append([]byte(nil), v...), nil
	}
	if v, ok := t.store.tables[tn][kn]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, ErrKeyNotFound
}

func (t *memTx) Put(table, key, value []byte) error {
	if t.writes == nil {
		return errReadOnlyTx
	}
	tn, kn := string(table), string(key)
	if t.writes[tn] == nil {
		t.writes[tn] = make(map[string][]byte)
	}
	t.writes[tn][kn] = append([]byte(nil), value...)
	if t.deletes[tn] != nil {
		delete(t.deletes[tn], kn)
	}
	return nil
}

func (t *memTx) Delete(table, key []byte) error {
	if t.writes == nil {
		return errReadOnlyTx
	}
	tn, kn := string(table), string(key)
	if t.writes[tn] != nil {
		delete(t.writes[tn], kn)
	}
	if t.deletes[tn] == nil {
		t.deletes[tn] = make(map[string]bool)
	}
	t.deletes[tn][kn] = true
	return nil
}

func (t *memTx) ScanPrefix(table, prefix []byte, fn func(key, value []byte) error) error {
	tn := string(table)
	seen := make(map[string]bool)
	var keys []string

	for k := range t.writes[tn] {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	for k := range t.store.tables[tn] {
		if seen[k] || t.deletes[tn][k] {
			continue
		}
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, ok := t.writes[tn][k]
		if !ok {
			v = t.store.tables[tn][k]
		}
		if err := fn([]byte(k), append([]byte(nil), v...)); err != nil {
			return err
		}
	}
	return nil
}

// commit merges staged writes into the base tables. Caller holds the write
// lock.
func (t *memTx) commit() {
	for tn, dels := range t.deletes {
		base := t.store.tables[tn]
		for k := range dels {
			delete(base, k)
		}
	}
	for tn, writes := range t.writes {
		base := t.store.tables[tn]
		if base == nil {
			base = make(map[string][]byte)
			t.store.tables[tn] = base
		}
		for k, v := range writes {
			base[k] = v
		}
	}
}
