package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTable = []byte("test")

// runStoreTests exercises the Store contract shared by both implementations.
func runStoreTests(t *testing.T, open func(t *testing.T) Store) {
	t.Run("get missing key", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		err := s.View(func(tx Tx) error {
			_, err := tx.Get(testTable, []byte("nope"))
			return err
		})
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.Update(func(tx Tx) error {
			return tx.Put(testTable, []byte("k"), []byte("v"))
		}))

		err := s.View(func(tx Tx) error {
			v, err := tx.Get(testTable, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), v)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("reads observe writes in same transaction", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		err := s.Update(func(tx Tx) error {
			if err := tx.Put(testTable, []byte("a"), []byte("1")); err != nil {
				return err
			}
			v, err := tx.Get(testTable, []byte("a"))
			require.NoError(t, err)
			assert.Equal(t, []byte("1"), v)

			var keys []string
			err = tx.ScanPrefix(testTable, nil, func(k, _ []byte) error {
				keys = append(keys, string(k))
				return nil
			})
			require.NoError(t, err)
			assert.Contains(t, keys, "a")
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failed update rolls back every write", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.Update(func(tx Tx) error {
			return tx.Put(testTable, []byte("kept"), []byte("v"))
		}))

		boom := errors.New("boom")
		err := s.Update(func(tx Tx) error {
			if err := tx.Put(testTable, []byte("lost"), []byte("v")); err != nil {
				return err
			}
			if err := tx.Delete(testTable, []byte("kept")); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		err = s.View(func(tx Tx) error {
			_, err := tx.Get(testTable, []byte("lost"))
			assert.ErrorIs(t, err, ErrKeyNotFound)

			_, err = tx.Get(testTable, []byte("kept"))
			assert.NoError(t, err)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("scan prefix ascending", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.Update(func(tx Tx) error {
			for _, k := range []string{"b2", "a1", "b1", "c1", "b3"} {
				if err := tx.Put(testTable, []byte(k), nil); err != nil {
					return err
				}
			}
			return nil
		}))

		var keys []string
		err := s.View(func(tx Tx) error {
			return tx.ScanPrefix(testTable, []byte("b"), func(k, _ []byte) error {
				keys = append(keys, string(k))
				return nil
			})
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"b1", "b2", "b3"}, keys)
	})

	t.Run("delete removes key", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.Update(func(tx Tx) error {
			return tx.Put(testTable, []byte("k"), []byte("v"))
		}))
		require.NoError(t, s.Update(func(tx Tx) error {
			return tx.Delete(testTable, []byte("k"))
		}))

		err := s.View(func(tx Tx) error {
			_, err := tx.Get(testTable, []byte("k"))
			return err
		})
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("deletes hidden from scans in same transaction", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		require.NoError(t, s.Update(func(tx Tx) error {
			if err := tx.Put(testTable, []byte("x1"), nil); err != nil {
				return err
			}
			return tx.Put(testTable, []byte("x2"), nil)
		}))

		err := s.Update(func(tx Tx) error {
			if err := tx.Delete(testTable, []byte("x1")); err != nil {
				return err
			}
			var keys []string
			if err := tx.ScanPrefix(testTable, []byte("x"), func(k, _ []byte) error {
				keys = append(keys, string(k))
				return nil
			}); err != nil {
				return err
			}
			assert.Equal(t, []string{"x2"}, keys)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestBoltStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := NewBoltStore(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}
