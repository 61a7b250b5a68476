package catalog

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/snorochevskiy/photo-sync-tst/pkg/log"
	"github.com/snorochevskiy/photo-sync-tst/pkg/metrics"
	"github.com/snorochevskiy/photo-sync-tst/pkg/storage"
	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

// Catalog is the local view of the photo catalog: the set of (day, object id)
// pairs plus the derived day/month/year checksum tree. It exclusively owns
// the store handle it is constructed with.
//
// Every mutation runs in one store transaction that writes the object entries
// and recomputes the checksums covering them, so the tree invariants hold
// after every committed mutation:
//
//	day   checksum = SHA256(object ids, ascending)
//	month checksum = SHA256(day_byte || day checksum, days ascending)
//	year  checksum = SHA256(month_byte || month checksum, months ascending)
//
// A day exists iff it holds at least one object, a month iff it holds a day,
// a year iff it holds a month.
type Catalog struct {
	store  storage.Store
	logger zerolog.Logger
}

// New binds a catalog to a store.
func New(store storage.Store) *Catalog {
	return &Catalog{
		store:  store,
		logger: log.WithComponent("catalog"),
	}
}

// Close closes the underlying store.
func (c *Catalog) Close() error {
	return c.store.Close()
}

// AddObject records one object under the given day. Adding an object that is
// already present is a no-op and perturbs no checksum.
func (c *Catalog) AddObject(d types.Date, id types.ObjectID) error {
	if err := d.Validate(); err != nil {
		return err
	}

	added := false
	err := c.store.Update(func(tx storage.Tx) error {
		key := objectKey(d, id)
		if _, err := tx.Get(tableObjects, key); err == nil {
			return nil // already present
		} else if err != storage.ErrKeyNotFound {
			return err
		}
		if err := tx.Put(tableObjects, key, nil); err != nil {
			return err
		}
		added = true
		return c.recomputePath(tx, d)
	})
	if err != nil {
		return fmt.Errorf("%w: add object %s to %s: %v", types.ErrStore, id, d, err)
	}
	if !added {
		return nil
	}

	metrics.ObjectsAddedTotal.Inc()
	c.logger.Debug().Str("day", d.String()).Str("object", id.String()).Msg("Object added")
	return nil
}

// PutDay replaces the full object set of a day. The set must be non-empty;
// days cannot be emptied through the catalog. Used when merging a day from a
// remote peer.
func (c *Catalog) PutDay(d types.Date, ids []types.ObjectID) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: empty object set for %s", types.ErrInvalidArgument, d)
	}

	err := c.store.Update(func(tx storage.Tx) error {
		// Collect the current entries first; the scan must not race the
		// deletes below.
		var stale [][]byte
		prefix := dayKey(d)
		err := tx.ScanPrefix(tableObjects, prefix, func(k, _ []byte) error {
			stale = append(stale, append([]byte(nil), k...))
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := tx.Delete(tableObjects, k); err != nil {
				return err
			}
		}
		for _, id := range ids {
			if err := tx.Put(tableObjects, objectKey(d, id), nil); err != nil {
				return err
			}
		}
		return c.recomputePath(tx, d)
	})
	if err != nil {
		return fmt.Errorf("%w: put day %s: %v", types.ErrStore, d, err)
	}

	metrics.DaysReplacedTotal.Inc()
	c.logger.Debug().Str("day", d.String()).Int("objects", len(ids)).Msg("Day replaced")
	return nil
}

// recomputePath rebuilds the day, month, and year checksums covering d from
// the post-mutation store contents. Recomputing from a scan instead of a
// delta keeps the tree self-healing: the next mutation through a path fixes
// any inconsistency on it.
func (c *Catalog) recomputePath(tx storage.Tx, d types.Date) error {
	h := sha256.New()
	if err := tx.ScanPrefix(tableObjects, dayKey(d), func(k, _ []byte) error {
		h.Write(k[6:]) // object id suffix
		return nil
	}); err != nil {
		return err
	}
	if err := tx.Put(tableDays, dayKey(d), h.Sum(nil)); err != nil {
		return err
	}

	h = sha256.New()
	if err := tx.ScanPrefix(tableDays, monthKey(d.Year, d.Month), func(k, v []byte) error {
		h.Write(k[5:6]) // day of month
		h.Write(v)
		return nil
	}); err != nil {
		return err
	}
	if err := tx.Put(tableMonths, monthKey(d.Year, d.Month), h.Sum(nil)); err != nil {
		return err
	}

	h = sha256.New()
	if err := tx.ScanPrefix(tableMonths, yearKey(d.Year), func(k, v []byte) error {
		h.Write(k[4:5]) // month
		h.Write(v)
		return nil
	}); err != nil {
		return err
	}
	return tx.Put(tableYears, yearKey(d.Year), h.Sum(nil))
}

// ListYears returns every year holding at least one object, ascending.
func (c *Catalog) ListYears() ([]int, error) {
	var years []int
	err := c.store.View(func(tx storage.Tx) error {
		return tx.ScanPrefix(tableYears, nil, func(k, _ []byte) error {
			years = append(years, decodeYearKey(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list years: %v", types.ErrStore, err)
	}
	return years, nil
}

// ListMonths returns the months of a year holding objects, ascending.
func (c *Catalog) ListMonths(year int) ([]int, error) {
	var months []int
	err := c.store.View(func(tx storage.Tx) error {
		return tx.ScanPrefix(tableMonths, yearKey(year), func(k, _ []byte) error {
			months = append(months, int(k[4]))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list months of %d: %v", types.ErrStore, year, err)
	}
	return months, nil
}

// ListDays returns the days of a month holding objects, ascending.
func (c *Catalog) ListDays(year, month int) ([]int, error) {
	var days []int
	err := c.store.View(func(tx storage.Tx) error {
		return tx.ScanPrefix(tableDays, monthKey(year, month), func(k, _ []byte) error {
			days = append(days, int(k[5]))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list days of %04d-%02d: %v", types.ErrStore, year, month, err)
	}
	return days, nil
}

// YearChecksum returns the stored checksum of a year, or ErrNotFound if the
// year holds no objects.
func (c *Catalog) YearChecksum(year int) (types.Checksum, error) {
	return c.checksum(tableYears, yearKey(year), fmt.Sprintf("year %d", year))
}

// MonthChecksum returns the stored checksum of a month, or ErrNotFound.
func (c *Catalog) MonthChecksum(year, month int) (types.Checksum, error) {
	return c.checksum(tableMonths, monthKey(year, month), fmt.Sprintf("month %04d-%02d", year, month))
}

// DayChecksum returns the stored checksum of a day, or ErrNotFound.
func (c *Catalog) DayChecksum(d types.Date) (types.Checksum, error) {
	return c.checksum(tableDays, dayKey(d), fmt.Sprintf("day %s", d))
}

func (c *Catalog) checksum(table, key []byte, what string) (types.Checksum, error) {
	var cs types.Checksum
	err := c.store.View(func(tx storage.Tx) error {
		v, err := tx.Get(table, key)
		if err != nil {
			return err
		}
		copy(cs[:], v)
		return nil
	})
	if err == storage.ErrKeyNotFound {
		return types.Checksum{}, fmt.Errorf("%w: %s", types.ErrNotFound, what)
	}
	if err != nil {
		return types.Checksum{}, fmt.Errorf("%w: checksum of %s: %v", types.ErrStore, what, err)
	}
	return cs, nil
}

// DayObjects returns the object ids recorded under a day, ascending. An
// absent day yields an empty slice.
func (c *Catalog) DayObjects(d types.Date) ([]types.ObjectID, error) {
	var ids []types.ObjectID
	err := c.store.View(func(tx storage.Tx) error {
		return tx.ScanPrefix(tableObjects, dayKey(d), func(k, _ []byte) error {
			var id types.ObjectID
			copy(id[:], k[6:])
			ids = append(ids, id)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: objects of %s: %v", types.ErrStore, d, err)
	}
	return ids, nil
}
