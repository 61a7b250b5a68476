package peer

import (
	"context"
	"errors"

	"github.com/snorochevskiy/photo-sync-tst/pkg/catalog"
	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

// Loopback dispatches peer queries to an in-process catalog. It is the
// reference Peer implementation, used by tests and by process-local peer
// graphs.
type Loopback struct {
	catalog *catalog.Catalog
}

// NewLoopback wraps a catalog as a Peer.
func NewLoopback(c *catalog.Catalog) *Loopback {
	return &Loopback{catalog: c}
}

func (l *Loopback) Years(ctx context.Context) ([]int, error) {
	return l.catalog.ListYears()
}

func (l *Loopback) YearChecksum(ctx context.Context, year int) (*types.Checksum, error) {
	return optional(l.catalog.YearChecksum(year))
}

func (l *Loopback) Months(ctx context.Context, year int) ([]int, error) {
	return l.catalog.ListMonths(year)
}

func (l *Loopback) MonthChecksum(ctx context.Context, year, month int) (*types.Checksum, error) {
	return optional(l.catalog.MonthChecksum(year, month))
}

func (l *Loopback) Days(ctx context.Context, year, month int) ([]int, error) {
	return l.catalog.ListDays(year, month)
}

func (l *Loopback) DayChecksum(ctx context.Context, d types.Date) (*types.Checksum, error) {
	return optional(l.catalog.DayChecksum(d))
}

func (l *Loopback) DayObjects(ctx context.Context, d types.Date) ([]types.ObjectID, error) {
	return l.catalog.DayObjects(d)
}

func (l *Loopback) PutDay(ctx context.Context, d types.Date, ids []types.ObjectID) error {
	return l.catalog.PutDay(d, ids)
}

// optional maps a not-found checksum lookup to an absent value.
func optional(cs types.Checksum, err error) (*types.Checksum, error) {
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}
