package peer

import (
	"context"

	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

// Peer is the capability one catalog holds on another during a sync: the
// minimal set of queries the descent needs, plus the push that merges a day
// back. Checksum queries return nil when the peer has no data at that level;
// listings over absent parents return empty slices.
//
// Implementations are expected to back onto another catalog instance — the
// in-process Loopback here, or the HTTP client in pkg/client — and may fail
// with a remote-error kind that aborts the current sync.
type Peer interface {
	Years(ctx context.Context) ([]int, error)
	YearChecksum(ctx context.Context, year int) (*types.Checksum, error)
	Months(ctx context.Context, year int) ([]int, error)
	MonthChecksum(ctx context.Context, year, month int) (*types.Checksum, error)
	Days(ctx context.Context, year, month int) ([]int, error)
	DayChecksum(ctx context.Context, d types.Date) (*types.Checksum, error)
	DayObjects(ctx context.Context, d types.Date) ([]types.ObjectID, error)
	PutDay(ctx context.Context, d types.Date, ids []types.ObjectID) error
}
