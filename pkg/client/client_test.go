package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snorochevskiy/photo-sync-tst/pkg/api"
	"github.com/snorochevskiy/photo-sync-tst/pkg/catalog"
	"github.com/snorochevskiy/photo-sync-tst/pkg/storage"
	"github.com/snorochevskiy/photo-sync-tst/pkg/syncer"
	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

func newPeer(t *testing.T) (*Client, *catalog.Catalog) {
	t.Helper()
	cat := catalog.New(storage.NewMemoryStore())
	ts := httptest.NewServer(api.NewServer(cat).Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL), cat
}

func oid(b byte) types.ObjectID {
	var id types.ObjectID
	id[31] = b
	return id
}

func TestClientQueries(t *testing.T) {
	remote, cat := newPeer(t)
	ctx := context.Background()
	d := types.Date{Year: 2020, Month: 11, Day: 15}
	require.NoError(t, cat.AddObject(d, oid(0x01)))

	years, err := remote.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2020}, years)

	months, err := remote.Months(ctx, 2020)
	require.NoError(t, err)
	assert.Equal(t, []int{11}, months)

	days, err := remote.Days(ctx, 2020, 11)
	require.NoError(t, err)
	assert.Equal(t, []int{15}, days)

	cs, err := remote.YearChecksum(ctx, 2020)
	require.NoError(t, err)
	require.NotNil(t, cs)
	want, err := cat.YearChecksum(2020)
	require.NoError(t, err)
	assert.Equal(t, want, *cs)

	ids, err := remote.DayObjects(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []types.ObjectID{oid(0x01)}, ids)
}

// TestClientAbsentChecksums verifies 404 maps to an absent checksum, not an
// error.
func TestClientAbsentChecksums(t *testing.T) {
	remote, _ := newPeer(t)
	ctx := context.Background()

	cs, err := remote.YearChecksum(ctx, 1999)
	require.NoError(t, err)
	assert.Nil(t, cs)

	cs, err = remote.MonthChecksum(ctx, 1999, 1)
	require.NoError(t, err)
	assert.Nil(t, cs)

	cs, err = remote.DayChecksum(ctx, types.Date{Year: 1999, Month: 1, Day: 1})
	require.NoError(t, err)
	assert.Nil(t, cs)
}

func TestClientPutDay(t *testing.T) {
	remote, cat := newPeer(t)
	ctx := context.Background()
	d := types.Date{Year: 2020, Month: 5, Day: 5}

	require.NoError(t, remote.PutDay(ctx, d, []types.ObjectID{oid(0x02), oid(0x01)}))

	ids, err := cat.DayObjects(d)
	require.NoError(t, err)
	assert.Equal(t, []types.ObjectID{oid(0x01), oid(0x02)}, ids)
}

func TestClientPutDayEmptySetRejected(t *testing.T) {
	remote, _ := newPeer(t)
	err := remote.PutDay(context.Background(), types.Date{Year: 2020, Month: 5, Day: 5}, nil)
	assert.ErrorIs(t, err, types.ErrRemote)
}

func TestClientUnreachablePeer(t *testing.T) {
	remote := New("http://127.0.0.1:1")
	_, err := remote.Years(context.Background())
	assert.ErrorIs(t, err, types.ErrRemote)
}

// TestSyncOverHTTP reconciles two catalogs through the real HTTP surface.
func TestSyncOverHTTP(t *testing.T) {
	remote, remoteCat := newPeer(t)
	local := catalog.New(storage.NewMemoryStore())

	dayShared := types.Date{Year: 2020, Month: 11, Day: 15}
	require.NoError(t, local.AddObject(dayShared, oid(0x01)))
	require.NoError(t, remoteCat.AddObject(dayShared, oid(0x02)))
	require.NoError(t, remoteCat.AddObject(types.Date{Year: 2021, Month: 1, Day: 1}, oid(0x03)))

	require.NoError(t, syncer.Sync(context.Background(), local, remote))

	for _, cat := range []*catalog.Catalog{local, remoteCat} {
		ids, err := cat.DayObjects(dayShared)
		require.NoError(t, err)
		assert.Equal(t, []types.ObjectID{oid(0x01), oid(0x02)}, ids)

		years, err := cat.ListYears()
		require.NoError(t, err)
		assert.Equal(t, []int{2020, 2021}, years)
	}

	localCS, err := local.YearChecksum(2021)
	require.NoError(t, err)
	remoteCS, err := remoteCat.YearChecksum(2021)
	require.NoError(t, err)
	assert.Equal(t, remoteCS, localCS)
}
