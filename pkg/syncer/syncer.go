package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/snorochevskiy/photo-sync-tst/pkg/catalog"
	"github.com/snorochevskiy/photo-sync-tst/pkg/events"
	"github.com/snorochevskiy/photo-sync-tst/pkg/log"
	"github.com/snorochevskiy/photo-sync-tst/pkg/metrics"
	"github.com/snorochevskiy/photo-sync-tst/pkg/peer"
	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

// Engine reconciles the local catalog with remote peers. One sync is a
// descent over the checksum tree: equal checksums at any level prove the
// whole subtree equal and prune it; a mismatch descends until the differing
// days are found and merged to the union on both sides.
type Engine struct {
	local  *catalog.Catalog
	broker *events.Broker
	logger zerolog.Logger
}

// New creates a sync engine over the local catalog. broker may be nil.
func New(local *catalog.Catalog, broker *events.Broker) *Engine {
	return &Engine{
		local:  local,
		broker: broker,
		logger: log.WithComponent("syncer"),
	}
}

// Sync converges the local catalog and the remote peer to the union of their
// object sets. Already-merged days stay merged if the sync aborts midway;
// re-running completes the remaining work.
func Sync(ctx context.Context, local *catalog.Catalog, remote peer.Peer) error {
	return New(local, nil).Sync(ctx, remote)
}

// Sync runs one reconciliation against a remote peer.
func (e *Engine) Sync(ctx context.Context, remote peer.Peer) error {
	session := uuid.New().String()
	logger := e.logger.With().Str("session", session).Logger()

	timer := metrics.NewTimer()
	logger.Info().Msg("Sync started")
	e.publish(events.EventSyncStarted, "sync started", map[string]string{"session": session})

	merged, err := e.sync(ctx, remote, logger)
	timer.ObserveDuration(metrics.SyncDuration)

	if err != nil {
		metrics.SyncsTotal.WithLabelValues("failure").Inc()
		logger.Error().Err(err).Msg("Sync failed")
		e.publish(events.EventSyncFailed, err.Error(), map[string]string{"session": session})
		return err
	}

	metrics.SyncsTotal.WithLabelValues("success").Inc()
	logger.Info().Int("days_merged", merged).Msg("Sync completed")
	e.publish(events.EventSyncCompleted, "sync completed", map[string]string{
		"session":     session,
		"days_merged": fmt.Sprintf("%d", merged),
	})
	return nil
}

func (e *Engine) sync(ctx context.Context, remote peer.Peer, logger zerolog.Logger) (int, error) {
	localYears, err := e.local.ListYears()
	if err != nil {
		return 0, err
	}
	remoteYears, err := remote.Years(ctx)
	if err != nil {
		return 0, remoteErr("list years", err)
	}

	merged := 0
	for _, year := range unionInts(localYears, remoteYears) {
		if err := ctx.Err(); err != nil {
			return merged, err
		}

		lcs, err := e.localYearChecksum(year)
		if err != nil {
			return merged, err
		}
		rcs, err := remote.YearChecksum(ctx, year)
		if err != nil {
			return merged, remoteErr("year checksum", err)
		}
		if checksumsEqual(lcs, rcs) {
			logger.Debug().Int("year", year).Msg("Year in sync, skipping")
			continue
		}

		n, err := e.syncYear(ctx, remote, year, logger)
		merged += n
		if err != nil {
			return merged, err
		}
	}
	return merged, nil
}

func (e *Engine) syncYear(ctx context.Context, remote peer.Peer, year int, logger zerolog.Logger) (int, error) {
	localMonths, err := e.local.ListMonths(year)
	if err != nil {
		return 0, err
	}
	remoteMonths, err := remote.Months(ctx, year)
	if err != nil {
		return 0, remoteErr("list months", err)
	}

	merged := 0
	for _, month := range unionInts(localMonths, remoteMonths) {
		if err := ctx.Err(); err != nil {
			return merged, err
		}

		lcs, err := e.localMonthChecksum(year, month)
		if err != nil {
			return merged, err
		}
		rcs, err := remote.MonthChecksum(ctx, year, month)
		if err != nil {
			return merged, remoteErr("month checksum", err)
		}
		if checksumsEqual(lcs, rcs) {
			continue
		}

		n, err := e.syncMonth(ctx, remote, year, month, logger)
		merged += n
		if err != nil {
			return merged, err
		}
	}
	return merged, nil
}

func (e *Engine) syncMonth(ctx context.Context, remote peer.Peer, year, month int, logger zerolog.Logger) (int, error) {
	localDays, err := e.local.ListDays(year, month)
	if err != nil {
		return 0, err
	}
	remoteDays, err := remote.Days(ctx, year, month)
	if err != nil {
		return 0, remoteErr("list days", err)
	}

	merged := 0
	for _, day := range unionInts(localDays, remoteDays) {
		if err := ctx.Err(); err != nil {
			return merged, err
		}

		d := types.Date{Year: year, Month: month, Day: day}
		lcs, err := e.localDayChecksum(d)
		if err != nil {
			return merged, err
		}
		rcs, err := remote.DayChecksum(ctx, d)
		if err != nil {
			return merged, remoteErr("day checksum", err)
		}
		if checksumsEqual(lcs, rcs) {
			metrics.DaysSkippedTotal.Inc()
			continue
		}

		didMerge, err := e.mergeDay(ctx, remote, d, logger)
		if didMerge {
			merged++
		}
		if err != nil {
			return merged, err
		}
	}
	return merged, nil
}

// mergeDay brings both sides of one differing day to the union of their
// object sets.
func (e *Engine) mergeDay(ctx context.Context, remote peer.Peer, d types.Date, logger zerolog.Logger) (bool, error) {
	local, err := e.local.DayObjects(d)
	if err != nil {
		return false, err
	}
	remoteIDs, err := remote.DayObjects(ctx, d)
	if err != nil {
		return false, remoteErr("day objects", err)
	}

	union := unionObjects(local, remoteIDs)
	logger.Debug().
		Str("day", d.String()).
		Int("local_objects", len(local)).
		Int("remote_objects", len(remoteIDs)).
		Int("union", len(union)).
		Msg("Merging day")

	didMerge := false
	if !objectsEqual(union, local) {
		if err := ctx.Err(); err != nil {
			return didMerge, err
		}
		if err := e.local.PutDay(d, union); err != nil {
			return didMerge, err
		}
		metrics.DaysMergedTotal.WithLabelValues("local").Inc()
		didMerge = true
	}
	if !objectsEqual(union, remoteIDs) {
		if err := ctx.Err(); err != nil {
			return didMerge, err
		}
		if err := remote.PutDay(ctx, d, union); err != nil {
			return didMerge, remoteErr("put day", err)
		}
		metrics.DaysMergedTotal.WithLabelValues("remote").Inc()
		didMerge = true
	}

	if didMerge {
		e.publish(events.EventDayMerged, "day merged", map[string]string{
			"day":     d.String(),
			"objects": fmt.Sprintf("%d", len(union)),
		})
	}
	return didMerge, nil
}

func (e *Engine) publish(t events.EventType, msg string, metadata map[string]string) {
	if e.broker != nil {
		e.broker.Publish(t, msg, metadata)
	}
}

// localYearChecksum maps a not-found lookup to an absent checksum, mirroring
// the remote capability's convention.
func (e *Engine) localYearChecksum(year int) (*types.Checksum, error) {
	return optional(e.local.YearChecksum(year))
}

func (e *Engine) localMonthChecksum(year, month int) (*types.Checksum, error) {
	return optional(e.local.MonthChecksum(year, month))
}

func (e *Engine) localDayChecksum(d types.Date) (*types.Checksum, error) {
	return optional(e.local.DayChecksum(d))
}

func optional(cs types.Checksum, err error) (*types.Checksum, error) {
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func remoteErr(op string, err error) error {
	if errors.Is(err, types.ErrRemote) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, types.ErrRemote, err)
}

// checksumsEqual requires both sides present; a level absent on either side
// always descends.
func checksumsEqual(a, b *types.Checksum) bool {
	return a != nil && b != nil && *a == *b
}

func unionInts(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	var out []int
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func unionObjects(a, b []types.ObjectID) []types.ObjectID {
	seen := make(map[types.ObjectID]bool, len(a)+len(b))
	var out []types.ObjectID
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func objectsEqual(a, b []types.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
