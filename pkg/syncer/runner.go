package syncer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/snorochevskiy/photo-sync-tst/pkg/log"
	"github.com/snorochevskiy/photo-sync-tst/pkg/peer"
)

// NamedPeer pairs a remote peer with the name it is configured under.
type NamedPeer struct {
	Name string
	Peer peer.Peer
}

// Runner periodically syncs the local catalog against each configured peer.
type Runner struct {
	engine   *Engine
	peers    []NamedPeer
	interval time.Duration
	logger   zerolog.Logger
	cancel   context.CancelFunc
	doneCh   chan struct{}
}

// NewRunner creates a runner over the given engine and peers.
func NewRunner(engine *Engine, peers []NamedPeer, interval time.Duration) *Runner {
	return &Runner{
		engine:   engine,
		peers:    peers,
		interval: interval,
		logger:   log.WithComponent("sync-runner"),
	}
}

// Start begins the periodic sync loop.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.doneCh = make(chan struct{})
	go r.run(ctx)
}

// Stop cancels any in-flight sync and stops the loop. The catalog is left
// consistent; unconverged subtrees are picked up on the next Start.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.doneCh
	}
}

// run is the main sync loop
func (r *Runner) run(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Int("peers", len(r.peers)).Msg("Sync runner started")

	// First pass immediately rather than waiting out a full interval.
	r.syncAll(ctx)

	for {
		select {
		case <-ticker.C:
			r.syncAll(ctx)
		case <-ctx.Done():
			r.logger.Info().Msg("Sync runner stopped")
			return
		}
	}
}

// syncAll runs one sync against every peer. Failures are logged and retried
// on the next tick.
func (r *Runner) syncAll(ctx context.Context) {
	for _, p := range r.peers {
		if ctx.Err() != nil {
			return
		}
		if err := r.engine.Sync(ctx, p.Peer); err != nil {
			r.logger.Error().Err(err).Str("peer", p.Name).Msg("Sync cycle failed")
		}
	}
}
