// Package poller drives the dashboard's fixed-interval status polling. It
// owns the cadence and failure policy only; what a snapshot means for the
// display is the reconciler's business.
package poller

import (
	"context"
	"log/slog"
	"time"

	"polywatch/internal/status"
)

// DefaultInterval is the status poll cadence.
const DefaultInterval = 5 * time.Second

// Fetcher retrieves one status snapshot.
type Fetcher interface {
	Status(ctx context.Context) (*status.Snapshot, error)
}

// Applier consumes a successfully fetched snapshot.
type Applier interface {
	Apply(snap *status.Snapshot, now time.Time)
}

// Poller polls the bot API on a fixed interval and feeds each successful
// snapshot to the applier. A failed poll is logged and skipped; the last
// applied snapshot stays on screen until a later poll succeeds.
type Poller struct {
	fetch    Fetcher
	apply    Applier
	interval time.Duration
	log      *slog.Logger
	nudge    chan struct{}
	seq      Sequence
}

// New creates a Poller. A zero interval falls back to DefaultInterval.
func New(fetch Fetcher, apply Applier, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetch:    fetch,
		apply:    apply,
		interval: interval,
		log:      log,
		nudge:    make(chan struct{}, 1),
	}
}

// PollNow requests an immediate out-of-band poll, used right after a
// start/stop action so the display catches up without waiting out the
// interval. The interval itself is not reset. Coalesces if a request is
// already pending.
func (p *Poller) PollNow() {
	select {
	case p.nudge <- struct{}{}:
	default:
	}
}

// Run polls immediately, then on every interval tick or nudge, until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		case <-p.nudge:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	gen := p.seq.Next()
	snap, err := p.fetch.Status(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn("status poll failed", "error", err)
		}
		return
	}
	// Under a sequential loop this never fires, but actions can trigger
	// concurrent fetches through the same sequence.
	if !p.seq.Commit(gen) {
		p.log.Debug("discarding out-of-order snapshot", "generation", gen)
		return
	}
	p.apply.Apply(snap, time.Now())
}
