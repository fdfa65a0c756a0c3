package botapi

import (
	"context"
	"log/slog"
)

// Refresher requests an immediate status poll.
type Refresher interface {
	PollNow()
}

// Dispatcher issues bot control commands. After every command it requests
// one immediate poll whether or not the command succeeded: the next
// snapshot shows the bot's true state instead of an optimistic guess.
type Dispatcher struct {
	client  *Client
	refresh Refresher
	log     *slog.Logger
}

func NewDispatcher(client *Client, refresh Refresher, log *slog.Logger) *Dispatcher {
	return &Dispatcher{client: client, refresh: refresh, log: log}
}

// Start asks the bot to begin scanning.
func (d *Dispatcher) Start(ctx context.Context) {
	if err := d.client.Start(ctx); err != nil {
		d.log.Warn("start command failed", "error", err)
	}
	d.refresh.PollNow()
}

// Stop asks the bot to halt scanning. Open positions are left to the
// backend's own liquidation policy.
func (d *Dispatcher) Stop(ctx context.Context) {
	if err := d.client.Stop(ctx); err != nil {
		d.log.Warn("stop command failed", "error", err)
	}
	d.refresh.PollNow()
}
