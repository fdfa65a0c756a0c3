package view

import (
	"time"

	"polywatch/internal/dashboard"
	"polywatch/internal/freshness"
	"polywatch/internal/status"
)

// Reconciler turns a status snapshot into binding calls. Apply is a pure
// function of the snapshot and the clock, so re-applying the same snapshot
// is harmless; regions are always written in the same order.
type Reconciler struct {
	store   *status.Store
	binding Binding
}

func NewReconciler(store *status.Store, b Binding) *Reconciler {
	return &Reconciler{store: store, binding: b}
}

// Apply records the snapshot and rebuilds every region from it. The top
// scores ranking is derived from the same opportunity list the scan table
// shows, so both always reflect the same poll.
func (r *Reconciler) Apply(snap *status.Snapshot, now time.Time) {
	r.store.Set(snap)

	r.binding.SetStatusBadge(dashboard.BuildStatusBadge(snap.BotStatus))
	r.binding.SetMetrics(dashboard.BuildMetrics(snap))
	r.binding.SetFreshness(freshness.Evaluate(snap.LastUpdate(), snap.ThreadAlive(), now))
	r.binding.SetInsights(dashboard.BuildInsights(snap.Insights))
	r.binding.SetCapitalChart(dashboard.BuildCapitalSeries(snap.CapitalHistory, snap.CapitalInitial))
	r.binding.SetPositions(dashboard.BuildOpenPositions(snap.OpenPositions))
	r.binding.SetOpportunities(dashboard.BuildOpportunities(snap.LastOpportunities))
	r.binding.SetTopScores(dashboard.BuildTopScores(snap.LastOpportunities))
	r.binding.SetClosedTrades(dashboard.BuildClosedTrades(snap.ClosedPositions))
}

// Tick re-evaluates only the freshness badge against the current clock,
// letting the indicator age between polls without touching other regions.
func (r *Reconciler) Tick(now time.Time) {
	last, alive := r.store.Freshness()
	r.binding.SetFreshness(freshness.Evaluate(last, alive, now))
}
