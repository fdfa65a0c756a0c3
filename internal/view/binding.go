// Package view decouples snapshot reconciliation from any particular
// renderer. A Binding is the write-side of a display surface: the TUI and
// the console client each implement it once, and the reconciler drives
// either through the same code path.
package view

import (
	"polywatch/internal/dashboard"
	"polywatch/internal/freshness"
)

// Binding receives fully built view descriptors. Implementations replace
// the named region wholesale on every call; they never merge.
type Binding interface {
	SetStatusBadge(dashboard.Badge)
	SetMetrics(dashboard.Metrics)
	SetFreshness(freshness.Badge)
	SetInsights(dashboard.InsightsView)
	SetCapitalChart(dashboard.CapitalSeries)
	SetPositions(dashboard.PositionsView)
	SetOpportunities(dashboard.OpportunitiesView)
	SetTopScores(dashboard.TopScoresView)
	SetClosedTrades(dashboard.ClosedView)
}
