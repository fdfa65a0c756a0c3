// Package status defines the snapshot types served by the trading bot's
// /api/status endpoint, with lenient decoding: missing optional fields fall
// back to neutral defaults instead of failing the whole snapshot.
package status

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Bot state strings as reported by the server.
const (
	StateRunning = "running"
	StateStopped = "stopped"
)

// Closed-trade statuses assigned by the trading engine.
const (
	StatusWon        = "WON"
	StatusLost       = "LOST"
	StatusPartial    = "PARTIAL"
	StatusTrailStop  = "TRAIL_STOP"
	StatusHardStop   = "HARD_STOP"
	StatusLiquidated = "LIQUIDATED"
)

// CapitalPoint is one sample of the capital history series.
type CapitalPoint struct {
	Time    string  `json:"time"`
	Capital float64 `json:"capital"`
}

// Position is an open position as reported by the server.
type Position struct {
	Question    string  `json:"question"`
	City        string  `json:"city"`
	Score       int     `json:"score"` // 0 = unscored sentinel
	EntryNo     float64 `json:"entry_no"`
	CurrentNo   float64 `json:"current_no"`
	TrailStop   float64 `json:"trail_stop"`
	Allocated   float64 `json:"allocated"`
	PnL         float64 `json:"pnl"`
	PartialDone bool    `json:"partial_done"`
	EntryTime   string  `json:"entry_time"`
}

// Opportunity is one scanned market candidate from the last scan cycle.
type Opportunity struct {
	Question    string  `json:"question"`
	City        string  `json:"city"`
	NoPrice     float64 `json:"no_price"`
	YesPrice    float64 `json:"yes_price"`
	Volume      float64 `json:"volume"`
	ProfitCents float64 `json:"profit_cents"`
	ScoreTotal  int     `json:"score_total"`
	ScoreZone   string  `json:"score_zone"` // "A", "B", "C" or "-"
	ScoreTraj   int     `json:"score_traj"` // 30/20/10/0 trajectory code
	ScoreObs    int     `json:"score_obs"`
	ClobOK      bool    `json:"clob_ok"`
}

// ClosedTrade is a finished (or partially exited) position.
type ClosedTrade struct {
	Question   string  `json:"question"`
	Score      int     `json:"score"`
	EntryNo    float64 `json:"entry_no"`
	Allocated  float64 `json:"allocated"`
	PnL        float64 `json:"pnl"`
	Status     string  `json:"status"`
	Resolution string  `json:"resolution"`
	EntryTime  string  `json:"entry_time"`
	CloseTime  string  `json:"close_time"`
}

// InsightRow is one win-rate breakdown entry (per city or per hour).
type InsightRow struct {
	City    string  `json:"city,omitempty"`
	Hour    int     `json:"hour"`
	WinRate float64 `json:"win_rate"`
	Trades  int     `json:"trades"`
}

// Insights aggregates win-rate breakdowns. A nil *Insights means the server
// has not accumulated enough closed trades yet; the panel is hidden entirely.
type Insights struct {
	OverallWinRate float64      `json:"overall_win_rate"`
	TotalTrades    int          `json:"total_trades"`
	ByCity         []InsightRow `json:"by_city"`
	ByHour         []InsightRow `json:"by_hour"`
}

// Snapshot is one complete, immutable /api/status response. Each poll fully
// supersedes the previous snapshot for rendering purposes; nothing is merged
// across polls.
type Snapshot struct {
	BotStatus         string         `json:"bot_status"`
	CapitalInitial    float64        `json:"capital_inicial"`
	CapitalTotal      float64        `json:"capital_total"`
	CapitalAvailable  float64        `json:"capital_disponible"`
	PnL               float64        `json:"pnl"`
	ROI               float64        `json:"roi"`
	Won               int            `json:"won"`
	Lost              int            `json:"lost"`
	TrailStop         int            `json:"trail_stop"`
	HardStop          int            `json:"hard_stop"`
	Partial           int            `json:"partial"`
	Liquidated        int            `json:"liquidated"`
	TopScore          int            `json:"top_score"`
	TrackedMarkets    int            `json:"tracked_markets"`
	ScanCount         int            `json:"scan_count"`
	SessionStart      string         `json:"session_start"`
	LastPriceUpdate   string         `json:"last_price_update"`
	PriceThreadAlive  *bool          `json:"price_thread_alive"`
	CapitalHistory    []CapitalPoint `json:"capital_history"`
	OpenPositions     []Position     `json:"open_positions"`
	LastOpportunities []Opportunity  `json:"last_opportunities"`
	ClosedPositions   []ClosedTrade  `json:"closed_positions"`
	Insights          *Insights      `json:"insights"`
}

// Running reports whether the bot's scan loop is active.
func (s *Snapshot) Running() bool {
	return s.BotStatus == StateRunning
}

// ThreadAlive reports the price-thread health flag, defaulting to true when
// the server omitted the field.
func (s *Snapshot) ThreadAlive() bool {
	if s.PriceThreadAlive == nil {
		return true
	}
	return *s.PriceThreadAlive
}

// LastUpdate parses last_price_update, returning nil for absent/null/garbage
// values. A nil result renders as the no-data freshness state.
func (s *Snapshot) LastUpdate() *time.Time {
	return ParseTime(s.LastPriceUpdate)
}

// ParseTime parses an ISO-8601 timestamp, tolerating a missing timezone
// suffix (the server emits UTC either way). Returns nil when unparseable.
func ParseTime(iso string) *time.Time {
	if iso == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, iso); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// Decode reads one Snapshot from r. Unknown fields are ignored and optional
// fields keep their zero defaults; only malformed JSON is an error.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding status snapshot: %w", err)
	}
	return &snap, nil
}
