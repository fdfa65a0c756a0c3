// Package dashboard provides the pure display layer for the bot dashboard:
// formatters and derived-view builders that turn a status snapshot into
// render-ready row descriptors. Everything here is stateless; builders never
// mutate their input, and both the TUI and console clients render from the
// same descriptors.
package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"polywatch/internal/status"
)

// Entry gate used by the backend scoring engine, mirrored here only to pick
// row emphasis. These are documented external constants, not values this
// client derives.
const (
	entryNoMin    = 0.78
	entryNoMax    = 0.93
	minEntryScore = 60
)

// Zone bonus points awarded by the backend scorer's price signal. Shown in
// the top-scores table as-is; must track the backend tiers.
var zoneBonus = map[string]int{"A": 30, "B": 20, "C": 10}

const topScoreLimit = 10

// Badge is the bot run-state badge, derived purely from bot_status.
type Badge struct {
	Label string
	Tone  Tone
}

// BuildStatusBadge maps the server's bot_status string onto the badge.
// Anything other than "running" renders as stopped.
func BuildStatusBadge(botStatus string) Badge {
	if botStatus == status.StateRunning {
		return Badge{Label: "RUNNING", Tone: TonePositive}
	}
	return Badge{Label: "STOPPED", Tone: ToneNegative}
}

// Metrics holds the formatted scalar fields of the header region.
type Metrics struct {
	Capital      string
	Available    string
	PnL          string
	PnLTone      Tone
	ROI          string
	ROITone      Tone
	TradeSummary string
	TopScore     int
	Tracked      int
	ScanCount    int
	SessionStart string // HH:MM UTC or "-"
}

// BuildMetrics formats the snapshot's scalar metrics. The trade summary
// joins wins/losses with the optional exit counters, skipping zero counters.
func BuildMetrics(s *status.Snapshot) Metrics {
	parts := []string{fmt.Sprintf("%dW / %dL", s.Won, s.Lost)}
	if s.TrailStop > 0 {
		parts = append(parts, fmt.Sprintf("trail %d", s.TrailStop))
	}
	if s.HardStop > 0 {
		parts = append(parts, fmt.Sprintf("hard %d", s.HardStop))
	}
	if s.Partial > 0 {
		parts = append(parts, fmt.Sprintf("partial %d", s.Partial))
	}
	if s.Liquidated > 0 {
		parts = append(parts, fmt.Sprintf("liq %d", s.Liquidated))
	}
	return Metrics{
		Capital:      FormatCurrency(s.CapitalTotal),
		Available:    FormatCurrency(s.CapitalAvailable),
		PnL:          FormatSignedCurrency(s.PnL),
		PnLTone:      PnLTone(s.PnL),
		ROI:          FormatSignedPercent(s.ROI),
		ROITone:      PnLTone(s.ROI),
		TradeSummary: strings.Join(parts, " · "),
		TopScore:     s.TopScore,
		Tracked:      s.TrackedMarkets,
		ScanCount:    s.ScanCount,
		SessionStart: FormatClockTime(s.SessionStart),
	}
}

// CapitalSeries is the fully replaced chart input: times and values are
// always the same length and in snapshot order. Baseline is the session
// starting capital, the break-even line of the chart.
type CapitalSeries struct {
	Times    []string
	Values   []float64
	Baseline float64
}

// BuildCapitalSeries formats the capital history for charting. When the
// server omits the starting capital the first history point stands in as
// the baseline.
func BuildCapitalSeries(hist []status.CapitalPoint, initial float64) CapitalSeries {
	s := CapitalSeries{
		Times:    make([]string, len(hist)),
		Values:   make([]float64, len(hist)),
		Baseline: initial,
	}
	for i := range hist {
		s.Times[i] = FormatClockTime(hist[i].Time)
		s.Values[i] = hist[i].Capital
	}
	if s.Baseline <= 0 && len(s.Values) > 0 {
		s.Baseline = s.Values[0]
	}
	return s
}

// PositionRow is one open position, formatted for display.
type PositionRow struct {
	Question   string
	Partial    bool // 50% already taken off
	ScoreLabel string
	ScoreTier  ScoreTier
	Entry      string
	Current    string
	TrailStop  string
	Allocated  string
	PnL        string
	PnLTone    Tone
	Opened     string // HH:MM UTC or "-"
}

// PositionsView holds the open-positions table, or its placeholder text
// when there is nothing to show.
type PositionsView struct {
	Rows        []PositionRow
	Placeholder string
}

// BuildOpenPositions renders open positions in snapshot order.
func BuildOpenPositions(ps []status.Position) PositionsView {
	if len(ps) == 0 {
		return PositionsView{Placeholder: "no open positions"}
	}
	rows := make([]PositionRow, len(ps))
	for i, p := range ps {
		label, tier := ScoreBadge(p.Score)
		rows[i] = PositionRow{
			Question:   SanitizeText(p.Question),
			Partial:    p.PartialDone,
			ScoreLabel: label,
			ScoreTier:  tier,
			Entry:      FormatCents(p.EntryNo),
			Current:    FormatCents(p.CurrentNo),
			TrailStop:  FormatCents(p.TrailStop),
			Allocated:  FormatCurrency(p.Allocated),
			PnL:        FormatSignedCurrency(p.PnL),
			PnLTone:    PnLTone(p.PnL),
			Opened:     FormatClockTime(p.EntryTime),
		}
	}
	return PositionsView{Rows: rows}
}

// Emphasis grades an opportunity row: eligible rows (in the entry band and
// above the score gate) get the strong highlight, in-band-only rows a weak
// one, the rest none.
type Emphasis int

const (
	EmphasisNone Emphasis = iota
	EmphasisInRange
	EmphasisEligible
)

// OpportunityRow is one scanned market, formatted for display.
type OpportunityRow struct {
	Question   string
	City       string
	Price      string // NO side
	YesPrice   string
	Volume     string
	Profit     string
	ScoreLabel string
	ScoreTier  ScoreTier
	Zone       string
	ZoneTier   ZoneTier
	TrajGlyph  string
	TrajLabel  string
	TrajMuted  bool
	Obs        int
	ClobOK     bool
	Emphasis   Emphasis
}

// OpportunitiesView holds the scan-results table or its placeholder.
type OpportunitiesView struct {
	Rows        []OpportunityRow
	Placeholder string
}

// BuildOpportunities renders the last scan's candidates in server order.
func BuildOpportunities(list []status.Opportunity) OpportunitiesView {
	if len(list) == 0 {
		return OpportunitiesView{Placeholder: "no recent opportunities"}
	}
	rows := make([]OpportunityRow, len(list))
	for i, o := range list {
		rows[i] = buildOpportunityRow(o)
	}
	return OpportunitiesView{Rows: rows}
}

func buildOpportunityRow(o status.Opportunity) OpportunityRow {
	inRange := o.NoPrice >= entryNoMin && o.NoPrice <= entryNoMax
	emph := EmphasisNone
	switch {
	case inRange && o.ScoreTotal >= minEntryScore:
		emph = EmphasisEligible
	case inRange:
		emph = EmphasisInRange
	}
	label, tier := ScoreBadge(o.ScoreTotal)
	glyph, trajLabel, muted := TrajectoryLabel(o.ScoreTraj)
	return OpportunityRow{
		Question:   SanitizeText(o.Question),
		City:       SanitizeText(o.City),
		Price:      FormatCents(o.NoPrice),
		YesPrice:   FormatCents(o.YesPrice),
		Volume:     fmt.Sprintf("$%.0f", o.Volume),
		Profit:     fmt.Sprintf("%.1f¢", o.ProfitCents),
		ScoreLabel: label,
		ScoreTier:  tier,
		Zone:       o.ScoreZone,
		ZoneTier:   ZoneStyle(o.ScoreZone),
		TrajGlyph:  glyph,
		TrajLabel:  trajLabel,
		TrajMuted:  muted,
		Obs:        o.ScoreObs,
		ClobOK:     o.ClobOK,
		Emphasis:   emph,
	}
}

// TopScoreRow is one entry of the client-derived top-scores ranking.
type TopScoreRow struct {
	Rank       int
	Question   string
	Score      int
	ScoreTier  ScoreTier
	Zone       string
	ZoneTier   ZoneTier
	ZoneBonus  string // "+30" .. "+0"
	TrajGlyph  string
	TrajMuted  bool
	Obs        int
	Price      string
}

// TopScoresView holds the derived ranking or its placeholder.
type TopScoresView struct {
	Rows        []TopScoreRow
	Placeholder string
}

// BuildTopScores derives the top-scores ranking from the same opportunities
// list the scan table shows: keep CLOB-verified rows with a non-zero score,
// sort by score descending (stable, so equal scores keep server order), and
// truncate to ten. This only ranks markets present in the current poll —
// there is no historical top-ten on the client.
func BuildTopScores(list []status.Opportunity) TopScoresView {
	filtered := make([]status.Opportunity, 0, len(list))
	for _, o := range list {
		if o.ClobOK && o.ScoreTotal > 0 {
			filtered = append(filtered, o)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ScoreTotal > filtered[j].ScoreTotal
	})
	if len(filtered) > topScoreLimit {
		filtered = filtered[:topScoreLimit]
	}
	if len(filtered) == 0 {
		return TopScoresView{Placeholder: "no scored markets yet"}
	}
	rows := make([]TopScoreRow, len(filtered))
	for i, o := range filtered {
		_, tier := ScoreBadge(o.ScoreTotal)
		glyph, _, muted := TrajectoryLabel(o.ScoreTraj)
		rows[i] = TopScoreRow{
			Rank:      i + 1,
			Question:  SanitizeText(o.Question),
			Score:     o.ScoreTotal,
			ScoreTier: tier,
			Zone:      o.ScoreZone,
			ZoneTier:  ZoneStyle(o.ScoreZone),
			ZoneBonus: fmt.Sprintf("+%d", zoneBonus[o.ScoreZone]),
			TrajGlyph: glyph,
			TrajMuted: muted,
			Obs:       o.ScoreObs,
			Price:     FormatCents(o.NoPrice),
		}
	}
	return TopScoresView{Rows: rows}
}

// ClosedRow is one closed (or partially exited) trade.
type ClosedRow struct {
	Question   string
	ScoreLabel string
	ScoreTier  ScoreTier
	Entry      string
	Allocated  string
	PnL        string
	PnLTone    Tone
	Status     string
	StatusTone Tone
	Resolution string
	OpenedAt   string
	ClosedAt   string
}

// ClosedView holds the trade-history table or its placeholder.
type ClosedView struct {
	Rows        []ClosedRow
	Placeholder string
}

// StatusTone maps a closed-trade status onto an emphasis category. Unknown
// statuses must render muted rather than failing.
func StatusTone(st string) Tone {
	switch st {
	case status.StatusWon:
		return TonePositive
	case status.StatusLost, status.StatusHardStop:
		return ToneNegative
	case status.StatusTrailStop:
		return ToneWarn
	case status.StatusPartial:
		return ToneInfo
	case status.StatusLiquidated:
		return ToneWarn
	default:
		return ToneMuted
	}
}

// BuildClosedTrades renders closed trades in server order.
func BuildClosedTrades(list []status.ClosedTrade) ClosedView {
	if len(list) == 0 {
		return ClosedView{Placeholder: "no closed trades yet"}
	}
	rows := make([]ClosedRow, len(list))
	for i, c := range list {
		label, tier := ScoreBadge(c.Score)
		rows[i] = ClosedRow{
			Question:   SanitizeText(c.Question),
			ScoreLabel: label,
			ScoreTier:  tier,
			Entry:      FormatCents(c.EntryNo),
			Allocated:  FormatCurrency(c.Allocated),
			PnL:        FormatSignedCurrency(c.PnL),
			PnLTone:    PnLTone(c.PnL),
			Status:     c.Status,
			StatusTone: StatusTone(c.Status),
			Resolution: SanitizeText(c.Resolution),
			OpenedAt:   FormatClockTime(c.EntryTime),
			ClosedAt:   FormatClockTime(c.CloseTime),
		}
	}
	return ClosedView{Rows: rows}
}
