package dashboard

import (
	"fmt"
	"strings"

	"polywatch/internal/status"
)

// Tone is a semantic emphasis category attached to a rendered value. The
// renderer maps tones to colors; builders never deal in colors directly.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
	ToneWarn
	ToneInfo
	ToneMuted
)

// FormatCurrency formats a non-negative base amount as $X.XX. Negative
// inputs keep their sign in front of the dollar sign.
func FormatCurrency(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

// FormatSignedCurrency formats a pnl amount with an explicit sign. Zero
// counts as positive: "+$0.00".
func FormatSignedCurrency(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("+$%.2f", v)
}

// FormatSignedPercent formats a percentage with an explicit "+" for
// non-negative values; negatives carry their own sign.
func FormatSignedPercent(v float64) string {
	if v < 0 {
		return fmt.Sprintf("%.2f%%", v)
	}
	return fmt.Sprintf("+%.2f%%", v)
}

// PnLTone classifies a signed amount; zero is positive by definition.
func PnLTone(v float64) Tone {
	if v >= 0 {
		return TonePositive
	}
	return ToneNegative
}

// FormatCents renders a 0..1 price as cents with one decimal: 0.855 → "85.5¢".
func FormatCents(p float64) string {
	return fmt.Sprintf("%.1f¢", p*100)
}

// FormatClockTime renders an ISO timestamp as UTC HH:MM (24h), or "-" when
// the value is absent or unparseable.
func FormatClockTime(iso string) string {
	t := status.ParseTime(iso)
	if t == nil {
		return "-"
	}
	return t.Format("15:04")
}

// SanitizeText neutralizes control characters in server-provided text so a
// market question can never smuggle cursor or SGR escape sequences into the
// terminal. All row builders pass question/resolution text through here;
// no call site does its own escaping.
func SanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f) {
			return -1
		}
		return r
	}, s)
}

// ScoreTier buckets a 0-100 score for display emphasis.
type ScoreTier int

const (
	ScoreUnscored ScoreTier = iota // score 0 sentinel, not a real zero
	ScoreLow
	ScoreMid  // >= 60
	ScoreHigh // >= 80
)

// ScoreBadge returns the display label and tier for a score. Score 0 is the
// backend's "unscored" sentinel and renders as a placeholder glyph.
func ScoreBadge(score int) (string, ScoreTier) {
	switch {
	case score == 0:
		return "·", ScoreUnscored
	case score >= 80:
		return fmt.Sprintf("%d", score), ScoreHigh
	case score >= 60:
		return fmt.Sprintf("%d", score), ScoreMid
	default:
		return fmt.Sprintf("%d", score), ScoreLow
	}
}

// ZoneTier grades a score zone for display emphasis: A strongest, B medium,
// C weak, anything else muted.
type ZoneTier int

const (
	ZoneMuted ZoneTier = iota
	ZoneWeak
	ZoneMedium
	ZoneStrong
)

// ZoneStyle maps a zone code to its emphasis tier.
func ZoneStyle(zone string) ZoneTier {
	switch zone {
	case "A":
		return ZoneStrong
	case "B":
		return ZoneMedium
	case "C":
		return ZoneWeak
	default:
		return ZoneMuted
	}
}

// TrajectoryLabel maps the scorer's discretized trend code to a glyph and
// label. Unknown codes (including 0, "falling/erratic") render muted.
func TrajectoryLabel(code int) (glyph, label string, muted bool) {
	switch code {
	case 30:
		return "→", "stable", false
	case 20:
		return "↗", "gradual", false
	case 10:
		return "⤒", "rapid", false
	default:
		return "↘", "down", true
	}
}
