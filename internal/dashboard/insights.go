package dashboard

import (
	"fmt"
	"math"

	"polywatch/internal/status"
)

// InsightBar is one win-rate bucket (a city or an hour of day) rendered as
// a labeled percentage bar.
type InsightBar struct {
	Label   string
	Summary string // "67%  (3 trades)"
	Percent int    // bar fill, 0..100
	Tone    Tone
}

// InsightsView is the session-insights panel. Visible is false until the
// server has enough closed trades to publish insights at all. Each
// breakdown carries its own placeholder, set whenever its list is empty,
// so one populated breakdown never hides the other's absence.
type InsightsView struct {
	Visible         bool
	Overall         string // "67%  (3 trades)"
	ByCity          []InsightBar
	CityPlaceholder string
	ByHour          []InsightBar
	HourPlaceholder string
}

func winRateTone(rate float64) Tone {
	switch {
	case rate >= 0.7:
		return TonePositive
	case rate >= 0.5:
		return ToneWarn
	default:
		return ToneNegative
	}
}

func insightBar(label string, rate float64, trades int) InsightBar {
	pct := int(math.Round(rate * 100))
	return InsightBar{
		Label:   SanitizeText(label),
		Summary: fmt.Sprintf("%d%%  (%d trades)", pct, trades),
		Percent: pct,
		Tone:    winRateTone(rate),
	}
}

// BuildInsights renders the insights panel. A nil insights object means the
// server has not accumulated enough history; the panel stays hidden.
func BuildInsights(ins *status.Insights) InsightsView {
	if ins == nil {
		return InsightsView{}
	}
	v := InsightsView{
		Visible: true,
		Overall: fmt.Sprintf("%d%%  (%d trades)", int(math.Round(ins.OverallWinRate*100)), ins.TotalTrades),
	}
	for _, r := range ins.ByCity {
		v.ByCity = append(v.ByCity, insightBar(r.City, r.WinRate, r.Trades))
	}
	for _, r := range ins.ByHour {
		v.ByHour = append(v.ByHour, insightBar(fmt.Sprintf("%02d UTC", r.Hour), r.WinRate, r.Trades))
	}
	if len(v.ByCity) == 0 {
		v.CityPlaceholder = "not enough trades per city yet"
	}
	if len(v.ByHour) == 0 {
		v.HourPlaceholder = "not enough trades per hour yet"
	}
	return v
}
