package status

import (
	"strings"
	"testing"
	"time"
)

func TestDecodeFullSnapshot(t *testing.T) {
	body := `{
		"bot_status": "running",
		"capital_inicial": 200,
		"capital_total": 215.5,
		"capital_disponible": 115.5,
		"pnl": 15.5,
		"roi": 7.75,
		"won": 3,
		"lost": 1,
		"trail_stop": 1,
		"price_thread_alive": false,
		"last_price_update": "2026-08-29T12:00:00.123456",
		"open_positions": [
			{"question": "q", "score": 72, "entry_no": 0.85, "partial_done": true}
		],
		"last_opportunities": [
			{"question": "q2", "no_price": 0.8, "score_total": 65, "score_zone": "B", "clob_ok": true}
		],
		"closed_positions": [
			{"question": "q3", "status": "WON", "pnl": 8.2}
		],
		"insights": {"overall_win_rate": 0.75, "total_trades": 4, "by_city": [], "by_hour": []}
	}`
	snap, err := Decode(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !snap.Running() {
		t.Error("Running() = false")
	}
	if snap.ThreadAlive() {
		t.Error("explicit false price_thread_alive ignored")
	}
	if snap.CapitalInitial != 200 || snap.TrailStop != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(snap.OpenPositions) != 1 || !snap.OpenPositions[0].PartialDone {
		t.Errorf("positions = %+v", snap.OpenPositions)
	}
	if snap.Insights == nil || snap.Insights.TotalTrades != 4 {
		t.Errorf("insights = %+v", snap.Insights)
	}
	if snap.LastUpdate() == nil {
		t.Error("LastUpdate() = nil")
	}
}

func TestDecodeDefaults(t *testing.T) {
	snap, err := Decode(strings.NewReader(`{"bot_status": "stopped"}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if snap.Running() {
		t.Error("stopped bot reported running")
	}
	if !snap.ThreadAlive() {
		t.Error("absent price_thread_alive should default to alive")
	}
	if snap.LastUpdate() != nil {
		t.Error("absent last_price_update should parse to nil")
	}
	if snap.Insights != nil {
		t.Error("absent insights should stay nil")
	}
}

func TestDecodeNullInsights(t *testing.T) {
	snap, err := Decode(strings.NewReader(`{"bot_status": "running", "insights": null}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if snap.Insights != nil {
		t.Error("null insights should stay nil")
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode(strings.NewReader("not json at all")); err == nil {
		t.Fatal("Decode should fail on malformed input")
	}
}

func TestParseTime(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2026-08-29T12:00:00Z", true},
		{"2026-08-29T12:00:00.123456", true},
		{"2026-08-29T12:00:00", true},
		{"", false},
		{"yesterday", false},
	}
	for _, c := range cases {
		got := ParseTime(c.in)
		if (got != nil) != c.ok {
			t.Errorf("ParseTime(%q) = %v, want ok=%v", c.in, got, c.ok)
		}
	}

	got := ParseTime("2026-08-29T12:30:45.5")
	want := time.Date(2026, 8, 29, 12, 30, 45, 500000000, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("ParseTime fractional = %v, want %v", got, want)
	}
}

func TestStore(t *testing.T) {
	st := NewStore()
	if st.Latest() != nil {
		t.Error("empty store should have no snapshot")
	}
	last, alive := st.Freshness()
	if last != nil || !alive {
		t.Errorf("empty store freshness = %v/%v", last, alive)
	}

	dead := false
	st.Set(&Snapshot{
		BotStatus:        StateRunning,
		LastPriceUpdate:  "2026-08-29T12:00:00",
		PriceThreadAlive: &dead,
	})
	if st.Latest() == nil || !st.Latest().Running() {
		t.Error("stored snapshot lost")
	}
	last, alive = st.Freshness()
	if last == nil || alive {
		t.Errorf("freshness = %v/%v, want parsed time and dead thread", last, alive)
	}
}
