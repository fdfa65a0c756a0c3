package freshness

import (
	"testing"
	"time"
)

func TestEvaluateBoundaries(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ageSec int
		want   State
	}{
		{0, Fresh},
		{59, Fresh},
		{60, Aging},
		{119, Aging},
		{120, Stale},
		{600, Stale},
	}
	for _, c := range cases {
		last := now.Add(-time.Duration(c.ageSec) * time.Second)
		b := Evaluate(&last, true, now)
		if b.State != c.want {
			t.Errorf("age %ds: state = %v, want %v", c.ageSec, b.State, c.want)
		}
	}
}

func TestEvaluateNoData(t *testing.T) {
	b := Evaluate(nil, true, time.Now())
	if b.State != NoData {
		t.Errorf("state = %v, want NoData", b.State)
	}
}

func TestEvaluateThreadDown(t *testing.T) {
	now := time.Now()
	last := now.Add(-5 * time.Second)
	// Thread death overrides a recent timestamp.
	b := Evaluate(&last, false, now)
	if b.State != Stale {
		t.Errorf("state = %v, want Stale", b.State)
	}
	if b.Label != "STALE (thread down)" {
		t.Errorf("label = %q", b.Label)
	}
}

func TestEvaluateNoDataBeforeThreadDown(t *testing.T) {
	// Before the bot's first start the server reports both a dead price
	// thread and no timestamp; that is a missing feed, not a stale one.
	b := Evaluate(nil, false, time.Now())
	if b.State != NoData {
		t.Errorf("state = %v, want NoData", b.State)
	}
	if b.Label != "no price data" {
		t.Errorf("label = %q", b.Label)
	}
}
