// Package freshness classifies how recent the bot's last price update is.
// Evaluation runs on a one-second cadence independent of polling, so the
// badge keeps aging even while the HTTP feed is quiet or down.
package freshness

import (
	"fmt"
	"time"
)

// State is the freshness classification of the price feed.
type State int

const (
	NoData State = iota
	Fresh        // updated less than a minute ago
	Aging        // one to two minutes old
	Stale        // two minutes or more, or the price thread died
)

const (
	agingAfter = 60 * time.Second
	staleAfter = 120 * time.Second
)

// Badge is the rendered freshness indicator.
type Badge struct {
	State State
	Label string
}

// Evaluate classifies the last price update against now. A nil last means
// the feed has not reported yet, which is NoData even when the price thread
// is down (the usual state before the bot's first start). Once a timestamp
// exists, a dead thread forces Stale regardless of how recent it is, since
// the timestamp will never advance again.
func Evaluate(last *time.Time, threadAlive bool, now time.Time) Badge {
	if last == nil {
		return Badge{State: NoData, Label: "no price data"}
	}
	if !threadAlive {
		return Badge{State: Stale, Label: "STALE (thread down)"}
	}
	age := now.Sub(*last)
	switch {
	case age < agingAfter:
		return Badge{State: Fresh, Label: fmt.Sprintf("fresh (%ds)", int(age.Seconds()))}
	case age < staleAfter:
		return Badge{State: Aging, Label: fmt.Sprintf("aging (%ds)", int(age.Seconds()))}
	default:
		return Badge{State: Stale, Label: fmt.Sprintf("STALE (%ds)", int(age.Seconds()))}
	}
}
