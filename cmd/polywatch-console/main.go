package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	figure "github.com/common-nighthawk/go-figure"
	"golang.org/x/term"

	"polywatch/internal/botapi"
	"polywatch/internal/config"
	"polywatch/internal/dashboard"
	"polywatch/internal/freshness"
	"polywatch/internal/poller"
	"polywatch/internal/status"
	"polywatch/internal/util"
	"polywatch/internal/view"
)

// ANSI color codes for tone rendering.
const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiDim    = "\033[2m"
	ansiBold   = "\033[1m"
)

func toneCode(t dashboard.Tone) string {
	switch t {
	case dashboard.TonePositive:
		return ansiGreen
	case dashboard.ToneNegative:
		return ansiRed
	case dashboard.ToneWarn:
		return ansiYellow
	case dashboard.ToneInfo:
		return ansiCyan
	case dashboard.ToneMuted:
		return ansiDim
	default:
		return ""
	}
}

func tinted(t dashboard.Tone, s string) string {
	code := toneCode(t)
	if code == "" {
		return s
	}
	return code + s + ansiReset
}

// consoleState is one coherent copy of everything the repaint loop draws.
type consoleState struct {
	polled    bool
	badge     dashboard.Badge
	metrics   dashboard.Metrics
	fresh     freshness.Badge
	insights  dashboard.InsightsView
	positions dashboard.PositionsView
	opps      dashboard.OpportunitiesView
	top       dashboard.TopScoresView
	closed    dashboard.ClosedView
}

// consoleBinding stores the latest view descriptors behind a mutex: the
// poller goroutine writes through the reconciler while the repaint loop
// reads.
type consoleBinding struct {
	mu    sync.Mutex
	state consoleState
}

func (c *consoleBinding) SetStatusBadge(v dashboard.Badge) {
	c.mu.Lock()
	c.state.badge = v
	c.state.polled = true
	c.mu.Unlock()
}
func (c *consoleBinding) SetMetrics(v dashboard.Metrics) {
	c.mu.Lock()
	c.state.metrics = v
	c.mu.Unlock()
}
func (c *consoleBinding) SetFreshness(v freshness.Badge) {
	c.mu.Lock()
	c.state.fresh = v
	c.mu.Unlock()
}
func (c *consoleBinding) SetInsights(v dashboard.InsightsView) {
	c.mu.Lock()
	c.state.insights = v
	c.mu.Unlock()
}
func (c *consoleBinding) SetCapitalChart(dashboard.CapitalSeries) {
	// The plain console skips the chart; the history is visible in the TUI.
}
func (c *consoleBinding) SetPositions(v dashboard.PositionsView) {
	c.mu.Lock()
	c.state.positions = v
	c.mu.Unlock()
}
func (c *consoleBinding) SetOpportunities(v dashboard.OpportunitiesView) {
	c.mu.Lock()
	c.state.opps = v
	c.mu.Unlock()
}
func (c *consoleBinding) SetTopScores(v dashboard.TopScoresView) {
	c.mu.Lock()
	c.state.top = v
	c.mu.Unlock()
}
func (c *consoleBinding) SetClosedTrades(v dashboard.ClosedView) {
	c.mu.Lock()
	c.state.closed = v
	c.mu.Unlock()
}

func (c *consoleBinding) snapshot() consoleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger := util.NewLogger(os.Stderr, cfg.Logging.Level)
	util.SetDefault(logger)

	client := botapi.NewClient(cfg.Server.BaseURL)
	binding := &consoleBinding{}
	rec := view.NewReconciler(status.NewStore(), binding)
	p := poller.New(client, rec, cfg.Interval(), logger)
	dispatch := botapi.NewDispatcher(client, p, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Probe the server before taking over the terminal; transient startup
	// failures get a few retries.
	err = util.Retry(ctx, 3, time.Second, func() error {
		_, err := client.Status(ctx)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot reach bot server at %s: %v\n", cfg.Server.BaseURL, err)
		os.Exit(1)
	}

	banner := figure.NewFigure("polywatch", "", false)
	banner.Print()
	fmt.Printf("watching %s every %s\n", cfg.Server.BaseURL, cfg.Interval())
	time.Sleep(time.Second)

	go p.Run(ctx)

	// Raw mode for single-key commands (non-fatal if not a terminal).
	fd := int(os.Stdin.Fd())
	oldState, rawErr := term.MakeRaw(fd)
	if rawErr != nil {
		logger.Warn("raw mode unavailable, keys disabled", "error", rawErr)
	} else {
		defer term.Restore(fd, oldState)
		go func() {
			buf := make([]byte, 1)
			for {
				n, err := os.Stdin.Read(buf)
				if err != nil || n == 0 {
					return
				}
				switch buf[0] {
				case 'q', 'Q', 3: // ctrl-c arrives in-band under raw mode
					cancel()
					return
				case 's', 'S':
					go dispatch.Start(ctx)
				case 'x', 'X':
					go dispatch.Stop(ctx)
				case 'r', 'R':
					p.PollNow()
				}
			}
		}()
	}

	// Repaint every second so the freshness badge keeps aging between
	// polls.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rec.Tick(time.Now())
			printDashboard(binding.snapshot(), cfg.Server.BaseURL)
		case <-ctx.Done():
			fmt.Print("\r\nshutdown\r\n")
			return
		}
	}
}

// printDashboard clears the screen and redraws everything. Raw mode means
// explicit \r\n line endings.
func printDashboard(b consoleState, serverURL string) {
	var out strings.Builder

	out.WriteString("\033[H\033[2J")

	badgeCode := ansiBold + ansiGreen
	if b.badge.Tone != dashboard.TonePositive {
		badgeCode = ansiBold + ansiRed
	}
	met := b.metrics
	out.WriteString(fmt.Sprintf("%s[%s]%s  capital %s  avail %s  pnl %s  roi %s  %s\r\n",
		badgeCode, b.badge.Label, ansiReset,
		met.Capital, met.Available,
		tinted(met.PnLTone, met.PnL), tinted(met.ROITone, met.ROI),
		met.TradeSummary))

	freshCode := ansiGreen
	switch b.fresh.State {
	case freshness.Aging:
		freshCode = ansiYellow
	case freshness.Stale:
		freshCode = ansiBold + ansiRed
	case freshness.NoData:
		freshCode = ansiDim
	}
	out.WriteString(fmt.Sprintf("%s%s%s    scans %d  tracked %d  top %d  since %s    [q quit  s start  x stop  r refresh]\r\n",
		freshCode, b.fresh.Label, ansiReset,
		met.ScanCount, met.Tracked, met.TopScore, met.SessionStart))

	if !b.polled {
		out.WriteString(ansiDim + "waiting for first snapshot..." + ansiReset + "\r\n")
		fmt.Print(out.String())
		return
	}

	out.WriteString(fmt.Sprintf("\r\n========== OPEN POSITIONS  %d ==========\r\n", len(b.positions.Rows)))
	if len(b.positions.Rows) == 0 {
		out.WriteString(ansiDim + "(" + b.positions.Placeholder + ")" + ansiReset + "\r\n")
	} else {
		out.WriteString(fmt.Sprintf("  %-44s %5s %7s %7s %7s %9s %9s\r\n",
			"Question", "Score", "Entry", "Now", "Trail", "Alloc", "PnL"))
		for _, r := range b.positions.Rows {
			q := r.Question
			if r.Partial {
				q = "½ " + q
			}
			out.WriteString(fmt.Sprintf("  %-44s %5s %7s %7s %7s %9s %s\r\n",
				clip(q, 44), r.ScoreLabel, r.Entry, r.Current, r.TrailStop, r.Allocated,
				tinted(r.PnLTone, fmt.Sprintf("%9s", r.PnL))))
		}
	}

	out.WriteString(fmt.Sprintf("\r\n========== LAST SCAN  %d ==========\r\n", len(b.opps.Rows)))
	if len(b.opps.Rows) == 0 {
		out.WriteString(ansiDim + "(" + b.opps.Placeholder + ")" + ansiReset + "\r\n")
	} else {
		out.WriteString(fmt.Sprintf("  %-40s %-10s %7s %8s %7s %5s %4s %4s\r\n",
			"Question", "City", "NO", "Vol", "Profit", "Score", "Zone", "CLOB"))
		for _, r := range b.opps.Rows {
			mark := " "
			switch r.Emphasis {
			case dashboard.EmphasisEligible:
				mark = ansiGreen + "*" + ansiReset
			case dashboard.EmphasisInRange:
				mark = ansiYellow + "~" + ansiReset
			}
			clob := "-"
			if r.ClobOK {
				clob = "ok"
			}
			out.WriteString(fmt.Sprintf(" %s%-40s %-10s %7s %8s %7s %5s %4s %4s\r\n",
				mark, clip(r.Question, 40), clip(r.City, 10), r.Price, r.Volume, r.Profit,
				r.ScoreLabel, r.Zone, clob))
		}
	}

	out.WriteString("\r\n========== TOP SCORES ==========\r\n")
	if len(b.top.Rows) == 0 {
		out.WriteString(ansiDim + "(" + b.top.Placeholder + ")" + ansiReset + "\r\n")
	} else {
		for _, r := range b.top.Rows {
			out.WriteString(fmt.Sprintf("  %2d. %-44s %5d  %s %s  %7s\r\n",
				r.Rank, clip(r.Question, 44), r.Score, r.Zone, r.ZoneBonus, r.Price))
		}
	}

	out.WriteString(fmt.Sprintf("\r\n========== CLOSED TRADES  %d ==========\r\n", len(b.closed.Rows)))
	if len(b.closed.Rows) == 0 {
		out.WriteString(ansiDim + "(" + b.closed.Placeholder + ")" + ansiReset + "\r\n")
	} else {
		for _, r := range b.closed.Rows {
			out.WriteString(fmt.Sprintf("  %-40s %7s %9s %s %s %6s\r\n",
				clip(r.Question, 40), r.Entry, tinted(r.PnLTone, fmt.Sprintf("%9s", r.PnL)),
				tinted(r.StatusTone, fmt.Sprintf("%-11s", r.Status)), clip(r.Resolution, 6), r.ClosedAt))
		}
	}

	if b.insights.Visible {
		out.WriteString("\r\n========== SESSION INSIGHTS  " + b.insights.Overall + " ==========\r\n")
		writeBars := func(bars []dashboard.InsightBar, empty string) {
			if len(bars) == 0 {
				out.WriteString(ansiDim + "(" + empty + ")" + ansiReset + "\r\n")
				return
			}
			for _, bar := range bars {
				out.WriteString(fmt.Sprintf("  %-12s %s\r\n", clip(bar.Label, 12), tinted(bar.Tone, bar.Summary)))
			}
		}
		writeBars(b.insights.ByCity, b.insights.CityPlaceholder)
		writeBars(b.insights.ByHour, b.insights.HourPlaceholder)
	}

	out.WriteString(ansiDim + "\r\n" + serverURL + ansiReset + "\r\n")
	fmt.Print(out.String())
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
