package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"polywatch/internal/botapi"
	"polywatch/internal/config"
	"polywatch/internal/dashboard"
	"polywatch/internal/freshness"
	"polywatch/internal/poller"
	"polywatch/internal/status"
	"polywatch/internal/util"
	"polywatch/internal/view"
)

// Styles.
var (
	runningStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	stoppedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9"))
	headerBarStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	footerBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	gainStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	eligibleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	inRangeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	freshStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	agingStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	staleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func toneStyle(t dashboard.Tone) lipgloss.Style {
	switch t {
	case dashboard.TonePositive:
		return gainStyle
	case dashboard.ToneNegative:
		return lossStyle
	case dashboard.ToneWarn:
		return warnStyle
	case dashboard.ToneInfo:
		return infoStyle
	case dashboard.ToneMuted:
		return dimStyle
	default:
		return lipgloss.NewStyle()
	}
}

func scoreStyle(tier dashboard.ScoreTier) lipgloss.Style {
	switch tier {
	case dashboard.ScoreHigh:
		return gainStyle
	case dashboard.ScoreMid:
		return warnStyle
	case dashboard.ScoreLow:
		return lossStyle
	default:
		return dimStyle
	}
}

func zoneStyle(tier dashboard.ZoneTier) lipgloss.Style {
	switch tier {
	case dashboard.ZoneStrong:
		return gainStyle
	case dashboard.ZoneMedium:
		return warnStyle
	case dashboard.ZoneWeak:
		return lossStyle
	default:
		return dimStyle
	}
}

func freshnessStyle(s freshness.State) lipgloss.Style {
	switch s {
	case freshness.Fresh:
		return freshStyle
	case freshness.Aging:
		return agingStyle
	case freshness.Stale:
		return staleStyle
	default:
		return dimStyle
	}
}

// Messages.
type tickMsg time.Time
type freshTickMsg time.Time

type statusMsg struct {
	gen  uint64
	snap *status.Snapshot
	err  error
}

type actionDoneMsg struct {
	name string
	err  error
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func freshTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return freshTickMsg(t)
	})
}

// uiState is the TUI's side of the view binding: it just stores whatever
// the reconciler hands it, and the render pass reads it back out. Only the
// Update goroutine touches it.
type uiState struct {
	polled    bool
	badge     dashboard.Badge
	metrics   dashboard.Metrics
	fresh     freshness.Badge
	insights  dashboard.InsightsView
	chart     dashboard.CapitalSeries
	positions dashboard.PositionsView
	opps      dashboard.OpportunitiesView
	top       dashboard.TopScoresView
	closed    dashboard.ClosedView
}

func (s *uiState) SetStatusBadge(v dashboard.Badge) { s.badge = v; s.polled = true }

func (s *uiState) SetMetrics(v dashboard.Metrics) { s.metrics = v }

func (s *uiState) SetFreshness(v freshness.Badge) { s.fresh = v }

func (s *uiState) SetInsights(v dashboard.InsightsView) { s.insights = v }

func (s *uiState) SetCapitalChart(v dashboard.CapitalSeries) { s.chart = v }

func (s *uiState) SetPositions(v dashboard.PositionsView) { s.positions = v }

func (s *uiState) SetOpportunities(v dashboard.OpportunitiesView) { s.opps = v }

func (s *uiState) SetTopScores(v dashboard.TopScoresView) { s.top = v }

func (s *uiState) SetClosedTrades(v dashboard.ClosedView) { s.closed = v }

// Model.
type model struct {
	client   *botapi.Client
	rec      *view.Reconciler
	seq      *poller.Sequence
	ui       *uiState
	interval time.Duration

	viewport      viewport.Model
	ready         bool
	width, height int
	logger        *slog.Logger
	lastErr       string
	acting        string // action name while a command is in flight
}

func initialModel(client *botapi.Client, rec *view.Reconciler, ui *uiState, interval time.Duration, logger *slog.Logger) model {
	return model{
		client:   client,
		rec:      rec,
		seq:      &poller.Sequence{},
		ui:       ui,
		interval: interval,
		logger:   logger,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tickCmd(m.interval), freshTickCmd())
}

// fetchCmd starts one status fetch. The generation lets Update discard a
// response that arrives after a newer one already rendered.
func (m model) fetchCmd() tea.Cmd {
	gen := m.seq.Next()
	client := m.client
	return func() tea.Msg {
		snap, err := client.Status(context.Background())
		return statusMsg{gen: gen, snap: snap, err: err}
	}
}

func (m model) actionCmd(name string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if name == "start" {
			err = client.Start(ctx)
		} else {
			err = client.Stop(ctx)
		}
		return actionDoneMsg{name: name, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			if m.acting == "" {
				m.acting = "start"
				return m, m.actionCmd("start")
			}
			return m, nil
		case "x":
			if m.acting == "" {
				m.acting = "stop"
				return m, m.actionCmd("stop")
			}
			return m, nil
		case "r":
			return m, m.fetchCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 2
		footerH := 1
		vpHeight := m.height - headerH - footerH
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
			m.viewport.SetContent(m.renderContent())
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tickCmd(m.interval))

	case freshTickMsg:
		m.rec.Tick(time.Time(msg))
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}
		return m, freshTickCmd()

	case statusMsg:
		if msg.err != nil {
			// Keep whatever is on screen; just surface the failure.
			m.logger.Warn("status poll failed", "error", msg.err)
			m.lastErr = msg.err.Error()
			return m, nil
		}
		if !m.seq.Commit(msg.gen) {
			m.logger.Debug("discarding out-of-order snapshot", "generation", msg.gen)
			return m, nil
		}
		m.lastErr = ""
		m.rec.Apply(msg.snap, time.Now())
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case actionDoneMsg:
		m.acting = ""
		if msg.err != nil {
			m.logger.Warn("bot action failed", "action", msg.name, "error", msg.err)
			m.lastErr = fmt.Sprintf("%s: %v", msg.name, msg.err)
		} else {
			m.logger.Info("bot action sent", "action", msg.name)
		}
		// Always refresh so the badge shows the server's actual state, not a guess.
		return m, m.fetchCmd()
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var badge string
	if m.ui.badge.Tone == dashboard.TonePositive {
		badge = runningStyle.Render(" " + m.ui.badge.Label + " ")
	} else {
		badge = stoppedStyle.Render(" " + m.ui.badge.Label + " ")
	}

	met := m.ui.metrics
	headerText := fmt.Sprintf("  capital %s  avail %s  pnl %s  roi %s  %s  top %d  scans %d  tracked %d  since %s",
		met.Capital, met.Available, met.PnL, met.ROI, met.TradeSummary, met.TopScore, met.ScanCount, met.Tracked, met.SessionStart)
	header := badge + headerBarStyle.Render(padOrTrunc(headerText, max(0, m.width-lipgloss.Width(badge))))

	freshLine := "  " + freshnessStyle(m.ui.fresh.State).Render(m.ui.fresh.Label)
	if m.lastErr != "" {
		freshLine += errStyle.Render("    poll error: " + m.lastErr)
	}
	if m.acting != "" {
		freshLine += dimStyle.Render("    sending " + m.acting + "...")
	}

	pct := m.viewport.ScrollPercent() * 100
	footerLeft := " q quit  s start  x stop  r refresh  pgup/dn scroll"
	footerRight := fmt.Sprintf("%s  %.0f%% ", m.client.BaseURL(), pct)
	gap := m.width - len(footerLeft) - len(footerRight)
	if gap < 0 {
		gap = 0
	}
	footer := footerBarStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return header + "\n" + freshLine + "\n" + m.viewport.View() + "\n" + footer
}

func (m model) renderContent() string {
	if !m.ui.polled {
		return dimStyle.Render("  waiting for first snapshot...")
	}

	var b strings.Builder
	renderChart(&b, m.ui.chart, m.width)
	renderPositions(&b, m.ui.positions, m.width)
	renderOpportunities(&b, m.ui.opps, m.width)
	renderTopScores(&b, m.ui.top, m.width)
	renderClosed(&b, m.ui.closed, m.width)
	renderInsights(&b, m.ui.insights, m.width)
	return b.String()
}

func sectionHeader(b *strings.Builder, label string, width int) {
	b.WriteString("\n")
	b.WriteString(sectionStyle.Width(width).Render("  " + label))
	b.WriteString("\n")
}

func placeholder(b *strings.Builder, text string) {
	b.WriteString(dimStyle.Render("  (" + text + ")"))
	b.WriteString("\n")
}

func renderChart(b *strings.Builder, series dashboard.CapitalSeries, width int) {
	sectionHeader(b, "CAPITAL", width)
	if len(series.Values) < 2 {
		placeholder(b, "no capital history yet")
		return
	}
	chartWidth := width - 4
	if chartWidth < 10 {
		chartWidth = 10
	}
	chart := renderAreaChart(series.Values, series.Baseline, chartWidth, 6, gainStyle, lossStyle)
	for _, line := range strings.Split(chart, "\n") {
		b.WriteString("  " + line + "\n")
	}
	first := series.Times[0]
	last := series.Times[len(series.Times)-1]
	gap := chartWidth - len(first) - len(last)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(dimStyle.Render("  " + first + strings.Repeat(" ", gap) + last))
	b.WriteString("\n")
}

func renderPositions(b *strings.Builder, v dashboard.PositionsView, width int) {
	sectionHeader(b, fmt.Sprintf("OPEN POSITIONS  %d", len(v.Rows)), width)
	if len(v.Rows) == 0 {
		placeholder(b, v.Placeholder)
		return
	}
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-44s %5s %7s %7s %7s %9s %9s %6s",
		"Question", "Score", "Entry", "Now", "Trail", "Alloc", "PnL", "Opened")))
	b.WriteString("\n")
	for _, r := range v.Rows {
		q := r.Question
		if r.Partial {
			q = "½ " + q
		}
		b.WriteString("  ")
		b.WriteString(questionStyle.Render(fmt.Sprintf("%-44s", truncate(q, 44))))
		b.WriteString(scoreStyle(r.ScoreTier).Render(fmt.Sprintf(" %5s", r.ScoreLabel)))
		b.WriteString(fmt.Sprintf(" %7s %7s %7s %9s", r.Entry, r.Current, r.TrailStop, r.Allocated))
		b.WriteString(toneStyle(r.PnLTone).Render(fmt.Sprintf(" %9s", r.PnL)))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %6s", r.Opened)))
		b.WriteString("\n")
	}
}

func renderOpportunities(b *strings.Builder, v dashboard.OpportunitiesView, width int) {
	sectionHeader(b, fmt.Sprintf("LAST SCAN  %d", len(v.Rows)), width)
	if len(v.Rows) == 0 {
		placeholder(b, v.Placeholder)
		return
	}
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-40s %-10s %7s %7s %8s %7s %5s %4s %-8s %4s %4s",
		"Question", "City", "NO", "YES", "Vol", "Profit", "Score", "Zone", "Traj", "Obs", "CLOB")))
	b.WriteString("\n")
	for _, r := range v.Rows {
		qStyle := questionStyle
		switch r.Emphasis {
		case dashboard.EmphasisEligible:
			qStyle = eligibleStyle
		case dashboard.EmphasisInRange:
			qStyle = inRangeStyle
		}
		clob := dimStyle.Render("   -")
		if r.ClobOK {
			clob = gainStyle.Render("  ok")
		}
		traj := fmt.Sprintf("%s %-7s", r.TrajGlyph, r.TrajLabel)
		trajStyled := traj
		if r.TrajMuted {
			trajStyled = dimStyle.Render(traj)
		}
		b.WriteString("  ")
		b.WriteString(qStyle.Render(fmt.Sprintf("%-40s", truncate(r.Question, 40))))
		b.WriteString(fmt.Sprintf(" %-10s %7s", truncate(r.City, 10), r.Price))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %7s", r.YesPrice)))
		b.WriteString(fmt.Sprintf(" %8s %7s", r.Volume, r.Profit))
		b.WriteString(scoreStyle(r.ScoreTier).Render(fmt.Sprintf(" %5s", r.ScoreLabel)))
		b.WriteString(zoneStyle(r.ZoneTier).Render(fmt.Sprintf(" %4s", r.Zone)))
		b.WriteString(" " + trajStyled)
		b.WriteString(fmt.Sprintf(" %4d", r.Obs))
		b.WriteString(clob)
		b.WriteString("\n")
	}
}

func renderTopScores(b *strings.Builder, v dashboard.TopScoresView, width int) {
	sectionHeader(b, "TOP SCORES", width)
	if len(v.Rows) == 0 {
		placeholder(b, v.Placeholder)
		return
	}
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %3s %-44s %5s %4s %5s %-4s %4s %7s",
		"#", "Question", "Score", "Zone", "Bonus", "Traj", "Obs", "NO")))
	b.WriteString("\n")
	for _, r := range v.Rows {
		traj := r.TrajGlyph
		if r.TrajMuted {
			traj = dimStyle.Render(r.TrajGlyph)
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %3d", r.Rank)))
		b.WriteString(" " + questionStyle.Render(fmt.Sprintf("%-44s", truncate(r.Question, 44))))
		b.WriteString(scoreStyle(r.ScoreTier).Render(fmt.Sprintf(" %5d", r.Score)))
		b.WriteString(zoneStyle(r.ZoneTier).Render(fmt.Sprintf(" %4s", r.Zone)))
		b.WriteString(fmt.Sprintf(" %5s", r.ZoneBonus))
		b.WriteString(" " + traj + "   ")
		b.WriteString(fmt.Sprintf(" %4d %7s", r.Obs, r.Price))
		b.WriteString("\n")
	}
}

func renderClosed(b *strings.Builder, v dashboard.ClosedView, width int) {
	sectionHeader(b, fmt.Sprintf("CLOSED TRADES  %d", len(v.Rows)), width)
	if len(v.Rows) == 0 {
		placeholder(b, v.Placeholder)
		return
	}
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-40s %5s %7s %9s %9s %-11s %-6s %6s %6s",
		"Question", "Score", "Entry", "Alloc", "PnL", "Status", "Res", "Open", "Closed")))
	b.WriteString("\n")
	for _, r := range v.Rows {
		b.WriteString("  ")
		b.WriteString(questionStyle.Render(fmt.Sprintf("%-40s", truncate(r.Question, 40))))
		b.WriteString(scoreStyle(r.ScoreTier).Render(fmt.Sprintf(" %5s", r.ScoreLabel)))
		b.WriteString(fmt.Sprintf(" %7s %9s", r.Entry, r.Allocated))
		b.WriteString(toneStyle(r.PnLTone).Render(fmt.Sprintf(" %9s", r.PnL)))
		b.WriteString(toneStyle(r.StatusTone).Render(fmt.Sprintf(" %-11s", r.Status)))
		b.WriteString(fmt.Sprintf(" %-6s %6s %6s", truncate(r.Resolution, 6), r.OpenedAt, r.ClosedAt))
		b.WriteString("\n")
	}
}

func renderInsights(b *strings.Builder, v dashboard.InsightsView, width int) {
	if !v.Visible {
		return
	}
	sectionHeader(b, "SESSION INSIGHTS  "+v.Overall, width)
	writeBars := func(label string, bars []dashboard.InsightBar, empty string) {
		b.WriteString(colHeaderStyle.Render("  " + label))
		b.WriteString("\n")
		if len(bars) == 0 {
			placeholder(b, empty)
			return
		}
		for _, bar := range bars {
			fill := bar.Percent / 5 // 20-cell bar
			if fill > 20 {
				fill = 20
			}
			gauge := strings.Repeat("█", fill) + strings.Repeat("░", 20-fill)
			b.WriteString(fmt.Sprintf("  %-12s ", truncate(bar.Label, 12)))
			b.WriteString(toneStyle(bar.Tone).Render(gauge))
			b.WriteString("  " + bar.Summary)
			b.WriteString("\n")
		}
	}
	writeBars("by city", v.ByCity, v.CityPlaceholder)
	writeBars("by hour", v.ByHour, v.HourPlaceholder)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// padOrTrunc pads s with spaces to the given display width, or truncates
// on rune boundaries if wider. Counts cells, not bytes: the header has
// multi-byte glyphs in it.
func padOrTrunc(s string, width int) string {
	if lipgloss.Width(s) > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r)) > width {
			r = r[:len(r)-1]
		}
		s = string(r)
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(logFile, cfg.Logging.Level)
	util.SetDefault(logger)
	logger.Info("polywatch starting", "server", cfg.Server.BaseURL, "interval", cfg.Interval())

	client := botapi.NewClient(cfg.Server.BaseURL)
	ui := &uiState{}
	rec := view.NewReconciler(status.NewStore(), ui)

	p := tea.NewProgram(
		initialModel(client, rec, ui, cfg.Interval(), logger),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
