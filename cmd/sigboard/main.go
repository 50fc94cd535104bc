package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"sigboard/internal/archive"
	"sigboard/internal/config"
	"sigboard/internal/export"
	"sigboard/internal/feed"
	"sigboard/internal/util"
	"sigboard/internal/view"
	"sigboard/internal/watchlist"
)

// Styles.
var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	tabActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	symbolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	symbolWlStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")) // orange for watchlist
	scoreHiStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	scoreLoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noteStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	detailKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	highlightBG    = lipgloss.Color("236")
)

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}

// Messages.
type tickMsg struct {
	gen int // tick chain generation; stale generations are dropped
	t   time.Time
}

type feedLoadedMsg struct {
	tab    string
	rows   []feed.Row
	empty  bool // feed degraded to empty before fallback
	manual bool
}

type exportedMsg struct {
	tab  string
	path string
	err  error
}

func tickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, t: t}
	})
}

// Model.
type model struct {
	cfg         *config.Config
	loader      *feed.Loader
	wl          *watchlist.Store
	arch        *archive.Archive // nil when archiving is disabled
	logger      *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	tabIdx      int
	rows        map[string][]feed.Row // per tab, post-fallback
	watch       map[string]bool
	search      textinput.Model
	typing      bool
	watchOnly   bool
	page        int
	selected    int // index within the visible page
	autoRefresh bool
	tickGen     int // current tick chain; bumped on every toggle
	pending     int // fetches in flight this refresh cycle
	manualRuns  int // manual-refresh fetches still pending
	emptyFeeds  int // feeds that came back empty during a manual refresh
	status      string
	width       int
	height      int
}

func initialModel(cfg *config.Config, loader *feed.Loader, wl *watchlist.Store, arch *archive.Archive, logger *slog.Logger, ctx context.Context, cancel context.CancelFunc) model {
	ti := textinput.New()
	ti.Placeholder = "symbol"
	ti.Prompt = "search: "
	ti.CharLimit = 24

	return model{
		cfg:         cfg,
		loader:      loader,
		wl:          wl,
		arch:        arch,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		rows:        make(map[string][]feed.Row, len(feed.Tabs)),
		watch:       wl.Load(),
		search:      ti,
		page:        1,
		autoRefresh: true,
	}
}

func (m model) Init() tea.Cmd {
	cmds := m.refreshCmds(false)
	cmds = append(cmds, tickCmd(m.cfg.Feeds.RefreshInterval, m.tickGen))
	return tea.Batch(cmds...)
}

// refreshCmds issues one load command per feed. Results commit per feed as
// each settles, so a slow feed never delays its siblings.
func (m *model) refreshCmds(manual bool) []tea.Cmd {
	m.pending = len(feed.Tabs)
	if manual {
		m.manualRuns = len(feed.Tabs)
		m.emptyFeeds = 0
	}
	cmds := make([]tea.Cmd, 0, len(feed.Tabs))
	for _, tab := range feed.Tabs {
		cmds = append(cmds, m.loadFeedCmd(tab, manual))
	}
	return cmds
}

func (m *model) loadFeedCmd(tab string, manual bool) tea.Cmd {
	loader := m.loader
	arch := m.arch
	logger := m.logger
	ctx := m.ctx
	return func() tea.Msg {
		rows := loader.LoadFeed(ctx, tab)
		if arch != nil && len(rows) > 0 {
			if err := arch.Write(tab, rows, time.Now()); err != nil {
				logger.Warn("snapshot write failed", "tab", tab, "error", err)
			}
		}
		return feedLoadedMsg{tab: tab, rows: rows, empty: len(rows) == 0, manual: manual}
	}
}

func (m *model) exportCmd() tea.Cmd {
	tab := m.activeTab()
	res := m.filteredAll()
	outDir := m.cfg.Export.OutDir
	return func() tea.Msg {
		path := filepath.Join(outDir, export.FileName(tab))
		doc := export.Encode(res, export.Columns(tab))
		err := os.WriteFile(path, []byte(doc), 0o644)
		return exportedMsg{tab: tab, path: path, err: err}
	}
}

func (m model) activeTab() string {
	return feed.Tabs[m.tabIdx]
}

// query assembles the current view inputs for the active tab.
func (m model) query() view.Query {
	return view.Query{
		Search:    m.search.Value(),
		WatchOnly: m.watchOnly,
		Page:      m.page,
		PageSize:  m.cfg.View.PageSize,
	}
}

// visible computes the active tab's current page.
func (m model) visible() view.Result {
	return view.Compute(m.rows[m.activeTab()], m.query(), m.watch)
}

// filteredAll returns the full filtered, sorted row set for the active tab
// (all pages), which is what an export covers.
func (m model) filteredAll() []feed.Row {
	rows := m.rows[m.activeTab()]
	q := m.query()
	q.Page = 1
	q.PageSize = len(rows) + 1
	return view.Compute(rows, q, m.watch).Rows
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.typing {
			switch msg.String() {
			case "enter", "esc":
				m.typing = false
				m.search.Blur()
				return m, nil
			default:
				var cmd tea.Cmd
				m.search, cmd = m.search.Update(msg)
				// Any edit to the term resets to the first page.
				m.page = 1
				m.selected = 0
				return m, cmd
			}
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "left", "shift+tab":
			m.tabIdx = (m.tabIdx + len(feed.Tabs) - 1) % len(feed.Tabs)
			m.page = 1
			m.selected = 0
			return m, nil
		case "right", "tab":
			m.tabIdx = (m.tabIdx + 1) % len(feed.Tabs)
			m.page = 1
			m.selected = 0
			return m, nil
		case "/":
			m.typing = true
			m.search.Focus()
			return m, textinput.Blink
		case "w":
			m.watchOnly = !m.watchOnly
			m.page = 1
			m.selected = 0
			return m, nil
		case "r":
			if m.pending > 0 || m.loader.InFlight() {
				return m, nil // advisory: don't stack manual refreshes
			}
			m.status = "refreshing..."
			return m, tea.Batch(m.refreshCmds(true)...)
		case "a":
			m.autoRefresh = !m.autoRefresh
			// Bumping the generation orphans any tick already scheduled,
			// so an off/on cycle cannot leave two chains running.
			m.tickGen++
			if m.autoRefresh {
				return m, tickCmd(m.cfg.Feeds.RefreshInterval, m.tickGen)
			}
			return m, nil
		case "e":
			return m, m.exportCmd()
		case " ":
			res := m.visible()
			if m.selected < len(res.Rows) {
				sym := res.Rows[m.selected].Symbol
				if sym != "" {
					m.watch = m.wl.Toggle(sym)
				}
			}
			return m, nil
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < len(m.visible().Rows)-1 {
				m.selected++
			}
			return m, nil
		case "pgup", "[":
			if m.page > 1 {
				m.page--
				m.selected = 0
			}
			return m, nil
		case "pgdown", "]":
			if m.page < m.visible().TotalPages {
				m.page++
				m.selected = 0
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.autoRefresh || msg.gen != m.tickGen {
			return m, nil // only the current chain refreshes and re-arms
		}
		cmds := m.refreshCmds(false)
		cmds = append(cmds, tickCmd(m.cfg.Feeds.RefreshInterval, m.tickGen))
		return m, tea.Batch(cmds...)

	case feedLoadedMsg:
		m.rows[msg.tab] = feed.WithFallback(msg.tab, msg.rows)
		if m.pending > 0 {
			m.pending--
		}
		if msg.manual {
			if msg.empty {
				m.emptyFeeds++
			}
			m.manualRuns--
			if m.manualRuns == 0 {
				if m.emptyFeeds > 0 {
					m.status = fmt.Sprintf("%d feed(s) empty or unreachable, showing demo rows", m.emptyFeeds)
				} else {
					m.status = "refreshed"
				}
			}
		}
		// Keep the selection on the page after the tab's rows change.
		if msg.tab == m.activeTab() {
			if n := len(m.visible().Rows); m.selected >= n && n > 0 {
				m.selected = n - 1
			}
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("export failed: %v", msg.err)
			m.logger.Warn("export failed", "tab", msg.tab, "error", msg.err)
		} else {
			m.status = "exported " + msg.path
			m.logger.Info("exported", "tab", msg.tab, "path", msg.path)
		}
		return m, nil
	}

	return m, nil
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	title := fmt.Sprintf(" sigboard  %s ", time.Now().Format("2006-01-02 15:04"))
	if m.pending > 0 {
		title += fmt.Sprintf(" fetching %d... ", m.pending)
	}
	b.WriteString(headerStyle.Render(padOrTrunc(title, m.width)))
	b.WriteString("\n")

	// Tab bar.
	var tabs []string
	for i, tab := range feed.Tabs {
		label := " " + tab + " "
		if i == m.tabIdx {
			tabs = append(tabs, tabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n")

	// Search / filter line.
	flags := ""
	if m.watchOnly {
		flags += "  [watch-only]"
	}
	if m.autoRefresh {
		flags += fmt.Sprintf("  [auto %s]", m.cfg.Feeds.RefreshInterval)
	}
	b.WriteString(m.search.View() + dimStyle.Render(flags))
	b.WriteString("\n\n")

	res := m.visible()
	m.renderTable(&b, res)

	// Detail panel for the selected row.
	if m.selected < len(res.Rows) {
		b.WriteString("\n")
		renderDetail(&b, res.Rows[m.selected], m.width)
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(" " + m.status))
	}
	b.WriteString("\n")

	footer := fmt.Sprintf(" page %d/%d  rows %d   q quit  / search  w watch-only  space star  r refresh  a auto  e export  [/] page",
		res.Page, res.TotalPages, res.Total)
	b.WriteString(footerStyle.Render(padOrTrunc(footer, m.width)))

	return b.String()
}

func (m model) renderTable(b *strings.Builder, res view.Result) {
	b.WriteString(colHeaderStyle.Render(fmt.Sprintf("  %-3s %-10s %7s  %s", "#", "Symbol", "Score", "Note")))
	b.WriteString("\n")

	if len(res.Rows) == 0 {
		b.WriteString(dimStyle.Render("  (no matching signals)"))
		b.WriteString("\n")
		return
	}

	for i, r := range res.Rows {
		hl := i == m.selected
		star := " "
		if m.watch[r.Symbol] {
			star = "*"
		}
		symStyle := symbolStyle
		if m.watch[r.Symbol] {
			symStyle = symbolWlStyle
		}

		b.WriteString(hlStyle(dimStyle, hl).Render(fmt.Sprintf(" %s%-3d", star, i+1)))
		b.WriteString(hlStyle(symStyle, hl).Render(fmt.Sprintf(" %-10s", r.Symbol)))
		b.WriteString(hlStyle(scoreStyle(r), hl).Render(fmt.Sprintf(" %7s", formatScore(r))))
		note := ""
		if r.HasNote {
			note = r.Note
		}
		b.WriteString(hlStyle(noteStyle, hl).Render("  " + note))
		b.WriteString("\n")
	}
}

func renderDetail(b *strings.Builder, r feed.Row, width int) {
	label := " detail: " + r.Symbol + " "
	b.WriteString(tabActiveStyle.Render(label))
	lineLen := width - len(label) - 1
	if lineLen > 0 {
		b.WriteString(dimStyle.Render(" " + strings.Repeat("─", lineLen)))
	}
	b.WriteString("\n")

	keys := make([]string, 0, len(r.Raw))
	for k := range r.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(detailKeyStyle.Render(fmt.Sprintf("  %-14s", k)))
		b.WriteString(fmt.Sprintf(" %v", r.Raw[k]))
		b.WriteString("\n")
	}
}

func scoreStyle(r feed.Row) lipgloss.Style {
	if !r.HasScore {
		return dimStyle
	}
	if r.Score < 0 {
		return scoreLoStyle
	}
	return scoreHiStyle
}

func formatScore(r feed.Row) string {
	if !r.HasScore {
		return "—"
	}
	return fmt.Sprintf("%.1f", r.Score)
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	n := len(s)
	if n >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-n)
}

func main() {
	_ = godotenv.Load()

	cfgPath := "config.yaml"
	if v := os.Getenv("SIGBOARD_CONFIG"); v != "" {
		cfgPath = v
	}
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the dashboard; log to a per-day file.
	logPath := fmt.Sprintf("/tmp/sigboard-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLoggerTo(logFile, cfg.Logging.Level, cfg.Logging.Format)

	var kv watchlist.KV
	sqliteKV, err := watchlist.OpenSQLiteKV(cfg.Storage.WatchlistPath)
	if err != nil {
		logger.Warn("watchlist db unavailable, session-only", "path", cfg.Storage.WatchlistPath, "error", err)
		kv = watchlist.NewMemoryKV()
	} else {
		defer sqliteKV.Close()
		kv = sqliteKV
	}
	wl := watchlist.NewStore(kv, logger)

	loader := feed.NewLoader(cfg.Feeds.BaseURL, cfg.Feeds.FetchTimeout, logger)

	var arch *archive.Archive
	if cfg.Storage.DataDir != "" {
		arch = archive.New(cfg.Storage.DataDir)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(
		initialModel(cfg, loader, wl, arch, logger, ctx, cancel),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
