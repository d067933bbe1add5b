// Package tui provides a Bubble Tea terminal user interface for sheet-export.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/handiism/sheet-exporter/internal/config"
	"github.com/handiism/sheet-exporter/internal/destination"
	"github.com/handiism/sheet-exporter/internal/export"
	"github.com/handiism/sheet-exporter/internal/model"
	"github.com/handiism/sheet-exporter/internal/naming"
	"github.com/handiism/sheet-exporter/internal/plan"
	"github.com/handiism/sheet-exporter/internal/status"
)

// Colors of the drawing-office palette.
const (
	colorAccent = lipgloss.Color("#5FA8D3")
	colorTitle  = lipgloss.Color("#E07A5F")
	colorOK     = lipgloss.Color("#81B29A")
	colorWarn   = lipgloss.Color("#F2CC8F")
	colorMuted  = lipgloss.Color("#8D99AE")
	colorGroup  = lipgloss.Color("#E9C46A")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	headStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	okStyle     = lipgloss.NewStyle().Foreground(colorOK)
	failStyle   = lipgloss.NewStyle().Foreground(colorTitle)
	warnStyle   = lipgloss.NewStyle().Foreground(colorWarn)
	activeStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	groupStyle  = lipgloss.NewStyle().Foreground(colorGroup).Bold(true)
	summaryBox  = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorOK).
			Padding(0, 2)
)

// State represents the current UI state.
type State int

const (
	StatePreview State = iota
	StateExporting
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   export.Level
}

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// feed collects orchestrator callbacks between ticks.
type feed struct {
	mu      sync.Mutex
	current int
	total   int
	message string
	logs    []LogEntry
}

func (f *feed) progress(current, total int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current, f.total, f.message = current, total, message
}

func (f *feed) notice(n export.Notice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, LogEntry{Message: n.Message, Level: n.Level})
	if len(f.logs) > maxLogs*4 {
		f.logs = f.logs[len(f.logs)-maxLogs*4:]
	}
}

func (f *feed) snapshot() (current, total int, message string, logs []LogEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.total, f.message, append([]LogEntry(nil), f.logs...)
}

func (f *feed) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current, f.total, f.message, f.logs = 0, 0, "", nil
}

// Options wires the TUI to a host model and the config store.
type Options struct {
	Provider model.Provider
	Store    config.Store
	Logger   *zap.Logger
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	spinner  spinner.Model
	progress progress.Model
	err      error

	provider     model.Provider
	store        config.Store
	logger       *zap.Logger
	board        *status.Board
	orchestrator *export.Orchestrator
	feed         *feed

	plan   *plan.Plan
	root   string
	report *export.Report

	// Export context
	ctx    context.Context
	cancel context.CancelFunc

	// Options
	verbose bool
	offset  int

	width  int
	height int
}

// NewModel creates a new TUI model and computes the first plan.
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	board := status.NewBoard(nil)
	f := &feed{}
	m := Model{
		state:    StatePreview,
		spinner:  sp,
		progress: prog,
		provider: opts.Provider,
		store:    opts.Store,
		logger:   opts.Logger,
		board:    board,
		feed:     f,
		ctx:      ctx,
		cancel:   cancel,
		height:   24,
	}
	m.orchestrator = export.New(opts.Provider, opts.Store,
		export.WithSink(status.Tee(board, status.LogSink(opts.Logger))),
		export.WithProgress(f.progress),
		export.WithNotices(f.notice),
		export.WithLogger(opts.Logger),
	)
	m.replan()
	return m
}

// replan recomputes the plan and resets the board to its preview rows.
func (m *Model) replan() {
	ctx := context.Background()
	settings := config.LoadSettings(m.store)
	m.root = destination.New(m.store, m.logger).Root()

	p, err := plan.New(m.provider, m.logger).Plan(ctx, plan.SelectionFromSettings(settings))
	if err != nil {
		m.state = StateError
		m.err = err
		return
	}
	project, err := m.provider.ProjectInfo(ctx)
	if err != nil {
		m.logger.Warn("project info unavailable", zap.Error(err))
	}
	namer := plan.Namer{Patterns: naming.NewEngine(m.store).Patterns(), Project: project}

	m.plan = p
	m.board.Reset(plan.Preview(p, namer))
	m.state = StatePreview
	m.err = nil
	m.report = nil
	m.offset = 0
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

type (
	// ExportDoneMsg carries the result of a finished run.
	ExportDoneMsg struct {
		Report *export.Report
		Err    error
	}

	// TickMsg polls the feed while a run is active.
	TickMsg struct{}
)

// Update applies key presses, ticks and run results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(20, min(80, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StatePreview {
				return m, tea.Quit
			}
			if m.state == StateExporting {
				m.cancel()
			}

		case "enter":
			if m.state == StatePreview && m.plan != nil {
				if len(m.plan.Exported()) == 0 {
					m.state = StateError
					m.err = errors.New("nothing to export: no collection has the include parameter set")
					return m, nil
				}
				m.state = StateExporting
				m.feed.reset()
				return m, tea.Batch(m.startExport(), m.spinner.Tick, m.tickProgress())
			}

		case "v":
			if m.state == StatePreview {
				m.verbose = !m.verbose
			}

		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}

		case "down", "j":
			if m.offset < len(m.board.Items())-1 {
				m.offset++
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError || m.state == StatePreview {
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.feed.reset()
				m.replan()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ExportDoneMsg:
		m.report = msg.Report
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errors.New("export canceled")
		default:
			m.state = StateComplete
		}
		cmds = append(cmds, m.progress.SetPercent(1))

	case TickMsg:
		if m.state == StateExporting {
			current, total, _, _ := m.feed.snapshot()
			var percent float64
			if total > 0 {
				percent = float64(current) / float64(total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg { return TickMsg{} })
}

// View renders the UI.
func (m Model) View() string {
	var body []string
	switch m.state {
	case StatePreview:
		body = m.previewSections()
	case StateExporting:
		body = m.exportingSections()
	case StateComplete:
		body = m.completeSections()
	case StateError:
		body = m.errorSections()
	}

	sections := append([]string{
		titleStyle.Render("Sheet Export"),
		mutedStyle.Render("Export drawing sheets to PDF and DWG"),
		"",
	}, body...)
	sections = append(sections, "", mutedStyle.Render(keyHelp[m.state]))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) previewSections() []string {
	exported := 0
	if m.plan != nil {
		exported = len(m.plan.Exported())
	}
	verbose := "[ ]"
	if m.verbose {
		verbose = "[x]"
	}
	return []string{
		headStyle.Render(fmt.Sprintf("%d collection(s) to export", exported)),
		"",
		m.renderRows(),
		fmt.Sprintf("%s verbose notices (v)", verbose),
		mutedStyle.Render("Destination: " + m.root),
	}
}

func (m Model) exportingSections() []string {
	current, total, message, _ := m.feed.snapshot()
	counts := m.board.Counts()
	line := fmt.Sprintf("collection %d/%d  ·  %d ok  ·  %d failed  ·  %d pending",
		current, total,
		counts[status.StateOK], counts[status.StateError],
		counts[status.StateIdle]+counts[status.StateProgress])

	return []string{
		m.spinner.View() + " " + headStyle.Render(message),
		"",
		m.progress.View(),
		mutedStyle.Render(line),
		"",
		m.renderRows(),
		m.renderLogs(),
	}
}

func (m Model) completeSections() []string {
	var ok, failed int
	var took time.Duration
	if m.report != nil {
		ok, failed = m.report.Succeeded(), len(m.report.Failures())
		took = m.report.Duration().Round(time.Millisecond)
	}
	summary := fmt.Sprintf("Export finished in %s\n%d file(s) written, %d failed", took, ok, failed)
	return []string{summaryBox.Render(summary), "", m.renderRows(), m.renderLogs()}
}

func (m Model) errorSections() []string {
	msg := "unknown error"
	if m.err != nil {
		msg = m.err.Error()
		if kind := export.Kind(m.err); kind != export.KindOther {
			msg += mutedStyle.Render(" [" + kind.String() + "]")
		}
	}
	return []string{failStyle.Render("Export stopped"), "  " + msg, "", m.renderLogs()}
}

// visibleRows is how many preview rows fit on screen.
func (m Model) visibleRows() int {
	return max(5, m.height-22)
}

func (m Model) renderRows() string {
	items := m.board.Items()
	if len(items) == 0 {
		return mutedStyle.Render("  (no sheets)")
	}

	start := min(m.offset, len(items)-1)
	end := min(start+m.visibleRows(), len(items))

	var lines []string
	group := ""
	for _, it := range items[start:end] {
		if it.Collection != group {
			group = it.Collection
			glyph := stateGlyph(m.board.CollectionStatus(group))
			lines = append(lines, groupStyle.Render("  "+glyph+" "+group))
		}
		row := fmt.Sprintf("    %s %-8s %-15s %s", stateGlyph(it.State), it.SheetNumber, it.Format, it.PreviewName)
		lines = append(lines, stateStyle(it.State).Render(row))
	}
	if end < len(items) {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("    … %d more", len(items)-end)))
	}
	return strings.Join(lines, "\n")
}

func stateGlyph(s status.State) string {
	switch s {
	case status.StateProgress:
		return "›"
	case status.StateOK:
		return "✓"
	case status.StateError:
		return "✗"
	default:
		return "•"
	}
}

func stateStyle(s status.State) lipgloss.Style {
	switch s {
	case status.StateProgress:
		return activeStyle
	case status.StateOK:
		return okStyle
	case status.StateError:
		return failStyle
	default:
		return mutedStyle
	}
}

// noticeLook maps a notice level to its glyph and style.
var noticeLook = map[export.Level]struct {
	glyph string
	style lipgloss.Style
}{
	export.LevelError:   {"✗", failStyle},
	export.LevelWarning: {"!", warnStyle},
	export.LevelSuccess: {"✓", okStyle},
	export.LevelInfo:    {"›", headStyle},
}

func (m Model) renderLogs() string {
	_, _, _, logs := m.feed.snapshot()

	var lines []string
	for _, entry := range logs {
		if entry.Level == export.LevelVerbose && !m.verbose {
			continue
		}
		look, ok := noticeLook[entry.Level]
		if !ok {
			look.glyph, look.style = "•", mutedStyle
		}
		lines = append(lines, look.style.Render(look.glyph+" "+entry.Message))
	}
	if len(lines) > maxLogs {
		lines = lines[len(lines)-maxLogs:]
	}
	return strings.Join(lines, "\n")
}

var keyHelp = map[State]string{
	StatePreview:   "enter export · r refresh · v verbose · ↑/↓ scroll · esc quit",
	StateExporting: "↑/↓ scroll · esc cancel",
	StateComplete:  "r new export · ↑/↓ scroll · q quit",
	StateError:     "r new export · ↑/↓ scroll · q quit",
}

// startExport runs the plan in background.
func (m *Model) startExport() tea.Cmd {
	ctx, p, o := m.ctx, m.plan, m.orchestrator
	return func() tea.Msg {
		report, err := o.Run(ctx, p)
		return ExportDoneMsg{Report: report, Err: err}
	}
}

// Run starts the TUI application.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
