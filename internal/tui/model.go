// Package tui renders the console in the terminal with bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sentry-console/internal/console"
	"sentry-console/pkg/models"
)

// Dracula theme colors.
const (
	colorForeground = "#F8F8F2"
	colorCyan       = "#8BE9FD"
	colorGreen      = "#50FA7B"
	colorOrange     = "#FFB86C"
	colorPink       = "#FF79C6"
	colorPurple     = "#BD93F9"
	colorRed        = "#FF5555"
	colorYellow     = "#F1FA8C"
	colorComment    = "#6272A4"
)

const maxTimelineRows = 8

// Controller is the part of the console the view drives.
type Controller interface {
	View() console.View
	Changes() <-chan struct{}
	Command(ctx context.Context, cmd models.Command) error
	Next()
	Prev()
	Select(idx int) bool
	Dismiss(id string)
}

type styles struct {
	title, label, value, muted, running, paused, stopped, critical, high, selected, err, app lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorPink)).Bold(true),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		value:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorForeground)),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment)),
		running:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)).Bold(true),
		paused:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorOrange)).Bold(true),
		stopped:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorComment)).Bold(true),
		critical: lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)).Bold(true),
		high:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorOrange)),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color(colorCyan)).Bold(true),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		app: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorPurple)),
	}
}

type viewMsg console.View

type commandDoneMsg struct {
	cmd models.Command
	err error
}

type refreshMsg struct{}

// Model is the bubbletea model for the watch screen.
type Model struct {
	ctx    context.Context
	ctrl   Controller
	keys   keyMap
	help   help.Model
	styles styles

	view    console.View
	cursor  int // selected alert
	status  string
	lastErr error
}

func New(ctx context.Context, ctrl Controller) *Model {
	return &Model{
		ctx:    ctx,
		ctrl:   ctrl,
		keys:   defaultKeys(),
		help:   help.New(),
		styles: newStyles(),
		view:   ctrl.View(),
	}
}

// Run blocks until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller) error {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), refresh())
}

// waitForChange delivers the next view once the console reports a change.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return tea.QuitMsg{}
		case <-m.ctrl.Changes():
			return viewMsg(m.ctrl.View())
		}
	}
}

// refresh redraws at least once a second so the countdown keeps moving.
func refresh() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m *Model) command(cmd models.Command) tea.Cmd {
	return func() tea.Msg {
		return commandDoneMsg{cmd: cmd, err: m.ctrl.Command(m.ctx, cmd)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.setView(console.View(msg))
		return m, m.waitForChange()
	case refreshMsg:
		m.setView(m.ctrl.View())
		return m, refresh()
	case commandDoneMsg:
		m.lastErr = msg.err
		if msg.err == nil {
			m.status = fmt.Sprintf("%s sent", msg.cmd)
		} else {
			m.status = ""
		}
		m.setView(m.ctrl.View())
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) setView(v console.View) {
	m.view = v
	if n := len(v.Dashboard.Alerts); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Play):
		return m, m.command(models.CommandPlay)
	case key.Matches(msg, m.keys.Pause):
		return m, m.command(models.CommandPause)
	case key.Matches(msg, m.keys.Stop):
		return m, m.command(models.CommandStop)
	case key.Matches(msg, m.keys.Restart):
		return m, m.command(models.CommandRestart)
	case key.Matches(msg, m.keys.Next):
		m.ctrl.Next()
	case key.Matches(msg, m.keys.Prev):
		m.ctrl.Prev()
	case key.Matches(msg, m.keys.Select):
		idx := int(msg.String()[0] - '1')
		if !m.ctrl.Select(idx) {
			m.status = fmt.Sprintf("no camera %d", idx+1)
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view.Dashboard.Alerts)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Dismiss):
		if alerts := m.view.Dashboard.Alerts; m.cursor < len(alerts) {
			m.ctrl.Dismiss(alerts[m.cursor].ID)
			m.status = "alert dismissed"
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	default:
		return m, nil
	}
	m.setView(m.ctrl.View())
	return m, nil
}

func (m *Model) severityStyle(sev models.Severity) lipgloss.Style {
	switch sev {
	case models.SeverityCritical:
		return m.styles.critical
	case models.SeverityHigh:
		return m.styles.high
	default:
		return m.styles.value
	}
}

func (m *Model) View() string {
	var b strings.Builder
	v := m.view
	st := m.styles

	b.WriteString(st.title.Render("Sentry Console") + "\n\n")
	b.WriteString(m.renderLive(v) + "\n\n")
	b.WriteString(m.renderCameras(v) + "\n\n")
	b.WriteString(m.renderAlerts(v) + "\n\n")
	b.WriteString(m.renderTimeline(v) + "\n\n")

	if m.lastErr != nil {
		b.WriteString(st.err.Render(fmt.Sprintf("Error: %v", m.lastErr)) + "\n")
	} else if m.status != "" {
		b.WriteString(st.muted.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))

	return st.app.Render(b.String())
}

func (m *Model) renderLive(v console.View) string {
	st := m.styles
	state := st.stateLabel(v.State)
	line := st.label.Render("State: ") + state
	if v.Pending != "" {
		line += st.muted.Render(fmt.Sprintf(" (pending %s)", v.Pending))
	}
	if v.Live != nil && v.Live.FPS != nil {
		line += st.label.Render("  FPS: ") + st.value.Render(fmt.Sprintf("%.1f", *v.Live.FPS))
	}

	feed := "no stream"
	switch {
	case v.Streaming && v.Ready:
		feed = fmt.Sprintf("streaming %s (%d frames)", v.Stream.StreamID, v.Stream.Frames)
	case v.Streaming:
		feed = "connecting..."
	}
	line += st.label.Render("  Feed: ") + st.value.Render(feed)

	timer := fmt.Sprintf("next in %ds", v.Timer.TimeRemaining)
	if v.Timer.Extended() {
		timer += fmt.Sprintf(" (extended +%ds)", v.Timer.ExtendedTime)
	}
	return line + "\n" + st.label.Render("Rotation: ") + st.value.Render(timer)
}

func (s styles) stateLabel(state models.CameraState) string {
	switch state {
	case models.StateRunning:
		return s.running.Render("LIVE")
	case models.StatePaused:
		return s.paused.Render("PAUSED")
	default:
		return s.stopped.Render("STOPPED")
	}
}

func (m *Model) renderCameras(v console.View) string {
	st := m.styles
	rows := []string{st.label.Render("Cameras")}
	if len(v.Active) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, st.muted.Render("  none"))...)
	}
	for i, c := range v.Active {
		marker := "  "
		nameStyle := st.value
		if v.Current != nil && v.Current.ID == c.ID {
			marker = "▶ "
			nameStyle = st.selected
		}
		overlay := fmt.Sprintf("%s · %d people", c.CurrentEvent, c.PersonCount)
		rows = append(rows, fmt.Sprintf("%s%d %s %s %s",
			marker, i+1,
			nameStyle.Render(c.Name),
			st.muted.Render("["+string(c.Status)+"]"),
			m.severityStyle(c.Severity).Render(overlay),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderAlerts(v console.View) string {
	st := m.styles
	alerts := v.Dashboard.Alerts
	rows := []string{st.label.Render(fmt.Sprintf("Alerts (%d)", len(alerts)))}
	if len(alerts) == 0 {
		rows = append(rows, st.muted.Render("  all clear"))
	}
	for i, a := range alerts {
		cursor := "  "
		if i == m.cursor {
			cursor = st.selected.Render("> ")
		}
		rows = append(rows, cursor+m.severityStyle(a.Severity).Render(
			fmt.Sprintf("%-8s %s %s @%s", a.Severity, a.Timestamp, a.Message, a.CameraID)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderTimeline(v console.View) string {
	st := m.styles
	tl := v.Dashboard.Timeline
	s := v.Dashboard.Summary
	rows := []string{st.label.Render("Timeline") + st.muted.Render(fmt.Sprintf(
		"  people %d · threats %d · events today %d", s.PeopleTracked, s.ActiveThreats, s.EventsToday))}
	if !v.Dashboard.Healthy && !v.Dashboard.UpdatedAt.IsZero() {
		rows = append(rows, st.err.Render("  backend unreachable, showing last data"))
	}
	if len(tl) > maxTimelineRows {
		tl = tl[len(tl)-maxTimelineRows:]
	}
	for _, e := range tl {
		rows = append(rows, "  "+m.severityStyle(e.Severity).Render(
			fmt.Sprintf("%s %-8s %s", e.Timestamp, e.Severity, e.Description)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
