// Package tracetui is a small bubbletea progress display wrapping
// nettrace.Read: the decode runs on a goroutine (bubbletea's Update loop
// must stay free to repaint) and pushes progress/completion messages back
// over a channel.
package tracetui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/nettrace/internal/nettrace"
	"github.com/mabhi256/nettrace/internal/nettrace/model"
)

var (
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC3333")).Bold(true)
	goodStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#228B22")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4682B4"))
)

type progressMsg struct {
	bytesRead  int64
	totalBytes int64
}

type doneMsg struct {
	trace *model.Trace
	err   error
}

// Model renders a single throttled progress bar while Read runs, then a
// one-line summary once it returns.
type Model struct {
	bar       progress.Model
	ch        chan tea.Msg
	bytesRead int64
	total     int64
	done      bool
	trace     *model.Trace
	err       error
}

func newModel(ch chan tea.Msg) Model {
	return Model{
		bar:   progress.New(progress.WithDefaultGradient()),
		ch:    ch,
		total: -1,
	}
}

func waitForMsg(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (m Model) Init() tea.Cmd {
	return waitForMsg(m.ch)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case progressMsg:
		m.bytesRead = msg.bytesRead
		m.total = msg.totalBytes
		return m, waitForMsg(m.ch)

	case doneMsg:
		m.done = true
		m.trace = msg.trace
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	if m.done {
		if m.err != nil {
			return criticalStyle.Render(fmt.Sprintf("decode failed: %v", m.err)) + "\n"
		}
		return goodStyle.Render(summaryLine(m.trace)) + "\n"
	}

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.bytesRead) / float64(m.total)
	}

	return infoStyle.Render("decoding nettrace stream...") + "\n" + m.bar.ViewAs(pct) + "\n"
}

func summaryLine(t *model.Trace) string {
	return fmt.Sprintf("✅ decoded %d events, %d distinct metadata, %d distinct stacks",
		len(t.Events), len(t.Metas), len(t.Stacks))
}

// Run decodes r with a live progress bar, returning the finished Trace the
// same way nettrace.Read would, plus whatever terminal rendering errors
// bubbletea itself produced. extra is forwarded to nettrace.Read alongside
// the progress wiring, so callers can still set e.g. WithDebugWriter.
func Run(r io.Reader, extra ...nettrace.Option) (*model.Trace, error) {
	ch := make(chan tea.Msg)

	go func() {
		opts := append([]nettrace.Option{nettrace.WithProgress(func(bytesRead, totalBytes int64) {
			ch <- progressMsg{bytesRead: bytesRead, totalBytes: totalBytes}
		})}, extra...)

		trace, err := nettrace.Read(r, opts...)
		ch <- doneMsg{trace: trace, err: err}
	}()

	program := tea.NewProgram(newModel(ch))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("tracetui: %w", err)
	}

	fm := final.(Model)
	if !fm.done {
		return nil, fmt.Errorf("tracetui: quit before decoding finished")
	}
	if fm.err != nil {
		return nil, fm.err
	}
	return fm.trace, nil
}
