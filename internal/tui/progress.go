// Package tui shows live per-mode progress for a batch run.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modeStatus int

const (
	statusPending modeStatus = iota
	statusRunning
	statusDone
	statusFailed
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// ModeStarted reports that a worker picked up a mode.
type ModeStarted struct{ Title string }

// ModeFinished reports a mode's outcome.
type ModeFinished struct {
	Title string
	Err   error
}

// BatchDone reports that every worker finished.
type BatchDone struct {
	RunDir string
	Err    error
}

// Model renders one status line per configured mode.
type Model struct {
	titles []string
	status map[string]modeStatus
	errs   map[string]string
	runDir string
	err    error
	done   bool
}

func NewModel(titles []string) Model {
	status := make(map[string]modeStatus, len(titles))
	for _, t := range titles {
		status[t] = statusPending
	}
	return Model{
		titles: titles,
		status: status,
		errs:   make(map[string]string),
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ModeStarted:
		m.status[msg.Title] = statusRunning
	case ModeFinished:
		if msg.Err != nil {
			m.status[msg.Title] = statusFailed
			m.errs[msg.Title] = msg.Err.Error()
		} else {
			m.status[msg.Title] = statusDone
		}
	case BatchDone:
		m.runDir = msg.RunDir
		m.err = msg.Err
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	s := titleStyle.Render("brusselator batch") + "\n\n"
	for _, t := range m.titles {
		switch m.status[t] {
		case statusRunning:
			s += runningStyle.Render("~ "+t) + "\n"
		case statusDone:
			s += doneStyle.Render("+ "+t) + "\n"
		case statusFailed:
			s += failedStyle.Render("x "+t) + "\n"
			s += failedStyle.Render("    "+m.errs[t]) + "\n"
		default:
			s += pendingStyle.Render(". "+t) + "\n"
		}
	}
	if m.done {
		if m.err != nil {
			s += "\n" + failedStyle.Render(fmt.Sprintf("batch failed: %v", m.err)) + "\n"
		} else {
			s += "\n" + doneStyle.Render("results: "+m.runDir) + "\n"
		}
	}
	return s
}

// Reporter forwards batch events into a running program. Safe for
// concurrent workers: Program.Send serializes messages.
type Reporter struct {
	Program *tea.Program
}

func (r Reporter) ModeStarted(title string) {
	r.Program.Send(ModeStarted{Title: title})
}

func (r Reporter) ModeFinished(title string, err error) {
	r.Program.Send(ModeFinished{Title: title, Err: err})
}
