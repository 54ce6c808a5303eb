package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/careercraft/craft/internal/pomodoro"
)

type pomodoroModel struct {
	timer  *pomodoro.Timer
	width  int
	height int
}

func newPomodoroModel(t *pomodoro.Timer) pomodoroModel {
	return pomodoroModel{timer: t}
}

func (p *pomodoroModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p pomodoroModel) update(msg tea.Msg) (pomodoroModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		done, entered, err := p.timer.Tick()
		if err != nil {
			return p, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		if done {
			label := entered.Label()
			return p, statusCmd(label + " started \a")
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Toggle):
			if err := p.timer.Toggle(); err != nil {
				return p, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
				}
			}
			if p.timer.Running() {
				return p, statusCmd("Pomodoro started")
			}
			return p, statusCmd("Pomodoro paused")

		case key.Matches(msg, keys.Reset):
			p.timer.ResetTo(p.timer.Mode())
			return p, statusCmd("Pomodoro reset")

		case key.Matches(msg, keys.Left):
			p.timer.ResetTo(prevMode(p.timer.Mode()))
			return p, nil

		case key.Matches(msg, keys.Right):
			p.timer.ResetTo(nextMode(p.timer.Mode()))
			return p, nil
		}
	}
	return p, nil
}

func nextMode(m pomodoro.Mode) pomodoro.Mode {
	switch m {
	case pomodoro.ModeFocus:
		return pomodoro.ModeShort
	case pomodoro.ModeShort:
		return pomodoro.ModeLong
	default:
		return pomodoro.ModeFocus
	}
}

func prevMode(m pomodoro.Mode) pomodoro.Mode {
	switch m {
	case pomodoro.ModeFocus:
		return pomodoro.ModeLong
	case pomodoro.ModeLong:
		return pomodoro.ModeShort
	default:
		return pomodoro.ModeFocus
	}
}

func (p pomodoroModel) view() string {
	w := p.width - 4

	title := titleStyle.Render("Pomodoro Timer")

	var clockStyle lipgloss.Style
	switch p.timer.Mode() {
	case pomodoro.ModeShort:
		clockStyle = successStyle
	case pomodoro.ModeLong:
		clockStyle = highlightStyle
	default:
		clockStyle = accentStyle
	}

	timeDisplay := clockStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(p.timer.Remaining())
	if !p.timer.Running() {
		timeDisplay = timerStyle.Width(w - 6).Render(p.timer.Remaining())
	}

	phaseLabel := clockStyle.Bold(true).Render(strings.ToUpper(p.timer.Mode().Label()))
	if !p.timer.Running() {
		phaseLabel += mutedStyle.Render("  (paused)")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		"",
		p.renderSessions(),
	)

	controls := mutedStyle.Render("space: start/pause  r: reset  ←/→: switch phase")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// renderSessions shows progress toward the next long break.
func (p pomodoroModel) renderSessions() string {
	snap := p.timer.Snapshot()
	inCycle := snap.Sessions % snap.UntilLong
	if inCycle == 0 && snap.Sessions > 0 && p.timer.Mode() == pomodoro.ModeLong {
		inCycle = snap.UntilLong
	}

	var parts []string
	for i := 0; i < snap.UntilLong; i++ {
		if i < inCycle {
			parts = append(parts, successStyle.Render("●"))
		} else if i == inCycle && p.timer.Mode() == pomodoro.ModeFocus && p.timer.Running() {
			parts = append(parts, accentStyle.Render("◐"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d focus sessions", snap.Sessions))
	return strings.Join(parts, " ") + counter
}
