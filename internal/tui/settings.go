package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/careercraft/craft/internal/pomodoro"
	"github.com/careercraft/craft/internal/store"
)

type settingsModel struct {
	store  *store.Store
	timer  *pomodoro.Timer
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dailyGoal *string
	focusMin  *string
	shortMin  *string
	longMin   *string
	untilLong *string
}

func newSettingsModel(s *store.Store, t *pomodoro.Timer) settingsModel {
	dg, fm, sm, lm, ul := "", "", "", "", ""
	return settingsModel{
		store:     s,
		timer:     t,
		dailyGoal: &dg,
		focusMin:  &fm,
		shortMin:  &sm,
		longMin:   &lm,
		untilLong: &ul,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	snap := s.timer.Snapshot()
	*s.dailyGoal = strconv.Itoa(s.store.DailyGoal())
	*s.focusMin = strconv.Itoa(snap.FocusMin)
	*s.shortMin = strconv.Itoa(snap.ShortMin)
	*s.longMin = strconv.Itoa(snap.LongMin)
	*s.untilLong = strconv.Itoa(snap.UntilLong)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (tasks/day)").Value(s.dailyGoal),
		).Title("Goals"),
		huh.NewGroup(
			huh.NewInput().Title("Focus (min)").Value(s.focusMin),
			huh.NewInput().Title("Short break (min)").Value(s.shortMin),
			huh.NewInput().Title("Long break (min)").Value(s.longMin),
			huh.NewInput().Title("Sessions before long break").Value(s.untilLong),
		).Title("Pomodoro"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	if goal, err := strconv.Atoi(*s.dailyGoal); err == nil && goal >= 1 {
		s.store.SetDailyGoal(goal)
	}
	s.timer.Configure(
		atoiOr(*s.focusMin, store.DefaultFocusMin),
		atoiOr(*s.shortMin, store.DefaultShortMin),
		atoiOr(*s.longMin, store.DefaultLongMin),
		atoiOr(*s.untilLong, store.DefaultUntilLong),
	)
}

func atoiOr(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "pomo_focus_min", "pomo_short_min", "pomo_long_min":
		return v + " min"
	case "pomo_seconds":
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
		}
	case "daily_goal":
		return v + " tasks/day"
	case "pomo_running":
		if v == "1" {
			return "running"
		}
		return "paused"
	}
	return v
}
