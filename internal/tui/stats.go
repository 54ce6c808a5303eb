package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/careercraft/craft/internal/analytics"
	"github.com/careercraft/craft/internal/planner"
	"github.com/careercraft/craft/internal/store"
)

type statsMode int

const (
	statsDaily statsMode = iota
	statsWeekly
)

const (
	chartDays  = 7
	chartWeeks = 4
)

type statsModel struct {
	planner *planner.Planner
	store   *store.Store
	width   int
	height  int

	mode    statsMode
	buckets []analytics.Bucket
	stats   analytics.Stats

	chart barchart.Model
}

func newStatsModel(p *planner.Planner, s *store.Store) statsModel {
	return statsModel{
		planner: p,
		store:   s,
		chart:   barchart.New(60, 12),
	}
}

func (r *statsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type statsDataMsg struct {
	buckets []analytics.Bucket
	stats   analytics.Stats
}

func (r statsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := r.planner.Tasks()
		now := time.Now()

		var buckets []analytics.Bucket
		if r.mode == statsWeekly {
			buckets = analytics.GroupByWeek(tasks, now, chartWeeks)
		} else {
			buckets = analytics.GroupByDay(tasks, now, chartDays)
		}

		stats := analytics.Summarize(tasks, r.store.DailyGoal(), r.store.Streak(), now)
		return statsDataMsg{buckets: buckets, stats: stats}
	}
}

func (r statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		r.buckets = msg.buckets
		r.stats = msg.stats
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right), key.Matches(msg, keys.Tab):
			if r.mode == statsDaily {
				r.mode = statsWeekly
			} else {
				r.mode = statsDaily
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *statsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	plannedStyle := lipgloss.NewStyle().Foreground(colorPrimary)
	completedStyle := lipgloss.NewStyle().Foreground(colorSuccess)

	var bars []barchart.BarData
	for _, b := range r.buckets {
		bars = append(bars, barchart.BarData{
			Label: b.Label,
			Values: []barchart.BarValue{
				{Name: "Planned", Value: float64(b.Planned), Style: plannedStyle},
				{Name: "Completed", Value: float64(b.Completed), Style: completedStyle},
			},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r statsModel) view() string {
	w := r.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	weeklyTab := inactiveTabStyle.Render("Weekly")
	if r.mode == statsDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		weeklyTab = activeTabStyle.Render("Weekly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, weeklyTab)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", modeTabs,
	)

	legend := fmt.Sprintf("  %s Planned  %s Completed",
		lipgloss.NewStyle().Foreground(colorPrimary).Render("■"),
		lipgloss.NewStyle().Foreground(colorSuccess).Render("■"),
	)

	nav := mutedStyle.Render("  ←/→: switch mode")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", r.renderStats(w), "", nav,
		),
	)
}

func (r statsModel) renderStats(w int) string {
	s := r.stats

	var rows []string
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))
	rows = append(rows, fmt.Sprintf("  %-22s %s", "Completed",
		highlightStyle.Render(fmt.Sprintf("%d/%d (%d%%)", s.Completed, s.Total, s.CompletionRate))))
	rows = append(rows, fmt.Sprintf("  %-22s %s", "Completed today",
		highlightStyle.Render(fmt.Sprintf("%d/%d goal (%d%%)", s.CompletedToday, s.DailyGoal, s.GoalProgress))))
	rows = append(rows, fmt.Sprintf("  %-22s %s", "Time tracked",
		highlightStyle.Render(formatMinutes(s.MinutesSpent))))
	rows = append(rows, fmt.Sprintf("  %-22s %s", "High priority open",
		highlightStyle.Render(fmt.Sprintf("%d", s.HighPriorityOpen))))
	rows = append(rows, fmt.Sprintf("  %-22s %s", "Overdue",
		highlightStyle.Render(fmt.Sprintf("%d", s.OverdueOpen))))
	rows = append(rows, fmt.Sprintf("  %-22s %s", "Streak",
		highlightStyle.Render(fmt.Sprintf("%d days", s.Streak))))

	return strings.Join(rows, "\n")
}
