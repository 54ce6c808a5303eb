package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/careercraft/craft/internal/planner"
	"github.com/careercraft/craft/internal/pomodoro"
	"github.com/careercraft/craft/internal/remind"
	"github.com/careercraft/craft/internal/store"
	"github.com/careercraft/craft/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	scheduler := remind.NewScheduler(remind.DefaultBuffer)
	scheduler.Start()
	defer scheduler.Stop()

	notices := make(chan tui.Notice, 16)
	notifier := planner.NotifyFunc(func(title, body string) {
		select {
		case notices <- tui.Notice{Title: title, Body: body}:
		default:
		}
	})

	pl := planner.New(s, nil, notifier, scheduler)
	if err := pl.ArmReminders(); err != nil {
		fmt.Fprintf(os.Stderr, "error arming reminders: %v\n", err)
	}
	pl.AnnounceDue()

	timer := pomodoro.Load(s)

	app := tui.NewApp(s, pl, timer, scheduler.C(), notices)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
