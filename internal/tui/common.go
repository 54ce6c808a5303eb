package tui

import (
	"fmt"
	"time"

	"github.com/careercraft/craft/internal/remind"
	"github.com/careercraft/craft/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewPomodoro
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Tasks", "Pomodoro", "Analytics", "Settings"}

// Notice is a user-facing notification bridged into the program as a
// message. The planner's Notifier feeds these through a buffered channel.
type Notice struct {
	Title string
	Body  string
}

// --- Messages ---

type tasksDataMsg struct {
	tasks []store.Task
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type noticeMsg Notice

type reminderMsg remind.Event

type storeChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatMinutes(min int) string {
	if min < 60 {
		return fmt.Sprintf("%dm", min)
	}
	return fmt.Sprintf("%dh %02dm", min/60, min%60)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
