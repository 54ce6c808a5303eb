package store

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Task is a single planner item. StartedAt is set exactly when Tracking is
// true, and CompletedAt exactly when Completed is true.
type Task struct {
	ID           string
	Title        string
	Notes        string
	Completed    bool
	CreatedAt    time.Time
	CompletedAt  *time.Time
	Priority     Priority
	Deadline     string // YYYY-MM-DD, empty when unset
	Group        string
	EstimatedMin int // 0 when unset
	SpentMin     int
	Tracking     bool
	StartedAt    *time.Time
	Recurrence   Recurrence
	Reminder     *time.Time
}

// Streak counts consecutive days the daily goal was reached. LastDate is
// YYYY-MM-DD or empty when no goal day has been recorded yet.
type Streak struct {
	Current  int
	LastDate string
}

// PomodoroSnapshot is the full persisted pomodoro state, configuration and
// live countdown both, so a restart resumes exactly where it left off.
type PomodoroSnapshot struct {
	FocusMin  int
	ShortMin  int
	LongMin   int
	UntilLong int
	Seconds   int
	Running   bool
	Mode      string
	Sessions  int
}

type Setting struct {
	Key   string
	Value string
}
