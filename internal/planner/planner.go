// Package planner owns the task lifecycle: creation, edits, completion
// toggling, deletion, per-task time tracking, recurrence spawning, and
// goal/streak accounting. Every operation loads the persisted snapshot,
// mutates it in memory, and writes it back whole.
package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careercraft/craft/internal/store"
)

var (
	ErrEmptyTitle = errors.New("planner: task title is required")
	ErrNotFound   = errors.New("planner: task not found")
)

// Clock supplies the current time so tests can substitute a fixed one.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Notifier receives user-facing notices (task added, completed, goal
// reached). The TUI surfaces them on its status line.
type Notifier interface {
	Notify(title, body string)
}

// NotifyFunc adapts a function to the Notifier interface.
type NotifyFunc func(title, body string)

func (f NotifyFunc) Notify(title, body string) { f(title, body) }

// Scheduler arms one-shot reminders; satisfied by *remind.Scheduler.
type Scheduler interface {
	Schedule(taskID, title string, at time.Time)
}

type Planner struct {
	store     *store.Store
	clock     Clock
	notify    Notifier
	reminders Scheduler
}

// New builds a Planner. clock, notify, and reminders may be nil, in which
// case the system clock and no-op implementations are used.
func New(s *store.Store, clock Clock, notify Notifier, reminders Scheduler) *Planner {
	if clock == nil {
		clock = systemClock{}
	}
	if notify == nil {
		notify = NotifyFunc(func(string, string) {})
	}
	if reminders == nil {
		reminders = noopScheduler{}
	}
	return &Planner{store: s, clock: clock, notify: notify, reminders: reminders}
}

type noopScheduler struct{}

func (noopScheduler) Schedule(string, string, time.Time) {}

// Draft carries the user-supplied fields for a new task.
type Draft struct {
	Title        string
	Notes        string
	Priority     store.Priority
	Deadline     string
	Group        string
	EstimatedMin int
	Recurrence   store.Recurrence
	Reminder     *time.Time
}

// TaskUpdate is a structured partial update. Nil fields are left untouched.
// Completion state cannot be changed here; Toggle is the only path that
// touches Completed/CompletedAt, which keeps the two in lockstep.
type TaskUpdate struct {
	Title         *string
	Notes         *string
	Priority      *store.Priority
	Deadline      *string
	Group         *string
	EstimatedMin  *int
	Recurrence    *store.Recurrence
	Reminder      *time.Time
	ClearReminder bool
}

// Tasks returns the current snapshot.
func (p *Planner) Tasks() ([]store.Task, error) {
	return p.store.LoadTasks()
}

// Add creates a task from draft and persists it. An empty (or
// whitespace-only) title is rejected.
func (p *Planner) Add(d Draft) (*store.Task, error) {
	tasks, err := p.store.LoadTasks()
	if err != nil {
		return nil, err
	}

	t, err := p.newTask(d)
	if err != nil {
		return nil, err
	}
	tasks = append(tasks, t)

	if err := p.store.SaveTasks(tasks); err != nil {
		return nil, err
	}
	p.announceAdded(t)
	return &t, nil
}

func (p *Planner) newTask(d Draft) (store.Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return store.Task{}, ErrEmptyTitle
	}
	if !d.Priority.Valid() {
		d.Priority = store.PriorityLow
	}
	if !d.Recurrence.Valid() {
		d.Recurrence = store.RecurrenceNone
	}
	group := strings.TrimSpace(d.Group)
	if group == "" {
		group = "General"
	}
	estimated := d.EstimatedMin
	if estimated < 0 {
		estimated = 0
	}

	return store.Task{
		ID:           uuid.NewString(),
		Title:        title,
		Notes:        strings.TrimSpace(d.Notes),
		CreatedAt:    p.clock.Now(),
		Priority:     d.Priority,
		Deadline:     d.Deadline,
		Group:        group,
		EstimatedMin: estimated,
		Recurrence:   d.Recurrence,
		Reminder:     d.Reminder,
	}, nil
}

func (p *Planner) announceAdded(t store.Task) {
	p.notify.Notify("Task added", fmt.Sprintf("%q has been added to your list", t.Title))
	if t.Reminder != nil {
		p.reminders.Schedule(t.ID, t.Title, *t.Reminder)
	}
}

// Update merges u into the task with the given id. A changed reminder is
// re-armed under the task's current title.
func (p *Planner) Update(id string, u TaskUpdate) error {
	tasks, err := p.store.LoadTasks()
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return ErrNotFound
	}

	t := &tasks[i]
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		t.Title = title
	}
	if u.Notes != nil {
		t.Notes = strings.TrimSpace(*u.Notes)
	}
	if u.Priority != nil && u.Priority.Valid() {
		t.Priority = *u.Priority
	}
	if u.Deadline != nil {
		t.Deadline = *u.Deadline
	}
	if u.Group != nil {
		group := strings.TrimSpace(*u.Group)
		if group == "" {
			group = "General"
		}
		t.Group = group
	}
	if u.EstimatedMin != nil && *u.EstimatedMin >= 0 {
		t.EstimatedMin = *u.EstimatedMin
	}
	if u.Recurrence != nil && u.Recurrence.Valid() {
		t.Recurrence = *u.Recurrence
	}
	if u.ClearReminder {
		t.Reminder = nil
	} else if u.Reminder != nil {
		t.Reminder = u.Reminder
	}

	if err := p.store.SaveTasks(tasks); err != nil {
		return err
	}
	if !u.ClearReminder && u.Reminder != nil {
		p.reminders.Schedule(t.ID, t.Title, *u.Reminder)
	}
	return nil
}

// Toggle flips a task's completion state. Completing a task stops its
// timer, checks the daily goal, and spawns the next occurrence of a
// recurring task. Un-completing only clears the completion timestamp.
func (p *Planner) Toggle(id string) error {
	tasks, err := p.store.LoadTasks()
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return ErrNotFound
	}

	now := p.clock.Now()
	t := &tasks[i]

	if t.Completed {
		t.Completed = false
		t.CompletedAt = nil
		return p.store.SaveTasks(tasks)
	}

	foldTimer(t, now)
	t.Completed = true
	completedAt := now
	t.CompletedAt = &completedAt

	p.notify.Notify("Task completed", fmt.Sprintf("Great job completing %q!", t.Title))

	completedToday := 0
	for _, other := range tasks {
		if other.Completed && other.CompletedAt != nil && sameDay(*other.CompletedAt, now) {
			completedToday++
		}
	}
	goal := p.store.DailyGoal()
	if completedToday >= goal {
		p.notify.Notify("Daily goal achieved", fmt.Sprintf("You've completed %d tasks today!", completedToday))
		p.bumpStreak(now)
	}

	if t.Recurrence != store.RecurrenceNone {
		tasks = p.spawnRecurring(tasks, *t, now)
	}

	return p.store.SaveTasks(tasks)
}

// spawnRecurring appends the next occurrence of src unless a task with the
// same title, recurrence, and computed deadline already exists.
func (p *Planner) spawnRecurring(tasks []store.Task, src store.Task, now time.Time) []store.Task {
	nextDate := nextOccurrence(src.Recurrence, now)
	if nextDate == "" {
		return tasks
	}
	for _, t := range tasks {
		if t.Title == src.Title && t.Recurrence == src.Recurrence && t.Deadline == nextDate {
			return tasks
		}
	}

	next, err := p.newTask(Draft{
		Title:        src.Title,
		Notes:        src.Notes,
		Priority:     src.Priority,
		Deadline:     nextDate,
		Group:        src.Group,
		EstimatedMin: src.EstimatedMin,
		Recurrence:   src.Recurrence,
		Reminder:     src.Reminder,
	})
	if err != nil {
		return tasks
	}
	tasks = append(tasks, next)
	p.announceAdded(next)
	return tasks
}

func nextOccurrence(r store.Recurrence, now time.Time) string {
	switch r {
	case store.RecurrenceDaily:
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	case store.RecurrenceWeekly:
		return now.AddDate(0, 0, 7).Format("2006-01-02")
	case store.RecurrenceMonthly:
		return now.AddDate(0, 1, 0).Format("2006-01-02")
	}
	return ""
}

// Remove deletes a task, stopping its timer first so tracked minutes are
// not lost with it.
func (p *Planner) Remove(id string) error {
	tasks, err := p.store.LoadTasks()
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return ErrNotFound
	}

	title := tasks[i].Title
	foldTimer(&tasks[i], p.clock.Now())
	tasks = append(tasks[:i], tasks[i+1:]...)

	if err := p.store.SaveTasks(tasks); err != nil {
		return err
	}
	p.notify.Notify("Task removed", fmt.Sprintf("%q has been removed", title))
	return nil
}

// ToggleTimer starts or stops time tracking on a task. Starting one task
// force-stops whichever other task was tracking, so at most one task tracks
// at a time.
func (p *Planner) ToggleTimer(id string) error {
	tasks, err := p.store.LoadTasks()
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return ErrNotFound
	}

	now := p.clock.Now()
	if tasks[i].Tracking {
		foldTimer(&tasks[i], now)
	} else {
		for j := range tasks {
			if j != i {
				foldTimer(&tasks[j], now)
			}
		}
		start := now
		tasks[i].Tracking = true
		tasks[i].StartedAt = &start
	}

	return p.store.SaveTasks(tasks)
}

// Elapsed reports a task's total minutes including the live tracking span,
// computed lazily; nothing is persisted until the timer stops.
func (p *Planner) Elapsed(t store.Task) int {
	return ElapsedAt(t, p.clock.Now())
}

// ElapsedAt is Elapsed against an explicit instant.
func ElapsedAt(t store.Task, now time.Time) int {
	total := t.SpentMin
	if t.Tracking && t.StartedAt != nil {
		total += int(now.Sub(*t.StartedAt) / time.Minute)
	}
	return total
}

// foldTimer folds the elapsed whole minutes into SpentMin and clears the
// tracking state. No-op for a task that is not tracking.
func foldTimer(t *store.Task, now time.Time) {
	if !t.Tracking {
		return
	}
	if t.StartedAt != nil {
		elapsed := int(now.Sub(*t.StartedAt) / time.Minute)
		if elapsed > 0 {
			t.SpentMin += elapsed
		}
	}
	t.Tracking = false
	t.StartedAt = nil
}

// bumpStreak records a goal-reaching day: at most one increment per
// calendar day, continued from yesterday or restarted at 1 after a gap.
func (p *Planner) bumpStreak(now time.Time) {
	st := p.store.Streak()
	today := now.Format("2006-01-02")
	if st.LastDate == today {
		return
	}
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	if st.LastDate == yesterday {
		st.Current++
	} else {
		st.Current = 1
	}
	st.LastDate = today
	p.store.SetStreak(st)
}

// ArmReminders schedules every future reminder from the snapshot. Called
// once at startup; pending reminders do not survive a restart otherwise.
func (p *Planner) ArmReminders() error {
	tasks, err := p.store.LoadTasks()
	if err != nil {
		return err
	}
	now := p.clock.Now()
	for _, t := range tasks {
		if t.Reminder != nil && t.Reminder.After(now) {
			p.reminders.Schedule(t.ID, t.Title, *t.Reminder)
		}
	}
	return nil
}

// AnnounceDue fires a summary notice when open tasks are overdue or due
// today. Silent when there is nothing to report.
func (p *Planner) AnnounceDue() error {
	tasks, err := p.store.LoadTasks()
	if err != nil {
		return err
	}
	today := p.clock.Now().Format("2006-01-02")

	overdue, dueToday := 0, 0
	for _, t := range tasks {
		if t.Completed || t.Deadline == "" {
			continue
		}
		switch {
		case t.Deadline < today:
			overdue++
		case t.Deadline == today:
			dueToday++
		}
	}
	if overdue == 0 && dueToday == 0 {
		return nil
	}

	var parts []string
	if overdue > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue %s", overdue, plural(overdue, "task")))
	}
	if dueToday > 0 {
		parts = append(parts, fmt.Sprintf("%d %s due today", dueToday, plural(dueToday, "task")))
	}
	p.notify.Notify("Planner summary", strings.Join(parts, ", "))
	return nil
}

func indexOf(tasks []store.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
