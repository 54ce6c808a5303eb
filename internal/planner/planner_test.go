package planner

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/careercraft/craft/internal/store"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type recorder struct {
	notices []string // "title: body"
}

func (r *recorder) Notify(title, body string) {
	r.notices = append(r.notices, title+": "+body)
}

func (r *recorder) has(prefix string) bool {
	for _, n := range r.notices {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func (r *recorder) count(prefix string) int {
	c := 0
	for _, n := range r.notices {
		if strings.HasPrefix(n, prefix) {
			c++
		}
	}
	return c
}

type schedCall struct {
	taskID string
	title  string
	at     time.Time
}

type fakeSched struct {
	calls []schedCall
}

func (f *fakeSched) Schedule(taskID, title string, at time.Time) {
	f.calls = append(f.calls, schedCall{taskID, title, at})
}

func newTestPlanner(t *testing.T) (*Planner, *store.Store, *fakeClock, *recorder, *fakeSched) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	notes := &recorder{}
	sched := &fakeSched{}
	return New(s, clock, notes, sched), s, clock, notes, sched
}

func mustAdd(t *testing.T, p *Planner, d Draft) *store.Task {
	t.Helper()
	task, err := p.Add(d)
	if err != nil {
		t.Fatalf("add %q: %v", d.Title, err)
	}
	return task
}

func mustTasks(t *testing.T, p *Planner) []store.Task {
	t.Helper()
	tasks, err := p.Tasks()
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	return tasks
}

func findTask(t *testing.T, p *Planner, id string) store.Task {
	t.Helper()
	for _, task := range mustTasks(t, p) {
		if task.ID == id {
			return task
		}
	}
	t.Fatalf("task %s not found", id)
	return store.Task{}
}

// ============================================================
// Add
// ============================================================

func TestAddRejectsEmptyTitle(t *testing.T) {
	p, _, _, _, _ := newTestPlanner(t)

	for _, title := range []string{"", "   ", "\t"} {
		if _, err := p.Add(Draft{Title: title}); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("Add(%q): expected ErrEmptyTitle, got %v", title, err)
		}
	}
	if len(mustTasks(t, p)) != 0 {
		t.Error("rejected adds must not persist anything")
	}
}

func TestAddDefaults(t *testing.T) {
	p, _, clock, notes, _ := newTestPlanner(t)

	task := mustAdd(t, p, Draft{Title: "  Ship release  "})
	if task.ID == "" {
		t.Error("expected generated id")
	}
	if task.Title != "Ship release" {
		t.Errorf("expected trimmed title, got %q", task.Title)
	}
	if task.Priority != store.PriorityLow || task.Group != "General" || task.Recurrence != store.RecurrenceNone {
		t.Errorf("unexpected defaults: %+v", task)
	}
	if !task.CreatedAt.Equal(clock.now) {
		t.Errorf("expected CreatedAt from clock, got %v", task.CreatedAt)
	}
	if task.Completed || task.CompletedAt != nil || task.Tracking || task.SpentMin != 0 {
		t.Errorf("expected zeroed lifecycle state: %+v", task)
	}
	if !notes.has("Task added") {
		t.Error("expected add notice")
	}
}

func TestAddSchedulesReminder(t *testing.T) {
	p, _, clock, _, sched := newTestPlanner(t)

	at := clock.now.Add(2 * time.Hour)
	task := mustAdd(t, p, Draft{Title: "Call dentist", Reminder: &at})

	if len(sched.calls) != 1 {
		t.Fatalf("expected 1 schedule call, got %d", len(sched.calls))
	}
	call := sched.calls[0]
	if call.taskID != task.ID || call.title != "Call dentist" || !call.at.Equal(at) {
		t.Errorf("unexpected schedule call: %+v", call)
	}
}

// ============================================================
// Update
// ============================================================

func TestUpdateMergesFields(t *testing.T) {
	p, _, _, _, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{Title: "Draft post", Notes: "outline"})

	title := "Publish post"
	prio := store.PriorityHigh
	deadline := "2026-03-15"
	est := 30
	if err := p.Update(task.ID, TaskUpdate{
		Title:        &title,
		Priority:     &prio,
		Deadline:     &deadline,
		EstimatedMin: &est,
	}); err != nil {
		t.Fatal(err)
	}

	got := findTask(t, p, task.ID)
	if got.Title != title || got.Priority != prio || got.Deadline != deadline || got.EstimatedMin != est {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Notes != "outline" {
		t.Errorf("untouched field changed: %q", got.Notes)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	p, _, _, _, _ := newTestPlanner(t)
	title := "x"
	if err := p.Update("nope", TaskUpdate{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	p, _, _, _, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{Title: "Keep me"})

	empty := "  "
	if err := p.Update(task.ID, TaskUpdate{Title: &empty}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
	if got := findTask(t, p, task.ID); got.Title != "Keep me" {
		t.Errorf("title changed despite rejection: %q", got.Title)
	}
}

func TestUpdateReminderReregistersUnderCurrentTitle(t *testing.T) {
	p, _, clock, _, sched := newTestPlanner(t)
	task := mustAdd(t, p, Draft{Title: "Old name"})

	newTitle := "New name"
	at := clock.now.Add(time.Hour)
	if err := p.Update(task.ID, TaskUpdate{Title: &newTitle, Reminder: &at}); err != nil {
		t.Fatal(err)
	}

	if len(sched.calls) != 1 {
		t.Fatalf("expected 1 schedule call, got %d", len(sched.calls))
	}
	if sched.calls[0].title != "New name" {
		t.Errorf("reminder registered under stale title %q", sched.calls[0].title)
	}
}

func TestUpdateClearReminder(t *testing.T) {
	p, _, clock, _, sched := newTestPlanner(t)
	at := clock.now.Add(time.Hour)
	task := mustAdd(t, p, Draft{Title: "Meeting", Reminder: &at})
	sched.calls = nil

	if err := p.Update(task.ID, TaskUpdate{ClearReminder: true}); err != nil {
		t.Fatal(err)
	}
	if got := findTask(t, p, task.ID); got.Reminder != nil {
		t.Errorf("reminder not cleared: %+v", got.Reminder)
	}
	if len(sched.calls) != 0 {
		t.Errorf("clear must not schedule anything, got %+v", sched.calls)
	}
}

// ============================================================
// Toggle and completion
// ============================================================

func TestToggleCompletes(t *testing.T) {
	p, _, clock, notes, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{Title: "Review PR"})

	if err := p.Toggle(task.ID); err != nil {
		t.Fatal(err)
	}

	got := findTask(t, p, task.ID)
	if !got.Completed || got.CompletedAt == nil || !got.CompletedAt.Equal(clock.now) {
		t.Errorf("unexpected completion state: %+v", got)
	}
	if !notes.has("Task completed") {
		t.Error("expected completion notice")
	}
}

func TestToggleTwiceIsIdentity(t *testing.T) {
	p, _, _, _, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{Title: "Flip flop"})

	if err := p.Toggle(task.ID); err != nil {
		t.Fatal(err)
	}
	if err := p.Toggle(task.ID); err != nil {
		t.Fatal(err)
	}

	got := findTask(t, p, task.ID)
	if got.Completed || got.CompletedAt != nil {
		t.Errorf("expected original state restored: %+v", got)
	}
	if got.Tracking {
		t.Error("un-completing must not resume tracking")
	}
}

func TestToggleStopsTrackingAndFoldsMinutes(t *testing.T) {
	p, _, clock, _, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{Title: "Deep work"})

	if err := p.ToggleTimer(task.ID); err != nil {
		t.Fatal(err)
	}
	clock.advance(5*time.Minute + 30*time.Second)

	if err := p.Toggle(task.ID); err != nil {
		t.Fatal(err)
	}

	got := findTask(t, p, task.ID)
	if got.Tracking || got.StartedAt != nil {
		t.Errorf("tracking not stopped: %+v", got)
	}
	if got.SpentMin != 5 {
		t.Errorf("expected 5 folded minutes (floor), got %d", got.SpentMin)
	}
}

func TestDailyGoalNoticeAndStreak(t *testing.T) {
	p, s, _, notes, _ := newTestPlanner(t)
	s.SetDailyGoal(2)

	a := mustAdd(t, p, Draft{Title: "First"})
	b := mustAdd(t, p, Draft{Title: "Second"})

	if err := p.Toggle(a.ID); err != nil {
		t.Fatal(err)
	}
	if notes.has("Daily goal achieved") {
		t.Fatal("goal notice fired below goal")
	}

	if err := p.Toggle(b.ID); err != nil {
		t.Fatal(err)
	}
	if !notes.has("Daily goal achieved") {
		t.Fatal("expected goal notice at goal")
	}
	if st := s.Streak(); st.Current != 1 {
		t.Errorf("expected streak 1, got %+v", st)
	}
}

func TestStreakDayRules(t *testing.T) {
	p, s, clock, _, _ := newTestPlanner(t)
	s.SetDailyGoal(1)

	completeOne := func(title string) {
		t.Helper()
		task := mustAdd(t, p, Draft{Title: title})
		if err := p.Toggle(task.ID); err != nil {
			t.Fatal(err)
		}
	}

	completeOne("day one")
	if st := s.Streak(); st.Current != 1 {
		t.Fatalf("day 1: expected streak 1, got %d", st.Current)
	}

	// Second goal hit on the same day must not double-count.
	completeOne("day one again")
	if st := s.Streak(); st.Current != 1 {
		t.Fatalf("same day: expected streak still 1, got %d", st.Current)
	}

	clock.advance(24 * time.Hour)
	completeOne("day two")
	if st := s.Streak(); st.Current != 2 {
		t.Fatalf("next day: expected streak 2, got %d", st.Current)
	}

	clock.advance(3 * 24 * time.Hour)
	completeOne("after gap")
	if st := s.Streak(); st.Current != 1 {
		t.Fatalf("after gap: expected streak reset to 1, got %d", st.Current)
	}
}

// ============================================================
// Recurrence
// ============================================================

func TestRecurrenceSpawnsNextOccurrence(t *testing.T) {
	p, _, clock, _, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{
		Title:      "Water plants",
		Deadline:   "2026-03-10",
		Recurrence: store.RecurrenceDaily,
	})

	if err := p.Toggle(task.ID); err != nil {
		t.Fatal(err)
	}

	tasks := mustTasks(t, p)
	if len(tasks) != 2 {
		t.Fatalf("expected spawned occurrence, got %d tasks", len(tasks))
	}

	wantDeadline := clock.now.AddDate(0, 0, 1).Format("2006-01-02")
	var next *store.Task
	for i := range tasks {
		if tasks[i].ID != task.ID {
			next = &tasks[i]
		}
	}
	if next == nil {
		t.Fatal("spawned task not found")
	}
	if next.Title != "Water plants" || next.Deadline != wantDeadline {
		t.Errorf("unexpected spawn: %+v", next)
	}
	if next.Completed || next.SpentMin != 0 {
		t.Errorf("spawn must start fresh: %+v", next)
	}
}

func TestRecurrenceSpawnIsIdempotent(t *testing.T) {
	p, _, _, _, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{
		Title:      "Weekly review",
		Recurrence: store.RecurrenceWeekly,
	})

	// Complete, un-complete, complete again on the same day.
	for _, id := range []string{task.ID, task.ID, task.ID} {
		if err := p.Toggle(id); err != nil {
			t.Fatal(err)
		}
	}

	if n := len(mustTasks(t, p)); n != 2 {
		t.Errorf("expected exactly one spawned occurrence, got %d tasks", n)
	}
}

func TestRecurrenceMonthlyUsesCalendarMonth(t *testing.T) {
	p, _, clock, _, _ := newTestPlanner(t)
	clock.now = time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	task := mustAdd(t, p, Draft{Title: "Pay rent", Recurrence: store.RecurrenceMonthly})
	if err := p.Toggle(task.ID); err != nil {
		t.Fatal(err)
	}

	want := clock.now.AddDate(0, 1, 0).Format("2006-01-02")
	found := false
	for _, got := range mustTasks(t, p) {
		if got.ID != task.ID && got.Deadline == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected spawn with deadline %s", want)
	}
}

// ============================================================
// Time tracking
// ============================================================

func TestToggleTimerStartsAndStops(t *testing.T) {
	p, _, clock, _, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{Title: "Focus block"})

	if err := p.ToggleTimer(task.ID); err != nil {
		t.Fatal(err)
	}
	got := findTask(t, p, task.ID)
	if !got.Tracking || got.StartedAt == nil {
		t.Fatalf("expected tracking started: %+v", got)
	}

	clock.advance(2*time.Minute + 5*time.Second)
	if e := p.Elapsed(got); e != 2 {
		t.Errorf("expected live elapsed 2, got %d", e)
	}

	if err := p.ToggleTimer(task.ID); err != nil {
		t.Fatal(err)
	}
	got = findTask(t, p, task.ID)
	if got.Tracking || got.StartedAt != nil {
		t.Errorf("expected tracking stopped: %+v", got)
	}
	if got.SpentMin != 2 {
		t.Errorf("expected 2 folded minutes, got %d", got.SpentMin)
	}
}

func TestAtMostOneTaskTracking(t *testing.T) {
	p, _, clock, _, _ := newTestPlanner(t)
	a := mustAdd(t, p, Draft{Title: "A"})
	b := mustAdd(t, p, Draft{Title: "B"})

	if err := p.ToggleTimer(a.ID); err != nil {
		t.Fatal(err)
	}
	clock.advance(3 * time.Minute)
	if err := p.ToggleTimer(b.ID); err != nil {
		t.Fatal(err)
	}

	tracking := 0
	for _, task := range mustTasks(t, p) {
		if task.Tracking {
			tracking++
			if task.ID != b.ID {
				t.Errorf("wrong task tracking: %s", task.Title)
			}
		}
	}
	if tracking != 1 {
		t.Fatalf("expected exactly 1 tracking task, got %d", tracking)
	}

	if got := findTask(t, p, a.ID); got.SpentMin != 3 {
		t.Errorf("force-stop must fold minutes, got %d", got.SpentMin)
	}
}

func TestSubMinuteTrackingFoldsToZero(t *testing.T) {
	p, _, clock, _, _ := newTestPlanner(t)
	task := mustAdd(t, p, Draft{Title: "Quick look"})

	p.ToggleTimer(task.ID)
	clock.advance(45 * time.Second)
	p.ToggleTimer(task.ID)

	if got := findTask(t, p, task.ID); got.SpentMin != 0 {
		t.Errorf("expected 0 minutes for sub-minute span, got %d", got.SpentMin)
	}
}

// ============================================================
// Remove
// ============================================================

func TestRemove(t *testing.T) {
	p, _, _, notes, _ := newTestPlanner(t)
	a := mustAdd(t, p, Draft{Title: "Keep"})
	b := mustAdd(t, p, Draft{Title: "Drop"})

	if err := p.Remove(b.ID); err != nil {
		t.Fatal(err)
	}

	tasks := mustTasks(t, p)
	if len(tasks) != 1 || tasks[0].ID != a.ID {
		t.Fatalf("unexpected survivors: %+v", tasks)
	}
	if !notes.has("Task removed") {
		t.Error("expected removal notice")
	}

	if err := p.Remove(b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
}

// ============================================================
// Reminders and startup
// ============================================================

func TestArmRemindersSkipsPastAndBare(t *testing.T) {
	p, _, clock, _, sched := newTestPlanner(t)

	past := clock.now.Add(-time.Hour)
	future := clock.now.Add(time.Hour)
	mustAdd(t, p, Draft{Title: "No reminder"})
	mustAdd(t, p, Draft{Title: "Past", Reminder: &past})
	upcoming := mustAdd(t, p, Draft{Title: "Upcoming", Reminder: &future})
	sched.calls = nil

	if err := p.ArmReminders(); err != nil {
		t.Fatal(err)
	}

	if len(sched.calls) != 1 {
		t.Fatalf("expected 1 armed reminder, got %d", len(sched.calls))
	}
	if sched.calls[0].taskID != upcoming.ID {
		t.Errorf("wrong task armed: %+v", sched.calls[0])
	}
}

func TestAnnounceDue(t *testing.T) {
	p, _, clock, notes, _ := newTestPlanner(t)
	today := clock.now.Format("2006-01-02")
	yesterday := clock.now.AddDate(0, 0, -1).Format("2006-01-02")

	mustAdd(t, p, Draft{Title: "Overdue", Deadline: yesterday})
	mustAdd(t, p, Draft{Title: "Due today", Deadline: today})
	done := mustAdd(t, p, Draft{Title: "Overdue but done", Deadline: yesterday})
	p.Toggle(done.ID)
	notes.notices = nil

	if err := p.AnnounceDue(); err != nil {
		t.Fatal(err)
	}
	if notes.count("Planner summary") != 1 {
		t.Fatalf("expected one summary notice, got %v", notes.notices)
	}
	summary := notes.notices[0]
	if !strings.Contains(summary, "1 overdue task") || !strings.Contains(summary, "1 task due today") {
		t.Errorf("unexpected summary: %s", summary)
	}
}

func TestAnnounceDueSilentWhenClear(t *testing.T) {
	p, _, _, notes, _ := newTestPlanner(t)
	mustAdd(t, p, Draft{Title: "No deadline"})
	notes.notices = nil

	if err := p.AnnounceDue(); err != nil {
		t.Fatal(err)
	}
	if len(notes.notices) != 0 {
		t.Errorf("expected silence, got %v", notes.notices)
	}
}
