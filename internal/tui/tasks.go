package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/careercraft/craft/internal/planner"
	"github.com/careercraft/craft/internal/store"
)

const reminderLayout = "2006-01-02 15:04"

type tasksModel struct {
	planner *planner.Planner
	store   *store.Store
	width   int
	height  int

	tasks  []store.Task
	cursor int

	formActive bool
	form       *huh.Form
	editingID  string // empty = creating

	// Form field pointers (survive value copies)
	formTitle      *string
	formNotes      *string
	formPriority   *string
	formDeadline   *string
	formGroup      *string
	formEstimate   *string
	formRecurrence *string
	formReminder   *string
}

func newTasksModel(p *planner.Planner, s *store.Store) tasksModel {
	title, notes, prio, deadline := "", "", "low", ""
	group, estimate, recur, reminder := "", "", "none", ""
	return tasksModel{
		planner:        p,
		store:          s,
		formTitle:      &title,
		formNotes:      &notes,
		formPriority:   &prio,
		formDeadline:   &deadline,
		formGroup:      &group,
		formEstimate:   &estimate,
		formRecurrence: &recur,
		formReminder:   &reminder,
	}
}

func (m tasksModel) Init() tea.Cmd {
	return m.refresh()
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := m.planner.Tasks()
		return tasksDataMsg{tasks: tasks}
	}
}

// do runs a planner operation and reloads the list, surfacing errors on
// the status line.
func (m tasksModel) do(op func() error) tea.Cmd {
	return func() tea.Msg {
		if err := op(); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		tasks, _ := m.planner.Tasks()
		return tasksDataMsg{tasks: tasks}
	}
}

// trackingTask returns the task currently tracking time, if any.
func (m tasksModel) trackingTask() *store.Task {
	for i := range m.tasks {
		if m.tasks[i].Tracking {
			return &m.tasks[i]
		}
	}
	return nil
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.tasks = msg.tasks
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(m.tasks) > 0 {
				id := m.tasks[m.cursor].ID
				return m, m.do(func() error { return m.planner.Toggle(id) })
			}
		case key.Matches(msg, keys.Timer):
			if len(m.tasks) > 0 {
				id := m.tasks[m.cursor].ID
				return m, m.do(func() error { return m.planner.ToggleTimer(id) })
			}
		case key.Matches(msg, keys.Delete):
			if len(m.tasks) > 0 {
				id := m.tasks[m.cursor].ID
				return m, m.do(func() error { return m.planner.Remove(id) })
			}
		case key.Matches(msg, keys.New):
			return m.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(m.tasks) > 0 {
				task := m.tasks[m.cursor]
				return m.showForm(&task)
			}
		case key.Matches(msg, keys.GoalUp):
			goal := m.store.DailyGoal() + 1
			m.store.SetDailyGoal(goal)
			return m, statusCmd(fmt.Sprintf("Daily goal set to %d", goal))
		case key.Matches(msg, keys.GoalDown):
			goal := m.store.DailyGoal() - 1
			if goal < 1 {
				goal = 1
			}
			m.store.SetDailyGoal(goal)
			return m, statusCmd(fmt.Sprintf("Daily goal set to %d", goal))
		}
	}
	return m, nil
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func (m tasksModel) showForm(task *store.Task) (tasksModel, tea.Cmd) {
	if task == nil {
		m.editingID = ""
		*m.formTitle = ""
		*m.formNotes = ""
		*m.formPriority = string(store.PriorityLow)
		*m.formDeadline = ""
		*m.formGroup = "General"
		*m.formEstimate = ""
		*m.formRecurrence = string(store.RecurrenceNone)
		*m.formReminder = ""
	} else {
		m.editingID = task.ID
		*m.formTitle = task.Title
		*m.formNotes = task.Notes
		*m.formPriority = string(task.Priority)
		*m.formDeadline = task.Deadline
		*m.formGroup = task.Group
		*m.formEstimate = strconv.Itoa(task.EstimatedMin)
		*m.formRecurrence = string(task.Recurrence)
		if task.Reminder != nil {
			*m.formReminder = task.Reminder.Local().Format(reminderLayout)
		} else {
			*m.formReminder = ""
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle),
			huh.NewInput().Title("Notes").Value(m.formNotes),
			huh.NewSelect[string]().Title("Priority").
				Options(
					huh.NewOption("Low", string(store.PriorityLow)),
					huh.NewOption("Medium", string(store.PriorityMedium)),
					huh.NewOption("High", string(store.PriorityHigh)),
				).Value(m.formPriority),
			huh.NewInput().Title("Deadline (YYYY-MM-DD)").Value(m.formDeadline),
		),
		huh.NewGroup(
			huh.NewInput().Title("Group").Value(m.formGroup),
			huh.NewInput().Title("Estimate (minutes)").Value(m.formEstimate),
			huh.NewSelect[string]().Title("Recurrence").
				Options(
					huh.NewOption("None", string(store.RecurrenceNone)),
					huh.NewOption("Daily", string(store.RecurrenceDaily)),
					huh.NewOption("Weekly", string(store.RecurrenceWeekly)),
					huh.NewOption("Monthly", string(store.RecurrenceMonthly)),
				).Value(m.formRecurrence),
			huh.NewInput().Title("Reminder (YYYY-MM-DD HH:MM)").Value(m.formReminder),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, m.submitForm()
	}

	return m, cmd
}

func (m tasksModel) submitForm() tea.Cmd {
	title := *m.formTitle
	notes := *m.formNotes
	priority := store.Priority(*m.formPriority)
	deadline := *m.formDeadline
	group := *m.formGroup
	recurrence := store.Recurrence(*m.formRecurrence)

	estimate := 0
	if n, err := strconv.Atoi(strings.TrimSpace(*m.formEstimate)); err == nil && n > 0 {
		estimate = n
	}

	var reminder *time.Time
	if v := strings.TrimSpace(*m.formReminder); v != "" {
		if at, err := time.ParseInLocation(reminderLayout, v, time.Local); err == nil {
			reminder = &at
		} else {
			return func() tea.Msg {
				return statusMsg{text: "Invalid reminder, use YYYY-MM-DD HH:MM", isError: true}
			}
		}
	}

	if m.editingID == "" {
		return m.do(func() error {
			_, err := m.planner.Add(planner.Draft{
				Title:        title,
				Notes:        notes,
				Priority:     priority,
				Deadline:     deadline,
				Group:        group,
				EstimatedMin: estimate,
				Recurrence:   recurrence,
				Reminder:     reminder,
			})
			return err
		})
	}

	id := m.editingID
	upd := planner.TaskUpdate{
		Title:         &title,
		Notes:         &notes,
		Priority:      &priority,
		Deadline:      &deadline,
		Group:         &group,
		EstimatedMin:  &estimate,
		Recurrence:    &recurrence,
		Reminder:      reminder,
		ClearReminder: reminder == nil,
	}
	return m.do(func() error { return m.planner.Update(id, upd) })
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.editingID != "" {
			title = titleStyle.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	header := m.renderGoalHeader()

	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No tasks yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")

	today := time.Now().Format("2006-01-02")
	for i, t := range m.tasks {
		rows = append(rows, m.renderTaskRow(i, t, today))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: done  t: track  n: new  e: edit  d: delete  +/-: goal"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderGoalHeader() string {
	goal := m.store.DailyGoal()
	streak := m.store.Streak()
	today := time.Now().Format("2006-01-02")

	completedToday := 0
	for _, t := range m.tasks {
		if t.Completed && t.CompletedAt != nil && t.CompletedAt.Local().Format("2006-01-02") == today {
			completedToday++
		}
	}

	title := titleStyle.Render("Tasks")
	goalPart := fmt.Sprintf("Goal %d/%d", completedToday, goal)
	if completedToday >= goal {
		goalPart = successStyle.Render(goalPart + " ✓")
	} else {
		goalPart = mutedStyle.Render(goalPart)
	}

	streakPart := ""
	if streak.Current > 0 {
		streakPart = warningStyle.Render(fmt.Sprintf("  %d day streak", streak.Current))
	}

	return title + "  " + goalPart + streakPart
}

func (m tasksModel) renderTaskRow(i int, t store.Task, today string) string {
	cursor := "  "
	style := normalItemStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}

	check := "[ ]"
	if t.Completed {
		check = "[x]"
		if i != m.cursor {
			style = doneItemStyle
		}
	}

	badge := priorityBadge(t.Priority)

	name := t.Title
	if t.Group != "" && t.Group != "General" {
		name += mutedStyle.Render(" · " + t.Group)
	}

	var extras []string
	if t.Deadline != "" {
		due := mutedStyle.Render(t.Deadline)
		if !t.Completed && t.Deadline < today {
			due = overdueStyle.Render(t.Deadline + " overdue")
		} else if !t.Completed && t.Deadline == today {
			due = warningStyle.Render("due today")
		}
		extras = append(extras, due)
	}
	if spent := m.planner.Elapsed(t); spent > 0 || t.Tracking {
		clock := formatMinutes(spent)
		if t.EstimatedMin > 0 {
			clock += "/" + formatMinutes(t.EstimatedMin)
		}
		if t.Tracking {
			extras = append(extras, successStyle.Render("● "+clock))
		} else {
			extras = append(extras, mutedStyle.Render(clock))
		}
	}
	if t.Recurrence != store.RecurrenceNone {
		extras = append(extras, mutedStyle.Render("↻ "+string(t.Recurrence)))
	}
	if t.Reminder != nil {
		extras = append(extras, mutedStyle.Render("⏰ "+t.Reminder.Local().Format("Jan 2 15:04")))
	}

	row := fmt.Sprintf("%s%s %s %s", cursor, check, badge, style.Render(name))
	if len(extras) > 0 {
		row += "  " + strings.Join(extras, "  ")
	}
	return row
}

func priorityBadge(p store.Priority) string {
	switch p {
	case store.PriorityHigh:
		return priorityHighStyle.Render("!!!")
	case store.PriorityMedium:
		return priorityMediumStyle.Render("!! ")
	default:
		return priorityLowStyle.Render("!  ")
	}
}
