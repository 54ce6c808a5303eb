package store

import (
	"database/sql"
	"fmt"
	"time"
)

// LoadTasks returns the full task snapshot ordered by creation time. Rows
// that fail to scan are skipped so a partially corrupt table never takes
// the planner down with it; an empty table yields an empty slice.
func (s *Store) LoadTasks() ([]Task, error) {
	rows, err := s.db.Query(
		`SELECT id, title, notes, completed, created_at, completed_at, priority,
		        deadline, grp, estimated_min, spent_min, tracking, started_at,
		        recurrence, reminder
		 FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SaveTasks replaces the persisted snapshot with tasks in a single
// transaction, so readers never observe a partial write, then broadcasts
// the change to subscribers.
func (s *Store) SaveTasks(tasks []Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO tasks (id, title, notes, completed, created_at, completed_at,
		                    priority, deadline, grp, estimated_min, spent_min,
		                    tracking, started_at, recurrence, reminder)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		_, err := stmt.Exec(
			t.ID, t.Title, t.Notes, boolToInt(t.Completed),
			t.CreatedAt.UTC().Format(time.RFC3339),
			timePtrString(t.CompletedAt),
			string(t.Priority), t.Deadline, t.Group,
			t.EstimatedMin, t.SpentMin, boolToInt(t.Tracking),
			timePtrString(t.StartedAt),
			string(t.Recurrence), timePtrString(t.Reminder),
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	s.broadcast()
	return nil
}

func scanTask(rows *sql.Rows) (Task, error) {
	var t Task
	var completed, tracking int
	var createdAt string
	var completedAt, startedAt, reminder sql.NullString

	err := rows.Scan(&t.ID, &t.Title, &t.Notes, &completed, &createdAt,
		&completedAt, &t.Priority, &t.Deadline, &t.Group, &t.EstimatedMin,
		&t.SpentMin, &tracking, &startedAt, &t.Recurrence, &reminder)
	if err != nil {
		return Task{}, err
	}

	t.Completed = completed == 1
	t.Tracking = tracking == 1
	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Task{}, err
	}
	t.CompletedAt = parseTimePtr(completedAt)
	t.StartedAt = parseTimePtr(startedAt)
	t.Reminder = parseTimePtr(reminder)
	if !t.Priority.Valid() {
		t.Priority = PriorityLow
	}
	if !t.Recurrence.Valid() {
		t.Recurrence = RecurrenceNone
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtrString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
