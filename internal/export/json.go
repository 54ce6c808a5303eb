package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/careercraft/craft/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Notes        string `json:"notes,omitempty"`
	Completed    bool   `json:"completed"`
	CreatedAt    string `json:"created_at"`
	CompletedAt  string `json:"completed_at,omitempty"`
	Priority     string `json:"priority"`
	Deadline     string `json:"deadline,omitempty"`
	Group        string `json:"group"`
	EstimatedMin int    `json:"estimated_minutes"`
	SpentMin     int    `json:"spent_minutes"`
	Recurrence   string `json:"recurrence"`
	Reminder     string `json:"reminder,omitempty"`
}

// ToJSON writes the full task snapshot as pretty-printed JSON with an
// exported_at envelope.
func ToJSON(tasks []store.Task, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		completedAt := ""
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.Local().Format(time.RFC3339)
		}
		reminder := ""
		if t.Reminder != nil {
			reminder = t.Reminder.Local().Format(time.RFC3339)
		}

		export.Tasks = append(export.Tasks, jsonTask{
			ID:           t.ID,
			Title:        t.Title,
			Notes:        t.Notes,
			Completed:    t.Completed,
			CreatedAt:    t.CreatedAt.Local().Format(time.RFC3339),
			CompletedAt:  completedAt,
			Priority:     string(t.Priority),
			Deadline:     t.Deadline,
			Group:        t.Group,
			EstimatedMin: t.EstimatedMin,
			SpentMin:     t.SpentMin,
			Recurrence:   string(t.Recurrence),
			Reminder:     reminder,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
