package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/careercraft/craft/internal/analytics"
	"github.com/careercraft/craft/internal/store"
)

func sampleTasks() []store.Task {
	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	completed := created.Add(3 * time.Hour)
	return []store.Task{
		{
			ID:           "a",
			Title:        "Write report",
			Notes:        "quarterly",
			Completed:    true,
			CreatedAt:    created,
			CompletedAt:  &completed,
			Priority:     store.PriorityHigh,
			Deadline:     "2026-03-12",
			Group:        "Work",
			EstimatedMin: 60,
			SpentMin:     45,
			Recurrence:   store.RecurrenceWeekly,
		},
		{
			ID:        "b",
			Title:     "Walk the dog",
			CreatedAt: created.Add(time.Minute),
			Priority:  store.PriorityLow,
			Group:     "General",
		},
	}
}

// ============================================================
// JSON export
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	if err := ToJSON(sampleTasks(), path); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got jsonExport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if got.Count != 2 || len(got.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got count=%d len=%d", got.Count, len(got.Tasks))
	}
	if got.ExportedAt == "" {
		t.Error("missing exported_at")
	}
	if _, err := time.Parse(time.RFC3339, got.ExportedAt); err != nil {
		t.Errorf("exported_at not RFC3339: %v", err)
	}

	first := got.Tasks[0]
	if first.ID != "a" || first.Title != "Write report" || !first.Completed {
		t.Errorf("unexpected first task: %+v", first)
	}
	if first.Priority != "high" || first.Recurrence != "weekly" {
		t.Errorf("enum fields wrong: %+v", first)
	}
	if first.SpentMin != 45 || first.EstimatedMin != 60 {
		t.Errorf("minutes wrong: %+v", first)
	}
	if first.CompletedAt == "" {
		t.Error("missing completed_at on completed task")
	}

	second := got.Tasks[1]
	if second.CompletedAt != "" || second.Reminder != "" {
		t.Errorf("expected omitted optionals: %+v", second)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	var got jsonExport
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 0 {
		t.Errorf("expected count 0, got %d", got.Count)
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(sampleTasks(), filepath.Join(t.TempDir(), "missing", "tasks.json"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

// ============================================================
// CSV export
// ============================================================

func TestToCSV(t *testing.T) {
	buckets := []analytics.Bucket{
		{Date: "2026-03-08", Label: "Mar 8", Planned: 3, Completed: 1},
		{Date: "2026-03-09", Label: "Mar 9", Planned: 0, Completed: 0},
		{Date: "2026-03-10", Label: "Mar 10", Planned: 2, Completed: 2},
	}
	path := filepath.Join(t.TempDir(), "productivity.csv")

	if err := ToCSV(buckets, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}

	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	header := records[0]
	if header[0] != "Date" || header[1] != "Planned" || header[2] != "Completed" {
		t.Errorf("unexpected header: %v", header)
	}
	if records[1][0] != "2026-03-08" || records[1][1] != "3" || records[1][2] != "1" {
		t.Errorf("unexpected first row: %v", records[1])
	}
	if records[3][2] != "2" {
		t.Errorf("unexpected last row: %v", records[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("expected header only, got %d rows", len(records))
	}
}
