// Package analytics computes productivity views over a task snapshot:
// trailing day and week buckets for charting, and headline stats. All
// functions are pure over their inputs.
package analytics

import (
	"strconv"
	"time"

	"github.com/careercraft/craft/internal/store"
)

// Bucket is one bar of the planned-vs-completed chart. Planned counts
// tasks created in the bucket's span, Completed counts tasks completed
// in it.
type Bucket struct {
	Date      string // bucket start, 2006-01-02
	Label     string
	Planned   int
	Completed int
}

// GroupByDay buckets tasks into the trailing days calendar days, oldest
// first, with the last bucket being today.
func GroupByDay(tasks []store.Task, now time.Time, days int) []Bucket {
	if days < 1 {
		return nil
	}
	buckets := make([]Bucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, i-(days-1))
		key := day.Format("2006-01-02")
		buckets[i] = Bucket{Date: key, Label: day.Format("Jan 2")}
		index[key] = i
	}

	for _, t := range tasks {
		if i, ok := index[t.CreatedAt.Local().Format("2006-01-02")]; ok {
			buckets[i].Planned++
		}
		if t.CompletedAt != nil {
			if i, ok := index[t.CompletedAt.Local().Format("2006-01-02")]; ok {
				buckets[i].Completed++
			}
		}
	}
	return buckets
}

// GroupByWeek buckets tasks into trailing Sunday-start weeks, oldest
// first, with the last bucket being the current week.
func GroupByWeek(tasks []store.Task, now time.Time, weeks int) []Bucket {
	if weeks < 1 {
		return nil
	}
	current := weekStart(now)
	buckets := make([]Bucket, weeks)
	index := make(map[string]int, weeks)
	for i := 0; i < weeks; i++ {
		start := current.AddDate(0, 0, 7*(i-(weeks-1)))
		key := start.Format("2006-01-02")
		buckets[i] = Bucket{Date: key, Label: "Week " + strconv.Itoa(i+1)}
		index[key] = i
	}

	for _, t := range tasks {
		if i, ok := index[weekStart(t.CreatedAt.Local()).Format("2006-01-02")]; ok {
			buckets[i].Planned++
		}
		if t.CompletedAt != nil {
			if i, ok := index[weekStart(t.CompletedAt.Local()).Format("2006-01-02")]; ok {
				buckets[i].Completed++
			}
		}
	}
	return buckets
}

// weekStart returns midnight of the Sunday beginning t's week.
func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// Stats is the headline summary shown beside the chart.
type Stats struct {
	Total            int
	Completed        int
	CompletionRate   int // percent
	CompletedToday   int
	MinutesSpent     int // includes the live tracking span
	HighPriorityOpen int
	OverdueOpen      int
	DailyGoal        int
	GoalProgress     int // percent, capped at 100
	Streak           int
}

// Summarize computes Stats for a snapshot at the given instant.
func Summarize(tasks []store.Task, goal int, streak store.Streak, now time.Time) Stats {
	st := Stats{Total: len(tasks), DailyGoal: goal, Streak: streak.Current}
	today := now.Local().Format("2006-01-02")

	for _, t := range tasks {
		st.MinutesSpent += t.SpentMin
		if t.Tracking && t.StartedAt != nil {
			st.MinutesSpent += int(now.Sub(*t.StartedAt) / time.Minute)
		}
		if t.Completed {
			st.Completed++
			if t.CompletedAt != nil && t.CompletedAt.Local().Format("2006-01-02") == today {
				st.CompletedToday++
			}
			continue
		}
		if t.Priority == store.PriorityHigh {
			st.HighPriorityOpen++
		}
		if t.Deadline != "" && t.Deadline < today {
			st.OverdueOpen++
		}
	}

	if st.Total > 0 {
		st.CompletionRate = st.Completed * 100 / st.Total
	}
	if goal > 0 {
		st.GoalProgress = st.CompletedToday * 100 / goal
		if st.GoalProgress > 100 {
			st.GoalProgress = 100
		}
	}
	return st
}
