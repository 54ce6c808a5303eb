package store

import (
	"fmt"
	"strconv"
)

const (
	DefaultDailyGoal = 5
	DefaultFocusMin  = 25
	DefaultShortMin  = 5
	DefaultLongMin   = 15
	DefaultUntilLong = 4
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		if err := rows.Scan(&st.Key, &st.Value); err != nil {
			return nil, err
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// intSetting reads key as an integer, substituting fallback when the key is
// missing or unparsable. Storage read failures never surface to callers.
func (s *Store) intSetting(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// DailyGoal returns the target number of task completions per day, always ≥1.
func (s *Store) DailyGoal() int {
	goal := s.intSetting("daily_goal", DefaultDailyGoal)
	if goal < 1 {
		return DefaultDailyGoal
	}
	return goal
}

func (s *Store) SetDailyGoal(goal int) error {
	if goal < 1 {
		goal = 1
	}
	return s.SetSetting("daily_goal", strconv.Itoa(goal))
}

func (s *Store) Streak() Streak {
	st := Streak{Current: s.intSetting("streak_current", 0)}
	if st.Current < 0 {
		st.Current = 0
	}
	if v, err := s.GetSetting("streak_last_date"); err == nil {
		st.LastDate = v
	}
	return st
}

func (s *Store) SetStreak(st Streak) error {
	if err := s.SetSetting("streak_current", strconv.Itoa(st.Current)); err != nil {
		return err
	}
	return s.SetSetting("streak_last_date", st.LastDate)
}

func (s *Store) PomodoroSnapshot() PomodoroSnapshot {
	snap := PomodoroSnapshot{
		FocusMin:  s.intSetting("pomo_focus_min", DefaultFocusMin),
		ShortMin:  s.intSetting("pomo_short_min", DefaultShortMin),
		LongMin:   s.intSetting("pomo_long_min", DefaultLongMin),
		UntilLong: s.intSetting("pomo_until_long", DefaultUntilLong),
		Seconds:   s.intSetting("pomo_seconds", DefaultFocusMin*60),
		Sessions:  s.intSetting("pomo_sessions", 0),
		Mode:      "focus",
	}
	if v, err := s.GetSetting("pomo_running"); err == nil && v == "1" {
		snap.Running = true
	}
	if v, err := s.GetSetting("pomo_mode"); err == nil {
		switch v {
		case "focus", "short", "long":
			snap.Mode = v
		}
	}
	if snap.FocusMin < 1 {
		snap.FocusMin = DefaultFocusMin
	}
	if snap.ShortMin < 1 {
		snap.ShortMin = DefaultShortMin
	}
	if snap.LongMin < 1 {
		snap.LongMin = DefaultLongMin
	}
	if snap.UntilLong < 1 {
		snap.UntilLong = DefaultUntilLong
	}
	if snap.Seconds < 0 {
		snap.Seconds = 0
	}
	return snap
}

func (s *Store) SavePomodoroSnapshot(snap PomodoroSnapshot) error {
	running := "0"
	if snap.Running {
		running = "1"
	}
	pairs := []Setting{
		{"pomo_focus_min", strconv.Itoa(snap.FocusMin)},
		{"pomo_short_min", strconv.Itoa(snap.ShortMin)},
		{"pomo_long_min", strconv.Itoa(snap.LongMin)},
		{"pomo_until_long", strconv.Itoa(snap.UntilLong)},
		{"pomo_seconds", strconv.Itoa(snap.Seconds)},
		{"pomo_running", running},
		{"pomo_mode", snap.Mode},
		{"pomo_sessions", strconv.Itoa(snap.Sessions)},
	}
	for _, p := range pairs {
		if err := s.SetSetting(p.Key, p.Value); err != nil {
			return fmt.Errorf("save pomodoro state: %w", err)
		}
	}
	return nil
}
