// Package pomodoro implements the focus/break countdown cycle. The timer
// is a persisted state machine; the owning view drives it with one Tick
// per second and surfaces phase changes to the user.
package pomodoro

import (
	"fmt"

	"github.com/careercraft/craft/internal/store"
)

type Mode string

const (
	ModeFocus Mode = "focus"
	ModeShort Mode = "short"
	ModeLong  Mode = "long"
)

// Label returns the display name for a mode.
func (m Mode) Label() string {
	switch m {
	case ModeShort:
		return "Short Break"
	case ModeLong:
		return "Long Break"
	default:
		return "Focus"
	}
}

// Timer is the countdown state machine. All state lives in a
// store.PomodoroSnapshot and is written back on every change, so a
// restart resumes exactly where the previous session left off.
type Timer struct {
	store *store.Store
	snap  store.PomodoroSnapshot
}

// Load restores the timer from the settings table, falling back to the
// seeded defaults for anything missing or unparsable.
func Load(s *store.Store) *Timer {
	return &Timer{store: s, snap: s.PomodoroSnapshot()}
}

func (t *Timer) Mode() Mode     { return Mode(t.snap.Mode) }
func (t *Timer) Running() bool  { return t.snap.Running }
func (t *Timer) Seconds() int   { return t.snap.Seconds }
func (t *Timer) Sessions() int  { return t.snap.Sessions }
func (t *Timer) Snapshot() store.PomodoroSnapshot { return t.snap }

// Remaining formats the countdown as mm:ss.
func (t *Timer) Remaining() string {
	return fmt.Sprintf("%02d:%02d", t.snap.Seconds/60, t.snap.Seconds%60)
}

// Progress reports how far the current phase has advanced, in [0, 1].
func (t *Timer) Progress() float64 {
	total := t.duration(t.Mode())
	if total <= 0 {
		return 0
	}
	done := total - t.snap.Seconds
	if done < 0 {
		done = 0
	}
	return float64(done) / float64(total)
}

func (t *Timer) duration(m Mode) int {
	switch m {
	case ModeShort:
		return t.snap.ShortMin * 60
	case ModeLong:
		return t.snap.LongMin * 60
	default:
		return t.snap.FocusMin * 60
	}
}

// Toggle starts or pauses the countdown.
func (t *Timer) Toggle() error {
	t.snap.Running = !t.snap.Running
	return t.save()
}

// Tick advances the countdown by one second. When a phase reaches zero
// the timer rolls into the next one and keeps running: a finished focus
// session counts toward the long-break cadence, a finished break returns
// to focus. The entered mode is returned with done=true so the caller
// can announce it.
func (t *Timer) Tick() (done bool, entered Mode, err error) {
	if !t.snap.Running {
		return false, "", nil
	}
	if t.snap.Seconds > 0 {
		t.snap.Seconds--
	}
	if t.snap.Seconds > 0 {
		return false, "", t.save()
	}

	if t.Mode() == ModeFocus {
		t.snap.Sessions++
		if t.snap.Sessions%t.snap.UntilLong == 0 {
			entered = ModeLong
		} else {
			entered = ModeShort
		}
	} else {
		entered = ModeFocus
	}
	t.snap.Mode = string(entered)
	t.snap.Seconds = t.duration(entered)
	return true, entered, t.save()
}

// ResetTo stops the timer and loads the given mode's full duration.
// The session count is preserved.
func (t *Timer) ResetTo(m Mode) error {
	t.snap.Running = false
	t.snap.Mode = string(m)
	t.snap.Seconds = t.duration(m)
	return t.save()
}

// Configure replaces the durations and long-break cadence, then resets
// the current phase so the new duration takes effect immediately.
func (t *Timer) Configure(focusMin, shortMin, longMin, untilLong int) error {
	if focusMin < 1 {
		focusMin = store.DefaultFocusMin
	}
	if shortMin < 1 {
		shortMin = store.DefaultShortMin
	}
	if longMin < 1 {
		longMin = store.DefaultLongMin
	}
	if untilLong < 1 {
		untilLong = store.DefaultUntilLong
	}
	t.snap.FocusMin = focusMin
	t.snap.ShortMin = shortMin
	t.snap.LongMin = longMin
	t.snap.UntilLong = untilLong
	return t.ResetTo(t.Mode())
}

func (t *Timer) save() error {
	return t.store.SavePomodoroSnapshot(t.snap)
}
