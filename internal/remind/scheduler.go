// Package remind arms one-shot task reminders for the current session.
// Pending reminders live only in memory; they are re-armed from the task
// snapshot at startup and are not persisted across restarts.
package remind

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"
)

// Event is delivered on the scheduler's channel when a reminder comes due.
// The task is not re-validated before delivery; a reminder for a task that
// has since been deleted fires harmlessly.
type Event struct {
	TaskID string
	Title  string
	At     time.Time
}

type queueItem struct {
	event Event
}

type reminderQueue []queueItem

func (q reminderQueue) Len() int { return len(q) }

func (q reminderQueue) Less(i, j int) bool {
	return q[i].event.At.Before(q[j].event.At)
}

func (q reminderQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *reminderQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *reminderQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// DefaultBuffer is the delivery channel capacity used by the binary.
const DefaultBuffer = 16

type Scheduler struct {
	mu      sync.Mutex
	queue   reminderQueue
	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewScheduler(bufferSize int) *Scheduler {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Scheduler{
		queue:  make(reminderQueue, 0),
		out:    make(chan Event, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C is the channel on which due reminders are delivered.
func (s *Scheduler) C() <-chan Event {
	return s.out
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	heap.Init(&s.queue)
	go s.loop()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()
	<-s.doneCh
}

// Schedule arms a single deferred reminder. Instants that are already past
// are dropped silently: there is no immediate fallback notification.
func (s *Scheduler) Schedule(taskID, title string, at time.Time) {
	if at.IsZero() || !at.After(time.Now()) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	heap.Push(&s.queue, queueItem{event: Event{TaskID: taskID, Title: title, At: at}})
	s.signalWakeup()
}

// Dropped counts events discarded because the consumer fell behind.
func (s *Scheduler) Dropped() uint64 {
	return atomic.LoadUint64(&s.dropped)
}

func (s *Scheduler) loop() {
	defer close(s.doneCh)
	defer close(s.out)

	var timer *time.Timer
	for {
		next, hasNext := s.peek()
		if !hasNext {
			select {
			case <-s.wakeup:
				continue
			case <-s.stopCh:
				return
			}
		}

		wait := time.Until(next.At)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := s.popDue(time.Now())
			for _, ev := range due {
				select {
				case s.out <- ev:
				default:
					atomic.AddUint64(&s.dropped, 1)
				}
			}
		case <-s.wakeup:
			continue
		case <-s.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (s *Scheduler) signalWakeup() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

func (s *Scheduler) peek() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Event{}, false
	}
	return s.queue[0].event, true
}

func (s *Scheduler) popDue(now time.Time) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, 0)
	for len(s.queue) > 0 {
		next := s.queue[0].event
		if next.At.After(now) {
			break
		}
		item := heap.Pop(&s.queue).(queueItem)
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
