package engine

import (
	"cmp"
	"log/slog"
	"slices"
	"time"
)

type timer struct {
	due   time.Duration // Sim clock
	seq   uint64
	armed uint64 // Tick it was scheduled during
	fn    func()
}

// After schedules fn to run once d of simulated time has passed. It never
// runs within the tick that scheduled it, even when d is zero.
func (s *Simulation) After(d time.Duration, fn func()) {
	s.timerSeq++
	s.timers = append(s.timers, timer{
		due:   s.now + d,
		seq:   s.timerSeq,
		armed: s.LastTick,
		fn:    fn,
	})
}

// PendingTimers counts timers not yet fired.
func (s *Simulation) PendingTimers() int {
	return len(s.timers)
}

// runTimers fires due timers in deadline order. Timers scheduled by a firing
// callback wait for a later tick.
func (s *Simulation) runTimers() {
	if len(s.timers) == 0 {
		return
	}

	var due []timer
	keep := s.timers[:0]
	for _, t := range s.timers {
		if t.armed < s.LastTick && t.due <= s.now {
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	s.timers = keep

	slices.SortFunc(due, func(a, b timer) int {
		if c := cmp.Compare(a.due, b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	for _, t := range due {
		s.fire(t)
	}
}

func (s *Simulation) fire(t timer) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("timer callback panicked", "seq", t.seq, "panic", r)
		}
	}()
	t.fn()
}
