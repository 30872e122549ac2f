package session

import (
	"log/slog"
	"time"

	"tapdash/core/command"
)

// ScheduleEntry tracks when a periodic action runs next. An interval of
// zero permanently disables the action; it never becomes due.
type ScheduleEntry struct {
	Action   command.ActionID
	NextRun  time.Time
	Interval time.Duration
}

// Scheduler owns the next-run time of every periodic action. Entries
// keep their configuration order, which is the order due actions are
// returned in. Not safe for concurrent use; only the session loop
// touches it.
//
// Pausing the session freezes the loop but not the due times: time that
// passes while paused is not credited back, so an action whose due time
// elapsed during a pause fires immediately on resume.
type Scheduler struct {
	entries []*ScheduleEntry
	index   map[command.ActionID]*ScheduleEntry
	log     *slog.Logger
}

// NewScheduler creates an empty scheduler.
func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{
		index: make(map[command.ActionID]*ScheduleEntry),
		log:   log,
	}
}

// Configure registers or reconfigures an action's schedule. With
// runOnStart the action is due immediately, otherwise one full interval
// from now. Reconfiguring keeps the entry's position.
func (s *Scheduler) Configure(id command.ActionID, interval time.Duration, now time.Time, runOnStart bool) {
	entry, ok := s.index[id]
	if !ok {
		entry = &ScheduleEntry{Action: id}
		s.entries = append(s.entries, entry)
		s.index[id] = entry
	}

	entry.Interval = interval
	if runOnStart {
		entry.NextRun = now
	} else {
		entry.NextRun = now.Add(interval)
	}
}

// Due reports whether an action's next-run time has arrived. Unknown
// and disabled actions are never due.
func (s *Scheduler) Due(id command.ActionID, now time.Time) bool {
	entry, ok := s.index[id]
	if !ok || entry.Interval == 0 {
		return false
	}
	return !now.Before(entry.NextRun)
}

// Recalculate pushes an action's next run one interval past now. Called
// when the action completes, whether it succeeded or was skipped, so a
// failing action cannot enter a tight retry loop.
func (s *Scheduler) Recalculate(id command.ActionID, now time.Time) {
	entry, ok := s.index[id]
	if !ok || entry.Interval == 0 {
		return
	}
	entry.NextRun = now.Add(entry.Interval)
	s.log.Debug("action rescheduled", "action", entry.Action, "next_run_in", entry.Interval)
}

// DueNow returns all currently due actions in configuration order.
func (s *Scheduler) DueNow(now time.Time) []command.ActionID {
	var due []command.ActionID
	for _, entry := range s.entries {
		if entry.Interval != 0 && !now.Before(entry.NextRun) {
			due = append(due, entry.Action)
		}
	}
	return due
}

// NextRun returns an action's next-run time. The second result is false
// for unknown or disabled actions.
func (s *Scheduler) NextRun(id command.ActionID) (time.Time, bool) {
	entry, ok := s.index[id]
	if !ok || entry.Interval == 0 {
		return time.Time{}, false
	}
	return entry.NextRun, true
}
