package session

import (
	"log/slog"
	"testing"
	"time"

	"tapdash/core/command"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestScheduler() *Scheduler {
	return NewScheduler(slog.New(slog.DiscardHandler))
}

func TestScheduler_DueAfterInterval(t *testing.T) {
	s := newTestScheduler()
	s.Configure(command.ActionUpdateStats, 30*time.Minute, now, false)

	if s.Due(command.ActionUpdateStats, now) {
		t.Error("action due immediately without runOnStart")
	}
	if s.Due(command.ActionUpdateStats, now.Add(29*time.Minute)) {
		t.Error("action due before its interval elapsed")
	}
	if !s.Due(command.ActionUpdateStats, now.Add(30*time.Minute)) {
		t.Error("action not due at its next-run time")
	}
}

func TestScheduler_RunOnStart(t *testing.T) {
	s := newTestScheduler()
	s.Configure(command.ActionUpdateStats, 30*time.Minute, now, true)

	if !s.Due(command.ActionUpdateStats, now) {
		t.Error("runOnStart action not due immediately")
	}
}

func TestScheduler_ZeroIntervalNeverDue(t *testing.T) {
	s := newTestScheduler()
	s.Configure(command.ActionRunActions, 0, now, true)

	if s.Due(command.ActionRunActions, now.Add(1000*time.Hour)) {
		t.Error("disabled action became due")
	}
	if _, ok := s.NextRun(command.ActionRunActions); ok {
		t.Error("NextRun reported a time for a disabled action")
	}
}

func TestScheduler_UnknownActionNeverDue(t *testing.T) {
	s := newTestScheduler()
	if s.Due(command.ActionTap, now) {
		t.Error("unknown action reported due")
	}
}

func TestScheduler_Recalculate(t *testing.T) {
	s := newTestScheduler()
	s.Configure(command.ActionRunActions, 25*time.Second, now, true)

	later := now.Add(time.Minute)
	s.Recalculate(command.ActionRunActions, later)

	if s.Due(command.ActionRunActions, later) {
		t.Error("action still due right after recalculation")
	}
	if !s.Due(command.ActionRunActions, later.Add(25*time.Second)) {
		t.Error("action not due one interval after recalculation")
	}
}

func TestScheduler_DueNowKeepsConfigurationOrder(t *testing.T) {
	s := newTestScheduler()
	s.Configure(command.ActionPrestige, time.Minute, now, true)
	s.Configure(command.ActionRunActions, time.Minute, now, true)
	s.Configure(command.ActionUpdateStats, time.Minute, now, true)
	s.Configure(command.ActionDailyAchievements, 0, now, true) // disabled

	due := s.DueNow(now)
	want := []command.ActionID{
		command.ActionPrestige, command.ActionRunActions, command.ActionUpdateStats,
	}
	if len(due) != len(want) {
		t.Fatalf("DueNow = %v, want %v", due, want)
	}
	for i := range want {
		if due[i] != want[i] {
			t.Errorf("due[%d] = %s, want %s", i, due[i], want[i])
		}
	}
}

func TestScheduler_PauseDoesNotShiftDueTimes(t *testing.T) {
	s := newTestScheduler()
	s.Configure(command.ActionUpdateStats, 10*time.Minute, now, false)

	// The session pauses for 30 minutes; nothing recalculates during a
	// pause, so the action is immediately due on resume.
	resume := now.Add(30 * time.Minute)
	if !s.Due(command.ActionUpdateStats, resume) {
		t.Error("due time should not be shifted by a pause")
	}
}

func TestScheduler_ReconfigureKeepsPosition(t *testing.T) {
	s := newTestScheduler()
	s.Configure(command.ActionPrestige, time.Minute, now, true)
	s.Configure(command.ActionUpdateStats, time.Minute, now, true)
	// Reconfigure the first entry with a new interval.
	s.Configure(command.ActionPrestige, 2*time.Minute, now, true)

	due := s.DueNow(now)
	if len(due) != 2 || due[0] != command.ActionPrestige {
		t.Errorf("DueNow after reconfigure = %v, want prestige first", due)
	}
}
