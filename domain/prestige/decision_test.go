package prestige

import (
	"log/slog"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestEvaluate_Thresholds(t *testing.T) {
	tests := []struct {
		name     string
		rules    Rules
		snapshot Snapshot
		expected bool
	}{
		{
			name:     "nothing configured",
			rules:    Rules{},
			snapshot: Snapshot{Now: t0, CurrentStage: 5000, StageKnown: true, HighestStage: 4000},
			expected: false,
		},
		{
			name:     "timer elapsed",
			rules:    Rules{Timer: 45 * time.Minute},
			snapshot: Snapshot{Now: t0, NextTimedPrestige: t0.Add(-time.Second)},
			expected: true,
		},
		{
			name:     "timer not elapsed and no stage rules",
			rules:    Rules{Timer: 45 * time.Minute},
			snapshot: Snapshot{Now: t0, NextTimedPrestige: t0.Add(time.Minute), CurrentStage: 9000, StageKnown: true},
			expected: false,
		},
		{
			name:  "timer beats unmet stage threshold",
			rules: Rules{Timer: 45 * time.Minute, AtStage: 99999},
			snapshot: Snapshot{
				Now: t0, NextTimedPrestige: t0.Add(-time.Second),
				CurrentStage: 100, StageKnown: true,
			},
			expected: true,
		},
		{
			name:     "unknown stage blocks stage rules",
			rules:    Rules{AtStage: 100},
			snapshot: Snapshot{Now: t0, StageKnown: false},
			expected: false,
		},
		{
			name:     "at stage reached",
			rules:    Rules{AtStage: 500},
			snapshot: Snapshot{Now: t0, CurrentStage: 500, StageKnown: true},
			expected: true,
		},
		{
			name:     "at stage not reached",
			rules:    Rules{AtStage: 500},
			snapshot: Snapshot{Now: t0, CurrentStage: 499, StageKnown: true},
			expected: false,
		},
		{
			name:     "at stage takes priority over max stage",
			rules:    Rules{AtStage: 9999, AtMaxStage: true},
			snapshot: Snapshot{Now: t0, CurrentStage: 5000, StageKnown: true, HighestStage: 4000},
			expected: false,
		},
		{
			name:     "max stage reached",
			rules:    Rules{AtMaxStage: true},
			snapshot: Snapshot{Now: t0, CurrentStage: 4000, StageKnown: true, HighestStage: 4000},
			expected: true,
		},
		{
			name:     "percent of max stage reached",
			rules:    Rules{MaxStagePercent: 90},
			snapshot: Snapshot{Now: t0, CurrentStage: 3600, StageKnown: true, HighestStage: 4000},
			expected: true,
		},
		{
			name:     "percent above hundred pushes records",
			rules:    Rules{MaxStagePercent: 110},
			snapshot: Snapshot{Now: t0, CurrentStage: 4300, StageKnown: true, HighestStage: 4000},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecision(tt.rules, discard())
			if got := d.Evaluate(tt.snapshot); got != tt.expected {
				t.Errorf("Evaluate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEvaluate_RandomizedDefer(t *testing.T) {
	rules := Rules{
		AtStage:           100,
		Randomize:         true,
		RandomizeMinDelay: time.Minute,
		RandomizeMaxDelay: 5 * time.Minute,
	}
	d := NewDecision(rules, discard())
	snap := Snapshot{Now: t0, CurrentStage: 200, StageKnown: true}

	// First hit arms the deferred trigger instead of firing.
	if d.Evaluate(snap) {
		t.Fatal("first evaluation should defer, not fire")
	}
	if d.pendingAt.Before(t0.Add(time.Minute)) || d.pendingAt.After(t0.Add(5*time.Minute)) {
		t.Fatalf("pending trigger %v outside configured window", d.pendingAt.Sub(t0))
	}

	// While pending, thresholds are not re-evaluated; even a regressed
	// stage does not clear the trigger.
	snap.CurrentStage = 1
	snap.Now = t0.Add(30 * time.Second)
	if d.Evaluate(snap) {
		t.Error("pending trigger fired before its timestamp")
	}

	snap.Now = d.pendingAt.Add(time.Second)
	if !d.Evaluate(snap) {
		t.Error("pending trigger did not fire after its timestamp elapsed")
	}

	// Reset clears the pending trigger for the next cycle.
	d.Reset()
	snap.Now = t0.Add(time.Hour)
	snap.CurrentStage = 1
	if d.Evaluate(snap) {
		t.Error("evaluation fired after reset with threshold unmet")
	}
}

func TestEvaluate_RandomizeDegenerateWindow(t *testing.T) {
	rules := Rules{
		AtStage:           100,
		Randomize:         true,
		RandomizeMinDelay: 2 * time.Minute,
		RandomizeMaxDelay: 2 * time.Minute,
	}
	d := NewDecision(rules, discard())
	snap := Snapshot{Now: t0, CurrentStage: 200, StageKnown: true}

	if d.Evaluate(snap) {
		t.Fatal("first evaluation should defer")
	}
	if got := d.pendingAt.Sub(t0); got != 2*time.Minute {
		t.Errorf("degenerate window delay = %v, want exactly 2m", got)
	}
}
