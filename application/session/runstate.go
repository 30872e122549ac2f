package session

import (
	"time"

	"tapdash/domain/artifact"
)

// RunState is the mutable per-session state. Constructed at session
// start, mutated continuously by the loop, and discarded when the
// session stops. Only the owning session goroutine touches it.
type RunState struct {
	// Stage tracking.
	CurrentStage   int
	StageKnown     bool
	LastStage      int
	LastStageKnown bool
	HighestStage   int

	// AdvancedStart is the stage the current prestige started at. A
	// parsed stage below this floor cannot be genuine.
	AdvancedStart int

	// Prestige timing.
	SessionStart      time.Time
	LastPrestigeAt    time.Time
	NextTimedPrestige time.Time

	// Per-prestige skill levels, reset to zero on every prestige.
	SkillLevels map[string]int

	// Per-skill next activation times.
	NextSkillActivation map[string]time.Time

	// Artifact rotation for post-prestige purchases.
	Rotation     *artifact.Rotation
	NextArtifact string

	// Recovery error counter with its periodic reset.
	Errors            int
	NextRecoveryReset time.Time

	// Break handling.
	NextBreak   time.Time
	BreakEndsAt time.Time

	// When the clan raid's attack rounds reset, read off the raid
	// screen. Zero until the first successful parse.
	RaidAttacksResetAt time.Time
}

// NewRunState creates a run state with its maps initialized.
func NewRunState(now time.Time) *RunState {
	return &RunState{
		SessionStart:        now,
		LastPrestigeAt:      now,
		SkillLevels:         make(map[string]int),
		NextSkillActivation: make(map[string]time.Time),
	}
}

// SetStage records a successfully parsed stage, shifting the previous
// value into LastStage and tracking the session high-water mark.
func (rs *RunState) SetStage(stage int) {
	rs.LastStage, rs.LastStageKnown = rs.CurrentStage, rs.StageKnown
	rs.CurrentStage, rs.StageKnown = stage, true
	if stage > rs.HighestStage {
		rs.HighestStage = stage
	}
}

// ClearStage marks the current stage unknown after a failed parse. The
// previous value is kept in LastStage for the jump-threshold check.
func (rs *RunState) ClearStage() {
	rs.LastStage, rs.LastStageKnown = rs.CurrentStage, rs.StageKnown
	rs.StageKnown = false
}

// ResetPrestige clears the per-prestige fields after a completed
// prestige.
func (rs *RunState) ResetPrestige(now time.Time) {
	rs.LastPrestigeAt = now
	rs.CurrentStage, rs.StageKnown = 0, false
	rs.LastStage, rs.LastStageKnown = 0, false
	rs.AdvancedStart = 0
	rs.SkillLevels = make(map[string]int)
}
