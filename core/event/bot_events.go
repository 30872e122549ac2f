package event

import "time"

// PrestigeCompleted is published after a prestige has been confirmed in game
// and its record handed to the stats sink.
type PrestigeCompleted struct {
	baseSessionEvent
	Timestamp time.Time
	Duration  time.Duration // time since the previous prestige, zero when unreadable
	Stage     int           // stage reached, zero when unknown
	Artifact  string        // artifact upgraded after the prestige, empty when none
}

func NewPrestigeCompleted(sessionID string, ts time.Time, duration time.Duration, stage int, artifact string) *PrestigeCompleted {
	return &PrestigeCompleted{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Timestamp:        ts,
		Duration:         duration,
		Stage:            stage,
		Artifact:         artifact,
	}
}

func (e *PrestigeCompleted) EventName() string {
	return "PrestigeCompleted"
}

// StatsUpdated is published after a successful OCR statistics refresh.
type StatsUpdated struct {
	baseSessionEvent
	Values map[string]string
}

func NewStatsUpdated(sessionID string, values map[string]string) *StatsUpdated {
	return &StatsUpdated{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Values:           values,
	}
}

func (e *StatsUpdated) EventName() string {
	return "StatsUpdated"
}

// StageParsed is published when the current stage counter is read successfully.
type StageParsed struct {
	baseSessionEvent
	Stage int
}

func NewStageParsed(sessionID string, stage int) *StageParsed {
	return &StageParsed{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Stage:            stage,
	}
}

func (e *StageParsed) EventName() string {
	return "StageParsed"
}

// ActionSkipped is published when an action failed to find an expected screen
// element within its retry budget and was skipped for this tick.
type ActionSkipped struct {
	baseSessionEvent
	Action string
	Detail string
}

func NewActionSkipped(sessionID, action, detail string) *ActionSkipped {
	return &ActionSkipped{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Action:           action,
		Detail:           detail,
	}
}

func (e *ActionSkipped) EventName() string {
	return "ActionSkipped"
}

// RecoveryTriggered is published when the transition resolver exhausted its
// retry budget and a game/emulator restart was initiated.
type RecoveryTriggered struct {
	baseSessionEvent
	Forced bool
}

func NewRecoveryTriggered(sessionID string, forced bool) *RecoveryTriggered {
	return &RecoveryTriggered{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Forced:           forced,
	}
}

func (e *RecoveryTriggered) EventName() string {
	return "RecoveryTriggered"
}
