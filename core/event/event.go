// Package event defines all events that can be published by a bot session.
// Events represent state changes and outcomes and are consumed by the
// coordinator and any attached observers (dashboard bridge, tests).
package event

import "tapdash/core/botstate"

// Event is the base interface for all events.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// SessionEvent is an event that originates from a specific session.
type SessionEvent interface {
	Event
	// SessionID returns the source session ID
	SessionID() string
}

// baseSessionEvent provides common implementation for session events.
type baseSessionEvent struct {
	sessionID string
}

func (e *baseSessionEvent) SessionID() string {
	return e.sessionID
}

// SessionStarted is published when a session's run loop begins.
type SessionStarted struct {
	baseSessionEvent
	Instance string
}

func NewSessionStarted(sessionID, instance string) *SessionStarted {
	return &SessionStarted{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Instance:         instance,
	}
}

func (e *SessionStarted) EventName() string {
	return "SessionStarted"
}

// StopReason indicates why a session ended.
type StopReason int

const (
	// StopReasonManual indicates the session was terminated by the user.
	StopReasonManual StopReason = iota
	// StopReasonError indicates an unexpected error ended the session.
	StopReasonError
	// StopReasonDesync indicates the transition resolver exhausted its retry
	// budget and recovery was not configured.
	StopReasonDesync
)

func (r StopReason) String() string {
	switch r {
	case StopReasonManual:
		return "Manual"
	case StopReasonError:
		return "Error"
	case StopReasonDesync:
		return "Desync"
	default:
		return "Unknown"
	}
}

// SessionEnded is published when a session stops. The persisted session
// record has already been placed in a terminal state when this fires.
type SessionEnded struct {
	baseSessionEvent
	Reason StopReason
	Error  error // Non-nil if Reason is StopReasonError
}

func NewSessionEnded(sessionID string, reason StopReason, err error) *SessionEnded {
	return &SessionEnded{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		Reason:           reason,
		Error:            err,
	}
}

func (e *SessionEnded) EventName() string {
	return "SessionEnded"
}

// StateChanged is published when a session's lifecycle state changes.
type StateChanged struct {
	baseSessionEvent
	OldState botstate.State
	NewState botstate.State
}

func NewStateChanged(sessionID string, oldState, newState botstate.State) *StateChanged {
	return &StateChanged{
		baseSessionEvent: baseSessionEvent{sessionID: sessionID},
		OldState:         oldState,
		NewState:         newState,
	}
}

func (e *StateChanged) EventName() string {
	return "StateChanged"
}
