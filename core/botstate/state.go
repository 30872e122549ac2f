// Package botstate defines the bot session state machine.
package botstate

import "fmt"

// State represents the lifecycle state of a bot session.
type State int

const (
	// StateIdle is the initial state before the session starts.
	StateIdle State = iota
	// StateStarting indicates the session is binding its window and warming up.
	StateStarting
	// StateRunning indicates the main loop is executing game actions.
	StateRunning
	// StatePaused indicates the loop is idling until a resume command arrives.
	StatePaused
	// StateStopping indicates the session is shutting down (stats flush in progress).
	StateStopping
	// StateStopped indicates the session has been terminated.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Key is the current state, value is a list of valid target states.
var validTransitions = map[State][]State{
	StateIdle:     {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateStopped},
	StateRunning:  {StatePaused, StateStopping},
	StatePaused:   {StateRunning, StateStopping},
	StateStopping: {StateStopped},
	StateStopped:  {}, // Terminal state, no transitions allowed
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s State) CanTransitionTo(target State) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the list of valid target states from the current state.
func (s State) ValidTransitions() []State {
	return validTransitions[s]
}

// IsTerminal returns true if the state is a terminal state (no further transitions).
func (s State) IsTerminal() bool {
	return s == StateStopped
}

// IsActive returns true if the session is in an active state (not idle or stopped).
func (s State) IsActive() bool {
	return s != StateIdle && s != StateStopped
}

// CanAcceptCommands returns true if the session processes queued commands in this state.
func (s State) CanAcceptCommands() bool {
	return s == StateRunning || s == StatePaused
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From   State
	To     State
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from, to State, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}
