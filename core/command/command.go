// Package command defines the commands that can be sent to a running bot session.
// Commands represent user intentions (dashboard buttons, keyboard shortcuts) and are
// processed serially by the session between game actions.
package command

// Command is the base interface for all commands.
type Command interface {
	// CommandName returns the name of the command for logging/debugging
	CommandName() string
}

// SessionCommand is a command that targets a specific session.
type SessionCommand interface {
	Command
	// SessionID returns the target session ID
	SessionID() string
}

// baseSessionCommand provides common implementation for session commands.
type baseSessionCommand struct {
	sessionID string
}

func (c *baseSessionCommand) SessionID() string {
	return c.sessionID
}

// Pause freezes the session loop. The scheduler is frozen, not reset; pending
// due times are not shifted by the paused duration.
type Pause struct {
	baseSessionCommand
}

func NewPause(sessionID string) *Pause {
	return &Pause{baseSessionCommand{sessionID}}
}

func (c *Pause) CommandName() string { return "pause" }

// Resume continues a paused session loop.
type Resume struct {
	baseSessionCommand
}

func NewResume(sessionID string) *Resume {
	return &Resume{baseSessionCommand{sessionID}}
}

func (c *Resume) CommandName() string { return "resume" }

// Terminate ends the session at the next loop iteration boundary.
type Terminate struct {
	baseSessionCommand
}

func NewTerminate(sessionID string) *Terminate {
	return &Terminate{baseSessionCommand{sessionID}}
}

func (c *Terminate) CommandName() string { return "terminate" }

// SoftTerminate flushes statistics before ending the session.
type SoftTerminate struct {
	baseSessionCommand
}

func NewSoftTerminate(sessionID string) *SoftTerminate {
	return &SoftTerminate{baseSessionCommand{sessionID}}
}

func (c *SoftTerminate) CommandName() string { return "soft_terminate" }

// RunAction queues a single bot action for execution after the current
// action finishes. Forceable actions run with their due-time check bypassed.
type RunAction struct {
	baseSessionCommand
	Action ActionID
}

func NewRunAction(sessionID string, action ActionID) *RunAction {
	return &RunAction{baseSessionCommand{sessionID}, action}
}

func (c *RunAction) CommandName() string { return "run_action:" + string(c.Action) }
