// Package application provides the application layer orchestrating bot
// sessions: one coordinator owning many independent session actors.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tapdash/application/session"
	"tapdash/core/command"
	"tapdash/core/event"
	"tapdash/core/eventbus"
)

// SessionFactory builds a ready-to-start session for an emulator
// instance. The coordinator assigns the session ID; the factory wires
// the bot against the instance's window.
type SessionFactory func(id, instance string) (*session.Session, error)

// Coordinator manages the running sessions, one per emulator instance.
// Sessions share nothing; the coordinator only creates, routes to and
// removes them.
type Coordinator struct {
	sessions   map[string]*session.Session // keyed by instance name
	byID       map[string]*session.Session
	sessionsMu sync.RWMutex

	bus     eventbus.Bus
	factory SessionFactory
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// CoordinatorConfig holds the coordinator's collaborators.
type CoordinatorConfig struct {
	Bus     eventbus.Bus
	Factory SessionFactory
	Logger  *slog.Logger
}

// NewCoordinator creates a coordinator and subscribes it to session
// lifecycle events.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		sessions: make(map[string]*session.Session),
		byID:     make(map[string]*session.Session),
		bus:      cfg.Bus,
		factory:  cfg.Factory,
		log:      cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if c.bus != nil {
		c.bus.Subscribe(c.handleEvent)
	}

	return c
}

// StartInstance creates and starts a session for an emulator instance.
// One session per instance; starting an occupied instance is an error.
func (c *Coordinator) StartInstance(instance string) (*session.Session, error) {
	c.sessionsMu.Lock()
	if _, exists := c.sessions[instance]; exists {
		c.sessionsMu.Unlock()
		return nil, fmt.Errorf("instance %s already has a running session", instance)
	}
	// Reserve the slot while the session is being built so a concurrent
	// start of the same instance fails instead of racing.
	c.sessions[instance] = nil
	c.sessionsMu.Unlock()

	id := uuid.NewString()
	sess, err := c.factory(id, instance)
	if err == nil {
		err = sess.Start()
	}
	if err != nil {
		c.sessionsMu.Lock()
		delete(c.sessions, instance)
		c.sessionsMu.Unlock()
		return nil, fmt.Errorf("failed to start session on %s: %w", instance, err)
	}

	c.sessionsMu.Lock()
	c.sessions[instance] = sess
	c.byID[id] = sess
	c.sessionsMu.Unlock()

	c.log.Info("session created", "session_id", id, "instance", instance)
	return sess, nil
}

// StopInstance stops the session running on an emulator instance.
func (c *Coordinator) StopInstance(instance string) error {
	c.sessionsMu.Lock()
	sess, exists := c.sessions[instance]
	if exists {
		delete(c.sessions, instance)
		if sess != nil {
			delete(c.byID, sess.ID())
		}
	}
	c.sessionsMu.Unlock()

	if !exists || sess == nil {
		return fmt.Errorf("no session on instance %s", instance)
	}

	sess.Stop()
	c.log.Info("session stopped", "instance", instance)
	return nil
}

// StopAll stops every session in parallel, waiting with a timeout.
func (c *Coordinator) StopAll() {
	c.sessionsMu.Lock()
	sessions := make([]*session.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		if s != nil {
			sessions = append(sessions, s)
		}
	}
	c.sessions = make(map[string]*session.Session)
	c.byID = make(map[string]*session.Session)
	c.sessionsMu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(sess *session.Session) {
			defer wg.Done()
			sess.Stop()
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(15 * time.Second):
		c.log.Warn("stop timeout, some sessions may not have stopped cleanly")
	}

	c.log.Info("all sessions stopped", "count", len(sessions))
}

// Stop shuts the coordinator down together with all its sessions.
func (c *Coordinator) Stop() {
	c.cancel()
	c.StopAll()
	c.log.Info("coordinator stopped")
}

// Dispatch routes a session command to its target session.
func (c *Coordinator) Dispatch(cmd command.Command) error {
	c.log.Debug("dispatching command", "command", cmd.CommandName())

	sessionCmd, ok := cmd.(command.SessionCommand)
	if !ok {
		return fmt.Errorf("command %s has no session target", cmd.CommandName())
	}

	sess := c.GetSession(sessionCmd.SessionID())
	if sess == nil {
		return fmt.Errorf("session not found: %s", sessionCmd.SessionID())
	}
	return sess.Send(cmd)
}

// Broadcast sends a command to every session that accepts commands,
// built per session by the given constructor.
func (c *Coordinator) Broadcast(build func(sessionID string) command.Command) {
	for _, sess := range c.Sessions() {
		if !sess.State().CanAcceptCommands() {
			continue
		}
		if err := sess.Send(build(sess.ID())); err != nil {
			c.log.Warn("broadcast delivery failed", "session_id", sess.ID(), "error", err)
		}
	}
}

// GetSession returns a session by its ID, nil when unknown.
func (c *Coordinator) GetSession(id string) *session.Session {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()
	return c.byID[id]
}

// InstanceSession returns the session running on an instance, nil when
// the instance is free.
func (c *Coordinator) InstanceSession(instance string) *session.Session {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()
	return c.sessions[instance]
}

// Sessions returns all current sessions.
func (c *Coordinator) Sessions() []*session.Session {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()

	sessions := make([]*session.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		if s != nil {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// SessionCount returns the number of live sessions.
func (c *Coordinator) SessionCount() int {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()
	n := 0
	for _, s := range c.sessions {
		if s != nil {
			n++
		}
	}
	return n
}

// Wait blocks until every session's loop has finished. Used by the
// entry point after a shutdown signal.
func (c *Coordinator) Wait() {
	for _, s := range c.Sessions() {
		s.Wait()
	}
}

// handleEvent removes sessions that ended on their own (terminate
// command, desync, panic) so their instance becomes free again.
func (c *Coordinator) handleEvent(e event.Event) {
	ended, ok := e.(*event.SessionEnded)
	if !ok {
		return
	}

	c.sessionsMu.Lock()
	defer c.sessionsMu.Unlock()

	sess, known := c.byID[ended.SessionID()]
	if !known {
		return
	}
	delete(c.byID, ended.SessionID())
	for instance, s := range c.sessions {
		if s == sess {
			delete(c.sessions, instance)
			break
		}
	}
	c.log.Info("ended session removed", "session_id", ended.SessionID(), "reason", ended.Reason)
}
