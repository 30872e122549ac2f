// Package session runs one bot instance as an actor: a single goroutine
// owning the game loop, with commands delivered through a buffered
// channel and processed between ticks.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tapdash/core/botstate"
	"tapdash/core/command"
	"tapdash/core/event"
	"tapdash/core/eventbus"
	"tapdash/infrastructure/repository"
)

// Session drives one bot against one emulator window. Commands arrive
// on a buffered channel and are drained between game actions, so the
// loop never handles input mid-click.
type Session struct {
	id       string
	instance string
	version  string

	state   botstate.State
	stateMu sync.RWMutex

	bot  *Bot
	sink StatsSink
	bus  eventbus.Bus
	log  *slog.Logger

	cmdChan chan command.Command
	queued  []command.ActionID

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	paused     bool
	terminated bool
	stopReason event.StopReason
	stopErr    error

	// tick paces loop iterations; shortened in tests.
	tick time.Duration
}

// Config holds everything needed to create a Session.
type Config struct {
	ID            string
	Instance      string
	Version       string
	Bot           *Bot
	Sink          StatsSink
	Bus           eventbus.Bus
	Logger        *slog.Logger
	CommandBuffer int
	TickInterval  time.Duration
}

// New creates a session actor in the idle state.
func New(cfg *Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = 100
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:       cfg.ID,
		instance: cfg.Instance,
		version:  cfg.Version,
		state:    botstate.StateIdle,
		bot:      cfg.Bot,
		sink:     cfg.Sink,
		bus:      cfg.Bus,
		log:      cfg.Logger.With("session_id", cfg.ID, "instance", cfg.Instance),
		cmdChan:  make(chan command.Command, cfg.CommandBuffer),
		ctx:      ctx,
		cancel:   cancel,
		tick:     cfg.TickInterval,
	}
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Instance returns the emulator instance name this session drives.
func (s *Session) Instance() string { return s.instance }

// State returns the current lifecycle state.
func (s *Session) State() botstate.State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Start persists the session record and launches the game loop.
func (s *Session) Start() error {
	if err := s.transitionTo(botstate.StateStarting); err != nil {
		return err
	}

	if err := s.sink.StartSession(s.ctx, s.id, s.instance, s.bot.cfg.Snapshot().Name, s.version); err != nil {
		s.transitionTo(botstate.StateStopped)
		return fmt.Errorf("failed to persist session record: %w", err)
	}

	s.bot.bindContext(s.ctx)
	s.publishEvent(event.NewSessionStarted(s.id, s.instance))

	if err := s.transitionTo(botstate.StateRunning); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.run()
	s.log.Info("session started")
	return nil
}

// Stop cancels the session and waits for the loop to finish.
func (s *Session) Stop() {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("session stopped")
	case <-time.After(10 * time.Second):
		s.log.Warn("session stop timeout")
	}
}

// Send delivers a command to the session. Fails when the session is
// stopped or its queue is full.
func (s *Session) Send(cmd command.Command) error {
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("session is stopped")
	default:
	}

	select {
	case s.cmdChan <- cmd:
		return nil
	default:
		return fmt.Errorf("command queue full")
	}
}

// Wait blocks until the game loop has fully finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) transitionTo(newState botstate.State) error {
	s.stateMu.Lock()
	oldState := s.state
	if !oldState.CanTransitionTo(newState) {
		s.stateMu.Unlock()
		return botstate.NewTransitionError(oldState, newState, "invalid transition")
	}
	s.state = newState
	s.stateMu.Unlock()

	s.publishEvent(event.NewStateChanged(s.id, oldState, newState))
	s.log.Info("state changed", "from", oldState, "to", newState)
	return nil
}

func (s *Session) publishEvent(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

// drainCommands processes every command currently queued, without
// blocking. Queued actions accumulate and run after the per-tick loop.
func (s *Session) drainCommands() {
	for {
		select {
		case cmd, ok := <-s.cmdChan:
			if !ok {
				return
			}
			s.processCommand(cmd)
		default:
			return
		}
	}
}

func (s *Session) processCommand(cmd command.Command) {
	s.log.Debug("processing command", "command", cmd.CommandName())

	switch c := cmd.(type) {
	case *command.Pause:
		if err := s.transitionTo(botstate.StatePaused); err != nil {
			s.log.Warn("cannot pause", "error", err)
			return
		}
		s.paused = true

	case *command.Resume:
		if err := s.transitionTo(botstate.StateRunning); err != nil {
			s.log.Warn("cannot resume", "error", err)
			return
		}
		s.paused = false

	case *command.Terminate:
		s.log.Info("terminate requested")
		s.terminated = true
		s.stopReason = event.StopReasonManual

	case *command.SoftTerminate:
		s.log.Info("soft terminate requested, flushing statistics first")
		if s.bot.cfg.Snapshot().SoftShutdownUpdateStats {
			s.bot.UpdateStats()
		}
		s.terminated = true
		s.stopReason = event.StopReasonManual

	case *command.RunAction:
		if !command.Queueable(c.Action) {
			s.log.Warn("action is not queueable", "action", c.Action)
			return
		}
		s.log.Info("action queued", "action", c.Action)
		s.queued = append(s.queued, c.Action)

	default:
		s.log.Warn("unknown command", "command", fmt.Sprintf("%T", cmd))
	}
}

// cleanup places the session record in a terminal state and publishes
// the end event. Runs exactly once when the loop exits.
func (s *Session) cleanup() {
	endState := repository.SessionStateStopped
	if s.stopReason == event.StopReasonError || s.stopReason == event.StopReasonDesync {
		endState = repository.SessionStateErrored
	}

	// The session context may already be cancelled; the record write
	// gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.EndSession(ctx, s.id, endState); err != nil {
		s.log.Error("failed to finalize session record", "error", err)
	}

	if s.State() != botstate.StateStopped {
		if s.State() != botstate.StateStopping {
			s.transitionTo(botstate.StateStopping)
		}
		s.transitionTo(botstate.StateStopped)
	}
	s.publishEvent(event.NewSessionEnded(s.id, s.stopReason, s.stopErr))
}
