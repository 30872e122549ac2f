package session

import (
	"errors"
	"fmt"
	"time"

	"tapdash/core/command"
	"tapdash/core/event"
)

// run is the game loop. One iteration resolves the screen, walks the
// per-tick action order, then executes any queued commands.
func (s *Session) run() {
	defer s.wg.Done()
	defer s.cleanup()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.stopReason = event.StopReasonError
		s.stopErr = fmt.Errorf("session loop panic: %v", r)
		s.log.Error("session loop panicked", "panic", r)

		opts := s.bot.cfg.Snapshot()
		if opts.SoftShutdownOnCriticalError && opts.SoftShutdownUpdateStats {
			s.log.Info("attempting final statistics flush before shutdown")
			func() {
				defer func() { recover() }()
				s.bot.UpdateStats()
			}()
		}
	}()

	s.startup()

	pauseLogAt := s.bot.now().Add(5 * time.Second)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.drainCommands()
		if s.terminated {
			return
		}

		if s.paused {
			if now := s.bot.now(); now.After(pauseLogAt) {
				s.log.Info("session paused, waiting for resume")
				pauseLogAt = now.Add(5 * time.Second)
			}
			s.bot.sleep(s.tick)
			continue
		}

		if s.inBreak() {
			s.bot.sleep(s.tick)
			continue
		}

		s.tickOnce()
		s.runQueued()
		s.bot.sleep(s.tick)
	}
}

// startup runs the on-start actions. Scheduled actions with their
// run-on-start flag are already due and fire on the first tick; only
// the unscheduled ones need explicit handling here.
func (s *Session) startup() {
	b := s.bot
	opts := b.cfg.Snapshot()

	if err := b.Resolve(); err != nil {
		s.log.Warn("initial screen resolve failed", "error", err)
	}
	b.gotoMaster(true, true)

	if opts.ActivateSkillsOnStart {
		b.ActivateSkills(true)
	}
	if opts.EnableArtifactPurchase {
		b.ParseArtifacts()
	}
}

// tickOnce performs one pass of the per-tick action order.
func (s *Session) tickOnce() {
	b := s.bot

	if err := b.Resolve(); err != nil {
		if errors.Is(err, ErrDesync) {
			opts := b.cfg.Snapshot()
			if opts.EnableRecovery {
				b.Recover(true)
				return
			}
			s.log.Error("screen desynced and recovery is disabled, stopping session")
			s.terminated = true
			s.stopReason = event.StopReasonDesync
			s.stopErr = err
			return
		}
		s.log.Warn("screen resolve failed", "error", err)
		b.state.Errors++
		return
	}

	now := b.now()

	b.gotoMaster(true, true)
	s.settle()
	b.FightBoss()
	s.settle()
	b.ClanCrate()
	s.settle()
	b.Tap()
	s.settle()
	b.CollectAd()
	s.settle()
	b.ParseStage()
	s.settle()
	b.Prestige(false)
	s.settle()

	if b.scheduler.Due(command.ActionDailyAchievements, now) {
		b.DailyAchievements()
		b.scheduler.Recalculate(command.ActionDailyAchievements, b.now())
		s.settle()
	}
	if b.scheduler.Due(command.ActionRunActions, now) {
		b.RunActions()
		b.scheduler.Recalculate(command.ActionRunActions, b.now())
		s.settle()
	}

	b.ActivateSkills(false)
	s.settle()

	if b.scheduler.Due(command.ActionUpdateStats, now) {
		b.UpdateStats()
		b.scheduler.Recalculate(command.ActionUpdateStats, b.now())
		s.settle()
	}
	if b.scheduler.Due(command.ActionParseRaid, now) {
		b.ParseRaid()
		b.scheduler.Recalculate(command.ActionParseRaid, b.now())
		s.settle()
	}

	b.Recover(false)
}

// runQueued executes the actions queued through RunAction commands.
func (s *Session) runQueued() {
	if len(s.queued) == 0 {
		return
	}
	queued := s.queued
	s.queued = nil

	for _, id := range queued {
		s.log.Info("executing queued action", "action", id)
		s.dispatch(id)
		s.settle()
	}
}

// dispatch runs a single action by ID. Queued actions always run
// forced where the action supports it.
func (s *Session) dispatch(id command.ActionID) {
	b := s.bot
	switch id {
	case command.ActionFightBoss:
		b.FightBoss()
	case command.ActionLeaveBoss:
		b.LeaveBoss()
	case command.ActionTap:
		b.Tap()
	case command.ActionCollectAd:
		b.CollectAd()
	case command.ActionClanCrate:
		b.ClanCrate()
	case command.ActionParseStage:
		b.ParseStage()
	case command.ActionPrestige:
		b.Prestige(true)
	case command.ActionDailyAchievements:
		b.DailyAchievements()
		b.scheduler.Recalculate(id, b.now())
	case command.ActionRunActions:
		b.RunActions()
		b.scheduler.Recalculate(id, b.now())
	case command.ActionActivateSkills:
		b.ActivateSkills(true)
	case command.ActionUpdateStats:
		b.UpdateStats()
		b.scheduler.Recalculate(id, b.now())
	case command.ActionParseRaid:
		b.ParseRaid()
		b.scheduler.Recalculate(id, b.now())
	case command.ActionLevelMaster:
		b.LevelMaster()
	case command.ActionLevelHeroes:
		b.LevelHeroes()
	case command.ActionLevelSkills:
		b.LevelSkills()
	case command.ActionUpgradeArtifact:
		b.UpgradeArtifact()
	case command.ActionParseArtifacts:
		b.ParseArtifacts()
	case command.ActionDailyRewards:
		b.DailyRewards()
	case command.ActionHatchEggs:
		b.HatchEggs()
	case command.ActionRecover:
		b.Recover(true)
	default:
		s.log.Warn("queued action has no handler", "action", id)
	}
}

// settle applies the configured post-action wait window.
func (s *Session) settle() {
	opts := s.bot.cfg.Snapshot()
	min, max := opts.PostActionMinWaitTime, opts.PostActionMaxWaitTime
	if max < min {
		max = min
	}
	secs := min
	if max > min {
		secs = min + s.bot.rng.Intn(max-min+1)
	}
	if secs > 0 {
		s.bot.sleep(time.Duration(secs) * time.Second)
	}
}

// inBreak reports whether the session is inside a scheduled break,
// starting one when its time has come. Breaks suspend the loop without
// freezing command processing.
func (s *Session) inBreak() bool {
	opts := s.bot.cfg.Snapshot()
	if !opts.EnableBreaks {
		return false
	}
	st := s.bot.state
	now := s.bot.now()

	if !st.BreakEndsAt.IsZero() && now.Before(st.BreakEndsAt) {
		return true
	}
	if !st.NextBreak.IsZero() && now.After(st.NextBreak) {
		length := time.Duration(opts.BreaksLengthMinutes) * time.Minute
		if opts.BreaksJitterMinutes > 0 {
			length += time.Duration(s.bot.rng.Intn(opts.BreaksJitterMinutes)) * time.Minute
		}
		st.BreakEndsAt = now.Add(length)
		st.NextBreak = st.BreakEndsAt.Add(s.bot.breakInterval(opts))
		s.log.Info("taking a break", "length", length, "resumes_at", st.BreakEndsAt)
		return true
	}
	return false
}
