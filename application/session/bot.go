package session

import (
	"context"
	"image"
	"log/slog"
	"math/rand"
	"time"

	"tapdash/core/command"
	"tapdash/core/event"
	"tapdash/core/eventbus"
	"tapdash/domain/artifact"
	"tapdash/domain/config"
	"tapdash/domain/prestige"
	"tapdash/domain/profile"
	"tapdash/infrastructure/input"
	"tapdash/infrastructure/ocr"
	"tapdash/infrastructure/screen"
)

const (
	// bossLoopMax bounds the fight/leave boss click loops.
	bossLoopMax = 20

	// funcLoopMax bounds every other retry loop that waits for a screen
	// element to appear.
	funcLoopMax = 40
)

// OptionsSource yields the current configuration snapshot. Satisfied by
// config.Store; tests use a fixed snapshot.
type OptionsSource interface {
	Snapshot() *config.Options
}

// BotDeps are the collaborators a Bot is wired with at session start.
type BotDeps struct {
	SessionID string
	Instance  string
	Config    OptionsSource
	Profile   *profile.Profile
	Grabber   *screen.Grabber
	Input     input.Dispatcher
	Recognizer ocr.Recognizer
	Sink      StatsSink
	Bus       eventbus.Bus
	Catalog   *artifact.Catalog
	Log       *slog.Logger
}

// Bot executes game actions against the emulator: capture, decide,
// click. One instance per session; every method runs on the session
// goroutine.
type Bot struct {
	sessionID string
	instance  string

	cfg      OptionsSource
	prof     *profile.Profile
	grabber  *screen.Grabber
	input    input.Dispatcher
	reader   *StatsReader
	resolver *Resolver
	decision *prestige.Decision
	sink     StatsSink
	bus      eventbus.Bus
	catalog  *artifact.Catalog

	state     *RunState
	scheduler *Scheduler
	log       *slog.Logger

	// ctx bounds sink writes; replaced by the session when it starts.
	ctx context.Context

	now   func() time.Time
	sleep func(time.Duration)
	rng   *rand.Rand
}

// NewBot wires a bot from its dependencies and primes the run state and
// schedule from the current configuration snapshot.
func NewBot(d BotDeps) *Bot {
	b := &Bot{
		sessionID: d.SessionID,
		instance:  d.Instance,
		cfg:       d.Config,
		prof:      d.Profile,
		grabber:   d.Grabber,
		input:     d.Input,
		sink:      d.Sink,
		bus:       d.Bus,
		catalog:   d.Catalog,
		log:       d.Log,
		ctx:       context.Background(),
		now:       time.Now,
		sleep:     time.Sleep,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	b.reader = NewStatsReader(d.Grabber, d.Recognizer, d.Profile, d.Log)
	b.resolver = NewResolver(d.Grabber, d.Input, b.reader, d.Profile, d.Log)
	b.scheduler = NewScheduler(d.Log)

	opts := d.Config.Snapshot()
	now := b.now()
	b.state = NewRunState(now)
	b.decision = prestige.NewDecision(prestigeRules(opts), d.Log)

	b.scheduler.Configure(command.ActionRunActions,
		time.Duration(opts.RunActionsEveryXSecs)*time.Second, now, opts.RunActionsOnStart)

	statsInterval := time.Duration(opts.UpdateStatsEveryXMins) * time.Minute
	if !opts.EnableStats {
		statsInterval = 0
	}
	b.scheduler.Configure(command.ActionUpdateStats, statsInterval, now, opts.UpdateStatsOnStart)

	achievementInterval := time.Duration(opts.DailyAchievementsEveryXHours) * time.Hour
	if !opts.EnableDailyAchievements {
		achievementInterval = 0
	}
	b.scheduler.Configure(command.ActionDailyAchievements, achievementInterval, now, opts.DailyAchievementsCheckOnStart)

	raidInterval := time.Duration(opts.RaidParseEveryXHours) * time.Hour
	if !opts.EnableRaidParse {
		raidInterval = 0
	}
	b.scheduler.Configure(command.ActionParseRaid, raidInterval, now, false)

	if opts.PrestigeXMinutes != 0 {
		b.state.NextTimedPrestige = now.Add(time.Duration(opts.PrestigeXMinutes) * time.Minute)
	}
	b.state.NextRecoveryReset = now.Add(time.Duration(opts.RecoveryCheckIntervalMinutes) * time.Minute)
	if opts.EnableBreaks {
		b.state.NextBreak = now.Add(b.breakInterval(opts))
	}
	b.resetSkillActivations(opts, now)

	return b
}

func prestigeRules(opts *config.Options) prestige.Rules {
	return prestige.Rules{
		Timer:             time.Duration(opts.PrestigeXMinutes) * time.Minute,
		AtStage:           opts.PrestigeAtStage,
		AtMaxStage:        opts.PrestigeAtMaxStage,
		MaxStagePercent:   opts.PrestigeAtMaxStagePct,
		Randomize:         opts.EnablePrestigeRandomize,
		RandomizeMinDelay: time.Duration(opts.PrestigeRandomMinMinutes) * time.Minute,
		RandomizeMaxDelay: time.Duration(opts.PrestigeRandomMaxMinutes) * time.Minute,
	}
}

// bindContext sets the context bounding the bot's sink writes.
func (b *Bot) bindContext(ctx context.Context) {
	b.ctx = ctx
}

// Resolve brings the game to a known screen before an action runs.
func (b *Bot) Resolve() error {
	return b.resolver.Resolve(b.cfg.Snapshot().EnablePremiumAdCollect)
}

// Reader exposes the stat reader for session-level queries.
func (b *Bot) Reader() *StatsReader { return b.reader }

// State exposes the run state for session-level queries.
func (b *Bot) State() *RunState { return b.state }

// PrimeArtifacts builds the upgrade rotation from the owned artifact
// set. Called once after the initial stats update.
func (b *Bot) PrimeArtifacts(owned []string) {
	opts := b.cfg.Snapshot()
	list := artifact.BuildUpgradeList(b.catalog, owned, artifact.ListOptions{
		UpgradeTiers: opts.UpgradeOwnedTiers,
		Ignore:       opts.IgnoreArtifacts,
		Force:        opts.UpgradeArtifacts,
		Shuffle:      opts.ShuffleArtifacts,
	}, b.log)

	b.state.Rotation = artifact.NewRotation(list)
	if next, ok := b.state.Rotation.Advance(); ok {
		b.state.NextArtifact = next
		b.log.Info("next artifact upgrade selected", "artifact", next)
	}
}

// search looks for a template on the current screen. A broken search
// (unknown template, capture failure) is logged and counted as an
// error, then treated as a miss.
func (b *Bot) search(name string) (image.Point, bool) {
	pt, found, err := b.grabber.Search(name, nil, templatePrecision)
	if err != nil {
		b.log.Error("template search failed", "template", name, "error", err)
		b.state.Errors++
		return image.Point{}, false
	}
	return pt, found
}

// searchRegion restricts the template search to a named profile region.
func (b *Bot) searchRegion(name, regionName string) (image.Point, bool) {
	region, ok := b.prof.Region(regionName)
	if !ok {
		b.log.Error("profile has no region", "region", regionName)
		return image.Point{}, false
	}
	pt, found, err := b.grabber.Search(name, &region, templatePrecision)
	if err != nil {
		b.log.Error("template search failed", "template", name, "error", err)
		b.state.Errors++
		return image.Point{}, false
	}
	return pt, found
}

// click dispatches a click on a named profile point. A missing point is
// a profile defect, logged and skipped.
func (b *Bot) click(pointName string, opts input.ClickOptions) bool {
	pt, ok := b.prof.Point(pointName)
	if !ok {
		b.log.Error("profile has no point", "point", pointName)
		return false
	}
	b.input.ClickPoint(pt, opts)
	return true
}

// drag dispatches a drag between two named profile points.
func (b *Bot) drag(fromName, toName string, settle time.Duration) bool {
	from, ok := b.prof.Point(fromName)
	if !ok {
		b.log.Error("profile has no point", "point", fromName)
		return false
	}
	to, ok := b.prof.Point(toName)
	if !ok {
		b.log.Error("profile has no point", "point", toName)
		return false
	}
	b.input.Drag(from, to, settle)
	return true
}

// skip records an action giving up on this tick: the error counter is
// bumped and an ActionSkipped event published.
func (b *Bot) skip(action command.ActionID, detail string) {
	b.log.Warn("action skipped", "action", action, "detail", detail)
	b.state.Errors++
	b.bus.Publish(event.NewActionSkipped(b.sessionID, string(action), detail))
}

func (b *Bot) breakInterval(opts *config.Options) time.Duration {
	interval := time.Duration(opts.BreaksEveryXMinutes) * time.Minute
	if opts.BreaksJitterMinutes > 0 {
		interval += time.Duration(b.rng.Intn(opts.BreaksJitterMinutes)) * time.Minute
	}
	return interval
}

func (b *Bot) resetSkillActivations(opts *config.Options, now time.Time) {
	for name, interval := range skillIntervals(opts) {
		if interval == 0 {
			b.log.Info("skill has interval zero, will not be activated", "skill", name)
			continue
		}
		b.state.NextSkillActivation[name] = now.Add(time.Duration(interval) * time.Second)
	}
}
