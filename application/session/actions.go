package session

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"time"

	"tapdash/core/command"
	"tapdash/core/event"
	"tapdash/domain/config"
	"tapdash/domain/prestige"
	"tapdash/domain/stats"
	"tapdash/infrastructure/input"
)

// skillNames are the sword master skills in panel order. Each has a
// "skill_<name>" region and point in the profile, plus a game-screen
// activation point under its bare name.
var skillNames = []string{
	"heavenly_strike", "deadly_strike", "hand_of_midas",
	"fire_sword", "war_cry", "shadow_clone",
}

func skillIntervals(opts *config.Options) map[string]int {
	return map[string]int{
		"heavenly_strike": opts.IntervalHeavenlyStrike,
		"deadly_strike":   opts.IntervalDeadlyStrike,
		"hand_of_midas":   opts.IntervalHandOfMidas,
		"fire_sword":      opts.IntervalFireSword,
		"war_cry":         opts.IntervalWarCry,
		"shadow_clone":    opts.IntervalShadowClone,
	}
}

// FightBoss clicks into the boss fight until the fight-boss button is
// gone. Gives up after the boss loop budget.
func (b *Bot) FightBoss() bool {
	for loops := 1; ; loops++ {
		if loops == bossLoopMax {
			b.skip(command.ActionFightBoss, "fight boss button would not go away")
			return false
		}
		if _, found := b.search("fight_boss"); !found {
			return true
		}
		b.log.Info("initiating boss fight", "attempt", loops, "max", bossLoopMax)
		b.click("fight_boss", input.ClickOptions{Settle: 800 * time.Millisecond})
	}
}

// LeaveBoss clicks out of the boss fight until the fight-boss button is
// visible again, then waits out any transition.
func (b *Bot) LeaveBoss() bool {
	for loops := 1; ; loops++ {
		if loops == bossLoopMax {
			b.skip(command.ActionLeaveBoss, "could not leave the boss fight")
			return false
		}
		if _, found := b.search("fight_boss"); found {
			break
		}
		b.log.Info("leaving boss fight", "attempt", loops, "max", bossLoopMax)
		b.click("fight_boss", input.ClickOptions{Settle: 800 * time.Millisecond})
	}

	// A stage transition can follow right after leaving.
	b.sleep(3 * time.Second)
	return true
}

// Tap runs the tap grid across the game area, catching fairies and
// dropped loot. Every fifth tap checks for an ad prompt, which takes
// priority over finishing the grid.
func (b *Bot) Tap() {
	opts := b.cfg.Snapshot()
	if !opts.EnableTapping {
		return
	}
	grid, ok := b.prof.Grid("fairies")
	if !ok {
		b.log.Error("profile has no fairies grid")
		return
	}

	b.log.Info("tapping")
	taps := 0
	for _, pt := range grid {
		taps++
		if taps == 5 {
			if _, found := b.search("collect_ad"); found {
				b.resolver.DismissAds(opts.EnablePremiumAdCollect)
				return
			}
			taps = 0
		}
		b.input.ClickPoint(pt, input.ClickOptions{})
	}

	// A fairy clicked on the last tap may still open a prompt.
	b.sleep(2 * time.Second)
}

// CollectAd resolves any ad prompt currently on screen.
func (b *Bot) CollectAd() {
	b.resolver.DismissAds(b.cfg.Snapshot().EnablePremiumAdCollect)
}

// ClanCrate checks for a clan crate and collects it when present.
func (b *Bot) ClanCrate() bool {
	if !b.cfg.Snapshot().EnableClanCrates {
		return false
	}
	if !b.gotoMaster(true, true) {
		return false
	}

	b.click("clan_crate", input.ClickOptions{Settle: 500 * time.Millisecond})
	pos, found := b.search("okay")
	if found {
		b.log.Info("clan crate found, collecting")
		b.input.ClickAt(pos, input.ClickOptions{Settle: time.Second})
	}
	return found
}

// ParseRaid opens the clan raid screen and reads when attack rounds
// reset next, keeping the time in the run state.
func (b *Bot) ParseRaid() bool {
	if !b.cfg.Snapshot().EnableRaidParse {
		return false
	}
	if !b.gotoMaster(true, true) {
		return false
	}

	b.log.Info("parsing clan raid attack reset")
	b.click("clan_open", input.ClickOptions{Settle: 2 * time.Second})
	b.click("clan_raid", input.ClickOptions{Settle: 2 * time.Second})

	if _, found := b.search("clan_no_raid"); found {
		b.log.Info("no clan raid is active")
		b.click("close_top", input.ClickOptions{Settle: time.Second})
		return false
	}

	resetAt, ok := b.reader.RaidAttacksReset(b.now())
	if ok {
		b.state.RaidAttacksResetAt = resetAt
		b.log.Info("clan raid attacks reset", "reset_at", resetAt)
	} else {
		b.skip(command.ActionParseRaid, "raid reset counter unreadable")
	}
	b.click("close_top", input.ClickOptions{Settle: time.Second})
	return ok
}

// DailyRewards collects the daily gift box when its indicator shows.
func (b *Bot) DailyRewards() bool {
	if !b.cfg.Snapshot().EnableDailyRewards {
		return false
	}
	if !b.gotoMaster(true, true) {
		return false
	}

	if _, found := b.search("daily_reward"); !found {
		return false
	}
	b.log.Info("daily rewards available, collecting")
	b.click("open_rewards", input.ClickOptions{Settle: time.Second})
	b.click("collect_rewards", input.ClickOptions{Settle: time.Second})
	b.click("game_middle", input.ClickOptions{Clicks: 5, Interval: 500 * time.Millisecond, Settle: time.Second})
	b.click("screen_top", input.ClickOptions{Settle: time.Second})
	return true
}

// HatchEggs hatches any available pet eggs.
func (b *Bot) HatchEggs() bool {
	if !b.cfg.Snapshot().EnableEggCollection {
		return false
	}
	if !b.gotoMaster(true, true) {
		return false
	}

	if _, found := b.search("hatch_egg"); !found {
		return false
	}
	b.log.Info("eggs available, hatching")
	b.click("hatch_egg", input.ClickOptions{Settle: time.Second})
	b.click("game_middle", input.ClickOptions{Clicks: 5, Interval: 500 * time.Millisecond, Settle: time.Second})
	return true
}

// DailyAchievements opens the achievements screen and collects every
// completed daily achievement.
func (b *Bot) DailyAchievements() bool {
	if !b.gotoMaster(true, true) {
		return false
	}
	if !b.LeaveBoss() {
		return false
	}

	b.log.Info("checking daily achievements")
	b.click("achievements", input.ClickOptions{Settle: 2 * time.Second})

	for loops := 0; loops < funcLoopMax; loops++ {
		pos, found := b.search("daily_collect")
		if !found {
			break
		}
		b.log.Info("completed daily achievement found, collecting")
		b.input.ClickAt(pos, input.ClickOptions{Settle: 2 * time.Second})
		b.click("game_middle", input.ClickOptions{Clicks: 5, Settle: time.Second})
		b.sleep(2 * time.Second)
	}

	b.click("screen_top", input.ClickOptions{Clicks: 3})
	return true
}

// LevelMaster levels the sword master with the configured intensity.
func (b *Bot) LevelMaster() bool {
	opts := b.cfg.Snapshot()
	if !opts.EnableMaster {
		return false
	}
	if !b.gotoMaster(false, true) {
		return false
	}

	b.log.Info("levelling the sword master", "clicks", opts.MasterLevelIntensity)
	b.click("master_level", input.ClickOptions{Clicks: opts.MasterLevelIntensity})
	return true
}

// LevelHeroes levels the hero list. When a max-level hero shows at the
// top of the panel everything below is maxed too, so only the first
// rows are levelled; otherwise the whole list is scrolled and levelled.
func (b *Bot) LevelHeroes() bool {
	opts := b.cfg.Snapshot()
	if !opts.EnableHeroes {
		return false
	}
	if !b.gotoHeroes(false, true) {
		return false
	}

	grid, ok := b.prof.Grid("level_heroes")
	if !ok {
		b.log.Error("profile has no level_heroes grid")
		return false
	}
	clickOpts := input.ClickOptions{Clicks: opts.HeroLevelIntensity, Interval: 70 * time.Millisecond}

	if _, found := b.search("max_level"); found {
		b.log.Info("max levelled hero found at top of panel, levelling only the first rows")
		for _, pt := range tailReversed(grid, 8) {
			b.input.ClickPoint(pt, clickOpts)
		}
		return true
	}

	b.log.Info("levelling first heroes in the list")
	for _, pt := range tailReversed(grid, 5) {
		b.input.ClickPoint(pt, clickOpts)
	}

	for i := 0; i < 5; i++ {
		b.drag("scroll_start", "scroll_bottom_end", time.Second)
	}

	b.log.Info("scrolling and levelling all heroes")
	for i := 0; i < 4; i++ {
		for _, pt := range grid {
			b.input.ClickPoint(pt, clickOpts)
		}
		if i != 3 {
			b.drag("drag_heroes_start", "drag_heroes_end", time.Second)
		}
	}
	return true
}

// tailReversed returns up to n points from the end of the grid in
// bottom-up order, skipping the very last row.
func tailReversed(grid []image.Point, n int) []image.Point {
	var out []image.Point
	for i := len(grid) - 2; i >= 0 && len(out) < n; i-- {
		out = append(out, grid[i])
	}
	return out
}

// LevelSkills levels every skill that is inactive and not yet maxed.
func (b *Bot) LevelSkills() bool {
	opts := b.cfg.Snapshot()
	if !opts.EnableSkills {
		return false
	}
	if !b.gotoMaster(false, true) {
		return false
	}

	b.log.Info("levelling inactive, unmaxed skills")
	for _, name := range skillNames {
		region := "skill_" + name
		if _, active := b.searchRegion("cancel_active_skill", region); active {
			continue
		}
		if _, maxed := b.searchRegion("skill_max_level", region); maxed {
			continue
		}

		if opts.MaxSkillIfPossible {
			b.levelSkillToMax(name)
			continue
		}
		b.state.SkillLevels[name] += opts.SkillLevelIntensity
		b.log.Info("levelling skill", "skill", name,
			"clicks", opts.SkillLevelIntensity, "level_this_prestige", b.state.SkillLevels[name])
		b.click("skill_"+name, input.ClickOptions{Clicks: opts.SkillLevelIntensity})
	}
	return true
}

// levelSkillToMax clicks a skill once, then looks for the "max" shortcut
// the game offers and clicks it when present.
func (b *Bot) levelSkillToMax(name string) {
	b.click("skill_"+name, input.ClickOptions{Settle: time.Second})

	maxPt, ok := b.prof.Point("skill_max_" + name)
	if !ok {
		return
	}
	img, err := b.grabber.Snapshot()
	if err != nil {
		b.log.Warn("snapshot failed during skill max check", "error", err)
		return
	}
	if isWhite(img.At(maxPt.X, maxPt.Y)) {
		b.log.Info("levelling max available upgrades for skill", "skill", name)
		b.input.ClickPoint(maxPt, input.ClickOptions{Settle: 500 * time.Millisecond})
	}
}

// ActivateSkills fires the skills whose cooldown interval elapsed. With
// force_enabled_skills_wait set, activation waits for the slowest
// configured skill so all skills fire together.
func (b *Bot) ActivateSkills(force bool) bool {
	opts := b.cfg.Snapshot()
	if !opts.EnableSkills {
		return false
	}
	if !b.gotoMaster(true, true) {
		return false
	}

	type skillSlot struct {
		name     string
		interval int
	}
	var slots []skillSlot
	for name, interval := range skillIntervals(opts) {
		if interval != 0 {
			slots = append(slots, skillSlot{name, interval})
		}
	}
	if len(slots) == 0 {
		return false
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].interval > slots[j].interval })

	now := b.now()
	if opts.ForceEnabledSkillsWait && !force {
		longest := slots[0].name
		if next, ok := b.state.NextSkillActivation[longest]; ok && now.Before(next) {
			b.log.Info("waiting for longest skill cooldown before activating",
				"skill", longest, "ready_in", next.Sub(now))
			return false
		}
	}

	if !b.noPanel() {
		return false
	}

	b.log.Info("activating skills")
	for _, slot := range slots {
		b.log.Info("activating skill", "skill", slot.name)
		b.click(slot.name, input.ClickOptions{Settle: 200 * time.Millisecond})
	}
	b.resetSkillActivations(opts, now)
	return true
}

// RunActions levels master, heroes and skills in the configured order,
// returning to the expanded master panel between each.
func (b *Bot) RunActions() {
	opts := b.cfg.Snapshot()
	b.log.Info("running in game actions")
	if !b.gotoMaster(false, true) {
		return
	}

	type orderedAction struct {
		order int
		run   func() bool
	}
	actions := []orderedAction{
		{opts.OrderLevelMaster, b.LevelMaster},
		{opts.OrderLevelHeroes, b.LevelHeroes},
		{opts.OrderLevelSkills, b.LevelSkills},
	}
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].order < actions[j].order })

	for _, a := range actions {
		a.run()

		// Normalize back to the expanded master panel so every action
		// starts from the same place.
		b.gotoMaster(false, true)
	}
}

// UpdateStats opens the statistics page and refreshes every tracked
// value by OCR, persisting a snapshot.
func (b *Bot) UpdateStats() bool {
	if !b.cfg.Snapshot().EnableStats {
		return false
	}
	b.log.Info("updating in game statistics")

	// Leave the boss first so a stage transition cannot land mid-read.
	if !b.LeaveBoss() {
		return false
	}
	b.sleep(3 * time.Second)
	if !b.gotoHeroes(true, true) {
		return false
	}

	b.click("stats_open", input.ClickOptions{Settle: 500 * time.Millisecond})
	for i := 0; i < 5; i++ {
		b.drag("scroll_start", "scroll_bottom_end", time.Second)
	}

	previous := b.reader.Values()
	values, err := b.reader.RefreshFromScreen()
	if err != nil {
		b.skip(command.ActionUpdateStats, fmt.Sprintf("stats refresh failed: %v", err))
		return false
	}
	b.logStatDeltas(previous, values)
	if err := b.sink.RecordStatSnapshot(b.ctx, b.sessionID, values); err != nil {
		b.log.Error("failed to persist stat snapshot", "error", err)
	}
	b.bus.Publish(event.NewStatsUpdated(b.sessionID, values))

	if highest, ok := b.reader.HighestStage(); ok && highest > b.state.HighestStage {
		b.state.HighestStage = highest
	}

	b.click("screen_top", input.ClickOptions{Clicks: 3})
	return true
}

// logStatDeltas logs how each tracked statistic moved between two
// refreshes. A first refresh has no prior reading and logs nothing.
func (b *Bot) logStatDeltas(previous, current map[string]string) {
	for key, raw := range current {
		old, ok := previous[key]
		if !ok || old == raw {
			continue
		}
		delta := stats.Diff(stats.Normalize(old), stats.Normalize(raw))
		if delta.Kind == stats.DeltaNone {
			continue
		}
		b.log.Info("stat changed", "stat", key, "old", old, "new", raw, "delta", delta.String())
	}
}

// ParseStage reads the stage counter and folds the result into the run
// state. The jump guard compares against the parse before the current
// one, which is what LastStage holds after SetStage shifts it.
func (b *Bot) ParseStage() {
	stage, ok := b.reader.ParseStage(b.state.AdvancedStart, b.state.LastStage, b.state.LastStageKnown)
	if !ok {
		b.state.ClearStage()
		return
	}
	b.state.SetStage(stage)
	b.bus.Publish(event.NewStageParsed(b.sessionID, stage))
}

// ShouldPrestige evaluates the prestige thresholds against the current
// run state.
func (b *Bot) ShouldPrestige() bool {
	highest := b.state.HighestStage
	if h, ok := b.reader.HighestStage(); ok && h > highest {
		highest = h
	}
	return b.decision.Evaluate(prestige.Snapshot{
		Now:               b.now(),
		NextTimedPrestige: b.state.NextTimedPrestige,
		CurrentStage:      b.state.CurrentStage,
		StageKnown:        b.state.StageKnown,
		HighestStage:      highest,
	})
}

// Prestige runs the full prestige flow: tournament check, banner
// parse, confirmation and the post-prestige routine.
func (b *Bot) Prestige(force bool) bool {
	opts := b.cfg.Snapshot()
	if !opts.EnableAutoPrestige && !force {
		return false
	}
	if !force && !b.ShouldPrestige() {
		return false
	}
	b.log.Info("beginning prestige", "forced", force)

	// A joinable tournament carries its own prestige; when one was
	// joined this prestige is complete.
	if b.CheckTournament() {
		return true
	}

	if !b.gotoMaster(false, false) {
		return false
	}

	b.click("prestige", input.ClickOptions{Settle: 3 * time.Second})
	if _, found := b.search("confirm_prestige"); !found {
		b.skip(command.ActionPrestige, "prestige confirmation prompt did not appear")
		return false
	}

	// The banner is only readable before confirming.
	banner, err := b.reader.ParsePrestigeBanner()
	if err != nil {
		b.log.Warn("prestige banner parse failed", "error", err)
	}

	b.click("prestige_confirm", input.ClickOptions{Settle: time.Second})
	// The long settle lets the game reset without stray clicks landing.
	b.click("prestige_final", input.ClickOptions{Settle: 35 * time.Second})

	// The stage the run ended on is gone once the state resets.
	endStage, endKnown := b.state.CurrentStage, b.state.StageKnown
	b.finishPrestige(banner)
	b.afterPrestige(endStage, endKnown)
	return true
}

// finishPrestige records the completed prestige and resets the run
// state for the new run.
func (b *Bot) finishPrestige(banner Banner) {
	now := b.now()
	opts := b.cfg.Snapshot()

	stage := 0
	if b.state.StageKnown {
		stage = b.state.CurrentStage
	}
	rec := prestige.Record{
		SessionID: b.sessionID,
		Timestamp: now,
		Stage:     stage,
		Artifact:  b.state.NextArtifact,
	}
	if banner.SinceLastOK {
		rec.Duration = banner.SinceLast
	}
	if err := b.sink.RecordPrestige(b.ctx, rec); err != nil {
		b.log.Error("failed to persist prestige record", "error", err)
	}
	b.bus.Publish(event.NewPrestigeCompleted(b.sessionID, now, rec.Duration, stage, rec.Artifact))

	if opts.PrestigeXMinutes != 0 {
		b.state.NextTimedPrestige = now.Add(time.Duration(opts.PrestigeXMinutes) * time.Minute)
	}
	b.decision.Reset()
	b.state.ResetPrestige(now)

	if banner.AdvancedOK {
		b.state.AdvancedStart = banner.AdvancedStart
		b.state.SetStage(banner.AdvancedStart)
	}
}

// afterPrestige runs the routine that follows every prestige: instant
// levelling, skill activation and the periodic collection checks.
// endStage is the stage the finished run ended on, read before the
// state reset.
func (b *Bot) afterPrestige(endStage int, endKnown bool) {
	b.RunActions()
	b.scheduler.Recalculate(command.ActionRunActions, b.now())
	b.ActivateSkills(true)

	// A run ending past the recorded max means the stats page is stale.
	if endKnown {
		if h, ok := b.reader.HighestStage(); ok && endStage > h {
			b.log.Info("run ended past the recorded max stage, forcing a stats update", "stage", endStage)
			b.UpdateStats()
			b.scheduler.Recalculate(command.ActionUpdateStats, b.now())
		}
	}

	b.UpgradeArtifact()
	b.DailyRewards()
	b.HatchEggs()
}

// CheckTournament looks for a joinable tournament. Joining includes a
// prestige; returns true only when that happened.
func (b *Bot) CheckTournament() bool {
	if !b.cfg.Snapshot().EnableTournaments {
		return false
	}
	if !b.gotoMaster(true, true) {
		return false
	}
	b.log.Info("checking for a joinable tournament")

	// A finished tournament circles the icon with a star trail, which
	// can defeat matching. Give it a few tries.
	found := false
	for i := 0; i < 5; i++ {
		if _, found = b.search("tournament"); found {
			break
		}
		b.sleep(200 * time.Millisecond)
	}
	if !found {
		return false
	}

	b.click("tournament", input.ClickOptions{Settle: 2 * time.Second})
	if _, joinable := b.search("join"); joinable {
		b.log.Info("tournament available, prestiging into it")
		b.click("screen_top", input.ClickOptions{Settle: time.Second})
		if !b.gotoMaster(false, false) {
			return false
		}

		b.click("prestige", input.ClickOptions{Settle: 3 * time.Second})
		var banner Banner
		if _, confirmed := b.search("confirm_prestige"); confirmed {
			var err error
			banner, err = b.reader.ParsePrestigeBanner()
			if err != nil {
				b.log.Warn("prestige banner parse failed", "error", err)
			}
			b.click("screen_top", input.ClickOptions{Settle: time.Second})
		}

		b.gotoMaster(true, true)
		b.click("tournament", input.ClickOptions{Settle: 2 * time.Second})
		b.click("join", input.ClickOptions{Settle: 2 * time.Second})
		b.click("tournament_prestige", input.ClickOptions{Settle: 35 * time.Second})

		endStage, endKnown := b.state.CurrentStage, b.state.StageKnown
		b.finishPrestige(banner)
		b.afterPrestige(endStage, endKnown)
		return true
	}

	if _, over := b.search("collect_prize"); over {
		b.log.Info("tournament over, collecting prize")
		b.click("collect_prize", input.ClickOptions{Settle: 2 * time.Second})
		b.click("game_middle", input.ClickOptions{Clicks: 10, Interval: 500 * time.Millisecond})
	}
	return false
}

// UpgradeArtifact spends relics on the next artifact in the rotation,
// scrolling the artifact panel until its row is found.
func (b *Bot) UpgradeArtifact() bool {
	opts := b.cfg.Snapshot()
	if !opts.EnableArtifactPurchase {
		return false
	}
	if b.state.Rotation == nil || !b.state.Rotation.Enabled() {
		b.log.Debug("artifact rotation empty, nothing to upgrade")
		return false
	}

	name := b.state.NextArtifact
	if next, ok := b.state.Rotation.Advance(); ok {
		b.state.NextArtifact = next
		b.log.Info("next artifact upgrade selected", "artifact", next)
	}

	desc := b.catalog.Get(name)
	if desc == nil {
		b.log.Error("artifact missing from catalog", "artifact", name)
		return false
	}
	if !b.gotoArtifacts(false, true) {
		return false
	}
	b.log.Info("upgrading artifact", "artifact", name)

	// The spend multiplier must read "% max" before buying.
	for loops := 0; ; loops++ {
		if _, found := b.search("percent_on"); found {
			break
		}
		if loops == funcLoopMax {
			b.skip(command.ActionUpgradeArtifact, "could not switch buy multiplier to percent")
			return false
		}
		b.click("percent_toggle", input.ClickOptions{Settle: 500 * time.Millisecond})
	}
	for loops := 0; ; loops++ {
		if _, found := b.search("spend_max"); found {
			break
		}
		if loops == funcLoopMax {
			b.skip(command.ActionUpgradeArtifact, "could not switch spend multiplier to max")
			return false
		}
		b.click("buy_multiplier", input.ClickOptions{Settle: 500 * time.Millisecond})
		b.click("buy_max", input.ClickOptions{Settle: 500 * time.Millisecond})
	}

	var pos image.Point
	for loops := 0; ; loops++ {
		var found bool
		if pos, found = b.search(desc.Template); found {
			break
		}
		if loops == funcLoopMax {
			b.skip(command.ActionUpgradeArtifact, fmt.Sprintf("artifact %s not found on screen", name))
			return false
		}
		b.drag("scroll_start", "scroll_bottom_end", time.Second)
	}

	// The buy button sits at a fixed offset from the artifact icon.
	push, ok := b.prof.Point("artifact_push")
	if !ok {
		b.log.Error("profile has no artifact_push offset")
		return false
	}
	b.input.ClickAt(pos.Add(push), input.ClickOptions{Settle: time.Second})
	return true
}

// artifactParseScrolls is how many screens the artifact panel is
// scrolled through while looking for owned artifacts.
const artifactParseScrolls = 8

// ParseArtifacts scans the artifact panel for owned artifacts and
// rebuilds the upgrade rotation from what it finds.
func (b *Bot) ParseArtifacts() []string {
	b.log.Info("parsing owned artifacts")
	if !b.LeaveBoss() {
		return nil
	}
	if !b.gotoArtifacts(false, true) {
		return nil
	}

	ownedSet := make(map[string]bool)
	for i := 0; i < artifactParseScrolls; i++ {
		for _, d := range b.catalog.All() {
			if ownedSet[d.Name] {
				continue
			}
			if _, found := b.search(d.Template); found {
				ownedSet[d.Name] = true
			}
		}
		b.drag("scroll_start", "scroll_bottom_end", time.Second)
	}

	owned := make([]string, 0, len(ownedSet))
	for _, d := range b.catalog.All() {
		if ownedSet[d.Name] {
			owned = append(owned, d.Name)
		}
	}
	b.log.Info("artifact parse finished", "owned", len(owned))
	b.PrimeArtifacts(owned)
	return owned
}

// Recover restarts the emulator and game once the error counter passes
// the configured failure budget, or immediately when forced. Below the
// budget it only handles the periodic counter reset.
func (b *Bot) Recover(force bool) {
	opts := b.cfg.Snapshot()
	if !opts.EnableRecovery {
		return
	}
	now := b.now()

	if !force && b.state.Errors < opts.RecoveryAllowedFailures {
		if now.After(b.state.NextRecoveryReset) {
			b.log.Info("error count below recovery threshold, resetting",
				"errors", b.state.Errors, "threshold", opts.RecoveryAllowedFailures)
			b.state.Errors = 0
			b.state.NextRecoveryReset = now.Add(time.Duration(opts.RecoveryCheckIntervalMinutes) * time.Minute)
		}
		return
	}

	if force {
		b.log.Info("forcing game recovery now")
	} else {
		b.log.Info("error budget exhausted, restarting the game", "errors", b.state.Errors)
	}
	b.state.Errors = 0
	b.bus.Publish(event.NewRecoveryTriggered(b.sessionID, force))

	b.sleep(3 * time.Second)
	b.log.Info("restarting the emulator")
	b.click("close_emulator", input.ClickOptions{Settle: time.Second})

	for loops := 0; loops < funcLoopMax; loops++ {
		pos, found := b.search("restart")
		if !found {
			break
		}
		b.log.Info("confirming emulator restart")
		b.input.ClickAt(pos, input.ClickOptions{Settle: 2 * time.Second})
	}

	b.log.Info("waiting for the game launcher")
	for loops := 0; loops < funcLoopMax; loops++ {
		pos, found := b.search("game_icon")
		if found {
			b.log.Info("game icon found, launching")
			b.input.ClickAt(pos, input.ClickOptions{Settle: 40 * time.Second})
			break
		}
		b.sleep(2 * time.Second)
	}

	b.state.NextRecoveryReset = b.now().Add(time.Duration(opts.RecoveryCheckIntervalMinutes) * time.Minute)
}

func isWhite(c color.Color) bool {
	r, g, bl, _ := c.RGBA()
	const floor = 0xf000
	return r > floor && g > floor && bl > floor
}
