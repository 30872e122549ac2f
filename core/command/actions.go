package command

// ActionID identifies a bot action that can be scheduled, queued or forced.
type ActionID string

const (
	ActionFightBoss         ActionID = "fight_boss"
	ActionLeaveBoss         ActionID = "leave_boss"
	ActionTap               ActionID = "tap"
	ActionCollectAd         ActionID = "collect_ad"
	ActionClanCrate         ActionID = "clan_crate"
	ActionParseStage        ActionID = "parse_stage"
	ActionLevelHeroes       ActionID = "level_heroes"
	ActionLevelMaster       ActionID = "level_master"
	ActionLevelSkills       ActionID = "level_skills"
	ActionActivateSkills    ActionID = "activate_skills"
	ActionRunActions        ActionID = "actions"
	ActionUpdateStats       ActionID = "update_stats"
	ActionPrestige          ActionID = "prestige"
	ActionUpgradeArtifact   ActionID = "upgrade_artifact"
	ActionParseArtifacts    ActionID = "parse_artifacts"
	ActionDailyAchievements ActionID = "daily_achievements"
	ActionParseRaid         ActionID = "parse_raid"
	ActionDailyRewards      ActionID = "daily_rewards"
	ActionHatchEggs         ActionID = "hatch_eggs"
	ActionRecover           ActionID = "recover"
)

// ActionSpec describes the scheduling and dispatch options of a bot action.
// The table below is built once at startup and injected where needed; there
// is no runtime registration.
type ActionSpec struct {
	ID ActionID

	// Queueable actions may be submitted through RunAction commands.
	Queueable bool

	// Forceable actions accept a force flag that bypasses their due-time check.
	Forceable bool

	// Shortcut is the keyboard shortcut bound to the action, empty when none.
	Shortcut string

	// IntervalOption names the configuration option holding the action's
	// schedule interval in seconds. Empty for actions that run every tick.
	IntervalOption string
}

// Table is the static registry of all bot actions in loop execution order.
var Table = []ActionSpec{
	{ID: ActionFightBoss, Queueable: true, Shortcut: "shift+f"},
	{ID: ActionLeaveBoss, Queueable: true, Shortcut: "shift+l"},
	{ID: ActionClanCrate, Queueable: true},
	{ID: ActionTap, Queueable: true, Shortcut: "shift+t"},
	{ID: ActionCollectAd, Queueable: true},
	{ID: ActionParseStage, Queueable: true},
	{ID: ActionPrestige, Queueable: true, Forceable: true, Shortcut: "shift+p"},
	{ID: ActionDailyAchievements, Queueable: true, Forceable: true, Shortcut: "ctrl+d", IntervalOption: "daily_achievements_check_every_x_hours"},
	{ID: ActionRunActions, Queueable: true, Forceable: true, Shortcut: "shift+a", IntervalOption: "run_actions_every_x_seconds"},
	{ID: ActionActivateSkills, Queueable: true, Forceable: true, Shortcut: "ctrl+a"},
	{ID: ActionUpdateStats, Queueable: true, Forceable: true, Shortcut: "shift+u", IntervalOption: "update_stats_every_x_minutes"},
	{ID: ActionParseRaid, Queueable: true, Forceable: true, IntervalOption: "raid_parse_every_x_hours"},
	{ID: ActionRecover, Queueable: true, Forceable: true},

	// Not part of the per-tick loop; reachable through queued commands or
	// as part of the prestige flow.
	{ID: ActionLevelHeroes, Queueable: true, Shortcut: "shift+h"},
	{ID: ActionLevelMaster, Queueable: true, Shortcut: "shift+m"},
	{ID: ActionLevelSkills, Queueable: true, Shortcut: "shift+s"},
	{ID: ActionUpgradeArtifact, Queueable: true},
	{ID: ActionParseArtifacts, Queueable: true},
	{ID: ActionDailyRewards, Queueable: true, Shortcut: "shift+d"},
	{ID: ActionHatchEggs, Queueable: true},
}

var specIndex = buildIndex()

func buildIndex() map[ActionID]*ActionSpec {
	idx := make(map[ActionID]*ActionSpec, len(Table))
	for i := range Table {
		idx[Table[i].ID] = &Table[i]
	}
	return idx
}

// Lookup returns the spec for an action ID, or nil when unknown.
func Lookup(id ActionID) *ActionSpec {
	return specIndex[id]
}

// Queueable reports whether the action may be queued through a RunAction command.
func Queueable(id ActionID) bool {
	spec := Lookup(id)
	return spec != nil && spec.Queueable
}

// Forceable reports whether the action accepts a force flag.
func Forceable(id ActionID) bool {
	spec := Lookup(id)
	return spec != nil && spec.Forceable
}

// Shortcuts returns the shortcut-to-action mapping for keyboard dispatch.
func Shortcuts() map[string]ActionID {
	m := make(map[string]ActionID)
	for _, spec := range Table {
		if spec.Shortcut != "" {
			m[spec.Shortcut] = spec.ID
		}
	}
	return m
}
