// Package config holds the bot options and the snapshot store serving
// them to sessions. Options are a flat set of named values edited
// externally (dashboard, text editor); the core only ever reads an
// immutable snapshot per tick.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is one named bot configuration. Field layout mirrors the
// options surface the dashboard exposes; zero intervals disable the
// owning action.
type Options struct {
	Name       string `yaml:"name"`
	Emulator   string `yaml:"emulator"`
	Resolution string `yaml:"resolution"`

	// Generic behavior.
	EnableTapping          bool `yaml:"enable_tapping"`
	EnableEggCollection    bool `yaml:"enable_egg_collection"`
	EnableTournaments      bool `yaml:"enable_tournaments"`
	EnableClanCrates       bool `yaml:"enable_clan_crates"`
	EnablePremiumAdCollect bool `yaml:"enable_premium_ad_collect"`
	EnableDailyRewards     bool `yaml:"enable_daily_rewards"`

	// Clan raid.
	EnableRaidParse      bool `yaml:"enable_raid_parse"`
	RaidParseEveryXHours int  `yaml:"raid_parse_every_x_hours"`

	// Periodic in-game actions.
	RunActionsOnStart      bool `yaml:"run_actions_on_start"`
	RunActionsEveryXSecs   int  `yaml:"run_actions_every_x_seconds"`
	OrderLevelMaster       int  `yaml:"order_level_master"`
	OrderLevelHeroes       int  `yaml:"order_level_heroes"`
	OrderLevelSkills       int  `yaml:"order_level_skills"`
	EnableMaster           bool `yaml:"enable_master"`
	MasterLevelIntensity   int  `yaml:"master_level_intensity"`
	EnableHeroes           bool `yaml:"enable_heroes"`
	HeroLevelIntensity     int  `yaml:"hero_level_intensity"`
	EnableSkills           bool `yaml:"enable_skills"`
	SkillLevelIntensity    int  `yaml:"skill_level_intensity"`
	MaxSkillIfPossible     bool `yaml:"max_skill_if_possible"`
	ActivateSkillsOnStart  bool `yaml:"activate_skills_on_start"`
	IntervalHeavenlyStrike int  `yaml:"interval_heavenly_strike"`
	IntervalDeadlyStrike   int  `yaml:"interval_deadly_strike"`
	IntervalHandOfMidas    int  `yaml:"interval_hand_of_midas"`
	IntervalFireSword      int  `yaml:"interval_fire_sword"`
	IntervalWarCry         int  `yaml:"interval_war_cry"`
	IntervalShadowClone    int  `yaml:"interval_shadow_clone"`
	ForceEnabledSkillsWait bool `yaml:"force_enabled_skills_wait"`

	// Prestige thresholds.
	EnableAutoPrestige       bool    `yaml:"enable_auto_prestige"`
	PrestigeXMinutes         int     `yaml:"prestige_x_minutes"`
	PrestigeAtStage          int     `yaml:"prestige_at_stage"`
	PrestigeAtMaxStage       bool    `yaml:"prestige_at_max_stage"`
	PrestigeAtMaxStagePct    float64 `yaml:"prestige_at_max_stage_percent"`
	EnablePrestigeRandomize  bool    `yaml:"enable_prestige_randomization"`
	PrestigeRandomMinMinutes int     `yaml:"prestige_random_min_minutes"`
	PrestigeRandomMaxMinutes int     `yaml:"prestige_random_max_minutes"`

	// Artifacts.
	EnableArtifactPurchase bool     `yaml:"enable_artifact_purchase"`
	UpgradeOwnedTiers      []string `yaml:"upgrade_owned_tiers"`
	IgnoreArtifacts        []string `yaml:"ignore_artifacts"`
	UpgradeArtifacts       []string `yaml:"upgrade_artifacts"`
	ShuffleArtifacts       bool     `yaml:"shuffle_artifacts"`

	// Statistics.
	EnableStats            bool `yaml:"enable_stats"`
	UpdateStatsOnStart     bool `yaml:"update_stats_on_start"`
	UpdateStatsEveryXMins  int  `yaml:"update_stats_every_x_minutes"`

	// Daily achievements.
	EnableDailyAchievements        bool `yaml:"enable_daily_achievements"`
	DailyAchievementsCheckOnStart  bool `yaml:"daily_achievements_check_on_start"`
	DailyAchievementsEveryXHours   int  `yaml:"daily_achievements_check_every_x_hours"`

	// Breaks.
	EnableBreaks        bool `yaml:"enable_breaks"`
	BreaksJitterMinutes int  `yaml:"breaks_jitter_minutes"`
	BreaksEveryXMinutes int  `yaml:"breaks_every_x_minutes"`
	BreaksLengthMinutes int  `yaml:"breaks_length_minutes"`

	// Recovery.
	EnableRecovery               bool `yaml:"enable_recovery"`
	RecoveryAllowedFailures      int  `yaml:"recovery_allowed_failures"`
	RecoveryCheckIntervalMinutes int  `yaml:"recovery_check_interval_minutes"`

	// Shutdown behavior.
	SoftShutdownOnCriticalError bool `yaml:"soft_shutdown_on_critical_error"`
	SoftShutdownUpdateStats     bool `yaml:"soft_shutdown_update_stats"`

	// Post-action settle window in seconds; a random wait inside the
	// window is applied after each loop action.
	PostActionMinWaitTime int `yaml:"post_action_min_wait_time"`
	PostActionMaxWaitTime int `yaml:"post_action_max_wait_time"`
}

// Defaults returns an Options populated with sensible starting values.
// Loaded files override on top of this.
func Defaults() *Options {
	return &Options{
		Name:                         "default",
		Resolution:                   "480x800",
		EnableTapping:                true,
		EnableEggCollection:          true,
		EnableTournaments:            true,
		EnableClanCrates:             true,
		EnableRaidParse:              true,
		RaidParseEveryXHours:         6,
		RunActionsEveryXSecs:         25,
		OrderLevelMaster:             1,
		OrderLevelHeroes:             2,
		OrderLevelSkills:             3,
		EnableMaster:                 true,
		MasterLevelIntensity:         3,
		EnableHeroes:                 true,
		HeroLevelIntensity:           3,
		EnableSkills:                 true,
		SkillLevelIntensity:          10,
		EnableAutoPrestige:           true,
		PrestigeXMinutes:             45,
		EnableStats:                  true,
		UpdateStatsEveryXMins:        30,
		EnableDailyAchievements:      true,
		DailyAchievementsEveryXHours: 6,
		EnableRecovery:               true,
		RecoveryAllowedFailures:      45,
		RecoveryCheckIntervalMinutes: 5,
		SoftShutdownOnCriticalError:  true,
		SoftShutdownUpdateStats:      true,
		PostActionMinWaitTime:        0,
		PostActionMaxWaitTime:        1,
	}
}

// Load reads an options file on top of the defaults.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}

	opts := Defaults()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse options file %s: %w", path, err)
	}
	return opts, nil
}
