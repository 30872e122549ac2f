// Package prestige decides when a bot session should prestige, based on
// the thresholds configured by the user and the stage values read off the
// screen.
package prestige

import (
	"log/slog"
	"math/rand"
	"time"
)

// Rules holds the configured prestige thresholds. A zero value disables
// the corresponding rule.
type Rules struct {
	// Timer prestiges after a fixed run duration regardless of stage.
	Timer time.Duration

	// AtStage prestiges once an absolute stage is reached.
	AtStage int

	// AtMaxStage prestiges once the recorded highest stage is reached.
	AtMaxStage bool

	// MaxStagePercent prestiges once a percentage of the recorded highest
	// stage is reached. May exceed 100 to push for new records.
	MaxStagePercent float64

	// Randomize defers a fired threshold by a random delay inside the
	// window, so prestige timing does not look mechanical.
	Randomize       bool
	RandomizeMinDelay time.Duration
	RandomizeMaxDelay time.Duration
}

// Snapshot is the per-tick view Evaluate reads. Built by the session from
// its run state before each prestige check.
type Snapshot struct {
	Now               time.Time
	NextTimedPrestige time.Time
	CurrentStage      int
	StageKnown        bool
	HighestStage      int
}

// Decision evaluates the prestige rules. One instance per session; not
// safe for concurrent use.
type Decision struct {
	rules     Rules
	rng       *rand.Rand
	log       *slog.Logger
	pendingAt time.Time
}

func NewDecision(rules Rules, log *slog.Logger) *Decision {
	return &Decision{
		rules: rules,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		log:   log,
	}
}

// Evaluate reports whether a prestige should happen now.
//
// When randomization is enabled and a deferred trigger is pending, the
// thresholds are not re-evaluated; Evaluate only waits for the pending
// timestamp to elapse. Otherwise thresholds are checked in priority order
// and, on a hit with randomization enabled, a deferred trigger is armed
// instead of firing immediately.
func (d *Decision) Evaluate(s Snapshot) bool {
	if d.rules.Randomize && !d.pendingAt.IsZero() {
		if s.Now.After(d.pendingAt) {
			d.log.Info("randomized prestige delay elapsed, prestige will happen now")
			return true
		}
		d.log.Debug("randomized prestige pending", "fires_in", d.pendingAt.Sub(s.Now))
		return false
	}

	if !d.thresholdFired(s) {
		return false
	}

	if d.rules.Randomize {
		delay := d.randomDelay()
		d.pendingAt = s.Now.Add(delay)
		d.log.Info("prestige threshold hit, deferring by randomized delay", "delay", delay)
		return false
	}
	return true
}

// Reset clears any pending deferred trigger. Called after a prestige
// completes.
func (d *Decision) Reset() {
	d.pendingAt = time.Time{}
}

func (d *Decision) thresholdFired(s Snapshot) bool {
	// The hard timer fires independently of every stage rule.
	if d.rules.Timer != 0 {
		d.log.Info("timed prestige enabled", "fires_in", s.NextTimedPrestige.Sub(s.Now))
		if s.Now.After(s.NextTimedPrestige) {
			return true
		}
	}

	// Stage can be unknown when OCR fails mid stage-change. Never
	// prestige blind off stage rules.
	if !s.StageKnown {
		d.log.Info("current stage is unknown, stage thresholds cannot be checked")
		return false
	}

	if d.rules.AtStage != 0 {
		d.log.Info("prestige at stage", "current", s.CurrentStage, "needed", d.rules.AtStage)
		return s.CurrentStage >= d.rules.AtStage
	}

	if d.rules.AtMaxStage {
		d.log.Info("prestige at max stage", "current", s.CurrentStage, "needed", s.HighestStage)
		return s.CurrentStage >= s.HighestStage
	}

	if d.rules.MaxStagePercent != 0 {
		threshold := int(float64(s.HighestStage) * d.rules.MaxStagePercent / 100)
		d.log.Info("prestige at percent of max stage", "current", s.CurrentStage, "needed", threshold)
		return s.CurrentStage >= threshold
	}

	return false
}

func (d *Decision) randomDelay() time.Duration {
	min, max := d.rules.RandomizeMinDelay, d.rules.RandomizeMaxDelay
	if max <= min {
		return min
	}
	return min + time.Duration(d.rng.Int63n(int64(max-min)))
}
