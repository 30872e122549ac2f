package artifact

import (
	"log/slog"
	"math/rand"
)

// ListOptions are the configuration filters applied when building the
// upgrade list.
type ListOptions struct {
	// UpgradeTiers selects whole tiers for upgrading.
	UpgradeTiers []string

	// Ignore excludes individual artifacts.
	Ignore []string

	// Force includes individual artifacts regardless of tier selection
	// and regardless of the ignore list.
	Force []string

	// Shuffle randomizes spend order across prestiges instead of
	// following discovery order.
	Shuffle bool
}

// toSet converts a slice of names into a membership set.
func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// BuildUpgradeList computes the ordered artifact upgrade list from the
// catalog, the set of owned artifact names and the configured filters.
//
// An owned artifact is included when its tier is selected or it is
// force-listed. The ignore list excludes, but a force-listed artifact
// always survives exclusion. Capped artifacts never make the list.
func BuildUpgradeList(catalog *Catalog, owned []string, opts ListOptions, log *slog.Logger) []string {
	ownedSet := toSet(owned)
	tierSet := toSet(opts.UpgradeTiers)
	ignoreSet := toSet(opts.Ignore)
	forceSet := toSet(opts.Force)

	var list []string
	for _, d := range catalog.All() {
		if !ownedSet[d.Name] || d.MaxLevel {
			continue
		}
		if ignoreSet[d.Name] && !forceSet[d.Name] {
			continue
		}
		if tierSet[d.Tier] || forceSet[d.Name] {
			list = append(list, d.Name)
			log.Debug("artifact selected for upgrading", "artifact", d.Name, "tier", d.Tier)
		}
	}

	if opts.Shuffle {
		log.Info("shuffling artifact upgrade order")
		rand.Shuffle(len(list), func(i, j int) {
			list[i], list[j] = list[j], list[i]
		})
	}

	if len(list) == 0 {
		log.Warn("no artifacts selected for upgrading, artifact purchase disabled for this session")
	}
	return list
}

// Rotation cycles through the upgrade list, one artifact per prestige.
// One instance per session; not safe for concurrent use.
type Rotation struct {
	list  []string
	index int
}

// NewRotation creates a rotation over the given upgrade list.
func NewRotation(list []string) *Rotation {
	return &Rotation{list: list}
}

// Enabled reports whether the rotation has any artifact to offer.
func (r *Rotation) Enabled() bool {
	return len(r.list) > 0
}

// Advance returns the next artifact to upgrade and moves the pointer,
// wrapping around at the end of the list. Returns false when the list is
// empty.
func (r *Rotation) Advance() (string, bool) {
	if len(r.list) == 0 {
		return "", false
	}
	if r.index == len(r.list) {
		r.index = 0
	}
	next := r.list[r.index]
	r.index++
	return next, true
}

// List returns the rotation's upgrade list in order.
func (r *Rotation) List() []string {
	return r.list
}
