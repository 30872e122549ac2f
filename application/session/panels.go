package session

import (
	"time"

	"tapdash/infrastructure/input"
)

// panelSpec describes how to reach one of the bottom-bar panels. icon is
// the template proving the panel is open; topFind and bottomFind prove
// the scroll position. The shop panel has no expand/collapse control.
type panelSpec struct {
	nav        string // profile point opening the panel
	icon       string
	topFind    string
	bottomFind string // empty means topFind serves both ends
	expandable bool
}

var panelSpecs = map[string]panelSpec{
	"master":    {nav: "master", icon: "master_active", topFind: "raid_cards", bottomFind: "prestige", expandable: true},
	"heroes":    {nav: "heroes", icon: "heroes_active", topFind: "masteries", bottomFind: "maya_muerta", expandable: true},
	"equipment": {nav: "equipment", icon: "equipment_active", topFind: "crafting", expandable: true},
	"pets":      {nav: "pets", icon: "pets_active", topFind: "next_egg", expandable: true},
	"artifacts": {nav: "artifacts", icon: "artifacts_active", topFind: "salvaged", expandable: true},
	"shop":      {nav: "shop", icon: "shop_active", topFind: "shop_keeper"},
}

// gotoPanel opens a panel, scrolls it to the requested end and sets its
// expanded or collapsed state. Every step retries within a budget;
// running out means the screen is not cooperating and the caller should
// give up on its action for this tick.
func (b *Bot) gotoPanel(name string, collapsed, top bool) bool {
	spec, ok := panelSpecs[name]
	if !ok {
		b.log.Error("unknown panel", "panel", name)
		return false
	}
	b.log.Debug("travelling to panel", "panel", name, "collapsed", collapsed, "top", top)

	for loops := 0; ; loops++ {
		if _, found := b.search(spec.icon); found {
			break
		}
		if loops == funcLoopMax {
			b.log.Warn("could not open panel", "panel", name)
			b.state.Errors++
			return false
		}
		b.click(spec.nav, input.ClickOptions{Settle: time.Second})
	}

	find := spec.topFind
	endDrag := "scroll_top_end"
	if !top {
		endDrag = "scroll_bottom_end"
		if spec.bottomFind != "" {
			find = spec.bottomFind
		}
	}

	for loops := 0; ; loops++ {
		if _, found := b.search(find); found {
			break
		}
		if loops == funcLoopMax {
			b.log.Warn("could not scroll panel into position", "panel", name)
			b.state.Errors++
			return false
		}
		b.drag("scroll_start", endDrag, time.Second)
	}

	if !spec.expandable {
		return true
	}

	// expand_panel visible means the panel is collapsed and vice versa.
	want, toggle := "expand_panel", "expand_collapse_top"
	if !collapsed {
		want, toggle = "collapse_panel", "expand_collapse_bottom"
	}
	for loops := 0; ; loops++ {
		if _, found := b.search(want); found {
			break
		}
		if loops == funcLoopMax {
			b.log.Warn("could not toggle panel state", "panel", name, "collapsed", collapsed)
			b.state.Errors++
			return false
		}
		b.click(toggle, input.ClickOptions{OffsetRadius: 1, Settle: time.Second})
	}

	return true
}

func (b *Bot) gotoMaster(collapsed, top bool) bool    { return b.gotoPanel("master", collapsed, top) }
func (b *Bot) gotoHeroes(collapsed, top bool) bool    { return b.gotoPanel("heroes", collapsed, top) }
func (b *Bot) gotoArtifacts(collapsed, top bool) bool { return b.gotoPanel("artifacts", collapsed, top) }

// noPanel closes any open panel, alternating between the two close
// buttons the game places depending on panel type.
func (b *Bot) noPanel() bool {
	for loops := 0; ; loops++ {
		if _, found := b.search("exit_panel"); !found {
			return true
		}
		if loops == funcLoopMax {
			b.log.Warn("could not close open panels")
			b.state.Errors++
			return false
		}

		b.click("close_bottom", input.ClickOptions{OffsetRadius: 2})
		if _, found := b.search("exit_panel"); !found {
			return true
		}
		b.click("close_top", input.ClickOptions{OffsetRadius: 2})
	}
}
