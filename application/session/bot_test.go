package session

import (
	"image"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"tapdash/core/event"
	"tapdash/core/eventbus"
	"tapdash/domain/artifact"
	"tapdash/domain/config"
	"tapdash/domain/profile"
	"tapdash/infrastructure/input"
	"tapdash/infrastructure/repository"
	"tapdash/infrastructure/screen"
)

// staticOptions serves one fixed configuration snapshot.
type staticOptions struct {
	opts *config.Options
}

func (s staticOptions) Snapshot() *config.Options { return s.opts }

// stubBus records published events synchronously.
type stubBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *stubBus) Publish(e event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *stubBus) Subscribe(eventbus.Handler) string                { return "" }
func (b *stubBus) SubscribeSession(string, eventbus.Handler) string { return "" }
func (b *stubBus) Unsubscribe(string)                               {}
func (b *stubBus) Close()                                           {}

func (b *stubBus) all() []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]event.Event(nil), b.events...)
}

func (b *stubBus) eventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.events))
	for i, e := range b.events {
		names[i] = e.EventName()
	}
	return names
}

func (b *stubBus) count(name string) int {
	n := 0
	for _, en := range b.eventNames() {
		if en == name {
			n++
		}
	}
	return n
}

// botTemplateNames is every template the bot can search for. Each gets
// a distinct two-color pattern so tests can paste exactly the templates
// a screen should show.
var botTemplateNames = []string{
	"large_exit_panel", "collect_ad", "exit_panel", "clan_no_raid", "clan_raid_ready",
	"master_active", "raid_cards", "prestige", "heroes_active", "masteries",
	"maya_muerta", "equipment_active", "crafting", "pets_active", "next_egg",
	"artifacts_active", "salvaged", "shop_active", "shop_keeper",
	"expand_panel", "collapse_panel",
	"fight_boss", "okay", "daily_reward", "hatch_egg", "daily_collect",
	"max_level", "cancel_active_skill", "skill_max_level", "confirm_prestige",
	"tournament", "join", "collect_prize", "percent_on", "spend_max",
	"restart", "game_icon",
	"artifact_amulet", "artifact_sword",
}

// testBackground is the screen fill color, far enough from every
// palette color that it never matches a template pixel.
var testBackground = color.RGBA{45, 45, 45, 255}

// templatePalette returns colors whose pairwise channel distance stays
// above the matcher tolerance.
func templatePalette() []color.RGBA {
	steps := []uint8{0, 128, 255}
	var out []color.RGBA
	for _, r := range steps {
		for _, g := range steps {
			for _, b := range steps {
				out = append(out, color.RGBA{r, g, b, 255})
			}
		}
	}
	return out
}

// botTemplate builds the 8x8 two-color pattern for a template index.
func botTemplate(i int) *image.RGBA {
	palette := templatePalette()
	left := palette[i%len(palette)]
	right := palette[(i+1+i/len(palette))%len(palette)]

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				img.Set(x, y, left)
			} else {
				img.Set(x, y, right)
			}
		}
	}
	return img
}

func botTemplateImages() map[string]image.Image {
	imgs := make(map[string]image.Image, len(botTemplateNames))
	for i, name := range botTemplateNames {
		imgs[name] = botTemplate(i)
	}
	return imgs
}

// pasteTemplate stamps a named template onto a test screen.
func pasteTemplate(dst *image.RGBA, name string, at image.Point) {
	for i, n := range botTemplateNames {
		if n == name {
			paste(dst, botTemplate(i), at)
			return
		}
	}
	panic("unknown test template " + name)
}

func botScreen(visible map[string]image.Point) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 480, 800))
	for y := 0; y < 800; y++ {
		for x := 0; x < 480; x++ {
			img.Set(x, y, testBackground)
		}
	}
	for name, at := range visible {
		pasteTemplate(img, name, at)
	}
	return img
}

// botProfile is a full 480x800 geometry covering every point, region
// and grid the bot touches.
func botProfile() *profile.Profile {
	p := profile.NewProfile("480x800", 30)

	points := map[string]image.Point{
		"screen_top": {240, 5}, "game_middle": {240, 400},
		"collect_ad": {365, 616}, "no_thanks": {135, 616},
		"master": {40, 770}, "heroes": {120, 770}, "equipment": {200, 770},
		"pets": {280, 770}, "artifacts": {360, 770}, "shop": {440, 770},
		"scroll_start": {240, 430}, "scroll_top_end": {240, 700}, "scroll_bottom_end": {240, 110},
		"expand_collapse_top": {30, 300}, "expand_collapse_bottom": {30, 700},
		"close_bottom": {430, 600}, "close_top": {430, 130},
		"fight_boss": {425, 45}, "clan_crate": {70, 360},
		"open_rewards": {240, 520}, "collect_rewards": {240, 640},
		"hatch_egg": {35, 290}, "achievements": {240, 600},
		"master_level": {415, 170},
		"prestige":     {405, 680}, "prestige_confirm": {245, 620}, "prestige_final": {330, 570},
		"tournament": {30, 75}, "join": {240, 600}, "tournament_prestige": {330, 570},
		"collect_prize": {245, 655},
		"percent_toggle": {85, 565}, "buy_multiplier": {410, 105}, "buy_max": {240, 340},
		"artifact_push":  {20, 55},
		"close_emulator": {465, 15},
		"stats_open":     {310, 225},
		"clan_open": {70, 105}, "clan_raid": {240, 480},
		"drag_heroes_start": {415, 700}, "drag_heroes_end": {415, 360},
	}
	for name, pt := range points {
		p.SetPoint(name, pt)
	}

	for i, name := range skillNames {
		y := 150 + i*80
		p.SetPoint("skill_"+name, image.Pt(415, y))
		p.SetPoint("skill_max_"+name, image.Pt(445, y))
		p.SetPoint(name, image.Pt(100+i*40, 740))
		p.SetRegion("skill_"+name, image.Rect(0, y-20, 480, y+20))
	}

	y := 100
	for _, key := range statKeys {
		p.SetRegion("stat_"+key, image.Rect(20, y, 440, y+14))
		y += 20
	}
	p.SetRegion("stage", image.Rect(214, 37, 482, 87))
	p.SetRegion("prestige_time_since", image.Rect(300, 580, 360, 594))
	p.SetRegion("prestige_advanced_start", image.Rect(145, 523, 202, 543))
	p.SetRegion("raid_attack_reset", image.Rect(55, 595, 425, 609))

	var fairies []image.Point
	for i := 0; i < 12; i++ {
		fairies = append(fairies, image.Pt(80+(i%4)*100, 250+(i/4)*120))
	}
	p.SetGrid("fairies", fairies)

	var heroes []image.Point
	for i := 0; i < 9; i++ {
		heroes = append(heroes, image.Pt(410, 180+i*60))
	}
	p.SetGrid("level_heroes", heroes)

	return p
}

func botCatalog() *artifact.Catalog {
	c := artifact.NewCatalog()
	c.Register(&artifact.Descriptor{Name: "amulet", Tier: "S", Template: "artifact_amulet"})
	c.Register(&artifact.Descriptor{Name: "sword", Tier: "A", Template: "artifact_sword"})
	return c
}

// botHarness bundles a bot with its observable collaborators.
type botHarness struct {
	bot      *Bot
	recorder *input.Recorder
	sink     *repository.MemoryStatsSink
	bus      *stubBus
	grabber  *screen.Grabber
}

func newBotHarness(screenImg image.Image, ocrFake *fakeOCR, opts *config.Options) *botHarness {
	log := slog.New(slog.DiscardHandler)
	frame := screen.Frame{Rect: image.Rect(0, 0, 480, 830), YPadding: 30}
	grabber := screen.NewGrabber(frame, screen.NewTemplateStore(botTemplateImages()), log)
	grabber.UseImage(screenImg)

	recorder := input.NewRecorder()
	sink := repository.NewMemoryStatsSink()
	bus := &stubBus{}

	bot := NewBot(BotDeps{
		SessionID:  "test-session",
		Instance:   "test-instance",
		Config:     staticOptions{opts},
		Profile:    botProfile(),
		Grabber:    grabber,
		Input:      recorder,
		Recognizer: ocrFake,
		Sink:       sink,
		Bus:        bus,
		Catalog:    botCatalog(),
		Log:        log,
	})
	bot.sleep = func(time.Duration) {}
	bot.resolver.sleep = func(time.Duration) {}

	return &botHarness{bot: bot, recorder: recorder, sink: sink, bus: bus, grabber: grabber}
}
