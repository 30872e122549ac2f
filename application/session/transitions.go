package session

import (
	"errors"
	"log/slog"
	"time"

	"tapdash/infrastructure/input"
	"tapdash/infrastructure/screen"

	"tapdash/domain/profile"
)

// templatePrecision is the matching threshold for template searches.
const templatePrecision = 0.92

// resolverMaxLoops bounds the attempts to settle the game screen before
// the resolver gives up.
const resolverMaxLoops = 30

// adLoopMax bounds consecutive ad-panel dismissals within one pass.
const adLoopMax = 10

// ErrDesync means the game screen could not be brought back to a known
// state. The session reacts with a forced recovery.
var ErrDesync = errors.New("game screen could not be resolved to a known state")

// Resolver brings the game back to its main screen before an action
// runs. It dismisses stray panels and ad prompts, then waits for a
// stable signal: a known template or a readable stage counter.
type Resolver struct {
	grabber *screen.Grabber
	input   input.Dispatcher
	reader  *StatsReader
	prof    *profile.Profile
	log     *slog.Logger

	maxLoops int
	sleep    func(time.Duration)
}

// NewResolver creates a resolver over the session's capture and input
// capabilities.
func NewResolver(grabber *screen.Grabber, dispatcher input.Dispatcher, reader *StatsReader, prof *profile.Profile, log *slog.Logger) *Resolver {
	return &Resolver{
		grabber:  grabber,
		input:    dispatcher,
		reader:   reader,
		prof:     prof,
		log:      log,
		maxLoops: resolverMaxLoops,
		sleep:    time.Sleep,
	}
}

// stableTemplates are generic images visible whenever the game sits on
// its main screen.
var stableTemplates = []string{"exit_panel", "clan_no_raid", "clan_raid_ready"}

// Resolve loops until the screen is stable or the attempt budget runs
// out, in which case ErrDesync is returned. premiumAds selects whether
// ad prompts are collected or declined.
func (r *Resolver) Resolve(premiumAds bool) error {
	for loops := 0; loops < r.maxLoops; loops++ {
		// A stray panel left open covers the whole screen; its oversized
		// exit button closes whatever it is.
		pt, found, err := r.grabber.Search("large_exit_panel", nil, templatePrecision)
		if err != nil {
			return err
		}
		if found {
			r.input.ClickAt(pt, input.ClickOptions{Settle: 500 * time.Millisecond})
		}

		if err := r.DismissAds(premiumAds); err != nil {
			return err
		}

		stable, err := r.screenStable()
		if err != nil {
			return err
		}
		if stable {
			return nil
		}

		// Something clickable may be blocking the screen. Tap the top of
		// the screen, wait, try again.
		if top, ok := r.prof.Point("screen_top"); ok {
			r.input.ClickPoint(top, input.ClickOptions{Clicks: 3, Interval: 500 * time.Millisecond})
		}
		r.log.Info("screen unresolved, waiting before retrying", "attempt", loops+1)
		r.sleep(time.Second)
	}

	r.log.Error("screen still unresolved after all attempts", "attempts", r.maxLoops)
	return ErrDesync
}

// DismissAds clears any ad prompt currently on screen, collecting when
// premiumAds is set and declining otherwise. Loops because dismissing
// one prompt can reveal another queued behind it.
func (r *Resolver) DismissAds(premiumAds bool) error {
	for i := 0; i < adLoopMax; i++ {
		_, found, err := r.grabber.Search("collect_ad", nil, templatePrecision)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}

		name := "no_thanks"
		if premiumAds {
			name = "collect_ad"
		}
		pt, ok := r.prof.Point(name)
		if !ok {
			r.log.Error("profile has no ad point", "point", name)
			return nil
		}
		r.log.Info("dismissing ad prompt", "collect", premiumAds)
		r.input.ClickPoint(pt, input.ClickOptions{OffsetRadius: 1, Settle: time.Second})
	}
	r.log.Warn("ad prompt persisted through all dismissal attempts")
	return nil
}

// screenStable reports whether any stable signal is visible.
func (r *Resolver) screenStable() (bool, error) {
	name, _, found, err := r.grabber.SearchAny(stableTemplates, nil, templatePrecision)
	if err != nil {
		return false, err
	}
	if found {
		r.log.Debug("screen stable", "signal", name)
		return true, nil
	}
	return r.reader.StageReadable(), nil
}
