package input

import (
	"image"
	"log/slog"
	"math/rand"
	"time"

	"github.com/go-vgo/robotgo"

	"tapdash/infrastructure/screen"
)

// Robot dispatches real input events via robotgo.
type Robot struct {
	frame screen.Frame
	log   *slog.Logger
	rng   *rand.Rand
}

// NewRobot creates a dispatcher bound to a window frame.
func NewRobot(frame screen.Frame, log *slog.Logger) *Robot {
	return &Robot{
		frame: frame,
		log:   log,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *Robot) ClickPoint(pt image.Point, opts ClickOptions) {
	target := r.translate(pt)
	if opts.OffsetRadius != 0 {
		target = r.jitter(target, opts.OffsetRadius)
	}
	r.click(target, opts)
}

func (r *Robot) ClickAt(pos image.Point, opts ClickOptions) {
	r.click(r.translate(pos), opts)
}

func (r *Robot) Drag(start, end image.Point, settle time.Duration) {
	s := r.translate(start)
	e := r.translate(end)
	r.log.Debug("dragging", "from", s, "to", e)

	robotgo.Move(s.X, s.Y)
	robotgo.DragSmooth(e.X, e.Y)

	if settle > 0 {
		time.Sleep(settle)
	}
}

func (r *Robot) click(target image.Point, opts ClickOptions) {
	clicks := opts.Clicks
	if clicks < 1 {
		clicks = 1
	}
	button := opts.Button
	if button == "" {
		button = "left"
	}

	r.log.Debug("clicking", "at", target, "clicks", clicks, "button", button)
	robotgo.Move(target.X, target.Y)
	for i := 0; i < clicks; i++ {
		robotgo.Click(button, false)
		if opts.Interval > 0 && i < clicks-1 {
			time.Sleep(opts.Interval)
		}
	}

	if opts.Settle > 0 {
		time.Sleep(opts.Settle)
	}
}

// translate maps a client-area point onto the physical screen.
func (r *Robot) translate(pt image.Point) image.Point {
	origin := r.frame.ClientRect().Min
	return pt.Add(origin)
}

// jitter offsets a point uniformly within a square of half-width radius.
func (r *Robot) jitter(pt image.Point, radius int) image.Point {
	return image.Pt(
		pt.X+r.rng.Intn(2*radius+1)-radius,
		pt.Y+r.rng.Intn(2*radius+1)-radius,
	)
}
