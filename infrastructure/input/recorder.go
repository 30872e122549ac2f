package input

import (
	"image"
	"sync"
	"time"
)

// Call records one dispatched input event.
type Call struct {
	Kind  string // "click_point", "click_at", "drag"
	Point image.Point
	End   image.Point // drag only
	Opts  ClickOptions
}

// Recorder is a Dispatcher that records calls instead of dispatching
// them. Used in tests to assert what the bot would have clicked.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ClickPoint(pt image.Point, opts ClickOptions) {
	r.record(Call{Kind: "click_point", Point: pt, Opts: opts})
}

func (r *Recorder) ClickAt(pos image.Point, opts ClickOptions) {
	r.record(Call{Kind: "click_at", Point: pos, Opts: opts})
}

func (r *Recorder) Drag(start, end image.Point, settle time.Duration) {
	r.record(Call{Kind: "drag", Point: start, End: end})
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// CountKind returns how many calls of a kind were recorded.
func (r *Recorder) CountKind(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Kind == kind {
			n++
		}
	}
	return n
}
