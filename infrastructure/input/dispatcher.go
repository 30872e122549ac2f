// Package input dispatches synthetic clicks and drags against the
// emulator window. All points at this boundary are client-area relative;
// translation to screen coordinates happens here.
package input

import (
	"image"
	"time"
)

// ClickOptions tune a click dispatch.
type ClickOptions struct {
	// Clicks is the number of clicks, minimum 1.
	Clicks int

	// Interval is the delay between consecutive clicks.
	Interval time.Duration

	// Button is "left", "right" or "center". Empty means left.
	Button string

	// Settle is slept after the last click, giving the game time to
	// react before the next capture.
	Settle time.Duration

	// OffsetRadius randomizes the click position inside a square of
	// this half-width, so repeated clicks do not land pixel-identical.
	OffsetRadius int
}

// Dispatcher issues synthetic input events. Implementations: Robot
// (robotgo-backed) and Recorder (test fake).
type Dispatcher interface {
	// ClickPoint clicks a client-area point.
	ClickPoint(pt image.Point, opts ClickOptions)

	// ClickAt clicks the exact client-area position of a found
	// template, without the randomized offset.
	ClickAt(pos image.Point, opts ClickOptions)

	// Drag presses at start, moves to end and releases, then sleeps
	// settle.
	Drag(start, end image.Point, settle time.Duration)
}
