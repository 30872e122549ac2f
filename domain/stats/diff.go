package stats

import (
	"math"
	"time"
)

// DeltaKind classifies the outcome of diffing two readings.
type DeltaKind int

const (
	// DeltaNone means the readings were not comparable (mixed kinds).
	DeltaNone DeltaKind = iota
	// DeltaNumber is a plain numeric difference.
	DeltaNumber
	// DeltaDuration is a difference between two game-format durations.
	DeltaDuration
	// DeltaTooBig flags an infinite or NaN numeric result. The game
	// shows exponential values at end-game scale; users audit these
	// manually.
	DeltaTooBig
	// DeltaUnparseable flags duration text that did not match the
	// in-game grammar.
	DeltaUnparseable
)

// Delta is the difference between two statistic readings.
type Delta struct {
	Kind     DeltaKind
	Number   float64
	Duration time.Duration
}

func (d Delta) String() string {
	switch d.Kind {
	case DeltaNumber:
		return Value{Num: d.Number, Numeric: true}.String()
	case DeltaDuration:
		return FormatGameDuration(d.Duration)
	case DeltaTooBig:
		return "TOO BIG"
	case DeltaUnparseable:
		return "ERROR DIFFING"
	default:
		return ""
	}
}

// Diff computes new minus old. Numeric pairs subtract directly; pairs of
// duration-formatted strings subtract as durations and format back into
// game format. Incomparable inputs yield a sentinel instead of an error,
// OCR noise must never end the session.
func Diff(old, new Value) Delta {
	if old.Numeric && new.Numeric {
		value := new.Num - old.Num
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return Delta{Kind: DeltaTooBig}
		}
		return Delta{Kind: DeltaNumber, Number: value}
	}

	if !old.Numeric && !new.Numeric && old.Raw != "" && new.Raw != "" {
		oldDur, okOld := ParseGameDuration(old.Raw)
		newDur, okNew := ParseGameDuration(new.Raw)
		if !okOld || !okNew {
			return Delta{Kind: DeltaUnparseable}
		}
		return Delta{Kind: DeltaDuration, Duration: newDur - oldDur}
	}

	return Delta{Kind: DeltaNone}
}
