// Package stats holds the value model for OCR-derived game statistics:
// unit-suffix normalization, duration parsing and delta computation.
//
// OCR output is noisy. Every function in this package degrades gracefully:
// a reading that cannot be interpreted is preserved as raw text instead of
// being coerced to zero, so downstream diffs can flag it rather than
// corrupt recorded history.
package stats

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// suffixMultiplier maps in-game unit suffixes to their numeric scale.
// The game abbreviates large values, so the expansion is the closest we
// can get to the real value.
var suffixMultiplier = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
}

// Value is a single statistic reading. Numeric is false for readings that
// failed normalization; Raw always preserves the original text.
type Value struct {
	Raw     string
	Num     float64
	Numeric bool
}

// Normalize interprets a raw OCR string as a number where possible.
// Plain numerics parse directly; a trailing K or M suffix expands by
// 1e3/1e6. Anything else (duration strings, garbage, empty input) passes
// through unchanged as a non-numeric Value.
func Normalize(raw string) Value {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{Raw: raw, Num: f, Numeric: true}
	}
	if len(raw) < 2 {
		return Value{Raw: raw}
	}

	number, err := strconv.ParseFloat(raw[:len(raw)-1], 64)
	if err != nil || number == 0 {
		return Value{Raw: raw}
	}

	if mult, ok := suffixMultiplier[raw[len(raw)-1]]; ok {
		return Value{Raw: raw, Num: number * mult, Numeric: true}
	}
	// Unknown suffix on an otherwise numeric reading; keep the number.
	return Value{Raw: raw, Num: number, Numeric: true}
}

// String renders numeric values without a suffix so that normalizing the
// output again yields the same number.
func (v Value) String() string {
	if !v.Numeric {
		return v.Raw
	}
	if v.Num == float64(int64(v.Num)) {
		return strconv.FormatInt(int64(v.Num), 10)
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

// FormatNumber renders a numeric value with thousand separators for
// display, ie 43123 becomes "43,123". Non-numeric values render raw.
func (v Value) FormatNumber() string {
	if !v.Numeric {
		return v.Raw
	}
	return humanize.Comma(int64(v.Num))
}
