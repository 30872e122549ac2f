package stats

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		numeric bool
		num     float64
	}{
		{"plain integer", "100", true, 100},
		{"plain float", "2.5", true, 2.5},
		{"k suffix", "1.4K", true, 1400},
		{"m suffix", "93.4M", true, 93400000},
		{"unknown suffix keeps number", "5T", true, 5},
		{"non numeric passthrough", "Noop", false, 0},
		{"empty passthrough", "", false, 0},
		{"duration passthrough", "0d 12:34:07", false, 0},
		{"zero with suffix passthrough", "0K", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Normalize(tt.raw)
			if v.Numeric != tt.numeric {
				t.Fatalf("Normalize(%q).Numeric = %v, want %v", tt.raw, v.Numeric, tt.numeric)
			}
			if v.Numeric && v.Num != tt.num {
				t.Errorf("Normalize(%q).Num = %v, want %v", tt.raw, v.Num, tt.num)
			}
			if !v.Numeric && v.Raw != tt.raw {
				t.Errorf("Normalize(%q).Raw = %q, want passthrough", tt.raw, v.Raw)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{"100", "2.5", "1.4K", "93.4M"} {
		once := Normalize(raw)
		twice := Normalize(once.String())
		if !twice.Numeric || twice.Num != once.Num {
			t.Errorf("Normalize(Normalize(%q)) = %v, want %v", raw, twice.Num, once.Num)
		}
	}
}

func TestValue_FormatNumber(t *testing.T) {
	if got := Normalize("43123").FormatNumber(); got != "43,123" {
		t.Errorf("FormatNumber = %q, want 43,123", got)
	}
	if got := Normalize("Noop").FormatNumber(); got != "Noop" {
		t.Errorf("FormatNumber of non-numeric = %q, want raw passthrough", got)
	}
}

func TestDiff_Numeric(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		want     float64
	}{
		{"integers", "100", "200", 100},
		{"floats", "2.0", "8.0", 6},
		{"suffixed", "1K", "1.4K", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diff(Normalize(tt.old), Normalize(tt.new))
			if d.Kind != DeltaNumber {
				t.Fatalf("Diff kind = %v, want DeltaNumber", d.Kind)
			}
			if d.Number != tt.want {
				t.Errorf("Diff(%s, %s) = %v, want %v", tt.old, tt.new, d.Number, tt.want)
			}
		})
	}
}

func TestDiff_Duration(t *testing.T) {
	d := Diff(Normalize("0d 12:34:07"), Normalize("2d 00:20:34"))
	if d.Kind != DeltaDuration {
		t.Fatalf("Diff kind = %v, want DeltaDuration", d.Kind)
	}
	want := (2*24*time.Hour + 20*time.Minute + 34*time.Second) -
		(12*time.Hour + 34*time.Minute + 7*time.Second)
	if d.Duration != want {
		t.Errorf("Diff duration = %v, want %v", d.Duration, want)
	}
	if got := d.String(); got != "1d 11:46:27" {
		t.Errorf("Diff string = %q, want 1d 11:46:27", got)
	}
}

func TestDiff_Sentinels(t *testing.T) {
	// 1e308 - (-1e308) overflows float64 to +Inf.
	d := Diff(Value{Num: -1e308, Numeric: true}, Value{Num: 1e308, Numeric: true})
	if d.Kind != DeltaTooBig || d.String() != "TOO BIG" {
		t.Errorf("overflowing diff = %v (%q), want DeltaTooBig", d.Kind, d.String())
	}

	d = Diff(Normalize("garbage"), Normalize("more garbage"))
	if d.Kind != DeltaUnparseable || d.String() != "ERROR DIFFING" {
		t.Errorf("garbage diff = %v (%q), want DeltaUnparseable", d.Kind, d.String())
	}

	d = Diff(Normalize("100"), Normalize("Noop"))
	if d.Kind != DeltaNone {
		t.Errorf("mixed-kind diff = %v, want DeltaNone", d.Kind)
	}
}

func TestParseGameDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"0d 12:34:07", 12*time.Hour + 34*time.Minute + 7*time.Second, true},
		{"2d 00:20:34", 48*time.Hour + 20*time.Minute + 34*time.Second, true},
		{"1d 00:00:00", 24 * time.Hour, true},
		// The pre-prestige banner shows no day segment.
		{"00:35:42", 35*time.Minute + 42*time.Second, true},
		{"12:34:07", 12*time.Hour + 34*time.Minute + 7*time.Second, true},
		{"not a duration", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseGameDuration(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseGameDuration(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatGameDuration_RoundTrip(t *testing.T) {
	for _, s := range []string{"0d 12:34:07", "2d 00:20:34", "1d 11:46:27"} {
		d, ok := ParseGameDuration(s)
		if !ok {
			t.Fatalf("ParseGameDuration(%q) failed", s)
		}
		if got := FormatGameDuration(d); got != s {
			t.Errorf("round trip of %q = %q", s, got)
		}
	}
}

func TestDeltaFromValues(t *testing.T) {
	d, ok := DeltaFromValues([]string{"1d", "4h", "32m"})
	if !ok {
		t.Fatal("DeltaFromValues returned not ok")
	}
	want := 24*time.Hour + 4*time.Hour + 32*time.Minute
	if d != want {
		t.Errorf("DeltaFromValues = %v, want %v", d, want)
	}

	if _, ok := DeltaFromValues(nil); ok {
		t.Error("empty input should not produce a delta")
	}
	if _, ok := DeltaFromValues([]string{"xd"}); ok {
		t.Error("unparseable segment should not produce a delta")
	}
}
