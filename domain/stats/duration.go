package stats

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// durationRE matches the in-game duration formats "Nd HH:MM:SS" and
// "HH:MM:SS". The statistics panel carries the day segment, the
// pre-prestige banner omits it; the hour and minute segments collapse
// when the game omits them for short durations.
var durationRE = regexp.MustCompile(
	`^(?:(?P<days>[.\d]+)d ?)?(?:(?P<hours>[.\d]+):)?(?:(?P<minutes>[.\d]+):)?(?P<seconds>[.\d]+)$`,
)

// ParseGameDuration parses a duration string as shown in game, for
// example "2d 13:37:02" off the statistics panel or "00:35:42" off the
// prestige banner. Returns false when the text does not match the
// grammar.
func ParseGameDuration(s string) (time.Duration, bool) {
	m := durationRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	var total float64
	scale := map[string]float64{"days": 86400, "hours": 3600, "minutes": 60, "seconds": 1}
	for i, name := range durationRE.SubexpNames() {
		if name == "" || m[i] == "" {
			continue
		}
		f, err := strconv.ParseFloat(m[i], 64)
		if err != nil {
			return 0, false
		}
		total += f * scale[name]
	}
	return time.Duration(total * float64(time.Second)), true
}

// FormatGameDuration renders a duration back into the in-game
// "Dd HH:MM:SS" format.
func FormatGameDuration(d time.Duration) string {
	remainder := int64(d / time.Second)
	days := remainder / 86400
	remainder %= 86400
	hours := remainder / 3600
	remainder %= 3600
	minutes := remainder / 60
	seconds := remainder % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
}

// DeltaFromValues builds a duration from short in-game segments such as
// ["1d", "4h", "32m"], as read off cooldown labels. Returns false when no
// segment parses or the total is zero.
func DeltaFromValues(values []string) (time.Duration, bool) {
	var total time.Duration
	for _, v := range values {
		if len(v) < 2 {
			continue
		}
		n, err := strconv.Atoi(v[:len(v)-1])
		if err != nil {
			return 0, false
		}
		switch v[len(v)-1] {
		case 'd':
			total += time.Duration(n) * 24 * time.Hour
		case 'h':
			total += time.Duration(n) * time.Hour
		case 'm':
			total += time.Duration(n) * time.Minute
		}
	}
	if total == 0 {
		return 0, false
	}
	return total, true
}
