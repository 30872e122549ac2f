package session

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"tapdash/domain/profile"
	"tapdash/domain/stats"
	"tapdash/infrastructure/ocr"
	"tapdash/infrastructure/screen"
)

const (
	// stageCap is the maximum stage the current game content can
	// reach. Any parsed value above it is OCR garbage, not progress.
	stageCap = 55000

	// stageParseThreshold flags a parsed stage that jumped implausibly
	// far from the previous reading within one tick.
	stageParseThreshold = 10000
)

// statKeys are the rows read off the in-game statistics panel, in
// screen order. Each maps to a "stat_<key>" region in the profile.
var statKeys = []string{
	"highest_stage_reached",
	"total_pet_level",
	"gold_earned",
	"taps",
	"titans_killed",
	"bosses_killed",
	"critical_hits",
	"chestersons_killed",
	"prestiges",
	"days_since_install",
	"play_time",
	"relics_earned",
	"fairies_tapped",
	"daily_achievements",
}

// StatsReader extracts typed values from screen captures. Its cached
// values persist across refreshes; a failed OCR pass never overwrites a
// previously good value.
type StatsReader struct {
	grabber    *screen.Grabber
	recognizer ocr.Recognizer
	prof       *profile.Profile
	log        *slog.Logger

	values map[string]string
}

// NewStatsReader creates a reader over the given capture and OCR
// capabilities.
func NewStatsReader(grabber *screen.Grabber, recognizer ocr.Recognizer, prof *profile.Profile, log *slog.Logger) *StatsReader {
	return &StatsReader{
		grabber:    grabber,
		recognizer: recognizer,
		prof:       prof,
		log:        log,
		values:     make(map[string]string),
	}
}

// Values returns a copy of the current raw stat values.
func (r *StatsReader) Values() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// HighestStage returns the recorded highest stage as a number, false
// when it has not been read yet or does not normalize.
func (r *StatsReader) HighestStage() (int, bool) {
	raw, ok := r.values["highest_stage_reached"]
	if !ok {
		return 0, false
	}
	v := stats.Normalize(raw)
	if !v.Numeric {
		return 0, false
	}
	return int(v.Num), true
}

// RefreshFromScreen OCRs every stat row. The stats panel must be open
// and scrolled to the rows before calling. Rows whose OCR result holds
// no digit are skipped, keeping the previous value.
func (r *StatsReader) RefreshFromScreen() (map[string]string, error) {
	for _, key := range statKeys {
		region, ok := r.prof.Region("stat_" + key)
		if !ok {
			return nil, fmt.Errorf("profile has no region for stat %q", key)
		}

		img, err := r.grabber.SnapshotRegion(region)
		if err != nil {
			return nil, err
		}

		text, err := r.recognizer.Text(ocr.PrepareStats(img))
		if err != nil {
			return nil, err
		}
		r.log.Debug("ocr result", "key", key, "text", text)

		if !containsDigit(text) {
			r.log.Warn("no digits in ocr result, keeping previous value", "key", key)
			continue
		}

		r.values[key] = extractStatValue(key, text)
	}
	return r.Values(), nil
}

// ParseStage reads the current stage counter. Returns false when the
// counter is unreadable or fails a sanity guard; the caller decides how
// to update its state.
func (r *StatsReader) ParseStage(advancedStart, lastStage int, lastKnown bool) (int, bool) {
	digits, ok := r.readStageDigits()
	if !ok {
		return 0, false
	}
	stage, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	if stage > stageCap {
		r.log.Info("parsed stage above cap, discarding", "stage", stage, "cap", stageCap)
		return 0, false
	}
	if advancedStart > 0 && stage < advancedStart {
		r.log.Info("parsed stage below advanced start, discarding",
			"stage", stage, "advanced_start", advancedStart)
		return 0, false
	}
	if lastKnown && stage-lastStage > stageParseThreshold {
		r.log.Info("parsed stage jumped past the change threshold, discarding",
			"stage", stage, "last_stage", lastStage)
		return 0, false
	}

	return stage, true
}

// StageReadable reports whether the stage counter currently OCRs to
// digits. A readable counter means the game is on its main screen, not
// mid-transition.
func (r *StatsReader) StageReadable() bool {
	_, ok := r.readStageDigits()
	return ok
}

func (r *StatsReader) readStageDigits() (string, bool) {
	region, ok := r.prof.Region("stage")
	if !ok {
		r.log.Error("profile has no stage region")
		return "", false
	}

	img, err := r.grabber.SnapshotRegion(region)
	if err != nil {
		r.log.Warn("stage capture failed", "error", err)
		return "", false
	}

	text, err := r.recognizer.Digits(ocr.PrepareStage(img))
	if err != nil {
		return "", false
	}

	digits := keepDigits(text)
	if digits == "" {
		r.log.Debug("stage counter unreadable")
		return "", false
	}
	return digits, true
}

// Banner is the pre-prestige screen reading: time since the previous
// prestige and the advanced-start stage of the next run. Either field
// may be unreadable independently.
type Banner struct {
	SinceLast     time.Duration
	SinceLastOK   bool
	AdvancedStart int
	AdvancedOK    bool
}

// ParsePrestigeBanner reads the prestige panel. The panel must be open.
func (r *StatsReader) ParsePrestigeBanner() (Banner, error) {
	var b Banner

	if region, ok := r.prof.Region("prestige_time_since"); ok {
		img, err := r.grabber.SnapshotRegion(region)
		if err != nil {
			return b, err
		}
		text, err := r.recognizer.Text(ocr.PrepareStats(img))
		if err != nil {
			return b, err
		}
		if d, ok := stats.ParseGameDuration(text); ok {
			b.SinceLast, b.SinceLastOK = d, true
		} else {
			r.log.Warn("could not parse time since last prestige", "text", text)
		}
	}

	if region, ok := r.prof.Region("prestige_advanced_start"); ok {
		img, err := r.grabber.SnapshotRegion(region)
		if err != nil {
			return b, err
		}
		text, err := r.recognizer.Digits(ocr.PrepareStage(img))
		if err != nil {
			return b, err
		}
		digits := keepDigits(text)
		if stage, err := strconv.Atoi(digits); err == nil && stage <= stageCap {
			b.AdvancedStart, b.AdvancedOK = stage, true
		} else {
			r.log.Warn("could not parse advanced start", "text", text)
		}
	}

	return b, nil
}

// RaidAttacksReset reads when the clan raid's attack rounds reset. The
// raid screen must be open. The counter reads like "Attacks reset in
// 1d 4h 30m"; only the segments after the label carry time values.
func (r *StatsReader) RaidAttacksReset(now time.Time) (time.Time, bool) {
	region, ok := r.prof.Region("raid_attack_reset")
	if !ok {
		r.log.Error("profile has no raid attack reset region")
		return time.Time{}, false
	}

	img, err := r.grabber.SnapshotRegion(region)
	if err != nil {
		r.log.Warn("raid reset capture failed", "error", err)
		return time.Time{}, false
	}
	text, err := r.recognizer.Text(ocr.PrepareStats(img))
	if err != nil {
		return time.Time{}, false
	}

	fields := strings.Fields(text)
	if len(fields) <= 3 {
		r.log.Warn("raid reset counter unreadable", "text", text)
		return time.Time{}, false
	}
	delta, ok := stats.DeltaFromValues(fields[3:])
	if !ok {
		r.log.Warn("could not parse raid reset segments", "text", text)
		return time.Time{}, false
	}
	return now.Add(delta), true
}

func containsDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

func keepDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// extractStatValue isolates the value portion of a stat row. Rows read
// as "Gold Earned: 1.4K" or "Play Time 2d 13:37:02"; the label is
// discarded.
func extractStatValue(key, text string) string {
	text = strings.TrimSpace(text)

	if parts := strings.Split(text, ":"); len(parts) == 2 {
		return strings.ReplaceAll(parts[1], " ", "")
	}

	fields := strings.Fields(text)
	if key == "play_time" && len(fields) >= 2 {
		return strings.Join(fields[len(fields)-2:], " ")
	}
	if len(fields) > 0 {
		return fields[len(fields)-1]
	}
	return text
}
