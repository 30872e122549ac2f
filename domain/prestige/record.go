package prestige

import "time"

// Record captures one completed prestige for the statistics store.
type Record struct {
	SessionID string        `bson:"session_id"`
	Timestamp time.Time     `bson:"timestamp"`
	Duration  time.Duration `bson:"duration"` // time since the previous prestige, zero when unreadable
	Stage     int           `bson:"stage"`    // stage reached, zero when unknown
	Artifact  string        `bson:"artifact"` // artifact upgraded afterwards, empty when none
}
