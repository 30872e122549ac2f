package session

import (
	"context"
	"time"

	"tapdash/domain/prestige"
)

// StatsSink receives everything a session persists: its lifecycle
// record, completed prestiges and stat snapshots. The sink owns
// durability and historical querying. Implemented by
// repository.MongoStatsSink and repository.MemoryStatsSink.
type StatsSink interface {
	StartSession(ctx context.Context, sessionID, instance, configName, version string) error
	EndSession(ctx context.Context, sessionID, state string) error
	RecordPrestige(ctx context.Context, rec prestige.Record) error
	RecordStatSnapshot(ctx context.Context, sessionID string, values map[string]string) error
	AveragePrestigeTime(ctx context.Context, sessionID string) (time.Duration, error)
}
