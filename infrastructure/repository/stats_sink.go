package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tapdash/domain/prestige"
)

// Session states persisted with each session record. A record must
// always end in a terminal state; "running" may never survive a dead
// process (CloseStale cleans up after crashes).
const (
	SessionStateRunning     = "running"
	SessionStateStopped     = "stopped"
	SessionStateErrored     = "errored"
	SessionStateInterrupted = "interrupted"
)

// sessionDocument is the MongoDB document structure for sessions.
type sessionDocument struct {
	SessionID  string     `bson:"session_id"`
	Instance   string     `bson:"instance"`
	ConfigName string     `bson:"config_name"`
	Version    string     `bson:"version"`
	State      string     `bson:"state"`
	StartedAt  time.Time  `bson:"started_at"`
	EndedAt    *time.Time `bson:"ended_at,omitempty"`
}

// prestigeDocument is the MongoDB document structure for prestiges.
type prestigeDocument struct {
	SessionID       string    `bson:"session_id"`
	Timestamp       time.Time `bson:"timestamp"`
	DurationSeconds int64     `bson:"duration_seconds"`
	Stage           int       `bson:"stage"`
	Artifact        string    `bson:"artifact,omitempty"`
}

// snapshotDocument is the MongoDB document structure for stat snapshots.
type snapshotDocument struct {
	SessionID string            `bson:"session_id"`
	Timestamp time.Time         `bson:"timestamp"`
	Values    map[string]string `bson:"values"`
}

// MongoStatsSink persists session lifecycles, prestiges and stat
// snapshots to MongoDB.
type MongoStatsSink struct {
	sessions  *mongo.Collection
	prestiges *mongo.Collection
	snapshots *mongo.Collection
	logger    *slog.Logger
}

// NewMongoStatsSink creates a sink over the standard collections.
func NewMongoStatsSink(db *MongoDB, logger *slog.Logger) *MongoStatsSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoStatsSink{
		sessions:  db.Collection("sessions"),
		prestiges: db.Collection("prestiges"),
		snapshots: db.Collection("stat_snapshots"),
		logger:    logger,
	}
}

// StartSession inserts a running session record.
func (s *MongoStatsSink) StartSession(ctx context.Context, sessionID, instance, configName, version string) error {
	doc := sessionDocument{
		SessionID:  sessionID,
		Instance:   instance,
		ConfigName: configName,
		Version:    version,
		State:      SessionStateRunning,
		StartedAt:  time.Now().UTC(),
	}
	if _, err := s.sessions.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert session record: %w", err)
	}
	return nil
}

// EndSession places the session record in a terminal state.
func (s *MongoStatsSink) EndSession(ctx context.Context, sessionID, state string) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"state": state, "ended_at": now}}
	res, err := s.sessions.UpdateOne(ctx, bson.M{"session_id": sessionID}, update)
	if err != nil {
		return fmt.Errorf("failed to end session record: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no session record for %s", sessionID)
	}
	return nil
}

// CloseStale marks every leftover running record as interrupted. Called
// once at process startup so a crash never leaves a record running
// forever.
func (s *MongoStatsSink) CloseStale(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"state": SessionStateInterrupted, "ended_at": now}}
	res, err := s.sessions.UpdateMany(ctx, bson.M{"state": SessionStateRunning}, update)
	if err != nil {
		return 0, fmt.Errorf("failed to close stale sessions: %w", err)
	}
	if res.ModifiedCount > 0 {
		s.logger.Warn("closed stale session records", "count", res.ModifiedCount)
	}
	return res.ModifiedCount, nil
}

// RecordPrestige appends a completed prestige.
func (s *MongoStatsSink) RecordPrestige(ctx context.Context, rec prestige.Record) error {
	doc := prestigeDocument{
		SessionID:       rec.SessionID,
		Timestamp:       rec.Timestamp,
		DurationSeconds: int64(rec.Duration / time.Second),
		Stage:           rec.Stage,
		Artifact:        rec.Artifact,
	}
	if _, err := s.prestiges.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert prestige record: %w", err)
	}
	return nil
}

// RecordStatSnapshot appends a snapshot of the current raw stat values.
func (s *MongoStatsSink) RecordStatSnapshot(ctx context.Context, sessionID string, values map[string]string) error {
	doc := snapshotDocument{
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Values:    values,
	}
	if _, err := s.snapshots.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert stat snapshot: %w", err)
	}
	return nil
}

// AveragePrestigeTime aggregates the mean prestige duration for a
// session. Prestiges whose duration could not be read are excluded.
func (s *MongoStatsSink) AveragePrestigeTime(ctx context.Context, sessionID string) (time.Duration, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"session_id":       sessionID,
			"duration_seconds": bson.M{"$gt": 0},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$duration_seconds"},
		}}},
	}

	cursor, err := s.prestiges.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate prestige durations: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Average float64 `bson:"average"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, fmt.Errorf("failed to decode prestige aggregation: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return time.Duration(results[0].Average * float64(time.Second)), nil
}
