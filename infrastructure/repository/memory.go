package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tapdash/domain/prestige"
)

// memorySession mirrors the persisted session record fields.
type memorySession struct {
	Instance   string
	ConfigName string
	Version    string
	State      string
	StartedAt  time.Time
	EndedAt    time.Time
}

// MemoryStatsSink is an in-memory sink for tests and runs without a
// database. Safe for concurrent use.
type MemoryStatsSink struct {
	mu        sync.Mutex
	sessions  map[string]*memorySession
	prestiges []prestige.Record
	snapshots []map[string]string
}

func NewMemoryStatsSink() *MemoryStatsSink {
	return &MemoryStatsSink{
		sessions: make(map[string]*memorySession),
	}
}

func (s *MemoryStatsSink) StartSession(_ context.Context, sessionID, instance, configName, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &memorySession{
		Instance:   instance,
		ConfigName: configName,
		Version:    version,
		State:      SessionStateRunning,
		StartedAt:  time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStatsSink) EndSession(_ context.Context, sessionID, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("no session record for %s", sessionID)
	}
	rec.State = state
	rec.EndedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStatsSink) CloseStale(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.sessions {
		if rec.State == SessionStateRunning {
			rec.State = SessionStateInterrupted
			rec.EndedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

func (s *MemoryStatsSink) RecordPrestige(_ context.Context, rec prestige.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prestiges = append(s.prestiges, rec)
	return nil
}

func (s *MemoryStatsSink) RecordStatSnapshot(_ context.Context, sessionID string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	copied["session_id"] = sessionID
	s.snapshots = append(s.snapshots, copied)
	return nil
}

func (s *MemoryStatsSink) AveragePrestigeTime(_ context.Context, sessionID string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total time.Duration
	var count int
	for _, rec := range s.prestiges {
		if rec.SessionID == sessionID && rec.Duration > 0 {
			total += rec.Duration
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return total / time.Duration(count), nil
}

// Prestiges returns the recorded prestiges. Test helper.
func (s *MemoryStatsSink) Prestiges() []prestige.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]prestige.Record(nil), s.prestiges...)
}

// SessionState returns the recorded state for a session. Test helper.
func (s *MemoryStatsSink) SessionState(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return "", false
	}
	return rec.State, true
}

// Snapshots returns the recorded stat snapshots. Test helper.
func (s *MemoryStatsSink) Snapshots() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.snapshots...)
}
