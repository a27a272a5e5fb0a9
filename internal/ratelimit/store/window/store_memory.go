// Package window holds fixed-window counter stores for the contact rate limiter.
package window

import (
	"context"
	"sync"
	"time"

	"folio/internal/ratelimit/models"
)

// InMemoryStore keeps one fixed-window record per key in process memory.
// Every increment-and-compare runs under a single mutex, so counts are exact
// within one process. State is lost on restart.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*models.Record),
	}
}

// Hit applies one request to the key's window. A missing or expired record is
// replaced by a fresh window with count 1. Otherwise the request is allowed
// and counted while count < limit, and denied without counting once the limit
// is reached.
func (s *InMemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration, now time.Time) (*models.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok || record.Expired(now) {
		record = &models.Record{Key: key, Count: 1, ResetAt: now.Add(window)}
		s.records[key] = record
		return models.NewDecision(true, record.Count, limit, record.ResetAt, now), nil
	}

	if record.Count >= limit {
		return models.NewDecision(false, record.Count, limit, record.ResetAt, now), nil
	}

	record.Count++
	return models.NewDecision(true, record.Count, limit, record.ResetAt, now), nil
}

// Get returns a copy of the key's record, or nil when none is stored.
func (s *InMemoryStore) Get(_ context.Context, key string) *models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key]
	if !ok {
		return nil
	}
	copied := *record
	return &copied
}

// Sweep removes records whose window ended before now and returns how many
// were removed.
func (s *InMemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, record := range s.records {
		if record.Expired(now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked keys.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
