package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps trips in process memory. Used for local development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	trips map[string]Trip
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trips: make(map[string]Trip), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, trip Trip) (Trip, error) {
	trip.ID = uuid.New().String()
	trip.CreatedAt = s.now().UTC()

	s.mu.Lock()
	s.trips[trip.ID] = trip
	s.mu.Unlock()
	return trip, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]Trip, error) {
	s.mu.RLock()
	out := make([]Trip, 0)
	for _, t := range s.trips {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(s.trips, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
