package runs

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps runs in process memory. The server falls back to it when
// no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: map[string]Run{}}
}

// Insert implements Store
func (s *MemoryStore) Insert(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("insert run %s: duplicate id", run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

// List implements Store
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	s.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Started.After(runs[j].Started)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
