package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/runcondition/pkg/domain"
)

// Store implements ports.BuildStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Build
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Build),
	}
}

// Save persists the build in memory.
func (s *Store) Save(ctx context.Context, build *domain.Build) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := build.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[build.ID] = copied
	return nil
}

// Load retrieves the build from memory.
func (s *Store) Load(ctx context.Context, buildID string) (*domain.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	build, ok := s.data[buildID]
	if !ok {
		return nil, domain.ErrBuildNotFound
	}

	// Copy on read so caller can't mutate store state directly by pointer
	return build.Clone(), nil
}

// Causes returns a copy of the build's causes.
func (s *Store) Causes(ctx context.Context, buildID string) ([]domain.Cause, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	build, ok := s.data[buildID]
	if !ok {
		return nil, domain.ErrBuildNotFound
	}
	return build.CauseList(), nil
}

// AppendCause adds a cause after the existing ones.
func (s *Store) AppendCause(ctx context.Context, buildID string, cause domain.Cause) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	build, ok := s.data[buildID]
	if !ok {
		return domain.ErrBuildNotFound
	}
	build.AddCause(cause)
	return nil
}

// Delete removes the build.
func (s *Store) Delete(ctx context.Context, buildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, buildID)
	return nil
}

// List returns stored build IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
