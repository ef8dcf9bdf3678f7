package store

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store for development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*Point
	dims        map[string]uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]*Point),
		dims:        make(map[string]uint),
	}
}

func (s *MemoryStore) EnsureCollection(ctx context.Context, name string, dims uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; !exists {
		s.collections[name] = make(map[string]*Point)
		s.dims[name] = dims
	}
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, collection string, points []*Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, exists := s.collections[collection]
	if !exists {
		coll = make(map[string]*Point)
		s.collections[collection] = coll
	}
	for _, p := range points {
		coll[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) ListIDs(ctx context.Context, collection string, docID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, p := range s.collections[collection] {
		if p.Payload["doc_id"] == docID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	for _, id := range ids {
		delete(coll, id)
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Get returns a stored point, for inspection.
func (s *MemoryStore) Get(collection string, id string) (*Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.collections[collection][id]
	return p, ok
}

// Count returns the number of points in a collection.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.collections[collection])
}
