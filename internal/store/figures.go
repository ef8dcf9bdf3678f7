package store

import (
	"context"
	"sync"

	"github.com/quillback/quill/internal/api"
)

// FigureStore persists extracted figures. It follows the same
// replace-on-reingest policy as chunk storage, keyed by document id.
type FigureStore interface {
	Put(ctx context.Context, fig *api.Figure) error
	ListIDs(ctx context.Context, docID string) ([]string, error)
	Delete(ctx context.Context, docID string, ids []string) error
}

// MemoryFigureStore is a process-local FigureStore for development and
// tests.
type MemoryFigureStore struct {
	mu      sync.RWMutex
	figures map[string]map[string]*api.Figure
}

func NewMemoryFigureStore() *MemoryFigureStore {
	return &MemoryFigureStore{
		figures: make(map[string]map[string]*api.Figure),
	}
}

func (s *MemoryFigureStore) Put(ctx context.Context, fig *api.Figure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDoc, exists := s.figures[fig.DocID]
	if !exists {
		byDoc = make(map[string]*api.Figure)
		s.figures[fig.DocID] = byDoc
	}
	byDoc[fig.ID] = fig
	return nil
}

func (s *MemoryFigureStore) ListIDs(ctx context.Context, docID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id := range s.figures[docID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryFigureStore) Delete(ctx context.Context, docID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDoc := s.figures[docID]
	for _, id := range ids {
		delete(byDoc, id)
	}
	return nil
}
