// Package document persists registered document records. Stores return
// sentinel.ErrNotFound for unknown ids and sentinel.ErrConflict when Create
// hits an existing id; time is always injected, never read from the clock.
package document

import (
	"context"
	"fmt"
	"sync"

	"sigil/internal/registry/models"
	"sigil/pkg/domain"
	"sigil/pkg/platform/sentinel"
)

// InMemoryDocumentStore keeps documents in a mutex-guarded map for tests
// and single-instance dev deployments.
type InMemoryDocumentStore struct {
	mu        sync.RWMutex
	documents map[domain.DocumentID]*models.Document
}

// New constructs an empty in-memory document store.
func New() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{documents: make(map[domain.DocumentID]*models.Document)}
}

func (s *InMemoryDocumentStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("document %s already registered: %w", doc.ID, sentinel.ErrConflict)
	}
	s.documents[doc.ID] = doc.Clone()
	return nil
}

func (s *InMemoryDocumentStore) FindByID(_ context.Context, id domain.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %w", sentinel.ErrNotFound)
	}
	return doc.Clone(), nil
}
