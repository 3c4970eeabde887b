// Package memstore is an in-process claim store for tests and dry runs.
package memstore

import (
	"context"
	"sync"

	"github.com/ppiankov/marincop/internal/model"
	"github.com/ppiankov/marincop/internal/store"
)

// Store keeps encoded claim documents in a map
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New creates an empty store
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// Get returns a copy of the claim with id
func (s *Store) Get(_ context.Context, id string) (*model.Claim, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, model.NotFoundError("claim", id)
	}
	return store.DecodeClaim(doc)
}

// List returns copies of all claims, newest first
func (s *Store) List(_ context.Context) ([]*model.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Claim, 0, len(s.docs))
	for _, doc := range s.docs {
		c, err := store.DecodeClaim(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	store.SortNewestFirst(out)
	return out, nil
}

// Upsert stores a copy of claim
func (s *Store) Upsert(_ context.Context, claim *model.Claim) error {
	doc, err := store.EncodeClaim(claim)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[claim.ID] = doc
	s.mu.Unlock()
	return nil
}

// Close is a no-op
func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
