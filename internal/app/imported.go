package app

import (
	"sync"

	"flex_reviews/internal/domain"
)

// ImportedStore keeps normalized place reviews keyed by place id. Re-importing
// a place replaces its previous batch (review ids are deterministic, so this
// is idempotent). All returns batches in first-import order so combined
// listings stay stable across calls.
type ImportedStore struct {
	mu    sync.RWMutex
	byID  map[string][]domain.NormalizedReview
	order []string
}

func NewImportedStore() *ImportedStore {
	return &ImportedStore{byID: make(map[string][]domain.NormalizedReview)}
}

func (s *ImportedStore) Set(placeID string, reviews []domain.NormalizedReview) {
	cp := make([]domain.NormalizedReview, len(reviews))
	copy(cp, reviews)

	s.mu.Lock()
	if _, seen := s.byID[placeID]; !seen {
		s.order = append(s.order, placeID)
	}
	s.byID[placeID] = cp
	s.mu.Unlock()
}

func (s *ImportedStore) Get(placeID string) ([]domain.NormalizedReview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.byID[placeID]
	if !ok {
		return nil, false
	}
	cp := make([]domain.NormalizedReview, len(rs))
	copy(cp, rs)
	return cp, true
}

// All flattens every imported batch, in first-import order.
func (s *ImportedStore) All() []domain.NormalizedReview {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.NormalizedReview
	for _, id := range s.order {
		out = append(out, s.byID[id]...)
	}
	return out
}
