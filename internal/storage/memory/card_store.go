package memory

import (
	"context"
	"sort"
	"sync"

	"tokencard/internal/domain"
	"tokencard/internal/storage"
)

// CardStore is an in-memory implementation of storage.CardStore.
type CardStore struct {
	mu    sync.RWMutex
	cards map[string]*domain.Card // keyed by card_id
}

// NewCardStore creates a new in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[string]*domain.Card),
	}
}

// Insert adds a new card. Returns ErrDuplicateKey if card_id already exists.
func (s *CardStore) Insert(_ context.Context, c *domain.Card) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[c.ID]; exists {
		return storage.ErrDuplicateKey
	}

	cardCopy := *c
	s.cards[c.ID] = &cardCopy
	return nil
}

// Update replaces an existing card. Returns ErrNotFound if not exists.
func (s *CardStore) Update(_ context.Context, c *domain.Card) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[c.ID]; !exists {
		return storage.ErrNotFound
	}

	cardCopy := *c
	s.cards[c.ID] = &cardCopy
	return nil
}

// GetByID retrieves a card by its ID. Returns ErrNotFound if not exists.
func (s *CardStore) GetByID(_ context.Context, cardID string) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.cards[cardID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cardCopy := *c
	return &cardCopy, nil
}

// List retrieves all cards, ordered by created_at ASC.
func (s *CardStore) List(_ context.Context) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Card, 0, len(s.cards))
	for _, c := range s.cards {
		cardCopy := *c
		out = append(out, &cardCopy)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt == out[j].CreatedAt {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out, nil
}

// Delete removes a card. Returns ErrNotFound if not exists.
func (s *CardStore) Delete(_ context.Context, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[cardID]; !exists {
		return storage.ErrNotFound
	}

	delete(s.cards, cardID)
	return nil
}

var _ storage.CardStore = (*CardStore)(nil)
