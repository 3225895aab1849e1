package storage

import (
	"context"

	"tokencard/internal/domain"
)

// CardStore provides access to cards storage.
type CardStore interface {
	// Insert adds a new card. Returns ErrDuplicateKey if card_id exists.
	Insert(ctx context.Context, c *domain.Card) error

	// Update replaces an existing card. Returns ErrNotFound if not exists.
	Update(ctx context.Context, c *domain.Card) error

	// GetByID retrieves a card by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, cardID string) (*domain.Card, error)

	// List retrieves all cards, ordered by created_at ASC.
	List(ctx context.Context) ([]*domain.Card, error)

	// Delete removes a card. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, cardID string) error
}
