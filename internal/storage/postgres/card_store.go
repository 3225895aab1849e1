package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tokencard/internal/domain"
	"tokencard/internal/storage"
)

// CardStore implements storage.CardStore using PostgreSQL. The rendered
// view model is stored as JSONB so a restarted server can serve the last
// known rendering without re-fetching.
type CardStore struct {
	pool *Pool
}

// NewCardStore creates a new CardStore.
func NewCardStore(pool *Pool) *CardStore {
	return &CardStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CardStore = (*CardStore)(nil)

// Insert adds a new card. Returns ErrDuplicateKey if card_id exists.
func (s *CardStore) Insert(ctx context.Context, c *domain.Card) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	vm, err := marshalViewModel(c.LastViewModel)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cards (
			card_id, identifier_raw, identifier_kind, on_curve, intent,
			provider, view_model, status, remaining_ticks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.pool.Exec(ctx, query,
		c.ID,
		c.Identifier.Raw,
		string(c.Identifier.Kind),
		c.Identifier.OnCurve,
		c.Intent,
		c.Provider,
		vm,
		string(c.Status),
		c.RemainingTicks,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing card. The identifier
// and intent never change after creation. Returns ErrNotFound if not exists.
func (s *CardStore) Update(ctx context.Context, c *domain.Card) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	vm, err := marshalViewModel(c.LastViewModel)
	if err != nil {
		return err
	}

	query := `
		UPDATE cards
		SET provider = $2, view_model = $3, status = $4,
		    remaining_ticks = $5, updated_at = $6
		WHERE card_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		c.ID,
		c.Provider,
		vm,
		string(c.Status),
		c.RemainingTicks,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByID retrieves a card by its ID. Returns ErrNotFound if not exists.
func (s *CardStore) GetByID(ctx context.Context, cardID string) (*domain.Card, error) {
	query := `
		SELECT card_id, identifier_raw, identifier_kind, on_curve, intent,
		       provider, view_model, status, remaining_ticks, created_at, updated_at
		FROM cards
		WHERE card_id = $1
	`

	row := s.pool.QueryRow(ctx, query, cardID)
	c, err := scanCard(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get card by id: %w", err)
	}
	return c, nil
}

// List retrieves all cards, ordered by created_at ASC.
func (s *CardStore) List(ctx context.Context) ([]*domain.Card, error) {
	query := `
		SELECT card_id, identifier_raw, identifier_kind, on_curve, intent,
		       provider, view_model, status, remaining_ticks, created_at, updated_at
		FROM cards
		ORDER BY created_at ASC, card_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

// Delete removes a card. Returns ErrNotFound if not exists.
func (s *CardStore) Delete(ctx context.Context, cardID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cards WHERE card_id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanCard scans a single row into a Card.
func scanCard(row pgx.Row) (*domain.Card, error) {
	var (
		c      domain.Card
		kind   string
		status string
		vm     []byte
	)

	err := row.Scan(
		&c.ID,
		&c.Identifier.Raw,
		&kind,
		&c.Identifier.OnCurve,
		&c.Intent,
		&c.Provider,
		&vm,
		&status,
		&c.RemainingTicks,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Identifier.Kind = domain.IdentifierKind(kind)
	c.Status = domain.CardStatus(status)

	if len(vm) > 0 {
		var view domain.ViewModel
		if err := json.Unmarshal(vm, &view); err != nil {
			return nil, fmt.Errorf("decode view model: %w", err)
		}
		c.LastViewModel = &view
	}

	return &c, nil
}

func marshalViewModel(vm *domain.ViewModel) ([]byte, error) {
	if vm == nil {
		return nil, nil
	}
	data, err := json.Marshal(vm)
	if err != nil {
		return nil, fmt.Errorf("encode view model: %w", err)
	}
	return data, nil
}
