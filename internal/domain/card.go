package domain

// CardStatus is the refresh lifecycle state of a card.
type CardStatus string

const (
	StatusIdle        CardStatus = "IDLE"
	StatusFetching    CardStatus = "FETCHING"
	StatusReady       CardStatus = "READY"
	StatusUnavailable CardStatus = "UNAVAILABLE"
)

// Card is a live, refreshable session bound to one identifier and the
// provider that first resolved it. Provider never changes across refreshes:
// a refresh re-queries the same provider, it does not re-run router fallback.
// Cards are mutated only by the refresh engine.
type Card struct {
	ID         string     `json:"id"`
	Identifier Identifier `json:"identifier"`

	// Intent is the routing intent the card was created with. Immutable; a
	// retry of a card that never resolved re-runs the chain for this intent.
	Intent string `json:"intent,omitempty"`

	// Provider is the name of the provider that resolved this card.
	// Empty while the first resolution is still in flight or failed before
	// any provider produced data.
	Provider string `json:"provider,omitempty"`

	LastViewModel *ViewModel `json:"view_model,omitempty"`
	Status        CardStatus `json:"status"`

	// RemainingTicks is the unexhausted timed auto-refresh budget.
	RemainingTicks int `json:"remaining_ticks"`

	CreatedAt int64 `json:"created_at"` // Unix milliseconds
	UpdatedAt int64 `json:"updated_at"` // Unix milliseconds
}
