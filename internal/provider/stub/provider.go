// Package stub provides provider test doubles.
package stub

import (
	"context"
	"sync"

	"tokencard/internal/domain"
	"tokencard/internal/provider"
)

// Provider implements provider.Provider for testing. It returns a fixed
// snapshot or error and counts invocations.
type Provider struct {
	ProviderName string
	Kinds        []domain.IdentifierKind
	Snapshot     *domain.MarketSnapshot
	Err          error

	// Block, when non-nil, makes Resolve wait until the channel is closed
	// after counting the call. Used to hold a fetch in flight.
	Block chan struct{}

	mu    sync.Mutex
	calls int
}

// NewProvider creates a stub that supports all identifier kinds and resolves
// to an empty snapshot.
func NewProvider(name string) *Provider {
	return &Provider{
		ProviderName: name,
		Snapshot:     &domain.MarketSnapshot{},
	}
}

var _ provider.Provider = (*Provider)(nil)

// Name returns the configured provider name.
func (p *Provider) Name() string { return p.ProviderName }

// Supports reports whether kind is in Kinds; an empty Kinds list means all.
func (p *Provider) Supports(kind domain.IdentifierKind) bool {
	if len(p.Kinds) == 0 {
		return true
	}
	for _, k := range p.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Resolve counts the call and returns the configured snapshot or error.
func (p *Provider) Resolve(_ context.Context, _ domain.Identifier) (*domain.MarketSnapshot, error) {
	p.mu.Lock()
	p.calls++
	block := p.Block
	p.mu.Unlock()

	if block != nil {
		<-block
	}

	if p.Err != nil {
		return nil, p.Err
	}
	return p.Snapshot, nil
}

// Calls returns how many times Resolve was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
