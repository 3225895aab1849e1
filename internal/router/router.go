// Package router selects and falls back between providers per identifier
// kind.
package router

import (
	"context"
	"errors"
	"fmt"

	"tokencard/internal/domain"
	"tokencard/internal/observability"
	"tokencard/internal/provider"
)

// Intent disambiguates what the caller wants from a Solana-style address,
// which is shape-identical for token mints and wallets. Routing decides by
// caller context, not by address shape.
type Intent string

const (
	// IntentMarket asks for market data, falling back to wallet analytics
	// when no market data exists for a Solana-style address.
	IntentMarket Intent = "market"
	// IntentWallet asks for wallet analytics directly.
	IntentWallet Intent = "wallet"
)

// ErrUnresolved is returned when every provider in the chain reported no
// data. It wraps provider.ErrNotFound so callers can treat it as the
// expected "nothing to show" outcome.
var ErrUnresolved = fmt.Errorf("identifier unresolved: %w", provider.ErrNotFound)

// Router tries providers in a fixed priority order per identifier kind.
type Router struct {
	aggregator Provider
	nameLookup Provider
	wallet     Provider
}

// Provider is the resolution capability the router needs.
type Provider = provider.Provider

// Options wires the three provider roles.
type Options struct {
	Aggregator      Provider // DexScreener-style market aggregator
	NameLookup      Provider // coin-name lookup
	WalletAnalytics Provider // wallet bundling statistics
}

// New creates a Router with the given providers.
func New(opts Options) *Router {
	return &Router{
		aggregator: opts.Aggregator,
		nameLookup: opts.NameLookup,
		wallet:     opts.WalletAnalytics,
	}
}

// Route resolves the identifier through the chain for its kind and returns
// the first snapshot along with the name of the provider that produced it.
//
// Chains:
//   - EVM address: aggregator only.
//   - Solana address, market intent: aggregator, then wallet analytics but
//     only on ErrNotFound. A ProviderError short-circuits immediately: an
//     upstream outage must surface, not be masked by the next provider.
//   - Solana address, wallet intent: wallet analytics only.
//   - Freeform name: name lookup only.
//
// An exhausted chain returns ErrUnresolved.
func (r *Router) Route(ctx context.Context, id domain.Identifier, intent Intent) (*domain.MarketSnapshot, string, error) {
	chain, err := r.chainFor(id.Kind, intent)
	if err != nil {
		return nil, "", err
	}

	tried := 0
	for _, p := range chain {
		if !p.Supports(id.Kind) {
			continue
		}
		if tried > 0 {
			observability.RecordFallback()
		}
		tried++
		snap, err := p.Resolve(ctx, id)
		if err == nil {
			return snap, p.Name(), nil
		}
		if !errors.Is(err, provider.ErrNotFound) {
			// ProviderError: stop here and surface it.
			return nil, p.Name(), err
		}
	}

	return nil, "", ErrUnresolved
}

// ProviderByName returns the wired provider with the given name. It is how
// the refresh engine re-reaches the exact provider a card resolved with.
func (r *Router) ProviderByName(name string) (Provider, bool) {
	for _, p := range []Provider{r.aggregator, r.nameLookup, r.wallet} {
		if p != nil && p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

func (r *Router) chainFor(kind domain.IdentifierKind, intent Intent) ([]Provider, error) {
	switch kind {
	case domain.KindEVMAddress:
		return []Provider{r.aggregator}, nil
	case domain.KindSolanaAddress:
		if intent == IntentWallet {
			return []Provider{r.wallet}, nil
		}
		return []Provider{r.aggregator, r.wallet}, nil
	case domain.KindFreeformName:
		return []Provider{r.nameLookup}, nil
	default:
		return nil, fmt.Errorf("unknown identifier kind %q", kind)
	}
}
