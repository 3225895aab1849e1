// Package provider contains the upstream market-data sources.
// Each provider performs exactly one outbound request per Resolve call and
// does no caching; refresh policy lives entirely in the refresh engine.
package provider

import (
	"context"

	"tokencard/internal/domain"
)

// Provider names as they appear on cards and in metrics.
const (
	NameDexScreener     = "DexScreener"
	NamePumpFun         = "PumpFun"
	NameWalletAnalytics = "WalletAnalytics"
)

// Provider resolves a classified identifier into a raw market snapshot.
// Resolve returns ErrNotFound when the identifier is valid but the upstream
// has no data for it, and a *ProviderError for transport failures, non-2xx
// statuses and malformed payloads.
type Provider interface {
	// Name returns the stable provider name used on cards and in metrics.
	Name() string

	// Supports reports whether this provider can resolve the given kind.
	Supports(kind domain.IdentifierKind) bool

	// Resolve fetches a snapshot for the identifier.
	Resolve(ctx context.Context, id domain.Identifier) (*domain.MarketSnapshot, error)
}
