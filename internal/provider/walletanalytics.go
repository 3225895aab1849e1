package provider

import (
	"context"
	"fmt"
	"net/http"

	"tokencard/internal/domain"
)

// WalletAnalytics resolves Solana-style identifiers interpreted as wallet
// addresses, returning aggregate bundling statistics instead of price data.
// It never reports ErrNotFound: a wallet with no bundling history resolves
// to an empty statistics set, which is a valid result.
type WalletAnalytics struct {
	client
}

// NewWalletAnalytics creates a WalletAnalytics provider against the given
// base URL.
func NewWalletAnalytics(baseURL string, opts ...Option) *WalletAnalytics {
	return &WalletAnalytics{client: newClient(baseURL, opts...)}
}

var _ Provider = (*WalletAnalytics)(nil)

func (p *WalletAnalytics) Name() string { return NameWalletAnalytics }

func (p *WalletAnalytics) Supports(kind domain.IdentifierKind) bool {
	return kind == domain.KindSolanaAddress
}

// Resolve fetches the wallet's bundle history and sums it into totals.
func (p *WalletAnalytics) Resolve(ctx context.Context, id domain.Identifier) (*domain.MarketSnapshot, error) {
	url := fmt.Sprintf("%s/bundle/wallet/%s", p.baseURL, id.Raw)

	var payload walletBundlesResponse
	if err := p.getJSON(ctx, p.Name(), url, &payload); err != nil {
		if statusOf(err) == http.StatusNotFound {
			// Unknown wallet: empty history, not an error.
			payload = walletBundlesResponse{}
		} else {
			return nil, err
		}
	}

	stats := &domain.BundleStats{
		TotalBundles: len(payload.Bundles),
		Bonded:       payload.Bonded,
	}
	for _, entry := range payload.Bundles {
		stats.TotalTokensBundledMillions += entry.Tokens / 1e6
		stats.TotalPercentageBundled += entry.Percentage
		stats.TotalSolSpent += entry.SolSpent
		stats.CurrentHeldPercentage += entry.HeldPercentage
	}

	return &domain.MarketSnapshot{
		Name:   id.Raw,
		Bundle: stats,
	}, nil
}

// walletBundlesResponse mirrors the keyed bundle collection consumed from
// the wallet analytics API.
type walletBundlesResponse struct {
	Bundles map[string]walletBundleEntry `json:"bundles"`
	Bonded  *bool                        `json:"bonded"`
}

type walletBundleEntry struct {
	Bundle         int     `json:"bundle"`
	Tokens         float64 `json:"tokens"`
	Percentage     float64 `json:"percentage"`
	SolSpent       float64 `json:"sol_spent"`
	HeldPercentage float64 `json:"held_percentage"`
}
