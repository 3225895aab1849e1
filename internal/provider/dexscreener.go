package provider

import (
	"context"
	"fmt"

	"tokencard/internal/domain"
)

// DexScreener resolves EVM and Solana contract addresses against a
// DexScreener-style aggregator REST API.
type DexScreener struct {
	client
}

// NewDexScreener creates a DexScreener provider against the given base URL.
func NewDexScreener(baseURL string, opts ...Option) *DexScreener {
	return &DexScreener{client: newClient(baseURL, opts...)}
}

var _ Provider = (*DexScreener)(nil)

func (p *DexScreener) Name() string { return NameDexScreener }

func (p *DexScreener) Supports(kind domain.IdentifierKind) bool {
	return kind == domain.KindEVMAddress || kind == domain.KindSolanaAddress
}

// Resolve fetches the token's pairs and takes the first entry. No best-pair
// selection (by liquidity or otherwise) is attempted; the upstream's own
// ordering wins. An empty or missing pairs collection means no data.
func (p *DexScreener) Resolve(ctx context.Context, id domain.Identifier) (*domain.MarketSnapshot, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", p.baseURL, id.Raw)

	var payload dexTokensResponse
	if err := p.getJSON(ctx, p.Name(), url, &payload); err != nil {
		return nil, err
	}

	if len(payload.Pairs) == 0 {
		return nil, ErrNotFound
	}
	pair := payload.Pairs[0]

	return &domain.MarketSnapshot{
		Name:         pair.BaseToken.Name,
		Symbol:       pair.BaseToken.Symbol,
		PriceUsd:     pair.PriceUsd,
		PriceNative:  pair.PriceNative,
		MarketCapUsd: pair.MarketCap,
		FdvUsd:       pair.Fdv,
		Volume24hUsd: pair.Volume.H24,
		LiquidityUsd: pair.Liquidity.Usd,
		Buys24h:      pair.Txns.H24.Buys,
		Sells24h:     pair.Txns.H24.Sells,
		CanonicalURL: pair.URL,
		ImageURL:     pair.Info.ImageURL,
	}, nil
}

// dexTokensResponse mirrors the fields consumed from
// GET /latest/dex/tokens/{address}.
type dexTokensResponse struct {
	Pairs []dexPair `json:"pairs"`
}

type dexPair struct {
	BaseToken   dexBaseToken `json:"baseToken"`
	URL         string       `json:"url"`
	PriceUsd    string       `json:"priceUsd"`
	PriceNative string       `json:"priceNative"`
	MarketCap   *float64     `json:"marketCap"`
	Fdv         *float64     `json:"fdv"`
	Volume      dexVolume    `json:"volume"`
	Txns        dexTxns      `json:"txns"`
	Liquidity   dexLiquidity `json:"liquidity"`
	Info        dexInfo      `json:"info"`
}

type dexBaseToken struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type dexVolume struct {
	H24 *float64 `json:"h24"`
}

type dexTxns struct {
	H24 dexTxnCounts `json:"h24"`
}

type dexTxnCounts struct {
	Buys  *int64 `json:"buys"`
	Sells *int64 `json:"sells"`
}

type dexLiquidity struct {
	Usd *float64 `json:"usd"`
}

type dexInfo struct {
	ImageURL string `json:"imageUrl"`
}
