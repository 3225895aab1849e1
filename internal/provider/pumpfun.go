package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tokencard/internal/domain"
)

// PumpFun resolves freeform token names against a coin-name lookup API.
type PumpFun struct {
	client
}

// NewPumpFun creates a PumpFun provider against the given base URL.
func NewPumpFun(baseURL string, opts ...Option) *PumpFun {
	return &PumpFun{client: newClient(baseURL, opts...)}
}

var _ Provider = (*PumpFun)(nil)

func (p *PumpFun) Name() string { return NamePumpFun }

func (p *PumpFun) Supports(kind domain.IdentifierKind) bool {
	return kind == domain.KindFreeformName
}

// Resolve looks the name up via GET /coins/{name}. A 404 means the name is
// simply unknown and maps to ErrNotFound; other failures are provider errors.
func (p *PumpFun) Resolve(ctx context.Context, id domain.Identifier) (*domain.MarketSnapshot, error) {
	u := fmt.Sprintf("%s/coins/%s", p.baseURL, url.PathEscape(id.Raw))

	var payload pumpCoinResponse
	if err := p.getJSON(ctx, p.Name(), u, &payload); err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if payload.Name == "" && payload.Symbol == "" {
		return nil, ErrNotFound
	}

	snap := &domain.MarketSnapshot{
		Name:         payload.Name,
		Symbol:       payload.Symbol,
		MarketCapUsd: payload.MarketCap,
		Volume24hUsd: payload.Volume24h,
		CanonicalURL: payload.Website,
	}
	if payload.PriceUsd != nil {
		snap.PriceUsd = strconv.FormatFloat(*payload.PriceUsd, 'f', -1, 64)
	}
	return snap, nil
}

// pumpCoinResponse mirrors the fields consumed from GET /coins/{name}.
type pumpCoinResponse struct {
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
	Website   string   `json:"website"`
	PriceUsd  *float64 `json:"price_usd"`
	MarketCap *float64 `json:"market_cap"`
	Volume24h *float64 `json:"volume_24h"`
}
