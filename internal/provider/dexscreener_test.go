package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokencard/internal/domain"
)

func evmIdentifier() domain.Identifier {
	return domain.Identifier{
		Raw:  "0xABCDEF0123456789ABCDEF0123456789ABCDEF01",
		Kind: domain.KindEVMAddress,
	}
}

func TestDexScreener_Resolve(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"pairs": [{
				"baseToken": {"name": "Dexy", "symbol": "DXY"},
				"url": "https://dexscreener.com/eth/0xabc",
				"priceUsd": "1.234567",
				"priceNative": "0.000321",
				"marketCap": 1234567,
				"fdv": 2345678,
				"volume": {"h24": 98765.4},
				"txns": {"h24": {"buys": 120, "sells": 80}},
				"liquidity": {"usd": 54321.0},
				"info": {"imageUrl": "https://img.example/dxy.png"}
			}]
		}`))
	}))
	defer srv.Close()

	p := NewDexScreener(srv.URL)
	snap, err := p.Resolve(context.Background(), evmIdentifier())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	wantPath := "/latest/dex/tokens/" + evmIdentifier().Raw
	if gotPath != wantPath {
		t.Errorf("path mismatch: got %s, want %s", gotPath, wantPath)
	}
	if snap.Name != "Dexy" || snap.Symbol != "DXY" {
		t.Errorf("token mismatch: got %s (%s)", snap.Name, snap.Symbol)
	}
	if snap.PriceUsd != "1.234567" {
		t.Errorf("PriceUsd mismatch: got %s", snap.PriceUsd)
	}
	if snap.MarketCapUsd == nil || *snap.MarketCapUsd != 1234567 {
		t.Errorf("MarketCapUsd mismatch: got %v", snap.MarketCapUsd)
	}
	if snap.Buys24h == nil || *snap.Buys24h != 120 {
		t.Errorf("Buys24h mismatch: got %v", snap.Buys24h)
	}
	if snap.Sells24h == nil || *snap.Sells24h != 80 {
		t.Errorf("Sells24h mismatch: got %v", snap.Sells24h)
	}
	if snap.CanonicalURL != "https://dexscreener.com/eth/0xabc" {
		t.Errorf("CanonicalURL mismatch: got %s", snap.CanonicalURL)
	}
}

func TestDexScreener_FirstPairWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [
			{"baseToken": {"name": "First", "symbol": "ONE"}, "priceUsd": "1"},
			{"baseToken": {"name": "Second", "symbol": "TWO"}, "priceUsd": "2"}
		]}`))
	}))
	defer srv.Close()

	p := NewDexScreener(srv.URL)
	snap, err := p.Resolve(context.Background(), evmIdentifier())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if snap.Name != "First" {
		t.Errorf("expected first pair, got %s", snap.Name)
	}
}

func TestDexScreener_EmptyPairsIsNotFound(t *testing.T) {
	for _, body := range []string{`{"pairs": []}`, `{}`, `{"pairs": null}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		p := NewDexScreener(srv.URL)
		_, err := p.Resolve(context.Background(), evmIdentifier())
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("body %s: expected ErrNotFound, got %v", body, err)
		}
		srv.Close()
	}
}

func TestDexScreener_HTTPErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewDexScreener(srv.URL)
	_, err := p.Resolve(context.Background(), evmIdentifier())

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if pe.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode mismatch: got %d", pe.StatusCode)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("ProviderError must not match ErrNotFound")
	}
}

func TestDexScreener_MalformedPayloadIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": "oops"`))
	}))
	defer srv.Close()

	p := NewDexScreener(srv.URL)
	_, err := p.Resolve(context.Background(), evmIdentifier())

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestDexScreener_TimeoutIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewDexScreener(srv.URL, WithTimeout(10*time.Millisecond))
	_, err := p.Resolve(context.Background(), evmIdentifier())

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestDexScreener_Supports(t *testing.T) {
	p := NewDexScreener("http://unused")
	if !p.Supports(domain.KindEVMAddress) || !p.Supports(domain.KindSolanaAddress) {
		t.Error("must support EVM and Solana addresses")
	}
	if p.Supports(domain.KindFreeformName) {
		t.Error("must not support freeform names")
	}
}
