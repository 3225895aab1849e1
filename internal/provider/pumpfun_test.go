package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokencard/internal/domain"
)

func nameIdentifier(name string) domain.Identifier {
	return domain.Identifier{Raw: name, Kind: domain.KindFreeformName}
}

func TestPumpFun_Resolve(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{
			"name": "Bonk",
			"symbol": "BONK",
			"website": "https://bonk.example",
			"price_usd": 0.0000245,
			"market_cap": 1500000,
			"volume_24h": 250000.5
		}`))
	}))
	defer srv.Close()

	p := NewPumpFun(srv.URL)
	snap, err := p.Resolve(context.Background(), nameIdentifier("bonk"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if gotPath != "/coins/bonk" {
		t.Errorf("path mismatch: got %s", gotPath)
	}
	if snap.Name != "Bonk" || snap.Symbol != "BONK" {
		t.Errorf("token mismatch: got %s (%s)", snap.Name, snap.Symbol)
	}
	if snap.PriceUsd != "0.0000245" {
		t.Errorf("PriceUsd mismatch: got %s", snap.PriceUsd)
	}
	if snap.MarketCapUsd == nil || *snap.MarketCapUsd != 1500000 {
		t.Errorf("MarketCapUsd mismatch: got %v", snap.MarketCapUsd)
	}
	if snap.CanonicalURL != "https://bonk.example" {
		t.Errorf("CanonicalURL mismatch: got %s", snap.CanonicalURL)
	}
}

func TestPumpFun_404IsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPumpFun(srv.URL)
	_, err := p.Resolve(context.Background(), nameIdentifier("nosuchcoin"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPumpFun_EmptyBodyIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewPumpFun(srv.URL)
	_, err := p.Resolve(context.Background(), nameIdentifier("ghost"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPumpFun_ServerErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPumpFun(srv.URL)
	_, err := p.Resolve(context.Background(), nameIdentifier("bonk"))

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("ProviderError must not match ErrNotFound")
	}
}

func TestPumpFun_Supports(t *testing.T) {
	p := NewPumpFun("http://unused")
	if !p.Supports(domain.KindFreeformName) {
		t.Error("must support freeform names")
	}
	if p.Supports(domain.KindEVMAddress) || p.Supports(domain.KindSolanaAddress) {
		t.Error("must not support addresses")
	}
}
