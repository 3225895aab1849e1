package provider

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"tokencard/internal/domain"
)

func solanaIdentifier() domain.Identifier {
	return domain.Identifier{
		Raw:  "So11111111111111111111111111111111111111112",
		Kind: domain.KindSolanaAddress,
	}
}

func TestWalletAnalytics_Aggregates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"bonded": true,
			"bundles": {
				"0": {"bundle": 1, "tokens": 2000000, "percentage": 1.5, "sol_spent": 3.25, "held_percentage": 0.5},
				"1": {"bundle": 2, "tokens": 4000000, "percentage": 2.5, "sol_spent": 1.75, "held_percentage": 1.0}
			}
		}`))
	}))
	defer srv.Close()

	p := NewWalletAnalytics(srv.URL)
	snap, err := p.Resolve(context.Background(), solanaIdentifier())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if snap.Bundle == nil {
		t.Fatal("expected bundle stats")
	}
	b := snap.Bundle
	if b.TotalBundles != 2 {
		t.Errorf("TotalBundles mismatch: got %d", b.TotalBundles)
	}
	if math.Abs(b.TotalTokensBundledMillions-6.0) > 1e-9 {
		t.Errorf("TotalTokensBundledMillions mismatch: got %f", b.TotalTokensBundledMillions)
	}
	if math.Abs(b.TotalPercentageBundled-4.0) > 1e-9 {
		t.Errorf("TotalPercentageBundled mismatch: got %f", b.TotalPercentageBundled)
	}
	if math.Abs(b.TotalSolSpent-5.0) > 1e-9 {
		t.Errorf("TotalSolSpent mismatch: got %f", b.TotalSolSpent)
	}
	if math.Abs(b.CurrentHeldPercentage-1.5) > 1e-9 {
		t.Errorf("CurrentHeldPercentage mismatch: got %f", b.CurrentHeldPercentage)
	}
	if b.Bonded == nil || !*b.Bonded {
		t.Errorf("Bonded mismatch: got %v", b.Bonded)
	}
	if snap.Name != solanaIdentifier().Raw {
		t.Errorf("snapshot name should carry the wallet address, got %s", snap.Name)
	}
}

func TestWalletAnalytics_EmptyHistoryIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bundles": {}}`))
	}))
	defer srv.Close()

	p := NewWalletAnalytics(srv.URL)
	snap, err := p.Resolve(context.Background(), solanaIdentifier())
	if err != nil {
		t.Fatalf("empty history must resolve, got %v", err)
	}
	if snap.Bundle == nil || snap.Bundle.TotalBundles != 0 {
		t.Errorf("expected empty stats, got %+v", snap.Bundle)
	}
}

func TestWalletAnalytics_404IsEmptyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewWalletAnalytics(srv.URL)
	snap, err := p.Resolve(context.Background(), solanaIdentifier())
	if err != nil {
		t.Fatalf("unknown wallet must resolve to empty stats, got %v", err)
	}
	if snap.Bundle == nil || snap.Bundle.TotalBundles != 0 {
		t.Errorf("expected empty stats, got %+v", snap.Bundle)
	}
}

func TestWalletAnalytics_ServerErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewWalletAnalytics(srv.URL)
	_, err := p.Resolve(context.Background(), solanaIdentifier())

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestWalletAnalytics_Supports(t *testing.T) {
	p := NewWalletAnalytics("http://unused")
	if !p.Supports(domain.KindSolanaAddress) {
		t.Error("must support solana addresses")
	}
	if p.Supports(domain.KindEVMAddress) || p.Supports(domain.KindFreeformName) {
		t.Error("must not support other kinds")
	}
}
