package idhash

import (
	"testing"

	"tokencard/internal/domain"
)

func TestComputeCardID(t *testing.T) {
	id := domain.Identifier{
		Raw:  "So11111111111111111111111111111111111111112",
		Kind: domain.KindSolanaAddress,
	}

	a := ComputeCardID(id, 1700000000000, 1)
	if len(a) != 64 {
		t.Errorf("expected 64-char hex id, got %d chars", len(a))
	}

	// Deterministic for identical inputs.
	if b := ComputeCardID(id, 1700000000000, 1); b != a {
		t.Error("same inputs must produce the same id")
	}

	// Any input change produces a different id.
	if b := ComputeCardID(id, 1700000000000, 2); b == a {
		t.Error("sequence change must produce a different id")
	}
	if b := ComputeCardID(id, 1700000000001, 1); b == a {
		t.Error("timestamp change must produce a different id")
	}

	other := domain.Identifier{Raw: id.Raw, Kind: domain.KindEVMAddress}
	if b := ComputeCardID(other, 1700000000000, 1); b == a {
		t.Error("kind change must produce a different id")
	}
}
