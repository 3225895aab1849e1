package classify

import (
	"testing"

	"tokencard/internal/domain"
)

const (
	evmAddr    = "0xABCDEF0123456789ABCDEF0123456789ABCDEF01"
	solanaAddr = "So11111111111111111111111111111111111111112"
	pumpFunPID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
)

func TestClassify_EVMAddress(t *testing.T) {
	c := New()

	ids := c.Classify("check out " + evmAddr + " on the dex")
	if len(ids) == 0 {
		t.Fatal("expected at least one identifier")
	}
	if ids[0].Kind != domain.KindEVMAddress {
		t.Errorf("Kind mismatch: got %s, want %s", ids[0].Kind, domain.KindEVMAddress)
	}
	if ids[0].Raw != evmAddr {
		t.Errorf("Raw mismatch: got %s, want %s", ids[0].Raw, evmAddr)
	}
}

func TestClassify_SolanaAddress(t *testing.T) {
	c := New()

	for _, addr := range []string{solanaAddr, pumpFunPID} {
		ids := c.Classify("looking at " + addr + " today")
		if len(ids) == 0 {
			t.Fatalf("expected identifier for %s", addr)
		}
		if ids[0].Kind != domain.KindSolanaAddress {
			t.Errorf("Kind mismatch for %s: got %s", addr, ids[0].Kind)
		}
		if ids[0].Raw != addr {
			t.Errorf("Raw mismatch: got %s, want %s", ids[0].Raw, addr)
		}
	}
}

func TestClassify_EVMBeatsSolana(t *testing.T) {
	c := New()

	ids := c.Classify(solanaAddr + " vs " + evmAddr)
	if len(ids) != 2 {
		t.Fatalf("expected 2 identifiers, got %d", len(ids))
	}
	if ids[0].Kind != domain.KindEVMAddress {
		t.Errorf("primary should be EVM, got %s", ids[0].Kind)
	}
	if ids[1].Kind != domain.KindSolanaAddress {
		t.Errorf("secondary should be Solana, got %s", ids[1].Kind)
	}
}

func TestClassify_FirstMatchPerClass(t *testing.T) {
	c := New()

	ids := c.Classify(solanaAddr + " and " + pumpFunPID)
	if len(ids) != 1 {
		t.Fatalf("expected 1 identifier, got %d", len(ids))
	}
	if ids[0].Raw != solanaAddr {
		t.Errorf("expected first occurrence %s, got %s", solanaAddr, ids[0].Raw)
	}
}

func TestClassify_FreeformFallback(t *testing.T) {
	c := New()

	ids := c.Classify("price of bonk?")
	if len(ids) != 1 {
		t.Fatalf("expected 1 identifier, got %d", len(ids))
	}
	if ids[0].Kind != domain.KindFreeformName {
		t.Errorf("Kind mismatch: got %s, want %s", ids[0].Kind, domain.KindFreeformName)
	}
	if ids[0].Raw != "price" {
		t.Errorf("expected first word match, got %q", ids[0].Raw)
	}
}

func TestClassify_NoFreeformWhenAddressPresent(t *testing.T) {
	c := New()

	ids := c.Classify("what about " + evmAddr)
	for _, id := range ids {
		if id.Kind == domain.KindFreeformName {
			t.Errorf("freeform fallback should be suppressed when an address matched")
		}
	}
}

func TestClassify_Empty(t *testing.T) {
	c := New()

	for _, text := range []string{"", "42", "!!", "0x123"} {
		if ids := c.Classify(text); len(ids) != 0 {
			t.Errorf("expected no identifiers for %q, got %v", text, ids)
		}
	}
}

func TestPrimary(t *testing.T) {
	c := New()

	id, ok := c.Primary("token " + evmAddr)
	if !ok {
		t.Fatal("expected ok")
	}
	if id.Kind != domain.KindEVMAddress {
		t.Errorf("Kind mismatch: got %s", id.Kind)
	}

	if _, ok := c.Primary("..."); ok {
		t.Error("expected not ok for unclassifiable text")
	}
}

func TestClassify_EVMNotPartial(t *testing.T) {
	c := New()

	// 39 and 41 hex digits must not classify as EVM.
	short := "0xABCDEF0123456789ABCDEF0123456789ABCDEF0"
	long := "0xABCDEF0123456789ABCDEF0123456789ABCDEF012"

	if ids := c.Classify(short); len(ids) != 0 && ids[0].Kind == domain.KindEVMAddress {
		t.Errorf("39-digit string classified as EVM")
	}
	if ids := c.Classify(long); len(ids) != 0 && ids[0].Kind == domain.KindEVMAddress {
		t.Errorf("41-digit string classified as EVM")
	}
}

func TestIsOnCurve_InvalidInput(t *testing.T) {
	if isOnCurve("notbase58!!") {
		t.Error("invalid base58 must not be on-curve")
	}
	if isOnCurve("abc") {
		t.Error("short key must not be on-curve")
	}
}
