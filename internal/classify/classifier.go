// Package classify extracts candidate identifiers from free-form text.
package classify

import (
	"regexp"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"tokencard/internal/domain"
)

// Classifier recognizes contract/wallet addresses and loose token names.
// It is pure and total: no I/O, never fails, and returns an empty slice
// when nothing in the text looks like an identifier.
type Classifier struct {
	evmPattern    *regexp.Regexp
	base58Pattern *regexp.Regexp
	namePattern   *regexp.Regexp
}

// New creates a Classifier with the default patterns compiled.
func New() *Classifier {
	return &Classifier{
		// 0x followed by exactly 40 hex digits.
		evmPattern: regexp.MustCompile(`\b0x[0-9a-fA-F]{40}\b`),
		// Base58 alphabet (no 0, O, I, l), the length range of Solana keys.
		base58Pattern: regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`),
		// Loose token-name guess. Intentionally over-broad: it fires on
		// ordinary short words, matching the source heuristic. Callers only
		// see it when no address pattern matched.
		namePattern: regexp.MustCompile(`\b[A-Za-z]{3,20}\b`),
	}
}

// Classify returns candidate identifiers in priority order: EVM addresses
// first, then Solana-style addresses, then a freeform name guess. Within a
// pattern class only the first occurrence in the text is taken; the text is
// not scanned for every possible substring. The freeform fallback is included
// only when no address pattern matched at all.
func (c *Classifier) Classify(text string) []domain.Identifier {
	var ids []domain.Identifier

	if m := c.evmPattern.FindString(text); m != "" {
		ids = append(ids, domain.Identifier{Raw: m, Kind: domain.KindEVMAddress})
	}

	if m := c.base58Pattern.FindString(text); m != "" {
		ids = append(ids, domain.Identifier{
			Raw:     m,
			Kind:    domain.KindSolanaAddress,
			OnCurve: isOnCurve(m),
		})
	}

	if len(ids) == 0 {
		if m := c.namePattern.FindString(text); m != "" {
			ids = append(ids, domain.Identifier{Raw: m, Kind: domain.KindFreeformName})
		}
	}

	return ids
}

// Primary returns the highest-priority identifier found in text.
// ok is false when the text contains nothing recognizable; that is not an
// error, just "no action to take".
func (c *Classifier) Primary(text string) (domain.Identifier, bool) {
	ids := c.Classify(text)
	if len(ids) == 0 {
		return domain.Identifier{}, false
	}
	return ids[0], true
}

// isOnCurve reports whether a base58 key decodes to 32 bytes forming a
// valid ed25519 curve point. Wallet keypairs are on-curve; program-derived
// addresses are not. Matching stays alphabet+length only, so strings that
// merely look like addresses still classify; the curve check is a hint.
func isOnCurve(addr string) bool {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
