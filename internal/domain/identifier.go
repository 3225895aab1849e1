// Package domain contains the core value types shared across the service.
package domain

// IdentifierKind classifies what an extracted identifier looks like.
type IdentifierKind string

const (
	// KindEVMAddress is a 0x-prefixed 40-hex-digit contract address.
	KindEVMAddress IdentifierKind = "EVM_ADDRESS"
	// KindSolanaAddress is a base58 string of plausible public-key length.
	KindSolanaAddress IdentifierKind = "SOLANA_ADDRESS"
	// KindFreeformName is a loose token-name guess used when no address matched.
	KindFreeformName IdentifierKind = "FREEFORM_NAME"
)

// Identifier is an address or token name extracted from input text.
// It is immutable once created by the classifier.
type Identifier struct {
	Raw  string         `json:"raw"`
	Kind IdentifierKind `json:"kind"`

	// OnCurve reports whether a SOLANA_ADDRESS key is a valid ed25519 curve
	// point. Wallet keypairs are on-curve; program-derived addresses are not.
	// Always false for other kinds.
	OnCurve bool `json:"on_curve,omitempty"`
}
