// Package idhash computes deterministic identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"tokencard/internal/domain"
)

// ComputeCardID computes a deterministic card_id using SHA256.
// Formula: SHA256(raw|kind|created_at_ms|seq)
// The sequence number disambiguates cards created for the same
// identifier within the same millisecond.
// Returns hex-encoded hash (64 characters).
func ComputeCardID(id domain.Identifier, createdAtMs int64, seq uint64) string {
	data := fmt.Sprintf("%s|%s|%d|%d", id.Raw, string(id.Kind), createdAtMs, seq)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
