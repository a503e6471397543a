package prop

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for snapshot hashing. The version suffix enables future
// algorithm migration without ambiguity between old and new hashes.
const DomainSnapshot = "paracosm/snapshot/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // Null separator - CRITICAL for security
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotHash computes a content-addressed hash of a property bag.
// The hash is stable across processes given the same properties, because
// it is computed over the RFC 8785 canonical serialization.
//
// Paradox records carry this hash alongside the serialized snapshot so a
// violation can be matched across diverged branches.
func SnapshotHash(obj Object) (string, error) {
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}
