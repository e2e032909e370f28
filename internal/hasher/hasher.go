// Package hasher computes content fingerprints used for the
// incremental-reindex hash gate and for keying the embedding cache.
package hasher

import (
	"crypto/sha256"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/codegraph-dev/codegraph/internal/types"
)

// HashFile computes the cryptographic content fingerprint of a file.
// This is the sole gate the indexing pipeline consults to decide
// whether a file needs re-parsing.
func HashFile(path string) (types.Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Fingerprint{}, err
	}
	return HashBytes(data), nil
}

// HashBytes fingerprints an in-memory buffer with the same digest
// HashFile uses, so callers that already have file contents in hand
// (e.g. the parser pool) don't need to re-read from disk.
func HashBytes(data []byte) types.Fingerprint {
	return sha256.Sum256(data)
}

// Gate compares a freshly computed hash against the one stored for a
// file and reports whether re-extraction is needed.
func Gate(stored, current types.Fingerprint) types.HashGateResult {
	if stored == current {
		return types.Unchanged
	}
	return types.Changed
}

// FastFingerprint is a non-cryptographic 64-bit hash (xxhash) of text.
// The embedding cache and the vector index do not use it; they are
// keyed by the SHA-256 Fingerprint from HashBytes.
func FastFingerprint(text string) uint64 {
	return xxhash.Sum64String(text)
}
