package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"settlement-ledger/internal/core/domain"
)

// SHA256MerkleVerifier implements ports.MerkleVerifier using SHA-256 with
// sorted-pair hashing at each level. Sorting makes the parent hash
// independent of sibling order, so proofs carry no position bits — the same
// convention the off-system tree builder uses.
type SHA256MerkleVerifier struct{}

// NewSHA256MerkleVerifier creates a new Merkle verifier.
func NewSHA256MerkleVerifier() *SHA256MerkleVerifier {
	return &SHA256MerkleVerifier{}
}

// LeafHash returns the hex SHA-256 of the trade's canonical encoding.
func (v *SHA256MerkleVerifier) LeafHash(trade *domain.Trade) string {
	sum := sha256.Sum256([]byte(trade.CanonicalString()))
	return hex.EncodeToString(sum[:])
}

// ComputeRoot folds the proof into the leaf, one sibling per level.
func (v *SHA256MerkleVerifier) ComputeRoot(leafHash string, proof []string) (string, error) {
	current, err := hex.DecodeString(leafHash)
	if err != nil {
		return "", fmt.Errorf("decoding leaf hash: %w", err)
	}
	if len(current) != sha256.Size {
		return "", fmt.Errorf("leaf hash must be %d bytes, got %d", sha256.Size, len(current))
	}

	for i, siblingHex := range proof {
		sibling, err := hex.DecodeString(siblingHex)
		if err != nil {
			return "", fmt.Errorf("decoding proof node %d: %w", i, err)
		}
		if len(sibling) != sha256.Size {
			return "", fmt.Errorf("proof node %d must be %d bytes, got %d", i, sha256.Size, len(sibling))
		}
		current = hashPair(current, sibling)
	}

	return hex.EncodeToString(current), nil
}

// VerifyProof reports whether leafHash + proof reconstruct exactly root.
// Malformed input counts as an invalid proof.
func (v *SHA256MerkleVerifier) VerifyProof(leafHash string, proof []string, root string) bool {
	computed, err := v.ComputeRoot(leafHash, proof)
	if err != nil {
		return false
	}
	return computed == root
}

// hashPair hashes two nodes in sorted order.
func hashPair(a, b []byte) []byte {
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	h := sha256.New()
	h.Write(a)
	h.Write(b)
	return h.Sum(nil)
}
