package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Batch is one notarized settlement submission. Batches are append-only:
// once created a batch is immutable and its ID is never reused.
type Batch struct {
	ID          string    `json:"id"`
	BatchHash   string    `json:"batch_hash"`
	MerkleRoot  string    `json:"merkle_root"`
	Submitter   uuid.UUID `json:"submitter"`
	TradeCount  int64     `json:"trade_count"`
	TotalVolume int64     `json:"total_volume"`
	NetPnL      int64     `json:"net_pnl"` // Signed, smallest unit
	Metadata    string    `json:"metadata"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// DeriveBatchID computes the deterministic batch identifier from the
// submission commitment, the submitter and the monotonic sequence number.
func DeriveBatchID(batchHash, merkleRoot string, submitter uuid.UUID, seq int64, submittedAt time.Time) string {
	preimage := fmt.Sprintf("BATCH|%s|%s|%s|%d|%d",
		batchHash, merkleRoot, submitter.String(), seq, submittedAt.UnixNano())
	sum := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])
}

// GlobalStats holds ledger-wide counters. BatchSeq is the monotonic counter
// feeding batch ID derivation.
type GlobalStats struct {
	BatchSeq      int64     `json:"batch_seq"`
	TotalBatches  int64     `json:"total_batches"`
	TotalTrades   int64     `json:"total_trades"`
	TotalVolume   int64     `json:"total_volume"`
	CumulativePnL int64     `json:"cumulative_pnl"`
	TotalPayouts  int64     `json:"total_payouts"`
	TotalPaidOut  int64     `json:"total_paid_out"`
	UpdatedAt     time.Time `json:"updated_at"`
}
