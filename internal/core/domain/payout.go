package domain

import (
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is the lifecycle state of a payout request.
// VERIFIED is an internal intermediate state inside a single orchestration
// step; the only externally observable terminal state is EXECUTED — failed
// requests are never persisted. REJECTED and CANCELLED are retained for
// audit extensibility.
type PayoutStatus string

const (
	PayoutStatusVerified  PayoutStatus = "VERIFIED"
	PayoutStatusExecuted  PayoutStatus = "EXECUTED"
	PayoutStatusRejected  PayoutStatus = "REJECTED"
	PayoutStatusCancelled PayoutStatus = "CANCELLED"
)

// PayoutRequest records one executed payout attempt.
type PayoutRequest struct {
	ID          uuid.UUID    `json:"id"`
	TraderID    uuid.UUID    `json:"trader_id"`
	Recipient   string       `json:"recipient"`
	BatchID     string       `json:"batch_id"`
	OperatorID  uuid.UUID    `json:"operator_id"`
	Nonce       uint64       `json:"nonce"`
	GrossPnL    int64        `json:"gross_pnl"`
	TraderShare int64        `json:"trader_share"`
	PoolShare   int64        `json:"pool_share"`
	TradeCount  int64        `json:"trade_count"`
	Status      PayoutStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	ExecutedAt  *time.Time   `json:"executed_at,omitempty"`
}

// SplitPnL divides a gross PnL into trader and pool shares. Integer
// truncation always favors the pool share; the two always sum to gross.
func SplitPnL(grossPnL, profitSplitBps int64) (traderShare, poolShare int64) {
	traderShare = grossPnL * profitSplitBps / 10000
	poolShare = grossPnL - traderShare
	return traderShare, poolShare
}

// TraderPnLRecord holds the verified PnL for one (batch, trader) pair.
// Written once the first time that trader's trades in the batch are
// verified; immutable thereafter.
type TraderPnLRecord struct {
	BatchID    string    `json:"batch_id"`
	TraderID   uuid.UUID `json:"trader_id"`
	TotalPnL   int64     `json:"total_pnl"`
	TradeCount int64     `json:"trade_count"`
	Verified   bool      `json:"verified"`
	VerifiedAt time.Time `json:"verified_at"`
}
