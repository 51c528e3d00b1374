package dto

import (
	"time"

	"settlement-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// RegisterRequest is the request body for operator registration.
type RegisterRequest struct {
	Username   string  `json:"username" binding:"required,min=3,max=50"`
	Password   string  `json:"password" binding:"required,min=8,max=128"`
	Name       string  `json:"name" binding:"required,min=1,max=100"`
	WebhookURL *string `json:"webhook_url,omitempty" binding:"omitempty,safe_url"`
}

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	OperatorID string `json:"operator_id"`
	AccessKey  string `json:"access_key"`
	SecretKey  string `json:"secret_key"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// SubmitBatchRequest is the request body for batch submission.
type SubmitBatchRequest struct {
	BatchHash   string `json:"batch_hash" binding:"required,len=64,hexadecimal"`
	MerkleRoot  string `json:"merkle_root" binding:"required,len=64,hexadecimal"`
	TradeCount  int64  `json:"trade_count" binding:"required,gt=0"`
	TotalVolume int64  `json:"total_volume" binding:"gte=0"`
	NetPnL      int64  `json:"net_pnl"`
	Metadata    string `json:"metadata" binding:"required,max=512"`
}

// TradeDTO carries a trade's full data for proof verification.
type TradeDTO struct {
	TraderID   string `json:"trader_id" binding:"required,uuid"`
	TradeID    string `json:"trade_id" binding:"required,max=100,safe_id"`
	Symbol     string `json:"symbol" binding:"required,max=32,safe_id"`
	Side       string `json:"side" binding:"required,oneof=LONG SHORT"`
	Size       int64  `json:"size" binding:"required,gt=0"`
	EntryPrice int64  `json:"entry_price" binding:"required,gt=0"`
	ExitPrice  int64  `json:"exit_price" binding:"required,gt=0"`
	PnL        int64  `json:"pnl"`
	Fee        int64  `json:"fee" binding:"gte=0"`
	Timestamp  int64  `json:"timestamp" binding:"required,gt=0"`
}

// VerifyTradeRequest is the request body for the public proof check.
type VerifyTradeRequest struct {
	BatchID string   `json:"batch_id" binding:"required,len=64,hexadecimal"`
	Proof   []string `json:"proof" binding:"dive,len=64,hexadecimal"`
	Trade   TradeDTO `json:"trade" binding:"required"`
}

// VerifyTradeResponse is the response body for the public proof check.
type VerifyTradeResponse struct {
	Valid bool  `json:"valid"`
	PnL   int64 `json:"pnl"`
}

// PayoutRequest is the request body for payout execution.
type PayoutRequest struct {
	TraderID  string     `json:"trader_id" binding:"required,uuid"`
	Recipient string     `json:"recipient" binding:"required,max=128,safe_id"`
	BatchID   string     `json:"batch_id" binding:"required,len=64,hexadecimal"`
	Proofs    [][]string `json:"proofs" binding:"required,dive,dive,len=64,hexadecimal"`
	Trades    []TradeDTO `json:"trades" binding:"required,min=1,dive"`
	Signature string     `json:"signature" binding:"required,len=64,hexadecimal"`
}

// ScalingRequest is the request body for tier upgrade authorization.
type ScalingRequest struct {
	TraderID string `json:"trader_id" binding:"required,uuid"`
	NewTier  int16  `json:"new_tier" binding:"required,min=1,max=5"`
}

// BatchResponse is the response body for batch results.
type BatchResponse struct {
	ID          string `json:"id"`
	BatchHash   string `json:"batch_hash"`
	MerkleRoot  string `json:"merkle_root"`
	Submitter   string `json:"submitter"`
	TradeCount  int64  `json:"trade_count"`
	TotalVolume int64  `json:"total_volume"`
	NetPnL      int64  `json:"net_pnl"`
	Metadata    string `json:"metadata"`
	SubmittedAt string `json:"submitted_at"`
}

// PayoutResponse is the response body for payout results.
type PayoutResponse struct {
	ID          string  `json:"id"`
	TraderID    string  `json:"trader_id"`
	Recipient   string  `json:"recipient"`
	BatchID     string  `json:"batch_id"`
	Nonce       uint64  `json:"nonce"`
	GrossPnL    int64   `json:"gross_pnl"`
	TraderShare int64   `json:"trader_share"`
	PoolShare   int64   `json:"pool_share"`
	TradeCount  int64   `json:"trade_count"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	ExecutedAt  *string `json:"executed_at,omitempty"`
}

// TraderResponse is the response body for trader registry lookups.
type TraderResponse struct {
	ID               string `json:"id"`
	Handle           string `json:"handle"`
	Tier             int16  `json:"tier"`
	Status           string `json:"status"`
	BreachCount      int32  `json:"breach_count"`
	LifetimePnL      int64  `json:"lifetime_pnl"`
	ConsistencyScore int64  `json:"consistency_score"`
	TotalPaidOut     int64  `json:"total_paid_out"`
}

// NonceResponse carries a trader's current payout instruction nonce.
type NonceResponse struct {
	TraderID string `json:"trader_id"`
	Nonce    uint64 `json:"nonce"`
}

// TraderPnLResponse is the response for a verified PnL record lookup.
type TraderPnLResponse struct {
	BatchID    string `json:"batch_id"`
	TraderID   string `json:"trader_id"`
	TotalPnL   int64  `json:"total_pnl"`
	TradeCount int64  `json:"trade_count"`
	Verified   bool   `json:"verified"`
	VerifiedAt string `json:"verified_at"`
}

// GlobalStatsResponse is the response for ledger-wide statistics.
type GlobalStatsResponse struct {
	TotalBatches  int64 `json:"total_batches"`
	TotalTrades   int64 `json:"total_trades"`
	TotalVolume   int64 `json:"total_volume"`
	CumulativePnL int64 `json:"cumulative_pnl"`
	TotalPayouts  int64 `json:"total_payouts"`
	TotalPaidOut  int64 `json:"total_paid_out"`
	PoolBalance   int64 `json:"pool_balance"`
}

// BatchListResponse wraps a paginated batch list.
type BatchListResponse struct {
	Items      []BatchResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// PayoutListResponse wraps a paginated payout list.
type PayoutListResponse struct {
	Items      []PayoutResponse `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// FromBatch maps a domain batch to its response body.
func FromBatch(b *domain.Batch) BatchResponse {
	return BatchResponse{
		ID:          b.ID,
		BatchHash:   b.BatchHash,
		MerkleRoot:  b.MerkleRoot,
		Submitter:   b.Submitter.String(),
		TradeCount:  b.TradeCount,
		TotalVolume: b.TotalVolume,
		NetPnL:      b.NetPnL,
		Metadata:    b.Metadata,
		SubmittedAt: b.SubmittedAt.Format(time.RFC3339),
	}
}

// FromPayout maps a domain payout request to its response body.
func FromPayout(p *domain.PayoutRequest) PayoutResponse {
	resp := PayoutResponse{
		ID:          p.ID.String(),
		TraderID:    p.TraderID.String(),
		Recipient:   p.Recipient,
		BatchID:     p.BatchID,
		Nonce:       p.Nonce,
		GrossPnL:    p.GrossPnL,
		TraderShare: p.TraderShare,
		PoolShare:   p.PoolShare,
		TradeCount:  p.TradeCount,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.ExecutedAt != nil {
		s := p.ExecutedAt.Format(time.RFC3339)
		resp.ExecutedAt = &s
	}
	return resp
}

// FromTrader maps a domain trader to its response body.
func FromTrader(t *domain.Trader) TraderResponse {
	return TraderResponse{
		ID:               t.ID.String(),
		Handle:           t.Handle,
		Tier:             t.Tier,
		Status:           string(t.Status),
		BreachCount:      t.BreachCount,
		LifetimePnL:      t.LifetimePnL,
		ConsistencyScore: t.ConsistencyScore,
		TotalPaidOut:     t.TotalPaidOut,
	}
}

// ToTrade maps a trade DTO to the domain type. The trader UUID must have
// been validated by binding before this is called.
func (t TradeDTO) ToTrade() domain.Trade {
	return domain.Trade{
		TraderID:   mustParseUUID(t.TraderID),
		TradeID:    t.TradeID,
		Symbol:     t.Symbol,
		Side:       domain.TradeSide(t.Side),
		Size:       t.Size,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		PnL:        t.PnL,
		Fee:        t.Fee,
		Timestamp:  t.Timestamp,
	}
}

// mustParseUUID parses a UUID already validated by request binding.
func mustParseUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}
