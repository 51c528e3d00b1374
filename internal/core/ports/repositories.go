package ports

import (
	"context"
	"time"

	"settlement-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BatchRepository defines persistence operations for settlement batches.
// The batch store is append-only: there is no update or delete.
type BatchRepository interface {
	Create(ctx context.Context, tx pgx.Tx, batch *domain.Batch) error
	GetByID(ctx context.Context, id string) (*domain.Batch, error)
	Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error)
	ListBySubmitter(ctx context.Context, params BatchListParams) ([]domain.Batch, int64, error)
}

// BatchListParams holds filter + pagination for listing batches.
type BatchListParams struct {
	Submitter uuid.UUID
	From      *int64 // Unix timestamp
	To        *int64 // Unix timestamp
	Page      int
	PageSize  int
}

// SettlementRepository maintains the global trade-settlement index and the
// per-(batch, trader) verified PnL records. Methods accepting pgx.Tx run
// inside the orchestrator's transaction so trade consumption and payout
// execution commit or roll back together.
type SettlementRepository interface {
	// IsTradeSettled returns the consuming batch ID, or "" if unclaimed.
	IsTradeSettled(ctx context.Context, tx pgx.Tx, tradeID string) (string, error)
	// MarkTradeSettled claims a trade identifier for a batch. The primary
	// key on trade_id rejects a second claim even under concurrent
	// verification.
	MarkTradeSettled(ctx context.Context, tx pgx.Tx, tradeID, batchID string, traderID uuid.UUID) error
	CreateTraderPnL(ctx context.Context, tx pgx.Tx, rec *domain.TraderPnLRecord) error
	GetTraderPnL(ctx context.Context, batchID string, traderID uuid.UUID) (*domain.TraderPnLRecord, error)
}

// StatsRepository manages the single global statistics row. NextBatchSeq
// locks the row FOR UPDATE, serializing batch submission.
type StatsRepository interface {
	Get(ctx context.Context) (*domain.GlobalStats, error)
	NextBatchSeq(ctx context.Context, tx pgx.Tx) (int64, error)
	ApplyBatch(ctx context.Context, tx pgx.Tx, tradeCount, volume, netPnL int64) error
	ApplyPayout(ctx context.Context, tx pgx.Tx, paidOut int64) error
}

// PayoutRepository defines persistence for executed payout requests.
type PayoutRepository interface {
	Create(ctx context.Context, tx pgx.Tx, req *domain.PayoutRequest) error
	MarkExecuted(ctx context.Context, tx pgx.Tx, id uuid.UUID, executedAt time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
	ListByTrader(ctx context.Context, traderID uuid.UUID, page, pageSize int) ([]domain.PayoutRequest, int64, error)
}

// TraderRegistry is the Identity & Tier Registry collaborator contract.
// Mutating methods take pgx.Tx: the registry update rides the orchestrator's
// transaction.
type TraderRegistry interface {
	GetTraderInfo(ctx context.Context, traderID uuid.UUID) (*domain.Trader, error)
	GetTierConfig(ctx context.Context, tier int16) (*domain.TierConfig, error)
	// GetPerformanceMetrics returns the trader's consistency score in bps.
	GetPerformanceMetrics(ctx context.Context, traderID uuid.UUID) (int64, error)
	SetTier(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, tier int16) error
	ActivateAccount(ctx context.Context, tx pgx.Tx, traderID uuid.UUID) error
	UpdateLifetimePnL(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, delta int64) error
	// RecordPayout updates last payout time and cumulative paid-out total.
	RecordPayout(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, paidAt time.Time, amount int64) error
}

// CapitalCustodian is the pooled-funds collaborator contract.
type CapitalCustodian interface {
	// TransferToTrader moves funds from the pool to the recipient. Fails
	// if the pool cannot cover the amount.
	TransferToTrader(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, recipient string, amount int64) error
	// AllocateToTrader increases the trader's capital allocation ledger.
	AllocateToTrader(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, amount int64) error
	PoolBalance(ctx context.Context) (int64, error)
}

// OperatorRepository is the Operator Authorization Set contract plus
// operator account persistence.
type OperatorRepository interface {
	Create(ctx context.Context, op *domain.Operator) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error)
	GetByAccessKey(ctx context.Context, accessKey string) (*domain.Operator, error)
	GetByUsername(ctx context.Context, username string) (*domain.Operator, error)
	// IsOperator reports whether the identity is an active member of the
	// authorization set.
	IsOperator(ctx context.Context, id uuid.UUID) (bool, error)
}

// NonceRepository manages the strictly-increasing per-trader payout nonce.
type NonceRepository interface {
	Current(ctx context.Context, traderID uuid.UUID) (uint64, error)
	// CurrentForUpdate locks the trader's nonce row, serializing payout
	// authorization per trader.
	CurrentForUpdate(ctx context.Context, tx pgx.Tx, traderID uuid.UUID) (uint64, error)
	Increment(ctx context.Context, tx pgx.Tx, traderID uuid.UUID) error
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
