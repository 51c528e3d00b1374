package postgres

import (
	"context"
	"errors"
	"fmt"

	"settlement-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SettlementRepo implements ports.SettlementRepository. The settled_trades
// table is the global settlement index: one row per consumed trade
// identifier, keyed on trade_id, so a second claim fails at the database
// even under concurrent verification.
type SettlementRepo struct {
	pool Pool
}

// NewSettlementRepo creates a new SettlementRepo.
func NewSettlementRepo(pool Pool) *SettlementRepo {
	return &SettlementRepo{pool: pool}
}

// IsTradeSettled returns the consuming batch ID, or "" if unclaimed.
func (r *SettlementRepo) IsTradeSettled(ctx context.Context, tx pgx.Tx, tradeID string) (string, error) {
	query := `SELECT batch_id FROM settled_trades WHERE trade_id = $1`

	var batchID string
	err := tx.QueryRow(ctx, query, tradeID).Scan(&batchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("check settled trade: %w", err)
	}
	return batchID, nil
}

// MarkTradeSettled claims a trade identifier for a batch.
func (r *SettlementRepo) MarkTradeSettled(ctx context.Context, tx pgx.Tx, tradeID, batchID string, traderID uuid.UUID) error {
	query := `INSERT INTO settled_trades (trade_id, batch_id, trader_id, settled_at) VALUES ($1, $2, $3, now())`

	_, err := tx.Exec(ctx, query, tradeID, batchID, traderID)
	if err != nil {
		return fmt.Errorf("mark trade settled: %w", err)
	}
	return nil
}

// CreateTraderPnL inserts a verified per-(batch, trader) PnL record.
func (r *SettlementRepo) CreateTraderPnL(ctx context.Context, tx pgx.Tx, rec *domain.TraderPnLRecord) error {
	query := `INSERT INTO trader_pnl_records (batch_id, trader_id, total_pnl, trade_count, verified, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		rec.BatchID, rec.TraderID, rec.TotalPnL, rec.TradeCount, rec.Verified, rec.VerifiedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trader pnl record: %w", err)
	}
	return nil
}

// GetTraderPnL fetches the verified PnL record for a (batch, trader) pair.
func (r *SettlementRepo) GetTraderPnL(ctx context.Context, batchID string, traderID uuid.UUID) (*domain.TraderPnLRecord, error) {
	query := `SELECT batch_id, trader_id, total_pnl, trade_count, verified, verified_at
		FROM trader_pnl_records WHERE batch_id = $1 AND trader_id = $2`

	rec := &domain.TraderPnLRecord{}
	err := r.pool.QueryRow(ctx, query, batchID, traderID).Scan(
		&rec.BatchID, &rec.TraderID, &rec.TotalPnL, &rec.TradeCount, &rec.Verified, &rec.VerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan trader pnl record: %w", err)
	}
	return rec, nil
}
