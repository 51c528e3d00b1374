package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PayoutRepo implements ports.PayoutRepository.
type PayoutRepo struct {
	pool Pool
}

// NewPayoutRepo creates a new PayoutRepo.
func NewPayoutRepo(pool Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

// Create inserts a new payout request within a database transaction.
func (r *PayoutRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.PayoutRequest) error {
	query := `INSERT INTO payout_requests (id, trader_id, recipient, batch_id, operator_id, nonce,
		gross_pnl, trader_share, pool_share, trade_count, status, created_at, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.TraderID, p.Recipient, p.BatchID, p.OperatorID, p.Nonce,
		p.GrossPnL, p.TraderShare, p.PoolShare, p.TradeCount, p.Status,
		p.CreatedAt, p.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout request: %w", err)
	}
	return nil
}

// MarkExecuted transitions a payout request to EXECUTED.
func (r *PayoutRepo) MarkExecuted(ctx context.Context, tx pgx.Tx, id uuid.UUID, executedAt time.Time) error {
	query := `UPDATE payout_requests SET status = $1, executed_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, domain.PayoutStatusExecuted, executedAt, id)
	if err != nil {
		return fmt.Errorf("mark payout executed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payout request not found: %s", id)
	}
	return nil
}

// GetByID fetches a payout request by UUID.
func (r *PayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	query := `SELECT id, trader_id, recipient, batch_id, operator_id, nonce,
		gross_pnl, trader_share, pool_share, trade_count, status, created_at, executed_at
		FROM payout_requests WHERE id = $1`

	p := &domain.PayoutRequest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.TraderID, &p.Recipient, &p.BatchID, &p.OperatorID, &p.Nonce,
		&p.GrossPnL, &p.TraderShare, &p.PoolShare, &p.TradeCount, &p.Status,
		&p.CreatedAt, &p.ExecutedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payout request: %w", err)
	}
	return p, nil
}

// ListByTrader fetches a trader's payout history with pagination.
func (r *PayoutRepo) ListByTrader(ctx context.Context, traderID uuid.UUID, page, pageSize int) ([]domain.PayoutRequest, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payout_requests WHERE trader_id = $1`, traderID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payout requests: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, trader_id, recipient, batch_id, operator_id, nonce,
		gross_pnl, trader_share, pool_share, trade_count, status, created_at, executed_at
		FROM payout_requests WHERE trader_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, traderID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list payout requests: %w", err)
	}
	defer rows.Close()

	var payouts []domain.PayoutRequest
	for rows.Next() {
		p := domain.PayoutRequest{}
		err := rows.Scan(
			&p.ID, &p.TraderID, &p.Recipient, &p.BatchID, &p.OperatorID, &p.Nonce,
			&p.GrossPnL, &p.TraderShare, &p.PoolShare, &p.TradeCount, &p.Status,
			&p.CreatedAt, &p.ExecutedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan payout row: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payout rows: %w", err)
	}
	return payouts, total, nil
}
