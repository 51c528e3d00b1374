package postgres

import (
	"context"
	"fmt"

	"settlement-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustodianRepo implements ports.CapitalCustodian over the single pooled
// capital row plus per-trader allocation ledgers. The conditional UPDATE on
// the pool balance is the liquidity check: no separate read, no race.
type CustodianRepo struct {
	pool Pool
}

// NewCustodianRepo creates a new CustodianRepo.
func NewCustodianRepo(pool Pool) *CustodianRepo {
	return &CustodianRepo{pool: pool}
}

// TransferToTrader moves funds from the pool to the recipient and records
// the transfer. Fails with insufficient liquidity if the pool cannot cover
// the amount.
func (r *CustodianRepo) TransferToTrader(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, recipient string, amount int64) error {
	debit := `UPDATE capital_pool SET balance = balance - $1, updated_at = now() WHERE id = 1 AND balance >= $1`

	tag, err := tx.Exec(ctx, debit, amount)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("debit capital pool: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrInsufficientLiquidity()
	}

	record := `INSERT INTO capital_transfers (id, trader_id, recipient, amount, transferred_at) VALUES ($1, $2, $3, $4, now())`
	if _, err := tx.Exec(ctx, record, uuid.New(), traderID, recipient, amount); err != nil {
		return apperror.InternalError(fmt.Errorf("record capital transfer: %w", err))
	}
	return nil
}

// AllocateToTrader increases the trader's capital allocation ledger, funded
// from the pool.
func (r *CustodianRepo) AllocateToTrader(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, amount int64) error {
	debit := `UPDATE capital_pool SET balance = balance - $1, updated_at = now() WHERE id = 1 AND balance >= $1`

	tag, err := tx.Exec(ctx, debit, amount)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("debit capital pool: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrInsufficientLiquidity()
	}

	upsert := `INSERT INTO trader_allocations (trader_id, allocated, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (trader_id) DO UPDATE SET allocated = trader_allocations.allocated + $2, updated_at = now()`
	if _, err := tx.Exec(ctx, upsert, traderID, amount); err != nil {
		return apperror.InternalError(fmt.Errorf("upsert trader allocation: %w", err))
	}
	return nil
}

// PoolBalance returns the current pooled capital balance.
func (r *CustodianRepo) PoolBalance(ctx context.Context) (int64, error) {
	var balance int64
	if err := r.pool.QueryRow(ctx, `SELECT balance FROM capital_pool WHERE id = 1`).Scan(&balance); err != nil {
		return 0, fmt.Errorf("get pool balance: %w", err)
	}
	return balance, nil
}
