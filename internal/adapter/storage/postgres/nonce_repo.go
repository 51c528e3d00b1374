package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NonceRepo implements ports.NonceRepository over the payout_nonces table.
// One row per trader holds the next-expected instruction nonce, starting at
// zero for traders with no row yet. CurrentForUpdate locks the row so
// concurrent payout requests for the same trader serialize at the database.
type NonceRepo struct {
	pool Pool
}

// NewNonceRepo creates a new NonceRepo.
func NewNonceRepo(pool Pool) *NonceRepo {
	return &NonceRepo{pool: pool}
}

// Current returns the trader's current instruction nonce.
func (r *NonceRepo) Current(ctx context.Context, traderID uuid.UUID) (uint64, error) {
	query := `SELECT nonce FROM payout_nonces WHERE trader_id = $1`

	var nonce uint64
	err := r.pool.QueryRow(ctx, query, traderID).Scan(&nonce)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get payout nonce: %w", err)
	}
	return nonce, nil
}

// CurrentForUpdate locks and returns the trader's nonce row, creating it at
// zero if absent.
func (r *NonceRepo) CurrentForUpdate(ctx context.Context, tx pgx.Tx, traderID uuid.UUID) (uint64, error) {
	insert := `INSERT INTO payout_nonces (trader_id, nonce) VALUES ($1, 0) ON CONFLICT (trader_id) DO NOTHING`
	if _, err := tx.Exec(ctx, insert, traderID); err != nil {
		return 0, fmt.Errorf("ensure payout nonce row: %w", err)
	}

	var nonce uint64
	query := `SELECT nonce FROM payout_nonces WHERE trader_id = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, query, traderID).Scan(&nonce); err != nil {
		return 0, fmt.Errorf("lock payout nonce: %w", err)
	}
	return nonce, nil
}

// Increment advances the trader's nonce by one.
func (r *NonceRepo) Increment(ctx context.Context, tx pgx.Tx, traderID uuid.UUID) error {
	query := `UPDATE payout_nonces SET nonce = nonce + 1, updated_at = now() WHERE trader_id = $1`

	tag, err := tx.Exec(ctx, query, traderID)
	if err != nil {
		return fmt.Errorf("increment payout nonce: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payout nonce row missing for trader %s", traderID)
	}
	return nil
}
