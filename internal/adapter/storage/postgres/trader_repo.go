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

// TraderRepo implements ports.TraderRegistry. Mutating methods take pgx.Tx
// so registry updates commit atomically with the payout or scaling that
// caused them.
type TraderRepo struct {
	pool Pool
}

// NewTraderRepo creates a new TraderRepo.
func NewTraderRepo(pool Pool) *TraderRepo {
	return &TraderRepo{pool: pool}
}

// GetTraderInfo fetches a trader's registry record.
func (r *TraderRepo) GetTraderInfo(ctx context.Context, traderID uuid.UUID) (*domain.Trader, error) {
	query := `SELECT id, handle, tier, status, breach_count, lifetime_pnl, consistency_score,
		last_payout_at, total_paid_out, created_at, updated_at
		FROM traders WHERE id = $1`

	t := &domain.Trader{}
	err := r.pool.QueryRow(ctx, query, traderID).Scan(
		&t.ID, &t.Handle, &t.Tier, &t.Status, &t.BreachCount, &t.LifetimePnL,
		&t.ConsistencyScore, &t.LastPayoutAt, &t.TotalPaidOut, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan trader: %w", err)
	}
	return t, nil
}

// GetTierConfig fetches a tier's capital allocation and profit split.
func (r *TraderRepo) GetTierConfig(ctx context.Context, tier int16) (*domain.TierConfig, error) {
	query := `SELECT tier, capital_allocation, profit_split_bps, consistency_threshold
		FROM tier_configs WHERE tier = $1`

	cfg := &domain.TierConfig{}
	err := r.pool.QueryRow(ctx, query, tier).Scan(
		&cfg.Tier, &cfg.CapitalAllocation, &cfg.ProfitSplitBps, &cfg.ConsistencyThreshold,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan tier config: %w", err)
	}
	return cfg, nil
}

// GetPerformanceMetrics returns the trader's consistency score in bps.
func (r *TraderRepo) GetPerformanceMetrics(ctx context.Context, traderID uuid.UUID) (int64, error) {
	query := `SELECT consistency_score FROM traders WHERE id = $1`

	var score int64
	err := r.pool.QueryRow(ctx, query, traderID).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("trader not found: %s", traderID)
		}
		return 0, fmt.Errorf("get consistency score: %w", err)
	}
	return score, nil
}

// SetTier updates the trader's tier within a database transaction. An
// ACTIVE trader moves to PROMOTED in the same statement; other statuses
// are left as they are.
func (r *TraderRepo) SetTier(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, tier int16) error {
	query := `UPDATE traders SET tier = $1,
		status = CASE WHEN status = $2 THEN $3 ELSE status END,
		updated_at = now() WHERE id = $4`

	tag, err := tx.Exec(ctx, query, tier, domain.TraderStatusActive, domain.TraderStatusPromoted, traderID)
	if err != nil {
		return fmt.Errorf("set trader tier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trader not found: %s", traderID)
	}
	return nil
}

// ActivateAccount transitions the trader to ACTIVE.
func (r *TraderRepo) ActivateAccount(ctx context.Context, tx pgx.Tx, traderID uuid.UUID) error {
	query := `UPDATE traders SET status = $1, updated_at = now() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, domain.TraderStatusActive, traderID)
	if err != nil {
		return fmt.Errorf("activate trader: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trader not found: %s", traderID)
	}
	return nil
}

// UpdateLifetimePnL adds delta to the trader's lifetime PnL.
func (r *TraderRepo) UpdateLifetimePnL(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, delta int64) error {
	query := `UPDATE traders SET lifetime_pnl = lifetime_pnl + $1, updated_at = now() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, delta, traderID)
	if err != nil {
		return fmt.Errorf("update lifetime pnl: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trader not found: %s", traderID)
	}
	return nil
}

// RecordPayout updates last payout time and cumulative paid-out total.
func (r *TraderRepo) RecordPayout(ctx context.Context, tx pgx.Tx, traderID uuid.UUID, paidAt time.Time, amount int64) error {
	query := `UPDATE traders SET last_payout_at = $1, total_paid_out = total_paid_out + $2, updated_at = now() WHERE id = $3`

	tag, err := tx.Exec(ctx, query, paidAt, amount, traderID)
	if err != nil {
		return fmt.Errorf("record trader payout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trader not found: %s", traderID)
	}
	return nil
}
