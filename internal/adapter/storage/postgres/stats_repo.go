package postgres

import (
	"context"
	"fmt"

	"settlement-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// StatsRepo implements ports.StatsRepository over the single global_stats
// row. Locking that row FOR UPDATE serializes batch submission, which keeps
// the batch sequence gapless and unique.
type StatsRepo struct {
	pool Pool
}

// NewStatsRepo creates a new StatsRepo.
func NewStatsRepo(pool Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

// Get fetches the global statistics row.
func (r *StatsRepo) Get(ctx context.Context) (*domain.GlobalStats, error) {
	query := `SELECT batch_seq, total_batches, total_trades, total_volume, cumulative_pnl, total_payouts, total_paid_out, updated_at
		FROM global_stats WHERE id = 1`

	stats := &domain.GlobalStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.BatchSeq, &stats.TotalBatches, &stats.TotalTrades, &stats.TotalVolume,
		&stats.CumulativePnL, &stats.TotalPayouts, &stats.TotalPaidOut, &stats.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get global stats: %w", err)
	}
	return stats, nil
}

// NextBatchSeq locks the stats row and returns the next batch sequence.
func (r *StatsRepo) NextBatchSeq(ctx context.Context, tx pgx.Tx) (int64, error) {
	query := `UPDATE global_stats SET batch_seq = batch_seq + 1, updated_at = now() WHERE id = 1 RETURNING batch_seq`

	var seq int64
	if err := tx.QueryRow(ctx, query).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next batch seq: %w", err)
	}
	return seq, nil
}

// ApplyBatch folds an accepted batch's aggregates into the global counters.
func (r *StatsRepo) ApplyBatch(ctx context.Context, tx pgx.Tx, tradeCount, volume, netPnL int64) error {
	query := `UPDATE global_stats SET
		total_batches = total_batches + 1,
		total_trades = total_trades + $1,
		total_volume = total_volume + $2,
		cumulative_pnl = cumulative_pnl + $3,
		updated_at = now()
		WHERE id = 1`

	tag, err := tx.Exec(ctx, query, tradeCount, volume, netPnL)
	if err != nil {
		return fmt.Errorf("apply batch stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("global stats row missing")
	}
	return nil
}

// ApplyPayout folds an executed payout into the global counters.
func (r *StatsRepo) ApplyPayout(ctx context.Context, tx pgx.Tx, paidOut int64) error {
	query := `UPDATE global_stats SET
		total_payouts = total_payouts + 1,
		total_paid_out = total_paid_out + $1,
		updated_at = now()
		WHERE id = 1`

	tag, err := tx.Exec(ctx, query, paidOut)
	if err != nil {
		return fmt.Errorf("apply payout stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("global stats row missing")
	}
	return nil
}
