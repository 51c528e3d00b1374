package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"settlement-ledger/internal/core/domain"
	"settlement-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// BatchRepo implements ports.BatchRepository. Batches are append-only.
type BatchRepo struct {
	pool Pool
}

// NewBatchRepo creates a new BatchRepo.
func NewBatchRepo(pool Pool) *BatchRepo {
	return &BatchRepo{pool: pool}
}

// Create inserts a new batch within a database transaction.
func (r *BatchRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.Batch) error {
	query := `INSERT INTO batches (id, batch_hash, merkle_root, submitter, trade_count, total_volume, net_pnl, metadata, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		b.ID, b.BatchHash, b.MerkleRoot, b.Submitter,
		b.TradeCount, b.TotalVolume, b.NetPnL, b.Metadata, b.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID fetches a batch by its derived identifier.
func (r *BatchRepo) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	query := `SELECT id, batch_hash, merkle_root, submitter, trade_count, total_volume, net_pnl, metadata, submitted_at
		FROM batches WHERE id = $1`

	return scanBatch(r.pool.QueryRow(ctx, query, id))
}

// Exists reports whether a batch identifier is already present.
func (r *BatchRepo) Exists(ctx context.Context, tx pgx.Tx, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM batches WHERE id = $1)`

	var exists bool
	if err := tx.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check batch exists: %w", err)
	}
	return exists, nil
}

// ListBySubmitter fetches batches with filtering and pagination.
func (r *BatchRepo) ListBySubmitter(ctx context.Context, params ports.BatchListParams) ([]domain.Batch, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("submitter = $%d", argIdx))
	args = append(args, params.Submitter)
	argIdx++

	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM batches %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, batch_hash, merkle_root, submitter, trade_count, total_volume, net_pnl, metadata, submitted_at
		FROM batches %s ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.Batch
	for rows.Next() {
		b := domain.Batch{}
		err := rows.Scan(
			&b.ID, &b.BatchHash, &b.MerkleRoot, &b.Submitter,
			&b.TradeCount, &b.TotalVolume, &b.NetPnL, &b.Metadata, &b.SubmittedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan batch row: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate batch rows: %w", err)
	}
	return batches, total, nil
}

// scanBatch is a helper to scan a single row into a Batch.
func scanBatch(row pgx.Row) (*domain.Batch, error) {
	b := &domain.Batch{}
	err := row.Scan(
		&b.ID, &b.BatchHash, &b.MerkleRoot, &b.Submitter,
		&b.TradeCount, &b.TotalVolume, &b.NetPnL, &b.Metadata, &b.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	return b, nil
}
