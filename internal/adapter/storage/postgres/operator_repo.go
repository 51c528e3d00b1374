package postgres

import (
	"context"
	"errors"
	"fmt"

	"settlement-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OperatorRepo implements ports.OperatorRepository.
type OperatorRepo struct {
	pool Pool
}

// NewOperatorRepo creates a new OperatorRepo.
func NewOperatorRepo(pool Pool) *OperatorRepo {
	return &OperatorRepo{pool: pool}
}

const operatorColumns = `id, username, password_hash, name, access_key, secret_key_enc, webhook_url, status, created_at, updated_at`

// Create inserts a new operator.
func (r *OperatorRepo) Create(ctx context.Context, op *domain.Operator) error {
	query := `INSERT INTO operators (` + operatorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		op.ID, op.Username, op.PasswordHash, op.Name, op.AccessKey,
		op.SecretKeyEnc, op.WebhookURL, op.Status, op.CreatedAt, op.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}
	return nil
}

// GetByID fetches an operator by UUID.
func (r *OperatorRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = $1`
	return scanOperator(r.pool.QueryRow(ctx, query, id))
}

// GetByAccessKey fetches an operator by its API access key.
func (r *OperatorRepo) GetByAccessKey(ctx context.Context, accessKey string) (*domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE access_key = $1`
	return scanOperator(r.pool.QueryRow(ctx, query, accessKey))
}

// GetByUsername fetches an operator by username.
func (r *OperatorRepo) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE username = $1`
	return scanOperator(r.pool.QueryRow(ctx, query, username))
}

// IsOperator reports whether the identity is an active member of the
// authorization set.
func (r *OperatorRepo) IsOperator(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM operators WHERE id = $1 AND status = 'ACTIVE')`

	var ok bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check operator membership: %w", err)
	}
	return ok, nil
}

// scanOperator is a helper to scan a single row into an Operator.
func scanOperator(row pgx.Row) (*domain.Operator, error) {
	op := &domain.Operator{}
	err := row.Scan(
		&op.ID, &op.Username, &op.PasswordHash, &op.Name, &op.AccessKey,
		&op.SecretKeyEnc, &op.WebhookURL, &op.Status, &op.CreatedAt, &op.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan operator: %w", err)
	}
	return op, nil
}
