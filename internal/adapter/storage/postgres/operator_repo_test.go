package postgres

import (
	"context"
	"testing"
	"time"

	"settlement-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOperator() *domain.Operator {
	now := time.Now().UTC().Truncate(time.Microsecond)
	webhook := "https://ops.example.com/hooks"
	return &domain.Operator{
		ID:           uuid.New(),
		Username:     "ops_alice",
		PasswordHash: "$argon2id$hash",
		Name:         "Alice",
		AccessKey:    "ak_test",
		SecretKeyEnc: "enc_secret",
		WebhookURL:   &webhook,
		Status:       domain.OperatorStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func operatorRow(op *domain.Operator) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "password_hash", "name", "access_key",
		"secret_key_enc", "webhook_url", "status", "created_at", "updated_at",
	}).AddRow(
		op.ID, op.Username, op.PasswordHash, op.Name, op.AccessKey,
		op.SecretKeyEnc, op.WebhookURL, op.Status, op.CreatedAt, op.UpdatedAt,
	)
}

func TestOperatorRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperatorRepo(mock)
	op := newTestOperator()

	mock.ExpectExec("INSERT INTO operators").
		WithArgs(op.ID, op.Username, op.PasswordHash, op.Name, op.AccessKey,
			op.SecretKeyEnc, op.WebhookURL, op.Status, op.CreatedAt, op.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), op)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatorRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperatorRepo(mock)
	op := newTestOperator()

	mock.ExpectQuery("SELECT .+ FROM operators WHERE id").
		WithArgs(op.ID).
		WillReturnRows(operatorRow(op))

	result, err := repo.GetByID(context.Background(), op.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, op.Username, result.Username)
	assert.Equal(t, op.SecretKeyEnc, result.SecretKeyEnc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatorRepo_GetByAccessKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperatorRepo(mock)
	op := newTestOperator()

	mock.ExpectQuery("SELECT .+ FROM operators WHERE access_key").
		WithArgs(op.AccessKey).
		WillReturnRows(operatorRow(op))

	result, err := repo.GetByAccessKey(context.Background(), op.AccessKey)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, op.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatorRepo_GetByUsername_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperatorRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM operators WHERE username").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "username", "password_hash", "name", "access_key",
			"secret_key_enc", "webhook_url", "status", "created_at", "updated_at",
		}))

	result, err := repo.GetByUsername(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatorRepo_IsOperator(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperatorRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsOperator(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatorRepo_IsOperator_Suspended(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOperatorRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.IsOperator(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
