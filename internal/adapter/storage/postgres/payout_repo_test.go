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

func newTestPayout() *domain.PayoutRequest {
	executedAt := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.PayoutRequest{
		ID:          uuid.New(),
		TraderID:    uuid.New(),
		Recipient:   "acct-777",
		BatchID:     "batch-1",
		OperatorID:  uuid.New(),
		Nonce:       3,
		GrossPnL:    1000,
		TraderShare: 700,
		PoolShare:   300,
		TradeCount:  2,
		Status:      domain.PayoutStatusExecuted,
		CreatedAt:   executedAt,
		ExecutedAt:  &executedAt,
	}
}

func payoutColumns() []string {
	return []string{"id", "trader_id", "recipient", "batch_id", "operator_id", "nonce",
		"gross_pnl", "trader_share", "pool_share", "trade_count", "status", "created_at", "executed_at"}
}

func payoutRow(p *domain.PayoutRequest) *pgxmock.Rows {
	return pgxmock.NewRows(payoutColumns()).AddRow(
		p.ID, p.TraderID, p.Recipient, p.BatchID, p.OperatorID, p.Nonce,
		p.GrossPnL, p.TraderShare, p.PoolShare, p.TradeCount, p.Status,
		p.CreatedAt, p.ExecutedAt,
	)
}

func TestPayoutRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	p := newTestPayout()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payout_requests").
		WithArgs(p.ID, p.TraderID, p.Recipient, p.BatchID, p.OperatorID, p.Nonce,
			p.GrossPnL, p.TraderShare, p.PoolShare, p.TradeCount, p.Status,
			p.CreatedAt, p.ExecutedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_MarkExecuted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	id := uuid.New()
	executedAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payout_requests SET status").
		WithArgs(domain.PayoutStatusExecuted, executedAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkExecuted(context.Background(), tx, id, executedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_MarkExecuted_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payout_requests SET status").
		WithArgs(domain.PayoutStatusExecuted, pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkExecuted(context.Background(), tx, id, time.Now().UTC())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "payout request not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	p := newTestPayout()

	mock.ExpectQuery("SELECT .+ FROM payout_requests WHERE id").
		WithArgs(p.ID).
		WillReturnRows(payoutRow(p))

	result, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.ID, result.ID)
	assert.Equal(t, int64(700), result.TraderShare)
	assert.Equal(t, domain.PayoutStatusExecuted, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM payout_requests WHERE id").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(payoutColumns()))

	result, err := repo.GetByID(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepo_ListByTrader(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPayoutRepo(mock)
	p := newTestPayout()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM payout_requests").
		WithArgs(p.TraderID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectQuery("SELECT .+ FROM payout_requests WHERE trader_id .+ ORDER BY created_at DESC").
		WithArgs(p.TraderID, 5, 5).
		WillReturnRows(payoutRow(p))

	payouts, total, err := repo.ListByTrader(context.Background(), p.TraderID, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, payouts, 1)
	assert.Equal(t, p.ID, payouts[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
