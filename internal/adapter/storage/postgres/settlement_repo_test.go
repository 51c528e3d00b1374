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

func TestSettlementRepo_IsTradeSettled_Claimed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT batch_id FROM settled_trades WHERE trade_id").
		WithArgs("T-001").
		WillReturnRows(pgxmock.NewRows([]string{"batch_id"}).AddRow("batch-1"))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	batchID, err := repo.IsTradeSettled(context.Background(), tx, "T-001")
	require.NoError(t, err)
	assert.Equal(t, "batch-1", batchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_IsTradeSettled_Unclaimed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT batch_id FROM settled_trades WHERE trade_id").
		WithArgs("T-999").
		WillReturnRows(pgxmock.NewRows([]string{"batch_id"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	batchID, err := repo.IsTradeSettled(context.Background(), tx, "T-999")
	require.NoError(t, err)
	assert.Empty(t, batchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_MarkTradeSettled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	traderID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO settled_trades").
		WithArgs("T-001", "batch-1", traderID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.MarkTradeSettled(context.Background(), tx, "T-001", "batch-1", traderID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_CreateTraderPnL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	rec := &domain.TraderPnLRecord{
		BatchID:    "batch-1",
		TraderID:   uuid.New(),
		TotalPnL:   1150,
		TradeCount: 3,
		Verified:   true,
		VerifiedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO trader_pnl_records").
		WithArgs(rec.BatchID, rec.TraderID, rec.TotalPnL, rec.TradeCount, rec.Verified, rec.VerifiedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.CreateTraderPnL(context.Background(), tx, rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_GetTraderPnL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)
	traderID := uuid.New()
	verifiedAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM trader_pnl_records WHERE batch_id").
		WithArgs("batch-1", traderID).
		WillReturnRows(pgxmock.NewRows([]string{"batch_id", "trader_id", "total_pnl", "trade_count", "verified", "verified_at"}).
			AddRow("batch-1", traderID, int64(1150), int64(3), true, verifiedAt))

	rec, err := repo.GetTraderPnL(context.Background(), "batch-1", traderID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(1150), rec.TotalPnL)
	assert.True(t, rec.Verified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlementRepo_GetTraderPnL_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSettlementRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM trader_pnl_records WHERE batch_id").
		WithArgs("batch-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"batch_id", "trader_id", "total_pnl", "trade_count", "verified", "verified_at"}))

	rec, err := repo.GetTraderPnL(context.Background(), "batch-1", uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}
