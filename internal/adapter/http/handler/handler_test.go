package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"settlement-ledger/internal/adapter/http/dto"
	"settlement-ledger/internal/core/domain"
	"settlement-ledger/internal/core/ports"
	"settlement-ledger/internal/core/ports/mocks"
	"settlement-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testBatchID    = "0f3a6b9c1d2e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a"
	testHash64     = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testRoot64     = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	testSig64      = "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"
	testProofNode  = "dddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd"
	testTraderUUID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
)

func validTradeDTO() dto.TradeDTO {
	return dto.TradeDTO{
		TraderID:   testTraderUUID,
		TradeID:    "T-001",
		Symbol:     "EURUSD",
		Side:       "LONG",
		Size:       1000,
		EntryPrice: 108500,
		ExitPrice:  108900,
		PnL:        400,
		Fee:        20,
		Timestamp:  1700000000,
	}
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	operatorID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Username: "testuser",
		Password: "password123",
		Name:     "Test Desk",
	}).Return(&ports.RegisterResponse{
		OperatorID: operatorID,
		AccessKey:  "ak_test",
		SecretKey:  "sk_test",
	}, nil)

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "testuser",
		Password: "password123",
		Name:     "Test Desk",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, operatorID.String(), data["operator_id"])
	assert.Equal(t, "ak_test", data["access_key"])
	assert.Equal(t, "sk_test", data["secret_key"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Empty body => binding error
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.Validation("username already taken"))

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "taken",
		Password: "password123",
		Name:     "Desk",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "testuser", "password123").Return("jwt-token-123", expiry, nil)

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "testuser",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad", "bad").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	body, _ := json.Marshal(dto.LoginRequest{
		Username: "bad",
		Password: "bad",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Batch Handler Tests ---

func TestSubmitBatch_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewBatchHandler(mockLedger)

	operatorID := uuid.New()
	now := time.Now().UTC()

	mockLedger.EXPECT().SubmitBatch(gomock.Any(), ports.SubmitBatchInput{
		Submitter:   operatorID,
		BatchHash:   testHash64,
		MerkleRoot:  testRoot64,
		TradeCount:  120,
		TotalVolume: 9500000,
		NetPnL:      48000,
		Metadata:    "s3://settlements/batch.json",
	}).Return(&domain.Batch{
		ID:          testBatchID,
		BatchHash:   testHash64,
		MerkleRoot:  testRoot64,
		Submitter:   operatorID,
		TradeCount:  120,
		TotalVolume: 9500000,
		NetPnL:      48000,
		Metadata:    "s3://settlements/batch.json",
		SubmittedAt: now,
	}, nil)

	body, _ := json.Marshal(dto.SubmitBatchRequest{
		BatchHash:   testHash64,
		MerkleRoot:  testRoot64,
		TradeCount:  120,
		TotalVolume: 9500000,
		NetPnL:      48000,
		Metadata:    "s3://settlements/batch.json",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("operator_id", operatorID)

	h.SubmitBatch(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, testBatchID, data["id"])
	assert.Equal(t, float64(120), data["trade_count"])
}

func TestSubmitBatch_MissingOperatorID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewBatchHandler(mockLedger)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h.SubmitBatch(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitBatch_DuplicateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewBatchHandler(mockLedger)

	operatorID := uuid.New()
	mockLedger.EXPECT().SubmitBatch(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrDuplicateBatch())

	body, _ := json.Marshal(dto.SubmitBatchRequest{
		BatchHash:  testHash64,
		MerkleRoot: testRoot64,
		TradeCount: 10,
		Metadata:   "s3://settlements/batch.json",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("operator_id", operatorID)

	h.SubmitBatch(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetBatch_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewBatchHandler(mockLedger)

	mockLedger.EXPECT().GetBatch(gomock.Any(), "missing").Return(nil, apperror.ErrBatchNotFound())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.GetBatch(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyTrade_Valid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewBatchHandler(mockLedger)

	mockLedger.EXPECT().VerifyTrade(gomock.Any(), testBatchID, []string{testProofNode}, gomock.Any()).
		Return(true, int64(400), nil)

	body, _ := json.Marshal(dto.VerifyTradeRequest{
		BatchID: testBatchID,
		Proof:   []string{testProofNode},
		Trade:   validTradeDTO(),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.VerifyTrade(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, float64(400), data["pnl"])
}

func TestVerifyTrade_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewBatchHandler(mockLedger)

	mockLedger.EXPECT().VerifyTrade(gomock.Any(), testBatchID, gomock.Any(), gomock.Any()).
		Return(false, int64(0), nil)

	body, _ := json.Marshal(dto.VerifyTradeRequest{
		BatchID: testBatchID,
		Proof:   []string{testProofNode},
		Trade:   validTradeDTO(),
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.VerifyTrade(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, false, data["valid"])
	assert.Equal(t, float64(0), data["pnl"])
}

func TestListBatches_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewBatchHandler(mockLedger)

	operatorID := uuid.New()
	now := time.Now().UTC()

	mockLedger.EXPECT().ListBatchesBySubmitter(gomock.Any(), ports.BatchListParams{
		Submitter: operatorID,
		Page:      1,
		PageSize:  20,
	}).Return([]domain.Batch{
		{
			ID:          testBatchID,
			BatchHash:   testHash64,
			MerkleRoot:  testRoot64,
			Submitter:   operatorID,
			TradeCount:  120,
			SubmittedAt: now,
		},
	}, int64(1), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=1&page_size=20", nil)
	c.Set("operator_id", operatorID)

	h.ListBatches(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["total_pages"])
}

// --- Payout Handler Tests ---

func TestRequestPayout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	h := NewPayoutHandler(mockPayout)

	operatorID := uuid.New()
	payoutID := uuid.New()
	traderID := uuid.MustParse(testTraderUUID)
	now := time.Now().UTC()

	mockPayout.EXPECT().RequestPayout(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, in ports.PayoutInput) (*domain.PayoutRequest, error) {
			assert.Equal(t, operatorID, in.OperatorID)
			assert.Equal(t, traderID, in.TraderID)
			assert.Equal(t, "acct-777", in.Recipient)
			assert.Len(t, in.Trades, 1)
			return &domain.PayoutRequest{
				ID:          payoutID,
				TraderID:    traderID,
				Recipient:   "acct-777",
				BatchID:     testBatchID,
				OperatorID:  operatorID,
				Nonce:       3,
				GrossPnL:    1000,
				TraderShare: 700,
				PoolShare:   300,
				TradeCount:  1,
				Status:      domain.PayoutStatusExecuted,
				CreatedAt:   now,
				ExecutedAt:  &now,
			}, nil
		})

	body, _ := json.Marshal(dto.PayoutRequest{
		TraderID:  testTraderUUID,
		Recipient: "acct-777",
		BatchID:   testBatchID,
		Proofs:    [][]string{{testProofNode}},
		Trades:    []dto.TradeDTO{validTradeDTO()},
		Signature: testSig64,
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("operator_id", operatorID)

	h.RequestPayout(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, payoutID.String(), data["id"])
	assert.Equal(t, float64(700), data["trader_share"])
	assert.Equal(t, "EXECUTED", data["status"])
}

func TestRequestPayout_MissingOperatorID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	h := NewPayoutHandler(mockPayout)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h.RequestPayout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestPayout_ReplayedInstruction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	h := NewPayoutHandler(mockPayout)

	operatorID := uuid.New()
	mockPayout.EXPECT().RequestPayout(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInvalidInstruction())

	body, _ := json.Marshal(dto.PayoutRequest{
		TraderID:  testTraderUUID,
		Recipient: "acct-777",
		BatchID:   testBatchID,
		Proofs:    [][]string{{testProofNode}},
		Trades:    []dto.TradeDTO{validTradeDTO()},
		Signature: testSig64,
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("operator_id", operatorID)

	h.RequestPayout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorizeScaling_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	h := NewPayoutHandler(mockPayout)

	operatorID := uuid.New()
	traderID := uuid.MustParse(testTraderUUID)

	mockPayout.EXPECT().AuthorizeScaling(gomock.Any(), ports.ScalingInput{
		OperatorID: operatorID,
		TraderID:   traderID,
		NewTier:    3,
	}).Return(&domain.Trader{
		ID:     traderID,
		Handle: "trader_one",
		Tier:   3,
		Status: domain.TraderStatusActive,
	}, nil)

	body, _ := json.Marshal(dto.ScalingRequest{
		TraderID: testTraderUUID,
		NewTier:  3,
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("operator_id", operatorID)

	h.AuthorizeScaling(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["tier"])
}

func TestGetNonce_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	h := NewPayoutHandler(mockPayout)

	traderID := uuid.MustParse(testTraderUUID)
	mockPayout.EXPECT().PayoutNonce(gomock.Any(), traderID).Return(uint64(7), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "trader_id", Value: testTraderUUID}}

	h.GetNonce(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["nonce"])
}

func TestGetNonce_InvalidTraderID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	h := NewPayoutHandler(mockPayout)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "trader_id", Value: "not-a-uuid"}}

	h.GetNonce(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPayouts_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPayout := mocks.NewMockPayoutService(ctrl)
	h := NewPayoutHandler(mockPayout)

	traderID := uuid.MustParse(testTraderUUID)
	now := time.Now().UTC()

	mockPayout.EXPECT().ListPayoutsByTrader(gomock.Any(), traderID, 1, 20).Return([]domain.PayoutRequest{
		{
			ID:          uuid.New(),
			TraderID:    traderID,
			Recipient:   "acct-777",
			BatchID:     testBatchID,
			Nonce:       3,
			GrossPnL:    1000,
			TraderShare: 700,
			PoolShare:   300,
			TradeCount:  1,
			Status:      domain.PayoutStatusExecuted,
			CreatedAt:   now,
		},
	}, int64(1), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?trader_id="+testTraderUUID, nil)

	h.ListPayouts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(1), data["total"])
}

// --- Dashboard Handler Tests ---

func TestGetStats_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	mockCustodian := mocks.NewMockCapitalCustodian(ctrl)
	h := NewDashboardHandler(mockLedger, mockCustodian)

	mockLedger.EXPECT().GetGlobalStatistics(gomock.Any()).Return(&domain.GlobalStats{
		TotalBatches:  40,
		TotalTrades:   4800,
		TotalVolume:   380000000,
		CumulativePnL: 1920000,
		TotalPayouts:  15,
		TotalPaidOut:  672000,
	}, nil)
	mockCustodian.EXPECT().PoolBalance(gomock.Any()).Return(int64(10000000), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(40), data["total_batches"])
	assert.Equal(t, float64(672000), data["total_paid_out"])
	assert.Equal(t, float64(10000000), data["pool_balance"])
}

func TestGetStats_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	mockCustodian := mocks.NewMockCapitalCustodian(ctrl)
	h := NewDashboardHandler(mockLedger, mockCustodian)

	mockLedger.EXPECT().GetGlobalStatistics(gomock.Any()).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.GetStats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Health Check Test ---

func TestHealthCheck_NoCheckers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
