package handler

import (
	"math"
	"strconv"

	"settlement-ledger/internal/adapter/http/dto"
	"settlement-ledger/internal/adapter/http/middleware"
	"settlement-ledger/internal/core/ports"
	"settlement-ledger/pkg/apperror"
	"settlement-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BatchHandler handles ledger endpoints: batch submission, public batch
// lookup, and the stateless trade proof check.
type BatchHandler struct {
	ledgerSvc ports.LedgerService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(ledgerSvc ports.LedgerService) *BatchHandler {
	return &BatchHandler{ledgerSvc: ledgerSvc}
}

// SubmitBatch handles POST /api/v1/batches.
func (h *BatchHandler) SubmitBatch(c *gin.Context) {
	operatorID, ok := c.Get(middleware.CtxOperatorID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SubmitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	batch, err := h.ledgerSvc.SubmitBatch(c.Request.Context(), ports.SubmitBatchInput{
		Submitter:   operatorID.(uuid.UUID),
		BatchHash:   req.BatchHash,
		MerkleRoot:  req.MerkleRoot,
		TradeCount:  req.TradeCount,
		TotalVolume: req.TotalVolume,
		NetPnL:      req.NetPnL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromBatch(batch))
}

// GetBatch handles GET /api/v1/batches/:id. Public: batch metadata is what
// auditors verify proofs against.
func (h *BatchHandler) GetBatch(c *gin.Context) {
	batch, err := h.ledgerSvc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromBatch(batch))
}

// VerifyTrade handles POST /api/v1/verify. Public and stateless: anyone
// holding a trade's full data and its proof can audit membership.
func (h *BatchHandler) VerifyTrade(c *gin.Context) {
	var req dto.VerifyTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	valid, pnl, err := h.ledgerSvc.VerifyTrade(c.Request.Context(), req.BatchID, req.Proof, req.Trade.ToTrade())
	if err != nil {
		response.Error(c, err)
		return
	}
	if !valid {
		pnl = 0
	}

	response.OK(c, dto.VerifyTradeResponse{Valid: valid, PnL: pnl})
}

// GetTraderPnL handles GET /api/v1/batches/:id/pnl/:trader_id.
func (h *BatchHandler) GetTraderPnL(c *gin.Context) {
	traderID, err := uuid.Parse(c.Param("trader_id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid trader id"))
		return
	}

	rec, err := h.ledgerSvc.GetTraderPnL(c.Request.Context(), c.Param("id"), traderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TraderPnLResponse{
		BatchID:    rec.BatchID,
		TraderID:   rec.TraderID.String(),
		TotalPnL:   rec.TotalPnL,
		TradeCount: rec.TradeCount,
		Verified:   rec.Verified,
		VerifiedAt: rec.VerifiedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// ListBatches handles GET /api/v1/batches. The authenticated operator sees
// its own submissions.
func (h *BatchHandler) ListBatches(c *gin.Context) {
	operatorID, ok := c.Get(middleware.CtxOperatorID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.BatchListParams{
		Submitter: operatorID.(uuid.UUID),
		Page:      page,
		PageSize:  pageSize,
	}
	if f := c.Query("from"); f != "" {
		if v, err := strconv.ParseInt(f, 10, 64); err == nil {
			params.From = &v
		}
	}
	if t := c.Query("to"); t != "" {
		if v, err := strconv.ParseInt(t, 10, 64); err == nil {
			params.To = &v
		}
	}

	batches, total, err := h.ledgerSvc.ListBatchesBySubmitter(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.BatchResponse, 0, len(batches))
	for i := range batches {
		items = append(items, dto.FromBatch(&batches[i]))
	}

	response.OK(c, dto.BatchListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	})
}
