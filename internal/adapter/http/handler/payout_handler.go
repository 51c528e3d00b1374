package handler

import (
	"math"
	"strconv"

	"settlement-ledger/internal/adapter/http/dto"
	"settlement-ledger/internal/adapter/http/middleware"
	"settlement-ledger/internal/core/domain"
	"settlement-ledger/internal/core/ports"
	"settlement-ledger/pkg/apperror"
	"settlement-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayoutHandler handles orchestrator endpoints: payout execution, tier
// scaling, and instruction nonce lookup.
type PayoutHandler struct {
	payoutSvc ports.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutSvc ports.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutSvc: payoutSvc}
}

// RequestPayout handles POST /api/v1/payouts.
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	operatorID, ok := c.Get(middleware.CtxOperatorID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	trades := make([]domain.Trade, 0, len(req.Trades))
	for _, t := range req.Trades {
		trades = append(trades, t.ToTrade())
	}

	payout, err := h.payoutSvc.RequestPayout(c.Request.Context(), ports.PayoutInput{
		OperatorID: operatorID.(uuid.UUID),
		TraderID:   uuid.MustParse(req.TraderID),
		Recipient:  req.Recipient,
		BatchID:    req.BatchID,
		Proofs:     req.Proofs,
		Trades:     trades,
		Signature:  req.Signature,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromPayout(payout))
}

// AuthorizeScaling handles POST /api/v1/scaling.
func (h *PayoutHandler) AuthorizeScaling(c *gin.Context) {
	operatorID, ok := c.Get(middleware.CtxOperatorID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ScalingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	trader, err := h.payoutSvc.AuthorizeScaling(c.Request.Context(), ports.ScalingInput{
		OperatorID: operatorID.(uuid.UUID),
		TraderID:   uuid.MustParse(req.TraderID),
		NewTier:    req.NewTier,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTrader(trader))
}

// GetNonce handles GET /api/v1/traders/:trader_id/nonce. Operators fetch
// the current nonce to build the next payout instruction to sign.
func (h *PayoutHandler) GetNonce(c *gin.Context) {
	traderID, err := uuid.Parse(c.Param("trader_id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid trader id"))
		return
	}

	nonce, err := h.payoutSvc.PayoutNonce(c.Request.Context(), traderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NonceResponse{TraderID: traderID.String(), Nonce: nonce})
}

// GetPayout handles GET /api/v1/payouts/:id.
func (h *PayoutHandler) GetPayout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payout id"))
		return
	}

	payout, err := h.payoutSvc.GetPayout(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPayout(payout))
}

// ListPayouts handles GET /api/v1/payouts.
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	traderID, err := uuid.Parse(c.Query("trader_id"))
	if err != nil {
		response.Error(c, apperror.Validation("trader_id query parameter is required"))
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

	payouts, total, err := h.payoutSvc.ListPayoutsByTrader(c.Request.Context(), traderID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PayoutResponse, 0, len(payouts))
	for i := range payouts {
		items = append(items, dto.FromPayout(&payouts[i]))
	}

	response.OK(c, dto.PayoutListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	})
}
