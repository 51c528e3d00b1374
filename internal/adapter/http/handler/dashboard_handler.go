package handler

import (
	"settlement-ledger/internal/adapter/http/dto"
	"settlement-ledger/internal/core/ports"
	"settlement-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles ledger-wide statistics for auditors.
type DashboardHandler struct {
	ledgerSvc ports.LedgerService
	custodian ports.CapitalCustodian
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(ledgerSvc ports.LedgerService, custodian ports.CapitalCustodian) *DashboardHandler {
	return &DashboardHandler{ledgerSvc: ledgerSvc, custodian: custodian}
}

// GetStats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.ledgerSvc.GetGlobalStatistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	poolBalance, err := h.custodian.PoolBalance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.GlobalStatsResponse{
		TotalBatches:  stats.TotalBatches,
		TotalTrades:   stats.TotalTrades,
		TotalVolume:   stats.TotalVolume,
		CumulativePnL: stats.CumulativePnL,
		TotalPayouts:  stats.TotalPayouts,
		TotalPaidOut:  stats.TotalPaidOut,
		PoolBalance:   poolBalance,
	})
}
