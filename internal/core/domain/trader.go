package domain

import (
	"time"

	"github.com/google/uuid"
)

// TraderStatus is the account state reported by the tier registry.
type TraderStatus string

const (
	TraderStatusInactive  TraderStatus = "INACTIVE"
	TraderStatusActive    TraderStatus = "ACTIVE"
	TraderStatusPromoted  TraderStatus = "PROMOTED"
	TraderStatusSuspended TraderStatus = "SUSPENDED"
)

// Tier bounds for funded accounts.
const (
	MinTier int16 = 1
	MaxTier int16 = 5
)

// Trader is the registry view of a funded account: identity, tier, status
// and the performance figures the orchestrator checks at call time.
type Trader struct {
	ID               uuid.UUID    `json:"id"`
	Handle           string       `json:"handle"`
	Tier             int16        `json:"tier"`
	Status           TraderStatus `json:"status"`
	BreachCount      int32        `json:"breach_count"`
	LifetimePnL      int64        `json:"lifetime_pnl"`
	ConsistencyScore int64        `json:"consistency_score"` // Basis points, 0-10000
	LastPayoutAt     *time.Time   `json:"last_payout_at,omitempty"`
	TotalPaidOut     int64        `json:"total_paid_out"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// IsPayoutEligible returns true if the account may receive payouts.
func (t *Trader) IsPayoutEligible() bool {
	return t.Status == TraderStatusActive || t.Status == TraderStatusPromoted
}

// CooldownElapsed reports whether the payout cooldown has passed at now.
func (t *Trader) CooldownElapsed(now time.Time, cooldown time.Duration) bool {
	if t.LastPayoutAt == nil {
		return true
	}
	return !now.Before(t.LastPayoutAt.Add(cooldown))
}

// TierConfig is the capital and split policy for one tier.
type TierConfig struct {
	Tier                 int16 `json:"tier"`
	CapitalAllocation    int64 `json:"capital_allocation"`
	ProfitSplitBps       int64 `json:"profit_split_bps"`
	ConsistencyThreshold int64 `json:"consistency_threshold"` // Basis points
}
