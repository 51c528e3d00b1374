package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperatorStatus represents the state of an operator account.
type OperatorStatus string

const (
	OperatorStatusActive    OperatorStatus = "ACTIVE"
	OperatorStatusSuspended OperatorStatus = "SUSPENDED"
	OperatorStatusRevoked   OperatorStatus = "REVOKED"
)

// Operator is an off-system authority permitted to submit batches and sign
// payout and scaling instructions.
type Operator struct {
	ID           uuid.UUID      `json:"id"`
	Username     string         `json:"username"`
	PasswordHash string         `json:"-"` // Never expose
	Name         string         `json:"name"`
	AccessKey    string         `json:"access_key"`
	SecretKeyEnc string         `json:"-"` // Encrypted, never expose
	WebhookURL   *string        `json:"webhook_url,omitempty"`
	Status       OperatorStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsActive returns true if the operator is in the authorization set.
func (o *Operator) IsActive() bool {
	return o.Status == OperatorStatusActive
}
