package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security & Authorization (SEC) ----

func ErrInvalidAccessKey() *AppError {
	return New("SEC_001", "Invalid access key", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Invalid signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("SEC_003", "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New("SEC_004", "Nonce has already been used", http.StatusForbidden)
}

func ErrNotOperator() *AppError {
	return New("SEC_005", "Signer is not an authorized operator", http.StatusForbidden)
}

func ErrInvalidInstruction() *AppError {
	return New("SEC_006", "Payout instruction signature invalid or replayed", http.StatusUnauthorized)
}

// ---- Validation (VAL) ----

// Validation returns a generic validation error with a custom message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrLengthMismatch() *AppError {
	return New("VAL_002", "Proofs and trades must be non-empty and equal length", http.StatusBadRequest)
}

func ErrTierOutOfRange() *AppError {
	return New("VAL_003", "Tier outside the valid range", http.StatusBadRequest)
}

// ---- Ledger Integrity (LED) ----

func ErrBatchNotFound() *AppError {
	return New("LED_001", "Batch not found", http.StatusNotFound)
}

func ErrDuplicateBatch() *AppError {
	return New("LED_002", "Batch identifier already exists", http.StatusConflict)
}

func ErrInvalidProof() *AppError {
	return New("LED_003", "Merkle proof does not reconstruct the batch root", http.StatusUnprocessableEntity)
}

func ErrTradeAlreadySettled(tradeID string) *AppError {
	return New("LED_004", fmt.Sprintf("Trade %s has already been settled", tradeID), http.StatusConflict)
}

// ---- Payout State (PAY) ----

func ErrCooldownActive() *AppError {
	return New("PAY_001", "Payout cooldown has not elapsed", http.StatusConflict)
}

func ErrBelowMinimumPayout() *AppError {
	return New("PAY_002", "Verified PnL below minimum payout", http.StatusUnprocessableEntity)
}

func ErrNonPositivePnL() *AppError {
	return New("PAY_003", "Verified PnL is not positive", http.StatusUnprocessableEntity)
}

func ErrTraderNotEligible() *AppError {
	return New("PAY_004", "Trader is not eligible for payouts", http.StatusForbidden)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_005", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Scaling (SCALE) ----

func ErrTierNotAboveCurrent() *AppError {
	return New("SCALE_001", "New tier must be strictly greater than current tier", http.StatusBadRequest)
}

func ErrConsistencyBelowThreshold() *AppError {
	return New("SCALE_002", "Consistency score below tier threshold", http.StatusUnprocessableEntity)
}

func ErrBreachesRecorded() *AppError {
	return New("SCALE_003", "Trader has recorded breaches", http.StatusForbidden)
}

func ErrNonPositiveLifetimePnL() *AppError {
	return New("SCALE_004", "Lifetime PnL is not positive", http.StatusUnprocessableEntity)
}

// ---- Resources (RES) ----

func ErrInsufficientLiquidity() *AppError {
	return New("RES_001", "Custodian pool has insufficient liquidity", http.StatusPaymentRequired)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrOperatorSuspended() *AppError {
	return New("AUTH_003", "Operator account is suspended", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
