package ports

import (
	"context"
	"time"

	"settlement-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MerkleVerifier reconstructs Merkle roots from membership proofs.
type MerkleVerifier interface {
	// LeafHash returns the hex SHA-256 of the trade's canonical encoding.
	LeafHash(trade *domain.Trade) string
	// ComputeRoot folds the proof into the leaf using sorted-pair hashing.
	ComputeRoot(leafHash string, proof []string) (string, error)
	// VerifyProof reports whether leaf + proof reconstruct the root.
	VerifyProof(leafHash string, proof []string, root string) bool
}

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	// BuildCanonicalString is the transport-level request canonical form.
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
	// BuildPayoutInstruction is the canonical payout authorization message.
	// Replay protection comes from the strictly-increasing per-trader nonce.
	BuildPayoutInstruction(systemID string, traderID uuid.UUID, recipient, batchID string, nonce uint64) string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations for the auditor dashboard.
type TokenService interface {
	Generate(operatorID uuid.UUID, accessKey string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	OperatorID uuid.UUID
	AccessKey  string
}

// BatchCache is a Redis read cache for batch lookups. Safe because batches
// are immutable once committed.
type BatchCache interface {
	Get(ctx context.Context, batchID string) ([]byte, error) // Returns cached batch JSON or nil
	Set(ctx context.Context, batchID string, value []byte, ttl time.Duration) error
}

// NonceStore manages transport-level request nonce uniqueness for replay
// prevention on the operator HTTP API. Distinct from the per-trader payout
// instruction nonce, which lives in NonceRepository.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, operatorID string, nonce string, ttl time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService is the Batch Settlement Ledger.
type LedgerService interface {
	SubmitBatch(ctx context.Context, in SubmitBatchInput) (*domain.Batch, error)
	// VerifyTrade is the public stateless proof check.
	VerifyTrade(ctx context.Context, batchID string, proof []string, trade domain.Trade) (bool, int64, error)
	// VerifyAndRecordTraderPnL is orchestrator-only: it rides the caller's
	// open transaction and permanently consumes the supplied trades on
	// commit. All-or-nothing: one bad proof or already-settled trade fails
	// the whole call.
	VerifyAndRecordTraderPnL(ctx context.Context, tx pgx.Tx, batchID string, traderID uuid.UUID, proofs [][]string, trades []domain.Trade) (int64, error)
	GetBatch(ctx context.Context, id string) (*domain.Batch, error)
	GetTraderPnL(ctx context.Context, batchID string, traderID uuid.UUID) (*domain.TraderPnLRecord, error)
	GetGlobalStatistics(ctx context.Context) (*domain.GlobalStats, error)
	ListBatchesBySubmitter(ctx context.Context, params BatchListParams) ([]domain.Batch, int64, error)
}

// SubmitBatchInput holds validated input for batch submission. Aggregate
// figures are trusted operator inputs; only individual-trade membership is
// verified later.
type SubmitBatchInput struct {
	Submitter   uuid.UUID
	BatchHash   string
	MerkleRoot  string
	TradeCount  int64
	TotalVolume int64
	NetPnL      int64
	Metadata    string
}

// PayoutService is the Payout Orchestrator.
type PayoutService interface {
	RequestPayout(ctx context.Context, in PayoutInput) (*domain.PayoutRequest, error)
	AuthorizeScaling(ctx context.Context, in ScalingInput) (*domain.Trader, error)
	// PayoutNonce returns the trader's current instruction nonce so the
	// operator can build the next message to sign.
	PayoutNonce(ctx context.Context, traderID uuid.UUID) (uint64, error)
	GetPayout(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
	ListPayoutsByTrader(ctx context.Context, traderID uuid.UUID, page, pageSize int) ([]domain.PayoutRequest, int64, error)
}

// PayoutInput holds validated input for a payout request.
type PayoutInput struct {
	OperatorID uuid.UUID // Authenticated caller identity
	TraderID   uuid.UUID
	Recipient  string
	BatchID    string
	Proofs     [][]string
	Trades     []domain.Trade
	Signature  string // HMAC over the canonical payout instruction
}

// ScalingInput holds validated input for a tier upgrade.
type ScalingInput struct {
	OperatorID uuid.UUID
	TraderID   uuid.UUID
	NewTier    int16
}

// AuthService defines operator onboarding and login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for operator registration.
type RegisterRequest struct {
	Username   string
	Password   string
	Name       string
	WebhookURL *string
}

// RegisterResponse holds the registration result shown once.
type RegisterResponse struct {
	OperatorID uuid.UUID
	AccessKey  string
	SecretKey  string // Plaintext, shown only at registration
}

// NotifierService delivers signed webhook notifications to operators.
type NotifierService interface {
	NotifyBatchSubmitted(ctx context.Context, batch *domain.Batch) error
	NotifyPayoutExecuted(ctx context.Context, payout *domain.PayoutRequest) error
}

// AuditService records audit log entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
