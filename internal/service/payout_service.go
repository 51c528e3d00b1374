package service

import (
	"context"
	"fmt"
	"time"

	"settlement-ledger/internal/core/domain"
	"settlement-ledger/internal/core/ports"
	"settlement-ledger/pkg/apperror"
	"settlement-ledger/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PayoutPolicy holds the orchestrator's policy knobs, sourced from config.
type PayoutPolicy struct {
	// SystemID is bound into every signed payout instruction so a message
	// authorized for one deployment cannot be replayed against another.
	SystemID       string
	PayoutCooldown time.Duration
	MinimumPayout  int64
}

// PayoutServiceImpl implements ports.PayoutService. All mutating flows run
// as a single database transaction: the ledger's trade consumption, the
// custodian transfer and the registry update commit or roll back together,
// so a trade is never consumed without its payout.
type PayoutServiceImpl struct {
	ledger       ports.LedgerService
	payoutRepo   ports.PayoutRepository
	statsRepo    ports.StatsRepository
	registry     ports.TraderRegistry
	custodian    ports.CapitalCustodian
	operatorRepo ports.OperatorRepository
	nonceRepo    ports.NonceRepository
	sigSvc       ports.SignatureService
	encSvc       ports.EncryptionService
	transactor   ports.DBTransactor
	notifier     ports.NotifierService // nil = notifications disabled
	policy       PayoutPolicy
	log          zerolog.Logger
}

// NewPayoutService creates a new PayoutServiceImpl.
func NewPayoutService(
	ledger ports.LedgerService,
	payoutRepo ports.PayoutRepository,
	statsRepo ports.StatsRepository,
	registry ports.TraderRegistry,
	custodian ports.CapitalCustodian,
	operatorRepo ports.OperatorRepository,
	nonceRepo ports.NonceRepository,
	sigSvc ports.SignatureService,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	notifier ports.NotifierService,
	policy PayoutPolicy,
	log zerolog.Logger,
) *PayoutServiceImpl {
	return &PayoutServiceImpl{
		ledger:       ledger,
		payoutRepo:   payoutRepo,
		statsRepo:    statsRepo,
		registry:     registry,
		custodian:    custodian,
		operatorRepo: operatorRepo,
		nonceRepo:    nonceRepo,
		sigSvc:       sigSvc,
		encSvc:       encSvc,
		transactor:   transactor,
		notifier:     notifier,
		policy:       policy,
		log:          log,
	}
}

// RequestPayout verifies a trader's trades against a committed batch and
// pays out the trader share of the verified profit. Every precondition is
// hard: any failure aborts the whole call with no persisted state, so the
// only externally observable outcomes are absence or EXECUTED.
func (s *PayoutServiceImpl) RequestPayout(ctx context.Context, in ports.PayoutInput) (*domain.PayoutRequest, error) {
	// Step 1: shape checks.
	if in.Recipient == "" {
		return nil, apperror.Validation("recipient is required")
	}
	if len(in.Trades) == 0 || len(in.Trades) != len(in.Proofs) {
		return nil, apperror.ErrLengthMismatch()
	}

	// Step 2: trader exists and is eligible.
	trader, err := s.registry.GetTraderInfo(ctx, in.TraderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch trader: %w", err))
	}
	if trader == nil {
		return nil, apperror.ErrNotFound("trader")
	}
	if !trader.IsPayoutEligible() {
		return nil, apperror.ErrTraderNotEligible()
	}

	// Step 3: cooldown.
	now := time.Now().UTC()
	if !trader.CooldownElapsed(now, s.policy.PayoutCooldown) {
		return nil, apperror.ErrCooldownActive()
	}

	// Resolve the signing operator before opening the transaction.
	operator, err := s.operatorRepo.GetByID(ctx, in.OperatorID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch operator: %w", err))
	}
	if operator == nil || !operator.IsActive() {
		return nil, apperror.ErrNotOperator()
	}
	secretKey, err := s.encSvc.Decrypt(operator.SecretKeyEnc)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decrypt operator secret: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Step 4: replay-protected instruction check. The nonce row lock
	// serializes payouts per trader; the signed message binds trader,
	// recipient, batch, nonce and system identity. Once the nonce
	// increments at commit, the same signed message can never pass again.
	nonce, err := s.nonceRepo.CurrentForUpdate(ctx, dbTx, in.TraderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock nonce: %w", err))
	}

	// The eligibility snapshot from step 2 can go stale while waiting on
	// the nonce lock: a concurrent payout for the same trader commits its
	// last_payout_at before releasing the row. Re-read the trader now that
	// the lock is held and re-check the cooldown against fresh state.
	trader, err = s.registry.GetTraderInfo(ctx, in.TraderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("refetch trader: %w", err))
	}
	if trader == nil {
		return nil, apperror.ErrNotFound("trader")
	}
	if !trader.IsPayoutEligible() {
		return nil, apperror.ErrTraderNotEligible()
	}
	now = time.Now().UTC()
	if !trader.CooldownElapsed(now, s.policy.PayoutCooldown) {
		return nil, apperror.ErrCooldownActive()
	}

	instruction := s.sigSvc.BuildPayoutInstruction(s.policy.SystemID, in.TraderID, in.Recipient, in.BatchID, nonce)
	if !s.sigSvc.Verify(secretKey, instruction, in.Signature) {
		return nil, apperror.ErrInvalidInstruction()
	}
	isOp, err := s.operatorRepo.IsOperator(ctx, in.OperatorID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check operator set: %w", err))
	}
	if !isOp {
		return nil, apperror.ErrNotOperator()
	}

	if err := s.nonceRepo.Increment(ctx, dbTx, in.TraderID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("increment nonce: %w", err))
	}

	// Step 5: verify membership and consume the trades.
	grossPnL, err := s.ledger.VerifyAndRecordTraderPnL(ctx, dbTx, in.BatchID, in.TraderID, in.Proofs, in.Trades)
	if err != nil {
		return nil, err
	}

	// Step 6: profit floor.
	if grossPnL <= 0 {
		return nil, apperror.ErrNonPositivePnL()
	}
	if grossPnL < s.policy.MinimumPayout {
		return nil, apperror.ErrBelowMinimumPayout()
	}

	// Step 7: tier-based split. Truncation favors the pool share.
	tierCfg, err := s.registry.GetTierConfig(ctx, trader.Tier)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch tier config: %w", err))
	}
	if tierCfg == nil {
		return nil, apperror.ErrNotFound("tier config")
	}
	traderShare, poolShare := domain.SplitPnL(grossPnL, tierCfg.ProfitSplitBps)

	// Step 8: persist, transfer, update registry — one unit of work.
	payout := &domain.PayoutRequest{
		ID:          uuid.New(),
		TraderID:    in.TraderID,
		Recipient:   in.Recipient,
		BatchID:     in.BatchID,
		OperatorID:  in.OperatorID,
		Nonce:       nonce,
		GrossPnL:    grossPnL,
		TraderShare: traderShare,
		PoolShare:   poolShare,
		TradeCount:  int64(len(in.Trades)),
		Status:      domain.PayoutStatusVerified,
		CreatedAt:   now,
	}
	if err := s.payoutRepo.Create(ctx, dbTx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payout request: %w", err))
	}

	if err := s.custodian.TransferToTrader(ctx, dbTx, in.TraderID, in.Recipient, traderShare); err != nil {
		return nil, err
	}

	if err := s.registry.RecordPayout(ctx, dbTx, in.TraderID, now, traderShare); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record payout: %w", err))
	}
	if err := s.registry.UpdateLifetimePnL(ctx, dbTx, in.TraderID, grossPnL); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update lifetime pnl: %w", err))
	}

	if err := s.statsRepo.ApplyPayout(ctx, dbTx, traderShare); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update global stats: %w", err))
	}

	executedAt := time.Now().UTC()
	if err := s.payoutRepo.MarkExecuted(ctx, dbTx, payout.ID, executedAt); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark payout executed: %w", err))
	}
	payout.Status = domain.PayoutStatusExecuted
	payout.ExecutedAt = &executedAt

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.PayoutsExecuted.Inc()
	metrics.PayoutAmount.Add(float64(traderShare))

	if s.notifier != nil {
		_ = s.notifier.NotifyPayoutExecuted(ctx, payout)
	}

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("trader_id", in.TraderID.String()).
		Str("batch_id", in.BatchID).
		Int64("gross_pnl", grossPnL).
		Int64("trader_share", traderShare).
		Int64("pool_share", poolShare).
		Msg("payout executed")

	return payout, nil
}

// AuthorizeScaling upgrades a trader to a higher tier. All checks evaluate
// registry-reported values at call time; nothing is recomputed here.
func (s *PayoutServiceImpl) AuthorizeScaling(ctx context.Context, in ports.ScalingInput) (*domain.Trader, error) {
	isOp, err := s.operatorRepo.IsOperator(ctx, in.OperatorID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check operator set: %w", err))
	}
	if !isOp {
		return nil, apperror.ErrNotOperator()
	}

	trader, err := s.registry.GetTraderInfo(ctx, in.TraderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch trader: %w", err))
	}
	if trader == nil {
		return nil, apperror.ErrNotFound("trader")
	}
	if trader.Status == domain.TraderStatusSuspended {
		return nil, apperror.ErrTraderNotEligible()
	}

	if in.NewTier < domain.MinTier || in.NewTier > domain.MaxTier {
		return nil, apperror.ErrTierOutOfRange()
	}
	if in.NewTier <= trader.Tier {
		return nil, apperror.ErrTierNotAboveCurrent()
	}

	newCfg, err := s.registry.GetTierConfig(ctx, in.NewTier)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch tier config: %w", err))
	}
	if newCfg == nil {
		return nil, apperror.ErrNotFound("tier config")
	}

	consistency, err := s.registry.GetPerformanceMetrics(ctx, in.TraderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch performance metrics: %w", err))
	}
	if consistency < newCfg.ConsistencyThreshold {
		return nil, apperror.ErrConsistencyBelowThreshold()
	}
	if trader.BreachCount > 0 {
		return nil, apperror.ErrBreachesRecorded()
	}
	if trader.LifetimePnL <= 0 {
		return nil, apperror.ErrNonPositiveLifetimePnL()
	}

	oldCfg, err := s.registry.GetTierConfig(ctx, trader.Tier)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch current tier config: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.registry.SetTier(ctx, dbTx, in.TraderID, in.NewTier); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("set tier: %w", err))
	}

	if trader.Status == domain.TraderStatusInactive {
		// Reactivation path: full new-tier allocation.
		if err := s.registry.ActivateAccount(ctx, dbTx, in.TraderID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("activate account: %w", err))
		}
		if err := s.custodian.AllocateToTrader(ctx, dbTx, in.TraderID, newCfg.CapitalAllocation); err != nil {
			return nil, err
		}
	} else if oldCfg != nil && newCfg.CapitalAllocation > oldCfg.CapitalAllocation {
		delta := newCfg.CapitalAllocation - oldCfg.CapitalAllocation
		if err := s.custodian.AllocateToTrader(ctx, dbTx, in.TraderID, delta); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.ScalingsAuthorized.Inc()

	s.log.Info().
		Str("trader_id", in.TraderID.String()).
		Int16("old_tier", trader.Tier).
		Int16("new_tier", in.NewTier).
		Msg("scaling authorized")

	updated, err := s.registry.GetTraderInfo(ctx, in.TraderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch updated trader: %w", err))
	}
	return updated, nil
}

// PayoutNonce returns the trader's current instruction nonce.
func (s *PayoutServiceImpl) PayoutNonce(ctx context.Context, traderID uuid.UUID) (uint64, error) {
	nonce, err := s.nonceRepo.Current(ctx, traderID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("fetch nonce: %w", err))
	}
	return nonce, nil
}

// GetPayout fetches an executed payout request by ID.
func (s *PayoutServiceImpl) GetPayout(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	payout, err := s.payoutRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout request")
	}
	return payout, nil
}

// ListPayoutsByTrader returns a page of the trader's payout history.
func (s *PayoutServiceImpl) ListPayoutsByTrader(ctx context.Context, traderID uuid.UUID, page, pageSize int) ([]domain.PayoutRequest, int64, error) {
	payouts, total, err := s.payoutRepo.ListByTrader(ctx, traderID, page, pageSize)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list payouts: %w", err))
	}
	return payouts, total, nil
}
