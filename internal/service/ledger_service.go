package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"settlement-ledger/internal/core/domain"
	"settlement-ledger/internal/core/ports"
	"settlement-ledger/pkg/apperror"
	"settlement-ledger/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const batchCacheTTL = 12 * time.Hour

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	batchRepo      ports.BatchRepository
	settlementRepo ports.SettlementRepository
	statsRepo      ports.StatsRepository
	batchCache     ports.BatchCache
	merkle         ports.MerkleVerifier
	transactor     ports.DBTransactor
	notifier       ports.NotifierService // nil = notifications disabled
	log            zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	batchRepo ports.BatchRepository,
	settlementRepo ports.SettlementRepository,
	statsRepo ports.StatsRepository,
	batchCache ports.BatchCache,
	merkle ports.MerkleVerifier,
	transactor ports.DBTransactor,
	notifier ports.NotifierService,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		batchRepo:      batchRepo,
		settlementRepo: settlementRepo,
		statsRepo:      statsRepo,
		batchCache:     batchCache,
		merkle:         merkle,
		transactor:     transactor,
		notifier:       notifier,
		log:            log,
	}
}

// SubmitBatch appends a committed trade batch to the ledger. The aggregate
// figures are trusted operator inputs; only individual-trade membership is
// verified later via Merkle proofs.
func (s *LedgerServiceImpl) SubmitBatch(ctx context.Context, in ports.SubmitBatchInput) (*domain.Batch, error) {
	if in.BatchHash == "" || in.MerkleRoot == "" {
		return nil, apperror.Validation("batch hash and merkle root are required")
	}
	if in.Metadata == "" {
		return nil, apperror.Validation("metadata reference is required")
	}
	if in.TradeCount <= 0 {
		return nil, apperror.Validation("trade count must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Locks the stats row, serializing submissions and yielding a unique seq.
	seq, err := s.statsRepo.NextBatchSeq(ctx, dbTx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("next batch seq: %w", err))
	}

	now := time.Now().UTC()
	batch := &domain.Batch{
		ID:          domain.DeriveBatchID(in.BatchHash, in.MerkleRoot, in.Submitter, seq, now),
		BatchHash:   in.BatchHash,
		MerkleRoot:  in.MerkleRoot,
		Submitter:   in.Submitter,
		TradeCount:  in.TradeCount,
		TotalVolume: in.TotalVolume,
		NetPnL:      in.NetPnL,
		Metadata:    in.Metadata,
		SubmittedAt: now,
	}

	// Practically unreachable given the seq counter, retained as a safety check.
	exists, err := s.batchRepo.Exists(ctx, dbTx, batch.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check batch id: %w", err))
	}
	if exists {
		return nil, apperror.ErrDuplicateBatch()
	}

	if err := s.batchRepo.Create(ctx, dbTx, batch); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create batch: %w", err))
	}

	if err := s.statsRepo.ApplyBatch(ctx, dbTx, in.TradeCount, in.TotalVolume, in.NetPnL); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update global stats: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheBatch(ctx, batch)
	metrics.BatchesSubmitted.Inc()

	if s.notifier != nil {
		_ = s.notifier.NotifyBatchSubmitted(ctx, batch)
	}

	s.log.Info().
		Str("batch_id", batch.ID).
		Str("submitter", in.Submitter.String()).
		Int64("trade_count", in.TradeCount).
		Int64("net_pnl", in.NetPnL).
		Msg("batch submitted")

	return batch, nil
}

// VerifyTrade is the public stateless proof check: anyone holding a batch's
// public metadata and a trade's full data can audit membership. Never
// mutates state.
func (s *LedgerServiceImpl) VerifyTrade(ctx context.Context, batchID string, proof []string, trade domain.Trade) (bool, int64, error) {
	batch, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return false, 0, err
	}

	leaf := s.merkle.LeafHash(&trade)
	if !s.merkle.VerifyProof(leaf, proof, batch.MerkleRoot) {
		metrics.ProofFailures.Inc()
		return false, 0, nil
	}
	return true, trade.PnL, nil
}

// VerifyAndRecordTraderPnL verifies a trader's trades against a batch and
// consumes them in the caller's transaction. All-or-nothing: one invalid
// proof or already-settled trade fails the whole call and nothing is
// claimed. A successful commit permanently consumes the trades against
// future settlement.
func (s *LedgerServiceImpl) VerifyAndRecordTraderPnL(ctx context.Context, tx pgx.Tx, batchID string, traderID uuid.UUID, proofs [][]string, trades []domain.Trade) (int64, error) {
	if len(trades) == 0 || len(trades) != len(proofs) {
		return 0, apperror.ErrLengthMismatch()
	}

	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("fetch batch: %w", err))
	}
	if batch == nil {
		return 0, apperror.ErrBatchNotFound()
	}

	var totalPnL int64
	for i := range trades {
		trade := &trades[i]
		if trade.TraderID != traderID {
			return 0, apperror.Validation(fmt.Sprintf("trade %s does not belong to trader", trade.TradeID))
		}

		leaf := s.merkle.LeafHash(trade)
		if !s.merkle.VerifyProof(leaf, proofs[i], batch.MerkleRoot) {
			metrics.ProofFailures.Inc()
			return 0, apperror.ErrInvalidProof()
		}

		settledBy, err := s.settlementRepo.IsTradeSettled(ctx, tx, trade.TradeID)
		if err != nil {
			return 0, apperror.InternalError(fmt.Errorf("check settlement index: %w", err))
		}
		if settledBy != "" {
			return 0, apperror.ErrTradeAlreadySettled(trade.TradeID)
		}

		if err := s.settlementRepo.MarkTradeSettled(ctx, tx, trade.TradeID, batchID, traderID); err != nil {
			return 0, apperror.InternalError(fmt.Errorf("mark trade settled: %w", err))
		}

		totalPnL += trade.PnL
	}

	rec := &domain.TraderPnLRecord{
		BatchID:    batchID,
		TraderID:   traderID,
		TotalPnL:   totalPnL,
		TradeCount: int64(len(trades)),
		Verified:   true,
		VerifiedAt: time.Now().UTC(),
	}
	if err := s.settlementRepo.CreateTraderPnL(ctx, tx, rec); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("write trader pnl record: %w", err))
	}

	metrics.TradesSettled.Add(float64(len(trades)))
	return totalPnL, nil
}

// GetBatch fetches a batch, served from the Redis cache when warm. Batches
// are immutable so the cache never goes stale.
func (s *LedgerServiceImpl) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	if s.batchCache != nil {
		cached, err := s.batchCache.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("batch_id", id).Msg("batch cache read failed, falling through to DB")
		}
		if cached != nil {
			batch := &domain.Batch{}
			if err := json.Unmarshal(cached, batch); err == nil {
				return batch, nil
			}
		}
	}

	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch batch: %w", err))
	}
	if batch == nil {
		return nil, apperror.ErrBatchNotFound()
	}

	s.cacheBatch(ctx, batch)
	return batch, nil
}

// GetTraderPnL returns the verified PnL record for a (batch, trader) pair.
func (s *LedgerServiceImpl) GetTraderPnL(ctx context.Context, batchID string, traderID uuid.UUID) (*domain.TraderPnLRecord, error) {
	rec, err := s.settlementRepo.GetTraderPnL(ctx, batchID, traderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch trader pnl: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrNotFound("trader PnL record")
	}
	return rec, nil
}

// GetGlobalStatistics returns ledger-wide counters.
func (s *LedgerServiceImpl) GetGlobalStatistics(ctx context.Context) (*domain.GlobalStats, error) {
	stats, err := s.statsRepo.Get(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch global stats: %w", err))
	}
	return stats, nil
}

// ListBatchesBySubmitter returns a filtered page of batches.
func (s *LedgerServiceImpl) ListBatchesBySubmitter(ctx context.Context, params ports.BatchListParams) ([]domain.Batch, int64, error) {
	batches, total, err := s.batchRepo.ListBySubmitter(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list batches: %w", err))
	}
	return batches, total, nil
}

// cacheBatch stores a batch in Redis, best-effort.
func (s *LedgerServiceImpl) cacheBatch(ctx context.Context, batch *domain.Batch) {
	if s.batchCache == nil {
		return
	}
	raw, err := json.Marshal(batch)
	if err != nil {
		return
	}
	if err := s.batchCache.Set(ctx, batch.ID, raw, batchCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("batch_id", batch.ID).Msg("failed to cache batch")
	}
}
