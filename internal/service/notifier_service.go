package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"settlement-ledger/internal/core/domain"
	"settlement-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// webhookRetryIntervals defines the delivery retry schedule.
var webhookRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Webhook event types.
const (
	EventBatchSubmitted = "BATCH_SUBMITTED"
	EventPayoutExecuted = "PAYOUT_EXECUTED"
)

// WebhookPayload is the JSON structure sent to an operator's webhook_url.
// The signature is HMAC-SHA256 of the marshaled data, keyed with the
// operator's secret key, so receivers can authenticate the sender.
type WebhookPayload struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

// BatchSubmittedData is the BATCH_SUBMITTED event body.
type BatchSubmittedData struct {
	BatchID    string `json:"batch_id"`
	MerkleRoot string `json:"merkle_root"`
	TradeCount int64  `json:"trade_count"`
	NetPnL     int64  `json:"net_pnl"`
	Timestamp  int64  `json:"timestamp"`
}

// PayoutExecutedData is the PAYOUT_EXECUTED event body.
type PayoutExecutedData struct {
	PayoutID    string `json:"payout_id"`
	TraderID    string `json:"trader_id"`
	BatchID     string `json:"batch_id"`
	GrossPnL    int64  `json:"gross_pnl"`
	TraderShare int64  `json:"trader_share"`
	PoolShare   int64  `json:"pool_share"`
	Timestamp   int64  `json:"timestamp"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// notifierService implements ports.NotifierService via signed operator
// webhooks.
type notifierService struct {
	operatorRepo ports.OperatorRepository
	encSvc       ports.EncryptionService
	sigSvc       ports.SignatureService
	httpClient   HTTPClient
	log          zerolog.Logger
}

// NewNotifierService creates a new webhook notifier.
func NewNotifierService(
	operatorRepo ports.OperatorRepository,
	encSvc ports.EncryptionService,
	sigSvc ports.SignatureService,
	httpClient HTTPClient,
	log zerolog.Logger,
) ports.NotifierService {
	return &notifierService{
		operatorRepo: operatorRepo,
		encSvc:       encSvc,
		sigSvc:       sigSvc,
		httpClient:   httpClient,
		log:          log,
	}
}

// NotifyBatchSubmitted delivers a BATCH_SUBMITTED event to the submitting
// operator's webhook.
func (s *notifierService) NotifyBatchSubmitted(ctx context.Context, batch *domain.Batch) error {
	data := BatchSubmittedData{
		BatchID:    batch.ID,
		MerkleRoot: batch.MerkleRoot,
		TradeCount: batch.TradeCount,
		NetPnL:     batch.NetPnL,
		Timestamp:  time.Now().Unix(),
	}
	return s.enqueue(ctx, batch.Submitter, EventBatchSubmitted, data, batch.ID)
}

// NotifyPayoutExecuted delivers a PAYOUT_EXECUTED event to the requesting
// operator's webhook.
func (s *notifierService) NotifyPayoutExecuted(ctx context.Context, payout *domain.PayoutRequest) error {
	data := PayoutExecutedData{
		PayoutID:    payout.ID.String(),
		TraderID:    payout.TraderID.String(),
		BatchID:     payout.BatchID,
		GrossPnL:    payout.GrossPnL,
		TraderShare: payout.TraderShare,
		PoolShare:   payout.PoolShare,
		Timestamp:   time.Now().Unix(),
	}
	return s.enqueue(ctx, payout.OperatorID, EventPayoutExecuted, data, payout.ID.String())
}

// enqueue signs the event for the operator and fires delivery async with
// retries.
func (s *notifierService) enqueue(ctx context.Context, operatorID uuid.UUID, eventType string, data any, resourceID string) error {
	operator, err := s.operatorRepo.GetByID(ctx, operatorID)
	if err != nil {
		s.log.Error().Err(err).Str("operator_id", operatorID.String()).Msg("webhook: failed to fetch operator")
		return err
	}
	if operator == nil || operator.WebhookURL == nil || *operator.WebhookURL == "" {
		s.log.Debug().Str("operator_id", operatorID.String()).Msg("webhook: no webhook URL configured, skipping")
		return nil
	}

	secretKey, err := s.encSvc.Decrypt(operator.SecretKeyEnc)
	if err != nil {
		s.log.Error().Err(err).Msg("webhook: failed to decrypt operator secret key")
		return err
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	signature := s.sigSvc.Sign(secretKey, string(dataBytes))

	payload := WebhookPayload{
		EventType: eventType,
		Data:      dataBytes,
		Signature: signature,
	}

	go s.deliverWithRetries(*operator.WebhookURL, payload, resourceID)

	return nil
}

// deliverWithRetries attempts to deliver the webhook on a backoff schedule.
func (s *notifierService) deliverWithRetries(url string, payload WebhookPayload, resourceID string) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("resource_id", resourceID).Msg("webhook: failed to marshal payload")
		return
	}

	for attempt := 0; attempt <= len(webhookRetryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(webhookRetryIntervals[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payloadBytes))
		if err != nil {
			s.log.Error().Err(err).Str("resource_id", resourceID).Int("attempt", attempt+1).Msg("webhook: failed to create request")
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.log.Warn().Err(err).Str("resource_id", resourceID).Int("attempt", attempt+1).Msg("webhook: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.log.Info().Str("resource_id", resourceID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("webhook: delivered successfully")
			return
		}

		s.log.Warn().Str("resource_id", resourceID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("webhook: non-2xx response, retrying")
	}

	s.log.Error().Str("resource_id", resourceID).Msg("webhook: all retry attempts exhausted")
}
