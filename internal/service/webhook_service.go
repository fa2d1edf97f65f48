package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout-gateway/internal/core/domain"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// dedupTTL bounds how long a processed webhook id stays in the cache. The
// database unique constraint remains authoritative after expiry.
const dedupTTL = 24 * time.Hour

// webhookService reconciles inbound provider deliveries against the
// transaction store. The audit insert and the status transition commit in one
// database transaction, so a crash between them cannot strand a recorded
// event without its effect.
type webhookService struct {
	transactions ports.TransactionRepository
	events       ports.WebhookEventRepository
	transactor   ports.DBTransactor
	dedup        ports.DedupCache
	verifier     ports.SignatureVerifier
	log          zerolog.Logger
}

// NewWebhookService creates the webhook reconciler. dedup may be nil when no
// cache is configured; the database constraint alone then carries dedup.
func NewWebhookService(
	transactions ports.TransactionRepository,
	events ports.WebhookEventRepository,
	transactor ports.DBTransactor,
	dedup ports.DedupCache,
	verifier ports.SignatureVerifier,
	log zerolog.Logger,
) ports.WebhookProcessor {
	return &webhookService{
		transactions: transactions,
		events:       events,
		transactor:   transactor,
		dedup:        dedup,
		verifier:     verifier,
		log:          log,
	}
}

// Process verifies, dedups and applies one webhook delivery. Replays and
// unknown event types succeed without side effects so the provider stops
// retrying.
func (s *webhookService) Process(ctx context.Context, rawBody []byte, signature string) error {
	// Authentication precedes everything; rejected deliveries leave no trace.
	if !s.verifier.Verify(rawBody, signature) {
		s.log.Warn().Msg("webhook signature verification failed")
		return apperror.ErrInvalidSignature()
	}

	var event domain.ChargeEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return apperror.Validation("malformed webhook payload")
	}
	if field, ok := event.Validate(); !ok {
		return apperror.ValidationField(field, "is required")
	}

	logger := s.log.With().
		Str("webhook_id", event.ID).
		Str("webhook_type", event.Type).
		Str("charge_id", event.Data.ID).
		Logger()

	// Best-effort fast path. A cache error degrades to the database gate.
	if s.dedup != nil {
		seen, err := s.dedup.Seen(ctx, event.ID)
		if err != nil {
			logger.Warn().Err(err).Msg("dedup cache lookup failed, falling through to database")
		} else if seen {
			logger.Info().Msg("webhook replay short-circuited by cache")
			return nil
		}
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin webhook transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	record := &domain.WebhookEvent{
		ID:               uuid.New(),
		WebhookID:        event.ID,
		WebhookType:      event.Type,
		ProviderChargeID: event.Data.ID,
		Payload:          rawBody,
		ProcessedAt:      time.Now().UTC(),
	}
	if err := s.events.Record(ctx, tx, record); err != nil {
		if apperror.IsCode(err, apperror.CodeDuplicateWebhook) {
			logger.Info().Msg("webhook already processed, acknowledging replay")
			return nil
		}
		return fmt.Errorf("record webhook event: %w", err)
	}

	if err := s.applyEvent(ctx, tx, &event, logger); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit webhook transaction: %w", err)
	}

	if s.dedup != nil {
		if err := s.dedup.Mark(ctx, event.ID, dedupTTL); err != nil {
			logger.Warn().Err(err).Msg("dedup cache mark failed")
		}
	}

	logger.Info().Msg("webhook processed")
	return nil
}

// applyEvent maps the event type onto the transaction state machine inside
// the open transaction. Unknown charges and unknown types are acknowledged;
// the audit row still commits.
func (s *webhookService) applyEvent(ctx context.Context, tx pgx.Tx, event *domain.ChargeEvent, logger zerolog.Logger) error {
	switch event.Type {
	case domain.EventChargeCreated:
		// Informational only; the transaction was created pending at checkout.
		txn, err := s.transactions.GetByChargeID(ctx, event.Data.ID)
		if err != nil {
			return fmt.Errorf("lookup charge: %w", err)
		}
		if txn == nil {
			logger.Warn().Msg("charge created event for unknown charge")
		}
		return nil

	case domain.EventChargeConfirmed:
		confirmedAt := event.OccurredAt(time.Now())
		return s.transition(ctx, tx, event.Data.ID, domain.StatusCompleted, &confirmedAt, logger)

	case domain.EventChargeFailed:
		return s.transition(ctx, tx, event.Data.ID, domain.StatusFailed, nil, logger)

	default:
		logger.Info().Msg("ignoring unknown webhook type")
		return nil
	}
}

func (s *webhookService) transition(ctx context.Context, tx pgx.Tx, chargeID string, status domain.TransactionStatus, confirmedAt *time.Time, logger zerolog.Logger) error {
	moved, err := s.transactions.TransitionStatus(ctx, tx, chargeID, status, confirmedAt)
	if err != nil {
		if apperror.IsCode(err, apperror.CodeNotFound) {
			logger.Warn().Msg("webhook references unknown charge, acknowledging")
			return nil
		}
		return fmt.Errorf("transition to %s: %w", status, err)
	}
	if !moved {
		logger.Info().Str("status", string(status)).Msg("transaction already terminal, transition skipped")
	}
	return nil
}
