package postgres

import (
	"context"
	"errors"
	"fmt"

	"checkout-gateway/internal/core/domain"
	"checkout-gateway/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// WebhookEventRepo implements ports.WebhookEventRepository over the
// webhook_events audit ledger.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// Record inserts the audit row within the reconciler's database transaction.
// The unique constraint on webhook_id is the dedup gate: a replayed delivery
// surfaces as a duplicate-webhook conflict and is resolved to success upstream.
func (r *WebhookEventRepo) Record(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) error {
	query := `INSERT INTO webhook_events (id, webhook_id, webhook_type, provider_charge_id, payload, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query,
		event.ID, event.WebhookID, event.WebhookType,
		event.ProviderChargeID, event.Payload, event.ProcessedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return apperror.ErrDuplicateWebhook()
		}
		return fmt.Errorf("record webhook event: %w", err)
	}
	return nil
}

// GetByWebhookID fetches an audit row by the provider-issued webhook id.
func (r *WebhookEventRepo) GetByWebhookID(ctx context.Context, webhookID string) (*domain.WebhookEvent, error) {
	query := `SELECT id, webhook_id, webhook_type, provider_charge_id, payload, processed_at
		FROM webhook_events WHERE webhook_id = $1`

	event := &domain.WebhookEvent{}
	err := r.pool.QueryRow(ctx, query, webhookID).Scan(
		&event.ID, &event.WebhookID, &event.WebhookType,
		&event.ProviderChargeID, &event.Payload, &event.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook event: %w", err)
	}
	return event, nil
}
