package ports

import (
	"context"
	"time"

	"checkout-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MaxPageSize caps transaction list pages; larger requests are rejected.
const MaxPageSize = 100

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// TransactionRepository defines persistence operations for transactions.
// The backing store is the sole enforcement point for the checkout_id and
// provider_charge_id uniqueness invariants (database constraints, not
// application checks).
type TransactionRepository interface {
	// Insert persists a new transaction. A uniqueness violation surfaces as a
	// duplicate-checkout conflict.
	Insert(ctx context.Context, t *domain.Transaction) error
	// GetByID and GetByChargeID return (nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByChargeID(ctx context.Context, chargeID string) (*domain.Transaction, error)
	// TransitionStatus atomically moves the pending transaction identified by
	// chargeID to a terminal status, stamping confirmed_at when given. It
	// reports false when the transaction exists but is already terminal, and a
	// not-found error when no transaction has that charge id. Methods accepting
	// pgx.Tx run inside the reconciler's transaction block.
	TransitionStatus(ctx context.Context, tx pgx.Tx, chargeID string, status domain.TransactionStatus, confirmedAt *time.Time) (bool, error)
	// List returns a created_at DESC page plus the total count.
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	// AggregateCounts returns per-status counts from a single consistent query.
	AggregateCounts(ctx context.Context) (*TransactionCounts, error)
}

// WebhookEventRepository persists the webhook audit ledger. The unique key on
// webhook_id is the reconciler's dedup gate.
type WebhookEventRepository interface {
	// Record inserts the audit row inside the reconciler's transaction block.
	// A second delivery of the same webhook id surfaces as a duplicate-webhook
	// conflict.
	Record(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) error
	// GetByWebhookID returns (nil, nil) when absent.
	GetByWebhookID(ctx context.Context, webhookID string) (*domain.WebhookEvent, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	Status   *domain.TransactionStatus
	Email    *string
	Page     int
	PageSize int
}

// TransactionCounts holds aggregate per-status counts for monitoring.
type TransactionCounts struct {
	Total     int64
	Pending   int64
	Completed int64
	Failed    int64
	Expired   int64
}

// DedupCache is the best-effort fast path in front of the database dedup gate.
// It is advisory only: reads short-circuit obvious replays, writes happen after
// the authoritative insert committed.
type DedupCache interface {
	Seen(ctx context.Context, webhookID string) (bool, error)
	Mark(ctx context.Context, webhookID string, ttl time.Duration) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
