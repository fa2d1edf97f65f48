package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"checkout-gateway/internal/core/domain"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[uuid.UUID]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Insert(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.transactions {
		if existing.CheckoutID == t.CheckoutID {
			return apperror.ErrDuplicateCheckout()
		}
		if t.ProviderChargeID != nil && existing.ProviderChargeID != nil &&
			*existing.ProviderChargeID == *t.ProviderChargeID {
			return apperror.ErrDuplicateCheckout()
		}
	}
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByChargeID(ctx context.Context, chargeID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transactions {
		if t.ProviderChargeID != nil && *t.ProviderChargeID == chargeID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) TransitionStatus(ctx context.Context, tx pgx.Tx, chargeID string, status domain.TransactionStatus, confirmedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transactions {
		if t.ProviderChargeID == nil || *t.ProviderChargeID != chargeID {
			continue
		}
		if !t.Status.CanTransitionTo(status) {
			return false, nil
		}
		t.Status = status
		if confirmedAt != nil {
			t.ConfirmedAt = confirmedAt
		}
		t.UpdatedAt = time.Now().UTC()
		return true, nil
	}
	return false, apperror.ErrNotFound("transaction")
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.PageSize > ports.MaxPageSize {
		return nil, 0, apperror.ValidationField("limit", "must not exceed 100")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Transaction
	for _, t := range r.transactions {
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Email != nil && t.Email != *params.Email {
			continue
		}
		matched = append(matched, *t)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (params.Page - 1) * params.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *inMemoryTransactionRepo) AggregateCounts(ctx context.Context) (*ports.TransactionCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := &ports.TransactionCounts{}
	for _, t := range r.transactions {
		counts.Total++
		switch t.Status {
		case domain.StatusPending:
			counts.Pending++
		case domain.StatusCompleted:
			counts.Completed++
		case domain.StatusFailed:
			counts.Failed++
		case domain.StatusExpired:
			counts.Expired++
		}
	}
	return counts, nil
}

// --- In-Memory Webhook Event Repo ---

type inMemoryWebhookEventRepo struct {
	mu     sync.RWMutex
	events map[string]*domain.WebhookEvent // keyed by webhook id
}

func newInMemoryWebhookEventRepo() *inMemoryWebhookEventRepo {
	return &inMemoryWebhookEventRepo{events: make(map[string]*domain.WebhookEvent)}
}

func (r *inMemoryWebhookEventRepo) Record(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.events[event.WebhookID]; exists {
		return apperror.ErrDuplicateWebhook()
	}
	cp := *event
	r.events[event.WebhookID] = &cp
	return nil
}

func (r *inMemoryWebhookEventRepo) GetByWebhookID(ctx context.Context, webhookID string) (*domain.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[webhookID]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *inMemoryWebhookEventRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
