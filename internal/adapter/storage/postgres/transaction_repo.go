package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-gateway/internal/core/domain"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const txColumns = `id, checkout_id, email, amount, currency, status, provider_charge_id,
	provider_charge_code, payment_url, expires_at, confirmed_at, created_at, updated_at`

// Insert persists a new transaction. The checkout_id and provider_charge_id
// unique constraints are the enforcement point for the uniqueness invariants;
// violations surface as a duplicate-checkout conflict.
func (r *TransactionRepo) Insert(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, checkout_id, email, amount, currency, status,
		provider_charge_id, provider_charge_code, payment_url, expires_at, confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.CheckoutID, t.Email, t.Amount, t.Currency, t.Status,
		t.ProviderChargeID, t.ProviderChargeCode, t.PaymentURL,
		t.ExpiresAt, t.ConfirmedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return apperror.ErrDuplicateCheckout()
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, txColumns)
	return r.scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// GetByChargeID fetches a transaction by its provider charge identifier.
func (r *TransactionRepo) GetByChargeID(ctx context.Context, chargeID string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE provider_charge_id = $1`, txColumns)
	return r.scanTransaction(r.pool.QueryRow(ctx, query, chargeID))
}

// TransitionStatus moves the pending transaction with the given charge id to a
// terminal status in a single conditional update, so concurrent deliveries
// cannot race a read-then-write. It returns false when the row exists but is
// already terminal and a not-found error when no row has that charge id.
func (r *TransactionRepo) TransitionStatus(ctx context.Context, tx pgx.Tx, chargeID string, status domain.TransactionStatus, confirmedAt *time.Time) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE transactions SET status = $2, confirmed_at = COALESCE($3, confirmed_at), updated_at = $4
		WHERE provider_charge_id = $1 AND status = $5`

	tag, err := tx.Exec(ctx, query, chargeID, status, confirmedAt, now, domain.StatusPending)
	if err != nil {
		return false, fmt.Errorf("transition transaction status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE provider_charge_id = $1)`, chargeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check transaction exists: %w", err)
	}
	if !exists {
		return false, apperror.ErrNotFound("transaction")
	}
	// Row exists but is terminal: sticky state, no-op.
	return false, nil
}

// List fetches transactions with filtering and pagination, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.PageSize > ports.MaxPageSize {
		return nil, 0, apperror.ValidationField("limit", fmt.Sprintf("must not exceed %d", ports.MaxPageSize))
	}

	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Email != nil {
		conditions = append(conditions, fmt.Sprintf("email = $%d", argIdx))
		args = append(args, *params.Email)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		txColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.ID, &t.CheckoutID, &t.Email, &t.Amount, &t.Currency, &t.Status,
			&t.ProviderChargeID, &t.ProviderChargeCode, &t.PaymentURL,
			&t.ExpiresAt, &t.ConfirmedAt, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// AggregateCounts retrieves per-status transaction counts in one query, so the
// numbers reflect a single consistent snapshot.
func (r *TransactionRepo) AggregateCounts(ctx context.Context) (*ports.TransactionCounts, error) {
	query := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'failed') AS failed,
		COUNT(*) FILTER (WHERE status = 'expired') AS expired
		FROM transactions`

	counts := &ports.TransactionCounts{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&counts.Total, &counts.Pending, &counts.Completed, &counts.Failed, &counts.Expired,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate transaction counts: %w", err)
	}
	return counts, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func (r *TransactionRepo) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.CheckoutID, &t.Email, &t.Amount, &t.Currency, &t.Status,
		&t.ProviderChargeID, &t.ProviderChargeCode, &t.PaymentURL,
		&t.ExpiresAt, &t.ConfirmedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
