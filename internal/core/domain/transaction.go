package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied when a checkout carries no currency code.
const DefaultCurrency = "USD"

// TransactionStatus represents the lifecycle state of a checkout transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusExpired   TransactionStatus = "expired"
)

// IsTerminal returns true for states that admit no further transition.
// A failed event arriving after completion must not revert state.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

// CanTransitionTo reports whether the state machine allows moving to next.
// Only pending transactions move; everything else is a no-op.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusCompleted || next == StatusFailed || next == StatusExpired
}

// Transaction is the unit of payment state. Created pending by the checkout
// path, mutated only by the webhook reconciler, never deleted.
type Transaction struct {
	ID                 uuid.UUID         `json:"id"`
	CheckoutID         uuid.UUID         `json:"checkout_id"`
	Email              string            `json:"email"`
	Amount             decimal.Decimal   `json:"amount"`
	Currency           string            `json:"currency"`
	Status             TransactionStatus `json:"status"`
	ProviderChargeID   *string           `json:"provider_charge_id,omitempty"`
	ProviderChargeCode string            `json:"provider_charge_code,omitempty"`
	PaymentURL         string            `json:"payment_url"`
	ExpiresAt          time.Time         `json:"expires_at"`
	ConfirmedAt        *time.Time        `json:"confirmed_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}
