package ports

import (
	"context"
	"time"

	"checkout-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// CheckoutInput is the validated purchase request.
type CheckoutInput struct {
	Amount decimal.Decimal
	Email  string
}

// CheckoutResult is returned to the purchaser.
type CheckoutResult struct {
	PaymentURL string
	CheckoutID uuid.UUID
	ExpiresAt  time.Time
}

// CheckoutService runs the synchronous purchase flow: validate, create a
// provider charge, persist the pending transaction.
type CheckoutService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

// WebhookProcessor reconciles one inbound provider delivery against the
// transaction store.
type WebhookProcessor interface {
	Process(ctx context.Context, rawBody []byte, signature string) error
}

// ReportingService is the read layer behind the transaction endpoints and the
// health check's aggregate counts.
type ReportingService interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
	Counts(ctx context.Context) (*TransactionCounts, error)
}

// CreateChargeInput is the request to the payment provider.
type CreateChargeInput struct {
	Amount   decimal.Decimal
	Currency string
	Email    string
}

// Charge is the provider-side record of a payment attempt.
type Charge struct {
	ID        string
	Code      string
	HostedURL string
	ExpiresAt time.Time
}

// ChargeGateway creates charges against the external payment provider.
// Failures surface as gateway errors so the orchestrator can fail the checkout
// without persisting anything.
type ChargeGateway interface {
	CreateCharge(ctx context.Context, input CreateChargeInput) (*Charge, error)
}

// SignatureVerifier authenticates inbound webhook deliveries against the raw
// request body. Implementations must not leak timing information.
type SignatureVerifier interface {
	Verify(rawBody []byte, signature string) bool
}
