package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"checkout-gateway/internal/core/domain"
	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService orchestrates the synchronous purchase flow: validate input,
// create a provider charge, persist the pending transaction. The provider call
// happens before the insert so a gateway failure leaves no database row.
type checkoutService struct {
	repo    ports.TransactionRepository
	gateway ports.ChargeGateway
	timeout time.Duration
	log     zerolog.Logger
}

// NewCheckoutService creates the checkout orchestrator. timeout bounds the
// whole flow including the provider call.
func NewCheckoutService(repo ports.TransactionRepository, gateway ports.ChargeGateway, timeout time.Duration, log zerolog.Logger) ports.CheckoutService {
	return &checkoutService{
		repo:    repo,
		gateway: gateway,
		timeout: timeout,
		log:     log,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, input ports.CheckoutInput) (*ports.CheckoutResult, error) {
	if err := validateCheckoutInput(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	charge, err := s.gateway.CreateCharge(ctx, ports.CreateChargeInput{
		Amount:   input.Amount,
		Currency: domain.DefaultCurrency,
		Email:    input.Email,
	})
	if err != nil {
		s.log.Error().Err(err).Str("email", input.Email).Msg("charge creation failed")
		return nil, fmt.Errorf("create charge: %w", err)
	}

	now := time.Now().UTC()
	chargeID := charge.ID
	txn := &domain.Transaction{
		ID:                 uuid.New(),
		CheckoutID:         uuid.New(),
		Email:              input.Email,
		Amount:             input.Amount,
		Currency:           domain.DefaultCurrency,
		Status:             domain.StatusPending,
		ProviderChargeID:   &chargeID,
		ProviderChargeCode: charge.Code,
		PaymentURL:         charge.HostedURL,
		ExpiresAt:          charge.ExpiresAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, txn); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	s.log.Info().
		Str("transaction_id", txn.ID.String()).
		Str("checkout_id", txn.CheckoutID.String()).
		Str("charge_id", charge.ID).
		Str("amount", input.Amount.StringFixed(2)).
		Msg("checkout created")

	return &ports.CheckoutResult{
		PaymentURL: charge.HostedURL,
		CheckoutID: txn.CheckoutID,
		ExpiresAt:  charge.ExpiresAt,
	}, nil
}

// validateCheckoutInput reports the first violated field.
func validateCheckoutInput(input ports.CheckoutInput) error {
	if !input.Amount.IsPositive() {
		return apperror.ValidationField("amount", "must be greater than zero")
	}
	if input.Amount.Exponent() < -2 {
		return apperror.ValidationField("amount", "must have at most two decimal places")
	}
	if input.Email == "" {
		return apperror.ValidationField("email", "is required")
	}
	if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		return apperror.ValidationField("email", "must be a valid email address")
	}
	return nil
}
