package dto

import (
	"time"

	"checkout-gateway/internal/core/domain"

	"github.com/shopspring/decimal"
)

// CheckoutRequest is the request body for starting a checkout.
type CheckoutRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Email  string          `json:"email" binding:"required"`
}

// CheckoutResponse is the response body for a successful checkout.
type CheckoutResponse struct {
	PaymentURL string    `json:"payment_url"`
	CheckoutID string    `json:"checkout_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// TransactionResponse is the wire shape of one transaction.
type TransactionResponse struct {
	ID                 string  `json:"id"`
	CheckoutID         string  `json:"checkout_id"`
	Email              string  `json:"email"`
	Amount             string  `json:"amount"`
	Currency           string  `json:"currency"`
	Status             string  `json:"status"`
	ProviderChargeID   *string `json:"provider_charge_id,omitempty"`
	ProviderChargeCode string  `json:"provider_charge_code,omitempty"`
	PaymentURL         string  `json:"payment_url"`
	ExpiresAt          string  `json:"expires_at"`
	ConfirmedAt        *string `json:"confirmed_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}

// HealthCounts mirrors the aggregate per-status transaction counts.
type HealthCounts struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Expired   int64 `json:"expired"`
}

// HealthResponse is the body of the health endpoint. It always rides a 200;
// Store reports "disconnected" instead of failing the request.
type HealthResponse struct {
	Status       string        `json:"status"`
	Uptime       string        `json:"uptime"`
	Store        string        `json:"store"`
	Dependencies []DepStatus   `json:"dependencies,omitempty"`
	Transactions *HealthCounts `json:"transactions,omitempty"`
}

// DepStatus reports one dependency's reachability.
type DepStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ToTransactionResponse converts a domain transaction to its wire shape.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                 t.ID.String(),
		CheckoutID:         t.CheckoutID.String(),
		Email:              t.Email,
		Amount:             t.Amount.StringFixed(2),
		Currency:           t.Currency,
		Status:             string(t.Status),
		ProviderChargeID:   t.ProviderChargeID,
		ProviderChargeCode: t.ProviderChargeCode,
		PaymentURL:         t.PaymentURL,
		ExpiresAt:          t.ExpiresAt.Format(time.RFC3339),
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          t.UpdatedAt.Format(time.RFC3339),
	}
	if t.ConfirmedAt != nil {
		s := t.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &s
	}
	return resp
}
