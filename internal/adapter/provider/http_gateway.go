package provider

import (
	"context"
	"fmt"
	"time"

	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// HTTPGateway creates charges against a real provider API. Calls run under an
// explicit timeout and a circuit breaker, and any transport or 5xx failure
// surfaces as a gateway error so the orchestrator fails the checkout without
// persisting anything.
type HTTPGateway struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

type createChargeRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	PricingType string            `json:"pricing_type"`
	LocalPrice  localPrice        `json:"local_price"`
	Metadata    map[string]string `json:"metadata"`
}

type localPrice struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type createChargeResponse struct {
	Data struct {
		ID        string    `json:"id"`
		Code      string    `json:"code"`
		HostedURL string    `json:"hosted_url"`
		ExpiresAt time.Time `json:"expires_at"`
	} `json:"data"`
}

// NewHTTPGateway creates a resty-backed gateway client for the provider at
// baseURL, authenticating with apiKey.
func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *HTTPGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-CC-Api-Key", apiKey)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "charge-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &HTTPGateway{client: client, breaker: breaker, log: log}
}

// CreateCharge posts a charge to the provider and maps its response.
func (g *HTTPGateway) CreateCharge(ctx context.Context, input ports.CreateChargeInput) (*ports.Charge, error) {
	body := createChargeRequest{
		Name:        "Checkout session",
		Description: "Hosted checkout for " + input.Email,
		PricingType: "fixed_price",
		LocalPrice: localPrice{
			Amount:   input.Amount.StringFixed(2),
			Currency: input.Currency,
		},
		Metadata: map[string]string{"email": input.Email},
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		var out createChargeResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&out).
			Post("/charges")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("provider returned %s", resp.Status())
		}
		return &out, nil
	})
	if err != nil {
		return nil, apperror.ErrGatewayUnavailable(err)
	}

	out := result.(*createChargeResponse)
	return &ports.Charge{
		ID:        out.Data.ID,
		Code:      out.Data.Code,
		HostedURL: out.Data.HostedURL,
		ExpiresAt: out.Data.ExpiresAt,
	}, nil
}
