package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"checkout-gateway/internal/core/ports"
	"checkout-gateway/pkg/apperror"

	"github.com/google/uuid"
)

// chargeTTL is how long a hosted checkout session stays payable.
const chargeTTL = 15 * time.Minute

// SimulatedGateway is a stand-in charge gateway that never performs real
// settlement. Every call succeeds after a fixed artificial delay and yields a
// fresh charge identifier, code and hosted URL.
type SimulatedGateway struct {
	baseURL string
	delay   time.Duration
}

// NewSimulatedGateway creates a simulated gateway hosting payment pages under
// baseURL.
func NewSimulatedGateway(baseURL string, delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{baseURL: strings.TrimRight(baseURL, "/"), delay: delay}
}

// CreateCharge simulates the provider call. The artificial delay respects
// context cancellation so the checkout request timeout still binds.
func (g *SimulatedGateway) CreateCharge(ctx context.Context, input ports.CreateChargeInput) (*ports.Charge, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, apperror.ErrGatewayUnavailable(ctx.Err())
		}
	}

	id := uuid.New()
	code := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])

	return &ports.Charge{
		ID:        id.String(),
		Code:      code,
		HostedURL: fmt.Sprintf("%s/pay/%s", g.baseURL, code),
		ExpiresAt: time.Now().UTC().Add(chargeTTL),
	}, nil
}
