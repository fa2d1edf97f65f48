package domain

import (
	"time"

	"github.com/google/uuid"
)

// Charge event types delivered by the payment provider. Unknown types are
// accepted and ignored so new provider event kinds never fail a delivery.
const (
	EventChargeCreated   = "charge:created"
	EventChargeConfirmed = "charge:confirmed"
	EventChargeFailed    = "charge:failed"
)

// WebhookEvent is the audit/idempotency ledger entry for an inbound
// notification. WebhookID is the provider-issued id and the dedup key;
// Payload retains the raw body verbatim. Insert-only.
type WebhookEvent struct {
	ID               uuid.UUID `json:"id"`
	WebhookID        string    `json:"webhook_id"`
	WebhookType      string    `json:"webhook_type"`
	ProviderChargeID string    `json:"provider_charge_id"`
	Payload          []byte    `json:"payload"`
	ProcessedAt      time.Time `json:"processed_at"`
}

// ChargeEvent is the wire shape of a provider webhook delivery.
type ChargeEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt string          `json:"created_at"`
	Data      ChargeEventData `json:"data"`
}

// ChargeEventData carries the charge the event refers to.
type ChargeEventData struct {
	ID       string            `json:"id"`
	Code     string            `json:"code"`
	Metadata map[string]string `json:"metadata"`
}

// Validate performs the structural check applied before any persistence.
// Required fields: id, type, created_at and nested charge data with
// id/code/metadata.
func (e *ChargeEvent) Validate() (field string, ok bool) {
	switch {
	case e.ID == "":
		return "id", false
	case e.Type == "":
		return "type", false
	case e.CreatedAt == "":
		return "created_at", false
	case e.Data.ID == "":
		return "data.id", false
	case e.Data.Code == "":
		return "data.code", false
	case e.Data.Metadata == nil:
		return "data.metadata", false
	}
	return "", true
}

// OccurredAt parses the event timestamp, falling back to processing time when
// the provider sends none or an unparsable value.
func (e *ChargeEvent) OccurredAt(now time.Time) time.Time {
	if ts, err := time.Parse(time.RFC3339, e.CreatedAt); err == nil {
		return ts.UTC()
	}
	return now.UTC()
}
