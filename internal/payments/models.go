package payments

import "time"

// Provider event statuses we act on. Anything else is acknowledged and
// ignored.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
	StatusExpired   = "expired"
)

// WebhookEvent is the provider's payment notification. Delivery is
// at-least-once; ProviderEventID makes replays detectable.
type WebhookEvent struct {
	ProviderEventID string    `json:"event_id" validate:"required"`
	BookingRef      string    `json:"booking_ref" validate:"required"`
	Status          string    `json:"status" validate:"required"`
	Amount          float64   `json:"amount"`
	Timestamp       time.Time `json:"timestamp"`
}
