package notifications

import "time"

// Event types carried on the notification topic.
const (
	EventShowAdded        = "SHOW_ADDED"
	EventBookingConfirmed = "BOOKING_CONFIRMED"
	EventBookingExpired   = "BOOKING_EXPIRED"
	EventBookingCancelled = "BOOKING_CANCELLED"
)

// Event is the wire envelope published to Kafka. Key selects the partition
// so events for the same aggregate stay ordered.
type Event struct {
	Type      string      `json:"type"`
	Key       string      `json:"key"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ShowAddedPayload announces a newly scheduled show.
type ShowAddedPayload struct {
	ShowID    string    `json:"show_id"`
	MovieID   string    `json:"movie_id"`
	Screen    string    `json:"screen"`
	StartTime time.Time `json:"start_time"`
}

// BookingPayload carries booking lifecycle transitions.
type BookingPayload struct {
	BookingID  string   `json:"booking_id"`
	BookingRef string   `json:"booking_ref"`
	ShowID     string   `json:"show_id"`
	UserID     string   `json:"user_id"`
	Seats      []string `json:"seats"`
	Amount     float64  `json:"amount"`
}
