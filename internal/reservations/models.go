package reservations

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	// StatusPending marks an active hold awaiting payment.
	StatusPending BookingStatus = "PENDING"
	// StatusPaid marks a confirmed, sold booking. Terminal.
	StatusPaid BookingStatus = "PAID"
	// StatusExpired marks a hold released by the expiry sweep or by a
	// competing hold claiming its lapsed seats. Terminal.
	StatusExpired BookingStatus = "EXPIRED"
	// StatusCancelled marks a hold released by its owner or by a failed
	// payment. Terminal.
	StatusCancelled BookingStatus = "CANCELLED"
)

// Booking records a seat reservation for a show. Status transitions:
// PENDING -> PAID | EXPIRED | CANCELLED, nothing else.
type Booking struct {
	ID              uuid.UUID     `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	BookingRef      string        `json:"booking_ref" gorm:"not null"`
	UserID          uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	ShowID          uuid.UUID     `json:"show_id" gorm:"type:uuid;not null"`
	Seats           []string      `json:"seats" gorm:"serializer:json;not null"`
	Amount          float64       `json:"amount" gorm:"not null"`
	Status          BookingStatus `json:"status" gorm:"not null;default:'PENDING'"`
	ProviderEventID *string       `json:"provider_event_id,omitempty"`
	ConfirmedAt     *time.Time    `json:"confirmed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsTerminal reports whether the status admits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusExpired || s == StatusCancelled
}

const refAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewBookingRef generates a human-readable booking reference like
// CNB-20260830-X7K2P9. The alphabet skips lookalike characters.
func NewBookingRef(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// the uuid source rather than panic.
		u := uuid.New()
		copy(buf, u[:])
	}
	for i := range buf {
		buf[i] = refAlphabet[int(buf[i])%len(refAlphabet)]
	}
	return fmt.Sprintf("CNB-%s-%s", now.Format("20060102"), string(buf))
}
