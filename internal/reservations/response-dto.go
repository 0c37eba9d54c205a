package reservations

import (
	"time"

	"github.com/google/uuid"
)

// BookingResponse is the client view of a booking.
type BookingResponse struct {
	ID          uuid.UUID     `json:"id"`
	BookingRef  string        `json:"booking_ref"`
	ShowID      uuid.UUID     `json:"show_id"`
	Seats       []string      `json:"seats"`
	Amount      float64       `json:"amount"`
	Status      BookingStatus `json:"status"`
	ConfirmedAt *time.Time    `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func toBookingResponse(booking *Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID,
		BookingRef:  booking.BookingRef,
		ShowID:      booking.ShowID,
		Seats:       booking.Seats,
		Amount:      booking.Amount,
		Status:      booking.Status,
		ConfirmedAt: booking.ConfirmedAt,
		CreatedAt:   booking.CreatedAt,
	}
}
