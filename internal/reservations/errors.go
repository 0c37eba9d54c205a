package reservations

import (
	"errors"
	"fmt"
)

var (
	ErrShowNotFound    = errors.New("show not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNoSeats means the hold request named no seats.
	ErrNoSeats = errors.New("no seats requested")

	// ErrInvalidSeat means a requested seat label does not exist in the
	// show's seat map.
	ErrInvalidSeat = errors.New("invalid seat")

	// ErrSeatUnavailable means at least one requested seat is held or sold.
	// The whole hold fails; no seats are taken.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrHoldExpired means the booking's seats were released before the
	// operation could complete.
	ErrHoldExpired = errors.New("hold expired")

	// ErrAlreadyFinalized means the booking already reached a terminal
	// state and cannot transition again.
	ErrAlreadyFinalized = errors.New("booking already finalized")

	// ErrAmountMismatch means the payment amount does not match the
	// booking amount. The confirmation is rejected, never partially applied.
	ErrAmountMismatch = errors.New("payment amount mismatch")

	// ErrNotOwner means the caller does not own the booking.
	ErrNotOwner = errors.New("booking belongs to another user")

	// ErrVersionConflict means a concurrent writer updated the show's seat
	// map between read and write. Callers retry with fresh state.
	ErrVersionConflict = errors.New("seat map version conflict")

	// ErrSeatStateCorrupt means the seat map and the bookings table
	// disagree in a way no normal interleaving can produce.
	ErrSeatStateCorrupt = errors.New("seat state corrupt")
)

// SeatConflictError reports the first seat that blocked a hold.
type SeatConflictError struct {
	Seat string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s is unavailable", e.Seat)
}

func (e *SeatConflictError) Unwrap() error {
	return ErrSeatUnavailable
}
