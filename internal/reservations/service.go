package reservations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cinebook/internal/notifications"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/constants"
	"cinebook/internal/shows"
	"cinebook/pkg/cache"
	"cinebook/pkg/clock"
	"cinebook/pkg/keylock"
	"cinebook/pkg/logger"

	"github.com/google/uuid"
)

// casRetries bounds retries on seat map version conflicts. Conflicts only
// come from writers outside this process; the per-show lock serializes
// everything local.
const casRetries = 3

// sweepBatchSize caps how many stale holds one sweep pass releases.
const sweepBatchSize = 100

type Service interface {
	// CreateHold places an atomic hold on the requested seats. Either
	// every seat is taken for the new booking or none are.
	CreateHold(ctx context.Context, userID uuid.UUID, req *CreateHoldRequest) (*Booking, error)

	// ConfirmPayment finalizes a pending booking. Replays of the same
	// provider event return the already confirmed booking unchanged.
	ConfirmPayment(ctx context.Context, bookingRef, providerEventID string, amount float64) (*Booking, error)

	// CancelHold releases a pending hold on behalf of its owner.
	CancelHold(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error)

	// ReleaseBooking releases a pending hold on behalf of a trusted
	// caller such as the payment webhook. Already-finalized bookings are
	// a no-op so delivery retries stay harmless.
	ReleaseBooking(ctx context.Context, bookingRef string, to BookingStatus, reason string) error

	// ExpireStaleHolds releases every pending hold older than the TTL and
	// returns how many it released.
	ExpireStaleHolds(ctx context.Context) (int, error)

	GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error)

	// ListAllBookings returns every booking for admin reporting.
	ListAllBookings(ctx context.Context) ([]Booking, error)
}

type service struct {
	repo      Repository
	cache     cache.Service
	publisher notifications.Publisher
	locks     *keylock.KeyLock
	clock     clock.Clock
	holdTTL   time.Duration
	logger    *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service, publisher notifications.Publisher, clk clock.Clock, cfg *config.Config, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		locks:     keylock.New(),
		clock:     clk,
		holdTTL:   cfg.Reservation.HoldTTL,
		logger:    log,
	}
}

func (s *service) CreateHold(ctx context.Context, userID uuid.UUID, req *CreateHoldRequest) (*Booking, error) {
	seats := dedupeSeats(req.Seats)
	if len(seats) == 0 {
		return nil, ErrNoSeats
	}

	lockKey := req.ShowID.String()
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	var booking *Booking
	var expired []*Booking
	err := s.withCASRetry(func() error {
		expired = nil
		show, err := s.repo.GetShow(ctx, req.ShowID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		lapsedOwners := make(map[uuid.UUID]struct{})
		for _, seat := range seats {
			state, ok := show.SeatMap[seat]
			if !ok {
				return fmt.Errorf("%w: %s", ErrInvalidSeat, seat)
			}
			switch state.Status {
			case shows.SeatFree:
				// claimable
			case shows.SeatHeld:
				if state.HeldAt == nil || now.Sub(*state.HeldAt) < s.holdTTL {
					return &SeatConflictError{Seat: seat}
				}
				// The previous hold lapsed; claiming any of its seats
				// expires the whole owning booking.
				if state.BookingID != nil {
					lapsedOwners[*state.BookingID] = struct{}{}
				}
			default:
				return &SeatConflictError{Seat: seat}
			}
		}

		booking = &Booking{
			ID:         uuid.New(),
			BookingRef: NewBookingRef(now),
			UserID:     userID,
			ShowID:     req.ShowID,
			Seats:      seats,
			Amount:     show.PricePerSeat * float64(len(seats)),
			Status:     StatusPending,
		}

		newMap := show.SeatMap.Clone()
		for label, state := range newMap {
			if state.Status == shows.SeatHeld && state.BookingID != nil {
				if _, lapsed := lapsedOwners[*state.BookingID]; lapsed {
					newMap[label] = shows.SeatState{Status: shows.SeatFree}
				}
			}
		}
		heldAt := now
		for _, seat := range seats {
			bookingID := booking.ID
			newMap[seat] = shows.SeatState{
				Status:    shows.SeatHeld,
				BookingID: &bookingID,
				HeldAt:    &heldAt,
			}
		}

		return s.repo.WithTx(ctx, func(tx Repository) error {
			if err := tx.UpdateSeatMap(ctx, req.ShowID, newMap, show.Version); err != nil {
				return err
			}
			for owner := range lapsedOwners {
				lapsed, err := tx.GetBooking(ctx, owner)
				if err != nil {
					return err
				}
				moved, err := tx.TransitionBooking(ctx, owner, StatusPending, StatusExpired, nil)
				if err != nil {
					return err
				}
				if moved {
					lapsed.Status = StatusExpired
					expired = append(expired, lapsed)
				}
			}
			return tx.CreateBooking(ctx, booking)
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSeatCache(ctx, req.ShowID)
	// Bookings expired by this claim never reach the sweeper; announce them
	// here or downstream never hears about them.
	for _, lapsed := range expired {
		s.logger.LogBookingReleased(ctx, lapsed.ID.String(), lapsed.ShowID.String(), "lapsed hold claimed by new booking")
		s.publishBookingEvent(ctx, notifications.EventBookingExpired, lapsed)
	}
	s.logger.LogHoldCreated(ctx, booking.ID.String(), req.ShowID.String(), userID.String(), len(seats))
	return booking, nil
}

func (s *service) ConfirmPayment(ctx context.Context, bookingRef, providerEventID string, amount float64) (*Booking, error) {
	booking, err := s.repo.GetBookingByRef(ctx, bookingRef)
	if err != nil {
		return nil, err
	}

	lockKey := booking.ShowID.String()
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	var confirmed *Booking
	var replayed bool
	err = s.withCASRetry(func() error {
		// Re-read under the lock; another confirmation or the sweeper may
		// have finalized the booking since the first read.
		current, err := s.repo.GetBooking(ctx, booking.ID)
		if err != nil {
			return err
		}

		if done, err := replayOrReject(current, providerEventID); done != nil || err != nil {
			confirmed = done
			replayed = done != nil
			return err
		}

		if !amountMatches(current.Amount, amount) {
			s.logger.LogBillingAlert(ctx, current.ID.String(), providerEventID, current.Amount, amount)
			return ErrAmountMismatch
		}

		show, err := s.repo.GetShow(ctx, current.ShowID)
		if err != nil {
			return err
		}

		newMap := show.SeatMap.Clone()
		for _, seat := range current.Seats {
			state, ok := newMap[seat]
			if !ok {
				s.logger.Error("booking references seat missing from seat map",
					"booking_id", current.ID.String(), "seat", seat)
				return ErrSeatStateCorrupt
			}
			switch {
			case state.Status == shows.SeatHeld && state.BookingID != nil && *state.BookingID == current.ID:
				bookingID := current.ID
				newMap[seat] = shows.SeatState{Status: shows.SeatSold, BookingID: &bookingID}
			case state.Status == shows.SeatSold && state.BookingID != nil && *state.BookingID == current.ID:
				// Sold to a pending booking is impossible through any
				// normal interleaving.
				s.logger.Error("seat sold while booking still pending",
					"booking_id", current.ID.String(), "seat", seat)
				return ErrSeatStateCorrupt
			default:
				// The hold lapsed and someone else took the seat. Release
				// whatever this booking still holds and fail the payment.
				return s.expireLostBooking(ctx, current, show)
			}
		}

		now := s.clock.Now()
		err = s.repo.WithTx(ctx, func(tx Repository) error {
			if err := tx.UpdateSeatMap(ctx, current.ShowID, newMap, show.Version); err != nil {
				return err
			}
			moved, err := tx.TransitionBooking(ctx, current.ID, StatusPending, StatusPaid, map[string]interface{}{
				"provider_event_id": providerEventID,
				"confirmed_at":      now,
			})
			if err != nil {
				return err
			}
			if !moved {
				return ErrAlreadyFinalized
			}
			return nil
		})
		if err != nil {
			return err
		}

		current.Status = StatusPaid
		current.ProviderEventID = &providerEventID
		current.ConfirmedAt = &now
		confirmed = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Replay of an already-applied event: nothing changed, skip the side
	// effects.
	if replayed {
		return confirmed, nil
	}

	s.invalidateSeatCache(ctx, confirmed.ShowID)
	s.logger.LogBookingConfirmed(ctx, confirmed.ID.String(), confirmed.ShowID.String(), providerEventID)
	s.publishBookingEvent(ctx, notifications.EventBookingConfirmed, confirmed)
	return confirmed, nil
}

// amountMatches compares amounts at cent precision. Per-seat prices are
// floats, so a raw equality check would flag sums like 10.10 * 3 as
// mismatches.
func amountMatches(expected, got float64) bool {
	return math.Round(expected*100) == math.Round(got*100)
}

// replayOrReject resolves confirmations against bookings that already left
// PENDING. A replay of the confirming event succeeds with the stored
// booking; anything else is rejected.
func replayOrReject(booking *Booking, providerEventID string) (*Booking, error) {
	switch booking.Status {
	case StatusPending:
		return nil, nil
	case StatusPaid:
		if booking.ProviderEventID != nil && *booking.ProviderEventID == providerEventID {
			return booking, nil
		}
		return nil, ErrAlreadyFinalized
	case StatusExpired:
		return nil, ErrHoldExpired
	default:
		return nil, ErrAlreadyFinalized
	}
}

// expireLostBooking frees the seats a lost booking still holds and marks it
// expired. Always returns ErrHoldExpired on success so the caller fails the
// confirmation.
func (s *service) expireLostBooking(ctx context.Context, booking *Booking, show *shows.Show) error {
	newMap := show.SeatMap.Clone()
	changed := false
	for label, state := range newMap {
		if state.Status == shows.SeatHeld && state.BookingID != nil && *state.BookingID == booking.ID {
			newMap[label] = shows.SeatState{Status: shows.SeatFree}
			changed = true
		}
	}

	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if changed {
			if err := tx.UpdateSeatMap(ctx, booking.ShowID, newMap, show.Version); err != nil {
				return err
			}
		}
		_, err := tx.TransitionBooking(ctx, booking.ID, StatusPending, StatusExpired, nil)
		return err
	})
	if err != nil {
		return err
	}

	s.invalidateSeatCache(ctx, booking.ShowID)
	s.logger.LogBookingReleased(ctx, booking.ID.String(), booking.ShowID.String(), "seats lost before confirmation")
	s.publishBookingEvent(ctx, notifications.EventBookingExpired, booking)
	return ErrHoldExpired
}

func (s *service) CancelHold(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	if booking.Status.IsTerminal() {
		return nil, ErrAlreadyFinalized
	}

	lockKey := booking.ShowID.String()
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	released, err := s.releaseLocked(ctx, booking.ID, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !released {
		return nil, ErrAlreadyFinalized
	}

	booking.Status = StatusCancelled
	s.logger.LogBookingReleased(ctx, booking.ID.String(), booking.ShowID.String(), "cancelled by owner")
	s.publishBookingEvent(ctx, notifications.EventBookingCancelled, booking)
	return booking, nil
}

func (s *service) ReleaseBooking(ctx context.Context, bookingRef string, to BookingStatus, reason string) error {
	if to != StatusExpired && to != StatusCancelled {
		return fmt.Errorf("invalid release status %q", to)
	}

	booking, err := s.repo.GetBookingByRef(ctx, bookingRef)
	if err != nil {
		return err
	}
	if booking.Status.IsTerminal() {
		return nil
	}

	lockKey := booking.ShowID.String()
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	released, err := s.releaseLocked(ctx, booking.ID, to)
	if err != nil {
		return err
	}
	if !released {
		// Finalized between the read and the lock. Retries of the same
		// provider event land here.
		return nil
	}

	booking.Status = to
	eventType := notifications.EventBookingCancelled
	if to == StatusExpired {
		eventType = notifications.EventBookingExpired
	}
	s.logger.LogBookingReleased(ctx, booking.ID.String(), booking.ShowID.String(), reason)
	s.publishBookingEvent(ctx, eventType, booking)
	return nil
}

func (s *service) ExpireStaleHolds(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.holdTTL)
	stale, err := s.repo.ListStaleHolds(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range stale {
		booking := &stale[i]
		lockKey := booking.ShowID.String()

		var releaseErr error
		var didRelease bool
		s.locks.WithLock(lockKey, func() {
			didRelease, releaseErr = s.releaseLocked(ctx, booking.ID, StatusExpired)
		})
		if releaseErr != nil {
			s.logger.Error("failed to expire stale hold",
				"booking_id", booking.ID.String(), "error", releaseErr)
			continue
		}
		if !didRelease {
			continue
		}

		released++
		s.logger.LogBookingReleased(ctx, booking.ID.String(), booking.ShowID.String(), "hold ttl elapsed")
		s.publishBookingEvent(ctx, notifications.EventBookingExpired, booking)
	}
	return released, nil
}

// releaseLocked frees a pending booking's held seats and moves it to the
// target status. Caller must hold the show lock. Returns false when the
// booking was no longer pending.
func (s *service) releaseLocked(ctx context.Context, bookingID uuid.UUID, to BookingStatus) (bool, error) {
	var released bool
	err := s.withCASRetry(func() error {
		booking, err := s.repo.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != StatusPending {
			released = false
			return nil
		}

		show, err := s.repo.GetShow(ctx, booking.ShowID)
		if err != nil {
			return err
		}

		newMap := show.SeatMap.Clone()
		changed := false
		for label, state := range newMap {
			if state.Status == shows.SeatHeld && state.BookingID != nil && *state.BookingID == booking.ID {
				newMap[label] = shows.SeatState{Status: shows.SeatFree}
				changed = true
			}
		}

		err = s.repo.WithTx(ctx, func(tx Repository) error {
			if changed {
				if err := tx.UpdateSeatMap(ctx, booking.ShowID, newMap, show.Version); err != nil {
					return err
				}
			}
			moved, err := tx.TransitionBooking(ctx, booking.ID, StatusPending, to, nil)
			if err != nil {
				return err
			}
			released = moved
			return nil
		})
		if err != nil {
			return err
		}

		if released {
			s.invalidateSeatCache(ctx, booking.ShowID)
		}
		return nil
	})
	return released, err
}

func (s *service) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	return booking, nil
}

func (s *service) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListAllBookings(ctx context.Context) ([]Booking, error) {
	return s.repo.ListAll(ctx)
}

// withCASRetry reruns fn while it fails with a seat map version conflict.
func (s *service) withCASRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < casRetries; attempt++ {
		err = fn()
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return err
}

func (s *service) invalidateSeatCache(ctx context.Context, showID uuid.UUID) {
	if err := s.cache.Delete(ctx, constants.BuildShowSeatsKey(showID.String())); err != nil {
		s.logger.Warn("failed to invalidate seat cache", "show_id", showID.String(), "error", err)
	}
}

func (s *service) publishBookingEvent(ctx context.Context, eventType string, booking *Booking) {
	payload := notifications.BookingPayload{
		BookingID:  booking.ID.String(),
		BookingRef: booking.BookingRef,
		ShowID:     booking.ShowID.String(),
		UserID:     booking.UserID.String(),
		Seats:      booking.Seats,
		Amount:     booking.Amount,
	}
	if err := s.publisher.Publish(ctx, eventType, booking.ID.String(), payload); err != nil {
		s.logger.Error("failed to publish booking event",
			"type", eventType, "booking_id", booking.ID.String(), "error", err)
	}
}

func dedupeSeats(seats []string) []string {
	seen := make(map[string]struct{}, len(seats))
	result := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat == "" {
			continue
		}
		if _, ok := seen[seat]; ok {
			continue
		}
		seen[seat] = struct{}{}
		result = append(result, seat)
	}
	return result
}
