package payments

import (
	"context"
	"errors"

	"cinebook/internal/reservations"
	"cinebook/pkg/logger"
)

type Service interface {
	// HandleEvent applies a provider payment event to the booking it
	// references. Replays and events for unknown bookings return nil so
	// the provider stops redelivering.
	HandleEvent(ctx context.Context, event *WebhookEvent) error
}

type service struct {
	reservations reservations.Service
	logger       *logger.Logger
}

func NewService(reservationService reservations.Service, log *logger.Logger) Service {
	return &service{
		reservations: reservationService,
		logger:       log,
	}
}

func (s *service) HandleEvent(ctx context.Context, event *WebhookEvent) error {
	switch event.Status {
	case StatusSucceeded:
		return s.handleSucceeded(ctx, event)
	case StatusFailed, StatusCanceled:
		return s.handleReleased(ctx, event, reservations.StatusCancelled, "payment "+event.Status)
	case StatusExpired:
		return s.handleReleased(ctx, event, reservations.StatusExpired, "payment session expired")
	default:
		s.logger.InfoContext(ctx, "ignoring payment event with unhandled status",
			"provider_event_id", event.ProviderEventID,
			"status", event.Status,
		)
		return nil
	}
}

func (s *service) handleSucceeded(ctx context.Context, event *WebhookEvent) error {
	_, err := s.reservations.ConfirmPayment(ctx, event.BookingRef, event.ProviderEventID, event.Amount)
	if err == nil {
		return nil
	}

	if errors.Is(err, reservations.ErrBookingNotFound) {
		// Nothing to apply the payment to. Log and acknowledge so the
		// provider does not retry forever.
		s.logger.Warn("payment event references unknown booking, discarding",
			"provider_event_id", event.ProviderEventID,
			"booking_ref", event.BookingRef,
		)
		return nil
	}
	return err
}

func (s *service) handleReleased(ctx context.Context, event *WebhookEvent, to reservations.BookingStatus, reason string) error {
	err := s.reservations.ReleaseBooking(ctx, event.BookingRef, to, reason)
	if err == nil {
		return nil
	}

	if errors.Is(err, reservations.ErrBookingNotFound) {
		s.logger.Warn("payment event references unknown booking, discarding",
			"provider_event_id", event.ProviderEventID,
			"booking_ref", event.BookingRef,
		)
		return nil
	}
	return err
}
