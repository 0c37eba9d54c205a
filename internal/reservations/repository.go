package reservations

import (
	"context"
	"errors"
	"time"

	"cinebook/internal/shows"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// WithTx runs fn against a transactional copy of the repository. All
	// writes inside fn commit or roll back together.
	WithTx(ctx context.Context, fn func(Repository) error) error

	GetShow(ctx context.Context, showID uuid.UUID) (*shows.Show, error)

	// UpdateSeatMap writes the seat map with a compare-and-swap on the
	// show's version column. ErrVersionConflict means a concurrent writer
	// got there first.
	UpdateSeatMap(ctx context.Context, showID uuid.UUID, seatMap shows.SeatMap, expectedVersion int64) error

	CreateBooking(ctx context.Context, booking *Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingByRef(ctx context.Context, ref string) (*Booking, error)

	// TransitionBooking moves a booking from one status to another. The
	// update is conditional on the current status; zero rows affected
	// means a concurrent transition won and the caller must re-read.
	TransitionBooking(ctx context.Context, id uuid.UUID, from, to BookingStatus, updates map[string]interface{}) (bool, error)

	// ListStaleHolds returns pending bookings created before the cutoff.
	ListStaleHolds(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)

	// ListAll returns every booking, newest first. Admin reporting only.
	ListAll(ctx context.Context) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) GetShow(ctx context.Context, showID uuid.UUID) (*shows.Show, error) {
	var show shows.Show
	err := r.db.WithContext(ctx).Where("id = ?", showID).First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &show, nil
}

func (r *repository) UpdateSeatMap(ctx context.Context, showID uuid.UUID, seatMap shows.SeatMap, expectedVersion int64) error {
	result := r.db.WithContext(ctx).Model(&shows.Show{}).
		Where("id = ? AND version = ?", showID, expectedVersion).
		Updates(map[string]interface{}{
			"seat_map": seatMap,
			"version":  expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByRef(ctx context.Context, ref string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("booking_ref = ?", ref).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) TransitionBooking(ctx context.Context, id uuid.UUID, from, to BookingStatus, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": to}
	for k, v := range updates {
		values[k] = v
	}

	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListStaleHolds(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
