package analytics

import (
	"context"
	"time"

	"cinebook/internal/reservations"
	"cinebook/internal/shows"
	"cinebook/internal/users"

	"gorm.io/gorm"
)

type Repository interface {
	RevenueTotals(ctx context.Context) (revenue float64, paid int64, err error)
	PendingHoldCount(ctx context.Context) (int64, error)
	ActiveShowCount(ctx context.Context, after time.Time) (int64, error)
	UserCount(ctx context.Context) (int64, error)
	TopShowsByRevenue(ctx context.Context, limit int) ([]ShowRevenue, error)
	DailyRevenue(ctx context.Context, since time.Time) ([]DailyRevenue, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RevenueTotals(ctx context.Context) (float64, int64, error) {
	var result struct {
		Revenue  float64
		Bookings int64
	}
	err := r.db.WithContext(ctx).Model(&reservations.Booking{}).
		Select("COALESCE(SUM(amount), 0) AS revenue, COUNT(*) AS bookings").
		Where("status = ?", reservations.StatusPaid).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Revenue, result.Bookings, nil
}

func (r *repository) PendingHoldCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&reservations.Booking{}).
		Where("status = ?", reservations.StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) ActiveShowCount(ctx context.Context, after time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&shows.Show{}).
		Where("start_time > ?", after).
		Count(&count).Error
	return count, err
}

func (r *repository) UserCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&users.User{}).Count(&count).Error
	return count, err
}

func (r *repository) TopShowsByRevenue(ctx context.Context, limit int) ([]ShowRevenue, error) {
	var results []ShowRevenue
	err := r.db.WithContext(ctx).Model(&reservations.Booking{}).
		Select("bookings.show_id::text AS show_id, shows.movie_id AS movie_id, SUM(bookings.amount) AS revenue, COUNT(*) AS bookings").
		Joins("JOIN shows ON shows.id = bookings.show_id").
		Where("bookings.status = ?", reservations.StatusPaid).
		Group("bookings.show_id, shows.movie_id").
		Order("revenue DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *repository) DailyRevenue(ctx context.Context, since time.Time) ([]DailyRevenue, error) {
	var results []DailyRevenue
	err := r.db.WithContext(ctx).Model(&reservations.Booking{}).
		Select("TO_CHAR(confirmed_at, 'YYYY-MM-DD') AS day, SUM(amount) AS revenue, COUNT(*) AS bookings").
		Where("status = ? AND confirmed_at >= ?", reservations.StatusPaid, since).
		Group("day").
		Order("day ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
