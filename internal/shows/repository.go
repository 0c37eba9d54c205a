package shows

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrShowNotFound = errors.New("show not found")

type Repository interface {
	CreateBatch(ctx context.Context, shows []*Show) error
	GetByID(ctx context.Context, id uuid.UUID) (*Show, error)
	ListUpcoming(ctx context.Context, after time.Time) ([]Show, error)
	ListByMovie(ctx context.Context, movieID string, after time.Time) ([]Show, error)
	ListMovieIDsWithUpcoming(ctx context.Context, after time.Time) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(ctx context.Context, shows []*Show) error {
	if len(shows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&shows).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Show, error) {
	var show Show
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&show).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &show, nil
}

func (r *repository) ListUpcoming(ctx context.Context, after time.Time) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Where("start_time > ?", after).
		Order("start_time ASC").
		Find(&shows).Error
	if err != nil {
		return nil, err
	}
	return shows, nil
}

func (r *repository) ListByMovie(ctx context.Context, movieID string, after time.Time) ([]Show, error) {
	var shows []Show
	err := r.db.WithContext(ctx).
		Where("movie_id = ? AND start_time > ?", movieID, after).
		Order("start_time ASC").
		Find(&shows).Error
	if err != nil {
		return nil, err
	}
	return shows, nil
}

func (r *repository) ListMovieIDsWithUpcoming(ctx context.Context, after time.Time) ([]string, error) {
	var movieIDs []string
	err := r.db.WithContext(ctx).
		Model(&Show{}).
		Where("start_time > ?", after).
		Distinct().
		Pluck("movie_id", &movieIDs).Error
	if err != nil {
		return nil, err
	}
	return movieIDs, nil
}
