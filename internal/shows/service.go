package shows

import (
	"context"
	"errors"
	"time"

	"cinebook/internal/movies"
	"cinebook/internal/notifications"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/constants"
	"cinebook/pkg/cache"
	"cinebook/pkg/clock"
	"cinebook/pkg/logger"

	"github.com/google/uuid"
)

var ErrStartTimeInPast = errors.New("show start time is in the past")

// MovieResolver warms the metadata snapshot for a catalog id. Satisfied by
// the movies service.
type MovieResolver interface {
	GetOrRefresh(ctx context.Context, id string) (*movies.MovieDetail, error)
}

type Service interface {
	// CreateShows schedules one screening per requested start time, each
	// with a fresh free seat map.
	CreateShows(ctx context.Context, req *CreateShowsRequest) ([]ShowSummary, error)

	// GetShow returns a show with its seat availability view. Held seats
	// whose hold has aged past the TTL read as available.
	GetShow(ctx context.Context, id uuid.UUID) (*ShowDetail, error)

	ListUpcoming(ctx context.Context) ([]ShowSummary, error)

	// ListMoviesWithUpcomingShows returns the catalog ids that currently
	// have at least one future screening.
	ListMoviesWithUpcomingShows(ctx context.Context) ([]string, error)

	// GetShowtimes returns a movie's upcoming shows grouped by date.
	GetShowtimes(ctx context.Context, movieID string) (*MovieShowtimes, error)
}

type service struct {
	repo      Repository
	movies    MovieResolver
	cache     cache.Service
	publisher notifications.Publisher
	clock     clock.Clock
	holdTTL   time.Duration
	logger    *logger.Logger
}

func NewService(repo Repository, movieResolver MovieResolver, cacheService cache.Service, publisher notifications.Publisher, clk clock.Clock, cfg *config.Config, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		movies:    movieResolver,
		cache:     cacheService,
		publisher: publisher,
		clock:     clk,
		holdTTL:   cfg.Reservation.HoldTTL,
		logger:    log,
	}
}

func (s *service) CreateShows(ctx context.Context, req *CreateShowsRequest) ([]ShowSummary, error) {
	now := s.clock.Now()
	for _, startTime := range req.StartTimes {
		if !startTime.After(now) {
			return nil, ErrStartTimeInPast
		}
	}

	// Make sure the movie has a local snapshot before its shows go live.
	// Best effort: the catalog being down never blocks scheduling.
	if _, err := s.movies.GetOrRefresh(ctx, req.MovieID); err != nil {
		s.logger.Warn("could not resolve movie metadata for new show",
			"movie_id", req.MovieID, "error", err)
	}

	created := make([]*Show, 0, len(req.StartTimes))
	for _, startTime := range req.StartTimes {
		created = append(created, &Show{
			ID:           uuid.New(),
			MovieID:      req.MovieID,
			Screen:       req.Screen,
			StartTime:    startTime.UTC(),
			PricePerSeat: req.PricePerSeat,
			SeatMap:      NewSeatMap(req.Rows, req.SeatsPerRow),
		})
	}

	if err := s.repo.CreateBatch(ctx, created); err != nil {
		return nil, err
	}

	// Listings are stale now; drop them rather than waiting out the TTL.
	if err := s.cache.Delete(ctx, constants.CACHE_KEY_SHOWS_UPCOMING); err != nil {
		s.logger.Warn("failed to invalidate upcoming shows cache", "error", err)
	}
	if err := s.cache.Delete(ctx, constants.BuildShowsByMovieKey(req.MovieID)); err != nil {
		s.logger.Warn("failed to invalidate showtimes cache", "movie_id", req.MovieID, "error", err)
	}

	summaries := make([]ShowSummary, 0, len(created))
	for _, show := range created {
		summaries = append(summaries, toSummary(show))

		payload := notifications.ShowAddedPayload{
			ShowID:    show.ID.String(),
			MovieID:   show.MovieID,
			Screen:    show.Screen,
			StartTime: show.StartTime,
		}
		if err := s.publisher.Publish(ctx, notifications.EventShowAdded, show.ID.String(), payload); err != nil {
			s.logger.Error("failed to publish show added event", "show_id", show.ID.String(), "error", err)
		}
	}
	return summaries, nil
}

func (s *service) GetShow(ctx context.Context, id uuid.UUID) (*ShowDetail, error) {
	var detail ShowDetail
	cacheKey := constants.BuildShowSeatsKey(id.String())
	err := s.cache.GetOrSet(ctx, cacheKey, constants.TTL_SHOW_SEATS, func() (interface{}, error) {
		return s.buildShowDetail(ctx, id)
	}, &detail)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *service) buildShowDetail(ctx context.Context, id uuid.UUID) (*ShowDetail, error) {
	show, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	seats := make(map[string]string, len(show.SeatMap))
	counts := SeatCounts{Total: len(show.SeatMap)}
	for label, seat := range show.SeatMap {
		available := seat.Status == SeatFree
		// A hold past its TTL has lapsed even if the sweeper has not
		// released it yet.
		if seat.Status == SeatHeld && seat.HeldAt != nil && now.Sub(*seat.HeldAt) >= s.holdTTL {
			available = true
		}
		if available {
			seats[label] = "available"
			counts.Free++
		} else {
			seats[label] = "unavailable"
			if seat.Status == SeatSold {
				counts.Sold++
			} else {
				counts.Held++
			}
		}
	}

	return &ShowDetail{
		ID:           show.ID,
		MovieID:      show.MovieID,
		Screen:       show.Screen,
		StartTime:    show.StartTime,
		PricePerSeat: show.PricePerSeat,
		Seats:        seats,
		Counts:       counts,
	}, nil
}

func (s *service) ListUpcoming(ctx context.Context) ([]ShowSummary, error) {
	var summaries []ShowSummary
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_SHOWS_UPCOMING, constants.TTL_SHOWS_UPCOMING, func() (interface{}, error) {
		shows, err := s.repo.ListUpcoming(ctx, s.clock.Now())
		if err != nil {
			return nil, err
		}
		result := make([]ShowSummary, 0, len(shows))
		for i := range shows {
			result = append(result, toSummary(&shows[i]))
		}
		return result, nil
	}, &summaries)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *service) ListMoviesWithUpcomingShows(ctx context.Context) ([]string, error) {
	return s.repo.ListMovieIDsWithUpcoming(ctx, s.clock.Now())
}

func (s *service) GetShowtimes(ctx context.Context, movieID string) (*MovieShowtimes, error) {
	var showtimes MovieShowtimes
	cacheKey := constants.BuildShowsByMovieKey(movieID)
	err := s.cache.GetOrSet(ctx, cacheKey, constants.TTL_SHOWS_UPCOMING, func() (interface{}, error) {
		shows, err := s.repo.ListByMovie(ctx, movieID, s.clock.Now())
		if err != nil {
			return nil, err
		}

		dates := make(map[string][]ShowSummary)
		for i := range shows {
			day := shows[i].StartTime.Format("2006-01-02")
			dates[day] = append(dates[day], toSummary(&shows[i]))
		}
		return &MovieShowtimes{MovieID: movieID, Dates: dates}, nil
	}, &showtimes)
	if err != nil {
		return nil, err
	}
	return &showtimes, nil
}
