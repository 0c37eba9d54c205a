package analytics

import (
	"context"

	"cinebook/internal/shared/constants"
	"cinebook/pkg/cache"
	"cinebook/pkg/clock"
)

const (
	topShowsLimit   = 5
	revenueDaysBack = 7
)

type Service interface {
	// GetDashboard returns the admin rollup. The result is cached; a
	// slightly stale dashboard is fine.
	GetDashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	clock clock.Clock
}

func NewService(repo Repository, cacheService cache.Service, clk clock.Clock) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		clock: clk,
	}
}

func (s *service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	var dashboard Dashboard
	err := s.cache.GetOrSet(ctx, constants.CACHE_KEY_ANALYTICS_DASHBOARD, constants.TTL_ANALYTICS_DASHBOARD, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	}, &dashboard)
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *service) buildDashboard(ctx context.Context) (*Dashboard, error) {
	now := s.clock.Now()

	revenue, paid, err := s.repo.RevenueTotals(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.PendingHoldCount(ctx)
	if err != nil {
		return nil, err
	}

	activeShows, err := s.repo.ActiveShowCount(ctx, now)
	if err != nil {
		return nil, err
	}

	userCount, err := s.repo.UserCount(ctx)
	if err != nil {
		return nil, err
	}

	topShows, err := s.repo.TopShowsByRevenue(ctx, topShowsLimit)
	if err != nil {
		return nil, err
	}

	daily, err := s.repo.DailyRevenue(ctx, now.AddDate(0, 0, -revenueDaysBack))
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalRevenue:    revenue,
		PaidBookings:    paid,
		PendingHolds:    pending,
		ActiveShows:     activeShows,
		RegisteredUsers: userCount,
		TopShows:        topShows,
		DailyRevenue:    daily,
		GeneratedAt:     now,
	}, nil
}
