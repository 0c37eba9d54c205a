package movies

import (
	"context"
	"errors"

	"cinebook/internal/shared/constants"
	"cinebook/pkg/cache"
	"cinebook/pkg/keylock"
	"cinebook/pkg/logger"
)

const popularLimit = 20

// popularLockKey serializes concurrent refreshes of the popular listing the
// same way per-id keys serialize detail refreshes.
const popularLockKey = "popular"

type Service interface {
	// GetOrRefresh returns the metadata for a catalog id, refreshing from
	// the upstream catalog when the cached entry is missing. When the
	// catalog is unreachable the local snapshot is served marked stale.
	GetOrRefresh(ctx context.Context, id string) (*MovieDetail, error)

	// ListPopular returns the ranked popular listing, falling back to the
	// local snapshot ordered by popularity when the catalog is down.
	ListPopular(ctx context.Context) (*PopularMovies, error)
}

type service struct {
	repo    Repository
	catalog CatalogClient
	cache   cache.Service
	locks   *keylock.KeyLock
	logger  *logger.Logger
}

func NewService(repo Repository, catalog CatalogClient, cacheService cache.Service, log *logger.Logger) Service {
	return &service{
		repo:    repo,
		catalog: catalog,
		cache:   cacheService,
		locks:   keylock.New(),
		logger:  log,
	}
}

func (s *service) GetOrRefresh(ctx context.Context, id string) (*MovieDetail, error) {
	cacheKey := constants.BuildMovieDetailKey(id)

	var cached MovieDetail
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	// One refresh per id at a time; concurrent callers wait and then hit
	// the entry the winner cached.
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	movie, err := s.catalog.FetchMovie(ctx, id)
	if err == nil {
		if upsertErr := s.repo.Upsert(ctx, movie); upsertErr != nil {
			s.logger.Error("failed to persist movie snapshot", "movie_id", id, "error", upsertErr)
		}
		detail := &MovieDetail{Movie: *movie, Stale: false}
		if setErr := s.cache.Set(ctx, cacheKey, detail, constants.TTL_MOVIE_DETAIL); setErr != nil {
			s.logger.Warn("failed to cache movie detail", "movie_id", id, "error", setErr)
		}
		return detail, nil
	}

	if errors.Is(err, ErrMovieNotFound) {
		return nil, ErrMovieNotFound
	}

	// Catalog unreachable. Serve the last persisted snapshot if we have one.
	snapshot, repoErr := s.repo.GetByID(ctx, id)
	if repoErr != nil {
		if errors.Is(repoErr, ErrMovieNotFound) {
			return nil, err
		}
		return nil, repoErr
	}

	s.logger.LogCatalogFallback(ctx, id, err)
	return &MovieDetail{Movie: *snapshot, Stale: true}, nil
}

func (s *service) ListPopular(ctx context.Context) (*PopularMovies, error) {
	var cached PopularMovies
	if err := s.cache.Get(ctx, constants.CACHE_KEY_MOVIE_POPULAR, &cached); err == nil {
		return &cached, nil
	}

	s.locks.Lock(popularLockKey)
	defer s.locks.Unlock(popularLockKey)

	if err := s.cache.Get(ctx, constants.CACHE_KEY_MOVIE_POPULAR, &cached); err == nil {
		return &cached, nil
	}

	fetched, err := s.catalog.FetchPopular(ctx)
	if err == nil {
		if upsertErr := s.repo.UpsertBatch(ctx, fetched); upsertErr != nil {
			s.logger.Error("failed to persist popular snapshot", "error", upsertErr)
		}
		result := &PopularMovies{Movies: fetched, Stale: false}
		if len(fetched) > 0 {
			result.FetchedAt = fetched[0].FetchedAt
		}
		if setErr := s.cache.Set(ctx, constants.CACHE_KEY_MOVIE_POPULAR, result, constants.TTL_MOVIE_POPULAR); setErr != nil {
			s.logger.Warn("failed to cache popular listing", "error", setErr)
		}
		return result, nil
	}

	snapshot, repoErr := s.repo.ListByPopularity(ctx, popularLimit)
	if repoErr != nil {
		return nil, repoErr
	}
	if len(snapshot) == 0 {
		return nil, err
	}

	s.logger.LogCatalogFallback(ctx, popularLockKey, err)
	result := &PopularMovies{Movies: snapshot, Stale: true, FetchedAt: snapshot[0].FetchedAt}
	return result, nil
}
