package constants

import "time"

// Redis cache keys and TTL values for cinebook.
// Pattern: cinebook:{module}:{operation}:{identifier}

const CACHE_PREFIX = "cinebook"

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG   = 24 * time.Hour // very stable data
	TTL_STATIC_MEDIUM = 12 * time.Hour

	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // movie metadata detail
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // popular movie snapshot
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // upcoming show listings

	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // analytics rollups
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // seat availability views
)

// ================== MOVIES MODULE ==================

const (
	CACHE_KEY_MOVIE_DETAIL  = CACHE_PREFIX + ":movies:detail:"  // + catalog-id
	CACHE_KEY_MOVIE_POPULAR = CACHE_PREFIX + ":movies:popular"  // ranked snapshot
)

const (
	TTL_MOVIE_DETAIL  = TTL_SEMI_STATIC_MEDIUM
	TTL_MOVIE_POPULAR = TTL_SEMI_STATIC_SHORT
)

// ================== SHOWS MODULE ==================

const (
	CACHE_KEY_SHOWS_UPCOMING  = CACHE_PREFIX + ":shows:upcoming"
	CACHE_KEY_SHOW_SEATS      = CACHE_PREFIX + ":shows:seats:"     // + show-id
	CACHE_KEY_SHOWS_BY_MOVIE  = CACHE_PREFIX + ":shows:by_movie:"  // + catalog-id
)

const (
	TTL_SHOWS_UPCOMING = TTL_SEMI_STATIC_QUICK
	TTL_SHOW_SEATS     = TTL_DYNAMIC_SHORT
)

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_DASHBOARD = CACHE_PREFIX + ":analytics:dashboard"
)

const (
	TTL_ANALYTICS_DASHBOARD = TTL_DYNAMIC_MEDIUM
)

// ================== KEY BUILDERS ==================

func BuildMovieDetailKey(catalogID string) string {
	return CACHE_KEY_MOVIE_DETAIL + catalogID
}

func BuildShowSeatsKey(showID string) string {
	return CACHE_KEY_SHOW_SEATS + showID
}

func BuildShowsByMovieKey(catalogID string) string {
	return CACHE_KEY_SHOWS_BY_MOVIE + catalogID
}
