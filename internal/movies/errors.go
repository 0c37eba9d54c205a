package movies

import "errors"

var (
	// ErrMovieNotFound means the catalog id does not exist upstream and no
	// local snapshot is available either.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrCatalogUnavailable means the upstream catalog could not be reached
	// and there is no local snapshot to fall back on.
	ErrCatalogUnavailable = errors.New("movie catalog unavailable")
)
